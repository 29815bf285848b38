// Package paginate slices in-memory collections into deterministic,
// page-numbered envelopes. Listing and ranking endpoints share it so that
// repeated calls with identical inputs always return identical pages.
package paginate

import (
	"sort"
	"strings"
	"time"
)

// Page is the envelope every listing endpoint returns.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// Bounds clamps requested page sizes. Zero or negative requests fall back to
// Default; out-of-range values clamp rather than error.
type Bounds struct {
	Min     int
	Max     int
	Default int
}

// Predicate filters items. All predicates passed to Paginate are ANDed.
type Predicate[T any] func(T) bool

// Paginate filters, sorts and slices items. less may be nil to keep insertion
// order; ties always preserve insertion order (stable sort), which keeps
// pagination deterministic across calls. page is 1-indexed and clamps to the
// last valid page; an empty result still reports TotalPages = 1.
func Paginate[T any](items []T, filters []Predicate[T], less func(a, b T) bool, page, pageSize int, bounds Bounds) Page[T] {
	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if matchesAll(item, filters) {
			filtered = append(filtered, item)
		}
	}

	if less != nil {
		sort.SliceStable(filtered, func(i, j int) bool {
			return less(filtered[i], filtered[j])
		})
	}

	pageSize = clampSize(pageSize, bounds)
	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	data := make([]T, end-start)
	copy(data, filtered[start:end])

	return Page[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

func matchesAll[T any](item T, filters []Predicate[T]) bool {
	for _, filter := range filters {
		if filter != nil && !filter(item) {
			return false
		}
	}
	return true
}

func clampSize(size int, bounds Bounds) int {
	min, max, def := bounds.Min, bounds.Max, bounds.Default
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	if def < min || def > max {
		def = min
	}
	if size <= 0 {
		return def
	}
	if size < min {
		return min
	}
	if size > max {
		return max
	}
	return size
}

// Equal matches items whose extracted value equals want.
func Equal[T any, V comparable](get func(T) V, want V) Predicate[T] {
	return func(item T) bool { return get(item) == want }
}

// OneOf matches items whose extracted value is a member of allowed.
func OneOf[T any, V comparable](get func(T) V, allowed ...V) Predicate[T] {
	return func(item T) bool {
		value := get(item)
		for _, candidate := range allowed {
			if value == candidate {
				return true
			}
		}
		return false
	}
}

// TextContains matches items whose extracted text contains needle,
// case-insensitively. An empty needle matches everything.
func TextContains[T any](get func(T) string, needle string) Predicate[T] {
	needle = strings.ToLower(strings.TrimSpace(needle))
	return func(item T) bool {
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(get(item)), needle)
	}
}

// WithinTime matches items whose extracted timestamp falls inside the
// optional [from, to] range, bounds inclusive.
func WithinTime[T any](get func(T) time.Time, from, to *time.Time) Predicate[T] {
	return func(item T) bool {
		at := get(item)
		if from != nil && at.Before(*from) {
			return false
		}
		if to != nil && at.After(*to) {
			return false
		}
		return true
	}
}
