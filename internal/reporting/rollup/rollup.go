// Package rollup computes financial aggregates over per-school snapshot
// rows. Everything here is a pure function: callers load rows, rollup
// derives groups, rates and buckets without touching storage.
package rollup

import (
	"math"
	"sort"

	"github.com/bwmarrin/snowflake"
	schooldomain "github.com/franqia/console/internal/school/domain"
)

// PaymentStatus classifies a school's financial position. paid, open and
// overdue are mutually exclusive; a school with no activity at all matches
// none of them and StatusNone is reported.
type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "paid"
	StatusOpen    PaymentStatus = "open"
	StatusOverdue PaymentStatus = "overdue"
	StatusAll     PaymentStatus = "all"
	StatusNone    PaymentStatus = ""
)

// ValidStatusFilter reports whether s is usable as a filter value.
func ValidStatusFilter(s PaymentStatus) bool {
	switch s {
	case StatusPaid, StatusOpen, StatusOverdue, StatusAll, StatusNone:
		return true
	}
	return false
}

// Rate returns the delinquency rate as a one-decimal percentage.
// A non-positive total is defined as 0, not an error.
func Rate(receivedCents, openCents, overdueCents int64) float64 {
	total := receivedCents + openCents + overdueCents
	if total <= 0 {
		return 0
	}
	return math.Round(float64(overdueCents)/float64(total)*1000) / 10
}

// StatusOf classifies one row. Any overdue amount wins; otherwise open
// balance, otherwise paid when something was received. All-zero rows are
// excluded from every class.
func StatusOf(row schooldomain.FinancialRow) PaymentStatus {
	switch {
	case row.OverdueCents > 0:
		return StatusOverdue
	case row.OpenCents > 0:
		return StatusOpen
	case row.ReceivedCents > 0:
		return StatusPaid
	}
	return StatusNone
}

// MatchesStatus applies a status filter. StatusAll and the zero value
// bypass filtering.
func MatchesStatus(row schooldomain.FinancialRow, filter PaymentStatus) bool {
	if filter == StatusAll || filter == StatusNone {
		return true
	}
	return StatusOf(row) == filter
}

// SchoolRollup is one school's figures with derived values attached.
type SchoolRollup struct {
	SchoolID          snowflake.ID        `json:"school_id"`
	SchoolName        string              `json:"school_name"`
	SchoolStatus      schooldomain.Status `json:"school_status"`
	FranchisorID      snowflake.ID        `json:"franchisor_id"`
	FranchisorName    string              `json:"franchisor_name"`
	ReceivedCents     int64               `json:"received_cents"`
	OpenCents         int64               `json:"open_cents"`
	OverdueCents      int64               `json:"overdue_cents"`
	TotalCents        int64               `json:"total_cents"`
	OverdueItemsCount int                 `json:"overdue_items_count"`
	MaxOverdueDays    int                 `json:"max_overdue_days"`
	DelinquencyRate   float64             `json:"delinquency_rate"`
	PaymentStatus     PaymentStatus       `json:"payment_status"`
}

// BySchool derives per-school rollups, applying the status filter. Output
// order follows input order; ranking is the caller's concern.
func BySchool(rows []schooldomain.FinancialRow, filter PaymentStatus) []SchoolRollup {
	out := make([]SchoolRollup, 0, len(rows))
	for _, row := range rows {
		if !MatchesStatus(row, filter) {
			continue
		}
		out = append(out, SchoolRollup{
			SchoolID:          row.SchoolID,
			SchoolName:        row.SchoolName,
			SchoolStatus:      row.SchoolStatus,
			FranchisorID:      row.FranchisorID,
			FranchisorName:    row.FranchisorName,
			ReceivedCents:     row.ReceivedCents,
			OpenCents:         row.OpenCents,
			OverdueCents:      row.OverdueCents,
			TotalCents:        row.ReceivedCents + row.OpenCents + row.OverdueCents,
			OverdueItemsCount: row.OverdueItemsCount,
			MaxOverdueDays:    row.MaxOverdueDays,
			DelinquencyRate:   Rate(row.ReceivedCents, row.OpenCents, row.OverdueCents),
			PaymentStatus:     StatusOf(row),
		})
	}
	return out
}

// FranchisorRollup aggregates one franchisor's schools. The rate is computed
// from the summed amounts, never averaged across schools.
type FranchisorRollup struct {
	FranchisorID      snowflake.ID `json:"franchisor_id"`
	FranchisorName    string       `json:"franchisor_name"`
	SchoolCount       int          `json:"school_count"`
	ActiveSchoolCount int          `json:"active_school_count"`
	ReceivedCents     int64        `json:"received_cents"`
	OpenCents         int64        `json:"open_cents"`
	OverdueCents      int64        `json:"overdue_cents"`
	TotalCents        int64        `json:"total_cents"`
	OverdueItemsCount int          `json:"overdue_items_count"`
	MaxOverdueDays    int          `json:"max_overdue_days"`
	DelinquencyRate   float64      `json:"delinquency_rate"`
}

// ByFranchisor groups rows by franchisor, sums the amounts and derives each
// group's rate post-aggregation. Output is ordered by franchisor name, then
// id, so repeated calls paginate identically.
func ByFranchisor(rows []schooldomain.FinancialRow, filter PaymentStatus) []FranchisorRollup {
	groups := make(map[snowflake.ID]*FranchisorRollup)
	order := make([]snowflake.ID, 0)

	for _, row := range rows {
		if !MatchesStatus(row, filter) {
			continue
		}
		group, ok := groups[row.FranchisorID]
		if !ok {
			group = &FranchisorRollup{
				FranchisorID:   row.FranchisorID,
				FranchisorName: row.FranchisorName,
			}
			groups[row.FranchisorID] = group
			order = append(order, row.FranchisorID)
		}
		group.SchoolCount++
		if row.SchoolStatus == schooldomain.StatusActive {
			group.ActiveSchoolCount++
		}
		group.ReceivedCents += row.ReceivedCents
		group.OpenCents += row.OpenCents
		group.OverdueCents += row.OverdueCents
		group.OverdueItemsCount += row.OverdueItemsCount
		if row.MaxOverdueDays > group.MaxOverdueDays {
			group.MaxOverdueDays = row.MaxOverdueDays
		}
	}

	out := make([]FranchisorRollup, 0, len(order))
	for _, id := range order {
		group := groups[id]
		group.TotalCents = group.ReceivedCents + group.OpenCents + group.OverdueCents
		group.DelinquencyRate = Rate(group.ReceivedCents, group.OpenCents, group.OverdueCents)
		out = append(out, *group)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FranchisorName != out[j].FranchisorName {
			return out[i].FranchisorName < out[j].FranchisorName
		}
		return out[i].FranchisorID < out[j].FranchisorID
	})
	return out
}

// Summary is the platform-wide financial aggregate.
type Summary struct {
	SchoolCount        int     `json:"school_count"`
	SchoolsWithOverdue int     `json:"schools_with_overdue"`
	ReceivedCents      int64   `json:"received_cents"`
	OpenCents          int64   `json:"open_cents"`
	OverdueCents       int64   `json:"overdue_cents"`
	TotalCents         int64   `json:"total_cents"`
	DelinquencyRate    float64 `json:"delinquency_rate"`
}

// Totals sums all rows into one aggregate, rate computed from the sums.
func Totals(rows []schooldomain.FinancialRow) Summary {
	var summary Summary
	for _, row := range rows {
		summary.SchoolCount++
		if row.OverdueCents > 0 && row.MaxOverdueDays > 0 {
			summary.SchoolsWithOverdue++
		}
		summary.ReceivedCents += row.ReceivedCents
		summary.OpenCents += row.OpenCents
		summary.OverdueCents += row.OverdueCents
	}
	summary.TotalCents = summary.ReceivedCents + summary.OpenCents + summary.OverdueCents
	summary.DelinquencyRate = Rate(summary.ReceivedCents, summary.OpenCents, summary.OverdueCents)
	return summary
}

// BucketKey names one fixed aging band.
type BucketKey string

const (
	Bucket1To7   BucketKey = "1-7"
	Bucket8To30  BucketKey = "8-30"
	Bucket31To60 BucketKey = "31-60"
	Bucket61Plus BucketKey = "61+"
)

// BucketCount is one aging band's totals.
type BucketCount struct {
	Bucket            BucketKey `json:"bucket"`
	SchoolCount       int       `json:"school_count"`
	OverdueCents      int64     `json:"overdue_cents"`
	OverdueItemsCount int       `json:"overdue_items_count"`
}

// BucketOf places one row into its aging band. Rows with no overdue amount
// or zero overdue days belong to no band. Band bounds are inclusive: 30 days
// falls in 8-30, 31 in 31-60.
func BucketOf(row schooldomain.FinancialRow) (BucketKey, bool) {
	if row.OverdueCents <= 0 || row.MaxOverdueDays <= 0 {
		return "", false
	}
	switch {
	case row.MaxOverdueDays <= 7:
		return Bucket1To7, true
	case row.MaxOverdueDays <= 30:
		return Bucket8To30, true
	case row.MaxOverdueDays <= 60:
		return Bucket31To60, true
	}
	return Bucket61Plus, true
}

// Buckets partitions rows into the four fixed aging bands. All bands are
// present in the result, zero-valued when empty, in ascending age order.
func Buckets(rows []schooldomain.FinancialRow) []BucketCount {
	keys := []BucketKey{Bucket1To7, Bucket8To30, Bucket31To60, Bucket61Plus}
	byKey := make(map[BucketKey]*BucketCount, len(keys))
	out := make([]BucketCount, len(keys))
	for i, key := range keys {
		out[i] = BucketCount{Bucket: key}
		byKey[key] = &out[i]
	}
	for _, row := range rows {
		key, ok := BucketOf(row)
		if !ok {
			continue
		}
		bucket := byKey[key]
		bucket.SchoolCount++
		bucket.OverdueCents += row.OverdueCents
		bucket.OverdueItemsCount += row.OverdueItemsCount
	}
	return out
}
