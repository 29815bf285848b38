// Package domain defines the reporting facade contract: request shapes,
// result shapes and the closed metric/sort vocabularies.
package domain

import (
	"context"
	"errors"

	"github.com/franqia/console/internal/reporting/rollup"
	"github.com/franqia/console/pkg/db/paginate"
)

// RangeFilter scopes a report. From and To are month keys ("2026-03");
// both empty means the latest period on record. FranchisorID and SchoolID
// narrow which schools feed the rollup.
type RangeFilter struct {
	From         string
	To           string
	FranchisorID string
	SchoolID     string
}

type SummaryRequest struct {
	Range RangeFilter
}

// PlatformSummary combines entity counts with financial totals for the
// requested scope.
type PlatformSummary struct {
	ActiveFranchisors   int64          `json:"active_franchisors"`
	PendingFranchisors  int64          `json:"pending_franchisors"`
	ActiveSchools       int64          `json:"active_schools"`
	PendingSchools      int64          `json:"pending_schools"`
	SuspendedSchools    int64          `json:"suspended_schools"`
	ActiveSubscriptions int64          `json:"active_subscriptions"`
	Financials          rollup.Summary `json:"financials"`
	Period              RangePeriod    `json:"period"`
}

// RangePeriod echoes the period range a report was computed over.
type RangePeriod struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type RankedRequest struct {
	Range    RangeFilter
	Status   rollup.PaymentStatus
	Sort     string
	Page     int
	PageSize int
}

type TopRequest struct {
	Range    RangeFilter
	Metric   string
	Page     int
	PageSize int
}

type BucketRequest struct {
	Range RangeFilter
}

// BucketReport is the fixed four-band aging view.
type BucketReport struct {
	Buckets []rollup.BucketCount `json:"buckets"`
	Period  RangePeriod          `json:"period"`
}

// StatusBreakdown counts schools per payment classification. Schools with
// no financial activity fall under None.
type StatusBreakdown struct {
	Paid    int         `json:"paid"`
	Open    int         `json:"open"`
	Overdue int         `json:"overdue"`
	None    int         `json:"none"`
	Period  RangePeriod `json:"period"`
}

// Sort keys for the ranked views. Both default to overdue_total.
const (
	SortOverdueTotal    = "overdue_total"
	SortReceivedTotal   = "received_total"
	SortOpenTotal       = "open_total"
	SortDelinquencyRate = "delinquency_rate"
	SortName            = "name"
)

// Metrics for the top-N views. Closed sets; anything else is a caller error.
const (
	MetricOverdueTotal       = "overdue_total"
	MetricReceivedTotal      = "received_total"
	MetricOpenTotal          = "open_total"
	MetricDelinquencyRate    = "delinquency_rate"
	MetricSchoolsCount       = "schools_count"
	MetricSchoolsActiveCount = "schools_active_count"
	MetricMaxOverdueDays     = "max_overdue_days"
)

var (
	ErrInvalidRange      = errors.New("invalid_period_range")
	ErrUnsupportedMetric = errors.New("unsupported_metric")
	ErrUnsupportedSort   = errors.New("unsupported_sort_key")
	ErrUnsupportedStatus = errors.New("unsupported_status_filter")
)

type Service interface {
	PlatformSummary(ctx context.Context, req SummaryRequest) (PlatformSummary, error)
	ByFranchisor(ctx context.Context, req RankedRequest) (paginate.Page[rollup.FranchisorRollup], error)
	BySchool(ctx context.Context, req RankedRequest) (paginate.Page[rollup.SchoolRollup], error)
	Buckets(ctx context.Context, req BucketRequest) (BucketReport, error)
	TopFranchisors(ctx context.Context, req TopRequest) (paginate.Page[rollup.FranchisorRollup], error)
	TopSchools(ctx context.Context, req TopRequest) (paginate.Page[rollup.SchoolRollup], error)
	SchoolsByStatus(ctx context.Context, req BucketRequest) (StatusBreakdown, error)
}
