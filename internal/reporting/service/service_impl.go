package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/franqia/console/internal/config"
	franchisordomain "github.com/franqia/console/internal/franchisor/domain"
	"github.com/franqia/console/internal/observability/metrics"
	"github.com/franqia/console/internal/reporting/domain"
	"github.com/franqia/console/internal/reporting/rollup"
	schooldomain "github.com/franqia/console/internal/school/domain"
	subscriptiondomain "github.com/franqia/console/internal/subscription/domain"
	"github.com/franqia/console/pkg/db/paginate"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const periodLayout = "2006-01"

type Params struct {
	fx.In

	DB               *gorm.DB
	Log              *zap.Logger
	ReportConfig     *config.ReportConfigHolder
	Metrics          *metrics.Metrics `optional:"true"`
	SchoolRepo       schooldomain.Repository
	FranchisorRepo   franchisordomain.Repository
	SubscriptionRepo subscriptiondomain.Repository
}

type Service struct {
	db               *gorm.DB
	log              *zap.Logger
	reports          *config.ReportConfigHolder
	metrics          *metrics.Metrics
	schoolRepo       schooldomain.Repository
	franchisorRepo   franchisordomain.Repository
	subscriptionRepo subscriptiondomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:               p.DB,
		log:              p.Log.Named("reporting.service"),
		reports:          p.ReportConfig,
		metrics:          p.Metrics,
		schoolRepo:       p.SchoolRepo,
		franchisorRepo:   p.FranchisorRepo,
		subscriptionRepo: p.SubscriptionRepo,
	}
}

func (s *Service) PlatformSummary(ctx context.Context, req domain.SummaryRequest) (domain.PlatformSummary, error) {
	s.metrics.RecordReportQuery(ctx, "summary")
	filter, period, err := s.resolveScope(ctx, req.Range)
	if err != nil {
		return domain.PlatformSummary{}, err
	}

	rows, err := s.schoolRepo.ListFinancials(ctx, s.db, filter)
	if err != nil {
		return domain.PlatformSummary{}, err
	}

	summary := domain.PlatformSummary{
		Financials: rollup.Totals(rows),
		Period:     period,
	}

	franchisorCounts, err := s.franchisorRepo.CountByStatus(ctx, s.db)
	if err != nil {
		return domain.PlatformSummary{}, err
	}
	summary.ActiveFranchisors = franchisorCounts[franchisordomain.StatusActive]
	summary.PendingFranchisors = franchisorCounts[franchisordomain.StatusPending]

	schoolCounts, err := s.schoolRepo.CountByStatus(ctx, s.db, filter.FranchisorID)
	if err != nil {
		return domain.PlatformSummary{}, err
	}
	summary.ActiveSchools = schoolCounts[schooldomain.StatusActive]
	summary.PendingSchools = schoolCounts[schooldomain.StatusPending]
	summary.SuspendedSchools = schoolCounts[schooldomain.StatusSuspended]

	subscriptionCounts, err := s.subscriptionRepo.CountByStatus(ctx, s.db, filter.FranchisorID)
	if err != nil {
		return domain.PlatformSummary{}, err
	}
	summary.ActiveSubscriptions = subscriptionCounts[subscriptiondomain.StatusActive]

	return summary, nil
}

func (s *Service) ByFranchisor(ctx context.Context, req domain.RankedRequest) (paginate.Page[rollup.FranchisorRollup], error) {
	s.metrics.RecordReportQuery(ctx, "by_franchisor")
	rows, _, err := s.loadRows(ctx, req.Range)
	if err != nil {
		return paginate.Page[rollup.FranchisorRollup]{}, err
	}
	if !rollup.ValidStatusFilter(req.Status) {
		return paginate.Page[rollup.FranchisorRollup]{}, domain.ErrUnsupportedStatus
	}

	less, err := franchisorLess(req.Sort)
	if err != nil {
		return paginate.Page[rollup.FranchisorRollup]{}, err
	}

	started := time.Now()
	groups := rollup.ByFranchisor(rows, req.Status)
	s.metrics.RecordRollupDuration(ctx, "by_franchisor", time.Since(started))

	return paginate.Paginate(groups, nil, less, req.Page, req.PageSize, s.bounds()), nil
}

func (s *Service) BySchool(ctx context.Context, req domain.RankedRequest) (paginate.Page[rollup.SchoolRollup], error) {
	s.metrics.RecordReportQuery(ctx, "by_school")
	rows, _, err := s.loadRows(ctx, req.Range)
	if err != nil {
		return paginate.Page[rollup.SchoolRollup]{}, err
	}
	if !rollup.ValidStatusFilter(req.Status) {
		return paginate.Page[rollup.SchoolRollup]{}, domain.ErrUnsupportedStatus
	}

	less, err := schoolLess(req.Sort)
	if err != nil {
		return paginate.Page[rollup.SchoolRollup]{}, err
	}

	started := time.Now()
	schools := rollup.BySchool(rows, req.Status)
	s.metrics.RecordRollupDuration(ctx, "by_school", time.Since(started))

	return paginate.Paginate(schools, nil, less, req.Page, req.PageSize, s.bounds()), nil
}

func (s *Service) Buckets(ctx context.Context, req domain.BucketRequest) (domain.BucketReport, error) {
	s.metrics.RecordReportQuery(ctx, "buckets")
	rows, period, err := s.loadRows(ctx, req.Range)
	if err != nil {
		return domain.BucketReport{}, err
	}

	started := time.Now()
	buckets := rollup.Buckets(rows)
	s.metrics.RecordRollupDuration(ctx, "buckets", time.Since(started))

	return domain.BucketReport{Buckets: buckets, Period: period}, nil
}

func (s *Service) TopFranchisors(ctx context.Context, req domain.TopRequest) (paginate.Page[rollup.FranchisorRollup], error) {
	s.metrics.RecordReportQuery(ctx, "top_franchisors")
	rows, _, err := s.loadRows(ctx, req.Range)
	if err != nil {
		return paginate.Page[rollup.FranchisorRollup]{}, err
	}

	less, err := franchisorMetricLess(req.Metric)
	if err != nil {
		return paginate.Page[rollup.FranchisorRollup]{}, err
	}

	groups := rollup.ByFranchisor(rows, rollup.StatusAll)
	return paginate.Paginate(groups, nil, less, req.Page, req.PageSize, s.topBounds()), nil
}

func (s *Service) TopSchools(ctx context.Context, req domain.TopRequest) (paginate.Page[rollup.SchoolRollup], error) {
	s.metrics.RecordReportQuery(ctx, "top_schools")
	rows, _, err := s.loadRows(ctx, req.Range)
	if err != nil {
		return paginate.Page[rollup.SchoolRollup]{}, err
	}

	less, err := schoolMetricLess(req.Metric)
	if err != nil {
		return paginate.Page[rollup.SchoolRollup]{}, err
	}

	schools := rollup.BySchool(rows, rollup.StatusAll)
	return paginate.Paginate(schools, nil, less, req.Page, req.PageSize, s.topBounds()), nil
}

func (s *Service) SchoolsByStatus(ctx context.Context, req domain.BucketRequest) (domain.StatusBreakdown, error) {
	s.metrics.RecordReportQuery(ctx, "schools_by_status")
	rows, period, err := s.loadRows(ctx, req.Range)
	if err != nil {
		return domain.StatusBreakdown{}, err
	}

	breakdown := domain.StatusBreakdown{Period: period}
	for _, row := range rows {
		switch rollup.StatusOf(row) {
		case rollup.StatusPaid:
			breakdown.Paid++
		case rollup.StatusOpen:
			breakdown.Open++
		case rollup.StatusOverdue:
			breakdown.Overdue++
		default:
			breakdown.None++
		}
	}
	return breakdown, nil
}

func (s *Service) loadRows(ctx context.Context, r domain.RangeFilter) ([]schooldomain.FinancialRow, domain.RangePeriod, error) {
	filter, period, err := s.resolveScope(ctx, r)
	if err != nil {
		return nil, domain.RangePeriod{}, err
	}
	rows, err := s.schoolRepo.ListFinancials(ctx, s.db, filter)
	if err != nil {
		return nil, domain.RangePeriod{}, err
	}
	return rows, period, nil
}

// resolveScope validates the period range and entity filters, defaulting an
// empty range to the latest period on record. Unknown franchisor or school
// ids fail here so the rollup never sees them.
func (s *Service) resolveScope(ctx context.Context, r domain.RangeFilter) (schooldomain.FinancialFilter, domain.RangePeriod, error) {
	from := strings.TrimSpace(r.From)
	to := strings.TrimSpace(r.To)
	if from == "" && to == "" {
		latest, err := s.schoolRepo.LatestPeriod(ctx, s.db)
		if err != nil {
			return schooldomain.FinancialFilter{}, domain.RangePeriod{}, err
		}
		from, to = latest, latest
	}
	if from == "" {
		from = to
	}
	if to == "" {
		to = from
	}
	if from != "" {
		fromAt, err := time.Parse(periodLayout, from)
		if err != nil {
			return schooldomain.FinancialFilter{}, domain.RangePeriod{}, domain.ErrInvalidRange
		}
		toAt, err := time.Parse(periodLayout, to)
		if err != nil {
			return schooldomain.FinancialFilter{}, domain.RangePeriod{}, domain.ErrInvalidRange
		}
		if fromAt.After(toAt) {
			return schooldomain.FinancialFilter{}, domain.RangePeriod{}, domain.ErrInvalidRange
		}
	}

	filter := schooldomain.FinancialFilter{PeriodFrom: from, PeriodTo: to}

	if raw := strings.TrimSpace(r.FranchisorID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return schooldomain.FinancialFilter{}, domain.RangePeriod{}, franchisordomain.ErrNotFound
		}
		if _, err := s.franchisorRepo.FindByID(ctx, s.db, id); err != nil {
			return schooldomain.FinancialFilter{}, domain.RangePeriod{}, err
		}
		filter.FranchisorID = &id
	}
	if raw := strings.TrimSpace(r.SchoolID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return schooldomain.FinancialFilter{}, domain.RangePeriod{}, schooldomain.ErrNotFound
		}
		if _, err := s.schoolRepo.FindByID(ctx, s.db, id); err != nil {
			return schooldomain.FinancialFilter{}, domain.RangePeriod{}, err
		}
		filter.SchoolID = &id
	}

	return filter, domain.RangePeriod{From: from, To: to}, nil
}

func (s *Service) bounds() paginate.Bounds {
	cfg := s.reports.Get()
	return paginate.Bounds{Min: cfg.MinPageSize, Max: cfg.MaxPageSize, Default: cfg.DefaultPageSize}
}

// topBounds caps ranking pages at the configured top-N ceiling.
func (s *Service) topBounds() paginate.Bounds {
	cfg := s.reports.Get()
	bounds := paginate.Bounds{Min: cfg.MinPageSize, Max: cfg.MaxTopN, Default: cfg.DefaultPageSize}
	if bounds.Max < bounds.Min {
		bounds.Min = bounds.Max
	}
	if bounds.Default > bounds.Max {
		bounds.Default = bounds.Max
	}
	return bounds
}

func franchisorLess(sortKey string) (func(a, b rollup.FranchisorRollup) bool, error) {
	if strings.TrimSpace(sortKey) == "" {
		sortKey = domain.SortOverdueTotal
	}
	switch sortKey {
	case domain.SortOverdueTotal:
		return descFranchisor(func(g rollup.FranchisorRollup) float64 { return float64(g.OverdueCents) }), nil
	case domain.SortReceivedTotal:
		return descFranchisor(func(g rollup.FranchisorRollup) float64 { return float64(g.ReceivedCents) }), nil
	case domain.SortOpenTotal:
		return descFranchisor(func(g rollup.FranchisorRollup) float64 { return float64(g.OpenCents) }), nil
	case domain.SortDelinquencyRate:
		return descFranchisor(func(g rollup.FranchisorRollup) float64 { return g.DelinquencyRate }), nil
	case domain.SortName:
		return func(a, b rollup.FranchisorRollup) bool { return a.FranchisorName < b.FranchisorName }, nil
	}
	return nil, domain.ErrUnsupportedSort
}

func schoolLess(sortKey string) (func(a, b rollup.SchoolRollup) bool, error) {
	if strings.TrimSpace(sortKey) == "" {
		sortKey = domain.SortOverdueTotal
	}
	switch sortKey {
	case domain.SortOverdueTotal:
		return descSchool(func(r rollup.SchoolRollup) float64 { return float64(r.OverdueCents) }), nil
	case domain.SortReceivedTotal:
		return descSchool(func(r rollup.SchoolRollup) float64 { return float64(r.ReceivedCents) }), nil
	case domain.SortOpenTotal:
		return descSchool(func(r rollup.SchoolRollup) float64 { return float64(r.OpenCents) }), nil
	case domain.SortDelinquencyRate:
		return descSchool(func(r rollup.SchoolRollup) float64 { return r.DelinquencyRate }), nil
	case domain.SortName:
		return func(a, b rollup.SchoolRollup) bool { return a.SchoolName < b.SchoolName }, nil
	}
	return nil, domain.ErrUnsupportedSort
}

func franchisorMetricLess(metric string) (func(a, b rollup.FranchisorRollup) bool, error) {
	switch metric {
	case domain.MetricOverdueTotal:
		return descFranchisor(func(g rollup.FranchisorRollup) float64 { return float64(g.OverdueCents) }), nil
	case domain.MetricReceivedTotal:
		return descFranchisor(func(g rollup.FranchisorRollup) float64 { return float64(g.ReceivedCents) }), nil
	case domain.MetricOpenTotal:
		return descFranchisor(func(g rollup.FranchisorRollup) float64 { return float64(g.OpenCents) }), nil
	case domain.MetricDelinquencyRate:
		return descFranchisor(func(g rollup.FranchisorRollup) float64 { return g.DelinquencyRate }), nil
	case domain.MetricSchoolsCount:
		return descFranchisor(func(g rollup.FranchisorRollup) float64 { return float64(g.SchoolCount) }), nil
	case domain.MetricSchoolsActiveCount:
		return descFranchisor(func(g rollup.FranchisorRollup) float64 { return float64(g.ActiveSchoolCount) }), nil
	}
	return nil, domain.ErrUnsupportedMetric
}

func schoolMetricLess(metric string) (func(a, b rollup.SchoolRollup) bool, error) {
	switch metric {
	case domain.MetricOverdueTotal:
		return descSchool(func(r rollup.SchoolRollup) float64 { return float64(r.OverdueCents) }), nil
	case domain.MetricReceivedTotal:
		return descSchool(func(r rollup.SchoolRollup) float64 { return float64(r.ReceivedCents) }), nil
	case domain.MetricOpenTotal:
		return descSchool(func(r rollup.SchoolRollup) float64 { return float64(r.OpenCents) }), nil
	case domain.MetricDelinquencyRate:
		return descSchool(func(r rollup.SchoolRollup) float64 { return r.DelinquencyRate }), nil
	case domain.MetricMaxOverdueDays:
		return descSchool(func(r rollup.SchoolRollup) float64 { return float64(r.MaxOverdueDays) }), nil
	}
	return nil, domain.ErrUnsupportedMetric
}

// descFranchisor ranks strictly descending by value, ties broken by name
// ascending so repeated calls return the same order.
func descFranchisor(value func(rollup.FranchisorRollup) float64) func(a, b rollup.FranchisorRollup) bool {
	return func(a, b rollup.FranchisorRollup) bool {
		if value(a) != value(b) {
			return value(a) > value(b)
		}
		return a.FranchisorName < b.FranchisorName
	}
}

func descSchool(value func(rollup.SchoolRollup) float64) func(a, b rollup.SchoolRollup) bool {
	return func(a, b rollup.SchoolRollup) bool {
		if value(a) != value(b) {
			return value(a) > value(b)
		}
		return a.SchoolName < b.SchoolName
	}
}
