package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/franqia/console/internal/clock"
	franchisordomain "github.com/franqia/console/internal/franchisor/domain"
	"github.com/franqia/console/internal/school/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const periodLayout = "2006-01"

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Repo           domain.Repository
	FranchisorRepo franchisordomain.Repository
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	repo           domain.Repository
	franchisorRepo franchisordomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("school.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		repo:           p.Repo,
		franchisorRepo: p.FranchisorRepo,
	}
}

// Create registers a school under an existing franchisor, starting pending.
func (s *Service) Create(ctx context.Context, req domain.CreateSchoolRequest) (domain.School, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.School{}, domain.ErrInvalidName
	}

	franchisorID, err := snowflake.ParseString(strings.TrimSpace(req.FranchisorID))
	if err != nil || franchisorID == 0 {
		return domain.School{}, domain.ErrFranchisorRequired
	}
	if _, err := s.franchisorRepo.FindByID(ctx, s.db, franchisorID); err != nil {
		return domain.School{}, err
	}

	now := s.clock.Now()
	school := domain.School{
		ID:           s.genID.Generate(),
		FranchisorID: franchisorID,
		Name:         name,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, s.db, &school); err != nil {
		return domain.School{}, err
	}

	s.log.Info("school created",
		zap.String("school_id", school.ID.String()),
		zap.String("franchisor_id", franchisorID.String()),
	)
	return school, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.School, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.School{}, domain.ErrNotFound
	}

	school, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.School{}, err
	}
	return *school, nil
}

func (s *Service) List(ctx context.Context, req domain.ListSchoolRequest) ([]domain.School, error) {
	filter := domain.ListFilter{
		Status:       domain.Status(strings.TrimSpace(req.Status)),
		NameContains: req.NameContains,
		CreatedFrom:  req.CreatedFrom,
		CreatedTo:    req.CreatedTo,
	}
	if raw := strings.TrimSpace(req.FranchisorID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil || parsed == 0 {
			return nil, franchisordomain.ErrNotFound
		}
		filter.FranchisorID = &parsed
	}
	return s.repo.List(ctx, s.db, filter)
}

// UpsertSnapshot stores the externally supplied ledger figures for one
// school and period, replacing any previous snapshot for that period.
func (s *Service) UpsertSnapshot(ctx context.Context, req domain.UpsertSnapshotRequest) (domain.FinancialSnapshot, error) {
	schoolID, err := snowflake.ParseString(strings.TrimSpace(req.SchoolID))
	if err != nil || schoolID == 0 {
		return domain.FinancialSnapshot{}, domain.ErrNotFound
	}
	if _, err := s.repo.FindByID(ctx, s.db, schoolID); err != nil {
		return domain.FinancialSnapshot{}, err
	}

	period := strings.TrimSpace(req.Period)
	if _, err := time.Parse(periodLayout, period); err != nil {
		return domain.FinancialSnapshot{}, domain.ErrInvalidPeriod
	}

	snapshot := domain.FinancialSnapshot{
		ID:                s.genID.Generate(),
		SchoolID:          schoolID,
		Period:            period,
		ReceivedCents:     req.ReceivedCents,
		OpenCents:         req.OpenCents,
		OverdueCents:      req.OverdueCents,
		OverdueItemsCount: req.OverdueItemsCount,
		MaxOverdueDays:    req.MaxOverdueDays,
		UpdatedAt:         s.clock.Now(),
	}
	if err := s.repo.UpsertSnapshot(ctx, s.db, &snapshot); err != nil {
		return domain.FinancialSnapshot{}, err
	}
	return snapshot, nil
}
