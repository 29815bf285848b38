package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/franqia/console/internal/clock"
	franchisordomain "github.com/franqia/console/internal/franchisor/domain"
	schooldomain "github.com/franqia/console/internal/school/domain"
	"github.com/franqia/console/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	SchoolRepo schooldomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	schoolRepo schooldomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("subscription.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		schoolRepo: p.SchoolRepo,
	}
}

// Create registers a subscription for an existing school, starting pending.
func (s *Service) Create(ctx context.Context, req domain.CreateSubscriptionRequest) (domain.Subscription, error) {
	planCode := strings.TrimSpace(req.PlanCode)
	if planCode == "" {
		return domain.Subscription{}, domain.ErrInvalidPlan
	}

	schoolID, err := snowflake.ParseString(strings.TrimSpace(req.SchoolID))
	if err != nil || schoolID == 0 {
		return domain.Subscription{}, domain.ErrSchoolRequired
	}
	if _, err := s.schoolRepo.FindByID(ctx, s.db, schoolID); err != nil {
		return domain.Subscription{}, err
	}

	now := s.clock.Now()
	startDate := now
	if req.StartDate != nil {
		startDate = req.StartDate.UTC()
	}

	subscription := domain.Subscription{
		ID:            s.genID.Generate(),
		SchoolID:      schoolID,
		PlanCode:      planCode,
		Status:        domain.StatusPending,
		StartDate:     startDate,
		NextRenewalAt: req.NextRenewalAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, s.db, &subscription); err != nil {
		return domain.Subscription{}, err
	}

	s.log.Info("subscription created",
		zap.String("subscription_id", subscription.ID.String()),
		zap.String("school_id", schoolID.String()),
		zap.String("plan_code", planCode),
	)
	return subscription, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Subscription, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.Subscription{}, domain.ErrNotFound
	}

	subscription, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Subscription{}, err
	}
	return *subscription, nil
}

func (s *Service) List(ctx context.Context, req domain.ListSubscriptionRequest) ([]domain.Subscription, error) {
	filter := domain.ListFilter{
		Status:      domain.Status(strings.TrimSpace(req.Status)),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}
	if raw := strings.TrimSpace(req.SchoolID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil || parsed == 0 {
			return nil, schooldomain.ErrNotFound
		}
		filter.SchoolID = &parsed
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
