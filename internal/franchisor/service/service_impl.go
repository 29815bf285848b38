package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/franqia/console/internal/clock"
	"github.com/franqia/console/internal/franchisor/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("franchisor.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Create registers a new franchisor in the initial pending status. Creation
// itself is not a transition, so no history record is written.
func (s *Service) Create(ctx context.Context, req domain.CreateFranchisorRequest) (domain.Franchisor, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Franchisor{}, domain.ErrInvalidName
	}

	now := s.clock.Now()
	franchisor := domain.Franchisor{
		ID:        s.genID.Generate(),
		Name:      name,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &franchisor); err != nil {
		return domain.Franchisor{}, err
	}

	s.log.Info("franchisor created",
		zap.String("franchisor_id", franchisor.ID.String()),
		zap.String("name", franchisor.Name),
	)
	return franchisor, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Franchisor, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.Franchisor{}, domain.ErrNotFound
	}

	franchisor, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Franchisor{}, err
	}
	return *franchisor, nil
}

func (s *Service) List(ctx context.Context, req domain.ListFranchisorRequest) ([]domain.Franchisor, error) {
	return s.repo.List(ctx, s.db, domain.ListFilter{
		Status:       domain.Status(strings.TrimSpace(req.Status)),
		NameContains: req.NameContains,
		CreatedFrom:  req.CreatedFrom,
		CreatedTo:    req.CreatedTo,
	})
}
