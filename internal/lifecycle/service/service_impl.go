package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/franqia/console/internal/clock"
	"github.com/franqia/console/internal/config"
	franchisordomain "github.com/franqia/console/internal/franchisor/domain"
	"github.com/franqia/console/internal/lifecycle/domain"
	"github.com/franqia/console/internal/observability/metrics"
	"github.com/franqia/console/internal/observability/obsctx"
	schooldomain "github.com/franqia/console/internal/school/domain"
	subscriptiondomain "github.com/franqia/console/internal/subscription/domain"
	"github.com/franqia/console/pkg/db/paginate"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB               *gorm.DB
	Log              *zap.Logger
	GenID            *snowflake.Node
	Clock            clock.Clock
	ReportConfig     *config.ReportConfigHolder
	Metrics          *metrics.Metrics `optional:"true"`
	History          domain.HistoryRepository
	FranchisorRepo   franchisordomain.Repository
	SchoolRepo       schooldomain.Repository
	SubscriptionRepo subscriptiondomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	reports  *config.ReportConfigHolder
	metrics  *metrics.Metrics
	history  domain.HistoryRepository
	stores   map[domain.EntityKind]domain.StatusStore
	notFound map[domain.EntityKind]error
}

func NewService(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("lifecycle.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		reports: p.ReportConfig,
		metrics: p.Metrics,
		history: p.History,
		stores: map[domain.EntityKind]domain.StatusStore{
			domain.KindFranchisor:   p.FranchisorRepo,
			domain.KindSchool:       p.SchoolRepo,
			domain.KindSubscription: p.SubscriptionRepo,
		},
		notFound: map[domain.EntityKind]error{
			domain.KindFranchisor:   franchisordomain.ErrNotFound,
			domain.KindSchool:       schooldomain.ErrNotFound,
			domain.KindSubscription: subscriptiondomain.ErrNotFound,
		},
	}
}

// Transition validates and applies one status change. Status update and
// history append happen inside a single transaction; a compare-and-set on the
// previous status makes concurrent transitions against the same entity lose
// cleanly instead of double-applying.
func (s *Service) Transition(ctx context.Context, req domain.TransitionRequest) (domain.StatusSnapshot, error) {
	store, entityID, err := s.resolve(req.Kind, req.EntityID)
	if err != nil {
		return domain.StatusSnapshot{}, err
	}

	current, err := store.CurrentStatus(ctx, s.db, entityID)
	if err != nil {
		return domain.StatusSnapshot{}, err
	}

	// The confirmation gate comes before transition validity: a destructive
	// request without an explicit acknowledgement is never evaluated further.
	if domain.RequiresConfirmation(req.Kind) && !req.Confirmed {
		s.denied(ctx, req.Kind, "confirmation_missing")
		return domain.StatusSnapshot{}, domain.ErrConfirmationRequired
	}

	if !domain.KnownAction(req.Kind, req.Action) {
		s.denied(ctx, req.Kind, "unknown_action")
		return domain.StatusSnapshot{}, domain.ErrInvalidAction
	}
	if !domain.ValidReason(req.Kind, strings.TrimSpace(req.ReasonCategory)) {
		s.denied(ctx, req.Kind, "invalid_reason")
		return domain.StatusSnapshot{}, domain.ErrInvalidReason
	}
	if strings.TrimSpace(req.ReasonDetails) == "" {
		s.denied(ctx, req.Kind, "justification_missing")
		return domain.StatusSnapshot{}, domain.ErrJustificationMissing
	}

	target, ok := domain.Target(req.Kind, req.Action, current)
	if !ok {
		s.denied(ctx, req.Kind, "illegal_from_status")
		return domain.StatusSnapshot{}, domain.ErrInvalidTransition
	}

	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		actor = obsctx.ActorFromContext(ctx)
	}

	now := s.clock.Now()
	record := domain.StatusHistoryRecord{
		ID:             s.genID.Generate(),
		EntityKind:     req.Kind,
		EntityID:       entityID,
		FromStatus:     current,
		ToStatus:       target,
		Action:         req.Action,
		ReasonCategory: strings.TrimSpace(req.ReasonCategory),
		ReasonDetails:  strings.TrimSpace(req.ReasonDetails),
		Actor:          actor,
		OccurredAt:     now,
		Metadata:       requestMetadata(ctx),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied, err := store.UpdateStatusCAS(ctx, tx, entityID, current, target, now)
		if err != nil {
			return err
		}
		if !applied {
			return domain.ErrInvalidTransition
		}
		return s.history.Append(ctx, tx, &record)
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			s.denied(ctx, req.Kind, "lost_race")
		}
		return domain.StatusSnapshot{}, err
	}

	s.metrics.RecordTransition(ctx, string(req.Kind), string(req.Action))
	s.log.Info("status transition applied",
		zap.String("entity_kind", string(req.Kind)),
		zap.String("entity_id", entityID.String()),
		zap.String("action", string(req.Action)),
		zap.String("from_status", current),
		zap.String("to_status", target),
		zap.String("actor", actor),
	)

	return domain.StatusSnapshot{
		EntityKind:         req.Kind,
		EntityID:           entityID,
		CurrentStatus:      target,
		LastChangedAt:      &record.OccurredAt,
		LastChangedBy:      record.Actor,
		LastReasonCategory: record.ReasonCategory,
		LastReasonDetails:  record.ReasonDetails,
	}, nil
}

// Snapshot reads current status plus the latest audit entry, if any. Entities
// that never transitioned report their stored status with empty change fields.
func (s *Service) Snapshot(ctx context.Context, kind domain.EntityKind, rawID string) (domain.StatusSnapshot, error) {
	store, entityID, err := s.resolve(kind, rawID)
	if err != nil {
		return domain.StatusSnapshot{}, err
	}

	current, err := store.CurrentStatus(ctx, s.db, entityID)
	if err != nil {
		return domain.StatusSnapshot{}, err
	}

	snapshot := domain.StatusSnapshot{
		EntityKind:    kind,
		EntityID:      entityID,
		CurrentStatus: current,
	}

	latest, err := s.history.LatestByEntity(ctx, s.db, kind, entityID)
	if err != nil {
		return domain.StatusSnapshot{}, err
	}
	if latest != nil {
		snapshot.LastChangedAt = &latest.OccurredAt
		snapshot.LastChangedBy = latest.Actor
		snapshot.LastReasonCategory = latest.ReasonCategory
		snapshot.LastReasonDetails = latest.ReasonDetails
	}
	return snapshot, nil
}

func (s *Service) History(ctx context.Context, req domain.HistoryRequest) (paginate.Page[domain.StatusHistoryRecord], error) {
	store, entityID, err := s.resolve(req.Kind, req.EntityID)
	if err != nil {
		return paginate.Page[domain.StatusHistoryRecord]{}, err
	}
	if _, err := store.CurrentStatus(ctx, s.db, entityID); err != nil {
		return paginate.Page[domain.StatusHistoryRecord]{}, err
	}

	records, err := s.history.ListByEntity(ctx, s.db, req.Kind, entityID)
	if err != nil {
		return paginate.Page[domain.StatusHistoryRecord]{}, err
	}

	cfg := s.reports.Get()
	page := paginate.Paginate(records, nil,
		func(a, b domain.StatusHistoryRecord) bool { return a.OccurredAt.After(b.OccurredAt) },
		req.Page, req.PageSize,
		paginate.Bounds{Min: cfg.MinPageSize, Max: cfg.MaxPageSize, Default: cfg.DefaultPageSize},
	)
	return page, nil
}

func (s *Service) resolve(kind domain.EntityKind, rawID string) (domain.StatusStore, snowflake.ID, error) {
	store, ok := s.stores[kind]
	if !ok {
		return nil, 0, domain.ErrUnknownEntityKind
	}
	entityID, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || entityID == 0 {
		return nil, 0, s.notFound[kind]
	}
	return store, entityID, nil
}

func (s *Service) denied(ctx context.Context, kind domain.EntityKind, reason string) {
	s.metrics.RecordTransitionDenied(ctx, string(kind), reason)
}

func requestMetadata(ctx context.Context) datatypes.JSONMap {
	meta := datatypes.JSONMap{}
	if requestID := obsctx.RequestIDFromContext(ctx); requestID != "" {
		meta["request_id"] = requestID
	}
	if ip := obsctx.IPAddressFromContext(ctx); ip != "" {
		meta["ip_address"] = ip
	}
	if agent := obsctx.UserAgentFromContext(ctx); agent != "" {
		meta["user_agent"] = agent
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}
