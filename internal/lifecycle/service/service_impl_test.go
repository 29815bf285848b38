package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/franqia/console/internal/clock"
	"github.com/franqia/console/internal/config"
	franchisordomain "github.com/franqia/console/internal/franchisor/domain"
	franchisorrepo "github.com/franqia/console/internal/franchisor/repository"
	"github.com/franqia/console/internal/lifecycle/domain"
	lifecyclerepo "github.com/franqia/console/internal/lifecycle/repository"
	schooldomain "github.com/franqia/console/internal/school/domain"
	schoolrepo "github.com/franqia/console/internal/school/repository"
	subscriptiondomain "github.com/franqia/console/internal/subscription/domain"
	subscriptionrepo "github.com/franqia/console/internal/subscription/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*gorm.DB, *snowflake.Node, *clock.FakeClock, domain.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	// Create tables manually to match production schema.
	db.Exec(`CREATE TABLE IF NOT EXISTS franchisors (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)
	db.Exec(`CREATE TABLE IF NOT EXISTS schools (
		id BIGINT PRIMARY KEY,
		franchisor_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)
	db.Exec(`CREATE TABLE IF NOT EXISTS subscriptions (
		id BIGINT PRIMARY KEY,
		school_id BIGINT NOT NULL,
		plan_code TEXT NOT NULL,
		status TEXT NOT NULL,
		start_date TIMESTAMP NOT NULL,
		next_renewal_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)
	db.Exec(`CREATE TABLE IF NOT EXISTS status_history (
		id BIGINT PRIMARY KEY,
		entity_kind TEXT NOT NULL,
		entity_id BIGINT NOT NULL,
		from_status TEXT NOT NULL,
		to_status TEXT NOT NULL,
		action TEXT NOT NULL,
		reason_category TEXT NOT NULL,
		reason_details TEXT NOT NULL,
		actor TEXT NOT NULL,
		occurred_at TIMESTAMP NOT NULL,
		metadata TEXT
	)`)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	svc := NewService(Params{
		DB:               db,
		Log:              zap.NewNop(),
		GenID:            node,
		Clock:            clk,
		ReportConfig:     config.NewStaticReportConfigHolder(config.DefaultReportConfig()),
		History:          lifecyclerepo.Provide(),
		FranchisorRepo:   franchisorrepo.Provide(),
		SchoolRepo:       schoolrepo.Provide(),
		SubscriptionRepo: subscriptionrepo.Provide(),
	})
	return db, node, clk, svc
}

func seedFranchisor(t *testing.T, db *gorm.DB, node *snowflake.Node, status franchisordomain.Status) snowflake.ID {
	t.Helper()
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	franchisor := franchisordomain.Franchisor{
		ID:        node.Generate(),
		Name:      "Rede Horizonte",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&franchisor).Error)
	return franchisor.ID
}

func seedSubscription(t *testing.T, db *gorm.DB, node *snowflake.Node, status subscriptiondomain.Status) snowflake.ID {
	t.Helper()
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	subscription := subscriptiondomain.Subscription{
		ID:        node.Generate(),
		SchoolID:  node.Generate(),
		PlanCode:  "standard-monthly",
		Status:    status,
		StartDate: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&subscription).Error)
	return subscription.ID
}

func historyCount(t *testing.T, db *gorm.DB, kind domain.EntityKind, entityID snowflake.ID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&domain.StatusHistoryRecord{}).
		Where("entity_kind = ? AND entity_id = ?", kind, entityID).
		Count(&count).Error)
	return count
}

func TestTransitionFranchisor(t *testing.T) {
	db, node, clk, svc := newTestService(t)
	ctx := context.Background()
	franchisorID := seedFranchisor(t, db, node, franchisordomain.StatusPending)

	t.Run("approve pending succeeds and appends history", func(t *testing.T) {
		snapshot, err := svc.Transition(ctx, domain.TransitionRequest{
			Kind:           domain.KindFranchisor,
			EntityID:       franchisorID.String(),
			Action:         domain.ActionApprove,
			ReasonCategory: "onboarding_complete",
			ReasonDetails:  "all onboarding documents verified",
			Actor:          "admin@franqia.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "active", snapshot.CurrentStatus)
		assert.Equal(t, "admin@franqia.com", snapshot.LastChangedBy)
		assert.Equal(t, "onboarding_complete", snapshot.LastReasonCategory)
		require.NotNil(t, snapshot.LastChangedAt)
		assert.Equal(t, clk.Now(), snapshot.LastChangedAt.UTC())
		assert.EqualValues(t, 1, historyCount(t, db, domain.KindFranchisor, franchisorID))
	})

	t.Run("second approve loses and changes nothing", func(t *testing.T) {
		_, err := svc.Transition(ctx, domain.TransitionRequest{
			Kind:           domain.KindFranchisor,
			EntityID:       franchisorID.String(),
			Action:         domain.ActionApprove,
			ReasonCategory: "onboarding_complete",
			ReasonDetails:  "duplicate approval attempt",
			Actor:          "admin@franqia.com",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.EqualValues(t, 1, historyCount(t, db, domain.KindFranchisor, franchisorID))

		snapshot, err := svc.Snapshot(ctx, domain.KindFranchisor, franchisorID.String())
		require.NoError(t, err)
		assert.Equal(t, "active", snapshot.CurrentStatus)
	})

	t.Run("missing justification is rejected", func(t *testing.T) {
		_, err := svc.Transition(ctx, domain.TransitionRequest{
			Kind:           domain.KindFranchisor,
			EntityID:       franchisorID.String(),
			Action:         domain.ActionSuspend,
			ReasonCategory: "payment_default",
			Actor:          "admin@franqia.com",
		})
		assert.ErrorIs(t, err, domain.ErrJustificationMissing)
		assert.EqualValues(t, 1, historyCount(t, db, domain.KindFranchisor, franchisorID))
	})

	t.Run("reason category outside the kind's set is rejected", func(t *testing.T) {
		_, err := svc.Transition(ctx, domain.TransitionRequest{
			Kind:           domain.KindFranchisor,
			EntityID:       franchisorID.String(),
			Action:         domain.ActionSuspend,
			ReasonCategory: "requested_by_school",
			ReasonDetails:  "category belongs to subscriptions",
			Actor:          "admin@franqia.com",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidReason)
	})

	t.Run("unknown entity id maps to not found", func(t *testing.T) {
		_, err := svc.Transition(ctx, domain.TransitionRequest{
			Kind:           domain.KindFranchisor,
			EntityID:       node.Generate().String(),
			Action:         domain.ActionApprove,
			ReasonCategory: "onboarding_complete",
			ReasonDetails:  "ghost entity",
			Actor:          "admin@franqia.com",
		})
		assert.ErrorIs(t, err, franchisordomain.ErrNotFound)
	})

	t.Run("school kind has no approve action", func(t *testing.T) {
		school := schooldomain.School{
			ID:           node.Generate(),
			FranchisorID: franchisorID,
			Name:         "Unidade Centro",
			Status:       schooldomain.StatusActive,
			CreatedAt:    clk.Now(),
			UpdatedAt:    clk.Now(),
		}
		require.NoError(t, db.Create(&school).Error)

		_, err := svc.Transition(ctx, domain.TransitionRequest{
			Kind:           domain.KindSchool,
			EntityID:       school.ID.String(),
			Action:         domain.ActionApprove,
			ReasonCategory: "administrative",
			ReasonDetails:  "not applicable to schools",
			Actor:          "admin@franqia.com",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidAction)
	})
}

func TestTransitionSubscriptionConfirmationGate(t *testing.T) {
	db, node, _, svc := newTestService(t)
	ctx := context.Background()
	subscriptionID := seedSubscription(t, db, node, subscriptiondomain.StatusActive)

	t.Run("cancel without confirmation fails before validity check", func(t *testing.T) {
		// Action here is not even legal from active, but the confirmation
		// gate must answer first.
		_, err := svc.Transition(ctx, domain.TransitionRequest{
			Kind:           domain.KindSubscription,
			EntityID:       subscriptionID.String(),
			Action:         domain.ActionActivate,
			ReasonCategory: "requested_by_school",
			ReasonDetails:  "school asked for reactivation",
			Actor:          "admin@franqia.com",
		})
		assert.ErrorIs(t, err, domain.ErrConfirmationRequired)
		assert.EqualValues(t, 0, historyCount(t, db, domain.KindSubscription, subscriptionID))
	})

	t.Run("activate on active subscription is invalid even when confirmed", func(t *testing.T) {
		_, err := svc.Transition(ctx, domain.TransitionRequest{
			Kind:           domain.KindSubscription,
			EntityID:       subscriptionID.String(),
			Action:         domain.ActionActivate,
			ReasonCategory: "requested_by_school",
			ReasonDetails:  "school asked for reactivation",
			Confirmed:      true,
			Actor:          "admin@franqia.com",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("confirmed cancel succeeds and cancelled is terminal", func(t *testing.T) {
		snapshot, err := svc.Transition(ctx, domain.TransitionRequest{
			Kind:           domain.KindSubscription,
			EntityID:       subscriptionID.String(),
			Action:         domain.ActionCancel,
			ReasonCategory: "requested_by_school",
			ReasonDetails:  "school terminated the contract",
			Confirmed:      true,
			Actor:          "admin@franqia.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "cancelled", snapshot.CurrentStatus)
		assert.EqualValues(t, 1, historyCount(t, db, domain.KindSubscription, subscriptionID))

		_, err = svc.Transition(ctx, domain.TransitionRequest{
			Kind:           domain.KindSubscription,
			EntityID:       subscriptionID.String(),
			Action:         domain.ActionActivate,
			ReasonCategory: "requested_by_school",
			ReasonDetails:  "attempt to revive a cancelled subscription",
			Confirmed:      true,
			Actor:          "admin@franqia.com",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.EqualValues(t, 1, historyCount(t, db, domain.KindSubscription, subscriptionID))
	})
}

func TestHistoryNewestFirst(t *testing.T) {
	db, node, clk, svc := newTestService(t)
	ctx := context.Background()
	franchisorID := seedFranchisor(t, db, node, franchisordomain.StatusPending)

	steps := []struct {
		action domain.Action
		reason string
	}{
		{domain.ActionApprove, "onboarding_complete"},
		{domain.ActionSuspend, "payment_default"},
		{domain.ActionReactivate, "payments_regularized"},
		{domain.ActionSuspend, "contract_breach"},
	}
	for _, step := range steps {
		_, err := svc.Transition(ctx, domain.TransitionRequest{
			Kind:           domain.KindFranchisor,
			EntityID:       franchisorID.String(),
			Action:         step.action,
			ReasonCategory: step.reason,
			ReasonDetails:  "step in lifecycle walk",
			Actor:          "admin@franqia.com",
		})
		require.NoError(t, err)
		clk.Advance(time.Hour)
	}

	page, err := svc.History(ctx, domain.HistoryRequest{
		Kind:     domain.KindFranchisor,
		EntityID: franchisorID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.Data, 4)

	assert.Equal(t, domain.ActionSuspend, page.Data[0].Action)
	assert.Equal(t, "contract_breach", page.Data[0].ReasonCategory)
	for i := 1; i < len(page.Data); i++ {
		assert.False(t, page.Data[i].OccurredAt.After(page.Data[i-1].OccurredAt))
	}

	// Replaying oldest-first must land on the stored status.
	snapshot, err := svc.Snapshot(ctx, domain.KindFranchisor, franchisorID.String())
	require.NoError(t, err)
	replayed := page.Data[len(page.Data)-1].FromStatus
	for i := len(page.Data) - 1; i >= 0; i-- {
		assert.Equal(t, replayed, page.Data[i].FromStatus)
		replayed = page.Data[i].ToStatus
	}
	assert.Equal(t, snapshot.CurrentStatus, replayed)
	assert.Equal(t, "suspended", snapshot.CurrentStatus)
}

func TestHistoryPagination(t *testing.T) {
	db, node, clk, svc := newTestService(t)
	ctx := context.Background()
	subscriptionID := seedSubscription(t, db, node, subscriptiondomain.StatusPending)

	// pending → active → (nothing else legal except cancel); walk
	// activate/cancel is short, so pad with direct history appends through
	// the repository to exercise paging.
	_, err := svc.Transition(ctx, domain.TransitionRequest{
		Kind:           domain.KindSubscription,
		EntityID:       subscriptionID.String(),
		Action:         domain.ActionActivate,
		ReasonCategory: "requested_by_school",
		ReasonDetails:  "initial activation",
		Confirmed:      true,
		Actor:          "admin@franqia.com",
	})
	require.NoError(t, err)

	history := lifecyclerepo.Provide()
	for i := 0; i < 24; i++ {
		clk.Advance(time.Minute)
		require.NoError(t, history.Append(ctx, db, &domain.StatusHistoryRecord{
			ID:             node.Generate(),
			EntityKind:     domain.KindSubscription,
			EntityID:       subscriptionID,
			FromStatus:     "active",
			ToStatus:       "active",
			Action:         domain.ActionActivate,
			ReasonCategory: "administrative",
			ReasonDetails:  "backfilled audit entry",
			Actor:          "importer",
			OccurredAt:     clk.Now(),
		}))
	}

	page, err := svc.History(ctx, domain.HistoryRequest{
		Kind:     domain.KindSubscription,
		EntityID: subscriptionID.String(),
		Page:     2,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Data, 10)

	// Page beyond the end clamps to the last page.
	last, err := svc.History(ctx, domain.HistoryRequest{
		Kind:     domain.KindSubscription,
		EntityID: subscriptionID.String(),
		Page:     99,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, last.Page)
	assert.Len(t, last.Data, 5)
	assert.Equal(t, "initial activation", last.Data[len(last.Data)-1].ReasonDetails)
}
