package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/franqia/console/internal/clock"
	"github.com/franqia/console/internal/config"
	franchisordomain "github.com/franqia/console/internal/franchisor/domain"
	franchisorrepo "github.com/franqia/console/internal/franchisor/repository"
	franchisorservice "github.com/franqia/console/internal/franchisor/service"
	lifecycledomain "github.com/franqia/console/internal/lifecycle/domain"
	lifecyclerepo "github.com/franqia/console/internal/lifecycle/repository"
	lifecycleservice "github.com/franqia/console/internal/lifecycle/service"
	"github.com/franqia/console/internal/observability"
	reportingservice "github.com/franqia/console/internal/reporting/service"
	schooldomain "github.com/franqia/console/internal/school/domain"
	schoolrepo "github.com/franqia/console/internal/school/repository"
	schoolservice "github.com/franqia/console/internal/school/service"
	subscriptiondomain "github.com/franqia/console/internal/subscription/domain"
	subscriptionrepo "github.com/franqia/console/internal/subscription/repository"
	subscriptionservice "github.com/franqia/console/internal/subscription/service"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db     *gorm.DB
	node   *snowflake.Node
	server *Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&franchisordomain.Franchisor{},
		&schooldomain.School{},
		&schooldomain.FinancialSnapshot{},
		&subscriptiondomain.Subscription{},
		&lifecycledomain.StatusHistoryRecord{},
	))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	log := zap.NewNop()
	clk := clock.SystemClock{}
	holder := config.NewStaticReportConfigHolder(config.DefaultReportConfig())

	franchisorRepo := franchisorrepo.Provide()
	schoolRepo := schoolrepo.Provide()
	subscriptionRepo := subscriptionrepo.Provide()

	franchisorSvc := franchisorservice.NewService(franchisorservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: franchisorRepo,
	})
	schoolSvc := schoolservice.NewService(schoolservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: schoolRepo, FranchisorRepo: franchisorRepo,
	})
	subscriptionSvc := subscriptionservice.NewService(subscriptionservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: subscriptionRepo, SchoolRepo: schoolRepo,
	})
	lifecycleSvc := lifecycleservice.NewService(lifecycleservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, ReportConfig: holder,
		History:        lifecyclerepo.Provide(),
		FranchisorRepo: franchisorRepo, SchoolRepo: schoolRepo, SubscriptionRepo: subscriptionRepo,
	})
	reportingSvc := reportingservice.NewService(reportingservice.Params{
		DB: db, Log: log, ReportConfig: holder,
		SchoolRepo: schoolRepo, FranchisorRepo: franchisorRepo, SubscriptionRepo: subscriptionRepo,
	})

	srv := NewServer(ServerParams{
		Gin:             NewEngine(observability.Config{}),
		Cfg:             config.Config{Environment: "test"},
		DB:              db,
		GenID:           node,
		FranchisorSvc:   franchisorSvc,
		SchoolSvc:       schoolSvc,
		SubscriptionSvc: subscriptionSvc,
		LifecycleSvc:    lifecycleSvc,
		ReportingSvc:    reportingSvc,
		ReportCfg:       holder,
	})

	return &testEnv{db: db, node: node, server: srv}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, actor string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set("X-Admin-Actor", actor)
	}
	rec := httptest.NewRecorder()
	e.server.Engine().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seedSubscription(t *testing.T, status subscriptiondomain.Status) subscriptiondomain.Subscription {
	t.Helper()
	now := time.Now().UTC()

	franchisor := franchisordomain.Franchisor{
		ID: e.node.Generate(), Name: "Rede Horizonte",
		Status: franchisordomain.StatusActive, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, e.db.Create(&franchisor).Error)

	school := schooldomain.School{
		ID: e.node.Generate(), FranchisorID: franchisor.ID, Name: "Horizonte Centro",
		Status: schooldomain.StatusActive, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, e.db.Create(&school).Error)

	subscription := subscriptiondomain.Subscription{
		ID: e.node.Generate(), SchoolID: school.ID, PlanCode: "standard-monthly",
		Status: status, StartDate: now, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, e.db.Create(&subscription).Error)
	return subscription
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTransitionEndpoints(t *testing.T) {
	env := newTestEnv(t)
	subscription := env.seedSubscription(t, subscriptiondomain.StatusActive)
	base := "/api/subscriptions/" + subscription.ID.String()

	t.Run("mutation without actor header is forbidden", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, base+"/transitions", transitionBody{
			Action: "cancel", ReasonCategory: "requested_by_school",
			ReasonDetails: "contract ended", Confirmed: true,
		}, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing confirmation fails the precondition", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, base+"/transitions", transitionBody{
			Action: "cancel", ReasonCategory: "requested_by_school",
			ReasonDetails: "contract ended",
		}, "admin@franqia.com")
		assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	})

	t.Run("activating an active subscription conflicts", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, base+"/transitions", transitionBody{
			Action: "activate", ReasonCategory: "requested_by_school",
			ReasonDetails: "already running", Confirmed: true,
		}, "admin@franqia.com")
		assert.Equal(t, http.StatusConflict, rec.Code)

		var resp struct {
			Error struct {
				Type string `json:"type"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_transition", resp.Error.Type)
	})

	t.Run("confirmed cancel succeeds and is audited", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, base+"/transitions", transitionBody{
			Action: "cancel", ReasonCategory: "requested_by_school",
			ReasonDetails: "contract ended", Confirmed: true,
		}, "admin@franqia.com")
		require.Equal(t, http.StatusOK, rec.Code)

		var snapshot lifecycledomain.StatusSnapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
		assert.Equal(t, "cancelled", snapshot.CurrentStatus)
		assert.Equal(t, "admin@franqia.com", snapshot.LastChangedBy)

		history := env.do(t, http.MethodGet, base+"/history", nil, "")
		require.Equal(t, http.StatusOK, history.Code)

		var page struct {
			Data  []lifecycledomain.StatusHistoryRecord `json:"data"`
			Total int                                   `json:"total"`
		}
		require.NoError(t, json.Unmarshal(history.Body.Bytes(), &page))
		require.Equal(t, 1, page.Total)
		assert.Equal(t, "active", page.Data[0].FromStatus)
		assert.Equal(t, "cancelled", page.Data[0].ToStatus)
	})

	t.Run("unknown subscription is not found", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/subscriptions/"+env.node.Generate().String()+"/transitions", transitionBody{
			Action: "cancel", ReasonCategory: "requested_by_school",
			ReasonDetails: "ghost", Confirmed: true,
		}, "admin@franqia.com")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestReportEndpoints(t *testing.T) {
	env := newTestEnv(t)
	subscription := env.seedSubscription(t, subscriptiondomain.StatusActive)

	period := time.Now().UTC().Format("2006-01")
	require.NoError(t, env.db.Create(&schooldomain.FinancialSnapshot{
		ID:                env.node.Generate(),
		SchoolID:          subscription.SchoolID,
		Period:            period,
		ReceivedCents:     100000,
		OverdueCents:      25000,
		OverdueItemsCount: 1,
		MaxOverdueDays:    14,
		UpdatedAt:         time.Now().UTC(),
	}).Error)

	t.Run("summary reflects seeded figures", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/reports/summary", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Financials struct {
				OverdueCents    int64   `json:"overdue_cents"`
				DelinquencyRate float64 `json:"delinquency_rate"`
			} `json:"financials"`
			ActiveSubscriptions int64 `json:"active_subscriptions"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(25000), resp.Financials.OverdueCents)
		assert.Equal(t, float64(20), resp.Financials.DelinquencyRate)
		assert.Equal(t, int64(1), resp.ActiveSubscriptions)
	})

	t.Run("inverted range maps to invalid argument", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/reports/summary?from=2026-05&to=2026-01", nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unsupported metric maps to invalid argument", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/reports/top-schools?metric=students_count", nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestActorContextMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(ActorContext())
	var got string
	engine.GET("/probe", func(c *gin.Context) {
		got = c.GetString("actor")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-Admin-Actor", "ops@franqia.com")
	engine.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "ops@franqia.com", got)
}
