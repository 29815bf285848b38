package domain

import (
	"context"

	"github.com/franqia/console/pkg/db/paginate"
)

type TransitionRequest struct {
	Kind           EntityKind `json:"-"`
	EntityID       string     `json:"-"`
	Action         Action     `json:"action"`
	ReasonCategory string     `json:"reason_category"`
	ReasonDetails  string     `json:"reason_details"`
	Confirmed      bool       `json:"confirmed"`
	Actor          string     `json:"-"`
}

type HistoryRequest struct {
	Kind     EntityKind
	EntityID string
	Page     int
	PageSize int
}

type Service interface {
	Transition(ctx context.Context, req TransitionRequest) (StatusSnapshot, error)
	Snapshot(ctx context.Context, kind EntityKind, entityID string) (StatusSnapshot, error)
	History(ctx context.Context, req HistoryRequest) (paginate.Page[StatusHistoryRecord], error)
}
