package domain

import (
	"context"
	"time"
)

type CreateSchoolRequest struct {
	FranchisorID string `json:"franchisor_id"`
	Name         string `json:"name"`
}

type ListSchoolRequest struct {
	FranchisorID string
	Status       string
	NameContains string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

type UpsertSnapshotRequest struct {
	SchoolID          string `json:"school_id"`
	Period            string `json:"period"`
	ReceivedCents     int64  `json:"received_cents"`
	OpenCents         int64  `json:"open_cents"`
	OverdueCents      int64  `json:"overdue_cents"`
	OverdueItemsCount int    `json:"overdue_items_count"`
	MaxOverdueDays    int    `json:"max_overdue_days"`
}

type Service interface {
	Create(ctx context.Context, req CreateSchoolRequest) (School, error)
	GetByID(ctx context.Context, id string) (School, error)
	List(ctx context.Context, req ListSchoolRequest) ([]School, error)
	UpsertSnapshot(ctx context.Context, req UpsertSnapshotRequest) (FinancialSnapshot, error)
}
