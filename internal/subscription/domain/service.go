package domain

import (
	"context"
	"time"
)

type CreateSubscriptionRequest struct {
	SchoolID      string     `json:"school_id"`
	PlanCode      string     `json:"plan_code"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	NextRenewalAt *time.Time `json:"next_renewal_at,omitempty"`
}

type ListSubscriptionRequest struct {
	SchoolID     string
	FranchisorID string
	Status       string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

type Service interface {
	Create(ctx context.Context, req CreateSubscriptionRequest) (Subscription, error)
	GetByID(ctx context.Context, id string) (Subscription, error)
	List(ctx context.Context, req ListSubscriptionRequest) ([]Subscription, error)
}
