package domain

import (
	"context"
	"time"
)

type CreateFranchisorRequest struct {
	Name string `json:"name"`
}

type ListFranchisorRequest struct {
	Status       string
	NameContains string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Page         int
	PageSize     int
}

type Service interface {
	Create(ctx context.Context, req CreateFranchisorRequest) (Franchisor, error)
	GetByID(ctx context.Context, id string) (Franchisor, error)
	List(ctx context.Context, req ListFranchisorRequest) ([]Franchisor, error)
}
