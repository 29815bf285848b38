package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EntityKind names the entity families whose status is governed here.
type EntityKind string

const (
	KindFranchisor   EntityKind = "franchisor"
	KindSchool       EntityKind = "school"
	KindSubscription EntityKind = "subscription"
)

// Action is a requested status change, not a target status. The target is
// derived from the transition table for the entity's current status.
type Action string

const (
	ActionApprove    Action = "approve"
	ActionSuspend    Action = "suspend"
	ActionReactivate Action = "reactivate"
	ActionActivate   Action = "activate"
	ActionCancel     Action = "cancel"
)

// StatusHistoryRecord is one audit entry. Records are append-only: nothing
// in this repository updates or deletes a row once written.
type StatusHistoryRecord struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	EntityKind     EntityKind        `gorm:"index:ix_history_entity,priority:1" json:"entity_kind"`
	EntityID       snowflake.ID      `gorm:"index:ix_history_entity,priority:2" json:"entity_id"`
	FromStatus     string            `json:"from_status"`
	ToStatus       string            `json:"to_status"`
	Action         Action            `json:"action"`
	ReasonCategory string            `json:"reason_category"`
	ReasonDetails  string            `json:"reason_details"`
	Actor          string            `json:"actor"`
	OccurredAt     time.Time         `gorm:"index:ix_history_entity,priority:3" json:"occurred_at"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty"`
}

func (StatusHistoryRecord) TableName() string {
	return "status_history"
}

// StatusSnapshot is what a transition or status read returns.
type StatusSnapshot struct {
	EntityKind         EntityKind   `json:"entity_kind"`
	EntityID           snowflake.ID `json:"entity_id"`
	CurrentStatus      string       `json:"current_status"`
	LastChangedAt      *time.Time   `json:"last_changed_at,omitempty"`
	LastChangedBy      string       `json:"last_changed_by,omitempty"`
	LastReasonCategory string       `json:"last_reason_category,omitempty"`
	LastReasonDetails  string       `json:"last_reason_details,omitempty"`
}

var (
	ErrUnknownEntityKind    = errors.New("unknown_entity_kind")
	ErrInvalidAction        = errors.New("invalid_action")
	ErrInvalidReason        = errors.New("invalid_reason_category")
	ErrJustificationMissing = errors.New("justification_required")
	ErrConfirmationRequired = errors.New("confirmation_required")
	ErrInvalidTransition    = errors.New("invalid_transition")
)
