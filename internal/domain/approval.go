package domain

import (
	"context"
	"time"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Approval is a destructive MCP action waiting for the user. The desktop app
// and a standalone MCP process exchange these through the store.
type Approval struct {
	ID          string         `json:"id" bson:"_id"`
	Tool        string         `json:"tool" bson:"tool"`
	Description string         `json:"description" bson:"description"`
	Metadata    string         `json:"metadata" bson:"metadata"`
	Status      ApprovalStatus `json:"status" bson:"status"`
	CreatedAt   time.Time      `json:"createdAt" bson:"created_at"`
}

type ApprovalStore interface {
	CreateApproval(ctx context.Context, a Approval) error
	ApprovalStatus(ctx context.Context, id string) (ApprovalStatus, error)
	ResolveApproval(ctx context.Context, id string, approved bool) error
	DeleteApproval(ctx context.Context, id string) error
	PendingApprovals(ctx context.Context) ([]Approval, error)
}

// SettingsStore is a string key/value table for app preferences.
type SettingsStore interface {
	// GetSetting returns ErrNotFound for a missing key.
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}
