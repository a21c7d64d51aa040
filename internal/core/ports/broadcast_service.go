package ports

import (
	"context"
	"time"

	"github.com/noticeboard/notice-board-api/internal/core/domain"
)

// CreateBroadcastInput carries all data needed to publish a new broadcast.
// Urgency defaults to "medium" and Type to "announcement" when empty.
type CreateBroadcastInput struct {
	Title      string
	Message    string
	Urgency    string
	Type       string
	Tags       []string
	ExpiryDate *time.Time
	Priority   int
}

// ListBroadcastsInput carries the caller-facing list parameters before
// defaults are applied.
type ListBroadcastsInput struct {
	Status  string
	Type    string
	Urgency string
	Search  string
	Sort    string
	Page    int
	Limit   int
}

// ListBroadcastsResult is returned by List.
type ListBroadcastsResult struct {
	Items      []*domain.Broadcast
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// BroadcastService defines use-case operations for the broadcast lifecycle.
// List, Get and Stats serve unauthenticated readers; the mutating operations
// require an identity and enforce the ownership rule (owner or admin).
type BroadcastService interface {
	Create(ctx context.Context, input CreateBroadcastInput, ownerID string) (*domain.Broadcast, error)
	Get(ctx context.Context, id string) (*domain.Broadcast, error)
	List(ctx context.Context, input ListBroadcastsInput) (*ListBroadcastsResult, error)
	Update(ctx context.Context, id string, actor domain.Identity, update BroadcastUpdate) (*domain.Broadcast, error)
	Delete(ctx context.Context, id string, actor domain.Identity) error
	Stats(ctx context.Context) (*BroadcastStats, error)
}
