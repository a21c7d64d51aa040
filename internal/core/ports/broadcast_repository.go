package ports

import (
	"context"
	"time"

	"github.com/noticeboard/notice-board-api/internal/core/domain"
)

// ListBroadcastsFilter carries all query parameters for listing broadcasts.
// Status is always non-empty by the time it reaches the repository; the
// service resolves the "active" default.
type ListBroadcastsFilter struct {
	Status  string // required: exact match
	Type    string // optional: exact match
	Urgency string // optional: exact match
	Search  string // optional: case-insensitive substring across title, message, tags
	Sort    string // field name, "-" prefix for descending; empty = -createdAt
	Page    int    // 1-based
	Limit   int    // rows per page
}

// TimePatch distinguishes the three states a nullable time field can take in
// a partial write: absent (Set false, leave unchanged), explicit null (Set
// true, Time nil, clear the stored value) and a new value (Set true, Time
// non-nil).
type TimePatch struct {
	Set  bool
	Time *time.Time
}

// BroadcastUpdate is a partial write: only supplied fields are persisted.
// Every key the caller supplied is applied verbatim, including CreatedBy,
// Status and Views. ExpiryDate uses TimePatch so a null can clear it.
type BroadcastUpdate struct {
	Title      *string
	Message    *string
	Urgency    *domain.Urgency
	Type       *domain.BroadcastType
	Tags       *[]string
	CreatedBy  *string
	ExpiryDate TimePatch
	Status     *domain.BroadcastStatus
	Views      *int64
	Priority   *int
}

// RecentBroadcast is the trimmed view used in the stats recent-activity list.
type RecentBroadcast struct {
	Title     string         `json:"title"`
	CreatedAt time.Time      `json:"created_at"`
	Urgency   domain.Urgency `json:"urgency"`
}

// BroadcastStats is the aggregate computed in a single pass over the
// collection. Count maps carry an entry for every enum value, zero included.
type BroadcastStats struct {
	Total     int64             `json:"total"`
	ByUrgency map[string]int64  `json:"by_urgency"`
	ByType    map[string]int64  `json:"by_type"`
	Active    int64             `json:"active"`
	Recent    []RecentBroadcast `json:"recent"`
}

// BroadcastRepository defines persistence operations for broadcasts.
type BroadcastRepository interface {
	Create(ctx context.Context, b *domain.Broadcast) (*domain.Broadcast, error)
	FindByID(ctx context.Context, id string) (*domain.Broadcast, error)
	// GetAndIncrementViews atomically bumps the view counter and returns the
	// updated record. The increment never touches other fields, so it cannot
	// clobber a concurrent update.
	GetAndIncrementViews(ctx context.Context, id string) (*domain.Broadcast, error)
	Update(ctx context.Context, id string, update BroadcastUpdate) (*domain.Broadcast, error)
	Delete(ctx context.Context, id string) error
	// List returns one page of matching broadcasts and the total match count
	// regardless of pagination.
	List(ctx context.Context, filter ListBroadcastsFilter) ([]*domain.Broadcast, int64, error)
	Stats(ctx context.Context) (*BroadcastStats, error)
}
