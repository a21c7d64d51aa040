package domain

import "time"

// Urgency represents how pressing a broadcast is.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// BroadcastType categorises a broadcast.
type BroadcastType string

const (
	TypeAnnouncement BroadcastType = "announcement"
	TypeAlert        BroadcastType = "alert"
	TypeMaintenance  BroadcastType = "maintenance"
	TypeUpdate       BroadcastType = "update"
	TypeNews         BroadcastType = "news"
	TypeMeeting      BroadcastType = "meeting"
)

// BroadcastStatus represents the lifecycle state of a broadcast.
type BroadcastStatus string

const (
	StatusActive   BroadcastStatus = "active"
	StatusExpired  BroadcastStatus = "expired"
	StatusArchived BroadcastStatus = "archived"
)

const (
	TitleMaxLen   = 200
	MessageMaxLen = 5000
)

var validUrgencies = map[Urgency]struct{}{
	UrgencyLow: {}, UrgencyMedium: {}, UrgencyHigh: {},
}

var validTypes = map[BroadcastType]struct{}{
	TypeAnnouncement: {}, TypeAlert: {}, TypeMaintenance: {},
	TypeUpdate: {}, TypeNews: {}, TypeMeeting: {},
}

// ValidUrgency reports whether s is a known urgency level.
func ValidUrgency(s string) bool {
	_, ok := validUrgencies[Urgency(s)]
	return ok
}

// ValidType reports whether s is a known broadcast type.
func ValidType(s string) bool {
	_, ok := validTypes[BroadcastType(s)]
	return ok
}

// Broadcast is the core aggregate root: a time-scoped message visible to all
// readers and owned by the user that created it.
type Broadcast struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	Urgency    Urgency         `json:"urgency"`
	Type       BroadcastType   `json:"type"`
	Tags       []string        `json:"tags"`
	CreatedBy  string          `json:"created_by"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
	Status     BroadcastStatus `json:"status"`
	Views      int64           `json:"views"`
	Priority   int             `json:"priority"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// EffectiveStatus derives the status that must be persisted on a write: a
// non-nil expiry date in the past forces "expired" regardless of the stored
// or caller-supplied status. There is no background sweep; this runs on every
// write path, including the very first.
func EffectiveStatus(status BroadcastStatus, expiryDate *time.Time, now time.Time) BroadcastStatus {
	if expiryDate != nil && expiryDate.Before(now) {
		return StatusExpired
	}
	return status
}
