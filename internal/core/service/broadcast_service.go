package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/noticeboard/notice-board-api/internal/core/domain"
	"github.com/noticeboard/notice-board-api/internal/core/ports"
	"github.com/noticeboard/notice-board-api/internal/observability/metrics"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// StatsCache abstracts the short-lived cache in front of the stats aggregate
// (Redis). A cache miss returns (nil, nil).
type StatsCache interface {
	Get(ctx context.Context) (*ports.BroadcastStats, error)
	Set(ctx context.Context, stats *ports.BroadcastStats) error
	Invalidate(ctx context.Context) error
}

// BroadcastService implements the broadcast lifecycle. Mutations enforce the
// ownership rule: only the creator or an admin may update or delete a record.
//
// Update applies every key present in the payload verbatim, created_by,
// status and views included. That unrestricted overwrite matches the contract
// this service replaces; the expiry rule still overrides status on every
// persist.
type BroadcastService struct {
	repo  ports.BroadcastRepository
	cache StatsCache // optional, may be nil
	log   zerolog.Logger
}

func NewBroadcastService(repo ports.BroadcastRepository, cache StatsCache, log zerolog.Logger) *BroadcastService {
	return &BroadcastService{repo: repo, cache: cache, log: log}
}

// Create validates and persists a new broadcast owned by ownerID. A broadcast
// born with an expiry date already in the past is persisted as expired.
func (s *BroadcastService) Create(ctx context.Context, input ports.CreateBroadcastInput, ownerID string) (*domain.Broadcast, error) {
	title := strings.TrimSpace(input.Title)
	message := strings.TrimSpace(input.Message)

	// Length caps count characters, not bytes, matching the max= binding
	// validation upstream.
	var violations []string
	if title == "" {
		violations = append(violations, "title is required")
	} else if utf8.RuneCountInString(title) > domain.TitleMaxLen {
		violations = append(violations, fmt.Sprintf("title must be at most %d characters", domain.TitleMaxLen))
	}
	if message == "" {
		violations = append(violations, "message is required")
	} else if utf8.RuneCountInString(message) > domain.MessageMaxLen {
		violations = append(violations, fmt.Sprintf("message must be at most %d characters", domain.MessageMaxLen))
	}

	urgency := domain.UrgencyMedium
	if input.Urgency != "" {
		if !domain.ValidUrgency(input.Urgency) {
			violations = append(violations, "urgency must be one of: low, medium, high")
		} else {
			urgency = domain.Urgency(input.Urgency)
		}
	}

	btype := domain.TypeAnnouncement
	if input.Type != "" {
		if !domain.ValidType(input.Type) {
			violations = append(violations, "type must be one of: announcement, alert, maintenance, update, news, meeting")
		} else {
			btype = domain.BroadcastType(input.Type)
		}
	}

	if len(violations) > 0 {
		return nil, domain.NewValidationError(violations...)
	}

	now := time.Now().UTC()
	b := &domain.Broadcast{
		Title:      title,
		Message:    message,
		Urgency:    urgency,
		Type:       btype,
		Tags:       trimTags(input.Tags),
		CreatedBy:  ownerID,
		ExpiryDate: input.ExpiryDate,
		Status:     domain.EffectiveStatus(domain.StatusActive, input.ExpiryDate, now),
		Priority:   input.Priority,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	created, err := s.repo.Create(ctx, b)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create broadcast")
		return nil, err
	}

	s.invalidateStats(ctx)
	metrics.BroadcastsCreatedTotal.WithLabelValues(string(created.Type)).Inc()
	s.log.Info().Str("broadcast_id", created.ID).Str("created_by", ownerID).Msg("broadcast created")

	return created, nil
}

// Get returns a single broadcast and, as an observable side effect, bumps its
// view counter by one.
func (s *BroadcastService) Get(ctx context.Context, id string) (*domain.Broadcast, error) {
	b, err := s.repo.GetAndIncrementViews(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.BroadcastViewsTotal.Inc()
	return b, nil
}

// List returns one page of broadcasts under the given filter and sort order.
// The status filter defaults to "active" when unspecified.
func (s *BroadcastService) List(ctx context.Context, input ports.ListBroadcastsInput) (*ports.ListBroadcastsResult, error) {
	page := input.Page
	if page < 1 {
		page = defaultPage
	}
	limit := input.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	status := input.Status
	if status == "" {
		status = string(domain.StatusActive)
	}

	sort := input.Sort
	if sort == "" {
		sort = "-createdAt"
	}

	items, total, err := s.repo.List(ctx, ports.ListBroadcastsFilter{
		Status:  status,
		Type:    input.Type,
		Urgency: input.Urgency,
		Search:  strings.TrimSpace(input.Search),
		Sort:    sort,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	return &ports.ListBroadcastsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// Update overwrites exactly the fields present in update after the ownership
// check passes. The expiry rule is re-evaluated at the moment of this write:
// a past expiry forces status to expired no matter what the caller supplied.
func (s *BroadcastService) Update(ctx context.Context, id string, actor domain.Identity, update ports.BroadcastUpdate) (*domain.Broadcast, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(existing.CreatedBy) {
		return nil, domain.ErrForbidden
	}

	var violations []string
	if update.Title != nil {
		t := strings.TrimSpace(*update.Title)
		if t == "" {
			violations = append(violations, "title cannot be empty")
		} else if utf8.RuneCountInString(t) > domain.TitleMaxLen {
			violations = append(violations, fmt.Sprintf("title must be at most %d characters", domain.TitleMaxLen))
		}
		update.Title = &t
	}
	if update.Message != nil {
		m := strings.TrimSpace(*update.Message)
		if m == "" {
			violations = append(violations, "message cannot be empty")
		} else if utf8.RuneCountInString(m) > domain.MessageMaxLen {
			violations = append(violations, fmt.Sprintf("message must be at most %d characters", domain.MessageMaxLen))
		}
		update.Message = &m
	}
	if update.Urgency != nil && !domain.ValidUrgency(string(*update.Urgency)) {
		violations = append(violations, "urgency must be one of: low, medium, high")
	}
	if update.Type != nil && !domain.ValidType(string(*update.Type)) {
		violations = append(violations, "type must be one of: announcement, alert, maintenance, update, news, meeting")
	}
	if len(violations) > 0 {
		return nil, domain.NewValidationError(violations...)
	}

	if update.Tags != nil {
		trimmed := trimTags(*update.Tags)
		update.Tags = &trimmed
	}

	// Status is always written: it is either the caller's value or the
	// stored one, passed through the expiry rule against the final expiry
	// date for this write. An explicit null clears the expiry, so a
	// broadcast can be revived to "never expires".
	expiry := existing.ExpiryDate
	if update.ExpiryDate.Set {
		expiry = update.ExpiryDate.Time
	}
	status := existing.Status
	if update.Status != nil {
		status = *update.Status
	}
	effective := domain.EffectiveStatus(status, expiry, time.Now().UTC())
	update.Status = &effective

	updated, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx)
	s.log.Info().Str("broadcast_id", id).Str("actor_id", actor.ID).Msg("broadcast updated")

	return updated, nil
}

// Delete permanently removes a broadcast after the ownership check passes.
func (s *BroadcastService) Delete(ctx context.Context, id string, actor domain.Identity) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(existing.CreatedBy) {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateStats(ctx)
	s.log.Info().Str("broadcast_id", id).Str("actor_id", actor.ID).Msg("broadcast deleted")

	return nil
}

// Stats computes the collection-wide aggregate, serving from the cache when a
// fresh copy exists.
func (s *BroadcastService) Stats(ctx context.Context) (*ports.BroadcastStats, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("stats cache read failed, falling through")
		} else if cached != nil {
			return cached, nil
		}
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats); err != nil {
			s.log.Warn().Err(err).Msg("stats cache write failed")
		}
	}

	return stats, nil
}

func (s *BroadcastService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("stats cache invalidation failed")
	}
}

// trimTags trims surrounding whitespace from each tag, preserving order and
// dropping entries that end up empty.
func trimTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
