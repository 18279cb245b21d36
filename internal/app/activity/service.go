package activity

import (
	"context"
	"strings"

	"musicapp/internal/app"
	"musicapp/internal/logging"
	"musicapp/internal/models"
)

// Store persists the append-only activity log.
type Store interface {
	AppendActivity(ctx context.Context, activity models.Activity) (*models.Activity, error)
	RecentActivity(ctx context.Context, userID string, limit int) ([]models.Activity, error)
}

// Service exposes activity logging.
type Service interface {
	Log(ctx context.Context, userID string, kind models.ActivityType, metadata map[string]any) (*models.Activity, error)
	Recent(ctx context.Context, userID string) ([]models.Activity, error)
}

type service struct {
	store Store
}

// New constructs an activity Service.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) Log(ctx context.Context, userID string, kind models.ActivityType, metadata map[string]any) (*models.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" || kind == "" {
		return nil, app.Validation("userId and type are required")
	}
	if !kind.Valid() {
		return nil, app.Validation("invalid activity type %q", kind)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return s.store.AppendActivity(ctx, models.Activity{
		UserID:   userID,
		Type:     kind,
		Metadata: metadata,
	})
}

func (s *service) Recent(ctx context.Context, userID string) ([]models.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, app.Validation("userId is required")
	}
	return s.store.RecentActivity(ctx, userID, models.RecentActivityLimit)
}

// Sink records activity on behalf of other workflows. Failures are logged and
// never surface to the caller.
type Sink struct {
	svc Service
}

// NewSink wraps svc as a best-effort recorder.
func NewSink(svc Service) *Sink {
	return &Sink{svc: svc}
}

// Record appends an entry, logging any error.
func (s *Sink) Record(ctx context.Context, userID string, kind models.ActivityType, metadata map[string]any) {
	if _, err := s.svc.Log(ctx, userID, kind, metadata); err != nil {
		logging.FromContext(ctx).Warn().
			Err(err).
			Str("user_id", userID).
			Str("activity", string(kind)).
			Msg("activity not recorded")
	}
}
