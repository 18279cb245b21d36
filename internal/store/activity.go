package store

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"musicapp/internal/models"
)

// AppendActivity records a single activity entry.
func (s *Store) AppendActivity(ctx context.Context, activity models.Activity) (*models.Activity, error) {
	if activity.ID == "" {
		activity.ID = s.newID()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = s.now()
	}
	metadata, err := json.Marshal(activity.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode activity metadata: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (id, user_id, type, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		activity.ID, activity.UserID, string(activity.Type), metadata, activity.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}
	return &activity, nil
}

// RecentActivity returns up to limit entries for the user, newest first.
func (s *Store) RecentActivity(ctx context.Context, userID string, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = models.RecentActivityLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, metadata, created_at
		FROM activities
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	activities := make([]models.Activity, 0, limit)
	for rows.Next() {
		var (
			activity models.Activity
			kind     string
			raw      []byte
		)
		if err := rows.Scan(&activity.ID, &activity.UserID, &kind, &raw, &activity.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activity.Type = models.ActivityType(kind)
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &activity.Metadata); err != nil {
				return nil, fmt.Errorf("decode activity metadata: %w", err)
			}
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return activities, nil
}
