package activity

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"musicapp/internal/app"
	"musicapp/internal/models"
	"musicapp/internal/store"
)

func TestLogValidatesType(t *testing.T) {
	svc := New(store.NewMemory())
	tests := []struct {
		name    string
		userID  string
		kind    models.ActivityType
		wantErr bool
	}{
		{name: "play", userID: "u1", kind: models.ActivityPlay},
		{name: "queue saved", userID: "u1", kind: models.ActivityQueueSaved},
		{name: "unknown type", userID: "u1", kind: "dance", wantErr: true},
		{name: "missing user", userID: " ", kind: models.ActivityVisit, wantErr: true},
		{name: "missing type", userID: "u1", wantErr: true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			entry, err := svc.Log(context.Background(), tc.userID, tc.kind, nil)
			if tc.wantErr {
				if !errors.Is(err, app.ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Log: %v", err)
			}
			if entry.ID == "" || entry.Metadata == nil {
				t.Fatalf("unexpected entry %+v", entry)
			}
		})
	}
}

func TestRecentReturnsNewestTwenty(t *testing.T) {
	svc := New(store.NewMemory())
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		if _, err := svc.Log(ctx, "u1", models.ActivityPlay, map[string]any{"n": i}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}
	if _, err := svc.Log(ctx, "u2", models.ActivityVisit, nil); err != nil {
		t.Fatalf("Log: %v", err)
	}

	entries, err := svc.Recent(ctx, "u1")
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != models.RecentActivityLimit {
		t.Fatalf("expected %d entries, got %d", models.RecentActivityLimit, len(entries))
	}
	if got := fmt.Sprint(entries[0].Metadata["n"]); got != "24" {
		t.Fatalf("expected newest first, got n=%s", got)
	}
}

func TestSinkSwallowsErrors(t *testing.T) {
	mem := store.NewMemory()
	sink := NewSink(New(mem))
	sink.Record(context.Background(), "", models.ActivityPlay, nil)
	sink.Record(context.Background(), "u1", models.ActivityFavorite, map[string]any{"songId": "s1"})

	entries, _ := mem.RecentActivity(context.Background(), "u1", 0)
	if len(entries) != 1 || entries[0].Type != models.ActivityFavorite {
		t.Fatalf("unexpected entries %+v", entries)
	}
}
