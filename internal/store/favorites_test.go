package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"musicapp/internal/models"
)

func TestAddFavoriteReportsExistingPair(t *testing.T) {
	s, mock, done := fixedStore(t)
	defer done()

	created := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO favorites`)).
		WithArgs("generated-id", "u1", "s1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "inserted"}).AddRow("fav-1", created, false))

	favorite, inserted, err := s.AddFavorite(context.Background(), "u1", "s1")
	if err != nil {
		t.Fatalf("AddFavorite returned error: %v", err)
	}
	if inserted {
		t.Fatal("expected existing favorite to report inserted=false")
	}
	if favorite.ID != "fav-1" || !favorite.CreatedAt.Equal(created) {
		t.Fatalf("unexpected favorite: %+v", favorite)
	}
}

func TestRemoveFavoriteIsIdempotent(t *testing.T) {
	s, mock, done := fixedStore(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM favorites WHERE user_id = $1 AND song_id = $2`)).
		WithArgs("u1", "s1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := s.RemoveFavorite(context.Background(), "u1", "s1")
	if err != nil {
		t.Fatalf("RemoveFavorite returned error: %v", err)
	}
	if removed {
		t.Fatal("expected removed=false for absent pair")
	}
}

func TestRecentActivityDecodesMetadata(t *testing.T) {
	s, mock, done := fixedStore(t)
	defer done()

	at := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM activities`)).
		WithArgs("u1", models.RecentActivityLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "type", "metadata", "created_at"}).
			AddRow("a2", "u1", "favorite", []byte(`{"songId":"s1"}`), at).
			AddRow("a1", "u1", "visit", []byte(`null`), at.Add(-time.Minute)))

	activities, err := s.RecentActivity(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("RecentActivity returned error: %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(activities))
	}
	if activities[0].Type != models.ActivityFavorite || activities[0].Metadata["songId"] != "s1" {
		t.Fatalf("unexpected first activity: %+v", activities[0])
	}
}

func TestAppendActivityEncodesMetadata(t *testing.T) {
	s, mock, done := fixedStore(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO activities`)).
		WithArgs("generated-id", "u1", "play", []byte(`{"songId":"s1"}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	activity, err := s.AppendActivity(context.Background(), models.Activity{
		UserID:   "u1",
		Type:     models.ActivityPlay,
		Metadata: map[string]any{"songId": "s1"},
	})
	if err != nil {
		t.Fatalf("AppendActivity returned error: %v", err)
	}
	if activity.ID != "generated-id" {
		t.Fatalf("unexpected id %q", activity.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
