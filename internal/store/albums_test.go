package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"musicapp/internal/models"
)

func fixedStore(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	s := New(db)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	s.newID = func() string { return "generated-id" }
	return s, mock, func() { db.Close() }
}

func TestValidateAlbum(t *testing.T) {
	tests := []struct {
		name    string
		album   models.Album
		wantErr bool
	}{
		{name: "valid album", album: models.Album{Name: "Selected Ambient Works"}},
		{name: "missing name", album: models.Album{Description: "no name"}, wantErr: true},
		{name: "whitespace name", album: models.Album{Name: "   "}, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := validateAlbum(tc.album)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidAlbum) {
					t.Fatalf("expected ErrInvalidAlbum, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected nil error but got %v", err)
			}
		})
	}
}

func TestCreateAlbumSuccess(t *testing.T) {
	s, mock, done := fixedStore(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO albums`)).
		WithArgs("generated-id", "Night Paths", "late", "#000000", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	album, err := s.CreateAlbum(context.Background(), models.Album{
		Name:            "  Night Paths ",
		Description:     "late",
		BackgroundColor: "#000000",
	})
	if err != nil {
		t.Fatalf("CreateAlbum returned error: %v", err)
	}
	if album.ID != "generated-id" || album.Name != "Night Paths" {
		t.Fatalf("unexpected album: %+v", album)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateAlbumRejectsMissingName(t *testing.T) {
	s, mock, done := fixedStore(t)
	defer done()

	if _, err := s.CreateAlbum(context.Background(), models.Album{}); !errors.Is(err, ErrInvalidAlbum) {
		t.Fatalf("expected ErrInvalidAlbum, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteAlbumClearsSongReferences(t *testing.T) {
	s, mock, done := fixedStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name`)).
		WithArgs("album-1").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Orbitals"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE songs`)).
		WithArgs("Orbitals").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM albums WHERE id = $1`)).
		WithArgs("album-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.DeleteAlbum(context.Background(), "album-1"); err != nil {
		t.Fatalf("DeleteAlbum returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteAlbumNotFound(t *testing.T) {
	s, mock, done := fixedStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectRollback()

	if err := s.DeleteAlbum(context.Background(), "missing"); !errors.Is(err, ErrAlbumNotFound) {
		t.Fatalf("expected ErrAlbumNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
