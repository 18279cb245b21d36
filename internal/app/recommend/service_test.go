package recommend

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"musicapp/internal/app"
	"musicapp/internal/store"
)

func seededMemory(t *testing.T) *store.Memory {
	t.Helper()
	mem := store.NewMemory()
	for _, s := range catalogFixture() {
		s := s
		if _, err := mem.CreateSong(context.Background(), &s); err != nil {
			t.Fatalf("CreateSong: %v", err)
		}
	}
	return mem
}

func TestServiceUsesFavoritesAsSeeds(t *testing.T) {
	ctx := context.Background()
	mem := seededMemory(t)
	if _, _, err := mem.AddFavorite(ctx, "u1", "s5"); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}

	svc := New(mem, mem, 0)
	res, err := svc.Recommend(ctx, Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !reflect.DeepEqual(res.Debug.Seeds, []string{"s5"}) {
		t.Fatalf("seeds = %v", res.Debug.Seeds)
	}
	for _, s := range res.Recommendations {
		if s.ID == "s5" {
			t.Fatal("favorite seed returned as recommendation")
		}
	}
}

func TestServiceExplicitSeedsWinOverFavorites(t *testing.T) {
	ctx := context.Background()
	mem := seededMemory(t)
	_, _, _ = mem.AddFavorite(ctx, "u1", "s5")

	res, err := New(mem, mem, 0).Recommend(ctx, Request{UserID: "u1", SeedIDs: []string{"s2"}})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !reflect.DeepEqual(res.Debug.Seeds, []string{"s2"}) {
		t.Fatalf("seeds = %v", res.Debug.Seeds)
	}
}

func TestServiceDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	mem := seededMemory(t)
	svc := New(mem, nil, 2)

	res, err := svc.Recommend(ctx, Request{UserID: "nobody"})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(res.Recommendations) != 2 {
		t.Fatalf("configured default limit not applied: %d", len(res.Recommendations))
	}
	if !reflect.DeepEqual(res.Debug.Seeds, []string{"s1", "s2", "s3"}) {
		t.Fatalf("fallback seeds = %v", res.Debug.Seeds)
	}

	zero := 0
	res, err = svc.Recommend(ctx, Request{Limit: &zero})
	if err != nil {
		t.Fatalf("Recommend with zero limit: %v", err)
	}
	if len(res.Recommendations) != 0 {
		t.Fatalf("zero limit should return nothing, got %d", len(res.Recommendations))
	}

	negative := -1
	tests := []struct {
		name string
		req  Request
	}{
		{name: "unknown mood", req: Request{Mood: "sleepy"}},
		{name: "negative limit", req: Request{Limit: &negative}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Recommend(ctx, tc.req); !errors.Is(err, app.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestServiceEmptyCatalog(t *testing.T) {
	res, err := New(store.NewMemory(), nil, 0).Recommend(context.Background(), Request{SeedIDs: []string{"x"}})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(res.Recommendations) != 0 {
		t.Fatalf("expected no recommendations, got %v", res.Recommendations)
	}
}
