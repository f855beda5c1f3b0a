package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"chess-tracker/internal/config"
	"chess-tracker/internal/database"
	"chess-tracker/internal/domain"

	"github.com/rs/zerolog"
)

func newTestRepo(t *testing.T) *PlayerRepository {
	t.Helper()

	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "chess.db")}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewPlayerRepository(db, zerolog.Nop())
}

func testPlayer(username string) *domain.Player {
	return &domain.Player{
		Username:    username,
		Name:        "Alice Example",
		Title:       "WFM",
		Country:     "https://api.chess.com/pub/country/NO",
		Followers:   42,
		JoinedAt:    time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC),
		LastFetchAt: time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestPlayerRepository_UpsertAndGet(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	player := testPlayer("alice")
	if err := repo.Upsert(ctx, player); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if player.ID == "" {
		t.Fatal("expected generated id after upsert")
	}

	got, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if got == nil {
		t.Fatal("player not found after upsert")
	}
	if got.Name != "Alice Example" || got.Title != "WFM" || got.Followers != 42 {
		t.Fatalf("unexpected player: %+v", got)
	}
}

func TestPlayerRepository_GetIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Upsert(ctx, testPlayer("AliceChess")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := repo.GetByUsername(ctx, "alicechess")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if got == nil {
		t.Fatal("case-insensitive lookup failed")
	}
}

func TestPlayerRepository_GetMissing(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)

	got, err := repo.GetByUsername(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing player, got %+v", got)
	}
}

func TestPlayerRepository_UpsertUpdatesExisting(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	player := testPlayer("alice")
	if err := repo.Upsert(ctx, player); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}

	updated := testPlayer("alice")
	updated.Followers = 100
	updated.Title = "FM"
	if err := repo.Upsert(ctx, updated); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	got, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if got.Followers != 100 || got.Title != "FM" {
		t.Fatalf("update not applied: %+v", got)
	}
}

func TestPlayerRepository_SetLastFetchAt(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Upsert(ctx, testPlayer("alice")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	ts := time.Date(2026, time.February, 1, 8, 0, 0, 0, time.UTC)
	if err := repo.SetLastFetchAt(ctx, "alice", ts); err != nil {
		t.Fatalf("SetLastFetchAt: %v", err)
	}

	got, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if !got.LastFetchAt.Equal(ts) {
		t.Fatalf("last_fetch_at = %v, want %v", got.LastFetchAt, ts)
	}

	if err := repo.SetLastFetchAt(ctx, "nobody", ts); err == nil {
		t.Fatal("expected error for unknown player")
	}
}
