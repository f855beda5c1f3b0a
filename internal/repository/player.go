package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chess-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(db *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{db: db, logger: logger}
}

// GetByUsername looks a player up case-insensitively. A missing player
// is (nil, nil), not an error.
func (r *PlayerRepository) GetByUsername(ctx context.Context, username string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, name, title, country, avatar_url, followers,
		       joined_at, last_fetch_at, created_at, updated_at
		FROM players
		WHERE username = ? COLLATE NOCASE`, username)

	var p domain.Player
	err := row.Scan(&p.ID, &p.Username, &p.Name, &p.Title, &p.Country,
		&p.AvatarURL, &p.Followers, &p.JoinedAt, &p.LastFetchAt,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query player: %w", err)
	}
	return &p, nil
}

func (r *PlayerRepository) Upsert(ctx context.Context, player *domain.Player) error {
	if player.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		player.ID = id
	}

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO players (
			id, username, name, title, country, avatar_url, followers,
			joined_at, last_fetch_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			name = excluded.name,
			title = excluded.title,
			country = excluded.country,
			avatar_url = excluded.avatar_url,
			followers = excluded.followers,
			joined_at = excluded.joined_at,
			last_fetch_at = excluded.last_fetch_at,
			updated_at = excluded.updated_at`,
		player.ID, player.Username, player.Name, player.Title, player.Country,
		player.AvatarURL, player.Followers, player.JoinedAt, player.LastFetchAt,
		now, now)
	if err != nil {
		r.logger.Error().Err(err).Str("username", player.Username).Msg("failed to upsert player")
		return fmt.Errorf("failed to upsert player: %w", err)
	}

	r.logger.Debug().Str("username", player.Username).Msg("player upserted")
	return nil
}

func (r *PlayerRepository) SetLastFetchAt(ctx context.Context, username string, lastFetchAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE players
		SET last_fetch_at = ?, updated_at = ?
		WHERE username = ? COLLATE NOCASE`,
		lastFetchAt, time.Now().UTC(), username)
	if err != nil {
		r.logger.Error().Err(err).Str("username", username).Msg("failed to set last fetch at")
		return fmt.Errorf("failed to set last fetch at: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("player %q not found", username)
	}
	return nil
}
