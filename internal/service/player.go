package service

import (
	"context"
	"fmt"
	"time"

	"chess-tracker/internal/api"
	"chess-tracker/internal/constants"
	"chess-tracker/internal/domain"
	"chess-tracker/internal/repository"

	"github.com/rs/zerolog"
)

type PlayerService struct {
	chess  *api.ChessClient
	repo   *repository.PlayerRepository
	logger zerolog.Logger
}

func NewPlayerService(chess *api.ChessClient, repo *repository.PlayerRepository, logger zerolog.Logger) *PlayerService {
	return &PlayerService{chess: chess, repo: repo, logger: logger}
}

// GetPlayer returns the registry entry for a username, fetching the
// chess.com profile on first sight or once the entry goes stale.
func (s *PlayerService) GetPlayer(ctx context.Context, username string, refresh bool) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	s.logger.Info().Str("username", username).Bool("refresh", refresh).Msg("getting player")

	player, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("registry lookup failed")
		return nil, fmt.Errorf("failed to look up player: %w", err)
	}

	shouldRefresh := refresh
	if player == nil {
		shouldRefresh = true
		s.logger.Debug().Str("username", username).Msg("player not in registry, fetching profile")
	} else if !shouldRefresh {
		stale := time.Since(player.LastFetchAt) > constants.PlayerRefreshTTL
		s.logger.Debug().
			Str("username", username).
			Time("last_fetch_at", player.LastFetchAt).
			Bool("stale", stale).
			Msg("refresh decision")
		shouldRefresh = stale
	}

	if !shouldRefresh {
		s.logger.Info().Str("username", username).Msg("returning registered player")
		return player, nil
	}

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ProfileFetchTimeout)
	defer apiCancel()

	profile, err := s.chess.GetProfile(apiCtx, username)
	if err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("failed to fetch profile")
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	player = &domain.Player{
		Username:    profile.Username,
		Name:        profile.Name,
		Title:       profile.Title,
		Country:     profile.Country,
		AvatarURL:   profile.Avatar,
		Followers:   profile.Followers,
		JoinedAt:    time.Unix(profile.Joined, 0).UTC(),
		LastFetchAt: time.Now().UTC(),
	}

	if err := s.repo.Upsert(ctx, player); err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("failed to upsert player")
		return nil, fmt.Errorf("failed to upsert player: %w", err)
	}

	s.logger.Info().Str("username", player.Username).Msg("player profile refreshed")
	return player, nil
}
