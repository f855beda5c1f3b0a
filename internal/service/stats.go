package service

import (
	"context"
	"fmt"
	"time"

	"chess-tracker/internal/api"
	"chess-tracker/internal/constants"
	"chess-tracker/internal/domain"
	"chess-tracker/internal/period"
	"chess-tracker/internal/stats"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type StatsService struct {
	chess  *api.ChessClient
	logger zerolog.Logger
}

func NewStatsService(chess *api.ChessClient, logger zerolog.Logger) *StatsService {
	return &StatsService{chess: chess, logger: logger}
}

// ComputeStats resolves the month buckets covering the period, fetches
// their archives and aggregates the merged games. A failed bucket fetch
// degrades to an empty contribution; the only hard failure is a game
// record that cannot be attributed to the player.
func (s *StatsService) ComputeStats(ctx context.Context, username string, periodType domain.PeriodType, reference time.Time) (*domain.AggregateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	p, err := period.Window(periodType, reference)
	if err != nil {
		return nil, err
	}

	buckets := period.Resolve(p, reference)

	s.logger.Info().
		Str("username", username).
		Str("period", string(periodType)).
		Time("start", p.Start).
		Time("end", p.End).
		Int("buckets", len(buckets)).
		Msg("computing stats")

	games := s.fetchAll(ctx, username, buckets)

	result, err := stats.Aggregate(username, games, p)
	if err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("aggregation failed")
		return nil, fmt.Errorf("failed to aggregate games: %w", err)
	}

	s.logger.Info().
		Str("username", username).
		Int("fetched_games", len(games)).
		Int("games_in_period", result.TotalGames()).
		Msg("stats computed")

	return result, nil
}

// fetchAll retrieves every bucket's archive concurrently. Each fetch is
// bounded on its own; failures are logged and contribute no games so the
// remaining buckets still count.
func (s *StatsService) fetchAll(ctx context.Context, username string, buckets []domain.MonthBucket) []domain.GameRecord {
	byBucket := make([][]domain.GameRecord, len(buckets))

	g, gCtx := errgroup.WithContext(ctx)
	for i, bucket := range buckets {
		i, bucket := i, bucket
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gCtx, constants.ArchiveFetchTimeout)
			defer cancel()

			archive, err := s.chess.GetMonthlyArchive(fetchCtx, username, bucket)
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("username", username).
					Str("bucket", bucket.String()).
					Msg("archive fetch failed, contributing no games")
				return nil
			}

			byBucket[i] = toGameRecords(archive.Games)
			s.logger.Debug().
				Str("username", username).
				Str("bucket", bucket.String()).
				Int("games", len(byBucket[i])).
				Msg("archive fetched")
			return nil
		})
	}
	// goroutines swallow fetch errors, so Wait only reports ctx trouble
	_ = g.Wait()

	var merged []domain.GameRecord
	for _, games := range byBucket {
		merged = append(merged, games...)
	}
	return merged
}

func toGameRecords(games []api.ArchivedGame) []domain.GameRecord {
	records := make([]domain.GameRecord, 0, len(games))
	for _, g := range games {
		class, ok := domain.ParseTimeControlClass(g.TimeClass)
		if !ok {
			continue
		}
		records = append(records, domain.GameRecord{
			EndTime:       time.Unix(g.EndTime, 0).UTC(),
			TimeClass:     class,
			WhiteUsername: g.White.Username,
			WhiteRating:   g.White.Rating,
			BlackUsername: g.Black.Username,
			BlackRating:   g.Black.Rating,
			PGN:           g.PGN,
		})
	}
	return records
}
