package fx

import (
	"chess-tracker/internal/api"
	"chess-tracker/internal/config"
	"chess-tracker/internal/database"
	"chess-tracker/internal/logger"
	"chess-tracker/internal/repository"
	"chess-tracker/internal/server"
	"chess-tracker/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	// api client
	fx.Provide(api.NewChessClient),
	// svc
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewStatsService),
	// http
	fx.Provide(server.NewHandler),
	fx.Provide(server.NewRouter),
)
