package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	ChessAPIBaseURL string
	UserAgent       string
	DBPath          string
	ServerPort      string
	LogLevel        string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		ChessAPIBaseURL: getEnv("CHESS_API_BASE_URL", "https://api.chess.com"),
		UserAgent:       getEnv("CHESS_API_USER_AGENT", "chess-tracker"),
		DBPath:          getEnv("DB_PATH", "chess.db"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	logger.Info().
		Str("chess_api_base_url", cfg.ChessAPIBaseURL).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
