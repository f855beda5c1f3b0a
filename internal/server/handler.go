package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"chess-tracker/internal/api"
	"chess-tracker/internal/domain"
	"chess-tracker/internal/middleware"
	"chess-tracker/internal/service"
	"chess-tracker/internal/stats"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

type Handler struct {
	playerSvc *service.PlayerService
	statsSvc  *service.StatsService
	validate  *validator.Validate
	logger    zerolog.Logger
}

func NewHandler(playerSvc *service.PlayerService, statsSvc *service.StatsService, logger zerolog.Logger) *Handler {
	return &Handler{
		playerSvc: playerSvc,
		statsSvc:  statsSvc,
		validate:  validator.New(),
		logger:    logger,
	}
}

func NewRouter(h *Handler, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler)

	r.Get("/healthz", h.Health)
	r.Route("/api/v1/players/{username}", func(r chi.Router) {
		r.Get("/", h.GetPlayer)
		r.Get("/stats", h.GetStats)
	})

	return r
}

type statsRequest struct {
	Username string `validate:"required,min=3,max=50"`
	Period   string `validate:"required,oneof=daily weekly monthly yearly"`
}

type classStatsResponse struct {
	Count        int  `json:"count"`
	StartRating  *int `json:"start_rating"`
	EndRating    *int `json:"end_rating"`
	RatingChange *int `json:"rating_change"`
}

type statsResponse struct {
	Username    string                        `json:"username"`
	Period      string                        `json:"period"`
	PeriodStart time.Time                     `json:"period_start"`
	PeriodEnd   time.Time                     `json:"period_end"`
	TotalGames  int                           `json:"total_games"`
	Classes     map[string]classStatsResponse `json:"classes"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	req := statsRequest{
		Username: chi.URLParam(r, "username"),
		Period:   r.URL.Query().Get("period"),
	}
	if req.Period == "" {
		req.Period = string(domain.PeriodWeekly)
	}

	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	periodType, err := domain.ParsePeriodType(req.Period)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.statsSvc.ComputeStats(r.Context(), req.Username, periodType, time.Now().UTC())
	if err != nil {
		if errors.Is(err, stats.ErrUnattributable) {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error().Err(err).Str("username", req.Username).Msg("stats computation failed")
		h.writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	h.writeJSON(w, http.StatusOK, toStatsResponse(result))
}

func toStatsResponse(result *domain.AggregateResult) statsResponse {
	classes := make(map[string]classStatsResponse, len(result.PerClass))
	for class, cs := range result.PerClass {
		classes[string(class)] = classStatsResponse{
			Count:        cs.Count,
			StartRating:  cs.StartRating,
			EndRating:    cs.EndRating,
			RatingChange: cs.RatingChange(),
		}
	}
	return statsResponse{
		Username:    result.Username,
		Period:      string(result.Period.Type),
		PeriodStart: result.Period.Start,
		PeriodEnd:   result.Period.End,
		TotalGames:  result.TotalGames(),
		Classes:     classes,
	}
}

type playerResponse struct {
	Username    string    `json:"username"`
	Name        string    `json:"name,omitempty"`
	Title       string    `json:"title,omitempty"`
	Country     string    `json:"country,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Followers   int       `json:"followers"`
	JoinedAt    time.Time `json:"joined_at"`
	LastFetchAt time.Time `json:"last_fetch_at"`
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.validate.Var(username, "required,min=3,max=50"); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid username")
		return
	}
	refresh := r.URL.Query().Get("refresh") == "true"

	player, err := h.playerSvc.GetPlayer(r.Context(), username, refresh)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "player not found")
			return
		}
		h.logger.Error().Err(err).Str("username", username).Msg("player lookup failed")
		h.writeError(w, http.StatusInternalServerError, "failed to get player")
		return
	}

	h.writeJSON(w, http.StatusOK, playerResponse{
		Username:    player.Username,
		Name:        player.Name,
		Title:       player.Title,
		Country:     player.Country,
		AvatarURL:   player.AvatarURL,
		Followers:   player.Followers,
		JoinedAt:    player.JoinedAt,
		LastFetchAt: player.LastFetchAt,
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
