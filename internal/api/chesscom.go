package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chess-tracker/internal/config"
	"chess-tracker/internal/domain"

	"github.com/valyala/fasthttp"
)

// ErrNotFound is returned for 404 responses, which for the published
// data API means the player (or that month's archive) does not exist.
var ErrNotFound = errors.New("not found")

// ChessClient talks to the chess.com published-data API. The endpoints
// used here are unauthenticated; chess.com only asks for a User-Agent
// identifying the caller.
type ChessClient struct {
	baseURL   string
	userAgent string
	client    *fasthttp.Client
}

func NewChessClient(cfg *config.Config) *ChessClient {
	return &ChessClient{
		baseURL:   cfg.ChessAPIBaseURL,
		userAgent: cfg.UserAgent,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// GetMonthlyArchive fetches every game a player finished in the given
// calendar month. The month segment must be zero-padded to two digits.
func (c *ChessClient) GetMonthlyArchive(ctx context.Context, username string, bucket domain.MonthBucket) (*MonthlyArchiveResponse, error) {
	url := fmt.Sprintf("%s/pub/player/%s/games/%04d/%02d", c.baseURL, username, bucket.Year, int(bucket.Month))
	return doRequest[MonthlyArchiveResponse](ctx, c, url)
}

func (c *ChessClient) GetProfile(ctx context.Context, username string) (*ProfileResponse, error) {
	url := fmt.Sprintf("%s/pub/player/%s", c.baseURL, username)
	return doRequest[ProfileResponse](ctx, c, url)
}

func doRequest[T any](ctx context.Context, client *ChessClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("User-Agent", client.userAgent)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() == fasthttp.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type MonthlyArchiveResponse struct {
	Games []ArchivedGame `json:"games"`
}

type ArchivedGame struct {
	URL         string         `json:"url"`
	PGN         string         `json:"pgn"`
	TimeControl string         `json:"time_control"`
	TimeClass   string         `json:"time_class"`
	Rated       bool           `json:"rated"`
	Rules       string         `json:"rules"`
	EndTime     int64          `json:"end_time"`
	White       ArchivedPlayer `json:"white"`
	Black       ArchivedPlayer `json:"black"`
}

type ArchivedPlayer struct {
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Result   string `json:"result"`
}

type ProfileResponse struct {
	PlayerID   int64  `json:"player_id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Title      string `json:"title"`
	Avatar     string `json:"avatar"`
	Country    string `json:"country"`
	URL        string `json:"url"`
	Followers  int    `json:"followers"`
	Joined     int64  `json:"joined"`
	LastOnline int64  `json:"last_online"`
	Status     string `json:"status"`
}
