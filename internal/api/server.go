package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fplbot/internal/betting"
	"fplbot/internal/database"
	"fplbot/internal/fpl"
)

// Ledger is the read side of the store the API needs.
type Ledger interface {
	GetBalance(ctx context.Context, userID string) (int, error)
	ListBetsByUser(ctx context.Context, userID string, limit int) ([]database.Bet, error)
	Ping(ctx context.Context) error
}

// Bets is the betting service surface exposed over HTTP.
type Bets interface {
	Odds(ctx context.Context, betType betting.BetType, round bool) (float64, error)
	OfferedMultiplier(ctx context.Context, betType betting.BetType) (int, error)
	SettleDueBets(ctx context.Context) (betting.SweepReport, error)
}

// Fixtures is the match data the API reads. *fpl.Cache satisfies it.
type Fixtures interface {
	betting.MatchSource
	betting.TeamNamer
	UpcomingFixtures(n int) []fpl.Fixture
	Loaded() bool
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type BalanceResponse struct {
	UserID  string `json:"user_id"`
	Balance int    `json:"balance"`
}

type BetResponse struct {
	ID             int64  `json:"id"`
	Type           string `json:"type"`
	Condition      string `json:"condition"`
	Description    string `json:"description"`
	CoinsBet       int    `json:"coins_bet"`
	PotentialCoins int    `json:"potential_coins"`
	Finished       bool   `json:"finished"`
	WasCorrect     *bool  `json:"was_correct,omitempty"`
}

type OddsResponse struct {
	Type       string  `json:"type"`
	Odds       float64 `json:"odds"`
	Rounded    float64 `json:"rounded"`
	Multiplier int     `json:"multiplier"`
}

type FixtureResponse struct {
	ID          int        `json:"id"`
	Gameweek    *int       `json:"gameweek"`
	KickoffTime *time.Time `json:"kickoff_time"`
	Home        string     `json:"home"`
	Away        string     `json:"away"`
}

type SweepResponse struct {
	ID         string `json:"id"`
	Checked    int    `json:"checked"`
	Won        int    `json:"won"`
	Lost       int    `json:"lost"`
	Pending    int    `json:"pending"`
	Failed     int    `json:"failed"`
	PaidOut    int    `json:"paid_out"`
	DurationMs int64  `json:"duration_ms"`
}

type Server struct {
	log      *zap.Logger
	ledger   Ledger
	bets     Bets
	fixtures Fixtures
}

func NewServer(log *zap.Logger, ledger Ledger, bets Bets, fixtures Fixtures) *Server {
	return &Server{log: log, ledger: ledger, bets: bets, fixtures: fixtures}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/users/{id}/balance", s.getBalance)
		r.Get("/users/{id}/bets", s.listBets)
		r.Get("/odds/{type}", s.getOdds)
		r.Get("/fixtures", s.listFixtures)
		r.Post("/sweep", s.sweep)
	})
	return r
}

// Start serves the router on addr in the background.
func (s *Server) Start(addr string) *http.Server {
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.log.Info("api listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("api server stopped", zap.Error(err))
		}
	}()
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
	defer cancel()

	if err := s.ledger.Ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database: "+err.Error())
		return
	}
	if !s.fixtures.Loaded() {
		writeError(w, http.StatusServiceUnavailable, fpl.ErrNotLoaded.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	balance, err := s.ledger.GetBalance(r.Context(), userID)
	if err != nil {
		s.log.Error("balance lookup failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "balance lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{UserID: userID, Balance: balance})
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	bets, err := s.ledger.ListBetsByUser(r.Context(), userID, limit)
	if err != nil {
		s.log.Error("bet listing failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "bet listing failed")
		return
	}

	out := make([]BetResponse, 0, len(bets))
	for _, b := range bets {
		resp := BetResponse{
			ID:             b.ID,
			Type:           b.Type,
			Condition:      b.Condition,
			Description:    betting.Describe(betting.BetType(b.Type), b.Condition, s.fixtures, s.fixtures),
			CoinsBet:       b.CoinsBet,
			PotentialCoins: b.PotentialCoins,
			Finished:       b.Finished,
		}
		if b.Finished && b.WasCorrect.Valid {
			won := b.WasCorrect.Bool
			resp.WasCorrect = &won
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getOdds(w http.ResponseWriter, r *http.Request) {
	betType, err := betting.ParseBetType(chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	raw, err := s.bets.Odds(r.Context(), betType, false)
	if err != nil {
		s.log.Error("odds lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "odds lookup failed")
		return
	}
	rounded, err := s.bets.Odds(r.Context(), betType, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "odds lookup failed")
		return
	}
	multiplier, err := s.bets.OfferedMultiplier(r.Context(), betType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "odds lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, OddsResponse{
		Type:       string(betType),
		Odds:       raw,
		Rounded:    rounded,
		Multiplier: multiplier,
	})
}

func (s *Server) listFixtures(w http.ResponseWriter, r *http.Request) {
	if !s.fixtures.Loaded() {
		writeError(w, http.StatusServiceUnavailable, fpl.ErrNotLoaded.Error())
		return
	}

	count := 10
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "count must be a positive number")
			return
		}
		count = n
	}

	upcoming := s.fixtures.UpcomingFixtures(count)
	out := make([]FixtureResponse, 0, len(upcoming))
	for _, f := range upcoming {
		out = append(out, FixtureResponse{
			ID:          f.ID,
			Gameweek:    f.Event,
			KickoffTime: f.KickoffTime,
			Home:        s.fixtures.TeamName(f.TeamH),
			Away:        s.fixtures.TeamName(f.TeamA),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) sweep(w http.ResponseWriter, r *http.Request) {
	report, err := s.bets.SettleDueBets(r.Context())
	if errors.Is(err, betting.ErrSweepInProgress) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		s.log.Error("manual sweep failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "sweep failed")
		return
	}

	writeJSON(w, http.StatusOK, SweepResponse{
		ID:         report.ID,
		Checked:    report.Checked,
		Won:        report.Won,
		Lost:       report.Lost,
		Pending:    report.Pending,
		Failed:     report.Failed,
		PaidOut:    report.PaidOut,
		DurationMs: report.Duration.Milliseconds(),
	})
}
