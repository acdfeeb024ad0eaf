// Package api exposes the scanner's HTTP surface: metrics, stats, alert
// history, cached fixture state, offline evaluation and pause control.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/okian/goalwatch/internal/adapters/repository"
	service "github.com/okian/goalwatch/internal/app"
	"github.com/okian/goalwatch/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	StatsProvider
	AlertReader
	Controller
	FixtureStateReader
	Evaluator
}

// AlertReader exposes the alert history.
type AlertReader interface {
	Alerts(ctx context.Context, limit int) ([]repository.Alert, error)
	Alert(ctx context.Context, fixtureID int64) (repository.Alert, error)
	CompleteAlert(ctx context.Context, fixtureID int64) error
}

// Controller pauses and resumes the scan loop.
type Controller interface {
	Pause(ctx context.Context)
	Resume(ctx context.Context)
	Paused() bool
}

// StatsProvider reports service statistics.
type StatsProvider interface {
	GetStats(ctx context.Context) service.Stats
}

// Server wires HTTP routes for the API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	alertsHandler   *AlertsHandler
	analyzeHandler  *AnalyzeHandler
	fixturesHandler *FixturesHandler
	controlHandler  *ControlHandler

	logger logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for recovered panics.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		alertsHandler:   NewAlertsHandler(deps),
		analyzeHandler:  NewAnalyzeHandler(deps),
		fixturesHandler: NewFixturesHandler(deps),
		controlHandler:  NewControlHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	return s
}

// Register attaches all routes to r.
func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)
	r.HandleFunc("/alerts", MetricsMiddleware(s.alertsHandler.HandleList, "alerts")).Methods(http.MethodGet)
	r.HandleFunc("/alerts/{fixture_id:[0-9]+}", MetricsMiddleware(s.alertsHandler.HandleGet, "alert")).Methods(http.MethodGet)
	r.HandleFunc("/alerts/{fixture_id:[0-9]+}/complete", MetricsMiddleware(s.alertsHandler.HandleComplete, "alert_complete")).Methods(http.MethodPost)
	r.HandleFunc("/analyze", MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze")).Methods(http.MethodPost)
	r.HandleFunc("/fixtures/{fixture_id:[0-9]+}", MetricsMiddleware(s.fixturesHandler.HandleGet, "fixture")).Methods(http.MethodGet)
	r.HandleFunc("/pause", MetricsMiddleware(s.controlHandler.HandlePause, "pause")).Methods(http.MethodPost)
	r.HandleFunc("/resume", MetricsMiddleware(s.controlHandler.HandleResume, "resume")).Methods(http.MethodPost)
}

// Handler returns a router with every route registered, plus any extra
// route sets, wrapped in panic recovery.
func (s *Server) Handler(extra ...func(*mux.Router)) http.Handler {
	r := mux.NewRouter()
	s.Register(r)
	for _, register := range extra {
		register(r)
	}
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{log: s.logger}),
		handlers.PrintRecoveryStack(false),
	)(r)
}

type recoveryLogger struct {
	log logger.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Error(context.Background(), "recovered from handler panic", logger.String("panic", fmt.Sprint(v...)))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fixtureID reads the {fixture_id} path variable.
func fixtureID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["fixture_id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid fixture id", ErrBadRequest)
	}
	return id, nil
}
