package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/middleware"
	natsclient "github.com/inucreativehrd21/FINAL-SERVER/internal/nats"
	"github.com/inucreativehrd21/FINAL-SERVER/internal/service"
	"github.com/inucreativehrd21/FINAL-SERVER/pkg/logger"
)

// Deps is everything the router needs.
type Deps struct {
	Sessions  *service.SessionService
	Turns     *service.TurnService
	Feedback  *service.FeedbackService
	Analytics *service.AnalyticsService
	History   *service.HistoryService

	DB   Pinger
	NATS *natsclient.Client

	Logger *logger.Logger

	ServiceName       string
	JWTSecret         string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSOrigins       []string
}

// NewRouter builds the HTTP routes.
func NewRouter(d Deps) http.Handler {
	healthHandler := NewHealthHandler(d.DB, d.NATS)
	sessionHandler := NewSessionHandler(d.Sessions, d.Logger)
	messageHandler := NewMessageHandler(d.Turns, d.Feedback, d.Logger)
	insightsHandler := NewInsightsHandler(d.Analytics, d.History, d.Logger)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Tracing(d.ServiceName))
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.StripSlashes)
	r.Use(middleware.CORS(d.CORSOrigins))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/chatbot", func(r chi.Router) {
		r.Use(middleware.Auth(d.JWTSecret))
		if d.RateLimitRequests > 0 {
			r.Use(middleware.RateLimit(d.RateLimitRequests, d.RateLimitWindow))
		}

		r.Post("/chat", messageHandler.Chat)
		r.Post("/feedback", messageHandler.Feedback)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", sessionHandler.List)
			r.Get("/{id}", sessionHandler.Get)
			r.Delete("/{id}", sessionHandler.Delete)
			r.Delete("/{id}/delete", sessionHandler.Delete)
		})

		r.Get("/analytics", insightsHandler.Analytics)
		r.Get("/history", insightsHandler.History)
	})

	return r
}
