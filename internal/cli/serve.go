package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/config"
	"github.com/inucreativehrd21/FINAL-SERVER/internal/gateway"
	"github.com/inucreativehrd21/FINAL-SERVER/internal/handler"
	natsclient "github.com/inucreativehrd21/FINAL-SERVER/internal/nats"
	"github.com/inucreativehrd21/FINAL-SERVER/internal/personalization"
	"github.com/inucreativehrd21/FINAL-SERVER/internal/service"
	"github.com/inucreativehrd21/FINAL-SERVER/pkg/logger"
	"github.com/inucreativehrd21/FINAL-SERVER/pkg/tracing"
)

const serviceName = "chatbot"

// NewServeCmd creates the 'serve' command that runs the HTTP API.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Start the chatbot HTTP API. The schema is migrated on start-up.
Event publishing is enabled when NATS_URL is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	log, err := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	logger.SetGlobal(log)

	log.Info("starting chatbot server", zap.String("version", Version))

	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, serviceName, cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer func() { _ = tracing.Shutdown(context.Background(), tp) }()
		}
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	st, applied, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	log.Info("database ready",
		zap.String("driver", cfg.DatabaseDriver),
		zap.Int("migrations_applied", applied),
	)

	var (
		natsClient *natsclient.Client
		events     service.EventPublisher = service.NopPublisher{}
	)
	if cfg.NATSURL != "" {
		natsClient, err = natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			Name:     serviceName + "-serve",
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			return err
		}
		defer natsClient.Close()

		streamManager := natsclient.NewStreamManager(natsClient)
		if err := streamManager.EnsureStream(ctx); err != nil {
			return fmt.Errorf("failed to ensure stream: %w", err)
		}
		events = streamManager
	} else {
		log.Info("NATS_URL not set, turn events are not published")
	}

	gw := gateway.NewClient(gateway.Config{BaseURL: cfg.GatewayURL})
	if !gw.Configured() {
		log.Warn("RAG gateway URL is not configured, chat requests will fail")
	}

	sessions := service.NewSessionService(st, log)
	router := handler.NewRouter(handler.Deps{
		Sessions:          sessions,
		Turns:             service.NewTurnService(sessions, st, personalization.NewProvider(st, cfg.ProfileCacheTTL), gw, events, log),
		Feedback:          service.NewFeedbackService(st, events, log),
		Analytics:         service.NewAnalyticsService(st, loc),
		History:           service.NewHistoryService(st),
		DB:                st,
		NATS:              natsClient,
		Logger:            log,
		ServiceName:       serviceName,
		JWTSecret:         cfg.JWTSecret,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		CORSOrigins:       cfg.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		// In-flight turns may still be waiting on the gateway.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), gateway.DefaultTimeout+5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
		return nil
	})

	err = g.Wait()
	log.Info("server stopped")
	return err
}
