package bootstrap

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/salescoach-api/internal/api/router"
	"github.com/wolfman30/salescoach-api/internal/coach"
	appconfig "github.com/wolfman30/salescoach-api/internal/config"
	"github.com/wolfman30/salescoach-api/internal/llm"
	"github.com/wolfman30/salescoach-api/internal/observability/metrics"
	"github.com/wolfman30/salescoach-api/internal/session"
	"github.com/wolfman30/salescoach-api/pkg/logging"
)

// App is the fully wired HTTP application shared by the server and Lambda
// entry points.
type App struct {
	Handler  http.Handler
	Sessions *session.Reducer
	Backend  SessionBackend
	Registry *prometheus.Registry
}

// BuildApp wires metrics, the session store, the LLM provider chain and the
// router. A provider that cannot be built is logged and left unconfigured;
// the service then serves presets and fallbacks.
func BuildApp(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewCoachMetrics(reg)

	backend, err := BuildSessionStore(ctx, cfg, awsCfg, logger)
	if err != nil {
		return nil, err
	}
	sessions := session.NewReducer(backend.Store,
		session.WithTTL(cfg.SessionTTL),
		session.WithKeyPrefix(cfg.SessionKeyPrefix),
		session.WithSaveTimeout(cfg.SaveTimeout),
		session.WithLogger(logger),
		session.WithMetrics(m),
	)

	var client llm.Client
	if cfg.AIConfigured() {
		client, err = llm.NewFromConfig(ctx, cfg, awsCfg, m, logger)
		if err != nil {
			logger.Error("LLM provider unavailable", "provider", cfg.LLMProvider, "error", err)
			client = nil
		}
	} else {
		logger.Warn("no AI provider credentials configured", "provider", cfg.LLMProvider)
	}

	svc := coach.NewService(client, sessions,
		coach.WithLogger(logger),
		coach.WithMetrics(m, reg),
		coach.WithHistoryWindow(cfg.ChatHistoryWindow),
		coach.WithAIConfigured(client != nil),
	)

	handler := router.New(&router.Config{
		Logger:             logger,
		Coach:              coach.NewHandler(svc, logger),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	logger.Info("application wired",
		"session_store", backend.Name,
		"llm_provider", cfg.LLMProvider,
		"ai_configured", client != nil,
	)
	return &App{Handler: handler, Sessions: sessions, Backend: backend, Registry: reg}, nil
}

// Shutdown waits for deferred session writes and releases the store.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Sessions.Flush(ctx)
	if a.Backend.Close != nil {
		a.Backend.Close()
	}
	return err
}
