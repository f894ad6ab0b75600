package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/carebridge/carebridge-backend/internal/data/graph"
	apphttp "github.com/carebridge/carebridge-backend/internal/http"
	"github.com/carebridge/carebridge-backend/internal/http/handlers"
	"github.com/carebridge/carebridge-backend/internal/observability"
	"github.com/carebridge/carebridge-backend/internal/orchestrator"
	"github.com/carebridge/carebridge-backend/internal/platform/logger"
	"github.com/carebridge/carebridge-backend/internal/platform/neo4jdb"
	"github.com/carebridge/carebridge-backend/internal/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Log    *logger.Logger
	Cfg    Config
	Graph  *neo4jdb.Client
	Server *apphttp.Server

	drugCache services.DrugInfoCache
	otelStop  func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig()

	otelStop := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "carebridge",
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	graphClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init neo4j: %w", err)
	}

	graphSvc, err := graph.NewService(graphClient, log)
	if err != nil {
		graphClient.Close(ctx)
		log.Sync()
		return nil, fmt.Errorf("init graph service: %w", err)
	}
	graphSvc.EnsureSchema(ctx)

	summarySvc, drugSvc, translateSvc, drugCache := wireServices(log, cfg)

	registry := orchestrator.NewRegistry(orchestrator.ToolDeps{
		Graph:     graphSvc,
		Summaries: summarySvc,
		Drugs:     drugSvc,
		Log:       log,
	})
	agent := orchestrator.NewAgent(log, registry, translateSvc, services.NewLogAuditLogger(log))

	server := apphttp.NewServer(apphttp.RouterConfig{
		Log:                 log,
		OrchestratorHandler: handlers.NewOrchestratorHandler(log, agent, registry),
		HealthHandler:       handlers.NewHealthHandler(graphClient),
	})

	return &App{
		Log:       log,
		Cfg:       cfg,
		Graph:     graphClient,
		Server:    server,
		drugCache: drugCache,
		otelStop:  otelStop,
	}, nil
}

func wireServices(log *logger.Logger, cfg Config) (services.SummaryService, services.DrugInfoService, services.TranslationService, services.DrugInfoCache) {
	var summaryChat services.ChatClient
	if cfg.OpenAIKey != "" {
		chat, err := services.NewChatClient(log, services.ChatConfig{
			BaseURL:        cfg.OpenAIBaseURL,
			APIKey:         cfg.OpenAIKey,
			TimeoutSeconds: cfg.ChatTimeoutSeconds,
			MaxRetries:     cfg.ChatMaxRetries,
		})
		if err != nil {
			log.Warn("summary provider unavailable, using extractive fallback", "error", err.Error())
		} else {
			summaryChat = chat
		}
	} else {
		log.Warn("OPENAI_API_KEY not set, summaries use the extractive fallback")
	}

	var drugChat services.ChatClient
	if cfg.OpenRouterKey != "" {
		chat, err := services.NewChatClient(log, services.ChatConfig{
			BaseURL:        cfg.OpenRouterBaseURL,
			APIKey:         cfg.OpenRouterKey,
			TimeoutSeconds: cfg.ChatTimeoutSeconds,
			MaxRetries:     cfg.ChatMaxRetries,
		})
		if err != nil {
			log.Warn("drug info provider unavailable, lookups return the advisory fallback", "error", err.Error())
		} else {
			drugChat = chat
		}
	}

	drugCache, err := services.NewDrugInfoCache(log)
	if err != nil {
		log.Warn("drug info cache unavailable (continuing without cache)", "error", err.Error())
		drugCache = nil
	}

	summarySvc := services.NewSummaryService(log, summaryChat, services.SummaryConfig{
		Model:         cfg.SummaryModel,
		FallbackModel: cfg.SummaryFallback,
	})
	drugSvc := services.NewDrugInfoService(log, drugChat, drugCache, services.DrugInfoConfig{
		Model: cfg.DrugModel,
	})
	translateSvc := services.NewTranslationService(log, services.TranslationConfig{
		BaseURL: cfg.TranslateBaseURL,
		APIKey:  cfg.TranslateKey,
	})

	return summarySvc, drugSvc, translateSvc, drugCache
}

// Run serves HTTP until ctx is cancelled, then releases the graph
// driver, cache, and trace exporter.
func (a *App) Run(ctx context.Context) error {
	a.Log.Info("server starting", "port", a.Cfg.Port, "env", a.Cfg.Environment)
	err := a.Server.Run(ctx, ":"+a.Cfg.Port)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.drugCache != nil {
		if cerr := a.drugCache.Close(); cerr != nil {
			a.Log.Warn("drug cache close failed", "error", cerr.Error())
		}
	}
	if cerr := a.Graph.Close(shutdownCtx); cerr != nil {
		a.Log.Warn("neo4j close failed", "error", cerr.Error())
	}
	if a.otelStop != nil {
		if cerr := a.otelStop(shutdownCtx); cerr != nil {
			a.Log.Warn("otel shutdown failed", "error", cerr.Error())
		}
	}
	a.Log.Sync()
	return err
}
