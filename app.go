package main

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"github.com/fabfab/study-agent/api"
	"github.com/fabfab/study-agent/assistant"
	"github.com/fabfab/study-agent/chat"
	"github.com/fabfab/study-agent/config"
	"github.com/fabfab/study-agent/database"
	"github.com/fabfab/study-agent/ingestion"
	"github.com/fabfab/study-agent/knowledge"
	"github.com/fabfab/study-agent/llm"
	"github.com/fabfab/study-agent/logger"
	"github.com/fabfab/study-agent/progress"
	"github.com/fabfab/study-agent/quiz"
	"github.com/fabfab/study-agent/store"
	"github.com/fabfab/study-agent/uploads"
	"github.com/fabfab/study-agent/videos"
)

// app holds the long-lived connections shared by every command.
type app struct {
	cfg    config.Config
	logger *logger.Logger

	store     store.Store
	files     uploads.Store
	graph     *knowledge.Graph
	redis     *redis.Client
	cache     *videos.RedisCache
	assembler *assistant.Assembler
	ingestion *ingestion.Service
}

func newApp(ctx context.Context, cfg config.Config, log *logger.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: log}

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.store = st

	files, err := uploads.New(ctx, cfg)
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("open uploads: %w", err)
	}
	a.files = files

	if cfg.Neo4jURI != "" {
		driver, err := database.NewNeo4jDriver(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPass)
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("neo4j connection: %w", err)
		}
		a.graph = knowledge.NewGraph(driver)
	} else {
		log.Info("knowledge graph disabled", "reason", "NEO4J_URI not set")
	}

	if cfg.RedisAddr != "" {
		client, err := database.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("redis connection: %w", err)
		}
		a.redis = client
		a.cache = videos.NewRedisCache(client, cfg.VideoCacheTTL)
	}

	client, err := llm.NewClient(cfg)
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("llm setup: %w", err)
	}
	a.assembler = assistant.NewAssembler(client, cfg.LLM.Timeout, log.With("component", "assistant"))
	if !a.assembler.HasCredential() {
		log.Warn("no completion credential configured; replies use offline fallbacks")
	}

	var graph ingestion.GraphSyncer
	if a.graph != nil {
		graph = a.graph
	}
	a.ingestion = ingestion.NewService(a.store, a.files, nil, graph, log.With("component", "ingestion"))
	return a, nil
}

func (a *app) services() api.Services {
	svc := api.Services{
		Documents: a.store,
		Ingestion: a.ingestion,
		Chat:      chat.NewService(a.store, a.assembler, a.logger.With("component", "chat")),
		Quiz:      quiz.NewService(a.store, a.assembler, a.logger.With("component", "quiz")),
		Progress:  progress.NewService(a.store, a.logger),
	}
	if a.graph != nil {
		svc.Graph = a.graph
	}
	var cache videos.Cache
	if a.cache != nil {
		cache = a.cache
	}
	svc.Videos = videos.NewService(a.store, cache, a.logger.With("component", "videos"))
	return svc
}

func (a *app) close(ctx context.Context) {
	if a.graph != nil {
		if err := a.graph.Close(ctx); err != nil {
			a.logger.Warn("close neo4j", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", "error", err)
		}
	}
	if c, ok := a.files.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.logger.Warn("close uploads", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close store", "error", err)
		}
	}
}
