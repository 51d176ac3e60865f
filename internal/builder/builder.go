package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ametov/course-rag-backend/internal/api"
	chatapi "github.com/ametov/course-rag-backend/internal/api/chat"
	"github.com/ametov/course-rag-backend/internal/config"
	"github.com/ametov/course-rag-backend/internal/ingest"
	"github.com/ametov/course-rag-backend/internal/integration/embedding"
	"github.com/ametov/course-rag-backend/internal/integration/llm"
	"github.com/ametov/course-rag-backend/internal/session"
	"github.com/ametov/course-rag-backend/internal/store"
	"github.com/ametov/course-rag-backend/internal/store/memory"
	pgstore "github.com/ametov/course-rag-backend/internal/store/pgvector"
	"github.com/ametov/course-rag-backend/internal/tool"
	chatuc "github.com/ametov/course-rag-backend/internal/usecase/chat"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.String("store_backend", cfg.StoreBackend),
	)

	// Initialize external service connectors (with mock support)
	var llmConnector chatuc.LLMConnector
	var embedder store.Embedder

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		llmConnector = llm.NewMockConnector(logger)
		embedder = embedding.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		llmConnector = llm.NewConnector(cfg.LLMConnectorCfg, logger)
		embedder = embedding.NewConnector(cfg.EmbeddingConnectorCfg, logger)
	}

	// Setup vector store backend
	var backend store.Backend
	var db *pgxpool.Pool

	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		db, err = setupDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("setup database: %w", err)
		}

		logger.Info("Running database migrations")
		if err := pgstore.RunMigrations(cfg.DatabaseURL); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		backend = pgstore.NewBackend(db)
	default:
		backend = memory.NewBackend()
	}

	vectorStore := store.NewVectorStore(backend, embedder, store.Options{
		MaxResults:         cfg.MaxResults,
		ResolveMaxDistance: cfg.ResolveMaxDistance,
	}, logger)
	logger.Info("Vector store initialized")

	// Ingest course documents at startup. A missing docs folder is not
	// fatal; the API still serves whatever the store already holds.
	processor := ingest.NewProcessor(vectorStore, ingest.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap), logger)
	courses, chunks, err := processor.IngestFolder(ctx, cfg.DocsPath)
	if err != nil {
		logger.Warn("Course ingestion skipped",
			zap.String("docs_path", cfg.DocsPath),
			zap.Error(err),
		)
	} else {
		logger.Info("Course documents ingested",
			zap.Int("courses_added", courses),
			zap.Int("chunks_added", chunks),
		)
	}

	// Register retrieval tools
	tools := tool.NewRegistry()
	if err := tools.Register(tool.NewCourseSearchTool(vectorStore)); err != nil {
		return nil, fmt.Errorf("register search tool: %w", err)
	}
	if err := tools.Register(tool.NewCourseOutlineTool(vectorStore)); err != nil {
		return nil, fmt.Errorf("register outline tool: %w", err)
	}
	logger.Info("Tools registered")

	// Initialize use case
	sessions := session.NewManager(cfg.MaxHistory, cfg.SessionTTL)
	generator := chatuc.NewGenerator(llmConnector, cfg.MaxToolRounds, logger)
	chatUC := chatuc.NewUsecase(generator, tools, sessions, vectorStore, logger)
	logger.Info("Use cases initialized")

	// Setup API handlers and router
	chatHandler := chatapi.NewHandler(chatUC)
	router := api.SetupRouter(chatHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}
