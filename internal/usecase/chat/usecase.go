// Package chat composes retrieval, tools and the LLM into the query
// path of the system.
package chat

import (
	"context"
	"fmt"

	"github.com/ametov/course-rag-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ChatUsecase answers user queries and maintains session history.
type ChatUsecase struct {
	generator *Generator
	tools     ToolRegistry
	sessions  SessionStore
	catalog   CatalogReader
	logger    *zap.Logger
}

func NewUsecase(
	generator *Generator,
	tools ToolRegistry,
	sessions SessionStore,
	catalog CatalogReader,
	logger *zap.Logger,
) *ChatUsecase {
	return &ChatUsecase{
		generator: generator,
		tools:     tools,
		sessions:  sessions,
		catalog:   catalog,
		logger:    logger,
	}
}

// Query answers one user question, recording the exchange under the
// given session (a new session is created when none is passed).
// Retrieval-local failures are absorbed into the answer; only LLM
// service faults return an error.
func (uc *ChatUsecase) Query(ctx context.Context, sessionID, query string) (*entity.QueryResponse, error) {
	if sessionID == "" {
		sessionID = uc.sessions.CreateSession()
		ctxzap.Debug(ctx, "created session", zap.String("session_id", sessionID))
	}

	history := uc.sessions.History(sessionID)

	uc.tools.ResetSources()
	answer, err := uc.generator.Generate(ctx, query, history, uc.tools)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	sources := uc.tools.LastSources()
	uc.tools.ResetSources()

	uc.sessions.AddExchange(sessionID, query, answer)

	ctxzap.Info(ctx, "query answered",
		zap.String("session_id", sessionID),
		zap.Int("sources", len(sources)),
	)

	return &entity.QueryResponse{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	}, nil
}

// CourseStats reports catalog analytics for the courses endpoint.
func (uc *ChatUsecase) CourseStats(ctx context.Context) (*entity.CourseStats, error) {
	titles, err := uc.catalog.ExistingCourseTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return &entity.CourseStats{
		TotalCourses: len(titles),
		CourseTitles: titles,
	}, nil
}

// ClearSession drops a session's conversation history.
func (uc *ChatUsecase) ClearSession(_ context.Context, sessionID string) error {
	return uc.sessions.ClearSession(sessionID)
}
