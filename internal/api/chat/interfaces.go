package chat

import (
	"context"

	"github.com/ametov/course-rag-backend/internal/entity"
)

// ChatUsecase is the query-path surface the handler depends on.
type ChatUsecase interface {
	Query(ctx context.Context, sessionID, query string) (*entity.QueryResponse, error)
	CourseStats(ctx context.Context) (*entity.CourseStats, error)
	ClearSession(ctx context.Context, sessionID string) error
}
