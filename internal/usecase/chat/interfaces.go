package chat

import (
	"context"

	"github.com/ametov/course-rag-backend/internal/entity"
)

// LLMConnector is one request/response round with the LLM service.
type LLMConnector interface {
	CreateMessage(ctx context.Context, req *entity.LLMRequest) (*entity.LLMResponse, error)
}

// ToolRegistry dispatches tool calls by name and tracks citation
// sources across calls.
type ToolRegistry interface {
	Definitions() []entity.ToolDefinition
	Execute(ctx context.Context, name string, args map[string]any) (string, error)
	LastSources() []entity.Source
	ResetSources()
}

// CatalogReader exposes catalog analytics for the courses endpoint.
type CatalogReader interface {
	ExistingCourseTitles(ctx context.Context) ([]string, error)
}

// SessionStore keeps bounded per-session conversation history.
type SessionStore interface {
	CreateSession() string
	AddExchange(sessionID, question, answer string)
	History(sessionID string) string
	ClearSession(sessionID string) error
}
