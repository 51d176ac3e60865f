package llm

import (
	"context"
	"fmt"

	"github.com/ametov/course-rag-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector is a scripted stand-in for local development without an
// API key. On the first round with tools it requests a content search
// for the raw user query; once a tool result is present it answers.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) CreateMessage(ctx context.Context, req *entity.LLMRequest) (*entity.LLMResponse, error) {
	ctxzap.Info(ctx, "[MOCK] LLM call",
		zap.Int("messages", len(req.Messages)),
		zap.Int("tools", len(req.Tools)),
	)

	if len(req.Tools) > 0 && !hasToolResult(req.Messages) {
		query := lastUserText(req.Messages)
		return &entity.LLMResponse{
			StopReason: entity.StopReasonToolUse,
			Content: []entity.ContentBlock{{
				Type:  entity.ContentTypeToolUse,
				ID:    "toolu_" + uuid.New().String(),
				Name:  req.Tools[0].Name,
				Input: map[string]any{"query": query},
			}},
		}, nil
	}

	answer := "[MOCK] I looked through the indexed course material"
	if result := lastToolResult(req.Messages); result != "" {
		answer = fmt.Sprintf("[MOCK] Based on the retrieved material: %.200s", result)
	}

	return &entity.LLMResponse{
		StopReason: entity.StopReasonEndTurn,
		Content:    []entity.ContentBlock{{Type: entity.ContentTypeText, Text: answer}},
	}, nil
}

func hasToolResult(messages []entity.ChatMessage) bool {
	return lastToolResult(messages) != ""
}

func lastToolResult(messages []entity.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		for _, block := range messages[i].Content {
			if block.Type == entity.ContentTypeToolResult {
				return block.Content
			}
		}
	}
	return ""
}

func lastUserText(messages []entity.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != entity.RoleUser {
			continue
		}
		for _, block := range messages[i].Content {
			if block.Type == entity.ContentTypeText {
				return block.Text
			}
		}
	}
	return ""
}
