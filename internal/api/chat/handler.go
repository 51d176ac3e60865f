package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ametov/course-rag-backend/internal/entity"
	"github.com/ametov/course-rag-backend/internal/pkg/logger"
	"github.com/ametov/course-rag-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase ChatUsecase
}

func NewHandler(usecase ChatUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Query handles POST /api/query - Answer a question about course materials
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Query")

	var req entity.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		response.Error(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	if req.SessionID != "" {
		ctx = logger.AddFields(ctx, zap.String("session_id", req.SessionID))
	}

	resp, err := h.usecase.Query(ctx, req.SessionID, req.Query)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}

// GetCourses handles GET /api/courses - Catalog analytics
func (h *Handler) GetCourses(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetCourses")

	stats, err := h.usecase.CourseStats(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, stats)
}

// ClearSession handles POST /api/sessions/{id}/clear - Drop a session's history
func (h *Handler) ClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "ClearSession"),
	)

	if err := h.usecase.ClearSession(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session cleared")
	response.NoContent(w)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "request failed", zap.Error(err))

	switch {
	case errors.Is(err, entity.ErrSessionNotFound):
		response.Error(w, http.StatusNotFound, "session not found")
	case errors.Is(err, entity.ErrLLMAuth):
		response.Error(w, http.StatusUnauthorized, "llm authentication failed")
	case errors.Is(err, entity.ErrLLMTimeout):
		response.Error(w, http.StatusGatewayTimeout, "llm request timed out")
	case errors.Is(err, entity.ErrLLMUnavailable):
		response.Error(w, http.StatusBadGateway, "llm service unavailable")
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
