// Package llm talks to the LLM messages endpoint. The service is an
// opaque collaborator: it accepts a system prompt, an ordered message
// history and a tool schema, and answers with free text or a tool-call
// request.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ametov/course-rag-backend/internal/config"
	"github.com/ametov/course-rag-backend/internal/entity"
	"github.com/ametov/course-rag-backend/internal/integration/common"
	pkghttp "github.com/ametov/course-rag-backend/pkg/http"
	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger,
			pkghttp.WithStaticHeader("x-api-key", cfg.Token),
			pkghttp.WithStaticHeader("anthropic-version", cfg.APIVersion),
		),
		config: cfg,
		logger: logger,
	}
}

// CreateMessage performs one request/response round with the LLM.
// A nil req.Tools slice disables tool calling for the round.
func (c *Connector) CreateMessage(ctx context.Context, req *entity.LLMRequest) (*entity.LLMResponse, error) {
	if req.Model == "" {
		req.Model = c.config.Model
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = c.config.MaxTokens
	}

	ctxzap.Debug(ctx, "calling LLM service",
		zap.Int("messages", len(req.Messages)),
		zap.Int("tools", len(req.Tools)),
	)

	var resp entity.LLMResponse
	err := retry.Do(
		func() error {
			return c.connector.DoRequest(ctx, http.MethodPost, c.config.MessagesEndpoint, req, &resp)
		},
		append(c.config.Retry.ToRetryOptions(),
			retry.Context(ctx),
			retry.RetryIf(isRetriable),
		)...,
	)
	if err != nil {
		return nil, classifyError(err)
	}

	ctxzap.Debug(ctx, "LLM response received",
		zap.String("stop_reason", resp.StopReason),
		zap.Int("content_blocks", len(resp.Content)),
	)

	return &resp, nil
}

// isRetriable keeps retrying transport failures and transient upstream
// statuses; auth and client errors fail immediately.
func isRetriable(err error) bool {
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return false
}

// classifyError maps a transport failure to the fault category surfaced
// at the request boundary: auth, timeout or connectivity.
func classifyError(err error) error {
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", entity.ErrLLMAuth, err)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return fmt.Errorf("%w: %v", entity.ErrLLMTimeout, err)
		}
		return fmt.Errorf("%w: %v", entity.ErrLLMUnavailable, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", entity.ErrLLMTimeout, err)
	}

	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", entity.ErrLLMUnavailable, err)
	}

	return err
}
