package chat

import (
	"context"
	"fmt"

	"github.com/ametov/course-rag-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// systemPrompt steers the LLM toward tool-backed, concise answers.
const systemPrompt = `You are an AI assistant specialized in course materials and educational content with access to tools for course information.

Tool usage:
- Use the search tool only for questions about specific course content or detailed educational materials
- Use the outline tool for questions about course structure, curriculum, or what a course covers
- You may call tools sequentially across rounds to gather information before answering; each round's results are available to the next
- If a search yields no results, state this clearly without offering alternatives

Response protocol:
- General knowledge questions: answer from existing knowledge without searching
- Course-specific questions: search or use the outline tool first, then answer
- Provide direct answers only - no reasoning process, search explanations, or mention of the search results

All responses must be brief, educational and clear. Provide only the direct answer to what was asked.`

// roundAction is the decision taken after inspecting one LLM response.
type roundAction int

const (
	// actionContinue executes the requested tools and starts another round.
	actionContinue roundAction = iota
	// actionForceFinal executes the requested tools and then compels a
	// tools-disabled final answer: the round cap is reached.
	actionForceFinal
	// actionDone returns the response text as the final answer.
	actionDone
)

// Generator drives the bounded tool-calling loop: up to maxRounds
// sequential tool rounds, then a forced natural-language answer from
// whatever context was gathered.
type Generator struct {
	llm       LLMConnector
	maxRounds int
	logger    *zap.Logger
}

func NewGenerator(llm LLMConnector, maxRounds int, logger *zap.Logger) *Generator {
	if maxRounds <= 0 {
		maxRounds = 2
	}
	return &Generator{
		llm:       llm,
		maxRounds: maxRounds,
		logger:    logger,
	}
}

// Generate answers one user query. Tool execution failures become
// error-described tool results and never abort the loop; only LLM
// service faults propagate.
func (g *Generator) Generate(ctx context.Context, query, history string, tools ToolRegistry) (string, error) {
	system := systemPrompt
	if history != "" {
		system = fmt.Sprintf("%s\n\nPrevious conversation:\n%s", systemPrompt, history)
	}

	messages := []entity.ChatMessage{entity.TextMessage(entity.RoleUser, query)}
	definitions := tools.Definitions()

	if len(definitions) == 0 {
		resp, err := g.llm.CreateMessage(ctx, &entity.LLMRequest{System: system, Messages: messages})
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}

	for round := 1; ; round++ {
		resp, err := g.llm.CreateMessage(ctx, &entity.LLMRequest{
			System:   system,
			Messages: messages,
			Tools:    definitions,
		})
		if err != nil {
			return "", fmt.Errorf("llm round %d: %w", round, err)
		}

		messages = append(messages, entity.ChatMessage{Role: entity.RoleAssistant, Content: resp.Content})

		uses := resp.ToolUses()

		action := actionContinue
		switch {
		case resp.StopReason != entity.StopReasonToolUse || len(uses) == 0:
			action = actionDone
		case round == g.maxRounds:
			action = actionForceFinal
		}

		if action == actionDone {
			return resp.Text(), nil
		}

		// A round counts against the cap whether or not the calls succeed.
		results := g.executeTools(ctx, uses, tools)
		messages = append(messages, entity.ChatMessage{Role: entity.RoleUser, Content: results})

		if action == actionForceFinal {
			ctxzap.Debug(ctx, "tool round cap reached, forcing final answer", zap.Int("rounds", round))
			return g.finalAnswer(ctx, system, messages)
		}
	}
}

func (g *Generator) executeTools(ctx context.Context, uses []entity.ContentBlock, tools ToolRegistry) []entity.ContentBlock {
	results := make([]entity.ContentBlock, 0, len(uses))
	for _, use := range uses {
		result, err := tools.Execute(ctx, use.Name, use.Input)
		if err != nil {
			ctxzap.Warn(ctx, "tool execution failed",
				zap.String("tool", use.Name),
				zap.Error(err),
			)
			results = append(results, entity.ContentBlock{
				Type:      entity.ContentTypeToolResult,
				ToolUseID: use.ID,
				Content:   fmt.Sprintf("Error executing %s: %v", use.Name, err),
				IsError:   true,
			})
			continue
		}
		results = append(results, entity.ContentBlock{
			Type:      entity.ContentTypeToolResult,
			ToolUseID: use.ID,
			Content:   result,
		})
	}
	return results
}

// finalAnswer re-invokes the LLM with tools disabled to compel a
// natural-language answer from the context gathered so far.
func (g *Generator) finalAnswer(ctx context.Context, system string, messages []entity.ChatMessage) (string, error) {
	resp, err := g.llm.CreateMessage(ctx, &entity.LLMRequest{
		System:   system,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("llm final round: %w", err)
	}
	return resp.Text(), nil
}
