package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ametov/course-rag-backend/internal/entity"
	"github.com/ametov/course-rag-backend/internal/session"
	"go.uber.org/zap"
)

// sourcingRegistry records sources as a side effect of execution, the
// way the search tool does.
type sourcingRegistry struct {
	fakeRegistry
	execSources []entity.Source
}

func (r *sourcingRegistry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	out, err := r.fakeRegistry.Execute(ctx, name, args)
	r.sources = r.execSources
	return out, err
}

type staticCatalog struct {
	titles []string
	err    error
}

func (c *staticCatalog) ExistingCourseTitles(context.Context) ([]string, error) {
	return c.titles, c.err
}

func TestQuery_CreatesSessionAndRecordsExchange(t *testing.T) {
	llm := &scriptedLLM{responses: []*entity.LLMResponse{textResponse("The answer.")}}
	registry := &fakeRegistry{defs: searchDefs()}
	sessions := session.NewManager(2, time.Hour)
	uc := NewUsecase(NewGenerator(llm, 2, zap.NewNop()), registry, sessions, &staticCatalog{}, zap.NewNop())

	resp, err := uc.Query(context.Background(), "", "What is MCP?")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatal("expected a session id to be created")
	}
	if resp.Answer != "The answer." {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}

	history := sessions.History(resp.SessionID)
	if !strings.Contains(history, "User: What is MCP?") || !strings.Contains(history, "Assistant: The answer.") {
		t.Errorf("exchange not recorded: %q", history)
	}
}

func TestQuery_ReusesSessionHistory(t *testing.T) {
	llm := &scriptedLLM{responses: []*entity.LLMResponse{
		textResponse("First answer."),
		textResponse("Second answer."),
	}}
	registry := &fakeRegistry{defs: searchDefs()}
	sessions := session.NewManager(2, time.Hour)
	uc := NewUsecase(NewGenerator(llm, 2, zap.NewNop()), registry, sessions, &staticCatalog{}, zap.NewNop())

	first, err := uc.Query(context.Background(), "", "First question")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Query(context.Background(), first.SessionID, "Second question"); err != nil {
		t.Fatal(err)
	}

	system := llm.requests[1].System
	if !strings.Contains(system, "First question") || !strings.Contains(system, "First answer.") {
		t.Errorf("second query must see first exchange in system prompt: %q", system)
	}
}

func TestQuery_CollectsAndResetsSources(t *testing.T) {
	llm := &scriptedLLM{responses: []*entity.LLMResponse{
		toolUseResponse("toolu_1"),
		textResponse("Sourced answer."),
	}}
	registry := &sourcingRegistry{
		fakeRegistry: fakeRegistry{defs: searchDefs(), result: "context"},
		execSources:  []entity.Source{{Text: "Course A - Lesson 1", URL: "https://example.com"}},
	}
	sessions := session.NewManager(2, time.Hour)
	uc := NewUsecase(NewGenerator(llm, 2, zap.NewNop()), registry, sessions, &staticCatalog{}, zap.NewNop())

	resp, err := uc.Query(context.Background(), "", "What does lesson 1 cover?")
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Text != "Course A - Lesson 1" {
		t.Errorf("unexpected sources: %+v", resp.Sources)
	}
	if len(registry.LastSources()) != 0 {
		t.Error("sources must be reset after collection")
	}
}

func TestQuery_LLMFaultReturnsError(t *testing.T) {
	llm := &scriptedLLM{err: entity.ErrLLMTimeout}
	registry := &fakeRegistry{defs: searchDefs()}
	sessions := session.NewManager(2, time.Hour)
	uc := NewUsecase(NewGenerator(llm, 2, zap.NewNop()), registry, sessions, &staticCatalog{}, zap.NewNop())

	_, err := uc.Query(context.Background(), "", "query")
	if !errors.Is(err, entity.ErrLLMTimeout) {
		t.Errorf("expected llm fault, got %v", err)
	}

	// A failed query must not leave a half-recorded exchange.
	if count := sessions.ExchangeCount("session_1"); count != 0 {
		t.Errorf("expected no recorded exchanges, got %d", count)
	}
}

func TestCourseStats(t *testing.T) {
	uc := NewUsecase(nil, &fakeRegistry{}, session.NewManager(2, time.Hour),
		&staticCatalog{titles: []string{"A", "B"}}, zap.NewNop())

	stats, err := uc.CourseStats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalCourses != 2 || len(stats.CourseTitles) != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestClearSession_UnknownSession(t *testing.T) {
	uc := NewUsecase(nil, &fakeRegistry{}, session.NewManager(2, time.Hour),
		&staticCatalog{}, zap.NewNop())

	err := uc.ClearSession(context.Background(), "session_42")
	if !errors.Is(err, entity.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}
