package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ametov/course-rag-backend/internal/entity"
)

func TestCreateSession_SequentialIDs(t *testing.T) {
	m := NewManager(2, time.Hour)

	first := m.CreateSession()
	second := m.CreateSession()

	if first != "session_1" || second != "session_2" {
		t.Errorf("expected sequential ids, got %q %q", first, second)
	}
}

func TestHistory_Rendering(t *testing.T) {
	m := NewManager(5, time.Hour)
	id := m.CreateSession()

	m.AddExchange(id, "What is MCP?", "A protocol.")
	m.AddExchange(id, "Who teaches it?", "Jane Doe.")

	want := "User: What is MCP?\nAssistant: A protocol.\nUser: Who teaches it?\nAssistant: Jane Doe."
	if got := m.History(id); got != want {
		t.Errorf("unexpected history:\n got %q\nwant %q", got, want)
	}
}

func TestHistory_UnknownSessionIsEmpty(t *testing.T) {
	m := NewManager(2, time.Hour)

	if got := m.History("session_999"); got != "" {
		t.Errorf("expected empty history, got %q", got)
	}
}

func TestAddExchange_EvictsOldestBeyondCap(t *testing.T) {
	m := NewManager(2, time.Hour)
	id := m.CreateSession()

	for i := 1; i <= 4; i++ {
		m.AddExchange(id, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	if count := m.ExchangeCount(id); count != 2 {
		t.Fatalf("expected 2 exchanges after eviction, got %d", count)
	}

	want := "User: q3\nAssistant: a3\nUser: q4\nAssistant: a4"
	if got := m.History(id); got != want {
		t.Errorf("oldest pairs must be evicted first:\n got %q\nwant %q", got, want)
	}
}

func TestClearSession(t *testing.T) {
	m := NewManager(2, time.Hour)
	id := m.CreateSession()
	m.AddExchange(id, "q", "a")

	if err := m.ClearSession(id); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if got := m.History(id); got != "" {
		t.Errorf("history must be empty after clear, got %q", got)
	}

	if err := m.ClearSession(id); !errors.Is(err, entity.ErrSessionNotFound) {
		t.Errorf("clearing an unknown session must fail, got %v", err)
	}
}
