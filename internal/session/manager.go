// Package session keeps bounded, in-process conversation history.
// Sessions live only in memory and expire after a TTL of inactivity.
package session

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ametov/course-rag-backend/internal/entity"
	"github.com/patrickmn/go-cache"
)

type exchange struct {
	question string
	answer   string
}

// conversation is one session's history. Its mutex makes the
// append-pair + evict-oldest step atomic if a session is ever queried
// concurrently.
type conversation struct {
	mu        sync.Mutex
	exchanges []exchange
}

// Manager issues sequential session identifiers and stores capped
// conversation histories with TTL eviction.
type Manager struct {
	sessions   *cache.Cache
	maxHistory int
	counter    atomic.Uint64
}

// NewManager creates a manager keeping at most maxHistory
// question/answer pairs per session; oldest pairs are evicted first.
func NewManager(maxHistory int, ttl time.Duration) *Manager {
	if maxHistory <= 0 {
		maxHistory = 2
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Manager{
		sessions:   cache.New(ttl, ttl/2),
		maxHistory: maxHistory,
	}
}

// CreateSession issues the next sequential session identifier.
func (m *Manager) CreateSession() string {
	return fmt.Sprintf("session_%d", m.counter.Add(1))
}

// AddExchange records one question/answer pair, evicting the oldest
// pair once the cap is exceeded. Writing refreshes the session TTL.
func (m *Manager) AddExchange(sessionID, question, answer string) {
	conv := m.conversation(sessionID)

	conv.mu.Lock()
	conv.exchanges = append(conv.exchanges, exchange{question: question, answer: answer})
	if len(conv.exchanges) > m.maxHistory {
		conv.exchanges = conv.exchanges[len(conv.exchanges)-m.maxHistory:]
	}
	conv.mu.Unlock()

	m.sessions.Set(sessionID, conv, cache.DefaultExpiration)
}

// History renders the session's exchanges as alternating "User:" /
// "Assistant:" lines, oldest first. Unknown sessions yield "".
func (m *Manager) History(sessionID string) string {
	v, ok := m.sessions.Get(sessionID)
	if !ok {
		return ""
	}
	conv := v.(*conversation)

	conv.mu.Lock()
	defer conv.mu.Unlock()

	var lines []string
	for _, e := range conv.exchanges {
		lines = append(lines, "User: "+e.question, "Assistant: "+e.answer)
	}
	return strings.Join(lines, "\n")
}

// ExchangeCount reports how many pairs a session currently holds.
func (m *Manager) ExchangeCount(sessionID string) int {
	v, ok := m.sessions.Get(sessionID)
	if !ok {
		return 0
	}
	conv := v.(*conversation)

	conv.mu.Lock()
	defer conv.mu.Unlock()
	return len(conv.exchanges)
}

// ClearSession drops a session's history. Clearing an unknown session
// is an error so the API can answer 404.
func (m *Manager) ClearSession(sessionID string) error {
	if _, ok := m.sessions.Get(sessionID); !ok {
		return entity.ErrSessionNotFound
	}
	m.sessions.Delete(sessionID)
	return nil
}

func (m *Manager) conversation(sessionID string) *conversation {
	if v, ok := m.sessions.Get(sessionID); ok {
		return v.(*conversation)
	}
	conv := &conversation{}
	if err := m.sessions.Add(sessionID, conv, cache.DefaultExpiration); err != nil {
		// Lost the race to another writer; use theirs.
		if v, ok := m.sessions.Get(sessionID); ok {
			return v.(*conversation)
		}
	}
	return conv
}
