package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSessionTTL bounds how long an idle session keeps its history and
// reservation state.
const DefaultSessionTTL = 24 * time.Hour

// SessionStore maps an opaque session identifier to conversation history and
// reservation state. Both are independent: a session can chat without an
// active booking dialog. A missing entry is returned as nil, not an error.
type SessionStore interface {
	History(ctx context.Context, sessionID string) ([]ChatMessage, error)
	SaveHistory(ctx context.Context, sessionID string, history []ChatMessage) error
	State(ctx context.Context, sessionID string) (*ReservationState, error)
	// SaveState persists the dialog state; a nil state deletes it.
	SaveState(ctx context.Context, sessionID string, state *ReservationState) error
	// Reset drops the reservation state but keeps the conversation.
	Reset(ctx context.Context, sessionID string) error
}

func historyKey(sessionID string) string {
	return fmt.Sprintf("conversation:%s", sessionID)
}

func stateKey(sessionID string) string {
	return fmt.Sprintf("reservation_state:%s", sessionID)
}

// RedisSessionStore keeps sessions in Redis with a sliding TTL.
type RedisSessionStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{redis: client, ttl: ttl}
}

func (s *RedisSessionStore) History(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	data, err := s.redis.Get(ctx, historyKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("conversation: failed to load history: %w", err)
	}
	var history []ChatMessage
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("conversation: failed to decode history: %w", err)
	}
	return history, nil
}

func (s *RedisSessionStore) SaveHistory(ctx context.Context, sessionID string, history []ChatMessage) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("conversation: failed to marshal history: %w", err)
	}
	if err := s.redis.Set(ctx, historyKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("conversation: failed to persist history: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) State(ctx context.Context, sessionID string) (*ReservationState, error) {
	data, err := s.redis.Get(ctx, stateKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("conversation: failed to load reservation state: %w", err)
	}
	var state ReservationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("conversation: failed to decode reservation state: %w", err)
	}
	return &state, nil
}

func (s *RedisSessionStore) SaveState(ctx context.Context, sessionID string, state *ReservationState) error {
	if state == nil {
		return s.Reset(ctx, sessionID)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("conversation: failed to marshal reservation state: %w", err)
	}
	if err := s.redis.Set(ctx, stateKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("conversation: failed to persist reservation state: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Reset(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, stateKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("conversation: failed to delete reservation state: %w", err)
	}
	return nil
}

type memorySession struct {
	history   []ChatMessage
	state     *ReservationState
	expiresAt time.Time
}

// MemorySessionStore is the in-process fallback used when Redis is not
// configured. Entries expire after the TTL; expiry is enforced lazily on
// access and by the optional sweeper.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*memorySession
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemorySessionStore{
		sessions: make(map[string]*memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithNow fixes the clock, for tests.
func (s *MemorySessionStore) WithNow(now func() time.Time) *MemorySessionStore {
	s.now = now
	return s
}

// StartSweeper evicts expired sessions periodically until ctx is done.
func (s *MemorySessionStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// Sweep removes every expired session and returns how many were evicted.
func (s *MemorySessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	evicted := 0
	for id, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// live returns the session if present and unexpired, refreshing nothing.
func (s *MemorySessionStore) live(sessionID string) *memorySession {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	if s.now().After(sess.expiresAt) {
		delete(s.sessions, sessionID)
		return nil
	}
	return sess
}

func (s *MemorySessionStore) upsert(sessionID string) *memorySession {
	sess := s.live(sessionID)
	if sess == nil {
		sess = &memorySession{}
		s.sessions[sessionID] = sess
	}
	sess.expiresAt = s.now().Add(s.ttl)
	return sess
}

func (s *MemorySessionStore) History(_ context.Context, sessionID string) ([]ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.live(sessionID)
	if sess == nil {
		return nil, nil
	}
	out := make([]ChatMessage, len(sess.history))
	copy(out, sess.history)
	return out, nil
}

func (s *MemorySessionStore) SaveHistory(_ context.Context, sessionID string, history []ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.upsert(sessionID)
	sess.history = make([]ChatMessage, len(history))
	copy(sess.history, history)
	return nil
}

func (s *MemorySessionStore) State(_ context.Context, sessionID string) (*ReservationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.live(sessionID)
	if sess == nil || sess.state == nil {
		return nil, nil
	}
	copied := *sess.state
	return &copied, nil
}

func (s *MemorySessionStore) SaveState(_ context.Context, sessionID string, state *ReservationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == nil {
		if sess := s.live(sessionID); sess != nil {
			sess.state = nil
		}
		return nil
	}
	sess := s.upsert(sessionID)
	copied := *state
	sess.state = &copied
	return nil
}

func (s *MemorySessionStore) Reset(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.live(sessionID); sess != nil {
		sess.state = nil
	}
	return nil
}
