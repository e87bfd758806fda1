package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/quantumvibe/booking-assistant/internal/observability/metrics"
	"github.com/quantumvibe/booking-assistant/pkg/logging"
)

// Service routes each inbound chat message either into the booking dialog
// or to the completion backend. Messages for the same session are processed
// strictly in arrival order; different sessions do not block each other.
type Service struct {
	store   SessionStore
	flow    *Flow
	llm     LLMClient
	metrics *metrics.ChatMetrics
	logger  *logging.Logger
	locks   sessionLocks
}

func NewService(store SessionStore, flow *Flow, llm LLMClient, m *metrics.ChatMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("conversation: session store cannot be nil")
	}
	if flow == nil {
		panic("conversation: flow cannot be nil")
	}
	if llm == nil {
		panic("conversation: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:   store,
		flow:    flow,
		llm:     llm,
		metrics: m,
		logger:  logger,
	}
}

// HandleMessage processes one user message and returns the assistant reply.
func (s *Service) HandleMessage(ctx context.Context, sessionID, message string) (string, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	history, err := s.store.History(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if len(history) == 0 {
		history = newSessionHistory()
	}
	history = append(history, ChatMessage{Role: ChatRoleUser, Content: message})

	reply, outcome, err := s.reply(ctx, sessionID, message, history)
	if err != nil {
		s.metrics.ObserveMessage("error")
		return "", err
	}
	s.metrics.ObserveMessage(outcome)

	history = append(history, ChatMessage{Role: ChatRoleAssistant, Content: reply})
	if err := s.store.SaveHistory(ctx, sessionID, history); err != nil {
		return "", err
	}
	return reply, nil
}

func (s *Service) reply(ctx context.Context, sessionID, message string, history []ChatMessage) (string, string, error) {
	state, err := s.store.State(ctx, sessionID)
	if err != nil {
		return "", "", err
	}

	if state != nil {
		next, reply, err := s.flow.Advance(ctx, state, message)
		if err != nil {
			return "", "", fmt.Errorf("conversation: booking dialog failed: %w", err)
		}
		if err := s.store.SaveState(ctx, sessionID, next); err != nil {
			return "", "", err
		}
		if next == nil && !IsCancellation(message) {
			s.metrics.ObserveBookingCommitted()
			s.logger.WithSession(sessionID).Info("booking dialog completed")
		}
		return reply, "flow", nil
	}

	if IsBookingIntent(message) {
		next, reply, err := s.flow.Start(ctx)
		if err != nil {
			return "", "", fmt.Errorf("conversation: booking dialog failed: %w", err)
		}
		if next != nil {
			if err := s.store.SaveState(ctx, sessionID, next); err != nil {
				return "", "", err
			}
			s.logger.WithSession(sessionID).Debug("booking dialog started")
		}
		return reply, "flow", nil
	}

	started := time.Now()
	reply, err := s.llm.Complete(ctx, lastMessages(history, historyWindow))
	if err != nil {
		return "", "", err
	}
	s.metrics.ObserveCompletionLatency(time.Since(started).Seconds())
	if strings.TrimSpace(reply) == "" {
		return "", "", fmt.Errorf("conversation: completion returned empty reply")
	}
	return reply, "llm", nil
}

// sessionLocks serializes message handling per session identifier. Entries
// are reference-counted and removed when the last holder unlocks, so the map
// only ever holds sessions with a message in flight.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (l *sessionLocks) lock(sessionID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sessionLock)
	}
	entry, ok := l.locks[sessionID]
	if !ok {
		entry = &sessionLock{}
		l.locks[sessionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, sessionID)
		}
		l.mu.Unlock()
	}
}

// size reports how many sessions currently hold a lock entry.
func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
