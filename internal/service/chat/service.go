package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/time-guide/backend/internal/model/chat"
)

var (
	ErrSessionIDRequired = errors.New("session id is required")
	ErrSessionExpired    = errors.New("session expired")
	ErrInvalidRole       = errors.New("invalid message role")
)

// Options bound the lifetime and number of sessions.
// Zero values disable the corresponding limit.
type Options struct {
	TTL           time.Duration
	MaxSessions   int
	TombstoneTTL  time.Duration
	SweepInterval time.Duration
	Now           func() time.Time
}

// Service holds per-conversation transcripts and travel state. Operations on
// one session are serialized in arrival order; different sessions proceed
// independently.
type Service struct {
	mu         sync.Mutex
	sessions   map[string]*entry
	tombstones map[string]time.Time
	opts       Options
}

type entry struct {
	lock     *ticketLock
	session  chat.Session
	messages []chat.Message
	lastSeen time.Time
}

// NewService bootstraps the in-memory session store.
func NewService(opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		sessions:   make(map[string]*entry),
		tombstones: make(map[string]time.Time),
		opts:       opts,
	}
}

// NewSessionID mints an identifier that has never been handed out.
func NewSessionID() string {
	return uuid.NewString()
}

// Tx is the view of one session while its lock is held. It must not be used
// after the Do callback returns.
type Tx struct {
	svc   *Service
	entry *entry
	seen  time.Time
}

// Do runs fn with exclusive access to the session, creating it on first use.
func (s *Service) Do(ctx context.Context, sessionID string, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e, ticket, seen, err := s.acquire(sessionID)
	if err != nil {
		return err
	}
	if err := e.lock.wait(ctx, ticket); err != nil {
		return err
	}
	defer s.release(e)

	return fn(&Tx{svc: s, entry: e, seen: seen})
}

// Get returns a snapshot of the session, creating it with default state if absent.
func (s *Service) Get(ctx context.Context, sessionID string) (chat.Session, error) {
	var session chat.Session
	err := s.Do(ctx, sessionID, func(tx *Tx) error {
		session = tx.Session()
		session.Transcript = tx.Transcript()
		return nil
	})
	return session, err
}

// AppendTurn adds a message to the end of the session transcript.
func (s *Service) AppendTurn(ctx context.Context, sessionID string, role chat.Role, text string) (chat.Message, error) {
	var message chat.Message
	err := s.Do(ctx, sessionID, func(tx *Tx) error {
		var err error
		message, err = tx.AppendTurn(role, text)
		return err
	})
	return message, err
}

// SetTravelState replaces the session travel state.
func (s *Service) SetTravelState(ctx context.Context, sessionID string, state chat.TravelState) error {
	return s.Do(ctx, sessionID, func(tx *Tx) error {
		tx.SetTravelState(state)
		return nil
	})
}

// LoadTranscript returns stored messages for the provided session.
func (s *Service) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error) {
	var messages []chat.Message
	err := s.Do(ctx, sessionID, func(tx *Tx) error {
		messages = tx.Transcript()
		return nil
	})
	return messages, err
}

// Len reports the number of live sessions.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle for longer than the TTL and forgets expired
// tombstones. Sessions that are in use are never evicted.
func (s *Service) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	if s.opts.TTL > 0 {
		for id, e := range s.sessions {
			if now.Sub(e.lastSeen) <= s.opts.TTL || e.lock.pending() > 0 {
				continue
			}
			s.evictLocked(id, now)
			evicted++
		}
	}

	if s.opts.TombstoneTTL > 0 {
		for id, at := range s.tombstones {
			if now.Sub(at) > s.opts.TombstoneTTL {
				delete(s.tombstones, id)
			}
		}
	}
	return evicted
}

// Run sweeps periodically until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if s.opts.SweepInterval <= 0 || (s.opts.TTL <= 0 && s.opts.TombstoneTTL <= 0) {
		return
	}

	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.opts.Now()); n > 0 {
				log.Printf("[session] evicted %d idle sessions, %d remaining", n, s.Len())
			}
		}
	}
}

// acquire looks up or creates the entry and takes a ticket while the map lock
// is held, so a sweep can never drop an entry someone is queued on.
func (s *Service) acquire(sessionID string) (*entry, uint64, time.Time, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return nil, 0, time.Time{}, ErrSessionIDRequired
	}

	now := s.opts.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		if _, expired := s.tombstones[id]; expired {
			return nil, 0, time.Time{}, fmt.Errorf("%s: %w", id, ErrSessionExpired)
		}
		s.makeRoomLocked(now)
		e = &entry{
			lock: newTicketLock(),
			session: chat.Session{
				ID:        id,
				Travel:    chat.AtOrigin(),
				CreatedAt: now.UTC(),
			},
			messages: make([]chat.Message, 0, 16),
		}
		s.sessions[id] = e
	}
	e.lastSeen = now

	return e, e.lock.take(), now, nil
}

func (s *Service) release(e *entry) {
	now := s.opts.Now()
	s.mu.Lock()
	e.lastSeen = now
	s.mu.Unlock()
	e.lock.release()
}

// makeRoomLocked evicts the least recently seen idle session when the store is full.
func (s *Service) makeRoomLocked(now time.Time) {
	if s.opts.MaxSessions <= 0 || len(s.sessions) < s.opts.MaxSessions {
		return
	}

	var (
		oldestID string
		oldest   time.Time
	)
	for id, e := range s.sessions {
		if e.lock.pending() > 0 {
			continue
		}
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}

	if oldestID == "" {
		log.Printf("[session] store full (%d) and every session is busy, growing past limit", len(s.sessions))
		return
	}
	s.evictLocked(oldestID, now)
}

func (s *Service) evictLocked(id string, now time.Time) {
	delete(s.sessions, id)
	s.tombstones[id] = now
}

// Session returns the session metadata without the transcript.
func (tx *Tx) Session() chat.Session {
	session := tx.entry.session
	session.LastSeen = tx.seen.UTC()
	return session
}

// Transcript returns a copy of the stored messages.
func (tx *Tx) Transcript() []chat.Message {
	copied := make([]chat.Message, len(tx.entry.messages))
	copy(copied, tx.entry.messages)
	return copied
}

// AppendTurn adds a message to the transcript.
func (tx *Tx) AppendTurn(role chat.Role, text string) (chat.Message, error) {
	if !role.Valid() {
		return chat.Message{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	message := chat.Message{
		ID:        uuid.NewString(),
		SessionID: tx.entry.session.ID,
		Role:      role,
		Content:   text,
		CreatedAt: tx.svc.opts.Now().UTC(),
	}
	tx.entry.messages = append(tx.entry.messages, message)
	return message, nil
}

// TravelState returns the current travel state.
func (tx *Tx) TravelState() chat.TravelState {
	return tx.entry.session.Travel
}

// SetTravelState replaces the travel state.
func (tx *Tx) SetTravelState(state chat.TravelState) {
	tx.entry.session.Travel = state
}

// Verbose reports whether detailed tool logging is on for this session.
func (tx *Tx) Verbose() bool {
	return tx.entry.session.Verbose
}

// SetVerbose toggles detailed tool logging for this session.
func (tx *Tx) SetVerbose(enabled bool) {
	tx.entry.session.Verbose = enabled
}
