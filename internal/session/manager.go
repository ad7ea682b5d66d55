package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/forgeline/internal/cart"
	"github.com/fjod/forgeline/internal/catalog"
	"github.com/fjod/forgeline/internal/chat"
	"github.com/fjod/forgeline/internal/checkout"
	"github.com/fjod/forgeline/internal/events"
	"github.com/fjod/forgeline/internal/notice"
	"github.com/fjod/forgeline/internal/storage"
	"github.com/fjod/forgeline/internal/view"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrInvalidID = errors.New("invalid session id")

const (
	// DefaultTTL is how long an idle session is kept in memory. Its cart
	// survives eviction in storage.
	DefaultTTL = 30 * time.Minute

	// JanitorInterval is how often idle sessions are evicted
	JanitorInterval = time.Minute

	restoreTimeout = 5 * time.Second
)

// Deps are shared by every session the manager creates.
type Deps struct {
	Catalog   catalog.Provider
	Storage   storage.Store
	Emitter   checkout.Emitter
	Events    events.Publisher
	Bot       *chat.Bot
	ChatDelay time.Duration
	NoticeTTL time.Duration
	Log       *zap.Logger
}

// Manager creates sessions on first use, restoring their cart once even
// when several requests for the same id race, and evicts idle ones.
type Manager struct {
	deps Deps
	ttl  time.Duration
	now  func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
	sfg      singleflight.Group

	stopJanitor chan struct{}
	wg          sync.WaitGroup
}

func NewManager(deps Deps, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Bot == nil {
		deps.Bot = chat.NewBot(nil, "")
	}
	if deps.ChatDelay <= 0 {
		deps.ChatDelay = chat.ReplyDelay
	}

	m := &Manager{
		deps:        deps,
		ttl:         ttl,
		now:         time.Now,
		sessions:    make(map[string]*Session),
		stopJanitor: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.janitorLoop()

	return m
}

// Get returns the session for id, creating and restoring it if needed.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch(m.now())
		return s, nil
	}

	v, err, _ := m.sfg.Do(id, func() (interface{}, error) {
		m.mu.RLock()
		existing, ok := m.sessions[id]
		m.mu.RUnlock()
		if ok {
			return existing, nil
		}

		// the restore is shared by every waiting caller, so it must not
		// die with the first caller's request
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
		defer cancel()

		created := m.create(rctx, id)

		m.mu.Lock()
		m.sessions[id] = created
		m.mu.Unlock()

		m.deps.Log.Debug("session created", zap.String("session_id", id))
		return created, nil
	})
	if err != nil {
		return nil, err
	}

	s = v.(*Session)
	s.touch(m.now())
	return s, nil
}

func (m *Manager) create(ctx context.Context, id string) *Session {
	log := m.deps.Log.With(zap.String("session_id", id))

	store := cart.NewStore(m.deps.Catalog, m.deps.Storage, id, log)
	store.Restore(ctx)

	board := notice.NewBoard(m.deps.NoticeTTL)
	return &Session{
		ID:       id,
		Cart:     store,
		MiniCart: view.NewMiniCart(store),
		Modal:    view.NewModal(store),
		Flow:     checkout.NewFlow(id, store, m.deps.Emitter, board, m.deps.Events, log),
		Notices:  board,
		Chat:     chat.NewConversation(m.deps.Bot, m.deps.ChatDelay),
		lastSeen: m.now(),
	}
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) janitorLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.stopJanitor:
			return
		}
	}
}

// evictIdle drops sessions idle for longer than the TTL. A session whose
// flow is still sending an invoice is kept.
func (m *Manager) evictIdle() {
	cutoff := m.now().Add(-m.ttl)

	var evicted []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) && !s.Flow.Pending() {
			delete(m.sessions, id)
			evicted = append(evicted, s)
		}
	}
	m.mu.Unlock()

	for _, s := range evicted {
		s.Close()
	}
	if len(evicted) > 0 {
		m.deps.Log.Info("evicted idle sessions", zap.Int("count", len(evicted)))
	}
}

// Close stops the janitor and closes every session.
func (m *Manager) Close() {
	close(m.stopJanitor)
	m.wg.Wait()

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
