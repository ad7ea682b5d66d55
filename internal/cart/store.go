package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/forgeline/internal/catalog"
	"github.com/fjod/forgeline/internal/domain"
	"github.com/fjod/forgeline/internal/storage"
	"go.uber.org/zap"
)

var ErrProductNotFound = errors.New("product not found")

// persistTimeout bounds a single write of the cart record.
const persistTimeout = 2 * time.Second

// Listener receives the cart after every change.
type Listener func(domain.Cart)

type subscription struct {
	id int
	fn Listener
}

// Store owns the cart of one browsing session. Every mutation recomputes
// the total, writes the record through storage and then notifies listeners.
type Store struct {
	catalog   catalog.Provider
	storage   storage.Store
	sessionID string
	log       *zap.Logger

	mu        sync.Mutex
	lines     []domain.CartLine
	listeners []subscription
	nextSub   int
}

func NewStore(provider catalog.Provider, st storage.Store, sessionID string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		catalog:   provider,
		storage:   st,
		sessionID: sessionID,
		log:       log.With(zap.String("session_id", sessionID)),
	}
}

// Restore replaces the in-memory cart with the persisted one. A missing or
// unreadable record leaves the cart empty.
func (s *Store) Restore(ctx context.Context) {
	var lines []domain.CartLine

	rec, err := s.storage.Load(ctx, s.sessionID)
	if err == nil {
		var c domain.Cart
		c, err = rec.Cart()
		lines = c.Lines
	}
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
	case errors.Is(err, storage.ErrCorruptRecord):
		lines = nil
		s.log.Warn("ignoring corrupt cart record", zap.Error(err))
	default:
		lines = nil
		s.log.Warn("cart restore failed, starting empty", zap.Error(err))
	}

	s.mu.Lock()
	s.lines = lines
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Add adds one unit of the product.
func (s *Store) Add(ctx context.Context, productID int64) error {
	return s.AddItem(ctx, productID, 1)
}

// AddItem adds quantity units of the product, merging with an existing
// line. A quantity below one counts as one.
func (s *Store) AddItem(ctx context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	p, err := s.catalog.FindByID(ctx, productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return fmt.Errorf("%w: id %d", ErrProductNotFound, productID)
	}
	if err != nil {
		return fmt.Errorf("catalog lookup failed: %w", err)
	}

	s.mutate(ctx, func(lines []domain.CartLine) []domain.CartLine {
		for i := range lines {
			if lines[i].ProductID == productID {
				lines[i].Quantity += quantity
				return lines
			}
		}
		line, _ := domain.NewCartLine(p, quantity)
		return append(lines, line)
	})
	return nil
}

// UpdateQuantity sets the quantity of an existing line. Anything below one
// removes the line; an unknown product is ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) {
	if quantity < 1 {
		s.RemoveItem(ctx, productID)
		return
	}

	s.mutate(ctx, func(lines []domain.CartLine) []domain.CartLine {
		for i := range lines {
			if lines[i].ProductID == productID {
				lines[i].Quantity = quantity
			}
		}
		return lines
	})
}

func (s *Store) RemoveItem(ctx context.Context, productID int64) {
	s.mutate(ctx, func(lines []domain.CartLine) []domain.CartLine {
		out := lines[:0]
		for _, l := range lines {
			if l.ProductID != productID {
				out = append(out, l)
			}
		}
		return out
	})
}

func (s *Store) Clear(ctx context.Context) {
	s.mutate(ctx, func([]domain.CartLine) []domain.CartLine {
		return nil
	})
}

// Settle removes the invoiced quantities from the cart. Lines or units added
// after the invoice was taken stay.
func (s *Store) Settle(ctx context.Context, invoiced domain.Cart) {
	billed := make(map[int64]int, len(invoiced.Lines))
	for _, l := range invoiced.Lines {
		billed[l.ProductID] += l.Quantity
	}
	s.mutate(ctx, func(lines []domain.CartLine) []domain.CartLine {
		out := lines[:0]
		for _, l := range lines {
			l.Quantity -= billed[l.ProductID]
			if l.Quantity > 0 {
				out = append(out, l)
			}
		}
		return out
	})
}

// Snapshot returns a copy of the current cart.
func (s *Store) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	id := s.nextSub
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) mutate(ctx context.Context, fn func([]domain.CartLine) []domain.CartLine) {
	s.mu.Lock()
	s.lines = fn(s.lines)
	snap := s.snapshotLocked()
	s.persist(ctx, snap)
	s.mu.Unlock()

	s.notify(snap)
}

// persist writes the record; a failed write is logged and the in-memory
// cart stays authoritative.
func (s *Store) persist(ctx context.Context, c domain.Cart) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := s.storage.Save(ctx, s.sessionID, storage.FromCart(c)); err != nil {
		s.log.Error("cart persist failed", zap.Error(err))
	}
}

func (s *Store) snapshotLocked() domain.Cart {
	return domain.NewCart(s.lines)
}

func (s *Store) notify(c domain.Cart) {
	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, sub := range s.listeners {
		listeners = append(listeners, sub.fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(domain.NewCart(c.Lines))
	}
}
