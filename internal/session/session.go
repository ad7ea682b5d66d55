package session

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"time"

	"github.com/fjod/forgeline/internal/cart"
	"github.com/fjod/forgeline/internal/chat"
	"github.com/fjod/forgeline/internal/checkout"
	"github.com/fjod/forgeline/internal/domain"
	"github.com/fjod/forgeline/internal/notice"
	"github.com/fjod/forgeline/internal/view"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// ValidID reports whether id can name a session.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Session is one browsing session: a cart, the two views rendering it, the
// checkout flow, notices and the chat log.
type Session struct {
	ID       string
	Cart     *cart.Store
	MiniCart *view.MiniCart
	Modal    *view.Modal
	Flow     *checkout.Flow
	Notices  *notice.Board
	Chat     *chat.Conversation

	// actions serializes cart mutations coming from this session
	actions sync.Mutex

	mu       sync.Mutex
	lastSeen time.Time
}

// Snapshot is everything a client needs to draw the session.
type Snapshot struct {
	SessionID string               `json:"session_id"`
	State     domain.CheckoutState `json:"state"`
	Pending   bool                 `json:"pending"`
	MiniCart  view.Rendering       `json:"mini_cart"`
	Modal     *view.Rendering      `json:"modal,omitempty"`
	Invoice   string               `json:"invoice,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID: s.ID,
		State:     s.Flow.State(),
		Pending:   s.Flow.Pending(),
		MiniCart:  s.MiniCart.Render(),
	}
	if snap.State != domain.StateBrowsing {
		modal := s.Modal.Render()
		snap.Modal = &modal
	}
	if r := s.Flow.Receipt(); r != nil {
		snap.Invoice = r.Record.Number
	}
	return snap
}

// AddItem adds to the cart and tells the shopper about it. Cart edits are
// refused with checkout.ErrEmissionPending while an invoice is being sent.
func (s *Session) AddItem(ctx context.Context, productID int64, quantity int) error {
	s.actions.Lock()
	defer s.actions.Unlock()

	err := s.Flow.Edit(func() error {
		return s.Cart.AddItem(ctx, productID, quantity)
	})
	switch {
	case err == nil:
	case errors.Is(err, checkout.ErrEmissionPending):
		return err
	case errors.Is(err, cart.ErrProductNotFound):
		s.Notices.Post(notice.Error, "Producto no encontrado")
		return err
	default:
		s.Notices.Post(notice.Error, "No se pudo agregar el producto. Intenta de nuevo.")
		return err
	}

	if line, ok := s.Cart.Snapshot().Line(productID); ok {
		s.Notices.Post(notice.Success, line.Name+" agregado al carrito")
	}
	return nil
}

func (s *Session) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	s.actions.Lock()
	defer s.actions.Unlock()
	return s.Flow.Edit(func() error {
		s.Cart.UpdateQuantity(ctx, productID, quantity)
		return nil
	})
}

func (s *Session) RemoveItem(ctx context.Context, productID int64) error {
	s.actions.Lock()
	defer s.actions.Unlock()
	return s.Flow.Edit(func() error {
		s.Cart.RemoveItem(ctx, productID)
		return nil
	})
}

func (s *Session) ClearCart(ctx context.Context) error {
	s.actions.Lock()
	defer s.actions.Unlock()
	err := s.Flow.Edit(func() error {
		s.Cart.Clear(ctx)
		return nil
	})
	if err != nil {
		return err
	}
	s.Notices.Post(notice.Info, "Carrito limpiado")
	return nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Close detaches the views and cancels pending notices and chat replies.
func (s *Session) Close() {
	s.MiniCart.Detach()
	s.Modal.Detach()
	s.Notices.Close()
	s.Chat.Close()
}
