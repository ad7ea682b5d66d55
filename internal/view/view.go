package view

import (
	"sync"

	"github.com/fjod/forgeline/internal/cart"
	"github.com/fjod/forgeline/internal/domain"
	"github.com/fjod/forgeline/internal/pricing"
)

// EmptyMessage is shown by both views when the cart has no lines.
const EmptyMessage = "Tu carrito está vacío"

// Source is what a view needs from the cart store.
type Source interface {
	Snapshot() domain.Cart
	Subscribe(fn cart.Listener) func()
}

type Line struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price,omitempty"`
	Subtotal  string `json:"subtotal"`
	Image     string `json:"image,omitempty"`
}

type Rendering struct {
	Count   int    `json:"count"`
	Lines   []Line `json:"lines"`
	Total   string `json:"total"`
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`
}

// projection keeps the last rendering of a cart. It never holds cart data
// of its own beyond what it was last notified with.
type projection struct {
	mu      sync.RWMutex
	current Rendering
	detach  func()
}

func (p *projection) attach(src Source, render func(domain.Cart) Rendering) {
	p.set(render(src.Snapshot()))
	p.detach = src.Subscribe(func(c domain.Cart) { p.set(render(c)) })
}

func (p *projection) set(r Rendering) {
	p.mu.Lock()
	p.current = r
	p.mu.Unlock()
}

func (p *projection) Render() Rendering {
	p.mu.RLock()
	defer p.mu.RUnlock()
	r := p.current
	r.Lines = append([]Line(nil), p.current.Lines...)
	return r
}

// Detach stops following the store.
func (p *projection) Detach() {
	if p.detach != nil {
		p.detach()
		p.detach = nil
	}
}

// MiniCart is the navbar dropdown: counter, names, quantities and subtotals.
type MiniCart struct{ projection }

func NewMiniCart(src Source) *MiniCart {
	v := &MiniCart{}
	v.attach(src, renderMini)
	return v
}

// Modal is the full cart dialog with unit prices and images.
type Modal struct{ projection }

func NewModal(src Source) *Modal {
	v := &Modal{}
	v.attach(src, renderModal)
	return v
}

func renderMini(c domain.Cart) Rendering {
	r := base(c)
	for _, l := range c.Lines {
		r.Lines = append(r.Lines, Line{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Subtotal:  pricing.Format(l.Subtotal()),
		})
	}
	return r
}

func renderModal(c domain.Cart) Rendering {
	r := base(c)
	for _, l := range c.Lines {
		r.Lines = append(r.Lines, Line{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: pricing.Format(l.UnitPrice),
			Subtotal:  pricing.Format(l.Subtotal()),
			Image:     l.ImageRef,
		})
	}
	return r
}

func base(c domain.Cart) Rendering {
	r := Rendering{
		Count: c.ItemCount(),
		Lines: make([]Line, 0, len(c.Lines)),
		Total: pricing.Format(c.Total),
		Empty: c.IsEmpty(),
	}
	if r.Empty {
		r.Message = EmptyMessage
	}
	return r
}
