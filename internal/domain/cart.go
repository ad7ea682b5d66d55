package domain

import (
	"errors"
	"fmt"

	"github.com/fjod/forgeline/internal/pricing"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCartLine = errors.New("invalid cart line")
	ErrEmptyCart       = errors.New("cart is empty")
)

// CartLine aggregates the quantity of one product. Name and UnitPrice are
// snapshots taken when the product was first added.
type CartLine struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	ImageRef  string
}

func NewCartLine(p Product, quantity int) (CartLine, error) {
	if quantity < 1 {
		return CartLine{}, fmt.Errorf("%w: quantity must be at least 1, got %d", ErrInvalidCartLine, quantity)
	}
	return CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  quantity,
		ImageRef:  p.ImageRef,
	}, nil
}

func (l CartLine) Subtotal() decimal.Decimal {
	return pricing.LineTotal(l.UnitPrice, l.Quantity)
}

// Cart is an immutable view of cart contents. Total is always derived from
// Lines and never set on its own.
type Cart struct {
	Lines []CartLine
	Total decimal.Decimal
}

// NewCart copies lines and derives the total.
func NewCart(lines []CartLine) Cart {
	c := Cart{Lines: make([]CartLine, len(lines))}
	copy(c.Lines, lines)
	c.Total = SumLines(c.Lines)
	return c
}

// SumLines returns Σ unit price × quantity.
func SumLines(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ItemCount is the number of units across all lines.
func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) Line(productID int64) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}
