package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/forgeline/internal/domain"
	"github.com/shopspring/decimal"
)

// KeyPrefix is the fixed key under which a browsing session's cart lives.
const KeyPrefix = "forgeline_cart"

var (
	ErrNotFound      = errors.New("cart record not found")
	ErrCorruptRecord = errors.New("corrupt cart record")
)

// Store persists one cart record per session.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Record, error)
	Save(ctx context.Context, sessionID string, rec *Record) error
	Delete(ctx context.Context, sessionID string) error
}

// Item is one persisted cart line. Prices are JSON numbers.
type Item struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Image    string      `json:"image"`
	Quantity int         `json:"quantity"`
}

type Record struct {
	Items []Item      `json:"items"`
	Total json.Number `json:"total"`
}

func Key(sessionID string) string {
	return fmt.Sprintf("%s:%s", KeyPrefix, sessionID)
}

func FromCart(c domain.Cart) *Record {
	rec := &Record{
		Items: make([]Item, 0, len(c.Lines)),
		Total: json.Number(c.Total.String()),
	}
	for _, l := range c.Lines {
		rec.Items = append(rec.Items, Item{
			ID:       l.ProductID,
			Name:     l.Name,
			Price:    json.Number(l.UnitPrice.String()),
			Image:    l.ImageRef,
			Quantity: l.Quantity,
		})
	}
	return rec
}

// Cart rebuilds the cart. The stored total is ignored and derived again
// from the lines.
func (r *Record) Cart() (domain.Cart, error) {
	lines := make([]domain.CartLine, 0, len(r.Items))
	seen := make(map[int64]struct{}, len(r.Items))
	for _, it := range r.Items {
		price, err := decimal.NewFromString(it.Price.String())
		if err != nil {
			return domain.Cart{}, fmt.Errorf("%w: price of item %d: %v", ErrCorruptRecord, it.ID, err)
		}
		if it.ID <= 0 || it.Quantity < 1 || price.IsNegative() {
			return domain.Cart{}, fmt.Errorf("%w: item %d", ErrCorruptRecord, it.ID)
		}
		if _, dup := seen[it.ID]; dup {
			return domain.Cart{}, fmt.Errorf("%w: duplicate item %d", ErrCorruptRecord, it.ID)
		}
		seen[it.ID] = struct{}{}

		lines = append(lines, domain.CartLine{
			ProductID: it.ID,
			Name:      it.Name,
			UnitPrice: price,
			Quantity:  it.Quantity,
			ImageRef:  it.Image,
		})
	}
	return domain.NewCart(lines), nil
}

func decode(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return &rec, nil
}
