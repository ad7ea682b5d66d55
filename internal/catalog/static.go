package catalog

import (
	"context"
	"fmt"

	"github.com/fjod/forgeline/internal/domain"
)

// Static serves a fixed product list from memory.
type Static struct {
	products []domain.Product
	byID     map[int64]int
}

// NewStatic indexes products by id. Duplicate ids are rejected.
func NewStatic(products []domain.Product) (*Static, error) {
	s := &Static{
		products: make([]domain.Product, len(products)),
		byID:     make(map[int64]int, len(products)),
	}
	copy(s.products, products)
	for i, p := range s.products {
		if _, dup := s.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %d", p.ID)
		}
		s.byID[p.ID] = i
	}
	return s, nil
}

// Default returns the ForgeLine hardware catalog.
func Default() *Static {
	s, err := NewStatic(Seed())
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Static) ListAll(_ context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *Static) FindByID(_ context.Context, id int64) (domain.Product, error) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
	}
	return s.products[i], nil
}
