// Package catalog exposes the read-only product list.
package catalog

import (
	"context"
	"errors"

	"github.com/fjod/forgeline/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Provider is the read side the cart and the HTTP layer depend on.
type Provider interface {
	ListAll(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id int64) (domain.Product, error)
}
