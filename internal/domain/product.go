package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidProduct = errors.New("invalid product")

// Product is a catalog entry. The cart never mutates it.
type Product struct {
	ID          int64
	Name        string
	Category    string
	Price       decimal.Decimal
	ImageRef    string
	Description string
	Stock       int
}

func NewProduct(id int64, name, category string, price decimal.Decimal, imageRef, description string, stock int) (Product, error) {
	switch {
	case id <= 0:
		return Product{}, fmt.Errorf("%w: id must be positive, got %d", ErrInvalidProduct, id)
	case strings.TrimSpace(name) == "":
		return Product{}, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case price.IsNegative():
		return Product{}, fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	case stock < 0:
		return Product{}, fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}

	return Product{
		ID:          id,
		Name:        name,
		Category:    category,
		Price:       price,
		ImageRef:    imageRef,
		Description: description,
		Stock:       stock,
	}, nil
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Stock > 0
}
