package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/fjod/forgeline/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var ErrInvalidQuery = errors.New("invalid catalog query")

// SortOrder names the orderings offered by the product filter form.
type SortOrder string

const (
	SortPopular   SortOrder = "popular"
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
	SortNameAsc   SortOrder = "name-asc"
	SortNameDesc  SortOrder = "name-desc"
)

// Query mirrors the product filter form. Zero values mean "no filter".
type Query struct {
	Category   string
	PriceRange string // "min-max" or "min-" / "min" for an open upper bound
	Sort       SortOrder
}

// Filter applies q to products and returns a new slice; products is untouched.
func Filter(products []domain.Product, q Query) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		out = append(out, p)
	}

	if q.PriceRange != "" {
		lo, hi, err := parsePriceRange(q.PriceRange)
		if err != nil {
			return nil, err
		}
		out = slices.DeleteFunc(out, func(p domain.Product) bool {
			if p.Price.LessThan(lo) {
				return true
			}
			return hi != nil && p.Price.GreaterThan(*hi)
		})
	}

	if err := sortProducts(out, q.Sort); err != nil {
		return nil, err
	}
	return out, nil
}

func parsePriceRange(r string) (decimal.Decimal, *decimal.Decimal, error) {
	minPart, maxPart, _ := strings.Cut(r, "-")

	lo, err := decimal.NewFromString(strings.TrimSpace(minPart))
	if err != nil {
		return decimal.Zero, nil, fmt.Errorf("%w: price range %q", ErrInvalidQuery, r)
	}

	maxPart = strings.TrimSpace(maxPart)
	if maxPart == "" {
		return lo, nil, nil
	}
	hi, err := decimal.NewFromString(maxPart)
	if err != nil {
		return decimal.Zero, nil, fmt.Errorf("%w: price range %q", ErrInvalidQuery, r)
	}
	// an upper bound of zero reads as "no upper bound"
	if hi.IsZero() {
		return lo, nil, nil
	}
	return lo, &hi, nil
}

func sortProducts(products []domain.Product, order SortOrder) error {
	switch order {
	case "", SortPopular:
		return nil
	case SortPriceAsc:
		slices.SortStableFunc(products, func(a, b domain.Product) int { return a.Price.Cmp(b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(products, func(a, b domain.Product) int { return b.Price.Cmp(a.Price) })
	case SortNameAsc, SortNameDesc:
		col := collate.New(language.Spanish, collate.IgnoreCase)
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			c := col.CompareString(a.Name, b.Name)
			if order == SortNameDesc {
				return -c
			}
			return c
		})
	default:
		return fmt.Errorf("%w: unknown sort %q", ErrInvalidQuery, order)
	}
	return nil
}

// Search matches text case-insensitively against name and category.
// Blank text matches nothing.
func Search(products []domain.Product, text string) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return nil
	}

	var out []domain.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Category), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Categories lists distinct categories in first-seen order.
func Categories(products []domain.Product) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// Suggestions are the popular search terms offered before the user types.
func Suggestions() []string {
	return []string{
		"Martillo",
		"Taladro",
		"Destornillador",
		"Llave inglesa",
		"Cable eléctrico",
		"Tubería PVC",
		"Pintura",
		"Cemento",
	}
}
