package order

import (
	"errors"
	"fmt"

	"github.com/vmihailov/learnhub/core/cart"
)

// ErrEmptyCart is returned when there is nothing to check out.
var ErrEmptyCart = errors.New("no items to checkout")

// PriceLookup resolves a course reference into the name and unit
// price a line item carries. It is supplied by the caller so shaping
// itself stays pure.
type PriceLookup func(courseID string) (name string, price int, err error)

// Line is one priced position of an order being checked out.
type Line struct {
	CourseID string `json:"courseId"`
	Name     string `json:"name"`
	Price    int    `json:"price"`
}

// Summary is the shaped form of a cart: priced lines in cart order,
// their total and the chosen payment method. Persisting it and
// collecting the money are the caller's business.
type Summary struct {
	Lines  []Line `json:"lines"`
	Total  int    `json:"total"`
	Method Method `json:"method"`
}

// Shape prices every cart item through lookup, preserving the cart's
// ordering. It has no side effects.
func Shape(items []cart.Item, lookup PriceLookup, method Method) (Summary, error) {
	if len(items) == 0 {
		return Summary{}, ErrEmptyCart
	}

	sum := Summary{
		Lines:  make([]Line, 0, len(items)),
		Method: method,
	}

	for _, it := range items {
		name, price, err := lookup(it.CourseID)
		if err != nil {
			return Summary{}, fmt.Errorf("pricing course[%s]: %w", it.CourseID, err)
		}

		sum.Lines = append(sum.Lines, Line{
			CourseID: it.CourseID,
			Name:     name,
			Price:    price,
		})
		sum.Total += price
	}

	return sum, nil
}
