package order

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vmihailov/learnhub/core/cart"
)

func TestShape(t *testing.T) {
	prices := map[string]struct {
		name  string
		price int
	}{
		"go-basics":  {"Go Basics", 40},
		"go-web":     {"Web Services in Go", 60},
		"free-intro": {"Intro", 0},
	}

	lookup := func(courseID string) (string, int, error) {
		p, ok := prices[courseID]
		if !ok {
			return "", 0, errors.New("unknown course")
		}
		return p.name, p.price, nil
	}

	var c cart.Cart
	c.Add("go-web")
	c.Add("free-intro")
	c.Add("go-basics")

	sum, err := Shape(c.Items(), lookup, MethodStripe)
	if err != nil {
		t.Fatalf("shaping cart: %v", err)
	}

	want := Summary{
		Lines: []Line{
			{CourseID: "go-web", Name: "Web Services in Go", Price: 60},
			{CourseID: "free-intro", Name: "Intro", Price: 0},
			{CourseID: "go-basics", Name: "Go Basics", Price: 40},
		},
		Total:  100,
		Method: MethodStripe,
	}

	if diff := cmp.Diff(want, sum); diff != "" {
		t.Fatalf("unexpected summary (-want +got):\n%s", diff)
	}
}

func TestShapeEmptyCart(t *testing.T) {
	lookup := func(string) (string, int, error) {
		t.Fatal("lookup should not be called for an empty cart")
		return "", 0, nil
	}

	var c cart.Cart
	if _, err := Shape(c.Items(), lookup, MethodPaypal); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, but got %v", err)
	}
}

func TestShapeLookupFailure(t *testing.T) {
	boom := errors.New("course gone")
	lookup := func(courseID string) (string, int, error) {
		if courseID == "gone" {
			return "", 0, boom
		}
		return "ok", 10, nil
	}

	var c cart.Cart
	c.Add("fine")
	c.Add("gone")

	if _, err := Shape(c.Items(), lookup, MethodPaypal); !errors.Is(err, boom) {
		t.Fatalf("expected the lookup error to surface, but got %v", err)
	}
}
