package model

import (
	"errors"
	"math"
	"strconv"
)

const (
	MinQuantity = 1
	MaxQuantity = 100

	// CartKey holds the live cart, rewritten on every mutation.
	CartKey = "cart"
	// CheckoutKey holds the snapshot handed to the checkout page.
	CheckoutKey = "checkout-cart"
)

// ErrNotFound is returned by Storage.Load when a key has never been written.
var ErrNotFound = errors.New("storage key not found")

// CartLine is one product entry. Name and Price are captured when the line
// is first added and never refreshed.
type CartLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Weight    float64 `json:"weight,omitempty"`
	Width     float64 `json:"width,omitempty"`
	Height    float64 `json:"height,omitempty"`
	Length    float64 `json:"length,omitempty"`
}

// Subtotal is quantity times unit price, unrounded.
func (l CartLine) Subtotal() float64 {
	return float64(l.Quantity) * l.Price
}

// Shipping carries the optional parcel attributes of a product.
type Shipping struct {
	Weight float64
	Width  float64
	Height float64
	Length float64
}

// Apply copies non-negative shipping attributes onto the line.
func (s Shipping) Apply(l *CartLine) {
	l.Weight = nonNegative(s.Weight)
	l.Width = nonNegative(s.Width)
	l.Height = nonNegative(s.Height)
	l.Length = nonNegative(s.Length)
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

// Totals is the derived badge view of a cart. It is never persisted.
type Totals struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// Display renders Amount with exactly two decimals.
func (t Totals) Display() string {
	return strconv.FormatFloat(t.Amount, 'f', 2, 64)
}

// ComputeTotals sums quantities and line subtotals, rounding the amount to cents.
func ComputeTotals(lines []CartLine) Totals {
	var t Totals
	var amount float64
	for _, l := range lines {
		t.Count += l.Quantity
		amount += l.Subtotal()
	}
	t.Amount = RoundCents(amount)
	return t
}

// RoundCents rounds half away from zero to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// ValidQuantity reports whether q is inside [MinQuantity, MaxQuantity].
func ValidQuantity(q int) bool {
	return q >= MinQuantity && q <= MaxQuantity
}
