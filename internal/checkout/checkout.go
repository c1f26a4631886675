// Package checkout turns a cart snapshot into what the order form submits:
// the order-items payload, the parcel handed to the delivery calculator and
// the amount summary.
package checkout

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/honey-shop/cart/internal/cart/model"
)

// ErrEmptyCart blocks navigation to checkout when there is nothing to order.
var ErrEmptyCart = errors.New("cart is empty")

type OrderRef struct {
	OrderID string `json:"orderId,omitempty"`
}

type ProductRef struct {
	ProductID string `json:"productId"`
}

// OrderItem is one element of the order-items form field.
type OrderItem struct {
	Order        OrderRef   `json:"order"`
	Product      ProductRef `json:"product"`
	Quantity     int        `json:"quantity"`
	PricePerUnit float64    `json:"pricePerUnit"`
}

// Parcel is the combined package of a cart: weights and heights stack,
// widths and lengths take the largest item.
type Parcel struct {
	Weight float64 `json:"weight"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Length float64 `json:"length"`
}

type Summary struct {
	ProductAmount  float64 `json:"productAmount"`
	DeliveryAmount float64 `json:"deliveryAmount"`
	TotalAmount    float64 `json:"totalAmount"`
}

// NewOrderID returns a fresh order reference.
func NewOrderID() string {
	return uuid.NewString()
}

// Guard returns ErrEmptyCart for an empty cart.
func Guard(lines []model.CartLine) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	return nil
}

func OrderItems(orderID string, lines []model.CartLine) []OrderItem {
	items := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, OrderItem{
			Order:        OrderRef{OrderID: orderID},
			Product:      ProductRef{ProductID: l.ProductID},
			Quantity:     l.Quantity,
			PricePerUnit: l.Price,
		})
	}
	return items
}

// EncodeOrderItems renders the JSON stored in the order-items field.
func EncodeOrderItems(orderID string, lines []model.CartLine) (string, error) {
	b, err := json.Marshal(OrderItems(orderID, lines))
	if err != nil {
		return "", fmt.Errorf("marshal order items: %w", err)
	}
	return string(b), nil
}

func BuildParcel(lines []model.CartLine) Parcel {
	var p Parcel
	for _, l := range lines {
		q := float64(l.Quantity)
		p.Weight += l.Weight * q
		p.Height += l.Height * q
		p.Width = math.Max(p.Width, l.Width)
		p.Length = math.Max(p.Length, l.Length)
	}
	return p
}

// Summarize adds the delivery cost to the product total. A negative or
// missing delivery cost counts as zero.
func Summarize(lines []model.CartLine, deliveryCost float64) Summary {
	if deliveryCost < 0 || math.IsNaN(deliveryCost) {
		deliveryCost = 0
	}
	products := model.ComputeTotals(lines).Amount
	return Summary{
		ProductAmount:  products,
		DeliveryAmount: model.RoundCents(deliveryCost),
		TotalAmount:    model.RoundCents(products + deliveryCost),
	}
}
