package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	errx "github.com/honey-shop/cart/internal/core/error"
	"github.com/honey-shop/cart/internal/shop"
)

const (
	StatusPath = "/payments/check-payment-status"
	ClearPath  = "/payments/clear-cart"
)

// Client talks to the shop's payment endpoints on behalf of one session.
// The server keys its payment-success flag by the session cookie.
type Client struct {
	shop *shop.Client
}

func NewClient(sc *shop.Client) *Client {
	return &Client{shop: sc}
}

type statusResponse struct {
	PaymentSuccess bool `json:"paymentSuccess"`
}

// CheckStatus reports whether the server has confirmed payment for the session.
func (c *Client) CheckStatus(ctx context.Context) (bool, error) {
	resp, err := c.shop.Do(ctx, http.MethodGet, StatusPath, "", nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if err := errx.WrapHTTP(http.MethodGet, StatusPath, resp.StatusCode); err != nil {
		return false, err
	}
	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode payment status: %w", err)
	}
	return body.PaymentSuccess, nil
}

// AcknowledgeClear asks the server to reset the session's payment flag.
func (c *Client) AcknowledgeClear(ctx context.Context) error {
	resp, err := c.shop.Do(ctx, http.MethodPost, ClearPath, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return errx.WrapHTTP(http.MethodPost, ClearPath, resp.StatusCode)
}
