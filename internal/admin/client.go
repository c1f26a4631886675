// Package admin calls the shop's catalogue-maintenance endpoints: image
// deletion for products, categories and users, and showcase reordering.
package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	errx "github.com/honey-shop/cart/internal/core/error"
	"github.com/honey-shop/cart/internal/shop"
	logx "github.com/honey-shop/cart/pkg/logger"
)

// Entity selects which delete-image endpoint and id field is used.
type Entity string

const (
	Product  Entity = "products"
	Category Entity = "categories"
	User     Entity = "users"
)

const ReorderPath = "/showcase/reorder"

func (e Entity) idField() (string, error) {
	switch e {
	case Product:
		return "productId", nil
	case Category:
		return "categoryId", nil
	case User:
		return "userId", nil
	default:
		return "", fmt.Errorf("unknown image entity %q", string(e))
	}
}

// ParseEntity accepts the plural endpoint name or its singular form.
func ParseEntity(s string) (Entity, error) {
	switch strings.ToLower(s) {
	case "product", "products":
		return Product, nil
	case "category", "categories":
		return Category, nil
	case "user", "users":
		return User, nil
	}
	return "", fmt.Errorf("unknown image entity %q", s)
}

// ShowcaseOrder is the body of a showcase reorder request.
type ShowcaseOrder struct {
	CategoryOrder []string            `json:"categoryOrder"`
	ProductOrder  map[string][]string `json:"productOrder"`
}

type Client struct {
	shop *shop.Client
}

func NewClient(sc *shop.Client) *Client {
	return &Client{shop: sc}
}

// DeleteImage removes filename from the entity's gallery.
func (c *Client) DeleteImage(ctx context.Context, entity Entity, entityID, filename string) error {
	field, err := entity.idField()
	if err != nil {
		return err
	}
	form := url.Values{}
	form.Set("imageFilename", filename)
	form.Set(field, entityID)

	path := "/" + string(entity) + "/delete-image"
	err = c.post(ctx, path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		logx.Error().Err(err).Str("entity", string(entity)).Str("id", entityID).Str("image", filename).Msg("failed to delete image")
		return err
	}
	return nil
}

// Reorder saves the showcase ordering of categories and their products.
func (c *Client) Reorder(ctx context.Context, order ShowcaseOrder) error {
	if order.CategoryOrder == nil {
		order.CategoryOrder = []string{}
	}
	if order.ProductOrder == nil {
		order.ProductOrder = map[string][]string{}
	}
	b, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal showcase order: %w", err)
	}
	if err := c.post(ctx, ReorderPath, "application/json", bytes.NewReader(b)); err != nil {
		logx.Error().Err(err).Int("categories", len(order.CategoryOrder)).Msg("failed to save showcase order")
		return err
	}
	return nil
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) error {
	resp, err := c.shop.Do(ctx, http.MethodPost, path, contentType, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return errx.WrapHTTP(http.MethodPost, path, resp.StatusCode)
}
