package cmd

import (
	"time"

	"github.com/honey-shop/cart/internal/shop"
	pkgredis "github.com/honey-shop/cart/pkg/redis"
)

// AppConfig defines all configurable parameters of cartctl, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// Cart session
	Cart CartConfig

	// Shop server
	Shop shop.Config
}

type CartConfig struct {
	SessionID string        `envconfig:"CART_SESSION_ID"`
	TTL       time.Duration `envconfig:"CART_TTL" default:"720h"`
}
