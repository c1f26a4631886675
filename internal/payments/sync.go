package payments

import (
	"context"

	logx "github.com/honey-shop/cart/pkg/logger"
)

// StatusChecker is the server side of the payment handshake.
type StatusChecker interface {
	CheckStatus(ctx context.Context) (bool, error)
	AcknowledgeClear(ctx context.Context) error
}

// Clearer is the part of the cart store the handshake needs.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Sync runs the page-load handshake once: if the server reports a confirmed
// payment the cart is cleared and the server flag reset. Nothing is retried.
// A failed acknowledgement is logged but does not undo the clear.
func Sync(ctx context.Context, checker StatusChecker, cart Clearer) (bool, error) {
	paid, err := checker.CheckStatus(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("failed to check payment status")
		return false, err
	}
	if !paid {
		logx.Debug().Msg("no confirmed payment for session")
		return false, nil
	}

	if err := cart.Clear(ctx); err != nil {
		logx.Error().Err(err).Msg("failed to clear cart after payment")
		return false, err
	}

	if err := checker.AcknowledgeClear(ctx); err != nil {
		logx.Error().Err(err).Msg("failed to reset payment success flag")
		return true, nil
	}
	logx.Info().Msg("payment success flag reset")
	return true, nil
}
