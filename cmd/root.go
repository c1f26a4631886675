package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/honey-shop/cart/internal/admin"
	"github.com/honey-shop/cart/internal/cart/model"
	"github.com/honey-shop/cart/internal/cart/repo"
	"github.com/honey-shop/cart/internal/cart/store"
	"github.com/honey-shop/cart/internal/payments"
	"github.com/honey-shop/cart/internal/shop"
	logx "github.com/honey-shop/cart/pkg/logger"
	"github.com/spf13/cobra"
)

// App carries what the subcommands share. Storage and HTTPClient may be
// preset (tests do); otherwise they are built from Config on first use.
type App struct {
	Config     AppConfig
	Storage    model.Storage
	HTTPClient *http.Client
	Out        io.Writer

	sessionID string
	memory    bool
	closers   []func() error
	cart      *store.Store
}

func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "cartctl",
		Short:         "Manage a storefront shopping cart",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if app.Out == nil {
				app.Out = cmd.OutOrStdout()
			}
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return app.Close()
		},
	}
	root.PersistentFlags().StringVar(&app.sessionID, "session", "", "cart session id (default $CART_SESSION_ID or a new id)")
	root.PersistentFlags().BoolVar(&app.memory, "memory", false, "use a throwaway in-process cart for this invocation only (no Redis)")

	root.AddCommand(
		newAddCommand(app),
		newSetCommand(app),
		newRemoveCommand(app),
		newClearCommand(app),
		newShowCommand(app),
		newCheckoutCommand(app),
		newSyncPaymentCommand(app),
		newDeleteImageCommand(app),
		newReorderCommand(app),
	)
	return root
}

// Session resolves the session id: flag, then config, then a fresh id.
func (a *App) Session() string {
	if a.sessionID == "" {
		a.sessionID = a.Config.Cart.SessionID
	}
	if a.sessionID == "" {
		a.sessionID = uuid.NewString()
		logx.Info().Str("session", a.sessionID).Msg("no session configured, started a new cart session")
	}
	return a.sessionID
}

func (a *App) storage(ctx context.Context) (model.Storage, error) {
	if a.Storage != nil {
		return a.Storage, nil
	}
	// --memory lasts one invocation; nothing is shared between processes.
	if a.memory {
		a.Storage = repo.NewMemoryStorage()
		return a.Storage, nil
	}
	rdb, err := a.Config.Redis.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.closers = append(a.closers, rdb.Close)
	a.Storage = repo.NewRedisStorage(rdb, a.Session(), a.Config.Cart.TTL)
	return a.Storage, nil
}

// Cart opens the session cart once per invocation.
func (a *App) Cart(ctx context.Context) (*store.Store, error) {
	if a.cart != nil {
		return a.cart, nil
	}
	s, err := a.storage(ctx)
	if err != nil {
		return nil, err
	}
	a.cart, err = store.Open(ctx, s)
	if err != nil {
		return nil, err
	}
	return a.cart, nil
}

func (a *App) shopClient() *shop.Client {
	return shop.NewClient(a.Config.Shop, a.Session(), a.HTTPClient)
}

func (a *App) Payments() *payments.Client {
	return payments.NewClient(a.shopClient())
}

func (a *App) Admin() *admin.Client {
	return admin.NewClient(a.shopClient())
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}
