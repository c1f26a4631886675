package model

import "context"

// Storage is the durable key-value slot the cart is serialized into.
type Storage interface {
	// Load returns the raw bytes under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces the value under key.
	Save(ctx context.Context, key string, value []byte) error

	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
