package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/honey-shop/cart/internal/cart/model"
	logx "github.com/honey-shop/cart/pkg/logger"
)

// Store is the authoritative cart of one browsing session. Every mutation
// rewrites the whole cart to storage before listeners are notified, so the
// in-memory lines never diverge from the durable copy.
type Store struct {
	mu        sync.Mutex
	storage   model.Storage
	lines     []model.CartLine
	listeners []*listenerEntry
}

type listenerEntry struct {
	fn model.Listener
}

type Option func(*Store)

// WithListener subscribes fn before the initial load, so it sees the
// EventLoaded event.
func WithListener(fn model.Listener) Option {
	return func(s *Store) {
		s.listeners = append(s.listeners, &listenerEntry{fn: fn})
	}
}

// Open reads the cart from storage. Missing or malformed content yields an
// empty cart; Open only fails on a nil storage.
func Open(ctx context.Context, storage model.Storage, opts ...Option) (*Store, error) {
	if storage == nil {
		return nil, errors.New("cart store: nil storage")
	}
	s := &Store{storage: storage}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	s.lines = readLines(ctx, storage, model.CartKey)
	ev := s.eventLocked(model.EventLoaded, "")
	s.mu.Unlock()

	s.publish(ev)
	return s, nil
}

// LoadCheckoutSnapshot reads the snapshot written by SnapshotForCheckout,
// with the same recovery rules as the live cart.
func LoadCheckoutSnapshot(ctx context.Context, storage model.Storage) []model.CartLine {
	return readLines(ctx, storage, model.CheckoutKey)
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn model.Listener) func() {
	entry := &listenerEntry{fn: fn}
	s.mu.Lock()
	s.listeners = append(s.listeners, entry)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listeners = slices.DeleteFunc(s.listeners, func(e *listenerEntry) bool { return e == entry })
	}
}

// AddItem appends a new line or increments an existing one. There is no
// upper clamp; callers pass pre-validated values. A missing id, a quantity
// below MinQuantity or a negative price is Rejected without touching storage,
// since such a line would not survive the next load.
func (s *Store) AddItem(ctx context.Context, productID, name string, price float64, quantity int, shipping ...model.Shipping) (model.Result, error) {
	if productID == "" || quantity < model.MinQuantity || !(price >= 0) {
		logx.Debug().Str("productId", productID).Int("quantity", quantity).Float64("price", price).Msg("invalid cart line, ignoring")
		return model.Rejected, nil
	}

	s.mu.Lock()
	prev := slices.Clone(s.lines)

	if i := s.indexLocked(productID); i >= 0 {
		s.lines[i].Quantity += quantity
	} else {
		line := model.CartLine{
			ProductID: productID,
			Name:      name,
			Price:     price,
			Quantity:  quantity,
		}
		if len(shipping) > 0 {
			shipping[0].Apply(&line)
		}
		s.lines = append(s.lines, line)
	}

	if err := s.commitLocked(ctx, prev, model.EventAdded, productID); err != nil {
		return model.Rejected, err
	}
	return model.Accepted, nil
}

// UpdateQuantity sets the quantity of an existing line. Out-of-range values
// are Rejected and unknown ids are NotFound; neither touches storage.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) (model.Result, error) {
	if !model.ValidQuantity(quantity) {
		logx.Debug().Str("productId", productID).Int("quantity", quantity).Msg("quantity out of range, ignoring")
		return model.Rejected, nil
	}

	s.mu.Lock()
	i := s.indexLocked(productID)
	if i < 0 {
		s.mu.Unlock()
		return model.NotFound, nil
	}
	prev := slices.Clone(s.lines)
	s.lines[i].Quantity = quantity

	if err := s.commitLocked(ctx, prev, model.EventUpdated, productID); err != nil {
		return model.Rejected, err
	}
	return model.Accepted, nil
}

// UpdateQuantityText parses raw form input the way a browser's parseInt
// does (leading sign and digits, rest ignored) before UpdateQuantity.
func (s *Store) UpdateQuantityText(ctx context.Context, productID, raw string) (model.Result, error) {
	q, ok := ParseQuantity(raw)
	if !ok {
		return model.Rejected, nil
	}
	return s.UpdateQuantity(ctx, productID, q)
}

// RemoveItem deletes the line if present. Removing an absent id is a no-op
// for the lines but still rewrites storage and notifies.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	prev := slices.Clone(s.lines)
	s.lines = slices.DeleteFunc(s.lines, func(l model.CartLine) bool { return l.ProductID == productID })
	return s.commitLocked(ctx, prev, model.EventRemoved, productID)
}

// Clear empties the cart and drops the durable key.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	if err := s.storage.Delete(ctx, model.CartKey); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clear cart: %w", err)
	}
	s.lines = nil
	ev := s.eventLocked(model.EventCleared, "")
	s.mu.Unlock()

	logx.Info().Msg("cart cleared")
	s.publish(ev)
	return nil
}

// Reload re-reads the durable cart, discarding in-memory state. It is the
// counterpart of a page shown again from history.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	s.lines = readLines(ctx, s.storage, model.CartKey)
	ev := s.eventLocked(model.EventReloaded, "")
	s.mu.Unlock()

	s.publish(ev)
}

// SnapshotForCheckout copies the live cart into the checkout slot.
func (s *Store) SnapshotForCheckout(ctx context.Context) error {
	s.mu.Lock()
	b, err := encodeLines(s.lines)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if err := s.storage.Save(ctx, model.CheckoutKey, b); err != nil {
		return fmt.Errorf("snapshot cart for checkout: %w", err)
	}
	return nil
}

// Totals returns the derived count and amount.
func (s *Store) Totals() model.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.ComputeTotals(s.lines)
}

// Lines returns a copy of the cart in insertion order.
func (s *Store) Lines() []model.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lines)
}

// Line returns the line for productID.
func (s *Store) Line(productID string) (model.CartLine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(productID); i >= 0 {
		return s.lines[i], true
	}
	return model.CartLine{}, false
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

func (s *Store) indexLocked(productID string) int {
	return slices.IndexFunc(s.lines, func(l model.CartLine) bool { return l.ProductID == productID })
}

// commitLocked persists the current lines and publishes kind. On a storage
// failure the lines are rolled back to prev. It releases s.mu.
func (s *Store) commitLocked(ctx context.Context, prev []model.CartLine, kind model.EventKind, productID string) error {
	b, err := encodeLines(s.lines)
	if err == nil {
		err = s.storage.Save(ctx, model.CartKey, b)
	}
	if err != nil {
		s.lines = prev
		s.mu.Unlock()
		logx.Error().Err(err).Str("event", string(kind)).Str("productId", productID).Msg("failed to persist cart, rolled back")
		return fmt.Errorf("persist cart: %w", err)
	}
	ev := s.eventLocked(kind, productID)
	s.mu.Unlock()

	s.publish(ev)
	return nil
}

func (s *Store) eventLocked(kind model.EventKind, productID string) publication {
	return publication{
		event: model.Event{
			Kind:      kind,
			ProductID: productID,
			Lines:     slices.Clone(s.lines),
			Totals:    model.ComputeTotals(s.lines),
		},
		listeners: slices.Clone(s.listeners),
	}
}

type publication struct {
	event     model.Event
	listeners []*listenerEntry
}

// publish runs outside the lock so listeners may read the store.
func (s *Store) publish(p publication) {
	for _, l := range p.listeners {
		l.fn(p.event)
	}
}

func encodeLines(lines []model.CartLine) ([]byte, error) {
	if lines == nil {
		lines = []model.CartLine{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("marshal cart: %w", err)
	}
	return b, nil
}

// readLines never fails: anything unreadable is an empty cart.
func readLines(ctx context.Context, storage model.Storage, key string) []model.CartLine {
	b, err := storage.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			logx.Error().Err(err).Str("key", key).Msg("failed to read cart, starting empty")
		}
		return nil
	}
	lines, err := DecodeLines(b)
	if err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("malformed cart in storage, starting empty")
		return nil
	}
	return lines
}

// DecodeLines parses a stored cart. Lines without an id or with a
// non-positive quantity are dropped; repeated ids are merged into the first.
func DecodeLines(b []byte) ([]model.CartLine, error) {
	var raw []model.CartLine
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}

	lines := make([]model.CartLine, 0, len(raw))
	seen := make(map[string]int, len(raw))
	for _, l := range raw {
		if l.ProductID == "" || l.Quantity < model.MinQuantity {
			continue
		}
		if i, ok := seen[l.ProductID]; ok {
			lines[i].Quantity += l.Quantity
			continue
		}
		seen[l.ProductID] = len(lines)
		lines = append(lines, l)
	}
	return lines, nil
}

// ParseQuantity reads an optional sign and the leading decimal digits of raw.
func ParseQuantity(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '+' || raw[end] == '-') {
		end++
	}
	digits := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	q, err := strconv.Atoi(raw[:end])
	if err != nil {
		return 0, false
	}
	return q, true
}
