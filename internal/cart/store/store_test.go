package store

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/honey-shop/cart/internal/cart/model"
	"github.com/honey-shop/cart/internal/cart/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStorage struct {
	*repo.MemoryStorage
	failSave bool
}

var errDown = errors.New("storage down")

func (f *failingStorage) Save(ctx context.Context, key string, value []byte) error {
	if f.failSave {
		return errDown
	}
	return f.MemoryStorage.Save(ctx, key, value)
}

func openEmpty(t *testing.T) (*Store, *repo.MemoryStorage) {
	t.Helper()
	mem := repo.NewMemoryStorage()
	s, err := Open(context.Background(), mem)
	require.NoError(t, err)
	return s, mem
}

func stored(t *testing.T, mem *repo.MemoryStorage, key string) []model.CartLine {
	t.Helper()
	b, err := mem.Load(context.Background(), key)
	require.NoError(t, err)
	var lines []model.CartLine
	require.NoError(t, json.Unmarshal(b, &lines))
	return lines
}

func TestAddItemMergesSameProduct(t *testing.T) {
	s, mem := openEmpty(t)

	mustAdd(t, s, "p1", "Widget", 9.99, 1)
	mustAdd(t, s, "p1", "Widget", 9.99, 2)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, 29.97, s.Totals().Amount)
	assert.Equal(t, lines, stored(t, mem, model.CartKey))
}

func TestAddItemSumsManyAdds(t *testing.T) {
	s, _ := openEmpty(t)

	sum := 0
	for _, q := range []int{1, 4, 7, 60, 80} {
		mustAdd(t, s, "honey", "Linden honey", 12, q)
		sum += q
	}
	line, ok := s.Line("honey")
	require.True(t, ok)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, sum, line.Quantity, "no upper clamp on add")
}

func TestAddItemKeepsInsertionOrderAndFirstSnapshot(t *testing.T) {
	s, _ := openEmpty(t)

	mustAdd(t, s, "b", "Second", 2, 1)
	mustAdd(t, s, "a", "First", 1, 1)
	mustAdd(t, s, "b", "Renamed", 99, 1)

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "b", lines[0].ProductID)
	assert.Equal(t, "Second", lines[0].Name)
	assert.Equal(t, 2.0, lines[0].Price)
	assert.Equal(t, "a", lines[1].ProductID)
}

func TestAddItemRejectsInvalidLines(t *testing.T) {
	ctx := context.Background()
	s, mem := openEmpty(t)
	mustAdd(t, s, "p1", "Widget", 5, 2)

	var events int
	s.Subscribe(func(model.Event) { events++ })

	tests := []struct {
		name      string
		productID string
		price     float64
		quantity  int
	}{
		{"zero quantity on new line", "p0", 5, 0},
		{"negative quantity on existing line", "p1", 5, -5},
		{"negative price", "p2", -1, 1},
		{"NaN price", "p3", math.NaN(), 1},
		{"empty id", "", 5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.AddItem(ctx, tt.productID, "x", tt.price, tt.quantity)
			require.NoError(t, err)
			assert.Equal(t, model.Rejected, res)
		})
	}

	assert.Equal(t, []string{"p1"}, ids(s.Lines()))
	assert.Equal(t, model.Totals{Count: 2, Amount: 10}, s.Totals())
	assert.Zero(t, events)

	s.Reload(ctx)
	assert.Equal(t, model.Totals{Count: 2, Amount: 10}, s.Totals())
	assert.Equal(t, s.Lines(), stored(t, mem, model.CartKey))
}

func TestAddItemShippingAttributes(t *testing.T) {
	s, mem := openEmpty(t)

	mustAdd(t, s, "jar", "Jar", 5, 2, model.Shipping{Weight: 0.5, Width: 10, Height: 12, Length: 10})
	mustAdd(t, s, "card", "Gift card", 20, 1)

	lines := stored(t, mem, model.CartKey)
	assert.Equal(t, 0.5, lines[0].Weight)
	assert.Equal(t, 12.0, lines[0].Height)
	assert.Zero(t, lines[1].Weight)
	assert.Zero(t, lines[1].Length)
}

func TestTotalsExample(t *testing.T) {
	s, _ := openEmpty(t)

	mustAdd(t, s, "a", "A", 10, 2)
	mustAdd(t, s, "b", "B", 5, 3)

	assert.Equal(t, model.Totals{Count: 5, Amount: 35}, s.Totals())
	assert.Equal(t, "35.00", s.Totals().Display())
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		want     model.Result
		stored   int
	}{
		{"zero", 0, model.Rejected, 3},
		{"negative", -1, model.Rejected, 3},
		{"above max", 101, model.Rejected, 3},
		{"min", 1, model.Accepted, 1},
		{"max", 100, model.Accepted, 100},
		{"middle", 42, model.Accepted, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, mem := openEmpty(t)
			mustAdd(t, s, "p1", "Widget", 1, 3)

			res, err := s.UpdateQuantity(ctx, "p1", tt.quantity)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res)

			line, _ := s.Line("p1")
			assert.Equal(t, tt.stored, line.Quantity)
			assert.Equal(t, tt.stored, stored(t, mem, model.CartKey)[0].Quantity)
		})
	}
}

func TestUpdateQuantityUnknownProduct(t *testing.T) {
	ctx := context.Background()
	s, _ := openEmpty(t)
	mustAdd(t, s, "p1", "Widget", 1, 3)

	res, err := s.UpdateQuantity(ctx, "ghost", 5)
	require.NoError(t, err)
	assert.Equal(t, model.NotFound, res)
	assert.Equal(t, 1, s.Len())
}

func TestUpdateQuantityText(t *testing.T) {
	ctx := context.Background()
	s, _ := openEmpty(t)
	mustAdd(t, s, "p1", "Widget", 1, 3)

	res, err := s.UpdateQuantityText(ctx, "p1", "abc")
	require.NoError(t, err)
	assert.Equal(t, model.Rejected, res)

	res, err = s.UpdateQuantityText(ctx, "p1", " 7 items")
	require.NoError(t, err)
	assert.Equal(t, model.Accepted, res)
	line, _ := s.Line("p1")
	assert.Equal(t, 7, line.Quantity)
}

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"5", 5, true},
		{"  12 ", 12, true},
		{"3.7", 3, true},
		{"-2", -2, true},
		{"+4x", 4, true},
		{"", 0, false},
		{"-", 0, false},
		{"x1", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseQuantity(c.in)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
		assert.Equal(t, c.want, got, "input %q", c.in)
	}
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	s, mem := openEmpty(t)
	mustAdd(t, s, "a", "A", 1, 1)
	mustAdd(t, s, "b", "B", 1, 1)

	require.NoError(t, s.RemoveItem(ctx, "a"))
	assert.Equal(t, []string{"b"}, ids(s.Lines()))

	before := s.Lines()
	require.NoError(t, s.RemoveItem(ctx, "missing"))
	assert.Equal(t, before, s.Lines())
	assert.Equal(t, before, stored(t, mem, model.CartKey))
}

func TestClearThenReopenIsEmpty(t *testing.T) {
	ctx := context.Background()
	s, mem := openEmpty(t)
	mustAdd(t, s, "a", "A", 1, 1)

	require.NoError(t, s.Clear(ctx))
	assert.Zero(t, s.Len())
	assert.Equal(t, model.Totals{}, s.Totals())

	reopened, err := Open(ctx, mem)
	require.NoError(t, err)
	assert.Zero(t, reopened.Len())
}

func TestOpenRecoversFromMalformedStorage(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":    "not json",
		"json string": `"not json"`,
		"object":      `{"productId":"p1"}`,
		"null":        `null`,
		"bad field":   `[{"productId":"p1","quantity":"many"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			mem := repo.NewMemoryStorage()
			require.NoError(t, mem.Save(ctx, model.CartKey, []byte(raw)))

			s, err := Open(ctx, mem)
			require.NoError(t, err)
			assert.Zero(t, s.Len())

			mustAdd(t, s, "p1", "Widget", 1, 1)
			assert.Equal(t, 1, s.Len())
		})
	}
}

func TestDecodeLinesSanitizes(t *testing.T) {
	lines, err := DecodeLines([]byte(`[
		{"productId":"a","name":"A","price":1,"quantity":2},
		{"productId":"","name":"anon","price":1,"quantity":1},
		{"productId":"b","name":"B","price":1,"quantity":0},
		{"productId":"a","name":"A again","price":3,"quantity":5}
	]`))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "A", lines[0].Name)
	assert.Equal(t, 7, lines[0].Quantity)
}

func TestSnapshotForCheckout(t *testing.T) {
	ctx := context.Background()
	s, mem := openEmpty(t)
	mustAdd(t, s, "a", "A", 2.5, 2)

	require.NoError(t, s.SnapshotForCheckout(ctx))
	mustAdd(t, s, "b", "B", 1, 1)

	snap := LoadCheckoutSnapshot(ctx, mem)
	require.Len(t, snap, 1)
	assert.Equal(t, "a", snap[0].ProductID)
	assert.Equal(t, 2, s.Len(), "snapshot does not mutate the live cart")
}

func TestSnapshotOfEmptyCartIsEmptyArray(t *testing.T) {
	ctx := context.Background()
	s, mem := openEmpty(t)
	require.NoError(t, s.SnapshotForCheckout(ctx))

	b, err := mem.Load(ctx, model.CheckoutKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestReloadPicksUpExternalWrites(t *testing.T) {
	ctx := context.Background()
	s, mem := openEmpty(t)
	mustAdd(t, s, "a", "A", 1, 1)

	other, err := Open(ctx, mem)
	require.NoError(t, err)
	mustAdd(t, other, "b", "B", 1, 1)

	assert.Equal(t, 1, s.Len())
	s.Reload(ctx)
	assert.Equal(t, []string{"a", "b"}, ids(s.Lines()))
}

func TestPersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	fs := &failingStorage{MemoryStorage: repo.NewMemoryStorage()}
	s, err := Open(ctx, fs)
	require.NoError(t, err)
	mustAdd(t, s, "a", "A", 1, 1)

	var events []model.EventKind
	s.Subscribe(func(ev model.Event) { events = append(events, ev.Kind) })

	fs.failSave = true
	res, err := s.AddItem(ctx, "a", "A", 1, 5)
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, model.Rejected, res)
	res, err = s.UpdateQuantity(ctx, "a", 9)
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, model.Rejected, res)
	assert.ErrorIs(t, s.RemoveItem(ctx, "a"), errDown)

	line, ok := s.Line("a")
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity)
	assert.Empty(t, events)
}

func TestListeners(t *testing.T) {
	ctx := context.Background()
	var loaded model.Event
	mem := repo.NewMemoryStorage()
	require.NoError(t, mem.Save(ctx, model.CartKey, []byte(`[{"productId":"a","name":"A","price":4,"quantity":2}]`)))

	s, err := Open(ctx, mem, WithListener(func(ev model.Event) {
		if ev.Kind == model.EventLoaded {
			loaded = ev
		}
	}))
	require.NoError(t, err)
	assert.Equal(t, model.Totals{Count: 2, Amount: 8}, loaded.Totals)

	var got []model.Event
	unsubscribe := s.Subscribe(func(ev model.Event) {
		got = append(got, ev)
		// listeners run outside the lock and may read the store
		_ = s.Totals()
	})

	mustAdd(t, s, "b", "B", 1, 1)
	_, err = s.UpdateQuantity(ctx, "b", 200)
	require.NoError(t, err)
	_, err = s.UpdateQuantity(ctx, "b", 3)
	require.NoError(t, err)
	require.NoError(t, s.RemoveItem(ctx, "a"))
	require.NoError(t, s.Clear(ctx))

	kinds := make([]model.EventKind, 0, len(got))
	for _, ev := range got {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []model.EventKind{model.EventAdded, model.EventUpdated, model.EventRemoved, model.EventCleared}, kinds)
	assert.Equal(t, model.Totals{Count: 3, Amount: 3}, got[2].Totals)

	unsubscribe()
	mustAdd(t, s, "c", "C", 1, 1)
	assert.Len(t, got, 4)
}

func TestOpenNilStorage(t *testing.T) {
	_, err := Open(context.Background(), nil)
	assert.Error(t, err)
}

func mustAdd(t *testing.T, s *Store, productID, name string, price float64, quantity int, shipping ...model.Shipping) {
	t.Helper()
	res, err := s.AddItem(context.Background(), productID, name, price, quantity, shipping...)
	require.NoError(t, err)
	require.Equal(t, model.Accepted, res)
}

func ids(lines []model.CartLine) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.ProductID)
	}
	return out
}
