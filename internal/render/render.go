package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/honey-shop/cart/internal/cart/model"
)

const EmptyCartMessage = "Your cart is empty"

// Money formats an amount with thousands separators and two decimals.
func Money(v float64) string {
	s := humanize.CommafWithDigits(model.RoundCents(v), 2)
	i := strings.IndexByte(s, '.')
	switch {
	case i < 0:
		return s + ".00"
	case len(s)-i == 2:
		return s + "0"
	}
	return s
}

// Badge is the header counter: item count and cart total.
type Badge struct {
	w io.Writer
}

func NewBadge(w io.Writer) *Badge {
	return &Badge{w: w}
}

func (b *Badge) Render(ev model.Event) {
	fmt.Fprintf(b.w, "cart: %d items, %s\n", ev.Totals.Count, Money(ev.Totals.Amount))
}

// Table renders every line with its subtotal, the grand total and whether
// checkout is available.
type Table struct {
	w io.Writer
}

func NewTable(w io.Writer) *Table {
	return &Table{w: w}
}

func (t *Table) Render(ev model.Event) {
	if len(ev.Lines) == 0 {
		fmt.Fprintln(t.w, EmptyCartMessage)
		fmt.Fprintln(t.w, "checkout: disabled")
		return
	}

	tw := tabwriter.NewWriter(t.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range ev.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", l.ProductID, l.Name, l.Quantity, Money(l.Price), Money(l.Subtotal()))
	}
	_ = tw.Flush()
	fmt.Fprintf(t.w, "total: %s\n", Money(ev.Totals.Amount))
	fmt.Fprintln(t.w, "checkout: enabled")
}

// Bind subscribes each renderer's Render method to the store.
func Bind(subscribe func(model.Listener) func(), renderers ...interface{ Render(model.Event) }) func() {
	unsubs := make([]func(), 0, len(renderers))
	for _, r := range renderers {
		unsubs = append(unsubs, subscribe(r.Render))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
