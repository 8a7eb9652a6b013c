package orderbook

import (
	"errors"
	"fmt"
)

type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "Sell"
	}
	return "Buy"
}

type Kind uint8

const (
	Limit Kind = iota
	Iceberg
)

func (k Kind) String() string {
	if k == Iceberg {
		return "Iceberg"
	}
	return "Limit"
}

// ErrInvalidOrder marks records that violate the input contract. It is
// returned before any book state is touched.
var ErrInvalidOrder = errors.New("orderbook: invalid order")

// Order is one resting or incoming order. Qty is the total remaining
// quantity including any hidden iceberg reserve; the visible slice is the
// portion currently eligible to trade. The next/prev links are owned by
// the price level the order rests in.
type Order struct {
	ID    uint64
	Side  Side
	Kind  Kind
	Price int64
	Qty   int64
	Peak  int64

	visible int64
	next    *Order
	prev    *Order
}

// NewOrder validates the record and builds a fresh order.
func NewOrder(id uint64, side Side, kind Kind, price, qty, peak int64) (*Order, error) {
	o := &Order{}
	if err := o.Init(id, side, kind, price, qty, peak); err != nil {
		return nil, err
	}
	return o, nil
}

// Init resets o in place to a freshly accepted order. It is the pooled
// counterpart of NewOrder.
func (o *Order) Init(id uint64, side Side, kind Kind, price, qty, peak int64) error {
	if side != Buy && side != Sell {
		return fmt.Errorf("%w: unknown side %d", ErrInvalidOrder, side)
	}
	if price < 0 {
		return fmt.Errorf("%w: negative price %d", ErrInvalidOrder, price)
	}
	if qty <= 0 {
		return fmt.Errorf("%w: non-positive quantity %d", ErrInvalidOrder, qty)
	}
	switch kind {
	case Limit:
		if peak != 0 {
			return fmt.Errorf("%w: peak %d on limit order", ErrInvalidOrder, peak)
		}
	case Iceberg:
		if peak <= 0 {
			return fmt.Errorf("%w: iceberg order requires peak > 0, got %d", ErrInvalidOrder, peak)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidOrder, kind)
	}

	*o = Order{ID: id, Side: side, Kind: kind, Price: price, Qty: qty, Peak: peak}
	o.visible = qty
	if kind == Iceberg && o.visible > peak {
		o.visible = peak
	}
	return nil
}

// Visible returns the quantity currently eligible to trade.
func (o *Order) Visible() int64 { return o.visible }

// ReduceVisible consumes n from the visible slice and the total together.
// It reports whether the order replenished its slice from the hidden
// reserve, which forfeits the order's queue position. Consuming more than
// the visible slice is an internal invariant violation.
func (o *Order) ReduceVisible(n int64) bool {
	if n < 0 || n > o.visible {
		panic(fmt.Sprintf("orderbook: reduce %d exceeds visible %d on order %d", n, o.visible, o.ID))
	}
	o.visible -= n
	o.Qty -= n
	if o.Kind == Iceberg && o.visible == 0 && o.Qty > 0 {
		o.visible = min(o.Qty, o.Peak)
		return true
	}
	return false
}

// Fill reduces the total on the aggressing side and re-derives the slice
// that would be disclosed if the order came to rest.
func (o *Order) Fill(n int64) {
	if n < 0 || n > o.Qty {
		panic(fmt.Sprintf("orderbook: fill %d exceeds remaining %d on order %d", n, o.Qty, o.ID))
	}
	o.Qty -= n
	o.visible = o.Qty
	if o.Kind == Iceberg && o.visible > o.Peak {
		o.visible = o.Peak
	}
}

// Exhausted reports whether nothing remains to trade.
func (o *Order) Exhausted() bool { return o.Qty == 0 }

// Next returns the order behind o in its level queue.
func (o *Order) Next() *Order { return o.next }
