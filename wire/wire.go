// Package wire owns the JSON record shapes exchanged with the outside
// world. The engine itself never sees JSON; drivers decode input lines
// here and encode trades and snapshots back.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"floe/domain/orderbook"
)

// ErrBadRecord marks input that cannot be decoded into an order.
var ErrBadRecord = errors.New("wire: bad order record")

// OrderRecord is one input line: a kind tag wrapping the order body, peak
// present only on iceberg records.
type OrderRecord struct {
	Type  string    `json:"type"`
	Order OrderBody `json:"order"`
}

type OrderBody struct {
	Direction string `json:"direction"`
	ID        uint64 `json:"id"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	Peak      int64  `json:"peak,omitempty"`
}

// Transaction is one executed fill on the output stream.
type Transaction struct {
	BuyOrderID  uint64 `json:"buyOrderId"`
	SellOrderID uint64 `json:"sellOrderId"`
	Price       int64  `json:"price"`
	Quantity    int64  `json:"quantity"`
}

type SnapshotEntry struct {
	ID       uint64 `json:"id"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

// BookSnapshot lists resting orders by their visible quantity, buys by
// descending price and sells by ascending price.
type BookSnapshot struct {
	BuyOrders  []SnapshotEntry `json:"buyOrders"`
	SellOrders []SnapshotEntry `json:"sellOrders"`
}

// ParseKind maps the wire kind tag to the domain tag.
func ParseKind(s string) (orderbook.Kind, error) {
	switch s {
	case "Limit":
		return orderbook.Limit, nil
	case "Iceberg":
		return orderbook.Iceberg, nil
	default:
		return 0, fmt.Errorf("%w: unknown type %q", ErrBadRecord, s)
	}
}

// ParseSide maps the wire direction tag to the domain tag.
func ParseSide(s string) (orderbook.Side, error) {
	switch s {
	case "Buy":
		return orderbook.Buy, nil
	case "Sell":
		return orderbook.Sell, nil
	default:
		return 0, fmt.Errorf("%w: unknown direction %q", ErrBadRecord, s)
	}
}

// DecodeOrder parses one input line into a validated domain order.
func DecodeOrder(line []byte) (*orderbook.Order, error) {
	var rec OrderRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	return rec.ToOrder()
}

// ToOrder builds the domain order, validating the record. A peak on a
// limit record is ignored, matching the reference feed.
func (r OrderRecord) ToOrder() (*orderbook.Order, error) {
	kind, err := ParseKind(r.Type)
	if err != nil {
		return nil, err
	}
	side, err := ParseSide(r.Order.Direction)
	if err != nil {
		return nil, err
	}
	peak := r.Order.Peak
	if kind == orderbook.Limit {
		peak = 0
	}
	return orderbook.NewOrder(r.Order.ID, side, kind, r.Order.Price, r.Order.Quantity, peak)
}

func FromTrade(t orderbook.Trade) Transaction {
	return Transaction{
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
		Price:       t.Price,
		Quantity:    t.Qty,
	}
}

func FromSnapshot(s orderbook.Snapshot) BookSnapshot {
	out := BookSnapshot{
		BuyOrders:  make([]SnapshotEntry, 0, len(s.BuyOrders)),
		SellOrders: make([]SnapshotEntry, 0, len(s.SellOrders)),
	}
	for _, e := range s.BuyOrders {
		out.BuyOrders = append(out.BuyOrders, SnapshotEntry{ID: e.ID, Price: e.Price, Quantity: e.Qty})
	}
	for _, e := range s.SellOrders {
		out.SellOrders = append(out.SellOrders, SnapshotEntry{ID: e.ID, Price: e.Price, Quantity: e.Qty})
	}
	return out
}
