package orderbook

import (
	"testing"

	"pgregory.net/rapid"
)

// Random order flow against the invariants the book must hold after every
// call: the book never stays crossed, quantity is conserved per order,
// and no iceberg ever discloses more than its peak.
func TestPropertyBookInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		b := NewOrderBook()

		original := map[uint64]int64{}
		filled := map[uint64]int64{}
		peaks := map[uint64]int64{}

		n := rapid.IntRange(1, 60).Draw(rt, "orders")
		for i := 0; i < n; i++ {
			id := uint64(i + 1)
			side := Buy
			if rapid.Bool().Draw(rt, "sell") {
				side = Sell
			}
			price := rapid.Int64Range(1, 20).Draw(rt, "price")
			qty := rapid.Int64Range(1, 50).Draw(rt, "qty")

			kind := Limit
			peak := int64(0)
			if rapid.Bool().Draw(rt, "iceberg") {
				kind = Iceberg
				peak = rapid.Int64Range(1, 50).Draw(rt, "peak")
				peaks[id] = peak
			}

			o, err := NewOrder(id, side, kind, price, qty, peak)
			if err != nil {
				rt.Fatalf("NewOrder: %v", err)
			}
			original[id] = qty

			for _, tr := range b.Process(o) {
				if tr.Qty <= 0 {
					rt.Fatalf("non-positive trade quantity: %+v", tr)
				}
				filled[tr.BuyOrderID] += tr.Qty
				filled[tr.SellOrderID] += tr.Qty
			}

			bestBid := b.Bids.MaxLevel()
			bestAsk := b.Asks.MinLevel()
			if bestBid != nil && bestAsk != nil && bestBid.Price >= bestAsk.Price {
				rt.Fatalf("book left crossed: bid %d >= ask %d", bestBid.Price, bestAsk.Price)
			}
		}

		remaining := map[uint64]int64{}
		b.Walk(func(o *Order) {
			remaining[o.ID] += o.Qty
			if o.Qty <= 0 {
				rt.Fatalf("resting order %d has non-positive quantity %d", o.ID, o.Qty)
			}
			if peak, ok := peaks[o.ID]; ok && o.Visible() > peak {
				rt.Fatalf("iceberg %d discloses %d > peak %d", o.ID, o.Visible(), peak)
			}
			if o.Visible() > o.Qty {
				rt.Fatalf("order %d visible %d > remaining %d", o.ID, o.Visible(), o.Qty)
			}
		})

		for id, orig := range original {
			if got := filled[id] + remaining[id]; got != orig {
				rt.Fatalf("order %d: filled %d + remaining %d != original %d",
					id, filled[id], remaining[id], orig)
			}
		}
	})
}

func TestPropertyFIFOFairness(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		b := NewOrderBook()

		// Two resting sells at one price, then a partial buy: the earlier
		// order must be exhausted before the later one is touched.
		first := rapid.Int64Range(1, 30).Draw(rt, "first")
		second := rapid.Int64Range(1, 30).Draw(rt, "second")
		take := rapid.Int64Range(1, first+second-1).Draw(rt, "take")

		b.Process(mustOrderRapid(rt, 1, Sell, Limit, 100, first, 0))
		b.Process(mustOrderRapid(rt, 2, Sell, Limit, 100, second, 0))
		b.Process(mustOrderRapid(rt, 3, Buy, Limit, 100, take, 0))

		s := b.Snapshot()
		if take < first {
			if len(s.SellOrders) != 2 || s.SellOrders[0].ID != 1 || s.SellOrders[0].Qty != first-take {
				rt.Fatalf("snapshot = %+v, want order 1 reduced to %d and order 2 untouched",
					s.SellOrders, first-take)
			}
			if s.SellOrders[1].Qty != second {
				rt.Fatalf("order 2 touched before order 1 exhausted: %+v", s.SellOrders)
			}
		} else {
			if len(s.SellOrders) != 1 || s.SellOrders[0].ID != 2 || s.SellOrders[0].Qty != first+second-take {
				rt.Fatalf("snapshot = %+v, want only order 2 with %d left",
					s.SellOrders, first+second-take)
			}
		}
	})
}

func mustOrderRapid(rt *rapid.T, id uint64, side Side, kind Kind, price, qty, peak int64) *Order {
	o, err := NewOrder(id, side, kind, price, qty, peak)
	if err != nil {
		rt.Fatalf("NewOrder: %v", err)
	}
	return o
}
