package orderbook

// Trade is one executed fill between an incoming and a resting order.
// Fills are never aggregated: an incoming order that trades twice with the
// same resting order produces two trades.
type Trade struct {
	BuyOrderID  uint64
	SellOrderID uint64
	Price       int64
	Qty         int64
}

// SnapshotEntry reports one resting order with its visible quantity. The
// hidden iceberg reserve never leaves the book.
type SnapshotEntry struct {
	ID    uint64
	Price int64
	Qty   int64
}

// Snapshot is a point-in-time view of all resting orders: buys best to
// worst (price descending), sells best to worst (price ascending), FIFO
// within a level.
type Snapshot struct {
	BuyOrders  []SnapshotEntry
	SellOrders []SnapshotEntry
}

// OrderBook matches incoming orders against resting ones under price-time
// priority. It is strictly sequential: Process runs one order to
// completion before the next is accepted, and a concurrent host must treat
// every call as one critical section.
type OrderBook struct {
	Bids *RBTree
	Asks *RBTree

	// Retire, when set, receives every resting order permanently removed
	// from the book so the host can recycle it. Incoming orders stay owned
	// by the caller.
	Retire func(*Order)

	trades []Trade
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		Bids:   NewRBTree(),
		Asks:   NewRBTree(),
		trades: make([]Trade, 0, 16),
	}
}

// Process matches o against the opposite side while a cross exists and
// rests any unfilled remainder on its own side. The returned slice is
// reused and valid until the next call.
func (b *OrderBook) Process(o *Order) []Trade {
	b.trades = b.trades[:0]

	if o.Side == Buy {
		b.matchAgainst(o, b.Asks)
	} else {
		b.matchAgainst(o, b.Bids)
	}

	if o.Qty > 0 {
		if o.Side == Buy {
			b.Bids.UpsertLevel(o.Price).Enqueue(o)
		} else {
			b.Asks.UpsertLevel(o.Price).Enqueue(o)
		}
	}
	return b.trades
}

// matchAgainst walks the opposite side best level first, stopping as soon
// as the book stops crossing or the incoming order fills.
func (b *OrderBook) matchAgainst(o *Order, opposite *RBTree) {
	for o.Qty > 0 {
		var lvl *PriceLevel
		if o.Side == Buy {
			lvl = opposite.MinLevel()
			if lvl == nil || lvl.Price > o.Price {
				return
			}
		} else {
			lvl = opposite.MaxLevel()
			if lvl == nil || lvl.Price < o.Price {
				return
			}
		}

		b.matchLevel(o, lvl)

		if lvl.Empty() {
			opposite.DeleteLevel(lvl.Price)
		}
	}
}

// matchLevel trades o against the FIFO queue at lvl until one side is
// done. A resting iceberg whose slice reloads is moved to the back of the
// queue before matching continues at this level.
func (b *OrderBook) matchLevel(o *Order, lvl *PriceLevel) {
	for o.Qty > 0 {
		resting := lvl.Front()
		if resting == nil {
			return
		}

		traded := min(resting.Visible(), o.Qty)
		b.emit(o, resting, lvl.Price, traded)

		reloaded := resting.ReduceVisible(traded)
		o.Fill(traded)

		switch {
		case resting.Exhausted():
			lvl.PopFront()
			if b.Retire != nil {
				b.Retire(resting)
			}
		case reloaded:
			lvl.Requeue(resting)
		default:
			// Resting order still shows quantity, so the incoming order
			// took all it wanted.
			return
		}
	}
}

func (b *OrderBook) emit(incoming, resting *Order, price, qty int64) {
	t := Trade{Price: price, Qty: qty}
	if incoming.Side == Buy {
		t.BuyOrderID = incoming.ID
		t.SellOrderID = resting.ID
	} else {
		t.BuyOrderID = resting.ID
		t.SellOrderID = incoming.ID
	}
	b.trades = append(b.trades, t)
}

// Snapshot lists every resting order with its visible quantity.
func (b *OrderBook) Snapshot() Snapshot {
	s := Snapshot{
		BuyOrders:  []SnapshotEntry{},
		SellOrders: []SnapshotEntry{},
	}
	b.Bids.ForEachDescending(func(lvl *PriceLevel) bool {
		for o := lvl.Front(); o != nil; o = o.Next() {
			s.BuyOrders = append(s.BuyOrders, SnapshotEntry{ID: o.ID, Price: o.Price, Qty: o.Visible()})
		}
		return true
	})
	b.Asks.ForEachAscending(func(lvl *PriceLevel) bool {
		for o := lvl.Front(); o != nil; o = o.Next() {
			s.SellOrders = append(s.SellOrders, SnapshotEntry{ID: o.ID, Price: o.Price, Qty: o.Visible()})
		}
		return true
	})
	return s
}

// Walk visits every resting order, bids best to worst then asks best to
// worst.
func (b *OrderBook) Walk(visit func(*Order)) {
	b.Bids.ForEachDescending(func(lvl *PriceLevel) bool {
		for o := lvl.Front(); o != nil; o = o.Next() {
			visit(o)
		}
		return true
	})
	b.Asks.ForEachAscending(func(lvl *PriceLevel) bool {
		for o := lvl.Front(); o != nil; o = o.Next() {
			visit(o)
		}
		return true
	})
}
