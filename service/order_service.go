package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"floe/domain/orderbook"
	"floe/infra/kafka"
	"floe/infra/memory"
	"floe/infra/sequence"
	entrywal "floe/infra/wal/entry"
	exitwal "floe/infra/wal/exit"

	"github.com/google/uuid"
)

/*
OrderService is the only write entry point into the system.

All coordination between the domain (orderbook) and the infrastructure
(journal, outbox, trade feed, memory) happens here. The journal, outbox
and feed are optional: a nil dependency is skipped, which is how the line
driver and the tests run the bare engine.
*/
type OrderService struct {
	book    *orderbook.OrderBook
	pool    *memory.Pool[orderbook.Order]
	seq     *sequence.Sequencer
	journal *entrywal.WAL
	outbox  *exitwal.Outbox
	feed    *kafka.Producer
}

func New(
	book *orderbook.OrderBook,
	pool *memory.Pool[orderbook.Order],
	seq *sequence.Sequencer,
	journal *entrywal.WAL,
	outbox *exitwal.Outbox,
	feed *kafka.Producer,
) *OrderService {
	book.Retire = func(o *orderbook.Order) { pool.Put(o) }
	return &OrderService{
		book:    book,
		pool:    pool,
		seq:     seq,
		journal: journal,
		outbox:  outbox,
		feed:    feed,
	}
}

// TradeEvent is the payload journaled to the outbox and published on the
// feed, one per fill.
type TradeEvent struct {
	EventID     string `json:"eventId"`
	BuyOrderID  uint64 `json:"buyOrderId"`
	SellOrderID uint64 `json:"sellOrderId"`
	Price       int64  `json:"price"`
	Quantity    int64  `json:"quantity"`
}

// Process runs one order through the engine and returns the fills it
// produced, in execution order. The returned slice is valid until the
// next call. Invalid records fail before any state changes.
func (s *OrderService) Process(
	ctx context.Context,
	id uint64,
	side orderbook.Side,
	kind orderbook.Kind,
	price, qty, peak int64,
) ([]orderbook.Trade, error) {
	o := s.pool.Get()
	if err := o.Init(id, side, kind, price, qty, peak); err != nil {
		s.pool.Put(o)
		return nil, err
	}

	if s.journal != nil {
		payload := fmt.Sprintf("%d|%d|%d|%d|%d|%d", id, side, kind, price, qty, peak)
		rec := entrywal.NewRecord(entrywal.RecordAccept, s.seq.Next(), []byte(payload))
		if err := s.journal.Append(rec); err != nil {
			log.Printf("[service] journal append failed: %v", err)
		}
	}

	trades := s.book.Process(o)

	for _, t := range trades {
		s.publish(ctx, t)
	}

	if o.Exhausted() {
		s.pool.Put(o)
	}
	return trades, nil
}

// Snapshot returns a consistent view of all resting orders. Callers must
// treat it as read-only.
func (s *OrderService) Snapshot() orderbook.Snapshot {
	return s.book.Snapshot()
}

func (s *OrderService) publish(ctx context.Context, t orderbook.Trade) {
	if s.outbox == nil && s.feed == nil {
		return
	}

	ev := TradeEvent{
		EventID:     uuid.NewString(),
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
		Price:       t.Price,
		Quantity:    t.Qty,
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[service] trade event encode failed: %v", err)
		return
	}

	if s.outbox != nil {
		if err := s.outbox.PutNew(s.seq.Next(), payload); err != nil {
			log.Printf("[service] outbox put failed: %v", err)
		}
	}
	if s.feed != nil {
		if err := s.feed.Send(ctx, []byte(ev.EventID), payload); err != nil {
			log.Printf("[service] feed publish failed: %v", err)
		}
	}
}
