package main

import (
	"context"
	"log"
	"time"

	"floe/api/httpserver"
	"floe/config"
	"floe/domain/orderbook"
	"floe/infra/kafka"
	"floe/infra/memory"
	"floe/infra/sequence"
	entrywal "floe/infra/wal/entry"
	exitwal "floe/infra/wal/exit"
	"floe/jobs/broadcaster"
	"floe/service"
)

func main() {
	cfg := config.Load()

	// ---------------- Audit journal ----------------

	journal, err := entrywal.Open(entrywal.Config{
		Dir:           cfg.JournalDir,
		SegmentSize:   2 * 1024 * 1024,
		FlushInterval: time.Second,
	})
	if err != nil {
		log.Fatalf("[server] journal init failed: %v", err)
	}
	defer journal.Close()

	// ---------------- Trade outbox ----------------

	outbox, err := exitwal.Open(cfg.OutboxDir)
	if err != nil {
		log.Fatalf("[server] outbox init failed: %v", err)
	}
	defer outbox.Close()

	// ---------------- Domain ----------------

	pool := memory.NewPool(func() *orderbook.Order {
		return &orderbook.Order{}
	})
	seq := sequence.New(0)
	book := orderbook.NewOrderBook()

	// ---------------- Kafka ----------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var feed *kafka.Producer
	if cfg.KafkaEnabled {
		feed = kafka.NewProducer(cfg.KafkaBrokers, cfg.FeedTopic)
		defer feed.Close()

		bc, err := broadcaster.New(outbox, cfg.KafkaBrokers, cfg.OutboxTopic, cfg.BroadcastInterval)
		if err != nil {
			log.Fatalf("[server] broadcaster init failed: %v", err)
		}
		defer bc.Close()
		bc.Start(ctx)
	}

	// ---------------- Service + HTTP ----------------

	svc := service.New(book, pool, seq, journal, outbox, feed)
	srv := httpserver.New(svc)

	log.Printf("[server] listening on %s", cfg.ListenAddr)
	if err := srv.Router().Run(cfg.ListenAddr); err != nil {
		log.Fatalf("[server] http server exited: %v", err)
	}
}
