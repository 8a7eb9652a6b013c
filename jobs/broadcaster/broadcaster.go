// Package broadcaster drains the trade outbox to Kafka with at-least-once
// delivery. Entries move NEW -> SENT -> ACKED; a failed send leaves the
// entry SENT, and SENT entries are re-attempted on every pass, including
// the pass that marked them.
package broadcaster

import (
	"context"
	"log"
	"strconv"
	"time"

	exitwal "floe/infra/wal/exit"

	"github.com/IBM/sarama"
)

type Broadcaster struct {
	outbox   *exitwal.Outbox
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
}

func New(outbox *exitwal.Outbox, brokers []string, topic string, interval time.Duration) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Broadcaster{
		outbox:   outbox,
		producer: producer,
		topic:    topic,
		interval: interval,
	}, nil
}

func (b *Broadcaster) Start(ctx context.Context) {
	log.Println("[broadcaster] started")

	go func() {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.drainOnce()
			}
		}
	}()
}

func (b *Broadcaster) drainOnce() {
	// Fresh entries first, then everything in SENT, so a send that just
	// failed gets one more attempt before the pass ends.
	_ = b.outbox.ScanByState(exitwal.StateNew, b.deliver)
	_ = b.outbox.ScanByState(exitwal.StateSent, b.deliver)
}

func (b *Broadcaster) deliver(seq uint64, rec exitwal.Record) error {
	if err := b.outbox.MarkSent(seq); err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: b.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(seq, 10)),
		Value: sarama.ByteEncoder(rec.Payload),
	}
	if _, _, err := b.producer.SendMessage(msg); err != nil {
		// Stays SENT; the SENT scan picks it up again.
		return nil
	}

	return b.outbox.MarkAcked(seq)
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
