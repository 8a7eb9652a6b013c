// Command floe-audit inspects the order audit journal: it replays every
// segment, verifies CRCs and prints one JSON document per record. With
// -truncate-before it drops fully-superseded segments instead.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	entrywal "floe/infra/wal/entry"
)

func main() {
	dir := flag.String("dir", "./journal", "journal directory")
	truncateBefore := flag.Uint64("truncate-before", 0, "remove segments whose records all have seq <= this value")
	flag.Parse()

	if *truncateBefore > 0 {
		if err := entrywal.TruncateBefore(*dir, *truncateBefore); err != nil {
			log.Fatalf("[audit] truncate failed: %v", err)
		}
		return
	}

	enc := json.NewEncoder(os.Stdout)
	last, err := entrywal.Replay(*dir, func(rec *entrywal.Record) error {
		return enc.Encode(map[string]any{
			"seq":     rec.Seq,
			"time":    rec.Time,
			"type":    rec.Type,
			"payload": string(rec.Data),
		})
	})
	if err != nil {
		log.Fatalf("[audit] replay failed at seq %d: %v", last, err)
	}
}
