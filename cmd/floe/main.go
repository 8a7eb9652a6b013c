// Command floe is the reference line driver: one JSON order record per
// stdin line, an empty line ends the session. For every record it prints
// each executed transaction and then a fresh book snapshot, one JSON
// document per line.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log"
	"os"

	"floe/domain/orderbook"
	"floe/wire"
)

func main() {
	book := orderbook.NewOrderBook()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			break
		}

		o, err := wire.DecodeOrder(line)
		if err != nil {
			log.Fatalf("[floe] %v", err)
		}

		for _, t := range book.Process(o) {
			writeJSON(out, wire.FromTrade(t))
		}
		writeJSON(out, wire.FromSnapshot(book.Snapshot()))

		if err := out.Flush(); err != nil {
			log.Fatalf("[floe] write: %v", err)
		}
	}
	if err := sc.Err(); err != nil {
		log.Fatalf("[floe] read: %v", err)
	}
}

func writeJSON(w *bufio.Writer, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Fatalf("[floe] encode: %v", err)
	}
	_, _ = w.Write(b)
	_ = w.WriteByte('\n')
}
