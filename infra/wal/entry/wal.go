// Package entry is the append-only audit journal of accepted orders.
// Records are CRC-framed and written to size-rotated segment files. The
// journal is an audit stream, not recovery state: nothing replays it into
// the book at startup.
package entry

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"floe/infra/wal"
)

type Config struct {
	Dir         string
	SegmentSize int64
	// FlushInterval enables a background fsync ticker when positive.
	FlushInterval time.Duration
}

type WAL struct {
	mu       sync.Mutex
	dir      string
	segSize  int64
	current  *segment
	segIndex int
	done     chan struct{}
}

func Open(cfg Config) (*WAL, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}

	index := nextSegmentIndex(cfg.Dir)
	seg, err := openSegment(cfg.Dir, index)
	if err != nil {
		return nil, err
	}

	w := &WAL{
		dir:      cfg.Dir,
		segSize:  cfg.SegmentSize,
		current:  seg,
		segIndex: index,
		done:     make(chan struct{}),
	}
	if cfg.FlushInterval > 0 {
		go w.autoFlush(cfg.FlushInterval)
	}
	return w, nil
}

// Append frames and writes one record:
// [type:1][seq:8][time:8][len:4][payload][crc:4], CRC over header+payload.
func (w *WAL) Append(r *Record) error {
	payloadLen := uint32(len(r.Data))

	buf := make([]byte, 1+8+8+4+payloadLen+4)
	buf[0] = byte(r.Type)
	binary.BigEndian.PutUint64(buf[1:9], r.Seq)
	binary.BigEndian.PutUint64(buf[9:17], uint64(r.Time))
	binary.BigEndian.PutUint32(buf[17:21], payloadLen)
	copy(buf[21:], r.Data)

	crc := wal.CRC32(buf[:21+payloadLen])
	binary.BigEndian.PutUint32(buf[21+payloadLen:], crc)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.current.append(buf); err != nil {
		return err
	}

	if w.current.offset >= w.segSize {
		return w.rotate()
	}
	return nil
}

// Sync flushes the current segment to stable storage.
func (w *WAL) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current.sync()
}

func (w *WAL) Close() error {
	close(w.done)
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.current.sync()
	return w.current.close()
}

func (w *WAL) autoFlush(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			_ = w.Sync()
		}
	}
}

func (w *WAL) rotate() error {
	_ = w.current.close()
	w.segIndex++

	seg, err := openSegment(w.dir, w.segIndex)
	if err != nil {
		return err
	}
	w.current = seg
	return nil
}

// TruncateBefore removes whole segments whose records all have seq <= the
// given bound. Used by the audit tool for retention.
func TruncateBefore(dir string, seq uint64) error {
	files, err := filepath.Glob(filepath.Join(dir, "segment-*.wal"))
	if err != nil {
		return err
	}

	for _, path := range files {
		maxSeq, err := maxSeqInSegment(path)
		if err != nil {
			continue
		}
		if maxSeq <= seq {
			_ = os.Remove(path)
		}
	}
	return nil
}

// nextSegmentIndex returns one past the highest surviving segment index.
// Counting files would hand out an already-used index after TruncateBefore
// removed leading segments, making replay order diverge from write order.
func nextSegmentIndex(dir string) int {
	files, err := filepath.Glob(filepath.Join(dir, "segment-*.wal"))
	if err != nil {
		return 0
	}

	next := 0
	for _, path := range files {
		var index int
		if _, err := fmt.Sscanf(filepath.Base(path), "segment-%06d.wal", &index); err != nil {
			continue
		}
		if index >= next {
			next = index + 1
		}
	}
	return next
}
