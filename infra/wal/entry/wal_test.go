package entry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAppendAndReplay(t *testing.T) {
	dir := t.TempDir()

	w, err := Open(Config{Dir: dir, SegmentSize: 1 << 20})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	payloads := []string{"1|0|0|14|20|0", "2|0|1|15|50|20", "3|1|0|16|15|0"}
	for i, p := range payloads {
		if err := w.Append(NewRecord(RecordAccept, uint64(i+1), []byte(p))); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var got []string
	last, err := Replay(dir, func(rec *Record) error {
		got = append(got, string(rec.Data))
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if last != 3 {
		t.Errorf("last seq = %d, want 3", last)
	}
	if len(got) != len(payloads) {
		t.Fatalf("replayed %d records, want %d", len(got), len(payloads))
	}
	for i, p := range payloads {
		if got[i] != p {
			t.Errorf("record %d = %q, want %q", i, got[i], p)
		}
	}
}

func TestReplayDetectsCorruption(t *testing.T) {
	dir := t.TempDir()

	w, err := Open(Config{Dir: dir, SegmentSize: 1 << 20})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := w.Append(NewRecord(RecordAccept, 1, []byte("payload"))); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	path := filepath.Join(dir, "segment-000000.wal")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read segment: %v", err)
	}
	data[len(data)-6] ^= 0xFF // flip a payload byte
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write segment: %v", err)
	}

	_, err = Replay(dir, func(*Record) error { return nil })
	if err == nil {
		t.Error("expected CRC error on corrupted segment")
	}
}

func TestSegmentRotation(t *testing.T) {
	dir := t.TempDir()

	// Tiny segment budget forces a rotation on every record.
	w, err := Open(Config{Dir: dir, SegmentSize: 8})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 1; i <= 3; i++ {
		if err := w.Append(NewRecord(RecordAccept, uint64(i), []byte("x"))); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "segment-*.wal"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) < 3 {
		t.Errorf("got %d segments, want at least 3", len(files))
	}

	count := 0
	if _, err := Replay(dir, func(*Record) error { count++; return nil }); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if count != 3 {
		t.Errorf("replayed %d records across segments, want 3", count)
	}
}

func TestTruncateBefore(t *testing.T) {
	dir := t.TempDir()

	w, err := Open(Config{Dir: dir, SegmentSize: 8})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 1; i <= 3; i++ {
		if err := w.Append(NewRecord(RecordAccept, uint64(i), []byte("x"))); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if err := TruncateBefore(dir, 2); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	var seqs []uint64
	if _, err := Replay(dir, func(rec *Record) error { seqs = append(seqs, rec.Seq); return nil }); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(seqs) != 1 || seqs[0] != 3 {
		t.Errorf("remaining seqs = %v, want [3]", seqs)
	}
}

func TestReopenAfterTruncateKeepsReplayOrder(t *testing.T) {
	dir := t.TempDir()

	w, err := Open(Config{Dir: dir, SegmentSize: 1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 1; i <= 3; i++ {
		if err := w.Append(NewRecord(RecordAccept, uint64(i), []byte("x"))); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Drop the first two segments, leaving only the one holding seq 3.
	if err := TruncateBefore(dir, 2); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	// A reopened journal must continue after the surviving segment, not
	// reuse an index that sorts before it.
	w, err = Open(Config{Dir: dir, SegmentSize: 1})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := w.Append(NewRecord(RecordAccept, 4, []byte("y"))); err != nil {
		t.Fatalf("append after reopen: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var seqs []uint64
	last, err := Replay(dir, func(rec *Record) error { seqs = append(seqs, rec.Seq); return nil })
	if err != nil {
		t.Fatalf("replay after reopen: %v", err)
	}
	if last != 4 {
		t.Errorf("last seq = %d, want 4", last)
	}
	if len(seqs) != 2 || seqs[0] != 3 || seqs[1] != 4 {
		t.Errorf("replayed seqs = %v, want [3 4]", seqs)
	}
}
