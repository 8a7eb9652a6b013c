// Package wal holds the checksum primitives shared by the journal's
// record framing.
package wal

import "hash/crc32"

// CRC32 sums b with the IEEE polynomial. Every journaled record carries
// this sum over its header and payload.
func CRC32(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}

// CRC32Valid reports whether b sums to want. A mismatch on replay fails
// the whole segment scan; records are never silently skipped.
func CRC32Valid(b []byte, want uint32) bool {
	return crc32.ChecksumIEEE(b) == want
}
