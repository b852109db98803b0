// Package anonid derives the opaque identifiers shown to raters in place of
// real filenames.
package anonid

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

const hexPrefixLen = 8

// New hashes the filename and mixes in the enumeration position. The result
// is deterministic for a fixed (filename, seq) pair; two catalog builds may
// assign the same file different sequence numbers, which is accepted since
// anonymization only needs to hold within one serving session.
func New(filename string, seq int) string {
	sum := blake2b.Sum256([]byte(filename))
	return fmt.Sprintf("audio_%s_%d", hex.EncodeToString(sum[:])[:hexPrefixLen], seq)
}
