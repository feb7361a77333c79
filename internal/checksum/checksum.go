// Package checksum fingerprints note bytes so unchanged saves can be skipped.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is the SHA-256 of a note's bytes. The zero value means "nothing
// seen yet" and never equals the digest of real data.
type Digest struct {
	sum [sha256.Size]byte
	set bool
}

// Sum fingerprints data.
func Sum(data []byte) Digest {
	return Digest{sum: sha256.Sum256(data), set: true}
}

// IsZero reports whether d was never set.
func (d Digest) IsZero() bool { return !d.set }

// String returns the hex digest, or "" for the zero value.
func (d Digest) String() string {
	if !d.set {
		return ""
	}
	return hex.EncodeToString(d.sum[:])
}
