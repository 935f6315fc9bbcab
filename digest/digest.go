// Package digest computes the 256-bit hashes that give a transaction its
// canonical identity: the plain digest of its encoding, the chain-prefixed
// signing digest, and the truncated transaction id.
//
// The hash function is treated as an opaque, consensus-defined choice; this
// package concretely picks SHA3-256 (golang.org/x/crypto/sha3).
package digest

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Size is the digest length in bytes.
const Size = 32

// Digest is a 256-bit hash of a canonical encoding.
type Digest [Size]byte

// Hash returns the digest of b.
func Hash(b []byte) Digest {
	return Digest(sha3.Sum256(b))
}

// SigningDigest returns hash(chainIDEncoded || txEncoded) — the chain id
// precedes the transaction so that a signature over one chain's transaction
// cannot be replayed on another chain sharing the same transaction bytes.
func SigningDigest(chainIDEncoded, txEncoded []byte) Digest {
	buf := make([]byte, 0, len(chainIDEncoded)+len(txEncoded))
	buf = append(buf, chainIDEncoded...)
	buf = append(buf, txEncoded...)
	return Hash(buf)
}

// Truncate returns the leading n bytes of d as a transaction id. n must not
// exceed Size; callers are expected to pass a configured, validated buffer
// size.
func Truncate(d Digest, n int) []byte {
	if n > Size {
		n = Size
	}
	out := make([]byte, n)
	copy(out, d[:n])
	return out
}

// Hex renders b as lowercase hexadecimal, the canonical display form for a
// transaction id.
func Hex(b []byte) string {
	return hex.EncodeToString(b)
}
