// Package signature implements the compact recoverable secp256k1 signature
// primitive used to sign and verify transaction digests: a 65-byte
// signature that a verifier can recover the signing public key from without
// being told which key signed.
//
// Grounded on the teacher's src/chainadapter/bitcoin/signer.go (the btcec
// signing shape) and .../ethereum/signer.go (the recovery/header-byte
// normalization shape), adapted to the compact-recoverable format rather
// than DER or EIP-155.
package signature

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/arcledger/authcore/authority"
)

// Size is the length in bytes of a compact recoverable signature.
const Size = 65

// ErrInvalidSignatureSize is returned when a signature is not exactly Size
// bytes long.
var ErrInvalidSignatureSize = errors.New("signature: compact signature must be 65 bytes")

// PrivateKey is a secp256k1 signing key.
type PrivateKey struct {
	key *btcec.PrivateKey
}

// GeneratePrivateKey returns a fresh, randomly generated signing key.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes parses a 32-byte raw scalar into a signing key.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, errors.New("signature: private key must be 32 bytes")
	}
	key, _ := btcec.PrivKeyFromBytes(b)
	return &PrivateKey{key: key}, nil
}

// PublicKey returns the compressed public key corresponding to k.
func (k *PrivateKey) PublicKey() authority.PublicKey {
	var pk authority.PublicKey
	copy(pk[:], k.key.PubKey().SerializeCompressed())
	return pk
}

// Sign produces a 65-byte compact recoverable signature over digest (which
// must be exactly 32 bytes — the caller passes a digest, never raw
// transaction bytes).
func (k *PrivateKey) Sign(digest [32]byte) ([Size]byte, error) {
	var out [Size]byte
	sig := ecdsa.SignCompact(k.key, digest[:], true)
	if len(sig) != Size {
		return out, ErrInvalidSignatureSize
	}
	copy(out[:], sig)
	return out, nil
}

// Recover recovers the compressed public key that produced sig over digest.
// A malformed signature, or one that does not verify against the recovered
// key, is an error. A well-formed signature checked against a different
// digest usually recovers some other valid key without an error, so the
// caller compares the result against the key it expects.
func Recover(sig [Size]byte, digest [32]byte) (authority.PublicKey, error) {
	pub, _, err := ecdsa.RecoverCompact(sig[:], digest[:])
	if err != nil {
		return authority.PublicKey{}, err
	}
	var out authority.PublicKey
	copy(out[:], pub.SerializeCompressed())
	return out, nil
}

// Verify reports whether sig is a valid signature by pub over digest. This
// is a convenience on top of Recover; verification-by-recovery is how the
// core always checks signatures (see verify.VerifyAuthority), but some
// callers (tests, CLI diagnostics) want a direct predicate.
func Verify(sig [Size]byte, digest [32]byte, pub authority.PublicKey) bool {
	recovered, err := Recover(sig, digest)
	if err != nil {
		return false
	}
	return recovered == pub
}
