// Package txn implements the transaction envelope: canonical encoding,
// digest/id derivation, signing and signature recovery, and the memoized
// "precomputable" variant used on the hot verification path.
//
// Grounded on BigBossBooling-Empower1-Re-Start/internal/core/transaction.go,
// which builds a canonical payload, hashes it once, and caches the result on
// the struct — reworked here for the wire encoder and secp256k1 signatures
// instead of that repo's JSON-then-P256 shape.
package txn

import (
	"errors"

	"github.com/arcledger/authcore/authority"
	"github.com/arcledger/authcore/digest"
	"github.com/arcledger/authcore/optax"
	"github.com/arcledger/authcore/signature"
	"github.com/arcledger/authcore/wire"
)

// ErrEmptyOperations is returned by Validate when a transaction's operation
// sequence is empty.
var ErrEmptyOperations = errors.New("txn: operations must be non-empty")

// ErrDuplicateSignature is returned by GetSignatureKeys when two signatures
// recover to the same public key.
var ErrDuplicateSignature = errors.New("txn: duplicate signature")

// Extension is a future-compatibility tagged value; the core treats its body
// as opaque bytes.
type Extension struct {
	Tag  uint64
	Body []byte
}

// Transaction is the immutable-in-transit envelope of §3.
type Transaction struct {
	RefBlockNum    uint16
	RefBlockPrefix uint32
	Expiration     uint32
	Operations     []optax.Operation
	Extensions     []Extension
}

// SetReferenceBlock sets RefBlockNum to the byte-reversed low 16 bits of
// word 0 of blockID, and RefBlockPrefix to word 1. The byte-reversal is a
// consensus quirk of the reference-block stability tag and must be
// preserved bit-exactly; it is a value-level transform, not a change to how
// RefBlockNum itself is later encoded on the wire (plain little-endian).
func (t *Transaction) SetReferenceBlock(blockID [32]byte) {
	word0 := uint16(blockID[0]) | uint16(blockID[1])<<8
	t.RefBlockNum = reverseBytes16(word0)
	t.RefBlockPrefix = uint32(blockID[4]) | uint32(blockID[5])<<8 | uint32(blockID[6])<<16 | uint32(blockID[7])<<24
}

func reverseBytes16(v uint16) uint16 {
	return v>>8 | v<<8
}

// Encode appends the canonical encoding of t to e. It does not validate the
// operation count; callers validate with Validate before encoding where that
// matters.
func (t *Transaction) Encode(e *wire.Encoder) {
	e.U16(t.RefBlockNum)
	e.U32(t.RefBlockPrefix)
	e.U32(t.Expiration)
	e.Varint(uint64(len(t.Operations)))
	for _, op := range t.Operations {
		e.Varint(op.Tag())
		op.Encode(e)
	}
	e.Varint(uint64(len(t.Extensions)))
	for _, ext := range t.Extensions {
		e.Varint(ext.Tag)
		e.BytesField(ext.Body)
	}
}

// Decode reads a Transaction from r, dispatching each operation's body to
// decodeOp by its wire tag — the decode-side counterpart of Encode, which
// lets callers plug in their own operation set via optax.Operation/Encode.
// On success, the canonical re-encoding of t is byte-identical to what r was
// read from (spec §8's encode/decode round-trip invariant).
func (t *Transaction) Decode(r *wire.Reader, decodeOp optax.Decoder) error {
	refBlockNum, err := r.U16()
	if err != nil {
		return err
	}
	refBlockPrefix, err := r.U32()
	if err != nil {
		return err
	}
	expiration, err := r.U32()
	if err != nil {
		return err
	}

	opCount, err := r.Varint()
	if err != nil {
		return err
	}
	ops := make([]optax.Operation, 0, opCount)
	for i := uint64(0); i < opCount; i++ {
		tag, err := r.Varint()
		if err != nil {
			return err
		}
		op, err := decodeOp(tag, r)
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}

	extCount, err := r.Varint()
	if err != nil {
		return err
	}
	exts := make([]Extension, 0, extCount)
	for i := uint64(0); i < extCount; i++ {
		tag, err := r.Varint()
		if err != nil {
			return err
		}
		body, err := r.BytesField()
		if err != nil {
			return err
		}
		exts = append(exts, Extension{Tag: tag, Body: body})
	}

	t.RefBlockNum = refBlockNum
	t.RefBlockPrefix = refBlockPrefix
	t.Expiration = expiration
	t.Operations = ops
	t.Extensions = exts
	return nil
}

// Validate enforces the structural invariants checked before a transaction
// is ever hashed or signed: at least one operation.
func (t *Transaction) Validate() error {
	if len(t.Operations) == 0 {
		return ErrEmptyOperations
	}
	return nil
}

// Digest returns the 256-bit hash of t's canonical encoding.
func (t *Transaction) Digest() digest.Digest {
	e := wire.NewEncoder()
	t.Encode(e)
	return digest.Hash(e.Bytes())
}

// SigningDigest returns the hash of encode(chainID) || encode(t) — the value
// every signature in this protocol is actually produced over.
func (t *Transaction) SigningDigest(chainID [32]byte) digest.Digest {
	ce := wire.NewEncoder()
	ce.Raw(chainID[:])
	te := wire.NewEncoder()
	t.Encode(te)
	return digest.SigningDigest(ce.Bytes(), te.Bytes())
}

// PackedSize returns the length in bytes of t's canonical encoding.
func (t *Transaction) PackedSize() int {
	e := wire.NewEncoder()
	t.Encode(e)
	return e.Len()
}

// SignedTransaction adds the signature sequence of §3.
type SignedTransaction struct {
	Transaction
	Signatures [][signature.Size]byte
}

// SignDetached returns a signature over t's signing digest under chainID,
// without mutating t or any SignedTransaction wrapping it — a pure variant
// for dry-run signing.
func SignDetached(t *Transaction, key *signature.PrivateKey, chainID [32]byte) ([signature.Size]byte, error) {
	d := t.SigningDigest(chainID)
	return key.Sign([32]byte(d))
}

// Sign appends a signature over st's signing digest under chainID to st's
// signature list.
func (st *SignedTransaction) Sign(key *signature.PrivateKey, chainID [32]byte) error {
	sig, err := SignDetached(&st.Transaction, key, chainID)
	if err != nil {
		return err
	}
	st.Signatures = append(st.Signatures, sig)
	return nil
}

// GetSignatureKeys recovers the signing public key for every signature in
// st, in order. Two signatures recovering to the same key is a fatal
// protocol error (ErrDuplicateSignature), since an honest signer never signs
// the same digest twice with the same key within one transaction.
func (st *SignedTransaction) GetSignatureKeys(chainID [32]byte) ([]authority.PublicKey, error) {
	d := st.SigningDigest(chainID)
	seen := make(map[authority.PublicKey]bool, len(st.Signatures))
	keys := make([]authority.PublicKey, 0, len(st.Signatures))
	for _, sig := range st.Signatures {
		pk, err := signature.Recover(sig, [32]byte(d))
		if err != nil {
			return nil, err
		}
		if seen[pk] {
			return nil, ErrDuplicateSignature
		}
		seen[pk] = true
		keys = append(keys, pk)
	}
	return keys, nil
}

// PrecomputableTransaction is a SignedTransaction with memoized identity
// fields, populated lazily on first access. Memoization invariant: a
// non-empty cached field is always byte-identical to the value recomputed
// from the immutable fields.
//
// The _signees cache is keyed implicitly on the chain id of its first
// caller: re-deriving signer keys under a different chain id after the
// cache is warm returns the stale set. This is a documented throughput
// trade-off, not a bug; call Invalidate between chain-id changes in test
// suites that need to exercise both.
type PrecomputableTransaction struct {
	SignedTransaction

	txID       []byte
	packedSize int
	sizeValid  bool
	signees    []authority.PublicKey
	validated  bool
}

// TxID returns the transaction id: the leading idSize bytes of the digest.
// Computed once and cached.
func (pt *PrecomputableTransaction) TxID(idSize int) []byte {
	if pt.txID == nil {
		d := pt.Digest()
		pt.txID = digest.Truncate(d, idSize)
	}
	return pt.txID
}

// PackedSize returns the cached packed size of pt's canonical encoding,
// computing it on first access.
func (pt *PrecomputableTransaction) PackedSize() int {
	if !pt.sizeValid {
		pt.packedSize = pt.Transaction.PackedSize()
		pt.sizeValid = true
	}
	return pt.packedSize
}

// Signees returns the cached recovered signer keys, recovering and caching
// them on first access under chainID. Subsequent calls — even with a
// different chainID — return the cached set; see the type doc comment.
func (pt *PrecomputableTransaction) Signees(chainID [32]byte) ([]authority.PublicKey, error) {
	if pt.signees == nil {
		keys, err := pt.GetSignatureKeys(chainID)
		if err != nil {
			return nil, err
		}
		pt.signees = keys
	}
	return pt.signees, nil
}

// MarkValidated records that pt passed structural/authority validation at
// least once.
func (pt *PrecomputableTransaction) MarkValidated() { pt.validated = true }

// Validated reports whether MarkValidated has been called.
func (pt *PrecomputableTransaction) Validated() bool { return pt.validated }

// Invalidate clears every memoized field, forcing recomputation on next
// access. Production code never needs this — memoized fields never change
// once populated, per the lifecycle invariant — but test suites that
// exercise the same transaction value under two different chain ids need an
// explicit escape hatch from the _signees cache.
func (pt *PrecomputableTransaction) Invalidate() {
	pt.txID = nil
	pt.sizeValid = false
	pt.signees = nil
	pt.validated = false
}
