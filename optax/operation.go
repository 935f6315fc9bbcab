// Package optax defines the operation taxonomy boundary: the tagged-union
// interface a transaction's operations satisfy, the per-operation
// required-authority extractor, and one concrete fixture operation
// (transfer) exercising the pipeline end to end. The full production
// operation set is out of scope; this package only needs to demonstrate the
// shape an extractor takes.
package optax

import (
	"fmt"

	"github.com/arcledger/authcore/authority"
	"github.com/arcledger/authcore/wire"
)

// Operation is a single tagged-union variant inside a transaction's
// operation sequence. Tag identifies the variant for canonical encoding;
// Encode appends the variant's body (not the tag itself).
type Operation interface {
	Tag() uint64
	Encode(e *wire.Encoder)
}

// RequiredAuthority is what one operation demands of the evaluator: which
// accounts must have their active authority satisfied, which must have
// their owner authority satisfied, and any loose (non-account) authorities
// that must independently check out.
type RequiredAuthority struct {
	Active map[authority.AccountID]bool
	Owner  map[authority.AccountID]bool
	Other  []authority.Authority
}

func newRequiredAuthority() RequiredAuthority {
	return RequiredAuthority{
		Active: map[authority.AccountID]bool{},
		Owner:  map[authority.AccountID]bool{},
	}
}

// Extractor reports the authority an operation demands. A sample
// implementation, Extract, covers the fixture operation set below; callers
// embedding their own production operation set supply their own Extractor.
type Extractor func(op Operation) (RequiredAuthority, error)

// TransferTag is the wire tag of a Transfer operation.
const TransferTag = 0

// Transfer moves a fixed-point amount from one account to another. It is the
// one concrete fixture operation this package ships: just enough to
// demonstrate an extractor's shape and to drive the evaluator end to end in
// tests.
type Transfer struct {
	From   authority.AccountID
	To     authority.AccountID
	Amount uint64
	Memo   []byte
}

// Tag implements Operation.
func (t Transfer) Tag() uint64 { return TransferTag }

// Encode implements Operation.
func (t Transfer) Encode(e *wire.Encoder) {
	e.U64(uint64(t.From))
	e.U64(uint64(t.To))
	e.U64(t.Amount)
	e.BytesField(t.Memo)
}

// Extract is the sample required-authority extractor for the fixture
// operation set: a Transfer requires its From account's active authority.
func Extract(op Operation) (RequiredAuthority, error) {
	req := newRequiredAuthority()
	switch o := op.(type) {
	case Transfer:
		req.Active[o.From] = true
	default:
		return req, fmt.Errorf("optax: no extractor registered for operation tag %d", op.Tag())
	}
	return req, nil
}

// Decoder decodes one operation body given its already-consumed wire tag —
// the decode-side counterpart of Extractor. A sample implementation,
// DecodeOperation, covers the fixture operation set below; callers embedding
// their own production operation set supply their own Decoder.
type Decoder func(tag uint64, r *wire.Reader) (Operation, error)

// DecodeOperation is the sample operation decoder for the fixture operation
// set: it recognizes TransferTag and rejects anything else.
func DecodeOperation(tag uint64, r *wire.Reader) (Operation, error) {
	switch tag {
	case TransferTag:
		return decodeTransfer(r)
	default:
		return nil, fmt.Errorf("optax: no decoder registered for operation tag %d", tag)
	}
}

func decodeTransfer(r *wire.Reader) (Operation, error) {
	from, err := r.U64()
	if err != nil {
		return nil, err
	}
	to, err := r.U64()
	if err != nil {
		return nil, err
	}
	amount, err := r.U64()
	if err != nil {
		return nil, err
	}
	memo, err := r.BytesField()
	if err != nil {
		return nil, err
	}
	return Transfer{
		From:   authority.AccountID(from),
		To:     authority.AccountID(to),
		Amount: amount,
		Memo:   memo,
	}, nil
}
