// Package chainstate defines the authority-lookup boundary: the interface
// an evaluator consults to resolve an account's active/owner authority and
// an account's custom authorities for a given operation, plus an in-memory
// snapshot implementation for tests and the CLI.
//
// Grounded on the teacher's internal/services/storage package split (a
// narrow lookup interface with one in-memory and one durable
// implementation) — this core only ever needs the in-memory side, since
// persistent storage is out of scope.
package chainstate

import (
	"fmt"

	"github.com/arcledger/authcore/authority"
	"github.com/arcledger/authcore/optax"
)

// RejectedCustomAuth records a custom authority that failed to cover a
// required-active account, for error reporting.
type RejectedCustomAuth struct {
	Account authority.AccountID
	Auth    authority.Authority
}

// RejectedMap accumulates rejected custom authorities per account during one
// verification pass.
type RejectedMap map[authority.AccountID][]RejectedCustomAuth

// State is the authority-lookup boundary consulted by the evaluator and
// verification orchestrator.
type State interface {
	// GetActive returns account's active authority.
	GetActive(account authority.AccountID) (*authority.Authority, error)
	// GetOwner returns account's owner authority.
	GetOwner(account authority.AccountID) (*authority.Authority, error)
	// GetCustom returns the operation-scoped predicate authorities attached
	// to account for op. Authorities that are checked but fail to satisfy
	// are recorded into rejected for error reporting.
	GetCustom(account authority.AccountID, op optax.Operation, rejected RejectedMap) ([]authority.Authority, error)
}

// ErrAccountNotFound is returned by Snapshot lookups for an unknown account.
type ErrAccountNotFound authority.AccountID

func (e ErrAccountNotFound) Error() string {
	return fmt.Sprintf("chainstate: account %d not found", authority.AccountID(e))
}

// accountRecord holds one account's active and owner authorities plus any
// custom authorities keyed by operation tag.
type accountRecord struct {
	active authority.Authority
	owner  authority.Authority
	custom map[uint64][]authority.Authority
}

// Snapshot is a simple in-memory State implementation: a fixed point-in-time
// view of account authority records, suitable for tests and the CLI's demo
// fixtures. It holds no lock — callers must not mutate it concurrently with
// a verification call in progress.
type Snapshot struct {
	accounts map[authority.AccountID]*accountRecord
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{accounts: map[authority.AccountID]*accountRecord{}}
}

func (s *Snapshot) record(id authority.AccountID) *accountRecord {
	rec, ok := s.accounts[id]
	if !ok {
		rec = &accountRecord{custom: map[uint64][]authority.Authority{}}
		s.accounts[id] = rec
	}
	return rec
}

// SetActive sets account's active authority.
func (s *Snapshot) SetActive(account authority.AccountID, auth authority.Authority) {
	s.record(account).active = auth
}

// SetOwner sets account's owner authority.
func (s *Snapshot) SetOwner(account authority.AccountID, auth authority.Authority) {
	s.record(account).owner = auth
}

// AddCustom attaches a custom authority to account, scoped to the operation
// tag opTag.
func (s *Snapshot) AddCustom(account authority.AccountID, opTag uint64, auth authority.Authority) {
	rec := s.record(account)
	rec.custom[opTag] = append(rec.custom[opTag], auth)
}

// GetActive implements State.
func (s *Snapshot) GetActive(account authority.AccountID) (*authority.Authority, error) {
	rec, ok := s.accounts[account]
	if !ok {
		return nil, ErrAccountNotFound(account)
	}
	auth := rec.active
	return &auth, nil
}

// GetOwner implements State.
func (s *Snapshot) GetOwner(account authority.AccountID) (*authority.Authority, error) {
	rec, ok := s.accounts[account]
	if !ok {
		return nil, ErrAccountNotFound(account)
	}
	auth := rec.owner
	return &auth, nil
}

// GetCustom implements State. Unknown accounts simply have no custom
// authorities; this is not an error, since most accounts never define one.
func (s *Snapshot) GetCustom(account authority.AccountID, op optax.Operation, rejected RejectedMap) ([]authority.Authority, error) {
	rec, ok := s.accounts[account]
	if !ok {
		return nil, nil
	}
	return rec.custom[op.Tag()], nil
}
