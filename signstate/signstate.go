// Package signstate implements the mutable working memory of one
// verification or minimization pass: which keys are available, which
// signatures were provided (and whether each has been used yet), which
// accounts are already approved, and a lazily built address index.
//
// Grounded directly on spec §4.3; address resolution delegates to the
// address package for the five-alias derivation.
package signstate

import (
	"github.com/arcledger/authcore/address"
	"github.com/arcledger/authcore/authority"
)

// State is the mutable sign-state of one evaluation pass.
type State struct {
	// AvailableKeys is the pool from which additional signatures could be
	// produced — empty during pure verification, populated during
	// minimization.
	AvailableKeys map[authority.PublicKey]bool

	// ProvidedSignatures maps a recovered signer key to whether the
	// evaluator has consumed it yet.
	ProvidedSignatures map[authority.PublicKey]bool

	// ApprovedBy is the set of accounts already deemed satisfied, seeded
	// with caller-provided prior approvals and the temp-account sentinel.
	ApprovedBy map[authority.AccountID]bool

	availableAddrSigs map[authority.Address]authority.PublicKey
	providedAddrSigs  map[authority.Address]authority.PublicKey
	addrIndexBuilt    bool
}

// New returns a sign-state seeded with recoveredKeys (each initially
// unused), tempAccount pre-approved, and priorApprovals additionally
// pre-approved.
func New(recoveredKeys []authority.PublicKey, tempAccount authority.AccountID, priorApprovals ...authority.AccountID) *State {
	s := &State{
		AvailableKeys:      map[authority.PublicKey]bool{},
		ProvidedSignatures: make(map[authority.PublicKey]bool, len(recoveredKeys)),
		ApprovedBy:         map[authority.AccountID]bool{tempAccount: true},
	}
	for _, k := range recoveredKeys {
		s.ProvidedSignatures[k] = false
	}
	for _, acct := range priorApprovals {
		s.ApprovedBy[acct] = true
	}
	return s
}

// SignedByKey reports whether key authorizes this pass. If key is already a
// provided signature, it is marked used. Otherwise, if key is in
// AvailableKeys, it is promoted into ProvidedSignatures as used — this is
// how the minimizer grows a candidate signing set.
func (s *State) SignedByKey(key authority.PublicKey) bool {
	if _, ok := s.ProvidedSignatures[key]; ok {
		s.ProvidedSignatures[key] = true
		return true
	}
	if s.AvailableKeys[key] {
		s.ProvidedSignatures[key] = true
		return true
	}
	return false
}

// SignedByAddress resolves addr to the public key that produced it (building
// the address index lazily on first call across both available and
// provided keys), then delegates to SignedByKey.
func (s *State) SignedByAddress(addr authority.Address) bool {
	s.buildAddressIndex()
	if key, ok := s.providedAddrSigs[addr]; ok {
		return s.SignedByKey(key)
	}
	if key, ok := s.availableAddrSigs[addr]; ok {
		return s.SignedByKey(key)
	}
	return false
}

func (s *State) buildAddressIndex() {
	if s.addrIndexBuilt {
		return
	}
	s.providedAddrSigs = map[authority.Address]authority.PublicKey{}
	s.availableAddrSigs = map[authority.Address]authority.PublicKey{}
	for key := range s.ProvidedSignatures {
		indexKeyAddresses(s.providedAddrSigs, key)
	}
	for key := range s.AvailableKeys {
		indexKeyAddresses(s.availableAddrSigs, key)
	}
	s.addrIndexBuilt = true
}

func indexKeyAddresses(into map[authority.Address]authority.PublicKey, key authority.PublicKey) {
	forms, err := address.Derive(key)
	if err != nil {
		// A key that fails to parse as a curve point cannot have signed
		// anything; skip it rather than fail the whole index build.
		return
	}
	for _, f := range forms {
		into[f] = key
	}
}

// RemoveUnusedSignatures drops every entry of ProvidedSignatures still
// flagged unused, and reports whether it removed any.
func (s *State) RemoveUnusedSignatures() bool {
	removed := false
	for key, used := range s.ProvidedSignatures {
		if !used {
			delete(s.ProvidedSignatures, key)
			removed = true
		}
	}
	return removed
}
