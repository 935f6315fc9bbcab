// Package evaluator implements the bounded recursive authority-satisfaction
// predicate: given a weighted authority record and a sign-state, does the
// accumulated weight of satisfied entries reach the threshold?
//
// Grounded directly on spec §4.4.
package evaluator

import (
	"github.com/arcledger/authcore/authority"
	"github.com/arcledger/authcore/chainstate"
	"github.com/arcledger/authcore/signstate"
)

// Evaluator checks authority records against one sign-state, consulting
// Chain to recurse into sub-account authorities.
type Evaluator struct {
	State *signstate.State
	Chain chainstate.State

	// MaxRecursion bounds how deep CheckAuthority recurses into
	// account_auths before treating a branch as unsatisfied.
	MaxRecursion int

	// AllowNonImmediateOwner, when set, lets a failed active-authority
	// recursion into an account fall back to that account's owner
	// authority at the same depth.
	AllowNonImmediateOwner bool
}

// CheckAuthority returns true iff the weighted sum of satisfied entries in
// auth reaches auth.WeightThreshold, evaluating key_auths, then
// address_auths, then account_auths, short-circuiting as soon as the
// threshold is reached.
func (e *Evaluator) CheckAuthority(auth *authority.Authority, depth int) bool {
	var total uint32
	if auth.WeightThreshold == 0 {
		// A zero threshold is vacuously satisfied without consuming any
		// signature.
		return true
	}
	if auth.IsImpossible() {
		// Not enough weight exists across every entry to ever reach
		// threshold; skip the walk entirely.
		return false
	}

	for _, k := range auth.SortedKeys() {
		if e.State.SignedByKey(k) {
			total += uint32(auth.KeyAuths[k])
			if total >= auth.WeightThreshold {
				return true
			}
		}
	}

	for _, a := range auth.SortedAddresses() {
		if e.State.SignedByAddress(a) {
			total += uint32(auth.AddressAuths[a])
			if total >= auth.WeightThreshold {
				return true
			}
		}
	}

	for _, acct := range auth.SortedAccounts() {
		weight := uint32(auth.AccountAuths[acct])
		if e.accountSatisfied(acct, depth) {
			total += weight
			if total >= auth.WeightThreshold {
				return true
			}
		}
	}

	return total >= auth.WeightThreshold
}

// accountSatisfied resolves one account_auths entry per spec §4.4: already
// approved accumulates unconditionally; at the recursion bound it
// contributes zero; otherwise recurse into the account's active authority
// (falling back to owner when AllowNonImmediateOwner is set), memoizing
// success into ApprovedBy.
func (e *Evaluator) accountSatisfied(account authority.AccountID, depth int) bool {
	if e.State.ApprovedBy[account] {
		return true
	}
	if depth == e.MaxRecursion {
		return false
	}

	satisfied := false
	if active, err := e.Chain.GetActive(account); err == nil {
		satisfied = e.CheckAuthority(active, depth+1)
	}
	if !satisfied && e.AllowNonImmediateOwner {
		if owner, err := e.Chain.GetOwner(account); err == nil {
			satisfied = e.CheckAuthority(owner, depth+1)
		}
	}
	if satisfied {
		e.State.ApprovedBy[account] = true
	}
	return satisfied
}

// CheckAuthorityAccount is a convenience wrapper equivalent to the
// account_auths branch above at depth 0: consults ApprovedBy first, then
// GetActive, optionally falling back to GetOwner.
func (e *Evaluator) CheckAuthorityAccount(account authority.AccountID) bool {
	return e.accountSatisfied(account, 0)
}
