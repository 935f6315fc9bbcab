package verify

import (
	"errors"
	"fmt"

	"github.com/arcledger/authcore/authority"
	"github.com/arcledger/authcore/chainstate"
	"github.com/arcledger/authcore/evaluator"
	"github.com/arcledger/authcore/optax"
	"github.com/arcledger/authcore/signstate"
)

// Options configures one VerifyAuthority call. Grounded directly on spec
// §4.5's parameter list.
type Options struct {
	Chain      chainstate.State
	Extract    optax.Extractor
	Operations []optax.Operation

	// RecoveredSignatureKeys are the public keys already recovered from the
	// transaction's signatures.
	RecoveredSignatureKeys []authority.PublicKey

	// AvailableKeys additionally seeds sign-state's candidate pool —
	// non-empty only during minimization. It is consulted only when Strict
	// is false; a strict call checks RecoveredSignatureKeys alone.
	AvailableKeys []authority.PublicKey

	AllowNonImmediateOwner   bool
	IgnoreCustomRequiredAuths bool
	MaxRecursion             int
	AllowCommittee           bool
	CommitteeAccount         authority.AccountID
	TempAccount              authority.AccountID

	PriorActiveApprovals []authority.AccountID
	PriorOwnerApprovals  []authority.AccountID

	// Strict, when false, suppresses the three "missing auth" failure kinds,
	// the irrelevant-signature check, the empty-transaction check, and
	// extractor failures (the operation is skipped) — the non-strict mode
	// the minimizer drives GetRequiredSignatures with.
	Strict bool
}

// VerifyAuthority performs the verification pipeline of spec §4.5. On
// success it returns the sign-state reached, so callers (notably the
// minimizer) can inspect which keys were actually consumed. Every returned
// *AuthError carries the operations, the recovered signature keys and the
// rejected custom authorities in its Context.
func VerifyAuthority(opts Options) (_ *signstate.State, err error) {
	rejected := chainstate.RejectedMap{}
	defer func() {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			authErr.Context["operations"] = opts.Operations
			authErr.Context["signatures"] = opts.RecoveredSignatureKeys
			authErr.Context["rejected_custom_auths"] = rejected
		}
	}()

	if opts.Strict && len(opts.Operations) == 0 {
		return nil, errEmptyTransaction()
	}
	if dup, ok := firstDuplicateKey(opts.RecoveredSignatureKeys); ok {
		return nil, errDuplicateSignature(fmt.Errorf("key %s recovered more than once", dup))
	}

	priorApprovals := append(append([]authority.AccountID{}, opts.PriorActiveApprovals...), opts.PriorOwnerApprovals...)
	state := signstate.New(opts.RecoveredSignatureKeys, opts.TempAccount, priorApprovals...)
	if !opts.Strict {
		for _, k := range opts.AvailableKeys {
			state.AvailableKeys[k] = true
		}
	}

	ev := &evaluator.Evaluator{
		State:                  state,
		Chain:                  opts.Chain,
		MaxRecursion:           opts.MaxRecursion,
		AllowNonImmediateOwner: opts.AllowNonImmediateOwner,
	}

	requiredOwner := map[authority.AccountID]bool{}
	requiredActive := map[authority.AccountID]bool{}
	var other []authority.Authority

	for _, op := range opts.Operations {
		req, err := opts.Extract(op)
		if err != nil {
			if opts.Strict {
				return nil, errOperationInvalid(err)
			}
			continue
		}

		opActive := map[authority.AccountID]bool{}
		for acct := range req.Active {
			opActive[acct] = true
		}
		for acct := range req.Owner {
			requiredOwner[acct] = true
		}
		other = append(other, req.Other...)

		if !opts.IgnoreCustomRequiredAuths {
			for acct := range opActive {
				customs, err := opts.Chain.GetCustom(acct, op, rejected)
				if err != nil {
					continue
				}
				for _, custom := range customs {
					c := custom
					if ev.CheckAuthority(&c, 0) {
						delete(opActive, acct)
						break
					}
					rejected[acct] = append(rejected[acct], chainstate.RejectedCustomAuth{Account: acct, Auth: c})
				}
			}
		}

		for acct := range opActive {
			requiredActive[acct] = true
		}
	}

	if !opts.AllowCommittee && requiredActive[opts.CommitteeAccount] {
		return nil, errInvalidCommitteeApproval(opts.CommitteeAccount)
	}

	for _, auth := range other {
		a := auth
		if !ev.CheckAuthority(&a, 0) {
			if opts.Strict {
				return nil, errMissingOtherAuth(a)
			}
		}
	}

	for acct := range requiredOwner {
		if isPriorApproved(opts.PriorOwnerApprovals, acct) {
			continue
		}
		owner, err := opts.Chain.GetOwner(acct)
		satisfied := err == nil && ev.CheckAuthority(owner, 0)
		if !satisfied && opts.Strict {
			return nil, errMissingOwnerAuth(acct)
		}
	}

	for acct := range requiredActive {
		// Owner always satisfies active (spec §4.5 step 8), independent of
		// AllowNonImmediateOwner, which governs account_auths recursion
		// fallback inside the evaluator, not this top-level rule.
		satisfied := ev.CheckAuthorityAccount(acct)
		if !satisfied {
			if owner, err := opts.Chain.GetOwner(acct); err == nil {
				satisfied = ev.CheckAuthority(owner, 0)
			}
		}
		if !satisfied && opts.Strict {
			return nil, errMissingActiveAuth(acct)
		}
	}

	if state.RemoveUnusedSignatures() {
		if opts.Strict {
			return nil, errIrrelevantSignature()
		}
	}

	return state, nil
}

// firstDuplicateKey reports the first key that appears more than once in
// keys, in input order — §7's DuplicateSignature, defensively re-checked
// here even though txn.GetSignatureKeys already rejects this for the common
// signing path, since RecoveredSignatureKeys is caller-supplied and nothing
// else enforces this invariant at the verification boundary.
func firstDuplicateKey(keys []authority.PublicKey) (authority.PublicKey, bool) {
	seen := make(map[authority.PublicKey]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			return k, true
		}
		seen[k] = true
	}
	return authority.PublicKey{}, false
}

func isPriorApproved(prior []authority.AccountID, acct authority.AccountID) bool {
	for _, p := range prior {
		if p == acct {
			return true
		}
	}
	return false
}
