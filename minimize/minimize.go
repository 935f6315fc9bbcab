// Package minimize implements construction of a minimal sufficient signing
// set: given a pool of available keys, find a subset still sufficient to
// authorize a transaction from which no single key can be dropped.
//
// Grounded directly on spec §4.6.
package minimize

import (
	"sort"

	"github.com/arcledger/authcore/authority"
	"github.com/arcledger/authcore/verify"
)

// GetRequiredSignatures runs the evaluator non-strictly against opts (which
// must have AvailableKeys populated and RecoveredSignatureKeys set to the
// signatures already on the transaction, if any) and returns the keys the
// evaluator actually consumed from AvailableKeys — the initial candidate set
// for MinimizeRequiredSignatures.
func GetRequiredSignatures(opts verify.Options) ([]authority.PublicKey, error) {
	nonStrict := opts
	nonStrict.Strict = false

	state, err := verify.VerifyAuthority(nonStrict)
	if err != nil {
		return nil, err
	}

	already := make(map[authority.PublicKey]bool, len(opts.RecoveredSignatureKeys))
	for _, k := range opts.RecoveredSignatureKeys {
		already[k] = true
	}

	state.RemoveUnusedSignatures()

	var candidates []authority.PublicKey
	for k, used := range state.ProvidedSignatures {
		if used && !already[k] {
			candidates = append(candidates, k)
		}
	}
	sortKeys(candidates)
	return candidates, nil
}

// MinimizeRequiredSignatures performs greedy elimination over candidates:
// iterate in canonical key order, tentatively drop each key, and keep the
// drop if strict VerifyAuthority still succeeds against the reduced set
// (treating the three "missing auth" kinds as "this removal was too much",
// and propagating every other error). The result is sufficient and locally
// minimal, though not guaranteed globally minimal.
func MinimizeRequiredSignatures(opts verify.Options, candidates []authority.PublicKey) ([]authority.PublicKey, error) {
	remaining := append([]authority.PublicKey{}, candidates...)
	sortKeys(remaining)

	for i := 0; i < len(remaining); {
		trial := append(append([]authority.PublicKey{}, remaining[:i]...), remaining[i+1:]...)

		trialOpts := opts
		trialOpts.RecoveredSignatureKeys = append(append([]authority.PublicKey{}, opts.RecoveredSignatureKeys...), trial...)
		trialOpts.Strict = true

		_, err := verify.VerifyAuthority(trialOpts)
		if err == nil {
			remaining = trial
			continue
		}

		if verify.IsMissingAuthError(err) {
			// remaining[i] was necessary; keep it and move on.
			i++
			continue
		}

		// Any other failure (DuplicateSignature, IrrelevantSignature,
		// OperationInvalid) propagates rather than being swallowed.
		return nil, err
	}

	return remaining, nil
}

func sortKeys(keys []authority.PublicKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}
