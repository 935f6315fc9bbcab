package verify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arcledger/authcore/authority"
	"github.com/arcledger/authcore/chainstate"
	"github.com/arcledger/authcore/optax"
	"github.com/arcledger/authcore/signature"
)

const (
	committeeAccount = authority.AccountID(0)
	tempAccount      = authority.AccountID(1)
)

func baseOptions(chain chainstate.State, ops []optax.Operation, keys []authority.PublicKey) Options {
	return Options{
		Chain:                  chain,
		Extract:                optax.Extract,
		Operations:             ops,
		RecoveredSignatureKeys: keys,
		MaxRecursion:           2,
		CommitteeAccount:       committeeAccount,
		TempAccount:            tempAccount,
		Strict:                 true,
	}
}

func genKey(t *testing.T) (*signature.PrivateKey, authority.PublicKey) {
	t.Helper()
	key, err := signature.GeneratePrivateKey()
	require.NoError(t, err)
	return key, key.PublicKey()
}

func requireCode(t *testing.T, err error, code Code) {
	t.Helper()
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr), "expected an *AuthError, got %v", err)
	require.Equal(t, code, authErr.Code)
}

// ownerExtractor builds a custom optax.Extractor that demands acct's owner
// authority instead of any active authority — used to drive the
// Owner-required branch of VerifyAuthority, which optax.Extract never
// populates for the fixture Transfer operation.
func ownerExtractor(acct authority.AccountID) optax.Extractor {
	return func(op optax.Operation) (optax.RequiredAuthority, error) {
		return optax.RequiredAuthority{
			Active: map[authority.AccountID]bool{},
			Owner:  map[authority.AccountID]bool{acct: true},
		}, nil
	}
}

// otherExtractor builds a custom optax.Extractor that demands a loose,
// non-account authority — used to drive the Other-required branch.
func otherExtractor(auth authority.Authority) optax.Extractor {
	return func(op optax.Operation) (optax.RequiredAuthority, error) {
		return optax.RequiredAuthority{
			Active: map[authority.AccountID]bool{},
			Owner:  map[authority.AccountID]bool{},
			Other:  []authority.Authority{auth},
		}, nil
	}
}

// S1 — single-key threshold-met.
func TestS1SingleKeyThreshold(t *testing.T) {
	_, k1 := genKey(t)
	auth := authority.NewAuthority(1)
	auth.KeyAuths[k1] = 1

	chain := chainstate.NewSnapshot()
	chain.SetActive(5, *auth)
	chain.SetOwner(5, *authority.NewAuthority(0))

	ops := []optax.Operation{optax.Transfer{From: 5, To: 6, Amount: 1}}
	opts := baseOptions(chain, ops, []authority.PublicKey{k1})

	state, err := VerifyAuthority(opts)
	require.NoError(t, err)
	require.False(t, state.RemoveUnusedSignatures(), "expected remove_unused_signatures to be a no-op")
}

// S2 — irrelevant signature.
func TestS2IrrelevantSignature(t *testing.T) {
	_, k1 := genKey(t)
	_, k2 := genKey(t)
	auth := authority.NewAuthority(1)
	auth.KeyAuths[k1] = 1

	chain := chainstate.NewSnapshot()
	chain.SetActive(5, *auth)
	chain.SetOwner(5, *authority.NewAuthority(0))

	ops := []optax.Operation{optax.Transfer{From: 5, To: 6, Amount: 1}}
	opts := baseOptions(chain, ops, []authority.PublicKey{k1, k2})

	_, err := VerifyAuthority(opts)
	requireCode(t, err, CodeIrrelevantSignature)
}

// S3 — threshold via two keys, with minimizer-relevant removal behavior
// checked directly against VerifyAuthority (the minimize package covers the
// greedy search itself).
func TestS3ThresholdViaTwoKeys(t *testing.T) {
	_, k1 := genKey(t)
	_, k2 := genKey(t)
	auth := authority.NewAuthority(3)
	auth.KeyAuths[k1] = 2
	auth.KeyAuths[k2] = 2

	chain := chainstate.NewSnapshot()
	chain.SetActive(5, *auth)
	chain.SetOwner(5, *authority.NewAuthority(1)) // impossible: threshold 1, no entries

	ops := []optax.Operation{optax.Transfer{From: 5, To: 6, Amount: 1}}

	_, err := VerifyAuthority(baseOptions(chain, ops, []authority.PublicKey{k1, k2}))
	require.NoError(t, err)

	_, err = VerifyAuthority(baseOptions(chain, ops, []authority.PublicKey{k1}))
	require.Error(t, err, "expected failure with only k1 (weight 2 < 3)")
}

// S4 — account_auths recursion.
func TestS4AccountAuthsRecursion(t *testing.T) {
	_, k1 := genKey(t)
	a2 := authority.NewAuthority(1)
	a2.KeyAuths[k1] = 1

	a1 := authority.NewAuthority(1)
	a1.AccountAuths[2] = 1

	chain := chainstate.NewSnapshot()
	chain.SetActive(3, *a1)
	chain.SetOwner(3, *authority.NewAuthority(1)) // impossible: threshold 1, no entries
	chain.SetActive(2, *a2)
	chain.SetOwner(2, *authority.NewAuthority(0))

	ops := []optax.Operation{optax.Transfer{From: 3, To: 6, Amount: 1}}

	opts := baseOptions(chain, ops, []authority.PublicKey{k1})
	opts.MaxRecursion = 2
	_, err := VerifyAuthority(opts)
	require.NoError(t, err)

	opts.MaxRecursion = 0
	_, err = VerifyAuthority(opts)
	requireCode(t, err, CodeMissingActiveAuth)
}

// S5 — owner satisfies active.
func TestS5OwnerSatisfiesActive(t *testing.T) {
	_, k1 := genKey(t)
	_, k2 := genKey(t)

	active := authority.NewAuthority(1)
	active.KeyAuths[k1] = 1
	owner := authority.NewAuthority(1)
	owner.KeyAuths[k2] = 1

	chain := chainstate.NewSnapshot()
	chain.SetActive(5, *active)
	chain.SetOwner(5, *owner)

	ops := []optax.Operation{optax.Transfer{From: 5, To: 6, Amount: 1}}
	opts := baseOptions(chain, ops, []authority.PublicKey{k2})

	state, err := VerifyAuthority(opts)
	require.NoError(t, err, "expected owner to cover active")
	require.False(t, state.RemoveUnusedSignatures(), "owner signature should be consumed, not left unused")
}

// S6 — custom-authority shortcut.
func TestS6CustomAuthorityShortcut(t *testing.T) {
	_, k3 := genKey(t)
	predicate := authority.NewAuthority(1)
	predicate.KeyAuths[k3] = 1

	// A1's real active and owner authorities are impossible to satisfy so
	// success must come from the custom-authority shortcut, not from a
	// coincidental active or owner match.
	chain := chainstate.NewSnapshot()
	chain.SetActive(3, *authority.NewAuthority(1))
	chain.SetOwner(3, *authority.NewAuthority(1))
	chain.AddCustom(3, optax.TransferTag, *predicate)

	ops := []optax.Operation{optax.Transfer{From: 3, To: 6, Amount: 1}}
	opts := baseOptions(chain, ops, []authority.PublicKey{k3})

	state, err := VerifyAuthority(opts)
	require.NoError(t, err, "expected custom authority to satisfy required active")
	require.False(t, state.RemoveUnusedSignatures(), "custom-authority signature should be consumed")
}

// S7 — duplicate signatures. txn.GetSignatureKeys already rejects this on
// the normal signing path (txn/transaction_test.go), but VerifyAuthority
// re-checks its own RecoveredSignatureKeys input directly, since that field
// is caller-supplied and §7 lists DuplicateSignature as a core error kind,
// not just a txn-package concern.
func TestS7DuplicateSignatureIsRejected(t *testing.T) {
	_, k1 := genKey(t)
	auth := authority.NewAuthority(2)
	auth.KeyAuths[k1] = 1

	chain := chainstate.NewSnapshot()
	chain.SetActive(5, *auth)
	chain.SetOwner(5, *authority.NewAuthority(0))

	ops := []optax.Operation{optax.Transfer{From: 5, To: 6, Amount: 1}}
	opts := baseOptions(chain, ops, []authority.PublicKey{k1, k1})
	_, err := VerifyAuthority(opts)
	requireCode(t, err, CodeDuplicateSignature)
}

func TestEmptyTransactionFails(t *testing.T) {
	chain := chainstate.NewSnapshot()
	opts := baseOptions(chain, nil, nil)
	_, err := VerifyAuthority(opts)
	requireCode(t, err, CodeEmptyTransaction)
}

func TestCommitteeAccountRequiresOptIn(t *testing.T) {
	_, k1 := genKey(t)
	auth := authority.NewAuthority(1)
	auth.KeyAuths[k1] = 1

	chain := chainstate.NewSnapshot()
	chain.SetActive(committeeAccount, *auth)
	chain.SetOwner(committeeAccount, *authority.NewAuthority(0))

	ops := []optax.Operation{optax.Transfer{From: committeeAccount, To: 6, Amount: 1}}
	opts := baseOptions(chain, ops, []authority.PublicKey{k1})
	opts.AllowCommittee = false

	_, err := VerifyAuthority(opts)
	requireCode(t, err, CodeInvalidCommitteeApproval)

	opts.AllowCommittee = true
	_, err = VerifyAuthority(opts)
	require.NoError(t, err, "expected success once committee is allowed")
}

func TestTempAccountIsPreApproved(t *testing.T) {
	tempAuthority := authority.NewAuthority(1)
	tempAuthority.AccountAuths[tempAccount] = 1

	chain := chainstate.NewSnapshot()
	chain.SetActive(5, *tempAuthority)
	chain.SetOwner(5, *authority.NewAuthority(0))

	ops := []optax.Operation{optax.Transfer{From: 5, To: 6, Amount: 1}}
	opts := baseOptions(chain, ops, nil)

	_, err := VerifyAuthority(opts)
	require.NoError(t, err, "temp account should be pre-approved without any signature")
}

// Drives the Owner-required branch (spec §4.5 step 7) via a custom
// extractor, since optax.Extract's fixture Transfer only ever demands
// active authority.
func TestMissingOwnerAuth(t *testing.T) {
	chain := chainstate.NewSnapshot()
	chain.SetActive(5, *authority.NewAuthority(0))
	chain.SetOwner(5, *authority.NewAuthority(1)) // impossible: threshold 1, no entries

	ops := []optax.Operation{optax.Transfer{From: 5, To: 6, Amount: 1}}
	opts := baseOptions(chain, ops, nil)
	opts.Extract = ownerExtractor(5)

	_, err := VerifyAuthority(opts)
	requireCode(t, err, CodeMissingOwnerAuth)
}

func TestOwnerAuthSatisfiedViaPriorApproval(t *testing.T) {
	chain := chainstate.NewSnapshot()
	chain.SetActive(5, *authority.NewAuthority(0))
	chain.SetOwner(5, *authority.NewAuthority(1)) // impossible on its own

	ops := []optax.Operation{optax.Transfer{From: 5, To: 6, Amount: 1}}
	opts := baseOptions(chain, ops, nil)
	opts.Extract = ownerExtractor(5)
	opts.PriorOwnerApprovals = []authority.AccountID{5}

	_, err := VerifyAuthority(opts)
	require.NoError(t, err, "a prior owner approval should satisfy the owner requirement without a fresh signature")
}

// Drives the Other-required branch (spec §4.5 step 6) via a custom
// extractor supplying a loose authority unrelated to any account.
func TestMissingOtherAuth(t *testing.T) {
	unsatisfiable := *authority.NewAuthority(1) // impossible: threshold 1, no entries

	chain := chainstate.NewSnapshot()
	ops := []optax.Operation{optax.Transfer{From: 5, To: 6, Amount: 1}}
	opts := baseOptions(chain, ops, nil)
	opts.Extract = otherExtractor(unsatisfiable)

	_, err := VerifyAuthority(opts)
	requireCode(t, err, CodeMissingOtherAuth)
}

func TestOtherAuthSatisfiedByProvidedKey(t *testing.T) {
	_, k1 := genKey(t)
	loose := authority.NewAuthority(1)
	loose.KeyAuths[k1] = 1

	chain := chainstate.NewSnapshot()
	ops := []optax.Operation{optax.Transfer{From: 5, To: 6, Amount: 1}}
	opts := baseOptions(chain, ops, []authority.PublicKey{k1})
	opts.Extract = otherExtractor(*loose)

	_, err := VerifyAuthority(opts)
	require.NoError(t, err)
}
