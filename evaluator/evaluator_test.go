package evaluator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arcledger/authcore/authority"
	"github.com/arcledger/authcore/chainstate"
	"github.com/arcledger/authcore/signature"
	"github.com/arcledger/authcore/signstate"
)

func newSignedState(t *testing.T, keys ...authority.PublicKey) *signstate.State {
	t.Helper()
	return signstate.New(keys, authority.AccountID(1))
}

func TestSingleKeyThresholdSatisfied(t *testing.T) {
	key, err := signature.GeneratePrivateKey()
	require.NoError(t, err)
	pub := key.PublicKey()

	auth := authority.NewAuthority(1)
	auth.KeyAuths[pub] = 1

	state := newSignedState(t, pub)
	ev := &Evaluator{State: state, Chain: chainstate.NewSnapshot(), MaxRecursion: 2}

	require.True(t, ev.CheckAuthority(auth, 0))
	require.False(t, state.RemoveUnusedSignatures(), "the one signature should have been consumed")
}

func TestIrrelevantSignatureLeftUnused(t *testing.T) {
	key1, err := signature.GeneratePrivateKey()
	require.NoError(t, err)
	key2, err := signature.GeneratePrivateKey()
	require.NoError(t, err)
	pub1, pub2 := key1.PublicKey(), key2.PublicKey()

	auth := authority.NewAuthority(1)
	auth.KeyAuths[pub1] = 1

	state := newSignedState(t, pub1, pub2)
	ev := &Evaluator{State: state, Chain: chainstate.NewSnapshot(), MaxRecursion: 2}

	require.True(t, ev.CheckAuthority(auth, 0))
	require.True(t, state.RemoveUnusedSignatures(), "pub2 was never consumed and should be reported as unused")
}

func TestTwoKeyThreshold(t *testing.T) {
	key1, err := signature.GeneratePrivateKey()
	require.NoError(t, err)
	key2, err := signature.GeneratePrivateKey()
	require.NoError(t, err)
	pub1, pub2 := key1.PublicKey(), key2.PublicKey()

	auth := authority.NewAuthority(3)
	auth.KeyAuths[pub1] = 1
	auth.KeyAuths[pub2] = 2

	state := newSignedState(t, pub1)
	ev := &Evaluator{State: state, Chain: chainstate.NewSnapshot(), MaxRecursion: 2}
	require.False(t, ev.CheckAuthority(auth, 0), "threshold 3 should not be satisfied by weight 1 alone")

	state2 := newSignedState(t, pub1, pub2)
	ev2 := &Evaluator{State: state2, Chain: chainstate.NewSnapshot(), MaxRecursion: 2}
	require.True(t, ev2.CheckAuthority(auth, 0), "threshold 3 should be satisfied by weight 1 + 2")
}

func TestAccountRecursionWithinBound(t *testing.T) {
	key, err := signature.GeneratePrivateKey()
	require.NoError(t, err)
	pub := key.PublicKey()

	chain := chainstate.NewSnapshot()
	sub := authority.NewAuthority(1)
	sub.KeyAuths[pub] = 1
	chain.SetActive(authority.AccountID(2), *sub)

	top := authority.NewAuthority(1)
	top.AccountAuths[2] = 1

	state := newSignedState(t, pub)
	ev := &Evaluator{State: state, Chain: chain, MaxRecursion: 2}

	require.True(t, ev.CheckAuthority(top, 0))
	require.True(t, state.ApprovedBy[2], "account 2 should be memoized into ApprovedBy after a successful recursion")
}

func TestAccountRecursionBeyondMaxDepthContributesZero(t *testing.T) {
	key, err := signature.GeneratePrivateKey()
	require.NoError(t, err)
	pub := key.PublicKey()

	chain := chainstate.NewSnapshot()
	sub := authority.NewAuthority(1)
	sub.KeyAuths[pub] = 1
	chain.SetActive(authority.AccountID(2), *sub)

	top := authority.NewAuthority(1)
	top.AccountAuths[2] = 1

	state := newSignedState(t, pub)
	ev := &Evaluator{State: state, Chain: chain, MaxRecursion: 0}

	require.False(t, ev.CheckAuthority(top, 0), "recursion at depth == max_recursion must contribute zero, not succeed")
}

func TestOwnerSatisfiesActive(t *testing.T) {
	key, err := signature.GeneratePrivateKey()
	require.NoError(t, err)
	pub := key.PublicKey()

	chain := chainstate.NewSnapshot()
	chain.SetActive(5, *authority.NewAuthority(1)) // impossible: no entries, threshold 1
	owner := authority.NewAuthority(1)
	owner.KeyAuths[pub] = 1
	chain.SetOwner(5, *owner)

	state := newSignedState(t, pub)
	ev := &Evaluator{State: state, Chain: chain, MaxRecursion: 2, AllowNonImmediateOwner: true}

	require.True(t, ev.CheckAuthorityAccount(5), "owner authority should satisfy active when active alone cannot")
}

func TestCustomAuthorityIsEvaluatorAgnostic(t *testing.T) {
	// Sanity check that evaluator.CheckAuthority treats any Authority value
	// uniformly, independent of where it came from (custom or account) —
	// the verify package is what distinguishes custom-authority sourcing.
	key, err := signature.GeneratePrivateKey()
	require.NoError(t, err)
	pub := key.PublicKey()
	auth := authority.NewAuthority(1)
	auth.KeyAuths[pub] = 1

	state := newSignedState(t, pub)
	ev := &Evaluator{State: state, Chain: chainstate.NewSnapshot(), MaxRecursion: 2}
	require.True(t, ev.CheckAuthority(auth, 0))
}

func TestImpossibleAuthorityShortCircuits(t *testing.T) {
	key, err := signature.GeneratePrivateKey()
	require.NoError(t, err)
	pub := key.PublicKey()

	// Threshold exceeds the total weight of every entry: no signature can
	// ever satisfy this, regardless of sign-state.
	auth := authority.NewAuthority(5)
	auth.KeyAuths[pub] = 1
	require.True(t, auth.IsImpossible())

	state := newSignedState(t, pub)
	ev := &Evaluator{State: state, Chain: chainstate.NewSnapshot(), MaxRecursion: 2}
	require.False(t, ev.CheckAuthority(auth, 0))
}
