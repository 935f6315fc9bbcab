package authority

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsImpossibleZeroThresholdIsNotImpossible(t *testing.T) {
	auth := NewAuthority(0)
	require.False(t, auth.IsImpossible())
}

func TestIsImpossibleInsufficientWeight(t *testing.T) {
	auth := NewAuthority(5)
	auth.KeyAuths[PublicKey{0x01}] = 2
	auth.AddressAuths["addr"] = 1
	require.True(t, auth.IsImpossible())
}

func TestIsImpossibleSufficientWeight(t *testing.T) {
	auth := NewAuthority(3)
	auth.KeyAuths[PublicKey{0x01}] = 2
	auth.AccountAuths[7] = 1
	require.False(t, auth.IsImpossible())
}

func TestSortedKeysAreCanonicallyOrdered(t *testing.T) {
	auth := NewAuthority(1)
	k1 := PublicKey{0x03}
	k2 := PublicKey{0x01}
	k3 := PublicKey{0x02}
	auth.KeyAuths[k1] = 1
	auth.KeyAuths[k2] = 1
	auth.KeyAuths[k3] = 1

	sorted := auth.SortedKeys()
	require.Equal(t, []PublicKey{k2, k3, k1}, sorted)
}

func TestSortedAddressesAreLexicographic(t *testing.T) {
	auth := NewAuthority(1)
	auth.AddressAuths["zebra"] = 1
	auth.AddressAuths["alpha"] = 1
	require.Equal(t, []Address{"alpha", "zebra"}, auth.SortedAddresses())
}

func TestSortedAccountsAreNumericallyOrdered(t *testing.T) {
	auth := NewAuthority(1)
	auth.AccountAuths[9] = 1
	auth.AccountAuths[2] = 1
	require.Equal(t, []AccountID{2, 9}, auth.SortedAccounts())
}

func TestPublicKeyLess(t *testing.T) {
	a := PublicKey{0x01}
	b := PublicKey{0x02}
	require.True(t, a.Less(b))
	require.False(t, b.Less(a))
	require.False(t, a.Less(a))
}
