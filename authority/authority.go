// Package authority defines the weighted, threshold-based authority records
// that gate every account action: which keys, legacy addresses, and
// sub-accounts may contribute weight, and how much weight is required.
package authority

import (
	"fmt"
	"sort"
)

// AccountID identifies an on-chain account. Zero is an ordinary account id;
// the default configuration uses it as the committee account.
type AccountID uint64

// PublicKey is the compressed secp256k1 public key serialization (33 bytes).
type PublicKey [33]byte

func (k PublicKey) String() string {
	return fmt.Sprintf("%x", [33]byte(k))
}

// Less orders two public keys lexicographically on their compressed bytes.
// The evaluator and minimizer both rely on this for deterministic, canonical
// iteration order.
func (k PublicKey) Less(other PublicKey) bool {
	for i := range k {
		if k[i] != other[i] {
			return k[i] < other[i]
		}
	}
	return false
}

// Address is a base58-encoded legacy or modern wallet address string.
type Address string

// KeyWeight maps a public key to the weight it contributes.
type KeyWeight map[PublicKey]uint16

// AddressWeight maps a legacy address to the weight it contributes.
type AddressWeight map[Address]uint16

// AccountWeight maps a referenced account to the weight it contributes,
// recursively, through that account's own active/owner authority.
type AccountWeight map[AccountID]uint16

// Authority is a weighted threshold predicate: it is satisfied once the
// accumulated weight of satisfied key_auths, address_auths, and account_auths
// entries reaches WeightThreshold.
type Authority struct {
	WeightThreshold uint32
	KeyAuths        KeyWeight
	AddressAuths    AddressWeight
	AccountAuths    AccountWeight
}

// NewAuthority returns an empty authority with the given threshold.
func NewAuthority(threshold uint32) *Authority {
	return &Authority{
		WeightThreshold: threshold,
		KeyAuths:        KeyWeight{},
		AddressAuths:    AddressWeight{},
		AccountAuths:    AccountWeight{},
	}
}

// IsImpossible reports whether the authority can never be satisfied: the
// threshold is positive and the combined weight of every key, address and
// account entry is below it. A zero threshold is never impossible.
func (a *Authority) IsImpossible() bool {
	if a.WeightThreshold == 0 {
		return false
	}
	var total uint32
	for _, w := range a.KeyAuths {
		total += uint32(w)
	}
	for _, w := range a.AddressAuths {
		total += uint32(w)
	}
	for _, w := range a.AccountAuths {
		total += uint32(w)
	}
	return total < a.WeightThreshold
}

// SortedKeys returns the keys of KeyAuths in canonical ascending order.
func (a *Authority) SortedKeys() []PublicKey {
	out := make([]PublicKey, 0, len(a.KeyAuths))
	for k := range a.KeyAuths {
		out = append(out, k)
	}
	sortPublicKeys(out)
	return out
}

// SortedAddresses returns the keys of AddressAuths in canonical ascending
// lexicographic order.
func (a *Authority) SortedAddresses() []Address {
	out := make([]Address, 0, len(a.AddressAuths))
	for addr := range a.AddressAuths {
		out = append(out, addr)
	}
	sortAddresses(out)
	return out
}

// SortedAccounts returns the keys of AccountAuths in canonical ascending
// numeric order.
func (a *Authority) SortedAccounts() []AccountID {
	out := make([]AccountID, 0, len(a.AccountAuths))
	for acc := range a.AccountAuths {
		out = append(out, acc)
	}
	sortAccountIDs(out)
	return out
}

func sortPublicKeys(keys []PublicKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}

func sortAddresses(addrs []Address) {
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
}

func sortAccountIDs(ids []AccountID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
