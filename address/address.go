// Package address derives the legacy and modern wallet address forms a
// public key is recognized by when it appears in an authority's
// address_auths map.
//
// Grounded on the teacher's internal/services/address/bitcoin.go, which
// derives an altcoin's P2PKH address by parameterizing the same Bitcoin-style
// deriver with a different version byte per network. This package reuses
// that shape with the protocol's own two legacy version bytes instead of a
// set of altcoin networks.
package address

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	mrtronbase58 "github.com/mr-tron/base58"

	"github.com/arcledger/authcore/authority"
)

// LegacyVersionBytes are the two network version bytes legacy addresses are
// derived under, per spec §6.
var LegacyVersionBytes = [2]byte{0, 56}

// Forms holds the five address aliases a single public key resolves to.
// Order matches spec §4.7: modern, then legacy compressed-v0,
// compressed-v56, uncompressed-v0, uncompressed-v56.
type Forms [5]authority.Address

// Derive returns the five address aliases for the compressed public key pk.
func Derive(pk authority.PublicKey) (Forms, error) {
	pub, err := btcec.ParsePubKey(pk[:])
	if err != nil {
		return Forms{}, err
	}

	var out Forms
	out[0] = modernAddress(pub.SerializeCompressed())
	out[1] = legacyAddress(pub.SerializeCompressed(), LegacyVersionBytes[0])
	out[2] = legacyAddress(pub.SerializeCompressed(), LegacyVersionBytes[1])
	out[3] = legacyAddress(pub.SerializeUncompressed(), LegacyVersionBytes[0])
	out[4] = legacyAddress(pub.SerializeUncompressed(), LegacyVersionBytes[1])
	return out, nil
}

// modernAddress is an unversioned base58 encoding of the key's hash160 — no
// network byte, no checksum round-trip, just the raw alias a client derives
// "directly from the key".
func modernAddress(serialized []byte) authority.Address {
	return authority.Address(mrtronbase58.Encode(btcutil.Hash160(serialized)))
}

// legacyAddress derives a Bitcoin-style P2PKH address: version byte,
// hash160 of the serialized key, base58check-encoded.
func legacyAddress(serialized []byte, version byte) authority.Address {
	return authority.Address(base58.CheckEncode(btcutil.Hash160(serialized), version))
}
