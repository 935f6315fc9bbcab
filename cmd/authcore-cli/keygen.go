package main

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"

	"github.com/arcledger/authcore/signature"
)

// demoKeyFromMnemonic derives a reproducible demo secp256k1 signing key from
// a BIP-39 mnemonic and passphrase, via the standard master-extended-key
// derivation. It is meant for CLI fixtures and test vectors, not production
// key custody — there is no hardened derivation path here, just the master
// key itself.
func demoKeyFromMnemonic(mnemonic, passphrase string) (*signature.PrivateKey, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("keygen: invalid mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, passphrase)

	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("keygen: derive master key: %w", err)
	}
	ecPriv, err := master.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("keygen: extract private key: %w", err)
	}
	return signature.PrivateKeyFromBytes(ecPriv.Serialize())
}

// newDemoMnemonic generates a fresh random BIP-39 mnemonic — used by the
// keygen command when the caller does not supply one of their own.
func newDemoMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", fmt.Errorf("keygen: generate entropy: %w", err)
	}
	return bip39.NewMnemonic(entropy)
}
