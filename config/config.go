// Package config loads the consensus-critical constants of spec §6 from a
// YAML document into an immutable value threaded through verification and
// minimization call sites, falling back to compiled-in defaults when no
// document is supplied.
//
// Grounded on the teacher's internal/app/config.go (a typed configuration
// struct with an explicit constructor of defaults), reworked from
// encrypted-JSON-on-USB to plain YAML since this core has no wallet-storage
// concept of its own.
package config

import (
	"encoding/hex"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/arcledger/authcore/authority"
)

// Config holds the consensus constants a verification or minimization call
// is parameterized by.
type Config struct {
	// MaxRecursionDepth bounds how deep check_authority may recurse into
	// account_auths before treating a branch as unsatisfied.
	MaxRecursionDepth int `yaml:"max_recursion_depth"`

	// CommitteeAccount is the distinguished account whose involvement in
	// required_active requires allow_committee=true.
	CommitteeAccount authority.AccountID `yaml:"committee_account"`

	// TempAccount is the sentinel account always considered pre-approved.
	TempAccount authority.AccountID `yaml:"temp_account"`

	// TxIDSize is the number of leading digest bytes kept as a transaction
	// id.
	TxIDSize int `yaml:"tx_id_size"`

	// ChainID is the 256-bit network identifier prefixed to every signing
	// digest.
	ChainID [32]byte `yaml:"-"`
	ChainIDHex string `yaml:"chain_id"`
}

// Default returns the configuration matching spec §6's defaults.
func Default() Config {
	return Config{
		MaxRecursionDepth: 2,
		CommitteeAccount:  0,
		TempAccount:       1,
		TxIDSize:          20,
	}
}

// Load parses a YAML configuration document, overlaying any set fields onto
// Default(). A nil or empty document returns Default() unchanged.
func Load(data []byte) (Config, error) {
	cfg := Default()
	if len(data) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if cfg.ChainIDHex != "" {
		decoded, err := decodeChainID(cfg.ChainIDHex)
		if err != nil {
			return Config{}, fmt.Errorf("config: chain_id: %w", err)
		}
		cfg.ChainID = decoded
	}
	if cfg.MaxRecursionDepth < 0 {
		return Config{}, fmt.Errorf("config: max_recursion_depth must be non-negative")
	}
	if cfg.TxIDSize <= 0 || cfg.TxIDSize > 32 {
		return Config{}, fmt.Errorf("config: tx_id_size must be in (0, 32]")
	}
	return cfg, nil
}

func decodeChainID(hexStr string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("chain id must decode to 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}
