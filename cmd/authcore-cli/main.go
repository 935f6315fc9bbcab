// Command authcore-cli exercises the authorization core end to end against
// a demo in-memory chain-state snapshot: derive a reproducible key from a
// mnemonic, sign a fixture transaction, verify it, or compute a minimal
// signing set.
//
// Grounded on the teacher's cmd/arcsign/main.go (manual os.Args command
// switch, no CLI framework) and internal/cli/{mode,output}.go (the
// dashboard-mode JSON-to-stdout/log-to-stderr split), reworked for a
// keygen/sign/verify/minimize command set instead of wallet
// create/restore/derive.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/arcledger/authcore/authority"
	"github.com/arcledger/authcore/chainstate"
	"github.com/arcledger/authcore/config"
	"github.com/arcledger/authcore/minimize"
	"github.com/arcledger/authcore/optax"
	"github.com/arcledger/authcore/txn"
	"github.com/arcledger/authcore/verify"
)

const version = "0.1.0"

func main() {
	if detectMode() == modeDashboard {
		runDashboard()
		return
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "keygen":
		runKeygenInteractive()
	case "sign":
		runSignInteractive()
	case "verify":
		runVerifyInteractive()
	case "minimize":
		runMinimizeInteractive()
	case "version":
		fmt.Printf("authcore-cli v%s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("authcore-cli - authorization core fixture driver")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  authcore-cli keygen    derive a demo key from a mnemonic")
	fmt.Println("  authcore-cli sign      sign the fixture transaction")
	fmt.Println("  authcore-cli verify    verify the fixture transaction")
	fmt.Println("  authcore-cli minimize  compute a minimal signing set")
	fmt.Println("  authcore-cli version   print version information")
	fmt.Println("  authcore-cli help      show this help message")
	fmt.Println()
	fmt.Println("Set AUTHCORE_MODE=dashboard to switch to JSON-on-stdout mode.")
}

func promptPassphrase(prompt string) (string, error) {
	fmt.Print(prompt)
	bytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return string(bytes), nil
}

func runKeygenInteractive() {
	mnemonic, err := newDemoMnemonic()
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Generated mnemonic (demo only — do not use for real funds):")
	fmt.Printf("  %s\n\n", mnemonic)

	passphrase, err := promptPassphrase("Optional BIP-39 passphrase (press Enter to skip): ")
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	key, err := demoKeyFromMnemonic(mnemonic, passphrase)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	pub := key.PublicKey()
	fmt.Printf("Derived public key: %s\n", hex.EncodeToString(pub[:]))
}

// fixtureSnapshot builds the demo chain-state used by sign/verify/minimize:
// a single account (id 5) whose active authority is satisfied by any one of
// keys at weight 1 each with threshold 1, and an empty owner authority.
func fixtureSnapshot(keys ...authority.PublicKey) *chainstate.Snapshot {
	snap := chainstate.NewSnapshot()
	auth := authority.NewAuthority(1)
	for _, k := range keys {
		auth.KeyAuths[k] = 1
	}
	snap.SetActive(5, *auth)
	snap.SetOwner(5, *authority.NewAuthority(0))
	return snap
}

func fixtureTransaction() *txn.Transaction {
	return &txn.Transaction{
		Expiration: 1893456000,
		Operations: []optax.Operation{
			optax.Transfer{From: 5, To: 6, Amount: 100},
		},
	}
}

func runSignInteractive() {
	mnemonic, err := newDemoMnemonic()
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	key, err := demoKeyFromMnemonic(mnemonic, "")
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	var chainID [32]byte
	st := &txn.SignedTransaction{Transaction: *fixtureTransaction()}
	if err := st.Sign(key, chainID); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Signed fixture transaction:")
	fmt.Printf("  digest:    %s\n", hex.EncodeToString(st.Digest()[:]))
	fmt.Printf("  signature: %s\n", hex.EncodeToString(st.Signatures[0][:]))
}

func runVerifyInteractive() {
	cfg := config.Default()
	mnemonic, err := newDemoMnemonic()
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	key, err := demoKeyFromMnemonic(mnemonic, "")
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	pub := key.PublicKey()

	var chainID [32]byte
	st := &txn.SignedTransaction{Transaction: *fixtureTransaction()}
	if err := st.Sign(key, chainID); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	signers, err := st.GetSignatureKeys(chainID)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	chain := fixtureSnapshot(pub)
	opts := verify.Options{
		Chain:                  chain,
		Extract:                optax.Extract,
		Operations:             st.Operations,
		RecoveredSignatureKeys: signers,
		MaxRecursion:           cfg.MaxRecursionDepth,
		CommitteeAccount:       cfg.CommitteeAccount,
		TempAccount:            cfg.TempAccount,
		Strict:                 true,
	}

	if _, err := verify.VerifyAuthority(opts); err != nil {
		fmt.Printf("verification failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("verification succeeded")
}

func runMinimizeInteractive() {
	cfg := config.Default()
	mnemonic1, _ := newDemoMnemonic()
	mnemonic2, _ := newDemoMnemonic()
	key1, err := demoKeyFromMnemonic(mnemonic1, "")
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	key2, err := demoKeyFromMnemonic(mnemonic2, "")
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	chain := fixtureSnapshot(key1.PublicKey(), key2.PublicKey())
	tx := fixtureTransaction()

	opts := verify.Options{
		Chain:            chain,
		Extract:          optax.Extract,
		Operations:       tx.Operations,
		AvailableKeys:    []authority.PublicKey{key1.PublicKey(), key2.PublicKey()},
		MaxRecursion:     cfg.MaxRecursionDepth,
		CommitteeAccount: cfg.CommitteeAccount,
		TempAccount:      cfg.TempAccount,
	}

	candidates, err := minimize.GetRequiredSignatures(opts)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	minimal, err := minimize.MinimizeRequiredSignatures(opts, candidates)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("minimal signing set (%d key(s)):\n", len(minimal))
	for _, k := range minimal {
		fmt.Printf("  %s\n", hex.EncodeToString(k[:]))
	}
}

func runDashboard() {
	writeLog(fmt.Sprintf("authcore-cli v%s - dashboard mode", version))

	command := os.Getenv("CLI_COMMAND")
	if command == "" {
		writeJSON(cliResponse{Success: false, Error: "CLI_COMMAND environment variable not set"})
		os.Exit(1)
	}
	writeLog(fmt.Sprintf("executing command: %s", command))

	switch command {
	case "keygen":
		dashboardKeygen()
	case "verify":
		dashboardVerify()
	case "minimize":
		dashboardMinimize()
	default:
		writeJSON(cliResponse{Success: false, Command: command, Error: fmt.Sprintf("unknown command: %s", command)})
		os.Exit(1)
	}
}

func dashboardKeygen() {
	mnemonic := os.Getenv("AUTHCORE_MNEMONIC")
	passphrase := os.Getenv("AUTHCORE_PASSPHRASE")
	if mnemonic == "" {
		generated, err := newDemoMnemonic()
		if err != nil {
			writeJSON(cliResponse{Success: false, Command: "keygen", Error: err.Error()})
			os.Exit(1)
		}
		mnemonic = generated
	}

	key, err := demoKeyFromMnemonic(mnemonic, passphrase)
	if err != nil {
		writeJSON(cliResponse{Success: false, Command: "keygen", Error: err.Error()})
		os.Exit(1)
	}
	pub := key.PublicKey()
	writeJSON(cliResponse{
		Success: true,
		Command: "keygen",
		Data: map[string]string{
			"mnemonic":   mnemonic,
			"public_key": hex.EncodeToString(pub[:]),
		},
	})
}

func dashboardVerify() {
	cfg := config.Default()
	mnemonic := os.Getenv("AUTHCORE_MNEMONIC")
	if mnemonic == "" {
		writeJSON(cliResponse{Success: false, Command: "verify", Error: "AUTHCORE_MNEMONIC environment variable not set"})
		os.Exit(1)
	}
	key, err := demoKeyFromMnemonic(mnemonic, os.Getenv("AUTHCORE_PASSPHRASE"))
	if err != nil {
		writeJSON(cliResponse{Success: false, Command: "verify", Error: err.Error()})
		os.Exit(1)
	}

	var chainID [32]byte
	st := &txn.SignedTransaction{Transaction: *fixtureTransaction()}
	if err := st.Sign(key, chainID); err != nil {
		writeJSON(cliResponse{Success: false, Command: "verify", Error: err.Error()})
		os.Exit(1)
	}
	signers, err := st.GetSignatureKeys(chainID)
	if err != nil {
		writeJSON(cliResponse{Success: false, Command: "verify", Error: err.Error()})
		os.Exit(1)
	}

	chain := fixtureSnapshot(key.PublicKey())
	opts := verify.Options{
		Chain:                  chain,
		Extract:                optax.Extract,
		Operations:             st.Operations,
		RecoveredSignatureKeys: signers,
		MaxRecursion:           cfg.MaxRecursionDepth,
		CommitteeAccount:       cfg.CommitteeAccount,
		TempAccount:            cfg.TempAccount,
		Strict:                 true,
	}

	if _, err := verify.VerifyAuthority(opts); err != nil {
		writeJSON(cliResponse{Success: false, Command: "verify", Error: err.Error()})
		os.Exit(1)
	}
	writeJSON(cliResponse{Success: true, Command: "verify", Data: map[string]bool{"verified": true}})
}

func dashboardMinimize() {
	cfg := config.Default()
	mnemonic1 := os.Getenv("AUTHCORE_MNEMONIC_1")
	mnemonic2 := os.Getenv("AUTHCORE_MNEMONIC_2")
	if mnemonic1 == "" || mnemonic2 == "" {
		writeJSON(cliResponse{Success: false, Command: "minimize", Error: "AUTHCORE_MNEMONIC_1 and AUTHCORE_MNEMONIC_2 must both be set"})
		os.Exit(1)
	}

	key1, err := demoKeyFromMnemonic(mnemonic1, "")
	if err != nil {
		writeJSON(cliResponse{Success: false, Command: "minimize", Error: err.Error()})
		os.Exit(1)
	}
	key2, err := demoKeyFromMnemonic(mnemonic2, "")
	if err != nil {
		writeJSON(cliResponse{Success: false, Command: "minimize", Error: err.Error()})
		os.Exit(1)
	}

	chain := fixtureSnapshot(key1.PublicKey(), key2.PublicKey())
	tx := fixtureTransaction()
	opts := verify.Options{
		Chain:            chain,
		Extract:          optax.Extract,
		Operations:       tx.Operations,
		AvailableKeys:    []authority.PublicKey{key1.PublicKey(), key2.PublicKey()},
		MaxRecursion:     cfg.MaxRecursionDepth,
		CommitteeAccount: cfg.CommitteeAccount,
		TempAccount:      cfg.TempAccount,
	}

	candidates, err := minimize.GetRequiredSignatures(opts)
	if err != nil {
		writeJSON(cliResponse{Success: false, Command: "minimize", Error: err.Error()})
		os.Exit(1)
	}
	minimal, err := minimize.MinimizeRequiredSignatures(opts, candidates)
	if err != nil {
		writeJSON(cliResponse{Success: false, Command: "minimize", Error: err.Error()})
		os.Exit(1)
	}

	keyHex := make([]string, 0, len(minimal))
	for _, k := range minimal {
		keyHex = append(keyHex, hex.EncodeToString(k[:]))
	}
	writeJSON(cliResponse{Success: true, Command: "minimize", Data: map[string]any{"keys": keyHex}})
}
