package oracle

import (
	"context"
	"errors"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/seedcomb/internal/space"
)

// AddressKind selects the address encoding derived addresses are compared
// under.
type AddressKind string

const (
	AddrLegacy AddressKind = "p2pkh"  // 1...
	AddrSegWit AddressKind = "p2wpkh" // bc1q...
)

// SeedConfig configures a BIP44-style seed oracle.
type SeedConfig struct {
	// Passphrase is the optional BIP39 "25th word". Empty for most wallets.
	Passphrase string

	// Net selects the address version bytes; nil means Bitcoin mainnet.
	Net *chaincfg.Params

	// Purpose is the BIP43 purpose field: 44 for legacy, 84 for native
	// segwit wallets. Zero means 44.
	Purpose uint32

	// Account is the hardened account index, almost always 0.
	Account uint32

	// AddressKind picks the encoding compared against the address set.
	AddressKind AddressKind

	// ScanWindow is how many external-chain address indices to derive per
	// candidate. Zero means 1 (the first receive address only).
	ScanWindow uint32

	// Exactly one target must be set. Addresses matches any derived
	// address against the set; TargetXpub matches the account-level
	// neutered extended key string.
	Addresses  *AddressSet
	TargetXpub string
}

// SeedOracle verifies mnemonic candidates by full BIP39 seed derivation.
// Each candidate costs two PBKDF2-SHA512 runs plus several EC point
// multiplications, so this is the expensive end of the oracle spectrum.
type SeedOracle struct {
	cfg SeedConfig
}

// NewSeedOracle validates the target configuration.
func NewSeedOracle(cfg SeedConfig) (*SeedOracle, error) {
	if (cfg.Addresses == nil) == (cfg.TargetXpub == "") {
		return nil, &OracleError{
			Code:    CodeTarget,
			Message: "exactly one of an address database or a target xpub is required",
		}
	}
	if cfg.Net == nil {
		cfg.Net = &chaincfg.MainNetParams
	}
	if cfg.Purpose == 0 {
		cfg.Purpose = 44
	}
	if cfg.AddressKind == "" {
		if cfg.Purpose == 84 {
			cfg.AddressKind = AddrSegWit
		} else {
			cfg.AddressKind = AddrLegacy
		}
	}
	if cfg.ScanWindow == 0 {
		cfg.ScanWindow = 1
	}
	return &SeedOracle{cfg: cfg}, nil
}

func (o *SeedOracle) Name() string       { return "bip44-seed" }
func (o *SeedOracle) CostHint() CostHint { return CostExpensive }

// VerifyBatch derives each candidate mnemonic and compares the results
// against the configured target. Candidates that fail the BIP39 checksum
// are non-matches. Cancellation is observed between candidates.
func (o *SeedOracle) VerifyBatch(ctx context.Context, batch []space.Candidate) ([]int, error) {
	var matches []int
	for i, cand := range batch {
		if err := ctx.Err(); err != nil {
			return matches, err
		}
		ok, err := o.verify(cand.Words)
		if err != nil {
			return matches, err
		}
		if ok {
			matches = append(matches, i)
		}
	}
	return matches, nil
}

func (o *SeedOracle) verify(words []string) (bool, error) {
	// BIP39 mandates NFKD for mnemonic bytes before seeding. Matters for
	// the French and Japanese wordlists; a no-op for English.
	mnemonic := norm.NFKD.String(strings.Join(words, " "))
	if !bip39.IsMnemonicValid(mnemonic) {
		return false, nil
	}

	seed := bip39.NewSeed(mnemonic, o.cfg.Passphrase)
	master, err := hdkeychain.NewMaster(seed, o.cfg.Net)
	if err != nil {
		// An unusable seed is a property of the candidate, not a fault.
		if errors.Is(err, hdkeychain.ErrUnusableSeed) {
			return false, nil
		}
		return false, &OracleError{Code: CodeDerivation, Message: "master key", Err: err}
	}

	account, err := deriveChild(master,
		hdkeychain.HardenedKeyStart+o.cfg.Purpose,
		hdkeychain.HardenedKeyStart, // coin type: Bitcoin
		hdkeychain.HardenedKeyStart+o.cfg.Account,
	)
	if err != nil {
		if errors.Is(err, hdkeychain.ErrInvalidChild) {
			return false, nil
		}
		return false, &OracleError{Code: CodeDerivation, Message: "account key", Err: err}
	}

	if o.cfg.TargetXpub != "" {
		neutered, err := account.Neuter()
		if err != nil {
			return false, &OracleError{Code: CodeDerivation, Message: "neuter account key", Err: err}
		}
		return neutered.String() == o.cfg.TargetXpub, nil
	}

	external, err := account.Derive(0)
	if err != nil {
		if errors.Is(err, hdkeychain.ErrInvalidChild) {
			return false, nil
		}
		return false, &OracleError{Code: CodeDerivation, Message: "external chain key", Err: err}
	}

	for idx := uint32(0); idx < o.cfg.ScanWindow; idx++ {
		child, err := external.Derive(idx)
		if errors.Is(err, hdkeychain.ErrInvalidChild) {
			continue // skip the ~1/2^127 unusable index, like wallets do
		}
		if err != nil {
			return false, &OracleError{Code: CodeDerivation, Message: "address key", Err: err}
		}
		addr, err := o.encodeAddress(child)
		if err != nil {
			return false, err
		}
		if o.cfg.Addresses.Contains(addr) {
			return true, nil
		}
	}
	return false, nil
}

func (o *SeedOracle) encodeAddress(key *hdkeychain.ExtendedKey) (string, error) {
	pub, err := key.ECPubKey()
	if err != nil {
		return "", &OracleError{Code: CodeDerivation, Message: "public key", Err: err}
	}
	hash := btcutil.Hash160(pub.SerializeCompressed())

	switch o.cfg.AddressKind {
	case AddrSegWit:
		addr, err := btcutil.NewAddressWitnessPubKeyHash(hash, o.cfg.Net)
		if err != nil {
			return "", &OracleError{Code: CodeDerivation, Message: "p2wpkh address", Err: err}
		}
		return addr.EncodeAddress(), nil
	default:
		addr, err := btcutil.NewAddressPubKeyHash(hash, o.cfg.Net)
		if err != nil {
			return "", &OracleError{Code: CodeDerivation, Message: "p2pkh address", Err: err}
		}
		return addr.EncodeAddress(), nil
	}
}

func deriveChild(key *hdkeychain.ExtendedKey, path ...uint32) (*hdkeychain.ExtendedKey, error) {
	current := key
	for _, index := range path {
		next, err := current.Derive(index)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}
