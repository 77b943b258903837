package oracle

import (
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"hash"

	"golang.org/x/crypto/pbkdf2"

	"github.com/roach88/seedcomb/internal/space"
)

// PBKDF2Config describes the key-derivation parameters recorded by the
// wallet or keystore being recovered.
type PBKDF2Config struct {
	Salt       []byte
	Iterations int
	KeyLen     int
	Hash       string // "sha1", "sha256", or "sha512"

	// Expected is the stored derived key a correct password reproduces.
	Expected []byte
}

// PBKDF2Oracle verifies password candidates against a stored PBKDF2
// derived key. Cost scales linearly with the iteration count.
type PBKDF2Oracle struct {
	cfg  PBKDF2Config
	hash func() hash.Hash
}

func NewPBKDF2Oracle(cfg PBKDF2Config) (*PBKDF2Oracle, error) {
	var h func() hash.Hash
	switch cfg.Hash {
	case "sha1":
		h = sha1.New
	case "", "sha256":
		h = sha256.New
	case "sha512":
		h = sha512.New
	default:
		return nil, &OracleError{Code: CodeUnknownHash, Message: "unsupported PBKDF2 hash " + cfg.Hash}
	}
	if cfg.Iterations < 1 {
		return nil, &OracleError{Code: CodeTarget, Message: "PBKDF2 iteration count must be positive"}
	}
	if len(cfg.Expected) == 0 {
		return nil, &OracleError{Code: CodeTarget, Message: "expected derived key is required"}
	}
	if cfg.KeyLen == 0 {
		cfg.KeyLen = len(cfg.Expected)
	}
	return &PBKDF2Oracle{cfg: cfg, hash: h}, nil
}

func (o *PBKDF2Oracle) Name() string { return "pbkdf2" }

func (o *PBKDF2Oracle) CostHint() CostHint {
	if o.cfg.Iterations >= 100_000 {
		return CostExpensive
	}
	return CostModerate
}

func (o *PBKDF2Oracle) VerifyBatch(ctx context.Context, batch []space.Candidate) ([]int, error) {
	var matches []int
	for i, cand := range batch {
		if err := ctx.Err(); err != nil {
			return matches, err
		}
		key := pbkdf2.Key([]byte(cand.Text), o.cfg.Salt, o.cfg.Iterations, o.cfg.KeyLen, o.hash)
		if subtle.ConstantTimeCompare(key, o.cfg.Expected) == 1 {
			matches = append(matches, i)
		}
	}
	return matches, nil
}
