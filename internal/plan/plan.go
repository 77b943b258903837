package plan

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/roach88/seedcomb/internal/mutate"
	"github.com/roach88/seedcomb/internal/oracle"
	"github.com/roach88/seedcomb/internal/space"
	"github.com/roach88/seedcomb/internal/tokens"
)

// Plan is the decoded recovery plan document.
type Plan struct {
	// Kind is "seed" or "password".
	Kind string `json:"kind" yaml:"kind"`

	Tokens    TokensConfig    `json:"tokens" yaml:"tokens"`
	Wildcards WildcardsConfig `json:"wildcards,omitempty" yaml:"wildcards,omitempty"`
	Budget    BudgetConfig    `json:"budget,omitempty" yaml:"budget,omitempty"`
	Typos     TypoFlags       `json:"typos,omitempty" yaml:"typos,omitempty"`
	Oracle    OracleConfig    `json:"oracle" yaml:"oracle"`
	Run       RunConfig       `json:"run,omitempty" yaml:"run,omitempty"`

	// dir is the plan file's directory; relative paths resolve against it.
	dir string
}

// TokensConfig points at the token list, either a separate file or inline
// text in the plan itself.
type TokensConfig struct {
	File   string `json:"file,omitempty" yaml:"file,omitempty"`
	Inline string `json:"inline,omitempty" yaml:"inline,omitempty"`
}

type WildcardsConfig struct {
	File string              `json:"file,omitempty" yaml:"file,omitempty"`
	Sets map[string][]string `json:"sets,omitempty" yaml:"sets,omitempty"`
}

// BudgetConfig caps mutations across the whole candidate. Total caps the
// combined mutation count below the sum of the per-family limits; zero
// means no extra cap.
type BudgetConfig struct {
	Typos     int `json:"typos" yaml:"typos"`
	Swaps     int `json:"swaps" yaml:"swaps"`
	Wildcards int `json:"wildcards" yaml:"wildcards"`
	Total     int `json:"total,omitempty" yaml:"total,omitempty"`
}

// TypoFlags enables typo families for the mutation expander.
type TypoFlags struct {
	CaseChange bool   `json:"case_change" yaml:"case_change"`
	Delete     bool   `json:"delete" yaml:"delete"`
	Insert     bool   `json:"insert" yaml:"insert"`
	Replace    bool   `json:"replace" yaml:"replace"`
	Transpose  bool   `json:"transpose" yaml:"transpose"`
	Charset    string `json:"charset,omitempty" yaml:"charset,omitempty"`
}

// OracleConfig selects and configures the verifier.
type OracleConfig struct {
	// Type is "seed", "pbkdf2", or "null" (performance runs).
	Type string `json:"type" yaml:"type"`

	Seed   SeedTarget   `json:"seed,omitempty" yaml:"seed,omitempty"`
	PBKDF2 PBKDF2Target `json:"pbkdf2,omitempty" yaml:"pbkdf2,omitempty"`
}

type SeedTarget struct {
	// AddressFile is a newline-separated address list; AddressDB is the
	// compact database built by the addrdb command. Xpub targets the
	// account extended public key instead.
	AddressFile string `json:"address_file,omitempty" yaml:"address_file,omitempty"`
	AddressDB   string `json:"address_db,omitempty" yaml:"address_db,omitempty"`
	Xpub        string `json:"xpub,omitempty" yaml:"xpub,omitempty"`

	Passphrase  string `json:"passphrase,omitempty" yaml:"passphrase,omitempty"`
	Purpose     uint32 `json:"purpose,omitempty" yaml:"purpose,omitempty"`
	Account     uint32 `json:"account,omitempty" yaml:"account,omitempty"`
	ScanWindow  uint32 `json:"scan_window,omitempty" yaml:"scan_window,omitempty"`
	AddressKind string `json:"address_kind,omitempty" yaml:"address_kind,omitempty"`
}

type PBKDF2Target struct {
	Salt       string `json:"salt" yaml:"salt"` // hex
	Iterations int    `json:"iterations" yaml:"iterations"`
	Hash       string `json:"hash,omitempty" yaml:"hash,omitempty"`
	Expected   string `json:"expected" yaml:"expected"` // hex
	KeyLen     int    `json:"key_len,omitempty" yaml:"key_len,omitempty"`
}

// RunConfig carries dispatcher tuning knobs.
type RunConfig struct {
	BatchSize       int   `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
	Threads         int   `json:"threads,omitempty" yaml:"threads,omitempty"`
	CheckpointEvery int64 `json:"checkpoint_every,omitempty" yaml:"checkpoint_every,omitempty"`
}

func (p *Plan) validate() error {
	switch p.Kind {
	case "seed", "password":
	case "":
		return &PlanError{Code: ErrCodeMissingField, Message: "plan is missing kind (seed or password)"}
	default:
		return &PlanError{Code: ErrCodeBadValue, Message: fmt.Sprintf("unknown kind %q", p.Kind)}
	}

	if (p.Tokens.File == "") == (p.Tokens.Inline == "") {
		return &PlanError{Code: ErrCodeMissingField, Message: "tokens needs exactly one of file or inline"}
	}

	switch p.Oracle.Type {
	case "seed", "pbkdf2", "null":
	case "":
		return &PlanError{Code: ErrCodeMissingField, Message: "oracle is missing type"}
	default:
		return &PlanError{Code: ErrCodeBadValue, Message: fmt.Sprintf("unknown oracle type %q", p.Oracle.Type)}
	}
	return nil
}

// BuildSpace compiles the plan's token and mutation sections into a
// candidate space.
func (p *Plan) BuildSpace() (*space.Space, error) {
	var specs []tokens.PositionSpec
	var err error
	if p.Tokens.File != "" {
		specs, err = tokens.ParseFile(p.resolve(p.Tokens.File))
	} else {
		specs, err = tokens.Parse(strings.NewReader(p.Tokens.Inline))
	}
	if err != nil {
		return nil, err
	}

	sets := tokens.WildcardSets(p.Wildcards.Sets)
	if p.Wildcards.File != "" {
		sets, err = tokens.LoadWildcardSets(p.resolve(p.Wildcards.File))
		if err != nil {
			return nil, err
		}
	}

	kind := space.KindPassword
	if p.Kind == "seed" {
		kind = space.KindSeed
	}
	typoCfg := mutate.TypoConfig{
		CaseChange: p.Typos.CaseChange,
		Delete:     p.Typos.Delete,
		Insert:     p.Typos.Insert,
		Replace:    p.Typos.Replace,
		Transpose:  p.Typos.Transpose,
		Charset:    []rune(p.Typos.Charset),
	}
	budget := space.NewBudget(p.Budget.Typos, p.Budget.Swaps, p.Budget.Wildcards)
	if p.Budget.Total > 0 {
		budget.MaxTotal = p.Budget.Total
	}

	return space.New(kind, specs, typoCfg, sets, budget)
}

// BuildOracle constructs the configured verifier.
func (p *Plan) BuildOracle() (oracle.Oracle, error) {
	switch p.Oracle.Type {
	case "null":
		return oracle.Null{}, nil
	case "pbkdf2":
		return p.buildPBKDF2()
	case "seed":
		return p.buildSeed()
	default:
		return nil, &PlanError{Code: ErrCodeBadValue, Message: fmt.Sprintf("unknown oracle type %q", p.Oracle.Type)}
	}
}

func (p *Plan) buildPBKDF2() (oracle.Oracle, error) {
	t := p.Oracle.PBKDF2
	salt, err := hex.DecodeString(t.Salt)
	if err != nil {
		return nil, &PlanError{Code: ErrCodeBadValue, Message: "pbkdf2 salt is not valid hex", Err: err}
	}
	expected, err := hex.DecodeString(t.Expected)
	if err != nil {
		return nil, &PlanError{Code: ErrCodeBadValue, Message: "pbkdf2 expected key is not valid hex", Err: err}
	}
	return oracle.NewPBKDF2Oracle(oracle.PBKDF2Config{
		Salt:       salt,
		Iterations: t.Iterations,
		KeyLen:     t.KeyLen,
		Hash:       t.Hash,
		Expected:   expected,
	})
}

func (p *Plan) buildSeed() (oracle.Oracle, error) {
	t := p.Oracle.Seed
	cfg := oracle.SeedConfig{
		Passphrase:  t.Passphrase,
		Purpose:     t.Purpose,
		Account:     t.Account,
		ScanWindow:  t.ScanWindow,
		AddressKind: oracle.AddressKind(t.AddressKind),
		TargetXpub:  t.Xpub,
	}

	switch {
	case t.AddressFile != "":
		set, err := loadAddressFile(p.resolve(t.AddressFile))
		if err != nil {
			return nil, err
		}
		cfg.Addresses = set
	case t.AddressDB != "":
		set, err := loadAddressDB(p.resolve(t.AddressDB))
		if err != nil {
			return nil, err
		}
		cfg.Addresses = set
	}

	return oracle.NewSeedOracle(cfg)
}
