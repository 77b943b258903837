package plan

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/seedcomb/internal/oracle"
)

// PlanError codes.
const (
	ErrCodeNotFound     = "PLAN_NOT_FOUND"
	ErrCodeUnknownForm  = "PLAN_UNKNOWN_FORMAT"
	ErrCodeParseFailed  = "PLAN_PARSE_FAILED"
	ErrCodeMissingField = "PLAN_MISSING_FIELD"
	ErrCodeBadValue     = "PLAN_BAD_VALUE"
)

// PlanError reports a problem with the plan document itself.
type PlanError struct {
	Code    string
	Message string
	Err     error
}

func (e *PlanError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PlanError) Unwrap() error { return e.Err }

// Load reads a plan from a .cue or .yaml/.yml file. Relative paths inside
// the plan resolve against the plan file's directory.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &PlanError{Code: ErrCodeNotFound, Message: "read plan " + path, Err: err}
	}

	var p Plan
	switch filepath.Ext(path) {
	case ".cue":
		if err := decodeCUE(data, path, &p); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, &PlanError{Code: ErrCodeParseFailed, Message: "parse YAML plan " + path, Err: err}
		}
	default:
		return nil, &PlanError{
			Code:    ErrCodeUnknownForm,
			Message: fmt.Sprintf("plan %s: want a .cue or .yaml file", path),
		}
	}

	p.dir = filepath.Dir(path)
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// decodeCUE compiles the file and decodes the resulting value through the
// plan's JSON tags.
func decodeCUE(data []byte, path string, p *Plan) error {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return &PlanError{Code: ErrCodeParseFailed, Message: "compile CUE plan " + path, Err: err}
	}
	if err := value.Decode(p); err != nil {
		return &PlanError{Code: ErrCodeParseFailed, Message: "decode CUE plan " + path, Err: err}
	}
	return nil
}

// resolve turns a plan-relative path into one usable from the process cwd.
func (p *Plan) resolve(path string) string {
	if filepath.IsAbs(path) || p.dir == "" {
		return path
	}
	return filepath.Join(p.dir, path)
}

func loadAddressFile(path string) (*oracle.AddressSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &PlanError{Code: ErrCodeNotFound, Message: "open address list " + path, Err: err}
	}
	defer f.Close()
	return oracle.BuildAddressSet(f)
}

func loadAddressDB(path string) (*oracle.AddressSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &PlanError{Code: ErrCodeNotFound, Message: "open address database " + path, Err: err}
	}
	defer f.Close()
	return oracle.ReadAddressSet(f)
}
