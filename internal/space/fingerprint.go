package space

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// DomainSpace is the domain prefix for space fingerprints. The version
// suffix exists so a future layout change invalidates old checkpoints
// instead of silently desynchronizing them.
const DomainSpace = "seedcomb/space/v1"

// fingerprintPayload is the serialized space configuration. Field order is
// fixed by the struct declaration; every input that affects ordinal layout
// must appear here - token alternatives, anchors (already folded into slot
// order), wildcard values, typo toggles, charset, budgets, and kind.
type fingerprintPayload struct {
	Domain    string                `json:"domain"`
	Kind      string                `json:"kind"`
	Positions []fingerprintPosition `json:"positions"`
	Typos     fingerprintTypos      `json:"typos"`
	Budget    Budget                `json:"budget"`
}

type fingerprintPosition struct {
	Alternatives []string `json:"alternatives"`
	Required     bool     `json:"required"`
	// Wildcard values are inlined: editing a wildcard definition file
	// changes the space even if the token list is untouched.
	Wildcards []string `json:"wildcards,omitempty"`
}

type fingerprintTypos struct {
	CaseChange bool   `json:"case_change"`
	Delete     bool   `json:"delete"`
	Insert     bool   `json:"insert"`
	Replace    bool   `json:"replace"`
	Transpose  bool   `json:"transpose"`
	Charset    string `json:"charset"`
}

// computeFingerprint hashes the canonical configuration with domain
// separation: SHA256(domain + 0x00 + payload). Strings are NFC normalized
// so byte-level Unicode variance in input files cannot split identical
// configurations into distinct fingerprints.
func (s *Space) computeFingerprint() (string, error) {
	payload := fingerprintPayload{
		Domain: DomainSpace,
		Kind:   string(s.kind),
		Typos: fingerprintTypos{
			CaseChange: s.typoCfg.CaseChange,
			Delete:     s.typoCfg.Delete,
			Insert:     s.typoCfg.Insert,
			Replace:    s.typoCfg.Replace,
			Transpose:  s.typoCfg.Transpose,
			Charset:    norm.NFC.String(string(s.typoCfg.Charset)),
		},
		Budget: s.budget,
	}

	for _, spec := range s.specs {
		pos := fingerprintPosition{Required: spec.Required}
		for _, alt := range spec.Alternatives {
			pos.Alternatives = append(pos.Alternatives, norm.NFC.String(alt))
		}
		for _, name := range spec.Wildcards {
			for _, v := range s.sets[name] {
				pos.Wildcards = append(pos.Wildcards, norm.NFC.String(v))
			}
		}
		payload.Positions = append(payload.Positions, pos)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal fingerprint payload: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(DomainSpace))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
