package mutate

import (
	"fmt"
	"unicode"
)

// TypoConfig selects which single-character edit families apply and the
// character set used by insert/replace edits.
//
// Charset order matters: variant ordinals index into it, so the same config
// must produce the same charset order on every process in a distributed run.
type TypoConfig struct {
	CaseChange bool
	Delete     bool
	Insert     bool
	Replace    bool
	Transpose  bool

	// Charset is the ordered set of characters used by Insert and Replace.
	Charset []rune
}

// Enabled reports whether any typo family is active.
func (c TypoConfig) Enabled() bool {
	return c.CaseChange || c.Delete || c.Insert || c.Replace || c.Transpose
}

// edit families in fixed alphabetical order: case, delete, insert, replace,
// transpose. This order is load-bearing: ordinals index into the
// concatenation of the family ranges.

// TypoCount returns the number of single-edit variants of value under c.
// Runs in time proportional to len(value), never to the variant count.
func (c TypoConfig) TypoCount(value string) int {
	runes := []rune(value)
	n := 0
	if c.CaseChange {
		n += caseCount(runes)
	}
	if c.Delete {
		n += len(runes)
	}
	if c.Insert {
		n += (len(runes) + 1) * len(c.Charset)
	}
	if c.Replace {
		n += replaceCount(runes, c.Charset)
	}
	if c.Transpose {
		n += transposeCount(runes)
	}
	return n
}

// TypoAt returns variant i of value, 0 <= i < TypoCount(value).
func (c TypoConfig) TypoAt(value string, i int) (string, error) {
	if i < 0 {
		return "", fmt.Errorf("typo index %d out of range", i)
	}
	runes := []rune(value)

	if c.CaseChange {
		if n := caseCount(runes); i < n {
			return caseAt(runes, i), nil
		} else {
			i -= n
		}
	}
	if c.Delete {
		if i < len(runes) {
			out := make([]rune, 0, len(runes)-1)
			out = append(out, runes[:i]...)
			out = append(out, runes[i+1:]...)
			return string(out), nil
		}
		i -= len(runes)
	}
	if c.Insert {
		if n := (len(runes) + 1) * len(c.Charset); i < n {
			pos, ch := i/len(c.Charset), c.Charset[i%len(c.Charset)]
			out := make([]rune, 0, len(runes)+1)
			out = append(out, runes[:pos]...)
			out = append(out, ch)
			out = append(out, runes[pos:]...)
			return string(out), nil
		} else {
			i -= n
		}
	}
	if c.Replace {
		if n := replaceCount(runes, c.Charset); i < n {
			return replaceAt(runes, c.Charset, i), nil
		} else {
			i -= n
		}
	}
	if c.Transpose {
		if i < transposeCount(runes) {
			return transposeAt(runes, i), nil
		}
		i -= transposeCount(runes)
	}

	return "", fmt.Errorf("typo index out of range for %q", value)
}

// caseCount counts runes whose case can be flipped to a different rune.
func caseCount(runes []rune) int {
	n := 0
	for _, r := range runes {
		if flipCase(r) != r {
			n++
		}
	}
	return n
}

// caseAt flips the case of the i-th flippable rune.
func caseAt(runes []rune, i int) string {
	out := make([]rune, len(runes))
	copy(out, runes)
	for j, r := range out {
		if flipCase(r) == r {
			continue
		}
		if i == 0 {
			out[j] = flipCase(r)
			return string(out)
		}
		i--
	}
	return string(out)
}

func flipCase(r rune) rune {
	if unicode.IsUpper(r) {
		return unicode.ToLower(r)
	}
	if unicode.IsLower(r) {
		return unicode.ToUpper(r)
	}
	return r
}

// replaceCount excludes the identity replacement: substituting a character
// with itself would duplicate the unmutated value.
func replaceCount(runes []rune, charset []rune) int {
	n := 0
	for _, r := range runes {
		n += len(charset)
		for _, c := range charset {
			if c == r {
				n--
				break
			}
		}
	}
	return n
}

func replaceAt(runes []rune, charset []rune, i int) string {
	for pos, r := range runes {
		options := len(charset)
		inSet := false
		for _, c := range charset {
			if c == r {
				inSet = true
				options--
				break
			}
		}
		if i >= options {
			i -= options
			continue
		}
		out := make([]rune, len(runes))
		copy(out, runes)
		for _, c := range charset {
			if inSet && c == r {
				continue
			}
			if i == 0 {
				out[pos] = c
				return string(out)
			}
			i--
		}
	}
	// Unreachable when i < replaceCount.
	return string(runes)
}

// transposeCount excludes equal adjacent pairs: swapping them is an
// identity edit.
func transposeCount(runes []rune) int {
	n := 0
	for j := 0; j+1 < len(runes); j++ {
		if runes[j] != runes[j+1] {
			n++
		}
	}
	return n
}

func transposeAt(runes []rune, i int) string {
	out := make([]rune, len(runes))
	copy(out, runes)
	for j := 0; j+1 < len(out); j++ {
		if out[j] == out[j+1] {
			continue
		}
		if i == 0 {
			out[j], out[j+1] = out[j+1], out[j]
			return string(out)
		}
		i--
	}
	return string(out)
}
