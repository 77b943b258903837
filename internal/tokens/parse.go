package tokens

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Token list syntax, one alternative per line:
//
//	# comment                 ignored
//	word                      literal alternative for the current position
//	%name                     apply wildcard set "name" to the current position
//	?                         mark the current position optional
//	^3^word                   pin this position to slot 3 (1-based in file)
//	^3+^word                  require this position at slot 3 or later
//	^2,4^word                 require this position within slots 2 through 4
//	(blank line)              start the next position
//
// Anchor markup may appear on any line of a block; it constrains the whole
// position. The last anchor in a block wins is NOT allowed - a second anchor
// line in the same block is a malformed-token error.

// Parse reads a token list and returns the resolved, ordered position specs.
// Any syntax or anchor problem is returned as a *ConfigError.
func Parse(r io.Reader) ([]PositionSpec, error) {
	groups, err := parseGroups(r)
	if err != nil {
		return nil, err
	}
	return resolve(groups)
}

// ParseFile is Parse over the contents of path.
func ParseFile(path string) ([]PositionSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open token list: %w", err)
	}
	defer f.Close()

	specs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return specs, nil
}

// parseGroups splits the input into raw token groups, one per position.
func parseGroups(r io.Reader) ([]tokenGroup, error) {
	var (
		groups  []tokenGroup
		current *tokenGroup
	)

	open := func(line int) *tokenGroup {
		if current == nil {
			groups = append(groups, tokenGroup{
				spec: PositionSpec{
					Required:    true,
					AnchorExact: NoAnchor,
					AnchorMin:   NoAnchor,
					AnchorMax:   NoAnchor,
				},
				line: line,
			})
			current = &groups[len(groups)-1]
		}
		return current
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			// Blank line closes the current position.
			current = nil

		case strings.HasPrefix(line, "#"):
			// Comment.

		case line == "?":
			open(lineNo).spec.Required = false

		case strings.HasPrefix(line, "%"):
			name := line[1:]
			if name == "" {
				return nil, newConfigError(ErrCodeMalformedToken, lineNo, NoAnchor,
					"wildcard reference %q is missing a set name", line)
			}
			open(lineNo).spec.Wildcards = append(open(lineNo).spec.Wildcards, name)

		case strings.HasPrefix(line, "^"):
			exact, lo, hi, word, err := parseAnchor(line, lineNo)
			if err != nil {
				return nil, err
			}
			g := open(lineNo)
			if g.spec.AnchorExact != NoAnchor || g.spec.AnchorMin != NoAnchor ||
				g.spec.AnchorMax != NoAnchor {
				return nil, newConfigError(ErrCodeMalformedToken, lineNo, NoAnchor,
					"position already carries an anchor; one anchor per position")
			}
			g.spec.AnchorExact = exact
			g.spec.AnchorMin = lo
			g.spec.AnchorMax = hi
			g.spec.Alternatives = append(g.spec.Alternatives, word)

		default:
			open(lineNo).spec.Alternatives = append(open(lineNo).spec.Alternatives, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read token list: %w", err)
	}

	return groups, nil
}

// parseAnchor parses "^N^word" (exact), "^N+^word" (at-or-after), and
// "^N,M^word" (bounded range, inclusive). Slots are 1-based in the file,
// returned 0-based. Unused constraints come back as NoAnchor.
func parseAnchor(line string, lineNo int) (exact, lo, hi int, word string, err error) {
	exact, lo, hi = NoAnchor, NoAnchor, NoAnchor

	rest := line[1:]
	end := strings.Index(rest, "^")
	if end <= 0 {
		return exact, lo, hi, "", newConfigError(ErrCodeMalformedToken, lineNo, NoAnchor,
			"anchor %q is not of the form ^N^word, ^N+^word, or ^N,M^word", line)
	}

	slot := func(part string) (int, error) {
		n, convErr := strconv.Atoi(part)
		if convErr != nil || n < 1 {
			return 0, newConfigError(ErrCodeMalformedToken, lineNo, NoAnchor,
				"anchor %q has invalid slot number %q (slots are 1-based)", line, part)
		}
		return n - 1, nil
	}

	numPart := rest[:end]
	switch {
	case strings.HasSuffix(numPart, "+"):
		if lo, err = slot(strings.TrimSuffix(numPart, "+")); err != nil {
			return exact, NoAnchor, hi, "", err
		}
	case strings.Contains(numPart, ","):
		loPart, hiPart, _ := strings.Cut(numPart, ",")
		if lo, err = slot(loPart); err != nil {
			return exact, NoAnchor, hi, "", err
		}
		if hi, err = slot(hiPart); err != nil {
			return exact, NoAnchor, NoAnchor, "", err
		}
		if hi < lo {
			return exact, NoAnchor, NoAnchor, "", newConfigError(ErrCodeMalformedToken, lineNo, NoAnchor,
				"anchor %q has an empty slot range %d,%d", line, lo+1, hi+1)
		}
	default:
		if exact, err = slot(numPart); err != nil {
			return NoAnchor, lo, hi, "", err
		}
	}

	word = rest[end+1:]
	if word == "" {
		return NoAnchor, NoAnchor, NoAnchor, "", newConfigError(ErrCodeMalformedToken, lineNo, NoAnchor,
			"anchor %q is missing a token after the closing ^", line)
	}

	return exact, lo, hi, word, nil
}

// resolve orders groups into their final slots and validates every anchor.
//
// Exact-anchored groups claim their pinned slot first; the remaining groups
// fill the free slots in file order. At-or-after anchors are checked against
// the slot each group actually lands in.
func resolve(groups []tokenGroup) ([]PositionSpec, error) {
	n := len(groups)
	if n == 0 {
		return nil, newConfigError(ErrCodeEmptyPosition, 0, NoAnchor,
			"token list defines no positions")
	}

	for _, g := range groups {
		if len(g.spec.Alternatives) == 0 && len(g.spec.Wildcards) == 0 {
			return nil, newConfigError(ErrCodeEmptyPosition, g.line, NoAnchor,
				"position has no alternatives and no wildcard sets")
		}
	}

	resolved := make([]*tokenGroup, n)

	// Pass 1: place exact anchors.
	for i := range groups {
		g := &groups[i]
		if g.spec.AnchorExact == NoAnchor {
			continue
		}
		slot := g.spec.AnchorExact
		if slot >= n {
			return nil, newConfigError(ErrCodeAnchorOutOfRange, g.line, slot,
				"anchor slot %d exceeds configured length %d", slot+1, n)
		}
		if resolved[slot] != nil {
			return nil, newConfigError(ErrCodeConflictingAnchors, g.line, slot,
				"two positions are pinned to slot %d (lines %d and %d)",
				slot+1, resolved[slot].line, g.line)
		}
		resolved[slot] = g
	}

	// Pass 2: fill free slots in file order.
	free := 0
	for i := range groups {
		g := &groups[i]
		if g.spec.AnchorExact != NoAnchor {
			continue
		}
		for resolved[free] != nil {
			free++
		}
		if g.spec.AnchorMin != NoAnchor {
			if g.spec.AnchorMin >= n {
				return nil, newConfigError(ErrCodeAnchorOutOfRange, g.line, g.spec.AnchorMin,
					"anchor slot %d exceeds configured length %d", g.spec.AnchorMin+1, n)
			}
			if free < g.spec.AnchorMin {
				return nil, newConfigError(ErrCodeConflictingAnchors, g.line, free,
					"position must land at slot %d or later but resolves to slot %d",
					g.spec.AnchorMin+1, free+1)
			}
		}
		if g.spec.AnchorMax != NoAnchor {
			if g.spec.AnchorMax >= n {
				return nil, newConfigError(ErrCodeAnchorOutOfRange, g.line, g.spec.AnchorMax,
					"anchor slot %d exceeds configured length %d", g.spec.AnchorMax+1, n)
			}
			if free > g.spec.AnchorMax {
				return nil, newConfigError(ErrCodeConflictingAnchors, g.line, free,
					"position must land at slot %d or earlier but resolves to slot %d",
					g.spec.AnchorMax+1, free+1)
			}
		}
		resolved[free] = g
	}

	specs := make([]PositionSpec, n)
	for i, g := range resolved {
		spec := g.spec
		if !spec.Required {
			// Optional positions carry the empty string as a final
			// alternative so cardinality stays explicit.
			spec.Alternatives = append(append([]string{}, spec.Alternatives...), "")
		}
		specs[i] = spec
	}

	return specs, nil
}
