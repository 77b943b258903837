package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SinglePosition(t *testing.T) {
	specs, err := Parse(strings.NewReader("alpha\nbeta\n"))
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, []string{"alpha", "beta"}, specs[0].Alternatives)
	assert.True(t, specs[0].Required)
}

func TestParse_BlankLineSeparatesPositions(t *testing.T) {
	input := "a\nb\n\nx\ny\n"
	specs, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, []string{"a", "b"}, specs[0].Alternatives)
	assert.Equal(t, []string{"x", "y"}, specs[1].Alternatives)
}

func TestParse_CommentsIgnored(t *testing.T) {
	input := "# first position\nalpha\n# trailing comment\n"
	specs, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, []string{"alpha"}, specs[0].Alternatives)
}

func TestParse_OptionalPositionAppendsEmptyAlternative(t *testing.T) {
	input := "alpha\n?\n"
	specs, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.False(t, specs[0].Required)
	assert.Equal(t, []string{"alpha", ""}, specs[0].Alternatives)
	assert.Equal(t, 2, specs[0].Cardinality())
}

func TestParse_WildcardReference(t *testing.T) {
	input := "pass\n%digits\n"
	specs, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, []string{"digits"}, specs[0].Wildcards)
}

func TestParse_ExactAnchorMovesPosition(t *testing.T) {
	// Third block pinned to slot 1 pushes the second block to slot 3.
	input := "a\n\nb\n\n^2^pinned\n"
	specs, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, specs, 3)
	assert.Equal(t, []string{"a"}, specs[0].Alternatives)
	assert.Equal(t, []string{"pinned"}, specs[1].Alternatives)
	assert.Equal(t, []string{"b"}, specs[2].Alternatives)
}

func TestParse_AtOrAfterAnchorSatisfied(t *testing.T) {
	input := "a\n\n^2+^late\n"
	specs, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, []string{"late"}, specs[1].Alternatives)
}

func TestParse_AtOrAfterAnchorViolated(t *testing.T) {
	// Only slot 0 is free for the anchored block, but it demands slot >= 2.
	input := "^3+^early\n\na\n\nb\n"
	// "early" is the first free-fill group and lands at slot 0.
	_, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeConflictingAnchors, ce.Code)
}

func TestParse_BoundedRangeAnchorSatisfied(t *testing.T) {
	input := "a\n\n^2,3^mid\n\nb\n"
	specs, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, specs, 3)
	assert.Equal(t, []string{"mid"}, specs[1].Alternatives)
	assert.Equal(t, 1, specs[1].AnchorMin)
	assert.Equal(t, 2, specs[1].AnchorMax)
}

func TestParse_BoundedRangeAnchorViolated(t *testing.T) {
	// The ranged block is the third free-fill group and lands at slot 3,
	// past its allowed slots 1 through 2.
	input := "a\n\nb\n\n^1,2^x\n"
	_, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeConflictingAnchors, ce.Code)
}

func TestParse_ConflictingExactAnchors(t *testing.T) {
	input := "^1^first\n\n^1^second\n"
	_, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeConflictingAnchors, ce.Code)
	assert.Equal(t, 0, ce.Slot)
}

func TestParse_AnchorBeyondLength(t *testing.T) {
	input := "^5^word\n\na\n"
	_, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeAnchorOutOfRange, ce.Code)
}

func TestParse_MalformedAnchorSyntax(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"missing closing caret", "^2word\n"},
		{"missing word", "^2^\n"},
		{"non-numeric slot", "^x^word\n"},
		{"zero slot", "^0^word\n"},
		{"double anchor in block", "^1^a\n^2^b\n"},
		{"empty slot range", "^3,2^word\n"},
		{"non-numeric range bound", "^1,x^word\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.input))
			require.Error(t, err)
			assert.True(t, IsConfigError(err), "expected ConfigError, got %v", err)
		})
	}
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	require.Error(t, err)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeEmptyPosition, ce.Code)
}

func TestParse_Deterministic(t *testing.T) {
	input := "a\nb\n\n^1^pin\n\nc\n"
	first, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	second, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
