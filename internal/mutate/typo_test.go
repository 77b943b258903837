package mutate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectTypos(t *testing.T, c TypoConfig, value string) []string {
	t.Helper()
	n := c.TypoCount(value)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		v, err := c.TypoAt(value, i)
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func TestTypoCount_Delete(t *testing.T) {
	c := TypoConfig{Delete: true}
	assert.Equal(t, 3, c.TypoCount("abc"))
	assert.Equal(t, []string{"bc", "ac", "ab"}, collectTypos(t, c, "abc"))
}

func TestTypoCount_Insert(t *testing.T) {
	c := TypoConfig{Insert: true, Charset: []rune("xy")}
	// 3 gaps x 2 chars
	assert.Equal(t, 6, c.TypoCount("ab"))
	assert.Equal(t,
		[]string{"xab", "yab", "axb", "ayb", "abx", "aby"},
		collectTypos(t, c, "ab"))
}

func TestTypoCount_ReplaceExcludesIdentity(t *testing.T) {
	c := TypoConfig{Replace: true, Charset: []rune("ab")}
	// position 0 ('a' in charset): only 'b'; position 1 ('c' not in charset): 'a','b'
	assert.Equal(t, 3, c.TypoCount("ac"))
	assert.Equal(t, []string{"bc", "aa", "ab"}, collectTypos(t, c, "ac"))
}

func TestTypoCount_TransposeSkipsEqualPairs(t *testing.T) {
	c := TypoConfig{Transpose: true}
	assert.Equal(t, 1, c.TypoCount("aab"))
	assert.Equal(t, []string{"aba"}, collectTypos(t, c, "aab"))
}

func TestTypoCount_CaseChange(t *testing.T) {
	c := TypoConfig{CaseChange: true}
	// '1' has no case counterpart
	assert.Equal(t, 2, c.TypoCount("a1B"))
	assert.Equal(t, []string{"A1B", "a1b"}, collectTypos(t, c, "a1B"))
}

func TestTypoCount_FamilyOrderFixed(t *testing.T) {
	c := TypoConfig{CaseChange: true, Delete: true, Transpose: true}
	// case variants first, then deletes, then transposes
	assert.Equal(t,
		[]string{"Ab", "aB", "b", "a", "ba"},
		collectTypos(t, c, "ab"))
}

func TestTypoCount_MatchesEnumeration(t *testing.T) {
	configs := []TypoConfig{
		{CaseChange: true},
		{Delete: true},
		{Insert: true, Charset: []rune("abc")},
		{Replace: true, Charset: []rune("abc")},
		{Transpose: true},
		{CaseChange: true, Delete: true, Insert: true, Replace: true, Transpose: true, Charset: []rune("ab1")},
	}
	values := []string{"", "a", "ab", "aba", "Pass1"}

	for _, c := range configs {
		for _, v := range values {
			n := c.TypoCount(v)
			variants := collectTypos(t, c, v)
			assert.Len(t, variants, n, "config %+v value %q", c, v)

			// Out-of-range index is an error, not a panic.
			_, err := c.TypoAt(v, n)
			assert.Error(t, err)
		}
	}
}
