package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/seedcomb/internal/oracle"
	"github.com/roach88/seedcomb/internal/space"
)

func writePlan(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const yamlPlan = `
kind: password
tokens:
  inline: |
    secret
    hunter2

    123
    1234
budget:
  typos: 1
typos:
  case_change: true
oracle:
  type: "null"
`

func TestLoad_YAMLPlan(t *testing.T) {
	p, err := Load(writePlan(t, "plan.yaml", yamlPlan))
	require.NoError(t, err)

	assert.Equal(t, "password", p.Kind)
	assert.Equal(t, 1, p.Budget.Typos)
	assert.True(t, p.Typos.CaseChange)

	s, err := p.BuildSpace()
	require.NoError(t, err)
	assert.Equal(t, space.KindPassword, s.Kind())
	assert.Equal(t, 2, s.Positions())

	o, err := p.BuildOracle()
	require.NoError(t, err)
	assert.Equal(t, "null", o.Name())
}

func TestBuildSpace_TotalBudgetCapsCombinedMutations(t *testing.T) {
	const uncapped = `
kind: password
tokens:
  inline: |
    a
    b
    %d

    x
    y
wildcards:
  sets:
    d: ["0", "1"]
budget:
  typos: 1
  wildcards: 1
typos:
  case_change: true
oracle:
  type: "null"
`
	capped := strings.Replace(uncapped, "  wildcards: 1\n", "  wildcards: 1\n  total: 1\n", 1)

	pu, err := Load(writePlan(t, "plan.yaml", uncapped))
	require.NoError(t, err)
	pc, err := Load(writePlan(t, "plan.yaml", capped))
	require.NoError(t, err)
	assert.Equal(t, 0, pu.Budget.Total)
	assert.Equal(t, 1, pc.Budget.Total)

	su, err := pu.BuildSpace()
	require.NoError(t, err)
	sc, err := pc.BuildSpace()
	require.NoError(t, err)

	// total: 1 forbids a typo and a wildcard on the same candidate, so
	// the capped space is a strict subset.
	assert.Equal(t, -1, sc.Cardinality().Cmp(su.Cardinality()))
}

func TestLoad_CUEPlan(t *testing.T) {
	p, err := Load(writePlan(t, "plan.cue", `
kind: "seed"
tokens: file: "tokens.txt"
budget: swaps: 2
oracle: {
	type: "seed"
	seed: xpub: "xpub-placeholder"
}
`))
	require.NoError(t, err)

	assert.Equal(t, "seed", p.Kind)
	assert.Equal(t, "tokens.txt", p.Tokens.File)
	assert.Equal(t, 2, p.Budget.Swaps)
	assert.Equal(t, "seed", p.Oracle.Type)
	assert.Equal(t, "xpub-placeholder", p.Oracle.Seed.Xpub)
}

func TestLoad_RelativeTokenFileResolvesAgainstPlanDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tokens.txt"),
		[]byte("alpha\nbeta\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plan.yaml"), []byte(`
kind: password
tokens:
  file: tokens.txt
oracle:
  type: "null"
`), 0o644))

	p, err := Load(filepath.Join(dir, "plan.yaml"))
	require.NoError(t, err)

	s, err := p.BuildSpace()
	require.NoError(t, err)
	assert.Equal(t, 1, s.Positions())
}

func TestLoad_PBKDF2Oracle(t *testing.T) {
	p, err := Load(writePlan(t, "plan.yaml", `
kind: password
tokens:
  inline: "password"
oracle:
  type: pbkdf2
  pbkdf2:
    salt: "73616c74"
    iterations: 1
    hash: sha1
    expected: "0c60c80f961f0e71f3a9b524af6012062fe037a6"
`))
	require.NoError(t, err)

	o, err := p.BuildOracle()
	require.NoError(t, err)
	assert.Equal(t, "pbkdf2", o.Name())
	assert.Equal(t, oracle.CostModerate, o.CostHint())
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		body string
		code string
	}{
		{
			name: "missing kind",
			body: "tokens: {inline: x}\noracle: {type: \"null\"}",
			code: ErrCodeMissingField,
		},
		{
			name: "unknown kind",
			body: "kind: pin\ntokens: {inline: x}\noracle: {type: \"null\"}",
			code: ErrCodeBadValue,
		},
		{
			name: "both token sources",
			body: "kind: password\ntokens: {inline: x, file: y}\noracle: {type: \"null\"}",
			code: ErrCodeMissingField,
		},
		{
			name: "no oracle type",
			body: "kind: password\ntokens: {inline: x}",
			code: ErrCodeMissingField,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writePlan(t, "plan.yaml", tc.body))
			var pe *PlanError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tc.code, pe.Code)
		})
	}
}

func TestLoad_UnknownExtension(t *testing.T) {
	_, err := Load(writePlan(t, "plan.toml", "kind = 'password'"))
	var pe *PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrCodeUnknownForm, pe.Code)
}

func TestLoad_BadHexInPBKDF2Target(t *testing.T) {
	p, err := Load(writePlan(t, "plan.yaml", `
kind: password
tokens:
  inline: "x"
oracle:
  type: pbkdf2
  pbkdf2:
    salt: "zz"
    iterations: 10
    expected: "00"
`))
	require.NoError(t, err)

	_, err = p.BuildOracle()
	var pe *PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrCodeBadValue, pe.Code)
}
