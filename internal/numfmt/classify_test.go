package numfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifyRaw(t *testing.T, format string) []rawSection {
	t.Helper()
	rawSections := splitSections(format)
	tokenized := make([][]Token, len(rawSections))
	for i, s := range rawSections {
		tokenized[i] = tokenizeSection(s)
	}
	return classify(tokenized)
}

func TestClassifyOneSectionIsDefaultNumberPlusSynthesizedText(t *testing.T) {
	out := classifyRaw(t, "0.00")
	require.Len(t, out, 2)
	assert.Equal(t, PurposeDefaultNumber, out[0].Purpose.Kind)
	assert.Equal(t, PurposeDefaultText, out[1].Purpose.Kind)
}

func TestClassifyOneSectionTextOnly(t *testing.T) {
	out := classifyRaw(t, "@")
	require.Len(t, out, 2)
	assert.Equal(t, PurposeDefaultText, out[0].Purpose.Kind)
	assert.Equal(t, PurposeDefaultNumber, out[1].Purpose.Kind)
}

func TestClassifyTwoSectionsImplicitPositiveNegative(t *testing.T) {
	out := classifyRaw(t, "0.00;-0.00")
	require.Len(t, out, 4)
	assert.Equal(t, PurposeCondition, out[0].Purpose.Kind)
	assert.Equal(t, OpGT, out[0].Purpose.Op)
	assert.Equal(t, PurposeCondition, out[1].Purpose.Kind)
	assert.Equal(t, OpLT, out[1].Purpose.Op)
	assert.Equal(t, 0, out[1].Purpose.Operand)
	assert.Equal(t, PurposeDefaultNumber, out[2].Purpose.Kind)
}

func TestClassifyTwoSectionsExplicitCondition(t *testing.T) {
	out := classifyRaw(t, `[=-50]0;"2nd "0`)
	require.Len(t, out, 3)
	assert.Equal(t, PurposeCondition, out[0].Purpose.Kind)
	assert.Equal(t, OpEQ, out[0].Purpose.Op)
	assert.Equal(t, -50, out[0].Purpose.Operand)
	assert.Equal(t, PurposeDefaultNumber, out[1].Purpose.Kind)
}

func TestClassifyThreeSectionsImplicit(t *testing.T) {
	out := classifyRaw(t, "0.00;-0.00;0.00")
	require.Len(t, out, 5)
	assert.Equal(t, OpGT, out[0].Purpose.Op)
	assert.Equal(t, OpLT, out[1].Purpose.Op)
	assert.Equal(t, OpEQ, out[2].Purpose.Op)
}

func TestClassifyFourSectionsTrailingText(t *testing.T) {
	out := classifyRaw(t, "0.00;-0.00;0.00;@")
	require.Len(t, out, 5)
	assert.Equal(t, PurposeDefaultText, out[3].Purpose.Kind)
}

func TestClassifyConditionParsing(t *testing.T) {
	cases := []struct {
		code    string
		wantOp  Op
		wantVal int
	}{
		{">1000", OpGT, 1000},
		{"<=-5", OpLE, -5},
		{"<>0", OpNE, 0},
		{">=10", OpGE, 10},
		{"=-50", OpEQ, -50},
	}
	for _, c := range cases {
		op, val, ok := parseCondition(c.code)
		require.True(t, ok, c.code)
		assert.Equal(t, c.wantOp, op, c.code)
		assert.Equal(t, c.wantVal, val, c.code)
	}
}

// Every classification is exhaustive: some section always matches any
// (value, isText) pair, for every shape covered above.
func TestClassifyAlwaysExhaustive(t *testing.T) {
	formats := []string{
		"0.00",
		"@",
		"0.00;-0.00",
		`[=-50]0;"2nd "0`,
		"0.00;-0.00;0.00",
		"0.00;-0.00;0.00;@",
	}
	values := []float64{-10, 0, 10}
	for _, f := range formats {
		pf, err := ParseFormat(f)
		require.NoError(t, err, f)
		for _, v := range values {
			_, ok := pf.Select(v, false)
			assert.True(t, ok, "format %q value %v", f, v)
		}
		_, ok := pf.Select(0, true)
		assert.True(t, ok, "format %q text value", f)
	}
}
