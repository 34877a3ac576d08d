package numfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSectionsBasic(t *testing.T) {
	assert.Equal(t, []string{"0.00", "-0.00", "-", "@"}, splitSections(`0.00;-0.00;-;@`))
}

func TestSplitSectionsQuotedSemicolon(t *testing.T) {
	sections := splitSections(`0.00"a;b";-0.00`)
	assert.Equal(t, []string{`0.00"a;b"`, `-0.00`}, sections)
}

func TestSplitSectionsEscapedSemicolon(t *testing.T) {
	sections := splitSections(`0.00\;-0.00`)
	assert.Len(t, sections, 1)
}

func TestTokenizeSectionQuotedAndBracket(t *testing.T) {
	toks := tokenizeSection(`[Red]0.00" USD"`)
	assert.Equal(t, "Red", toks[0].Code)
	assert.Equal(t, 0, toks[0].BracketIndex)
	assert.False(t, toks[0].Quoted)

	last := toks[len(toks)-1]
	assert.True(t, last.Quoted)
	assert.Equal(t, " USD", last.Code)
}

func TestTokenizeSectionBackslashEscape(t *testing.T) {
	toks := tokenizeSection(`0\%`)
	assert.Len(t, toks, 2)
	assert.Equal(t, "0", toks[0].Code)
	assert.True(t, toks[1].Quoted)
	assert.Equal(t, "%", toks[1].Code)
}

func TestTokenizeSectionScientificMarkerNeverMerges(t *testing.T) {
	toks := tokenizeSection("0E+00")
	var sciCount int
	for _, tok := range toks {
		if tok.Scientific {
			sciCount++
			assert.Equal(t, "E+", tok.Code)
		}
	}
	assert.Equal(t, 1, sciCount)
	// the marker must stand alone, never merged into a neighboring run
	for _, tok := range toks {
		if !tok.Scientific {
			assert.NotContains(t, tok.Code, "E+")
		}
	}
}

func TestTokenizeSectionUnterminatedQuoteTolerated(t *testing.T) {
	toks := tokenizeSection(`0"abc`)
	assert.Equal(t, "0", toks[0].Code)
	assert.True(t, toks[1].Quoted)
	assert.Equal(t, "abc", toks[1].Code)
}

func TestMergeTokensAdjacentSameClass(t *testing.T) {
	toks := tokenizeSection("###,,##0")
	// everything here is unquoted, unbracketed, non-scientific: must merge
	// into a single token.
	assert.Len(t, toks, 1)
	assert.Equal(t, "###,,##0", toks[0].Code)
}

func TestMergeTokensBracketsDoNotMergeAcrossLiterals(t *testing.T) {
	toks := tokenizeSection(`[Red]abc[Blue]def`)
	assert.Len(t, toks, 4)
	assert.Equal(t, 0, toks[0].BracketIndex)
	assert.Equal(t, BracketNone, toks[1].BracketIndex)
	assert.Equal(t, 1, toks[2].BracketIndex)
	assert.Equal(t, BracketNone, toks[3].BracketIndex)
}
