package numfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFormat(t *testing.T, format, value string) string {
	t.Helper()
	pf, err := ParseFormat(format)
	require.NoError(t, err)
	res, err := Format(pf, RawValue{Kind: RawNumber, Raw: value}, Options{})
	require.NoError(t, err)
	return res.Text
}

func TestDecimalBasic(t *testing.T) {
	assert.Equal(t, "123.00", mustFormat(t, "0.00", "123"))
	assert.Equal(t, "-123.00", mustFormat(t, "0.00", "-123"))
}

func TestThousandsScaleAndPadding(t *testing.T) {
	assert.Equal(t, "1,234.568", mustFormat(t, "#####,,###########0.000,", "1234567.89"))
}

func TestTimeOfDay(t *testing.T) {
	assert.Equal(t, "06:00 PM", mustFormat(t, "hh:mm AM/PM", "0.75"))
	assert.Equal(t, "18:00 AM/PM", mustFormat(t, `hh:mm" AM/PM"`, "0.75"))
}

func TestFractionNegative(t *testing.T) {
	assert.Equal(t, "-81/40", mustFormat(t, "0/0", "-2.025"))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, "12.00%", mustFormat(t, "0.00%", "0.12"))
	assert.Equal(t, "0.12%", mustFormat(t, `0.00"%"`, "0.12"))
}

func TestLeadingSpacesPreserved(t *testing.T) {
	assert.Equal(t, "      1st 50", mustFormat(t, ` [red]   [=-50]  "1st "0;"2nd "0`, "-50"))
}

func TestFractionSmallPercent(t *testing.T) {
	assert.Equal(t, "1/2%", mustFormat(t, "0/0%", "0.005"))
}

func TestConditionTextBranch(t *testing.T) {
	pf, err := ParseFormat(`[<0]0;"["@"]"`)
	require.NoError(t, err)

	res, err := Format(pf, RawValue{Kind: RawNumber, Raw: "0"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "[0]", res.Text)

	res, err = Format(pf, RawValue{Kind: RawText, Raw: "test"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "test", res.Text)
}

func TestGeneralRoundTrip(t *testing.T) {
	assert.Equal(t, "123.456", formatGeneral("123.456"))
	assert.Equal(t, "42", formatGeneral("42"))
	assert.Equal(t, "100", formatGeneral("1E+02"))
}

func TestNumericalPaddingRule(t *testing.T) {
	assert.Equal(t, "007", padNumericLeft("7", "000"))
	assert.Equal(t, "  7", padNumericLeft("7", "???"))
	assert.Equal(t, "7", padNumericLeft("7", "###"))
	assert.Equal(t, "12345", padNumericLeft("12345", "00"))
}
