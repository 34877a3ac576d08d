package numfmt

import (
	"regexp"
	"strings"
)

// analyze walks a classified section's tokens and derives the semantic
// metadata the Value Formatter needs: kind, decimal/fraction/scientific
// field patterns, thousands scaling, the percentage flag, and (for
// date/time sections) the translated strftime-equivalent code.
func analyze(rs rawSection) Section {
	sec := Section{
		Tokens:       rs.Tokens,
		Purpose:      rs.Purpose,
		PrependMinus: rs.Purpose.admitsNegative() && rs.Purpose.admitsPositive(),
	}

	if isDatetimeSection(rs.Tokens) {
		sec.Emit = prepareTokens(rs.Tokens)
		analyzeDatetime(&sec)
		sec.PrependMinus = false // date sections never prepend a sign
		return sec
	}

	if isTextSection(rs.Tokens) && !isNumberSection(rs.Tokens) {
		sec.Kind = KindText
		sec.Emit = rs.Tokens
		return sec
	}

	analyzeNumeric(&sec)
	return sec
}

// isDatetimeSection reports whether any non-quoted, non-bracketed token
// (case-insensitively) contains a date/time character.
func isDatetimeSection(tokens []Token) bool {
	for _, t := range tokens {
		if t.Quoted || t.BracketIndex != BracketNone {
			continue
		}
		if containsAny(strings.ToLower(t.Code), "ymdhsa") {
			return true
		}
	}
	return false
}

// currencyRe matches a bracketed currency-prefix marker, e.g. "$-409".
var currencyRe = regexp.MustCompile(`^\$([^-]*)-([0-9A-Fa-f]+)$`)

func analyzeDatetime(sec *Section) {
	sec.Kind = KindDatetime
	has12h := false
	for _, t := range sec.Tokens {
		if t.Quoted || t.BracketIndex != BracketNone {
			continue
		}
		if containsAny(strings.ToLower(t.Code), "a") {
			has12h = true
		}
	}
	sec.Is24Hour = !has12h

	var code strings.Builder
	hasDate, hasTime := false, false
	for _, t := range sec.Tokens {
		switch {
		case t.Quoted:
			continue
		case t.BracketIndex != BracketNone:
			continue
		default:
			translated := translateDateCode(t.Code, sec.Is24Hour)
			code.WriteString(translated)
			if containsAny(translated, "YyFMnlDjd") {
				hasDate = true
			}
			if containsAny(translated, "HGhis") || strings.Contains(translated, "A") {
				hasTime = true
			}
		}
	}
	sec.DatetimeCode = code.String()
	switch {
	case hasDate && hasTime:
		sec.DatetimeKind = DatetimeDateTime
	case hasDate:
		sec.DatetimeKind = DatetimeDate
	case hasTime:
		sec.DatetimeKind = DatetimeTime
	default:
		sec.DatetimeKind = DatetimeNone
	}
}

func analyzeNumeric(sec *Section) {
	// underscore/asterisk directives and currency-prefix stripping are
	// applied to a working copy of the tokens before field extraction.
	tokens := prepareTokens(sec.Tokens)
	sec.Emit = tokens

	hasFraction := false
	for _, t := range tokens {
		if t.Quoted || t.BracketIndex != BracketNone {
			continue
		}
		if strings.ContainsRune(t.Code, '/') {
			hasFraction = true
			break
		}
	}

	if hasFraction {
		sec.Kind = KindFraction
		extractFraction(sec, tokens)
	} else {
		sec.Kind = KindDecimal
		extractDecimal(sec, tokens)
		if sec.ExponentPattern != "" {
			sec.Kind = KindScientific
		}
	}

	for _, t := range tokens {
		if t.Quoted || t.BracketIndex != BracketNone {
			continue
		}
		if strings.ContainsRune(t.Code, '%') {
			sec.Percentage = true
		}
	}

	trailingLeft, trailingRight := countTrailingCommas(sec.DecimalLeft), countTrailingCommas(sec.DecimalRight)
	sec.ThousandsScale = trailingLeft + trailingRight
	sec.DecimalLeft = strings.TrimRight(sec.DecimalLeft, ",")
	sec.DecimalRight = strings.TrimRight(sec.DecimalRight, ",")

	trimmed := strings.Trim(sec.DecimalLeft, ",")
	if strings.Contains(trimmed, ",") {
		sec.UseThousandsSep = true
	}
}

// prepareTokens applies the underscore (space-of-width) and asterisk (fill,
// ignored) directives, and replaces a "$<text>-<hex>" bracketed currency
// marker with its extracted text as a quoted token.
func prepareTokens(in []Token) []Token {
	out := make([]Token, 0, len(in))
	for _, t := range in {
		switch {
		case t.BracketIndex != BracketNone:
			if m := currencyRe.FindStringSubmatch(t.Code); m != nil {
				out = append(out, Token{Code: m[1], Quoted: true, BracketIndex: BracketNone})
				continue
			}
			if strings.HasPrefix(t.Code, "$") {
				out = append(out, Token{Code: t.Code[1:], Quoted: true, BracketIndex: BracketNone})
				continue
			}
			out = append(out, t) // discarded later (color/condition)
		case !t.Quoted:
			out = append(out, Token{Code: stripDirectives(t.Code), Quoted: false, BracketIndex: BracketNone, Scientific: t.Scientific})
		default:
			out = append(out, t)
		}
	}
	return out
}

func stripDirectives(code string) string {
	runes := []rune(code)
	var sb strings.Builder
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '_':
			if i+1 < len(runes) {
				sb.WriteRune(' ') // a trailing '_' with no width character yields nothing
			}
			i++ // skip the width character
		case '*':
			i++ // skip the fill character; the fill itself is ignored (no column width)
		default:
			sb.WriteRune(runes[i])
		}
	}
	return sb.String()
}

func countTrailingCommas(s string) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == ','; i-- {
		n++
	}
	return n
}

// extractDecimal walks tokens left to right, accumulating 0#?, characters
// into decimal_left/decimal_right (split by the first unquoted, unbracketed
// '.'), and digit characters following a scientific_marker into
// exponent_pattern.
func extractDecimal(sec *Section, tokens []Token) {
	var left, right, exp strings.Builder
	seenDot := false
	inExp := false
	for _, t := range tokens {
		if t.Quoted || t.BracketIndex != BracketNone {
			continue
		}
		if t.Scientific {
			inExp = true
			continue
		}
		for _, ch := range t.Code {
			switch {
			case ch == '.' && !seenDot:
				seenDot = true
			case inExp:
				if strings.ContainsRune("0#?+-", ch) {
					exp.WriteRune(ch)
				}
			case strings.ContainsRune("0#?,", ch):
				if seenDot {
					right.WriteRune(ch)
				} else {
					left.WriteRune(ch)
				}
			}
		}
	}
	sec.DecimalLeft, sec.DecimalRight, sec.ExponentPattern = left.String(), right.String(), exp.String()
}

// extractFraction walks tokens character by character, splitting the
// whole-value pattern, numerator (decimal_left) and denominator
// (decimal_right) around the first unquoted, unbracketed '/'.
func extractFraction(sec *Section, tokens []Token) {
	var pre, denom strings.Builder
	sawSlash := false
	for _, t := range tokens {
		if t.Quoted || t.BracketIndex != BracketNone {
			continue
		}
		for _, ch := range t.Code {
			switch {
			case ch == '/' && !sawSlash:
				sawSlash = true
			case sawSlash:
				if strings.ContainsRune("0123456789#?", ch) {
					denom.WriteRune(ch)
				} else {
					sawSlash = false // non-format char ends the fraction tail
				}
			case strings.ContainsRune("0#?", ch):
				pre.WriteRune(ch)
			case ch == ',' || ch == '.':
				// ignored within fraction sections
			}
		}
	}
	full := pre.String()
	// Split the pre-slash run: when a non-format character separates runs of
	// 0#? characters, the first run becomes the whole-value pattern and the
	// later runs together the numerator pattern. Since non-format characters
	// were not collected into `pre`, the tokens are re-scanned for the break.
	sec.WholePattern, sec.DecimalLeft = splitWholeFromNumerator(tokens, full)
	sec.DecimalRight = denom.String()
}

// splitWholeFromNumerator re-scans the raw tokens to find the first
// non-format break between two runs of 0#? characters that precede the
// '/', using that break to separate whole_values_pattern from the
// numerator pattern. With no break, the whole run is numerator only.
func splitWholeFromNumerator(tokens []Token, numOnly string) (whole, numerator string) {
	var runs []string
	var cur strings.Builder
	sawSlash := false
	broke := false
	for _, t := range tokens {
		if t.Quoted || t.BracketIndex != BracketNone {
			continue
		}
		for _, ch := range t.Code {
			if ch == '/' {
				sawSlash = true
				break
			}
			if sawSlash {
				continue
			}
			if strings.ContainsRune("0#?", ch) {
				cur.WriteRune(ch)
			} else if cur.Len() > 0 {
				runs = append(runs, cur.String())
				cur.Reset()
				broke = true
			}
		}
		if sawSlash {
			break
		}
	}
	if cur.Len() > 0 {
		runs = append(runs, cur.String())
	}
	if !broke || len(runs) < 2 {
		return "", numOnly
	}
	return runs[0], strings.Join(runs[1:], "")
}
