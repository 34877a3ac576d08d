package numfmt

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// BaseDate is UTC midnight 1899-12-31. Serial 1 lands on 1900-01-01; the
// phantom leap day at serial 60 (1900-02-29, which never existed) is
// compensated for separately in serialToTime.
var BaseDate = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)

// RawKind tags whether a raw cell datum should be treated as numeric or as
// opaque text for section-selection purposes.
type RawKind int

const (
	RawNumber RawKind = iota
	RawText
)

// RawValue is the tagged union cell values arrive as: a decimal string that
// may be coerced to float64, or text that never is.
type RawValue struct {
	Kind RawKind
	Raw  string
}

// Options controls the short-circuits and overrides the Value Formatter
// supports, mirroring the reader's Config surface.
type Options struct {
	ReturnUnformatted       bool
	ReturnPercentageDecimal bool
	ReturnDateTimeObjects   bool
	ForceDateFormat         string
	ForceTimeFormat         string
	ForceDateTimeFormat     string
}

// Result is what applying a ParsedFormat to a RawValue produces: the
// display string, and, for date/time sections when requested, the decoded
// time.
type Result struct {
	Text   string
	Time   time.Time
	IsTime bool
}

// Format applies pf to rv under opts. Per the error-handling design, a
// non-numeric raw value where a numeric one was expected is never an error:
// the formatter passes the raw text through unchanged.
func Format(pf *ParsedFormat, rv RawValue, opts Options) (Result, error) {
	isText := rv.Kind == RawText
	var v float64
	if !isText {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(rv.Raw), 64)
		if err != nil {
			isText = true
		} else {
			v = parsed
		}
	}

	sec, _ := pf.Select(v, isText)

	if sec.Kind != KindText && sec.Kind != KindDatetime && sec.Percentage {
		if opts.ReturnPercentageDecimal {
			return Result{Text: rv.Raw}, nil
		}
		v *= 100
	}
	if !isText && opts.ReturnUnformatted {
		return Result{Text: strconv.FormatFloat(v, 'f', -1, 64)}, nil
	}

	switch sec.Kind {
	case KindDecimal, KindScientific:
		return Result{Text: formatDecimalOrScientific(sec, v)}, nil
	case KindFraction:
		return Result{Text: formatFraction(sec, v)}, nil
	case KindDatetime:
		return formatDatetime(sec, v, opts)
	case KindText:
		if isGeneralSection(sec) {
			return Result{Text: formatGeneral(rv.Raw)}, nil
		}
		return Result{Text: formatText(sec, rv.Raw)}, nil
	}
	return Result{Text: rv.Raw}, nil
}

func isGeneralSection(sec Section) bool {
	return len(sec.Tokens) == 0
}

// ── decimal / scientific ──────────────────────────────────────────────────

func formatDecimalOrScientific(sec Section, v float64) string {
	neg := v < 0
	v = math.Abs(v)

	if sec.Kind == KindScientific {
		return formatScientific(sec, v, neg)
	}

	for i := 0; i < sec.ThousandsScale; i++ {
		v /= 1000
	}

	decimals := len(sec.DecimalRight)
	// FormatFloat rounds exact ties to even; round them away from zero first.
	if r := math.Round(v*math.Pow10(decimals)) / math.Pow10(decimals); !math.IsInf(r, 0) && !math.IsNaN(r) {
		v = r
	}
	rounded := strconv.FormatFloat(v, 'f', decimals, 64)
	intPart, fracPart := rounded, ""
	if dot := strings.IndexByte(rounded, '.'); dot >= 0 {
		intPart, fracPart = rounded[:dot], rounded[dot+1:]
	}

	paddedInt := padNumericLeft(intPart, sec.DecimalLeft)
	paddedFrac := padFractionRight(fracPart, sec.DecimalRight)

	if sec.UseThousandsSep {
		paddedInt = insertThousandsSeparator(paddedInt)
	}
	if commaPrefix := leadingCommaRun(sec.DecimalLeft); commaPrefix != "" {
		paddedInt = commaPrefix + paddedInt
	}

	out := assembleDecimal(sec, paddedInt, paddedFrac, "")
	if sec.PrependMinus && neg {
		out = "-" + out
	}
	return out
}

func formatScientific(sec Section, v float64, neg bool) string {
	var e int
	if v != 0 && v < 1 {
		s := strconv.FormatFloat(v, 'f', 99, 64)
		dot := strings.IndexByte(s, '.')
		leading := 0
		for i := dot + 1; i < len(s) && s[i] == '0'; i++ {
			leading++
		}
		e = -(leading + 1)
	}
	digitsBefore := 1
	if v >= 1 {
		digitsBefore = len(strconv.FormatFloat(math.Trunc(v), 'f', 0, 64))
	}
	e += digitsBefore - len(sec.DecimalLeft)

	scaled := v * math.Pow(10, float64(-e))
	decimals := len(sec.DecimalRight)
	rounded := strconv.FormatFloat(scaled, 'f', decimals, 64)
	intPart, fracPart := rounded, ""
	if dot := strings.IndexByte(rounded, '.'); dot >= 0 {
		intPart, fracPart = rounded[:dot], rounded[dot+1:]
	}
	paddedInt := padNumericLeft(intPart, sec.DecimalLeft)
	paddedFrac := padFractionRight(fracPart, sec.DecimalRight)

	expAbs := e
	sign := "+"
	if expAbs < 0 {
		sign = "-"
		expAbs = -expAbs
	}
	expDigits := padNumericLeft(strconv.Itoa(expAbs), sec.ExponentPattern)

	out := assembleDecimal(sec, paddedInt, paddedFrac, sign+expDigits)
	if sec.PrependMinus && neg {
		out = "-" + out
	}
	return out
}

func assembleDecimal(sec Section, intPart, fracPart, expPart string) string {
	var sb strings.Builder
	seenDot := false
	for _, t := range sec.Emit {
		switch {
		case t.Quoted:
			sb.WriteString(t.Code)
		case t.BracketIndex != BracketNone:
			// colors/conditions carry no visible text
		case t.Scientific:
			if expPart != "" {
				if len(t.Code) > 1 && t.Code[1] == '-' && expPart[0] == '+' {
					expPart = expPart[1:] // an E- marker shows no sign for a non-negative exponent
				}
				sb.WriteString(t.Code[:1] + expPart)
			}
			expPart = "" // emitted once
		default:
			for _, ch := range t.Code {
				switch ch {
				case '0', '#', '?':
					// intPart/fracPart already carry grouping commas and
					// padding from padNumericLeft/padFractionRight; the
					// section's decimal point is what decides which one a
					// placeholder draws from, not which side runs dry first.
					if !seenDot {
						if intPart != "" {
							sb.WriteString(intPart)
							intPart = ""
						}
					} else if fracPart != "" {
						sb.WriteString(fracPart)
						fracPart = ""
					}
				case '.':
					sb.WriteByte('.')
					seenDot = true
				case '%':
					sb.WriteByte('%')
				case ',':
					// non-functional grouping comma already applied to intPart
				default:
					sb.WriteRune(ch)
				}
			}
		}
	}
	return sb.String()
}

// padNumericLeft implements the numerical-padding rule: pattern characters
// are consumed right-to-left against value digits right-to-left. '0' emits
// a digit or '0'; '?' emits a digit or a space; '#' emits a digit or
// nothing. Leftover value digits are prepended verbatim.
func padNumericLeft(value, pattern string) string {
	vi := len(value)
	var out []byte
	for pi := len(pattern) - 1; pi >= 0; pi-- {
		switch pattern[pi] {
		case '0':
			if vi > 0 {
				vi--
				out = append([]byte{value[vi]}, out...)
			} else {
				out = append([]byte{'0'}, out...)
			}
		case '?':
			if vi > 0 {
				vi--
				out = append([]byte{value[vi]}, out...)
			} else {
				out = append([]byte{' '}, out...)
			}
		case '#':
			if vi > 0 {
				vi--
				out = append([]byte{value[vi]}, out...)
			}
		default:
			// literal characters embedded in the pattern (e.g. leading commas
			// already stripped) are ignored here
		}
	}
	if vi > 0 {
		out = append([]byte(value[:vi]), out...)
	}
	return string(out)
}

// padFractionRight implements the fraction-padding rule: pattern characters
// are consumed left-to-right against the value's tail digits left-to-right.
func padFractionRight(value, pattern string) string {
	vi := 0
	var out []byte
	for pi := 0; pi < len(pattern); pi++ {
		switch pattern[pi] {
		case '0':
			if vi < len(value) {
				out = append(out, value[vi])
				vi++
			} else {
				out = append(out, '0')
			}
		case '?':
			if vi < len(value) {
				out = append(out, value[vi])
				vi++
			} else {
				out = append(out, ' ')
			}
		case '#':
			if vi < len(value) {
				out = append(out, value[vi])
				vi++
			}
		}
	}
	return string(out)
}

func leadingCommaRun(pattern string) string {
	i := 0
	for i < len(pattern) && pattern[i] == ',' {
		i++
	}
	return pattern[:i]
}

func insertThousandsSeparator(intPart string) string {
	n := len(intPart)
	if n <= 3 {
		return intPart
	}
	var b strings.Builder
	rem := n % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(intPart[:rem])
	for i := rem; i < n; i += 3 {
		sep := ","
		if intPart[i] == ' ' {
			sep = " "
		}
		b.WriteString(sep)
		b.WriteString(intPart[i : i+3])
	}
	return b.String()
}

// ── fraction ──────────────────────────────────────────────────────────────

func formatFraction(sec Section, v float64) string {
	neg := v < 0
	av := math.Abs(v)

	var whole, num, denom int64
	integral := av == math.Trunc(av)
	switch {
	case integral && sec.WholePattern == "":
		num, denom = int64(av), 1
	case integral && sec.WholePattern != "":
		whole, num, denom = int64(av), 0, 0
	default:
		whole, num, denom = approximateFraction(av, sec)
	}

	var sb strings.Builder
	skipWhole := whole == 0 && !strings.ContainsRune(sec.WholePattern, '0')
	skipFrac := num == 0 && denom == 0

	emitted := map[int]bool{}
	for i, t := range sec.Emit {
		switch {
		case t.Quoted:
			if quotedStraddlesSkip(sec.Emit, i, skipWhole, skipFrac) {
				continue
			}
			sb.WriteString(t.Code)
		case t.BracketIndex != BracketNone:
		default:
			for _, ch := range t.Code {
				switch ch {
				case '0', '#', '?':
					writeFractionDigit(&sb, sec, emitted, ch, whole, num, denom, skipWhole, skipFrac)
				default:
					sb.WriteRune(ch)
				}
			}
		}
	}
	out := sb.String()
	if sec.PrependMinus && neg {
		out = "-" + out
	}
	return out
}

func writeFractionDigit(sb *strings.Builder, sec Section, emitted map[int]bool, ch rune, whole, num, denom int64, skipWhole, skipFrac bool) {
	// Determine which sub-stream this placeholder belongs to based on
	// emission order: whole_values_pattern, then decimal_left (numerator),
	// then decimal_right (denominator). We track per-pattern cursors keyed
	// by a synthetic id so repeated calls consume left-to-right via the
	// numerical-padding rule applied once per sub-stream.
	if !emitted[1] && sec.WholePattern != "" {
		if !skipWhole {
			sb.WriteString(padNumericLeft(strconv.FormatInt(whole, 10), sec.WholePattern))
		}
		emitted[1] = true
	}
	if emitted[1] || sec.WholePattern == "" {
		if !emitted[2] && sec.DecimalLeft != "" {
			if !skipFrac {
				sb.WriteString(padNumericLeft(strconv.FormatInt(num, 10), sec.DecimalLeft))
			}
			emitted[2] = true
			return
		}
		if emitted[2] && !emitted[3] && sec.DecimalRight != "" {
			if !skipFrac {
				sb.WriteString(padNumericLeft(strconv.FormatInt(denom, 10), sec.DecimalRight))
			}
			emitted[3] = true
		}
	}
}

func quotedStraddlesSkip(tokens []Token, i int, skipWhole, skipFrac bool) bool {
	// A quoted run between two skipped sub-streams (or adjacent to the
	// document boundary on the skipped side) is dropped; conservatively we
	// only drop a quoted run when both sub-streams are skipped, matching
	// the common case of an entirely numeric-free fraction format.
	return skipWhole && skipFrac
}

func approximateFraction(av float64, sec Section) (whole, num, denom int64) {
	// A non-integral value without a fixed denominator becomes its exact
	// decimal expansion reduced by the GCD: 2.025 -> 2025/1000 -> 81/40.
	if s := strconv.FormatFloat(av, 'f', -1, 64); !hasExplicitDenominatorDigits(sec.DecimalRight) && strings.Contains(s, ".") && len(s) <= 18 {
		dot := strings.IndexByte(s, '.')
		num, _ = strconv.ParseInt(s[:dot]+s[dot+1:], 10, 64)
		denom = int64(math.Pow10(len(s) - dot - 1))
		g, r := num, denom
		for r != 0 {
			g, r = r, g%r
		}
		num, denom = num/g, denom/g
		if sec.WholePattern != "" && av > 1 {
			whole, num = num/denom, num%denom
		}
		return
	}
	if sec.WholePattern != "" && av > 1 {
		whole = int64(math.Floor(av))
		av -= float64(whole)
	}
	if sec.DecimalRight != "" && hasExplicitDenominatorDigits(sec.DecimalRight) {
		maxDenom := int64(1)
		for range sec.DecimalRight {
			maxDenom *= 10
		}
		maxDenom--
		if d, err := strconv.ParseInt(strings.TrimLeft(sec.DecimalRight, "0#?"), 10, 64); err == nil && d > 0 {
			denom = d
			num = int64(math.Floor(av*float64(denom) + 0.5))
			return
		}
		num, denom = rationalApproximation(av, maxDenom)
		return
	}
	maxDenom := int64(1)
	for range sec.DecimalRight {
		maxDenom *= 10
	}
	if maxDenom <= 1 {
		maxDenom = 9
	} else {
		maxDenom--
	}
	num, denom = rationalApproximation(av, maxDenom)
	return
}

func hasExplicitDenominatorDigits(pattern string) bool {
	for _, ch := range pattern {
		if ch >= '1' && ch <= '9' {
			return true
		}
	}
	return false
}

// rationalApproximation finds a rational approximation p/q, q<=maxDenom, to
// n using a continued-fraction expansion.
func rationalApproximation(n float64, maxDenom int64) (num, denom int64) {
	if maxDenom < 1 {
		maxDenom = 1
	}
	var m [2][2]int64
	m[0][0], m[1][1] = 1, 1
	x := n
	ai := int64(n)
	for m[1][0]*ai+m[1][1] <= maxDenom {
		t := m[0][0]*ai + m[0][1]
		m[0][1] = m[0][0]
		m[0][0] = t
		t = m[1][0]*ai + m[1][1]
		m[1][1] = m[1][0]
		m[1][0] = t
		if x == float64(ai) {
			break
		}
		x = 1 / (x - float64(ai))
		if x > 1e18 {
			break
		}
		ai = int64(x)
	}
	if m[1][0] == 0 {
		return int64(math.Round(n)), 1
	}
	return m[0][0], m[1][0]
}

// ── date / time ───────────────────────────────────────────────────────────

// serialToTime converts an Excel date serial number to a time.Time using the
// 1900 date system, including the Lotus 1-2-3 phantom-leap-day compensation:
// serial 60 is 1900-02-29 (which never existed), so serials at or above 61
// are shifted back one day against the nominal epoch.
func serialToTime(serial float64) time.Time {
	fracSec, rollover := serialToFracSec(serial)

	intPart := int(math.Trunc(serial)) + rollover
	switch {
	case intPart == 0:
		return time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(fracSec) * time.Second)
	case intPart >= 61:
		return BaseDate.Add(time.Duration(intPart-1)*24*time.Hour + time.Duration(fracSec)*time.Second)
	default:
		return BaseDate.Add(time.Duration(intPart)*24*time.Hour + time.Duration(fracSec)*time.Second)
	}
}

// serialToFracSec converts the fractional-day part of an Excel serial to a
// whole-second count within the day, plus a day-rollover flag, rounding to
// the nearest second with a small epsilon to absorb floating-point drift.
func serialToFracSec(serial float64) (fracSec int64, dayRollover int) {
	const roundEpsilon = 1e-9
	fracDay := (serial - math.Trunc(serial)) + roundEpsilon
	const nanosInADay = float64(24 * 60 * 60 * 1e9)
	durNanos := time.Duration(fracDay * nanosInADay)
	ns := int(durNanos % time.Second)
	secs := int64(durNanos / time.Second)
	if ns > 500_000_000 {
		secs++
	}
	if secs < 0 {
		secs = 0
	}
	rollover := int(secs / 86400)
	secs = secs % 86400
	return secs, rollover
}

func formatDatetime(sec Section, v float64, opts Options) (Result, error) {
	t := serialToTime(v)

	if opts.ReturnDateTimeObjects {
		return Result{Time: t, IsTime: true}, nil
	}

	forced := ""
	switch sec.DatetimeKind {
	case DatetimeDate:
		forced = opts.ForceDateFormat
	case DatetimeTime:
		forced = opts.ForceTimeFormat
	case DatetimeDateTime:
		forced = opts.ForceDateTimeFormat
	}
	if forced != "" {
		forcedPf, err := ParseFormat(forced)
		if err != nil {
			return Result{}, err
		}
		s, _ := forcedPf.Select(v, false)
		return formatDatetime(s, v, Options{})
	}

	var sb strings.Builder
	for _, tok := range sec.Emit {
		switch {
		case tok.Quoted:
			sb.WriteString(tok.Code)
		case tok.BracketIndex != BracketNone:
		default:
			sb.WriteString(renderStrftime(translateDateCode(tok.Code, sec.Is24Hour), t))
		}
	}
	return Result{Text: sb.String(), Time: t, IsTime: true}, nil
}

// renderStrftime renders an internal PHP-date()-equivalent code string
// against t. Unknown letters pass through literally.
func renderStrftime(code string, t time.Time) string {
	var sb strings.Builder
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case 'Y':
			sb.WriteString(strconv.Itoa(t.Year()))
		case 'y':
			sb.WriteString(padZero(t.Year()%100, 2))
		case 'F':
			sb.WriteString(t.Month().String())
		case 'M':
			sb.WriteString(t.Month().String()[:3])
		case 'n':
			sb.WriteString(strconv.Itoa(int(t.Month())))
		case 'm':
			sb.WriteString(padZero(int(t.Month()), 2))
		case 'l':
			sb.WriteString(t.Weekday().String())
		case 'D':
			sb.WriteString(t.Weekday().String()[:3])
		case 'd':
			sb.WriteString(padZero(t.Day(), 2))
		case 'j':
			sb.WriteString(strconv.Itoa(t.Day()))
		case 'H':
			sb.WriteString(padZero(t.Hour(), 2))
		case 'G':
			sb.WriteString(strconv.Itoa(t.Hour()))
		case 'h':
			h := t.Hour() % 12
			if h == 0 {
				h = 12
			}
			sb.WriteString(padZero(h, 2))
		case 'i':
			sb.WriteString(padZero(t.Minute(), 2))
		case 's':
			sb.WriteString(padZero(t.Second(), 2))
		case 'A':
			if t.Hour() < 12 {
				sb.WriteString("AM")
			} else {
				sb.WriteString("PM")
			}
		default:
			sb.WriteByte(code[i])
		}
	}
	return sb.String()
}

func padZero(v, width int) string {
	s := strconv.Itoa(v)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// ── text / general ────────────────────────────────────────────────────────

func formatText(sec Section, value string) string {
	var sb strings.Builder
	for _, t := range sec.Emit {
		if t.BracketIndex != BracketNone && !t.Quoted {
			continue
		}
		for _, ch := range t.Code {
			if ch == '@' && !t.Quoted {
				sb.WriteString(value)
			} else {
				sb.WriteRune(ch)
			}
		}
	}
	return sb.String()
}

var scientificRe = regexp.MustCompile(`^\d+(\.\d+)?[Ee][+-]\d+$`)

// formatGeneral implements the General format (format-id 0): scientific
// notation is re-rendered in plain decimal with up to 10 fractional digits,
// trailing zeros and a trailing dot stripped; anything else passes through
// verbatim (property P4).
func formatGeneral(raw string) string {
	if !scientificRe.MatchString(raw) {
		return raw
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	s := strconv.FormatFloat(f, 'f', 10, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
