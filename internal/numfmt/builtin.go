package numfmt

import "strings"

// Builtin holds the 33 format strings defined by the XLSX specification,
// keyed by numFmtId. Ids not present here (e.g. the Thai-prefixed variants
// 59-62/67-70) resolve only through the document's numFmts table or a
// caller override; otherwise the registry reports a format parse error.
var Builtin = map[int]string{
	0:  "General",
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	12: "# ?/?",
	13: "# ??/??",
	14: "mm-dd-yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",
	27: "[$-404]e/m/d",
	30: "m/d/yy",
	36: "[$-404]e/m/d",
	37: "#,##0 ;(#,##0)",
	38: "#,##0 ;[Red](#,##0)",
	39: "#,##0.00;(#,##0.00)",
	40: "#,##0.00;[Red](#,##0.00)",
	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mmss.0",
	48: "##0.0E+0",
	49: "@",
	50: "[$-404]e/m/d",
	57: "[$-404]e/m/d",
}

// dateCodeRule is one entry of the longest-match-wins translation table
// from lower-cased XLSX date codes to internal strftime-equivalent codes.
type dateCodeRule struct {
	from string
	to24 string
	to12 string
}

// dateCodeRules is applied longest-match-first; "to24"/"to12" differ only
// for the hour codes, which resolve per the section's 12h/24h detection.
var dateCodeRules = []dateCodeRule{
	{`\`, "", ""},
	{"am/pm", "A", "A"},
	{"yyyy", "Y", "Y"},
	{"yy", "y", "y"},
	{"mmmmm", "M", "M"},
	{"mmmm", "F", "F"},
	{"mmm", "M", "M"},
	{":mm", ":i", ":i"},
	{"mm", "m", "m"},
	{"m", "n", "n"},
	{"dddd", "l", "l"},
	{"ddd", "D", "D"},
	{"dd", "d", "d"},
	{"d", "j", "j"},
	{"ss", "s", "s"},
	{".s", "", ""},
	{"hh", "H", "h"},
	{"h", "G", "G"},
}

// translateDateCode translates one already-lowercased-comparison token's
// code into the internal date-format alphabet (the letters renderStrftime
// interprets), using
// longest-match in dateCodeRules. is24Hour selects between the hh/h entries'
// two translations.
func translateDateCode(code string, is24Hour bool) string {
	lower := strings.ToLower(code)
	var out strings.Builder
	i := 0
	for i < len(lower) {
		matched := false
		for _, rule := range dateCodeRules {
			if strings.HasPrefix(lower[i:], rule.from) {
				repl := rule.to24
				if !is24Hour {
					repl = rule.to12
				}
				out.WriteString(repl)
				i += len(rule.from)
				matched = true
				break
			}
		}
		if !matched {
			out.WriteByte(code[i])
			i++
		}
	}
	return out.String()
}
