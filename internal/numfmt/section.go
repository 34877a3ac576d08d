package numfmt

import "strings"

// Kind classifies the rendering strategy for a section's numeric content.
type Kind int

const (
	KindDecimal Kind = iota
	KindFraction
	KindScientific
	KindDatetime
	KindText
)

// DatetimeKind refines KindDatetime sections.
type DatetimeKind int

const (
	DatetimeNone DatetimeKind = iota
	DatetimeDate
	DatetimeTime
	DatetimeDateTime
)

// Section is the immutable, fully analyzed form of one `;`-delimited piece
// of a format string. It never references another Section once built.
type Section struct {
	Tokens          []Token
	Purpose         Purpose
	Kind            Kind
	Percentage      bool
	PrependMinus    bool
	ThousandsScale  int
	UseThousandsSep bool
	DecimalLeft     string
	DecimalRight    string
	ExponentPattern string
	WholePattern    string
	DatetimeKind    DatetimeKind
	Is24Hour        bool
	DatetimeCode    string // translated internal date code, see translateDateCode
	Emit            []Token // tokens used for output assembly: currency extracted, directives applied
}

// ParsedFormat is the ordered list of Sections parsed from one format
// string, tried in order against a value at evaluation time.
type ParsedFormat struct {
	Sections []Section
	Raw      string
}

// Select returns the first section whose Purpose admits the value.
// A ParsedFormat built by ParseFormat always has a catching default, so ok
// is always true for a correctly built ParsedFormat.
func (pf *ParsedFormat) Select(v float64, isText bool) (Section, bool) {
	for _, s := range pf.Sections {
		if s.Purpose.Matches(v, isText) {
			return s, true
		}
	}
	return Section{}, false
}

// isGeneralFormat reports whether format is the literal "General" sentinel
// (format-id 0's string), case-insensitively and ignoring surrounding
// whitespace. It never reaches the tokenizer: its letters (e.g. the 'a' in
// "General") would otherwise be mistaken for date/time codes.
func isGeneralFormat(format string) bool {
	return strings.EqualFold(strings.TrimSpace(format), "General")
}

// ParseFormat runs the tokenizer, classifier and analyzer over a raw format
// string, producing a ParsedFormat ready for repeated application.
func ParseFormat(format string) (*ParsedFormat, error) {
	if isGeneralFormat(format) {
		return &ParsedFormat{
			Sections: []Section{
				{Kind: KindText, Purpose: Purpose{Kind: PurposeDefaultNumber}},
				{Kind: KindText, Purpose: Purpose{Kind: PurposeDefaultText}},
			},
			Raw: format,
		}, nil
	}

	rawSections := splitSections(format)
	tokenized := make([][]Token, len(rawSections))
	for i, s := range rawSections {
		tokenized[i] = tokenizeSection(s)
	}
	classified := classify(tokenized)

	sections := make([]Section, len(classified))
	for i, rs := range classified {
		sections[i] = analyze(rs)
	}
	return &ParsedFormat{Sections: sections, Raw: format}, nil
}
