package numfmt

import (
	"regexp"
	"strconv"
)

// Op is a comparison operator carried by an explicit bracketed condition,
// e.g. the `>1000` in `[>1000]`.
type Op int

const (
	OpLT Op = iota
	OpLE
	OpEQ
	OpNE
	OpGE
	OpGT
)

// Purpose classifies which values a section applies to.
type Purpose struct {
	Kind    PurposeKind
	Op      Op
	Operand int
}

// PurposeKind enumerates the ways a section can be selected.
type PurposeKind int

const (
	PurposeCondition PurposeKind = iota
	PurposeDefaultNumber
	PurposeDefaultText
)

// Matches reports whether this Purpose admits a value. isText distinguishes
// a non-numeric cell value from v, which is only meaningful when !isText.
func (p Purpose) Matches(v float64, isText bool) bool {
	switch p.Kind {
	case PurposeDefaultText:
		return isText
	case PurposeDefaultNumber:
		return !isText
	case PurposeCondition:
		if isText {
			return false
		}
		k := float64(p.Operand)
		switch p.Op {
		case OpLT:
			return v < k
		case OpLE:
			return v <= k
		case OpEQ:
			return v == k
		case OpNE:
			return v != k
		case OpGE:
			return v >= k
		case OpGT:
			return v > k
		}
	}
	return false
}

// admitsNegative reports whether this Purpose can see negative values
// (used to decide prepend_minus).
func (p Purpose) admitsNegative() bool {
	switch p.Kind {
	case PurposeDefaultText:
		return false
	case PurposeDefaultNumber:
		return true
	case PurposeCondition:
		switch p.Op {
		case OpEQ:
			return p.Operand < 0
		case OpLT:
			return true // v < k admits negatives unless k is very constrained; conservative
		case OpLE:
			return true
		case OpGE:
			return p.Operand < 0
		case OpGT:
			return p.Operand < 0
		case OpNE:
			return true
		}
	}
	return true
}

func (p Purpose) admitsPositive() bool {
	switch p.Kind {
	case PurposeDefaultText:
		return false
	case PurposeDefaultNumber:
		return true
	case PurposeCondition:
		switch p.Op {
		case OpGT, OpGE:
			return true
		case OpEQ:
			return p.Operand > 0
		case OpLT, OpLE:
			return p.Operand > 0
		case OpNE:
			return true
		}
	}
	return true
}

// rawSection is the intermediate form produced by the Classifier: a token
// list with an assigned Purpose, before the Analyzer derives semantic
// metadata from it.
type rawSection struct {
	Tokens  []Token
	Purpose Purpose
}

var conditionRe = regexp.MustCompile(`^([<>=]+)([+-]?\d+)$`)

// parseCondition recognizes a bracketed condition token's code, e.g. ">1000"
// or "<=-5".
func parseCondition(code string) (Op, int, bool) {
	m := conditionRe.FindStringSubmatch(code)
	if m == nil {
		return 0, 0, false
	}
	var op Op
	switch m[1] {
	case "<":
		op = OpLT
	case "<=":
		op = OpLE
	case "=":
		op = OpEQ
	case "<>":
		op = OpNE
	case ">=":
		op = OpGE
	case ">":
		op = OpGT
	default:
		return 0, 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return op, n, true
}

// sectionCondition scans a section's tokens for a bracketed condition.
func sectionCondition(tokens []Token) (Op, int, bool) {
	for _, t := range tokens {
		if t.BracketIndex == BracketNone {
			continue
		}
		if op, n, ok := parseCondition(t.Code); ok {
			return op, n, true
		}
	}
	return 0, 0, false
}

// isTextSection reports whether a section contains an unquoted, unbracketed '@'.
func isTextSection(tokens []Token) bool {
	for _, t := range tokens {
		if t.Quoted || t.BracketIndex != BracketNone {
			continue
		}
		if containsAny(t.Code, "@") {
			return true
		}
	}
	return false
}

// isNumberSection reports whether a section contains an unquoted, unbracketed
// character from the numeric/date token alphabet.
func isNumberSection(tokens []Token) bool {
	for _, t := range tokens {
		if t.Quoted || t.BracketIndex != BracketNone {
			continue
		}
		if containsAny(t.Code, "0#?ymdhsa") {
			return true
		}
	}
	return false
}

func containsAny(s, chars string) bool {
	for _, c := range s {
		for _, want := range chars {
			if c == want {
				return true
			}
		}
	}
	return false
}

// classify assigns a Purpose to every section of a format string, following
// Excel's section-count rules, and synthesizes the missing default_number
// and/or default_text sections so that every ParsedFormat is exhaustive
// (property P2).
func classify(sections [][]Token) []rawSection {
	type cond struct {
		op  Op
		val int
		ok  bool
	}
	conds := make([]cond, len(sections))
	for i, s := range sections {
		op, val, ok := sectionCondition(s)
		conds[i] = cond{op, val, ok}
	}

	nConds := 0
	for _, c := range conds {
		if c.ok {
			nConds++
		}
	}

	var out []rawSection
	switch {
	case len(sections) == 1:
		out = append(out, rawSection{sections[0], Purpose{Kind: PurposeDefaultNumber}})
		if isTextSection(sections[0]) && !isNumberSection(sections[0]) {
			out[0].Purpose = Purpose{Kind: PurposeDefaultText}
			out = append(out, rawSection{sections[0], Purpose{Kind: PurposeDefaultNumber}})
		}

	case len(sections) == 2 && conds[0].ok:
		out = append(out,
			rawSection{sections[0], Purpose{Kind: PurposeCondition, Op: conds[0].op, Operand: conds[0].val}},
			rawSection{sections[1], Purpose{Kind: PurposeDefaultNumber}},
		)

	case len(sections) == 2:
		out = append(out,
			rawSection{sections[0], Purpose{Kind: PurposeCondition, Op: OpGT, Operand: 0}}, // >0
			rawSection{sections[1], Purpose{Kind: PurposeCondition, Op: OpLT, Operand: 0}}, // <0
			rawSection{sections[0], Purpose{Kind: PurposeDefaultNumber}},                   // =0, same format as >0
		)

	case len(sections) == 3 && conds[0].ok:
		last := rawSection{sections[2], Purpose{Kind: PurposeDefaultText}}
		mid := rawSection{sections[1], Purpose{Kind: PurposeDefaultNumber}}
		if isTextSection(sections[2]) && !isNumberSection(sections[2]) {
			// section 3 is text: section 2 stays default_number (already so)
		}
		out = append(out,
			rawSection{sections[0], Purpose{Kind: PurposeCondition, Op: conds[0].op, Operand: conds[0].val}},
			mid, last,
		)

	case len(sections) == 3:
		out = append(out,
			rawSection{sections[0], Purpose{Kind: PurposeCondition, Op: OpGT, Operand: 0}},
			rawSection{sections[1], Purpose{Kind: PurposeCondition, Op: OpLT, Operand: 0}},
			rawSection{sections[2], Purpose{Kind: PurposeCondition, Op: OpEQ, Operand: 0}},
		)

	case len(sections) >= 4 && nConds == 2 && conds[0].ok && conds[1].ok:
		out = append(out,
			rawSection{sections[0], Purpose{Kind: PurposeCondition, Op: conds[0].op, Operand: conds[0].val}},
			rawSection{sections[1], Purpose{Kind: PurposeCondition, Op: conds[1].op, Operand: conds[1].val}},
			rawSection{sections[2], Purpose{Kind: PurposeDefaultNumber}},
			rawSection{sections[3], Purpose{Kind: PurposeDefaultText}},
		)

	case len(sections) >= 4 && conds[0].ok:
		out = append(out,
			rawSection{sections[0], Purpose{Kind: PurposeCondition, Op: conds[0].op, Operand: conds[0].val}},
			rawSection{sections[1], Purpose{Kind: PurposeDefaultNumber}},
			rawSection{sections[2], Purpose{Kind: PurposeDefaultNumber}},
			rawSection{sections[3], Purpose{Kind: PurposeDefaultText}},
		)

	case len(sections) >= 4:
		out = append(out,
			rawSection{sections[0], Purpose{Kind: PurposeCondition, Op: OpGT, Operand: 0}},
			rawSection{sections[1], Purpose{Kind: PurposeCondition, Op: OpLT, Operand: 0}},
			rawSection{sections[2], Purpose{Kind: PurposeCondition, Op: OpEQ, Operand: 0}},
			rawSection{sections[3], Purpose{Kind: PurposeDefaultText}},
		)
	}

	hasDefaultNumber, hasDefaultText := false, false
	for _, s := range out {
		switch s.Purpose.Kind {
		case PurposeDefaultNumber:
			hasDefaultNumber = true
		case PurposeDefaultText:
			hasDefaultText = true
		}
	}
	if !hasDefaultNumber {
		out = append(out, rawSection{tokenizeSection("########"), Purpose{Kind: PurposeDefaultNumber}})
	}
	if !hasDefaultText {
		out = append(out, rawSection{tokenizeSection("@"), Purpose{Kind: PurposeDefaultText}})
	}

	return out
}
