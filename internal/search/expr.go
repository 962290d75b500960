// Package search filters the chunks of a document with a small query
// language and turns the matches into fold selections.
package search

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/pstuifzand/chunkview/internal/model"
)

// Target is a chunk together with the element that owns it. Element is nil
// when the owning element is not part of the tree.
type Target struct {
	Chunk   model.Chunk
	Element *model.Element
}

// FilterExpr represents a filter expression that can match chunks
type FilterExpr interface {
	Matches(t Target) bool
	String() string // For debug output
}

// TextExpr matches chunks whose text contains the term (case-insensitive)
type TextExpr struct {
	term string
}

func NewTextExpr(term string) *TextExpr {
	return &TextExpr{term: strings.ToLower(term)}
}

func (e *TextExpr) Matches(t Target) bool {
	return strings.Contains(strings.ToLower(t.Chunk.Text), e.term)
}

func (e *TextExpr) String() string {
	return fmt.Sprintf("text(%q)", e.term)
}

// FuzzyExpr matches chunks whose text fuzzy-matches the term (case-insensitive)
type FuzzyExpr struct {
	term string
}

func NewFuzzyExpr(term string) *FuzzyExpr {
	return &FuzzyExpr{term: strings.ToLower(term)}
}

func (e *FuzzyExpr) Matches(t Target) bool {
	return fuzzy.MatchFold(e.term, t.Chunk.Text)
}

func (e *FuzzyExpr) String() string {
	return fmt.Sprintf("fuzzy(%q)", e.term)
}

// MatchPositions returns the rune indexes of text that the fuzzy term
// matched, or nil when it does not match
func (e *FuzzyExpr) MatchPositions(text string) []int {
	if e.term == "" || !fuzzy.MatchFold(e.term, text) {
		return nil
	}

	term := []rune(e.term)
	var positions []int
	i := 0
	for pos, r := range []rune(strings.ToLower(text)) {
		if i < len(term) && r == term[i] {
			positions = append(positions, pos)
			i++
		}
	}
	return positions
}

// RegexExpr matches chunks whose text matches a regular expression
type RegexExpr struct {
	pattern string
	re      *regexp.Regexp
}

func NewRegexExpr(pattern string) (*RegexExpr, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}
	return &RegexExpr{pattern: pattern, re: re}, nil
}

func (e *RegexExpr) Matches(t Target) bool {
	return e.re.MatchString(t.Chunk.Text)
}

func (e *RegexExpr) String() string {
	return fmt.Sprintf("regex(/%s/)", e.pattern)
}

// Field names a chunk or element property compared for equality
type Field string

const (
	FieldChunkID     Field = "id"
	FieldElementID   Field = "el"
	FieldElementType Field = "type"
	FieldElementKey  Field = "key"
	FieldKind        Field = "kind"
)

// FieldExpr matches when a property equals the value exactly
type FieldExpr struct {
	field Field
	value string
}

func NewFieldExpr(field Field, value string) *FieldExpr {
	return &FieldExpr{field: field, value: value}
}

func (e *FieldExpr) Matches(t Target) bool {
	switch e.field {
	case FieldChunkID:
		return t.Chunk.ID == e.value
	case FieldElementID:
		return t.Chunk.ElementID == e.value
	case FieldKind:
		kind := t.Chunk.Kind
		if kind == "" {
			kind = model.ChunkText
		}
		return string(kind) == e.value
	case FieldElementType:
		return t.Element != nil && t.Element.Type == e.value
	case FieldElementKey:
		return t.Element != nil && t.Element.Key == e.value
	}
	return false
}

func (e *FieldExpr) String() string {
	return fmt.Sprintf("%s(%q)", e.field, e.value)
}

// LengthFilter compares the chunk size in text units
type LengthFilter struct {
	op    ComparisonOp
	value int
}

func NewLengthFilter(op ComparisonOp, value string) (*LengthFilter, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid length value %q: %w", value, err)
	}
	return &LengthFilter{op: op, value: n}, nil
}

func (e *LengthFilter) Matches(t Target) bool {
	return compareInts(t.Chunk.SizeUnits, e.op, e.value)
}

func (e *LengthFilter) String() string {
	return fmt.Sprintf("len(%s%d)", e.op, e.value)
}

// AttributeFilter matches on an attribute of the owning element. Without an
// operator it checks presence only.
type AttributeFilter struct {
	key   string
	op    ComparisonOp
	value string
}

func NewAttributeFilter(key string, op ComparisonOp, value string) *AttributeFilter {
	return &AttributeFilter{key: key, op: op, value: value}
}

func (e *AttributeFilter) Matches(t Target) bool {
	if t.Element == nil {
		return false
	}
	v, ok := t.Element.Attributes[e.key]
	switch e.op {
	case OpEqual:
		return ok && v == e.value
	case OpNotEqual:
		return !ok || v != e.value
	default:
		return ok
	}
}

func (e *AttributeFilter) String() string {
	if e.op == "" {
		return fmt.Sprintf("attr(%s)", e.key)
	}
	return fmt.Sprintf("attr(%s%s%q)", e.key, e.op, e.value)
}

// AlwaysMatchExpr matches every chunk (for empty queries)
type AlwaysMatchExpr struct{}

func NewAlwaysMatchExpr() *AlwaysMatchExpr {
	return &AlwaysMatchExpr{}
}

func (e *AlwaysMatchExpr) Matches(Target) bool {
	return true
}

func (e *AlwaysMatchExpr) String() string {
	return "all"
}

// AndExpr matches when both sides match
type AndExpr struct {
	left, right FilterExpr
}

func NewAndExpr(left, right FilterExpr) *AndExpr {
	return &AndExpr{left: left, right: right}
}

func (e *AndExpr) Matches(t Target) bool {
	return e.left.Matches(t) && e.right.Matches(t)
}

func (e *AndExpr) String() string {
	return fmt.Sprintf("and(%s, %s)", e.left, e.right)
}

// OrExpr matches when either side matches
type OrExpr struct {
	left, right FilterExpr
}

func NewOrExpr(left, right FilterExpr) *OrExpr {
	return &OrExpr{left: left, right: right}
}

func (e *OrExpr) Matches(t Target) bool {
	return e.left.Matches(t) || e.right.Matches(t)
}

func (e *OrExpr) String() string {
	return fmt.Sprintf("or(%s, %s)", e.left, e.right)
}

// NotExpr inverts its operand
type NotExpr struct {
	expr FilterExpr
}

func NewNotExpr(expr FilterExpr) *NotExpr {
	return &NotExpr{expr: expr}
}

func (e *NotExpr) Matches(t Target) bool {
	return !e.expr.Matches(t)
}

func (e *NotExpr) String() string {
	return fmt.Sprintf("not(%s)", e.expr)
}

func compareInts(a int, op ComparisonOp, b int) bool {
	switch op {
	case OpEqual:
		return a == b
	case OpNotEqual:
		return a != b
	case OpGreater:
		return a > b
	case OpGreaterEqual:
		return a >= b
	case OpLess:
		return a < b
	case OpLessEqual:
		return a <= b
	}
	return false
}
