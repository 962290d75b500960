package search

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a token in a chunk query
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenText
	TokenFilter
	TokenRegex  // /pattern/
	TokenAnd    // + (explicit)
	TokenOr     // |
	TokenNot    // -
	TokenLParen // (
	TokenRParen // )
)

// Token represents a single token in a chunk query
type Token struct {
	Type  TokenType
	Value string
}

// ComparisonOp represents comparison operators
type ComparisonOp string

const (
	OpEqual        ComparisonOp = "="
	OpNotEqual     ComparisonOp = "!="
	OpGreater      ComparisonOp = ">"
	OpGreaterEqual ComparisonOp = ">="
	OpLess         ComparisonOp = "<"
	OpLessEqual    ComparisonOp = "<="
)

// filterKeywords are the recognised name:criteria filters
var filterKeywords = map[string]bool{
	"el":   true,
	"type": true,
	"key":  true,
	"kind": true,
	"len":  true,
	"id":   true,
}

// Tokenizer converts a query string into tokens
type Tokenizer struct {
	input string
	pos   int
}

// NewTokenizer creates a new tokenizer for the given input
func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{input: input}
}

// NextToken returns the next token in the input
func (t *Tokenizer) NextToken() Token {
	t.skipWhitespace()

	if t.pos >= len(t.input) {
		return Token{Type: TokenEOF}
	}

	switch ch := t.input[t.pos]; ch {
	case '(':
		t.pos++
		return Token{Type: TokenLParen, Value: "("}
	case ')':
		t.pos++
		return Token{Type: TokenRParen, Value: ")"}
	case '|':
		t.pos++
		return Token{Type: TokenOr, Value: "|"}
	case '+':
		t.pos++
		return Token{Type: TokenAnd, Value: "+"}
	case '-':
		t.pos++
		return Token{Type: TokenNot, Value: "-"}
	case '"':
		return t.readQuotedText()
	case '@':
		return t.readAttrFilter()
	case '~':
		return t.readFuzzyFilter()
	case '/':
		return t.readRegex()
	default:
		if isAlpha(ch) && t.isFilterKeyword() {
			return t.readFilter()
		}
		return t.readText()
	}
}

// AllTokens returns all tokens in the input, ending with TokenEOF
func (t *Tokenizer) AllTokens() []Token {
	var tokens []Token
	for {
		tok := t.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens
		}
	}
}

func (t *Tokenizer) skipWhitespace() {
	for t.pos < len(t.input) && isSpace(t.input[t.pos]) {
		t.pos++
	}
}

func (t *Tokenizer) readQuotedText() Token {
	t.pos++
	start := t.pos
	for t.pos < len(t.input) && t.input[t.pos] != '"' {
		t.pos++
	}
	value := t.input[start:t.pos]
	if t.pos < len(t.input) {
		t.pos++
	}
	return Token{Type: TokenText, Value: value}
}

func (t *Tokenizer) readFilter() Token {
	start := t.pos
	for t.pos < len(t.input) && isAlphaNumeric(t.input[t.pos]) {
		t.pos++
	}
	ident := t.input[start:t.pos]
	t.pos++ // colon
	return Token{Type: TokenFilter, Value: ident + ":" + t.readCriteria()}
}

func (t *Tokenizer) readCriteria() string {
	start := t.pos
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if isSpace(ch) || ch == '|' || ch == ')' {
			break
		}
		t.pos++
	}
	return t.input[start:t.pos]
}

func (t *Tokenizer) readText() Token {
	start := t.pos
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if isSpace(ch) || ch == '|' || ch == '+' || ch == ')' || ch == '(' {
			break
		}
		t.pos++
	}
	return Token{Type: TokenText, Value: t.input[start:t.pos]}
}

func (t *Tokenizer) readAttrFilter() Token {
	t.pos++
	keyStart := t.pos
	for t.pos < len(t.input) && (isAlphaNumeric(t.input[t.pos]) || t.input[t.pos] == '-') {
		t.pos++
	}
	key := t.input[keyStart:t.pos]
	if t.pos < len(t.input) && isOperator(t.input[t.pos]) {
		return Token{Type: TokenFilter, Value: "@" + key + t.readCriteria()}
	}
	return Token{Type: TokenFilter, Value: "@" + key}
}

func (t *Tokenizer) readFuzzyFilter() Token {
	t.pos++
	start := t.pos
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if isSpace(ch) || ch == '|' || ch == '+' || ch == ')' || ch == '(' {
			break
		}
		t.pos++
	}
	term := t.input[start:t.pos]
	if term == "" {
		return Token{Type: TokenText, Value: "~"}
	}
	return Token{Type: TokenFilter, Value: "~" + term}
}

func (t *Tokenizer) readRegex() Token {
	startPos := t.pos
	t.pos++
	start := t.pos
	escaped := false
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '/':
			pattern := t.input[start:t.pos]
			t.pos++
			return Token{Type: TokenRegex, Value: pattern}
		}
		t.pos++
	}

	pattern := t.input[start:t.pos]
	if pattern == "" {
		t.pos = startPos
		return t.readText()
	}
	return Token{Type: TokenRegex, Value: pattern}
}

// isFilterKeyword reports whether a known filter name followed by a colon
// starts at the current position
func (t *Tokenizer) isFilterKeyword() bool {
	end := t.pos
	for end < len(t.input) && isAlphaNumeric(t.input[end]) {
		end++
	}
	if end >= len(t.input) || t.input[end] != ':' {
		return false
	}
	return filterKeywords[t.input[t.pos:end]]
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n'
}

func isOperator(ch byte) bool {
	return ch == '>' || ch == '<' || ch == '!' || ch == '='
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || (ch >= '0' && ch <= '9')
}

// Parser converts tokens into a FilterExpr tree
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a new parser for the given tokens
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseQuery parses a complete query and returns the root expression. An
// empty query matches every chunk.
func ParseQuery(query string) (FilterExpr, error) {
	tokens := NewTokenizer(query).AllTokens()
	if len(tokens) == 1 {
		return NewAlwaysMatchExpr(), nil
	}

	p := NewParser(tokens)
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.current().Type != TokenEOF {
		return nil, fmt.Errorf("unexpected token: %s", p.current().Value)
	}
	return expr, nil
}

func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

// Precedence: OR < AND < NOT < atoms

func (p *Parser) parseOr() (FilterExpr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = NewOrExpr(left, right)
	}
	return left, nil
}

func (p *Parser) parseAnd() (FilterExpr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		if p.current().Type == TokenAnd {
			p.advance()
		}
		switch p.current().Type {
		case TokenEOF, TokenRParen, TokenOr:
			return left, nil
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = NewAndExpr(left, right)
	}
}

func (p *Parser) parseNot() (FilterExpr, error) {
	if p.current().Type == TokenNot {
		p.advance()
		expr, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return NewNotExpr(expr), nil
	}
	return p.parseAtom()
}

func (p *Parser) parseAtom() (FilterExpr, error) {
	tok := p.current()
	switch tok.Type {
	case TokenLParen:
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.current().Type != TokenRParen {
			return nil, fmt.Errorf("expected ')', got %q", p.current().Value)
		}
		p.advance()
		return expr, nil
	case TokenText:
		p.advance()
		return NewTextExpr(tok.Value), nil
	case TokenFilter:
		p.advance()
		return parseFilterValue(tok.Value)
	case TokenRegex:
		p.advance()
		return NewRegexExpr(tok.Value)
	case TokenEOF:
		return nil, fmt.Errorf("unexpected end of input")
	default:
		return nil, fmt.Errorf("unexpected token: %s", tok.Value)
	}
}

// parseFilterValue converts a filter token value into its expression
func parseFilterValue(value string) (FilterExpr, error) {
	if term, ok := strings.CutPrefix(value, "~"); ok {
		return NewFuzzyExpr(term), nil
	}
	if criteria, ok := strings.CutPrefix(value, "@"); ok {
		return parseAttrFilter(criteria)
	}

	name, criteria, _ := strings.Cut(value, ":")
	switch name {
	case "el":
		return NewFieldExpr(FieldElementID, criteria), nil
	case "id":
		return NewFieldExpr(FieldChunkID, criteria), nil
	case "type":
		return NewFieldExpr(FieldElementType, criteria), nil
	case "key":
		return NewFieldExpr(FieldElementKey, criteria), nil
	case "kind":
		return NewFieldExpr(FieldKind, criteria), nil
	case "len":
		op, val, err := parseComparison(criteria)
		if err != nil {
			return nil, err
		}
		return NewLengthFilter(op, val)
	default:
		return NewTextExpr(value), nil
	}
}

func parseAttrFilter(criteria string) (FilterExpr, error) {
	for _, op := range []ComparisonOp{OpNotEqual, OpEqual} {
		if key, value, ok := strings.Cut(criteria, string(op)); ok {
			if key == "" {
				return nil, fmt.Errorf("attribute filter without a name: @%s", criteria)
			}
			return NewAttributeFilter(key, op, value), nil
		}
	}
	if criteria == "" {
		return nil, fmt.Errorf("attribute filter without a name")
	}
	return NewAttributeFilter(criteria, "", ""), nil
}

// parseComparison splits criteria like ">=5" into operator and value. A bare
// value compares for equality.
func parseComparison(criteria string) (ComparisonOp, string, error) {
	for _, op := range []ComparisonOp{OpGreaterEqual, OpLessEqual, OpNotEqual, OpGreater, OpLess, OpEqual} {
		if rest, ok := strings.CutPrefix(criteria, string(op)); ok {
			if rest == "" {
				return "", "", fmt.Errorf("missing value after %s", op)
			}
			return op, rest, nil
		}
	}
	if criteria == "" {
		return "", "", fmt.Errorf("missing comparison value")
	}
	return OpEqual, criteria, nil
}
