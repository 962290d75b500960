package search

import (
	"testing"

	"github.com/pstuifzand/chunkview/internal/model"
)

func TestTokenizer(t *testing.T) {
	tests := []struct {
		input  string
		tokens []TokenType
	}{
		{"hello", []TokenType{TokenText, TokenEOF}},
		{"hello world", []TokenType{TokenText, TokenText, TokenEOF}},
		{"hello | world", []TokenType{TokenText, TokenOr, TokenText, TokenEOF}},
		{"hello +world", []TokenType{TokenText, TokenAnd, TokenText, TokenEOF}},
		{"-hello", []TokenType{TokenNot, TokenText, TokenEOF}},
		{"el:e1", []TokenType{TokenFilter, TokenEOF}},
		{"len:>=3 @role=system", []TokenType{TokenFilter, TokenFilter, TokenEOF}},
		{"(a | b)", []TokenType{TokenLParen, TokenText, TokenOr, TokenText, TokenRParen, TokenEOF}},
		{`"multi word"`, []TokenType{TokenText, TokenEOF}},
		{"~hlo", []TokenType{TokenFilter, TokenEOF}},
		{"/h.l+o/", []TokenType{TokenRegex, TokenEOF}},
		{"note:later", []TokenType{TokenText, TokenEOF}},
		{"e-mail", []TokenType{TokenText, TokenEOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := NewTokenizer(tt.input).AllTokens()
			if len(tokens) != len(tt.tokens) {
				t.Fatalf("Expected %d tokens, got %d: %v", len(tt.tokens), len(tokens), tokens)
			}
			for i, tok := range tokens {
				if tok.Type != tt.tokens[i] {
					t.Errorf("Token %d: expected type %d, got %d (%q)", i, tt.tokens[i], tok.Type, tok.Value)
				}
			}
		})
	}
}

func testTargets() []Target {
	sys := &model.Element{ID: "e1", Type: "static", Key: "system", Attributes: map[string]string{"role": "system"}}
	user := &model.Element{ID: "e2", Type: "param", Key: "question", Attributes: map[string]string{"role": "user"}}
	return []Target{
		{Chunk: model.NewTextChunk("c1", "e1", "Hello there"), Element: sys},
		{Chunk: model.NewTextChunk("c2", "e1", "General Kenobi"), Element: sys},
		{Chunk: model.Chunk{ID: "c3", ElementID: "e2", Kind: model.ChunkImage}, Element: user},
		{Chunk: model.NewTextChunk("c4", "e2", "How are you?"), Element: user},
		{Chunk: model.NewTextChunk("c5", "gone", "orphan"), Element: nil},
	}
}

func TestParseQueryMatches(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"c1", "c2", "c3", "c4", "c5"}},
		{"hello", []string{"c1"}},
		{"HELLO", []string{"c1"}},
		{`"are you"`, []string{"c4"}},
		{"e", []string{"c1", "c2", "c4"}},
		{"hello | how", []string{"c1", "c4"}},
		{"e +ken", []string{"c2"}},
		{"e -ken", []string{"c1", "c4"}},
		{"-(hello | how)", []string{"c2", "c3", "c5"}},
		{"el:e2", []string{"c3", "c4"}},
		{"id:c2", []string{"c2"}},
		{"type:static", []string{"c1", "c2"}},
		{"key:question", []string{"c3", "c4"}},
		{"kind:image", []string{"c3"}},
		{"kind:text", []string{"c1", "c2", "c4", "c5"}},
		{"len:>11", []string{"c2", "c4"}},
		{"len:<=6", []string{"c3", "c5"}},
		{"len:11", []string{"c1"}},
		{"@role", []string{"c1", "c2", "c3", "c4"}},
		{"@role=user", []string{"c3", "c4"}},
		{"@role!=user", []string{"c1", "c2"}},
		{"~hlt", []string{"c1"}},
		{"~gkb", []string{"c2"}},
		{"/^H\\w+ /", []string{"c1", "c4"}},
	}

	targets := testTargets()
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			expr, err := ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("ParseQuery(%q) failed: %v", tt.query, err)
			}
			var got []string
			for _, target := range targets {
				if expr.Matches(target) {
					got = append(got, target.Chunk.ID)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("%s: expected %v, got %v", expr, tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("%s: expected %v, got %v", expr, tt.want, got)
					break
				}
			}
		})
	}
}

func TestParseQueryErrors(t *testing.T) {
	queries := []string{
		"(hello",
		"hello |",
		"len:abc",
		"len:>",
		"/[unclosed/",
		"@=x",
		")",
	}
	for _, q := range queries {
		if _, err := ParseQuery(q); err == nil {
			t.Errorf("ParseQuery(%q): expected error", q)
		}
	}
}

func TestExprString(t *testing.T) {
	expr, err := ParseQuery("hello | -el:e1 @role=user")
	if err != nil {
		t.Fatalf("ParseQuery failed: %v", err)
	}
	want := `or(text("hello"), and(not(el("e1")), attr(role="user")))`
	if expr.String() != want {
		t.Errorf("Expected %s, got %s", want, expr.String())
	}
}

func TestFuzzyMatchPositions(t *testing.T) {
	e := NewFuzzyExpr("hlo")
	pos := e.MatchPositions("Hello")
	want := []int{0, 2, 4}
	if len(pos) != len(want) {
		t.Fatalf("Expected %v, got %v", want, pos)
	}
	for i := range want {
		if pos[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, pos)
		}
	}

	if p := e.MatchPositions("world"); p != nil {
		t.Errorf("Expected no positions for a non-match, got %v", p)
	}
}
