package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffTextGranularities(t *testing.T) {
	tests := []struct {
		name   string
		before string
		after  string
		g      Granularity
		want   []TextEdit
	}{
		{
			name:   "word",
			before: "a b c",
			after:  "a x c",
			g:      GranularityWord,
			want: []TextEdit{
				{Op: OpEqual, Before: "a ", After: "a "},
				{Op: OpReplace, Before: "b", After: "x"},
				{Op: OpEqual, Before: " c", After: " c"},
			},
		},
		{
			name:   "line",
			before: "one\ntwo\n",
			after:  "one\nthree\n",
			g:      GranularityLine,
			want: []TextEdit{
				{Op: OpEqual, Before: "one\n", After: "one\n"},
				{Op: OpReplace, Before: "two\n", After: "three\n"},
			},
		},
		{
			name:   "char",
			before: "cat",
			after:  "cart",
			g:      GranularityChar,
			want: []TextEdit{
				{Op: OpEqual, Before: "ca", After: "ca"},
				{Op: OpInsert, Before: "", After: "r"},
				{Op: OpEqual, Before: "t", After: "t"},
			},
		},
		{
			name:   "delete everything",
			before: "gone",
			after:  "",
			g:      GranularityWord,
			want:   []TextEdit{{Op: OpDelete, Before: "gone", After: ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiffText(tt.before, tt.after, tt.g)
			assert.Equal(t, tt.want, got)

			b, a := concat(got)
			assert.Equal(t, tt.before, b)
			assert.Equal(t, tt.after, a)
		})
	}
}

func TestDiffTextEmptyAndEqual(t *testing.T) {
	assert.Nil(t, DiffText("", "", GranularityWord))
	assert.Equal(t, []TextEdit{{Op: OpEqual, Before: "same", After: "same"}}, DiffText("same", "same", GranularityChar))
}

func TestDiffTextConcatenatesUnicode(t *testing.T) {
	before := "héllo wörld\nsecond line"
	after := "hallo wörld!\nthird line"

	for _, g := range []Granularity{GranularityChar, GranularityWord, GranularityLine} {
		b, a := concat(DiffText(before, after, g))
		assert.Equal(t, before, b, string(g))
		assert.Equal(t, after, a, string(g))
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("abc", "abc"))
	assert.Zero(t, Similarity("abc", "xyz"))
	assert.InDelta(t, 0.75, Similarity("abcd", "abce"), 1e-9)
}

func TestSplitWordsRoundTrip(t *testing.T) {
	assert.Equal(t, []string{"  ", "lead", " ", "and", "\t\n", "trail", " "}, splitWords("  lead and\t\ntrail "))
}
