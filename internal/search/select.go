package search

import (
	"fmt"

	"github.com/pstuifzand/chunkview/internal/folding"
	"github.com/pstuifzand/chunkview/internal/model"
)

// Run is a half-open range [Start, End) of visible positions
type Run struct {
	Start, End int
}

// Targets pairs every chunk of doc with its owning element, in chunk order
func Targets(doc *model.Document) []Target {
	owners := make(map[string]*model.Element)
	for _, el := range doc.AllElements() {
		owners[el.ID] = el
	}
	targets := make([]Target, len(doc.Chunks))
	for i, c := range doc.Chunks {
		targets[i] = Target{Chunk: c, Element: owners[c.ElementID]}
	}
	return targets
}

// Find returns the IDs of the chunks of doc that expr matches, in chunk order
func Find(doc *model.Document, expr FilterExpr) []string {
	var ids []string
	for _, t := range Targets(doc) {
		if expr.Matches(t) {
			ids = append(ids, t.Chunk.ID)
		}
	}
	return ids
}

// Runs groups matched IDs into maximal runs of adjacent visible positions.
// Entries of visible that are not in matched, such as collapsed groups,
// break a run.
func Runs(visible []string, matched []string) []Run {
	set := make(map[string]bool, len(matched))
	for _, id := range matched {
		set[id] = true
	}

	var runs []Run
	start := -1
	for i, id := range visible {
		switch {
		case set[id] && start < 0:
			start = i
		case !set[id] && start >= 0:
			runs = append(runs, Run{Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, Run{Start: start, End: len(visible)})
	}
	return runs
}

// Stage parses query, finds the matching chunks of doc and stages every
// visible run of matches as a selection on ctrl. It returns the staged runs.
// When any run conflicts, nothing is staged.
func Stage(ctrl *folding.Controller, doc *model.Document, query string) ([]Run, error) {
	expr, err := ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query: %w", err)
	}

	runs := Runs(ctrl.VisibleSequence(), Find(doc, expr))
	ranges := make([]folding.Range, len(runs))
	for i, r := range runs {
		ranges[i] = folding.Range{Start: r.Start, End: r.End}
	}
	if err := ctrl.AddSelections(ranges); err != nil {
		return nil, fmt.Errorf("failed to stage query: %w", err)
	}
	return runs, nil
}
