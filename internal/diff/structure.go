package diff

import (
	"fmt"
	"hash/fnv"
	"log"
	"sort"

	"github.com/pstuifzand/chunkview/internal/model"
)

// DiffStructure compares the element trees of two documents. It never fails:
// nil documents are treated as empty, and trees without any common identity
// degrade to everything deleted plus everything inserted.
func DiffStructure(before, after *model.Document, opts Options) *StructuralDiff {
	d := &structDiffer{
		opts:        opts.withDefaults(),
		seenBefore:  make(map[*model.Element]bool),
		seenAfter:   make(map[*model.Element]bool),
		fingerprint: make(map[*model.Element]uint64),
	}

	var beforeRoot, afterRoot *model.Element
	if before != nil {
		beforeRoot = before.Root
	}
	if after != nil {
		afterRoot = after.Root
	}

	root := &NodeDelta{Status: StatusEqual, BeforeIndex: -1, AfterIndex: -1}
	if beforeRoot != nil || afterRoot != nil {
		root = d.align(beforeRoot, afterRoot, -1, -1, nil)
		d.detectMoves(root)
	}
	markChanged(root)

	result := &StructuralDiff{
		Root:  root,
		Index: make(map[string]*NodeDelta),
	}
	root.Walk(func(node *NodeDelta, _ int) {
		if node.BeforeID != "" {
			if _, exists := result.Index[node.BeforeID]; !exists {
				result.Index[node.BeforeID] = node
			}
		}
		if node.AfterID != "" {
			if _, exists := result.Index[node.AfterID]; !exists {
				result.Index[node.AfterID] = node
			}
		}
	})
	result.Stats = summarize(root)
	result.Metrics = structuralMetrics(result.Stats, beforeRoot, afterRoot)
	return result
}

type structDiffer struct {
	opts        Options
	seenBefore  map[*model.Element]bool
	seenAfter   map[*model.Element]bool
	fingerprint map[*model.Element]uint64
}

type alignTask struct {
	delta *NodeDelta
	depth int
}

// align builds the delta subtree for a (before, after) pair with an explicit
// work stack bounded by MaxDepth
func (d *structDiffer) align(before, after *model.Element, beforeIndex, afterIndex int, parent *NodeDelta) *NodeDelta {
	root := d.newDelta(before, after, beforeIndex, afterIndex, parent)
	stack := []alignTask{{delta: root}}

	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if task.depth >= d.opts.MaxDepth {
			log.Printf("diff: depth ceiling %d reached below %s, children omitted", d.opts.MaxDepth, nodeLabel(task.delta))
			continue
		}

		pairs := d.matchChildren(childrenOf(task.delta.before, d.seenBefore), childrenOf(task.delta.after, d.seenAfter))
		reordered := false
		lastBefore := -1
		for _, p := range pairs {
			child := d.newDelta(p.before, p.after, p.beforeIndex, p.afterIndex, task.delta)
			task.delta.Children = append(task.delta.Children, child)
			if p.before != nil && p.after != nil {
				if p.beforeIndex < lastBefore {
					reordered = true
				}
				lastBefore = p.beforeIndex
			}
			stack = append(stack, alignTask{delta: child, depth: task.depth + 1})
		}
		task.delta.ChildrenReordered = reordered
	}
	return root
}

func (d *structDiffer) newDelta(before, after *model.Element, beforeIndex, afterIndex int, parent *NodeDelta) *NodeDelta {
	delta := &NodeDelta{
		BeforeIndex: -1,
		AfterIndex:  -1,
		before:      before,
		after:       after,
		parent:      parent,
	}
	if parent != nil {
		delta.BeforePath = parent.BeforePath
		delta.AfterPath = parent.AfterPath
	}

	if before != nil {
		d.seenBefore[before] = true
		delta.BeforeID = before.ID
		delta.BeforeIndex = max(beforeIndex, 0)
		delta.BeforePath = extendPath(delta.BeforePath, before, beforeIndex)
		delta.ElementType = before.Type
		delta.Key = before.Key
	}
	if after != nil {
		d.seenAfter[after] = true
		delta.AfterID = after.ID
		delta.AfterIndex = max(afterIndex, 0)
		delta.AfterPath = extendPath(delta.AfterPath, after, afterIndex)
		delta.ElementType = after.Type
		delta.Key = after.Key
	}
	if before == nil {
		delta.BeforePath = nil
	}
	if after == nil {
		delta.AfterPath = nil
	}

	switch {
	case before == nil:
		delta.Status = StatusInserted
		if after.HasText {
			delta.TextEdits = []TextEdit{{Op: OpInsert, After: after.Text}}
		}
	case after == nil:
		delta.Status = StatusDeleted
		if before.HasText {
			delta.TextEdits = []TextEdit{{Op: OpDelete, Before: before.Text}}
		}
	default:
		delta.Status = StatusEqual
		delta.AttrChanges = compareAttributes(before, after)
		delta.TextEdits = DiffText(before.Text, after.Text, d.opts.Granularity)
		if before.Type != after.Type || len(delta.AttrChanges) > 0 || before.Text != after.Text || before.HasText != after.HasText {
			delta.Status = StatusModified
		}
	}
	return delta
}

func extendPath(path []string, el *model.Element, index int) []string {
	if index < 0 {
		return nil
	}
	segment := el.Key
	if segment == "" {
		segment = fmt.Sprintf("[%d]", index)
	}
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, segment)
}

func childrenOf(el *model.Element, seen map[*model.Element]bool) []*model.Element {
	if el == nil {
		return nil
	}
	out := make([]*model.Element, 0, len(el.Children))
	for _, child := range el.Children {
		if child == nil || seen[child] {
			continue
		}
		out = append(out, child)
	}
	return out
}

func compareAttributes(before, after *model.Element) map[string]AttrChange {
	var changes map[string]AttrChange
	record := func(key, b, a string) {
		if changes == nil {
			changes = make(map[string]AttrChange)
		}
		changes[key] = AttrChange{Before: b, After: a}
	}
	for key, newVal := range after.Attributes {
		if oldVal, exists := before.Attributes[key]; !exists || oldVal != newVal {
			record(key, oldVal, newVal)
		}
	}
	for key, oldVal := range before.Attributes {
		if _, exists := after.Attributes[key]; !exists {
			record(key, oldVal, "")
		}
	}
	return changes
}

type childPair struct {
	before      *model.Element
	after       *model.Element
	beforeIndex int
	afterIndex  int
}

// matchChildren aligns two sibling lists. Passes, in order: stable identity,
// type and key (preferring the same position), position for unkeyed
// siblings of the same type, and finally nearest neighbour by text
// similarity. Deleted siblings are interleaved at their old position.
func (d *structDiffer) matchChildren(before, after []*model.Element) []childPair {
	used := make([]bool, len(before))
	matchOf := make([]int, len(after))
	for i := range matchOf {
		matchOf[i] = -1
	}
	take := func(ai, bi int) {
		matchOf[ai] = bi
		used[bi] = true
	}

	byID := make(map[string]int, len(before))
	for i, b := range before {
		if _, exists := byID[b.ID]; !exists && b.ID != "" {
			byID[b.ID] = i
		}
	}
	for ai, a := range after {
		if bi, ok := byID[a.ID]; ok && !used[bi] {
			take(ai, bi)
		}
	}

	for ai, a := range after {
		if matchOf[ai] >= 0 || a.Key == "" {
			continue
		}
		best := -1
		for bi, b := range before {
			if used[bi] || b.Type != a.Type || b.Key != a.Key {
				continue
			}
			if bi == ai {
				best = bi
				break
			}
			if best < 0 {
				best = bi
			}
		}
		if best >= 0 {
			take(ai, best)
		}
	}

	for ai, a := range after {
		if matchOf[ai] >= 0 || a.Key != "" || ai >= len(before) {
			continue
		}
		b := before[ai]
		if !used[ai] && b.Key == "" && b.Type == a.Type {
			take(ai, ai)
		}
	}

	for ai, a := range after {
		if matchOf[ai] >= 0 {
			continue
		}
		best, bestScore, bestDist := -1, 0.0, 0
		for bi, b := range before {
			if used[bi] || b.Type != a.Type || (a.Key != "" && b.Key != "") {
				continue
			}
			score := Similarity(subtreeText(b), subtreeText(a))
			if score < d.opts.SimilarityThreshold {
				continue
			}
			dist := abs(bi - ai)
			if best < 0 || score > bestScore || (score == bestScore && dist < bestDist) {
				best, bestScore, bestDist = bi, score, dist
			}
		}
		if best >= 0 {
			take(ai, best)
		}
	}

	pairs := make([]childPair, 0, len(before)+len(after))
	nextBefore := 0
	flushBefore := func(limit int) {
		for ; nextBefore < limit; nextBefore++ {
			if !used[nextBefore] {
				pairs = append(pairs, childPair{before: before[nextBefore], beforeIndex: nextBefore, afterIndex: -1})
			}
		}
	}
	for ai, a := range after {
		bi := matchOf[ai]
		if bi < 0 {
			pairs = append(pairs, childPair{after: a, beforeIndex: -1, afterIndex: ai})
			continue
		}
		flushBefore(bi)
		pairs = append(pairs, childPair{before: before[bi], after: a, beforeIndex: bi, afterIndex: ai})
	}
	flushBefore(len(before))
	return pairs
}

// subtreeText concatenates the text of an element and its descendants
func subtreeText(el *model.Element) string {
	var out []byte
	seen := make(map[*model.Element]bool)
	stack := []*model.Element{el}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top == nil || seen[top] {
			continue
		}
		seen[top] = true
		out = append(out, top.Text...)
		for i := len(top.Children) - 1; i >= 0; i-- {
			stack = append(stack, top.Children[i])
		}
	}
	return string(out)
}

// subtreeFingerprint hashes type, key, text, attributes and children of a
// subtree, ignoring element IDs. Computed post-order with an explicit stack.
func (d *structDiffer) subtreeFingerprint(root *model.Element) uint64 {
	type item struct {
		el   *model.Element
		exit bool
	}
	onPath := make(map[*model.Element]bool)
	stack := []item{{el: root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.el == nil {
			continue
		}
		if _, done := d.fingerprint[top.el]; done {
			continue
		}
		if !top.exit {
			if onPath[top.el] || len(onPath) > d.opts.MaxDepth {
				d.fingerprint[top.el] = 0
				continue
			}
			onPath[top.el] = true
			stack = append(stack, item{el: top.el, exit: true})
			for _, child := range top.el.Children {
				stack = append(stack, item{el: child})
			}
			continue
		}
		delete(onPath, top.el)

		h := fnv.New64a()
		fmt.Fprintf(h, "%s\x00%s\x00%t\x00%s\x00", top.el.Type, top.el.Key, top.el.HasText, top.el.Text)
		keys := make([]string, 0, len(top.el.Attributes))
		for k := range top.el.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(h, "%s=%s\x00", k, top.el.Attributes[k])
		}
		for _, child := range top.el.Children {
			fmt.Fprintf(h, "%x/", d.fingerprint[child])
		}
		d.fingerprint[top.el] = h.Sum64()
	}
	return d.fingerprint[root]
}

// detectMoves pairs deleted and inserted nodes that are the same element
// under a different parent. A pair with an unchanged subtree becomes moved;
// a pair whose content also changed becomes modified. Pairing uses the
// element ID first, then a unique subtree fingerprint; ambiguous
// fingerprints are left as deleted plus inserted.
func (d *structDiffer) detectMoves(root *NodeDelta) {
	var deleted, inserted []*NodeDelta
	root.Walk(func(node *NodeDelta, _ int) {
		switch node.Status {
		case StatusDeleted:
			deleted = append(deleted, node)
		case StatusInserted:
			inserted = append(inserted, node)
		}
	})
	if len(deleted) == 0 || len(inserted) == 0 {
		return
	}

	insertedByID := make(map[string][]*NodeDelta)
	insertedByPrint := make(map[uint64][]*NodeDelta)
	for _, ins := range inserted {
		insertedByID[ins.AfterID] = append(insertedByID[ins.AfterID], ins)
		fp := d.subtreeFingerprint(ins.after)
		insertedByPrint[fp] = append(insertedByPrint[fp], ins)
	}
	deletedByPrint := make(map[uint64]int)
	for _, del := range deleted {
		deletedByPrint[d.subtreeFingerprint(del.before)]++
	}

	// Pairs never nest: applying a pair realigns its whole subtree
	paired := make(map[*NodeDelta]bool)
	consumed := func(node *NodeDelta) bool {
		for n := node; n != nil; n = n.parent {
			if paired[n] {
				return true
			}
		}
		found := false
		node.Walk(func(n *NodeDelta, _ int) {
			if paired[n] {
				found = true
			}
		})
		return found
	}

	type move struct{ del, ins *NodeDelta }
	var moves []move
	for _, del := range deleted {
		if consumed(del) {
			continue
		}
		var match *NodeDelta
		for _, ins := range insertedByID[del.BeforeID] {
			if !consumed(ins) {
				match = ins
				break
			}
		}
		if match == nil {
			fp := d.subtreeFingerprint(del.before)
			candidates := insertedByPrint[fp]
			if len(candidates) == 1 && deletedByPrint[fp] == 1 && !consumed(candidates[0]) {
				match = candidates[0]
			}
		}
		if match == nil || isAncestor(del, match) || isAncestor(match, del) {
			continue
		}
		paired[del] = true
		paired[match] = true
		moves = append(moves, move{del: del, ins: match})
	}

	for _, m := range moves {
		d.applyMove(m.del, m.ins)
	}
}

func (d *structDiffer) applyMove(del, ins *NodeDelta) {
	removeChild(del.parent, del)

	for _, seen := range []map[*model.Element]bool{d.seenBefore, d.seenAfter} {
		clearSubtree(seen, del.before)
		clearSubtree(seen, ins.after)
	}

	parent := ins.parent
	replacement := d.align(del.before, ins.after, del.BeforeIndex, ins.AfterIndex, parent)
	replacement.Walk(func(node *NodeDelta, _ int) {
		switch {
		case node == replacement:
			node.BeforePath = del.BeforePath
		case node.before != nil:
			node.BeforePath = extendPath(node.parent.BeforePath, node.before, node.BeforeIndex)
		}
	})
	samePrint := d.subtreeFingerprint(del.before) == d.subtreeFingerprint(ins.after)
	if samePrint && replacement.Status == StatusEqual {
		replacement.Status = StatusMoved
	} else {
		replacement.Status = StatusModified
	}

	if parent == nil {
		return
	}
	for i, child := range parent.Children {
		if child == ins {
			parent.Children[i] = replacement
			return
		}
	}
}

func clearSubtree(seen map[*model.Element]bool, root *model.Element) {
	stack := []*model.Element{root}
	visited := make(map[*model.Element]bool)
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top == nil || visited[top] {
			continue
		}
		visited[top] = true
		delete(seen, top)
		stack = append(stack, top.Children...)
	}
}

func removeChild(parent, child *NodeDelta) {
	if parent == nil {
		return
	}
	for i, c := range parent.Children {
		if c == child {
			parent.Children = append(parent.Children[:i:i], parent.Children[i+1:]...)
			return
		}
	}
}

func isAncestor(ancestor, node *NodeDelta) bool {
	for n := node.parent; n != nil; n = n.parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

// markChanged sets SubtreeChanged bottom-up
func markChanged(root *NodeDelta) {
	var order []*NodeDelta
	root.Walk(func(node *NodeDelta, _ int) {
		order = append(order, node)
	})
	for i := len(order) - 1; i >= 0; i-- {
		node := order[i]
		changed := node.Status != StatusEqual || node.ChildrenReordered
		for _, child := range node.Children {
			changed = changed || child.SubtreeChanged
		}
		node.SubtreeChanged = changed
	}
}

func nodeLabel(d *NodeDelta) string {
	if d.AfterID != "" {
		return d.AfterID
	}
	return d.BeforeID
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
