package model

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingElement is returned when a chunk references an element that is not in the tree
	ErrMissingElement = errors.New("chunk references unknown element")
	// ErrDuplicateID is returned when a chunk or element ID is used twice
	ErrDuplicateID = errors.New("duplicate id")
	// ErrMalformedTree is returned for cyclic or too deep element trees
	ErrMalformedTree = errors.New("malformed element tree")
)

// InputError describes an input shape error for a single ID
type InputError struct {
	ID  string
	Err error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.ID)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Validate checks that the chunk sequence and the element tree agree
func (d *Document) Validate() error {
	if d == nil {
		return &InputError{Err: ErrMalformedTree}
	}

	elements := make(map[string]bool)
	if d.Root != nil {
		if err := validateTree(d.Root, elements); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(d.Chunks))
	for _, c := range d.Chunks {
		if seen[c.ID] {
			return &InputError{ID: c.ID, Err: ErrDuplicateID}
		}
		seen[c.ID] = true
		if !elements[c.ElementID] {
			return &InputError{ID: c.ElementID, Err: ErrMissingElement}
		}
	}
	return nil
}

func validateTree(root *Element, ids map[string]bool) error {
	onPath := make(map[*Element]bool)
	type entry struct {
		el    *Element
		depth int
		exit  bool
	}
	stack := []entry{{el: root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.exit {
			delete(onPath, top.el)
			continue
		}
		if top.el == nil {
			continue
		}
		if onPath[top.el] || top.depth > MaxDepth {
			return &InputError{ID: top.el.ID, Err: ErrMalformedTree}
		}
		if ids[top.el.ID] {
			return &InputError{ID: top.el.ID, Err: ErrDuplicateID}
		}
		ids[top.el.ID] = true
		onPath[top.el] = true
		stack = append(stack, entry{el: top.el, exit: true})
		for i := len(top.el.Children) - 1; i >= 0; i-- {
			stack = append(stack, entry{el: top.el.Children[i], depth: top.depth + 1})
		}
	}
	return nil
}
