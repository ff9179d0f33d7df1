// Package diff compares sidebar outlines line by line using sergi/go-diff.
package diff

import (
	"fmt"
	"io"
	"strings"

	"dashnav/internal/nav"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineType represents the type of diff line
type LineType int

const (
	LineContext LineType = iota // Unchanged context line
	LineAdded                   // Added line
	LineRemoved                 // Removed line
)

// DefaultContext is the number of unchanged lines kept around a change.
const DefaultContext = 3

// Line represents a single line in the diff
type Line struct {
	Content string
	Type    LineType
}

// Hunk represents a group of changes
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// Result is the line diff of two outlines.
type Result struct {
	OldName string
	NewName string
	Hunks   []Hunk
}

// Changed reports whether the outlines differ.
func (r *Result) Changed() bool {
	return len(r.Hunks) > 0
}

// Trees diffs the outlines of two sidebar trees.
func Trees(oldName, newName string, oldTree, newTree nav.Tree) *Result {
	return Lines(oldName, newName, oldTree.Outline(), newTree.Outline(), DefaultContext)
}

// Lines diffs two newline-separated texts, keeping contextLines of
// unchanged lines around every change.
func Lines(oldName, newName, oldText, newText string, contextLines int) *Result {
	r := &Result{OldName: oldName, NewName: newName}
	if oldText == newText {
		return r
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	// Line-level reduction avoids newline boundary artifacts.
	a, b, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	r.Hunks = group(toOperations(diffs), contextLines)
	return r
}

// operation is one line with its position in the old and new text.
type operation struct {
	typ     LineType
	oldLine int
	newLine int
	content string
}

func toOperations(diffs []diffmatchpatch.Diff) []operation {
	var ops []operation
	oldLine, newLine := 0, 0
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			op := operation{oldLine: oldLine, newLine: newLine, content: line}
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				op.typ = LineContext
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				op.typ = LineRemoved
				oldLine++
			case diffmatchpatch.DiffInsert:
				op.typ = LineAdded
				newLine++
			}
			ops = append(ops, op)
		}
	}
	return ops
}

// group merges changes closer than 2*contextLines into one hunk.
func group(ops []operation, contextLines int) []Hunk {
	if contextLines < 0 {
		contextLines = 0
	}
	var hunks []Hunk
	start, end := -1, -1
	flush := func() {
		if start < 0 {
			return
		}
		h := Hunk{OldStart: ops[start].oldLine + 1, NewStart: ops[start].newLine + 1}
		for _, op := range ops[start:end] {
			h.Lines = append(h.Lines, Line{Content: op.content, Type: op.typ})
			if op.typ != LineAdded {
				h.OldCount++
			}
			if op.typ != LineRemoved {
				h.NewCount++
			}
		}
		if h.OldCount == 0 {
			h.OldStart--
		}
		if h.NewCount == 0 {
			h.NewStart--
		}
		hunks = append(hunks, h)
		start, end = -1, -1
	}

	for i, op := range ops {
		if op.typ == LineContext {
			continue
		}
		lo := max(0, i-contextLines)
		hi := min(len(ops), i+contextLines+1)
		if start >= 0 && lo > end {
			flush()
		}
		if start < 0 {
			start = lo
		}
		end = hi
	}
	flush()
	return hunks
}

// WriteUnified writes the result in unified diff format.
func (r *Result) WriteUnified(w io.Writer) error {
	if !r.Changed() {
		return nil
	}
	if _, err := fmt.Fprintf(w, "--- %s\n+++ %s\n", r.OldName, r.NewName); err != nil {
		return err
	}
	for _, h := range r.Hunks {
		if _, err := fmt.Fprintf(w, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldCount, h.NewStart, h.NewCount); err != nil {
			return err
		}
		for _, l := range h.Lines {
			prefix := " "
			switch l.Type {
			case LineAdded:
				prefix = "+"
			case LineRemoved:
				prefix = "-"
			}
			if _, err := fmt.Fprintf(w, "%s%s\n", prefix, l.Content); err != nil {
				return err
			}
		}
	}
	return nil
}
