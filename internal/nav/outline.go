package nav

import (
	"fmt"
	"io"
	"strings"
)

// WriteOutline writes one line per node, children indented two spaces:
// leaves as "Label -> component", branches as "Label/".
func (t Tree) WriteOutline(w io.Writer) error {
	return t.Walk(func(path []string, n Node) error {
		indent := strings.Repeat("  ", len(path)-1)
		var err error
		switch v := n.(type) {
		case *Leaf:
			_, err = fmt.Fprintf(w, "%s%s -> %s\n", indent, v.Menu, v.Component)
		case *Branch:
			_, err = fmt.Fprintf(w, "%s%s/\n", indent, v.Menu)
		}
		return err
	})
}

// Outline returns the WriteOutline text.
func (t Tree) Outline() string {
	var b strings.Builder
	_ = t.WriteOutline(&b)
	return b.String()
}
