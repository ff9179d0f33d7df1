// Package nav declares the dashboard sidebar as an ordered tree of menu
// entries and the named pages the helper can visit directly.
package nav

import (
	"errors"
	"fmt"
	"strings"
)

// Node is one sidebar entry. It is either a *Leaf or a *Branch.
type Node interface {
	Label() string
	isNode()
}

// Leaf is an entry that opens one screen, identified by its component marker.
type Leaf struct {
	Menu      string
	Component string
}

// Branch is an entry that expands into ordered submenus.
type Branch struct {
	Menu     string
	Children []Node
}

func (l *Leaf) Label() string   { return l.Menu }
func (b *Branch) Label() string { return b.Menu }

func (*Leaf) isNode()   {}
func (*Branch) isNode() {}

// L builds a leaf.
func L(menu, component string) *Leaf {
	return &Leaf{Menu: menu, Component: component}
}

// B builds a branch.
func B(menu string, children ...Node) *Branch {
	return &Branch{Menu: menu, Children: children}
}

// Tree is the ordered list of top-level sidebar entries.
type Tree []Node

// ErrInvalidTree is wrapped by every validation failure.
var ErrInvalidTree = errors.New("invalid navigation tree")

// Validate checks labels, leaf components, branch children and sibling uniqueness.
func (t Tree) Validate() error {
	return validateLevel(nil, t)
}

func validateLevel(parent []string, nodes []Node) error {
	seen := make(map[string]bool, len(nodes))
	for i, n := range nodes {
		if n == nil {
			return fmt.Errorf("%w: nil entry at %s[%d]", ErrInvalidTree, pathString(parent), i)
		}
		label := strings.TrimSpace(n.Label())
		if label == "" {
			return fmt.Errorf("%w: empty label at %s[%d]", ErrInvalidTree, pathString(parent), i)
		}
		if seen[label] {
			return fmt.Errorf("%w: duplicate label %q under %s", ErrInvalidTree, label, pathString(parent))
		}
		seen[label] = true

		path := appendPath(parent, label)
		switch v := n.(type) {
		case *Leaf:
			if strings.TrimSpace(v.Component) == "" {
				return fmt.Errorf("%w: %s has no component", ErrInvalidTree, pathString(path))
			}
		case *Branch:
			if len(v.Children) == 0 {
				return fmt.Errorf("%w: %s has no submenus", ErrInvalidTree, pathString(path))
			}
			if err := validateLevel(path, v.Children); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown node type %T at %s", ErrInvalidTree, n, pathString(path))
		}
	}
	return nil
}

// WalkFunc is called for every node with the labels leading to it, the node
// label included. Returning a non-nil error stops the walk.
type WalkFunc func(path []string, n Node) error

// Walk visits the tree depth-first in declaration order.
func (t Tree) Walk(fn WalkFunc) error {
	return walk(nil, t, fn)
}

func walk(parent []string, nodes []Node, fn WalkFunc) error {
	for _, n := range nodes {
		path := appendPath(parent, n.Label())
		if err := fn(path, n); err != nil {
			return err
		}
		if b, ok := n.(*Branch); ok {
			if err := walk(path, b.Children, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// LeafRef is a leaf together with its label path.
type LeafRef struct {
	Path      []string
	Component string
}

// Leaves flattens the tree into its leaves, in declaration order.
func (t Tree) Leaves() []LeafRef {
	var out []LeafRef
	_ = t.Walk(func(path []string, n Node) error {
		if l, ok := n.(*Leaf); ok {
			out = append(out, LeafRef{Path: path, Component: l.Component})
		}
		return nil
	})
	return out
}

// Labels returns the top-level labels in order.
func (t Tree) Labels() []string {
	out := make([]string, 0, len(t))
	for _, n := range t {
		out = append(out, n.Label())
	}
	return out
}

// Find returns the node at the given label path.
func (t Tree) Find(path ...string) (Node, bool) {
	nodes := []Node(t)
	var found Node
	for _, label := range path {
		found = nil
		for _, n := range nodes {
			if n.Label() == label {
				found = n
				break
			}
		}
		if found == nil {
			return nil, false
		}
		if b, ok := found.(*Branch); ok {
			nodes = b.Children
		} else {
			nodes = nil
		}
	}
	return found, found != nil
}

// appendPath copies so sibling paths never share a backing array.
func appendPath(parent []string, label string) []string {
	out := make([]string, len(parent), len(parent)+1)
	copy(out, parent)
	return append(out, label)
}

func pathString(path []string) string {
	if len(path) == 0 {
		return "root"
	}
	return strings.Join(path, " > ")
}

// PathString renders a label path the way errors and reports print it.
func PathString(path []string) string {
	return pathString(path)
}
