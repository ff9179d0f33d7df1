package nav

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// entry is the on-disk shape: a menu with either a component or submenus.
type entry struct {
	Menu      string  `yaml:"menu"`
	Component string  `yaml:"component,omitempty"`
	Submenus  []entry `yaml:"submenus,omitempty"`
}

// ParseYAML decodes a tree from its YAML form.
func ParseYAML(data []byte) (Tree, error) {
	var raw []entry
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode navigation yaml: %w", err)
	}
	tree, err := fromEntries(nil, raw)
	if err != nil {
		return nil, err
	}
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	return tree, nil
}

// LoadFile reads a YAML tree from disk.
func LoadFile(path string) (Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read navigation tree: %w", err)
	}
	tree, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// MarshalYAML encodes the tree in the same shape ParseYAML accepts.
func (t Tree) MarshalYAML() (interface{}, error) {
	return toEntries(t), nil
}

func fromEntries(parent []string, raw []entry) (Tree, error) {
	out := make(Tree, 0, len(raw))
	for _, e := range raw {
		path := appendPath(parent, e.Menu)
		hasComponent := e.Component != ""
		hasSubmenus := len(e.Submenus) > 0
		switch {
		case hasComponent && hasSubmenus:
			return nil, fmt.Errorf("%w: %s has both component and submenus", ErrInvalidTree, pathString(path))
		case !hasComponent && !hasSubmenus:
			return nil, fmt.Errorf("%w: %s has neither component nor submenus", ErrInvalidTree, pathString(path))
		case hasComponent:
			out = append(out, L(e.Menu, e.Component))
		default:
			children, err := fromEntries(path, e.Submenus)
			if err != nil {
				return nil, err
			}
			out = append(out, B(e.Menu, children...))
		}
	}
	return out, nil
}

func toEntries(nodes []Node) []entry {
	out := make([]entry, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case *Leaf:
			out = append(out, entry{Menu: v.Menu, Component: v.Component})
		case *Branch:
			out = append(out, entry{Menu: v.Menu, Submenus: toEntries(v.Children)})
		}
	}
	return out
}
