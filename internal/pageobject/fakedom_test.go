package pageobject

import (
	"context"
	"errors"
	"strings"
	"sync"

	"dashnav/internal/config"
	"dashnav/internal/fixtures"
	"dashnav/internal/nav"
)

// fakeDashboard models the rendered sidebar of a nav.Tree: clicking a leaf
// renders its component, clicking a branch expands it. It records every
// interaction so tests can check ordering.
type fakeDashboard struct {
	mu  sync.Mutex
	sel config.SelectorsConfig

	tree     nav.Tree
	rendered string
	expanded map[string]bool

	// breakages
	wrongComponent map[string]string // label path -> component actually rendered
	hiddenLabels   map[string]bool   // labels missing from the sidebar
	lateMarkers    int               // lookups before a marker becomes visible
	clickErr       error
	noSidebar      bool

	events  []string
	stubs   []fixtures.Stub
	navTo   []string
	lookups int
	pending int
}

func newFakeDashboard(tree nav.Tree) *fakeDashboard {
	return &fakeDashboard{
		sel:            config.DefaultSelectors(),
		tree:           tree,
		expanded:       make(map[string]bool),
		wrongComponent: make(map[string]string),
		hiddenLabels:   make(map[string]bool),
	}
}

func (d *fakeDashboard) log(ev string) {
	d.events = append(d.events, ev)
}

func (d *fakeDashboard) Events() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.events...)
}

func (d *fakeDashboard) Clicks() []string {
	var out []string
	for _, ev := range d.Events() {
		if strings.HasPrefix(ev, "click ") {
			out = append(out, strings.TrimPrefix(ev, "click "))
		}
	}
	return out
}

func (d *fakeDashboard) Navigate(ctx context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.navTo = append(d.navTo, url)
	d.log("navigate " + url)
	if strings.HasSuffix(url, "#/dashboard") {
		d.render("cd-dashboard")
	}
	return nil
}

func (d *fakeDashboard) Intercept(ctx context.Context, stubs []fixtures.Stub) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stubs = append([]fixtures.Stub(nil), stubs...)
	d.log("intercept")
	return nil
}

func (d *fakeDashboard) render(component string) {
	d.rendered = component
	d.pending = d.lateMarkers
}

func (d *fakeDashboard) Find(ctx context.Context, selector string) (Element, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookups++

	switch selector {
	case d.sel.Sidebar:
		if d.noSidebar {
			return nil, false, nil
		}
		return &fakeElement{d: d, kind: "sidebar"}, true, nil
	case d.sel.SidebarToggle:
		return &fakeElement{d: d, kind: "toggle"}, true, nil
	}
	if d.rendered != "" && selector == d.rendered {
		if d.pending > 0 {
			d.pending--
			return nil, false, nil
		}
		return &fakeElement{d: d, kind: "marker"}, true, nil
	}
	return nil, false, nil
}

func (d *fakeDashboard) FindText(ctx context.Context, selector, text string) (Element, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookups++

	switch selector {
	case d.sel.MenuLink:
		if n := d.match(d.tree, text); n != nil {
			return &fakeElement{d: d, kind: "link", path: []string{n.Label()}, node: n}, true, nil
		}
	case d.sel.MenuItem:
		if n := d.match(d.tree, text); n != nil {
			return &fakeElement{d: d, kind: "item", path: []string{n.Label()}, node: n}, true, nil
		}
	}
	return nil, false, nil
}

// match does a contains-text lookup over visible siblings, first match wins.
func (d *fakeDashboard) match(nodes []nav.Node, text string) nav.Node {
	for _, n := range nodes {
		if d.hiddenLabels[n.Label()] {
			continue
		}
		if strings.Contains(n.Label(), text) {
			return n
		}
	}
	return nil
}

type fakeElement struct {
	d    *fakeDashboard
	kind string
	path []string
	node nav.Node
}

func (e *fakeElement) Find(ctx context.Context, selector string) (Element, bool, error) {
	return nil, false, nil
}

// FindText inside a menu item only sees submenus once the item is expanded.
func (e *fakeElement) FindText(ctx context.Context, selector, text string) (Element, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	d := e.d
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookups++

	b, ok := e.node.(*nav.Branch)
	if !ok || !d.expanded[nav.PathString(e.path)] {
		return nil, false, nil
	}
	n := d.match(b.Children, text)
	if n == nil {
		return nil, false, nil
	}
	path := append(append([]string(nil), e.path...), n.Label())
	switch selector {
	case d.sel.SubmenuLink:
		return &fakeElement{d: d, kind: "link", path: path, node: n}, true, nil
	case d.sel.SubmenuItem:
		return &fakeElement{d: d, kind: "item", path: path, node: n}, true, nil
	}
	return nil, false, nil
}

func (e *fakeElement) Click(ctx context.Context) error {
	d := e.d
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.clickErr != nil {
		return d.clickErr
	}
	if e.kind != "link" {
		return errors.New("not clickable")
	}
	key := nav.PathString(e.path)
	d.log("click " + key)
	switch v := e.node.(type) {
	case *nav.Branch:
		d.expanded[key] = true
	case *nav.Leaf:
		if wrong, ok := d.wrongComponent[key]; ok {
			d.render(wrong)
		} else {
			d.render(v.Component)
		}
	}
	return nil
}
