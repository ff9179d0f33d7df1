package pageobject

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"dashnav/internal/config"
	"dashnav/internal/fixtures"
	"dashnav/internal/logging"
	"dashnav/internal/metrics"
	"dashnav/internal/nav"
	"dashnav/internal/wait"

	"github.com/google/uuid"
)

// Selectors is the sidebar DOM contract.
type Selectors = config.SelectorsConfig

// Options configures a Helper. Zero values select the defaults.
type Options struct {
	BaseURL   string
	Selectors Selectors
	Wait      wait.Options
	Stubs     []fixtures.Stub

	// SkipSubmenuComponents clicks submenu entries without asserting their
	// component. Those steps are reported as unchecked.
	SkipSubmenuComponents bool

	Metrics *metrics.Recorder
}

// NavigationHelper walks the sidebar of one page.
type NavigationHelper struct {
	page Page
	opts Options
}

// NewNavigationHelper creates a helper for page.
func NewNavigationHelper(page Page, opts Options) *NavigationHelper {
	if opts.Selectors == (Selectors{}) {
		opts.Selectors = config.DefaultSelectors()
	}
	if opts.Wait.Timeout <= 0 {
		opts.Wait.Timeout = wait.DefaultTimeout
	}
	if opts.Wait.Interval <= 0 {
		opts.Wait.Interval = wait.DefaultInterval
	}
	if opts.Stubs == nil {
		opts.Stubs = fixtures.Default()
	}
	return &NavigationHelper{page: page, opts: opts}
}

// Sidebar returns the navigation container.
func (h *NavigationHelper) Sidebar(ctx context.Context) (Element, error) {
	return h.find(ctx, h.page, "sidebar", h.opts.Selectors.Sidebar)
}

// SidebarToggle returns the control that shows and hides the sidebar.
func (h *NavigationHelper) SidebarToggle(ctx context.Context) (Element, error) {
	return h.find(ctx, h.page, "sidebar toggle", h.opts.Selectors.SidebarToggle)
}

// Visit opens a named page and waits for its marker.
func (h *NavigationHelper) Visit(ctx context.Context, name string) error {
	p, ok := nav.LookupPage(name)
	if !ok {
		return fmt.Errorf("unknown page %q (known: %v)", name, nav.PageNames())
	}
	target, err := resolve(h.opts.BaseURL, p.URL)
	if err != nil {
		return err
	}
	logging.NavigationDebug("visiting %s at %s", name, target)
	if err := h.page.Navigate(ctx, target); err != nil {
		return fmt.Errorf("navigate to %s: %w", target, err)
	}
	if _, err := h.find(ctx, h.page, "page marker "+p.Marker, p.Marker); err != nil {
		return fmt.Errorf("visit %s: %w", name, err)
	}
	return nil
}

// VerifyNavigations registers the status stubs, then clicks every entry of
// tree in order, asserting leaves render their component and descending
// into branches. The first failure aborts the walk.
func (h *NavigationHelper) VerifyNavigations(ctx context.Context, tree nav.Tree) (*Report, error) {
	r := h.newReport()
	log := logging.Get(logging.CategoryNavigation).With("run", r.RunID)

	if err := h.page.Intercept(ctx, h.opts.Stubs); err != nil {
		return h.finish(r, fmt.Errorf("register intercepts: %w", err))
	}
	log.Debug("registered %d status stubs", len(h.opts.Stubs))
	if h.opts.SkipSubmenuComponents {
		log.Warn("submenu components are not asserted in this run")
	}

	for _, n := range tree {
		label := n.Label()
		path := []string{label}
		start := time.Now()

		link, err := h.findText(ctx, h.page, "menu "+label, h.opts.Selectors.MenuLink, label)
		if err != nil {
			return h.finish(r, &StepError{Path: path, Component: componentOf(n), Err: err})
		}
		if err := h.click(ctx, link, "menu "+label); err != nil {
			return h.finish(r, &StepError{Path: path, Component: componentOf(n), Err: err})
		}

		switch v := n.(type) {
		case *nav.Branch:
			h.record(r, Step{Path: path, Branch: true, Duration: time.Since(start)})
			if err := h.verifySubmenu(ctx, r, path, v.Children); err != nil {
				return h.finish(r, err)
			}
		case *nav.Leaf:
			if _, err := h.find(ctx, h.page, "component "+v.Component, v.Component); err != nil {
				return h.finish(r, &StepError{Path: path, Component: v.Component, Err: err})
			}
			h.record(r, Step{Path: path, Component: v.Component, Checked: true, Duration: time.Since(start)})
			log.Debug("%s rendered %s", label, v.Component)
		}
	}

	log.Info("walked %d entries", len(r.Steps))
	return h.finish(r, nil)
}

// VerifySubmenu clicks each child of parent inside the parent's menu item.
func (h *NavigationHelper) VerifySubmenu(ctx context.Context, parent string, children []nav.Node) (*Report, error) {
	r := h.newReport()
	return h.finish(r, h.verifySubmenu(ctx, r, []string{parent}, children))
}

func (h *NavigationHelper) verifySubmenu(ctx context.Context, r *Report, parentPath []string, children []nav.Node) error {
	for _, child := range children {
		label := child.Label()
		path := append(append([]string(nil), parentPath...), label)
		start := time.Now()

		scope, err := h.scopeFor(ctx, parentPath)
		if err != nil {
			return &StepError{Path: path, Component: componentOf(child), Err: err}
		}
		link, err := h.findText(ctx, scope, "submenu "+label, h.opts.Selectors.SubmenuLink, label)
		if err != nil {
			return &StepError{Path: path, Component: componentOf(child), Err: err}
		}
		if err := h.click(ctx, link, "submenu "+label); err != nil {
			return &StepError{Path: path, Component: componentOf(child), Err: err}
		}

		switch v := child.(type) {
		case *nav.Branch:
			h.record(r, Step{Path: path, Branch: true, Duration: time.Since(start)})
			if err := h.verifySubmenu(ctx, r, path, v.Children); err != nil {
				return err
			}
		case *nav.Leaf:
			checked := !h.opts.SkipSubmenuComponents
			if checked {
				if _, err := h.find(ctx, h.page, "component "+v.Component, v.Component); err != nil {
					return &StepError{Path: path, Component: v.Component, Err: err}
				}
			}
			h.record(r, Step{Path: path, Component: v.Component, Checked: checked, Duration: time.Since(start)})
		}
	}
	return nil
}

// scopeFor narrows to the top-level item of path[0], then to the submenu
// item of every further label.
func (h *NavigationHelper) scopeFor(ctx context.Context, path []string) (Scope, error) {
	scope, err := h.findText(ctx, h.page, "menu item "+path[0], h.opts.Selectors.MenuItem, path[0])
	if err != nil {
		return nil, err
	}
	for _, label := range path[1:] {
		next, err := h.findText(ctx, scope, "submenu item "+label, h.opts.Selectors.SubmenuItem, label)
		if err != nil {
			return nil, err
		}
		scope = next
	}
	return scope, nil
}

func (h *NavigationHelper) find(ctx context.Context, scope Scope, what, selector string) (Element, error) {
	var found Element
	err := wait.Until(ctx, what, h.opts.Wait, func(ctx context.Context) (bool, error) {
		el, ok, err := scope.Find(ctx, selector)
		if err != nil {
			return false, fmt.Errorf("find %s: %w", selector, err)
		}
		if !ok {
			return false, wait.Retry(fmt.Errorf("%w: %s", ErrElementNotFound, selector))
		}
		found = el
		return true, nil
	})
	return found, err
}

func (h *NavigationHelper) findText(ctx context.Context, scope Scope, what, selector, text string) (Element, error) {
	var found Element
	err := wait.Until(ctx, what, h.opts.Wait, func(ctx context.Context) (bool, error) {
		el, ok, err := scope.FindText(ctx, selector, text)
		if err != nil {
			return false, fmt.Errorf("find %s containing %q: %w", selector, text, err)
		}
		if !ok {
			return false, wait.Retry(fmt.Errorf("%w: %s containing %q", ErrElementNotFound, selector, text))
		}
		found = el
		return true, nil
	})
	return found, err
}

func (h *NavigationHelper) click(ctx context.Context, el Element, what string) error {
	start := time.Now()
	clickCtx, cancel := context.WithTimeout(ctx, h.opts.Wait.Timeout)
	defer cancel()
	err := el.Click(clickCtx)
	if err != nil && errors.Is(clickCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return &wait.TimeoutError{What: "click " + what, Elapsed: time.Since(start), Last: err}
	}
	if err != nil {
		return fmt.Errorf("click %s: %w", what, err)
	}
	return nil
}

func (h *NavigationHelper) newReport() *Report {
	return &Report{RunID: uuid.NewString(), Started: time.Now()}
}

func (h *NavigationHelper) record(r *Report, s Step) {
	r.Steps = append(r.Steps, s)
	result := metrics.ResultPassed
	if !s.Branch && !s.Checked {
		result = metrics.ResultUnchecked
	}
	h.opts.Metrics.RecordStep(result, s.Duration)
}

func (h *NavigationHelper) finish(r *Report, err error) (*Report, error) {
	r.Finished = time.Now()
	r.Err = err
	if err != nil {
		h.opts.Metrics.RecordStep(metrics.ResultFailed, 0)
		logging.Get(logging.CategoryNavigation).With("run", r.RunID).Error("walk failed: %v", err)
	}
	h.opts.Metrics.RecordRun(err == nil, r.Finished)
	return r, err
}

func componentOf(n nav.Node) string {
	if l, ok := n.(*nav.Leaf); ok {
		return l.Component
	}
	return ""
}

func resolve(base, fragment string) (string, error) {
	b, err := url.Parse(base)
	if err != nil || b.Scheme == "" {
		return "", fmt.Errorf("invalid base URL %q", base)
	}
	ref, err := url.Parse(fragment)
	if err != nil {
		return "", fmt.Errorf("invalid page URL %q: %w", fragment, err)
	}
	return b.ResolveReference(ref).String(), nil
}
