package browser

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"dashnav/internal/fixtures"
	"dashnav/internal/logging"
	"dashnav/internal/pageobject"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Page is a tracked Chrome tab. It implements pageobject.Page with
// non-waiting lookups; the helper owns all polling.
type Page struct {
	page       *rod.Page
	navTimeout time.Duration
	meta       Session

	mu     sync.Mutex
	router *rod.HijackRouter
	stubs  []fixtures.Stub
	hits   map[string]int
	onHit  func(fixtures.Stub)
}

var _ pageobject.Page = (*Page)(nil)

func newPage(p *rod.Page, navTimeout time.Duration) *Page {
	return &Page{page: p, navTimeout: navTimeout, hits: make(map[string]int)}
}

// Session returns the page metadata.
func (p *Page) Session() Session { return p.meta }

// Rod exposes the underlying rod page.
func (p *Page) Rod() *rod.Page { return p.page }

// OnIntercept registers a callback run for every stubbed response.
func (p *Page) OnIntercept(fn func(fixtures.Stub)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onHit = fn
}

// Hits returns how many times the named stub has answered a request.
func (p *Page) Hits(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits[name]
}

// Navigate loads url and waits for the load event.
func (p *Page) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx).Timeout(p.navTimeout)
	if err := page.Navigate(url); err != nil {
		return err
	}
	return page.WaitLoad()
}

// Find implements pageobject.Scope.
func (p *Page) Find(ctx context.Context, selector string) (pageobject.Element, bool, error) {
	return wrap(p.page.Context(ctx).Has(selector))
}

// FindText implements pageobject.Scope.
func (p *Page) FindText(ctx context.Context, selector, text string) (pageobject.Element, bool, error) {
	return wrap(p.page.Context(ctx).HasR(selector, textPattern(text)))
}

// Intercept installs stubs as the page's fixture table, replacing any
// earlier set. Matching requests never reach the network; everything else
// continues untouched. The request router is started on first use and
// stays up until Close, so swapping the table never pauses interception.
func (p *Page) Intercept(ctx context.Context, stubs []fixtures.Stub) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.setStubs(stubs)
	if p.router == nil && len(stubs) > 0 {
		router := p.page.HijackRequests()
		if err := router.Add("*", "", p.serve); err != nil {
			_ = router.Stop()
			return fmt.Errorf("intercept status endpoints: %w", err)
		}
		// Handlers block on p.mu until Intercept returns.
		go router.Run()
		p.router = router
	}
	logging.BrowserDebug("page %s intercepting %d status endpoints", p.meta.ID, len(stubs))
	return nil
}

// setStubs replaces the fixture table. Callers hold p.mu.
func (p *Page) setStubs(stubs []fixtures.Stub) {
	p.stubs = append([]fixtures.Stub(nil), stubs...)
}

// stubFor returns the stub answering path in the current table.
func (p *Page) stubFor(path string) (fixtures.Stub, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fixtures.Lookup(p.stubs, path)
}

func (p *Page) serve(h *rod.Hijack) {
	s, ok := p.stubFor(h.Request.URL().Path)
	if !ok {
		h.ContinueRequest(&proto.FetchContinueRequest{})
		return
	}
	h.Response.Payload().ResponseCode = s.Status
	h.Response.SetHeader("Content-Type", s.ContentType)
	h.Response.SetBody(s.Body)
	p.recordHit(s)
}

// stopRouter stops the router outside the lock, since its handlers take
// the lock to read the table.
func (p *Page) stopRouter() {
	p.mu.Lock()
	old := p.router
	p.router = nil
	p.stubs = nil
	p.mu.Unlock()
	if old == nil {
		return
	}
	if err := old.Stop(); err != nil {
		logging.BrowserWarn("stop request router: %v", err)
	}
}

func (p *Page) recordHit(s fixtures.Stub) {
	p.mu.Lock()
	p.hits[s.Name]++
	fn := p.onHit
	p.mu.Unlock()
	if fn != nil {
		fn(s)
	}
	logging.BrowserDebug("served %s from fixture %s", s.Path, s.File)
}

// Close stops request interception and closes the tab.
func (p *Page) Close() error {
	p.stopRouter()
	return p.page.Close()
}

// Element wraps a rod element.
type Element struct {
	el *rod.Element
}

var _ pageobject.Element = (*Element)(nil)

// Find implements pageobject.Scope within the element.
func (e *Element) Find(ctx context.Context, selector string) (pageobject.Element, bool, error) {
	return wrap(e.el.Context(ctx).Has(selector))
}

// FindText implements pageobject.Scope within the element.
func (e *Element) FindText(ctx context.Context, selector, text string) (pageobject.Element, bool, error) {
	return wrap(e.el.Context(ctx).HasR(selector, textPattern(text)))
}

// Click scrolls the element into view and left-clicks it once.
func (e *Element) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func wrap(ok bool, el *rod.Element, err error) (pageobject.Element, bool, error) {
	if err != nil {
		return nil, false, err
	}
	if !ok || el == nil {
		return nil, false, nil
	}
	return &Element{el: el}, true, nil
}

// textPattern matches text as a literal substring of an element's text.
func textPattern(text string) string {
	return regexp.QuoteMeta(text)
}
