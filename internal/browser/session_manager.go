// Package browser connects to Chrome over the DevTools protocol with go-rod
// and exposes its pages through the pageobject driver interfaces.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"dashnav/internal/logging"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
)

// Session describes the public metadata for a tracked page.
type Session struct {
	ID        string    `json:"id"`
	TargetID  string    `json:"target_id,omitempty"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Config holds browser configuration.
type Config struct {
	DebuggerURL       string        // connect to a running Chrome
	Launch            []string      // binary followed by flags, used when DebuggerURL is empty
	Headless          bool
	ViewportWidth     int
	ViewportHeight    int
	NavigationTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Headless:          true,
		ViewportWidth:     1920,
		ViewportHeight:    1080,
		NavigationTimeout: 30 * time.Second,
	}
}

// GetViewportWidth returns viewport width.
func (c Config) GetViewportWidth() int {
	if c.ViewportWidth == 0 {
		return 1920
	}
	return c.ViewportWidth
}

// GetViewportHeight returns viewport height.
func (c Config) GetViewportHeight() int {
	if c.ViewportHeight == 0 {
		return 1080
	}
	return c.ViewportHeight
}

// GetNavigationTimeout returns the navigation timeout.
func (c Config) GetNavigationTimeout() time.Duration {
	if c.NavigationTimeout <= 0 {
		return 30 * time.Second
	}
	return c.NavigationTimeout
}

// SessionManager owns the Chrome connection and tracks open pages.
type SessionManager struct {
	cfg        Config
	mu         sync.RWMutex
	browser    *rod.Browser
	launched   *launcher.Launcher // nil when attached to an external Chrome
	sessions   map[string]*Page
	controlURL string // WebSocket URL for DevTools
}

// NewSessionManager creates a new session manager.
func NewSessionManager(cfg Config) *SessionManager {
	return &SessionManager{
		cfg:      cfg,
		sessions: make(map[string]*Page),
	}
}

// Start connects to an existing Chrome or launches a new one.
func (m *SessionManager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// If we already have a browser, verify it's still alive
	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return nil
		}
		logging.BrowserWarn("stale browser connection detected, reconnecting")
		_ = m.browser.Close()
		m.browser = nil
		m.controlURL = ""
		m.sessions = make(map[string]*Page)
	}

	controlURL := m.cfg.DebuggerURL
	if controlURL == "" {
		l := m.newLauncher()
		url, err := l.Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = url
		m.launched = l
		logging.Browser("launched chrome at %s", controlURL)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		m.killLaunched()
		return fmt.Errorf("connect to chrome: %w", err)
	}

	m.browser = browser
	m.controlURL = controlURL
	return nil
}

func (m *SessionManager) newLauncher() *launcher.Launcher {
	l := launcher.New().Headless(m.cfg.Headless)
	if len(m.cfg.Launch) == 0 {
		return l
	}
	l = l.Bin(m.cfg.Launch[0])
	for _, rawFlag := range m.cfg.Launch[1:] {
		name, val, hasVal := parseFlag(rawFlag)
		if hasVal {
			l = l.Set(flags.Flag(name), val)
		} else {
			l = l.Set(flags.Flag(name))
		}
	}
	return l
}

// parseFlag splits "--name=value" into its parts.
func parseFlag(raw string) (name, val string, hasVal bool) {
	return strings.Cut(strings.TrimLeft(raw, "-"), "=")
}

func (m *SessionManager) ensureStarted(ctx context.Context) error {
	m.mu.RLock()
	if m.browser != nil {
		m.mu.RUnlock()
		return nil
	}
	m.mu.RUnlock()
	return m.Start(ctx)
}

// ControlURL returns the WebSocket debugger URL.
func (m *SessionManager) ControlURL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.controlURL
}

// IsConnected returns whether the browser is connected.
func (m *SessionManager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.browser != nil
}

// Shutdown closes tracked pages and the browser, and kills Chrome if it
// was launched here.
func (m *SessionManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for id, p := range m.sessions {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page %s: %w", id, err))
		}
		delete(m.sessions, id)
	}

	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		m.browser = nil
	}
	m.killLaunched()
	m.controlURL = ""
	return errors.Join(errs...)
}

func (m *SessionManager) killLaunched() {
	if m.launched == nil {
		return
	}
	m.launched.Kill()
	m.launched.Cleanup()
	m.launched = nil
}

// List returns metadata for all open pages, oldest first.
func (m *SessionManager) List() []Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]Session, 0, len(m.sessions))
	for _, p := range m.sessions {
		results = append(results, p.meta)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})
	return results
}

// OpenPage opens url in a fresh incognito context and tracks the page.
func (m *SessionManager) OpenPage(ctx context.Context, url string) (*Page, error) {
	if err := m.ensureStarted(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	browser := m.browser
	m.mu.RUnlock()
	if browser == nil {
		return nil, errors.New("browser not connected")
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}

	// blank first so intercepts can be registered before the app loads
	rp, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             m.cfg.GetViewportWidth(),
		Height:            m.cfg.GetViewportHeight(),
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(rp); err != nil {
		logging.BrowserWarn("failed to set viewport: %v", err)
	}

	p := newPage(rp, m.cfg.GetNavigationTimeout())
	p.meta = Session{
		ID:        uuid.NewString(),
		TargetID:  string(rp.TargetID),
		URL:       url,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.sessions[p.meta.ID] = p
	m.mu.Unlock()

	logging.BrowserDebug("opened page %s (target %s)", p.meta.ID, p.meta.TargetID)
	return p, nil
}

// Page returns a tracked page by session id.
func (m *SessionManager) Page(sessionID string) (*Page, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.sessions[sessionID]
	return p, ok
}

// ClosePage closes and forgets one page.
func (m *SessionManager) ClosePage(sessionID string) error {
	m.mu.Lock()
	p, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown session: %s", sessionID)
	}
	return p.Close()
}
