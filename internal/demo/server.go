// Package demo serves a mock storage dashboard whose sidebar follows the
// same DOM contract as the real one. It exists so the navigation walk can
// be exercised end to end without a cluster.
package demo

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"dashnav/internal/fixtures"
	"dashnav/internal/logging"
	"dashnav/internal/metrics"
	"dashnav/internal/nav"

	"github.com/gin-gonic/gin"
)

//go:embed templates/index.html
var indexHTML string

// Options configures the mock dashboard.
type Options struct {
	Title string

	// StatusDelay holds every real status response back, like a slow
	// backend would.
	StatusDelay time.Duration

	// Stubs lists the status endpoints served. Defaults to fixtures.Default().
	Stubs []fixtures.Stub

	// Metrics, when set, is exposed on /metrics.
	Metrics *metrics.Recorder
}

// Server is the mock dashboard.
type Server struct {
	opts    Options
	entries []entry
	router  *gin.Engine

	mu     sync.Mutex
	hits   map[string]int
	server *http.Server
}

type entry struct {
	Label     string
	Component string
	Href      string
	Top       bool
	Children  []entry
}

// New builds the dashboard for tree.
func New(tree nav.Tree, opts Options) (*Server, error) {
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	if opts.Title == "" {
		opts.Title = "Storage Dashboard"
	}
	if opts.Stubs == nil {
		opts.Stubs = fixtures.Default()
	}

	tmpl, err := template.New("index").Parse(indexHTML)
	if err != nil {
		return nil, fmt.Errorf("parse dashboard template: %w", err)
	}

	s := &Server{
		opts:    opts,
		entries: entries(tree, nil, true),
		hits:    make(map[string]int),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.SetHTMLTemplate(tmpl)

	router.GET("/", s.index)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	for _, stub := range opts.Stubs {
		router.GET(stub.Path, s.status(stub))
	}
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	s.router = router
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hits returns how many real requests reached the status endpoint path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// StatusHits returns the total real requests across all status endpoints.
func (s *Server) StatusHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

// Serve accepts connections on l until ctx is done.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:        s.router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10*time.Second + s.opts.StatusDelay,
		MaxHeaderBytes: 1 << 20,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(l)
	}()
	logging.Demo("dashboard listening on http://%s/", l.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

// Shutdown gracefully stops a running Serve, which then returns nil.
// It is a no-op before Serve.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown dashboard: %w", err)
	}
	return nil
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, l)
}

func (s *Server) index(c *gin.Context) {
	paths := make([]string, 0, len(s.opts.Stubs))
	for _, stub := range s.opts.Stubs {
		paths = append(paths, stub.Path)
	}
	c.HTML(http.StatusOK, "index", gin.H{
		"Title":       s.opts.Title,
		"Entries":     s.entries,
		"StatusPaths": paths,
	})
}

// status answers a status endpoint with a body distinct from the fixture,
// so a leaked request is visible in the page as well as in the hit count.
func (s *Server) status(stub fixtures.Stub) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.hits[stub.Path]++
		s.mu.Unlock()

		if s.opts.StatusDelay > 0 {
			select {
			case <-time.After(s.opts.StatusDelay):
			case <-c.Request.Context().Done():
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"available": false,
			"message":   "served by the demo backend",
		})
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.DemoDebug("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func entries(nodes []nav.Node, parent []string, top bool) []entry {
	out := make([]entry, 0, len(nodes))
	for _, n := range nodes {
		path := append(append([]string(nil), parent...), n.Label())
		e := entry{Label: n.Label(), Top: top, Href: "#"}
		switch v := n.(type) {
		case *nav.Leaf:
			e.Component = v.Component
			e.Href = "#/" + slug(path)
		case *nav.Branch:
			e.Children = entries(v.Children, path, false)
		}
		out = append(out, e)
	}
	return out
}

// slug turns a label path into a route: [Cluster, CRUSH map] is cluster/crush-map.
func slug(path []string) string {
	parts := make([]string, len(path))
	for i, label := range path {
		parts[i] = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "-")
	}
	return strings.Join(parts, "/")
}
