// Package fixtures holds the canned status payloads that replace the
// dashboard's asynchronous status calls during a navigation walk.
package fixtures

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

//go:embed data/*.json
var payloads embed.FS

// Stub describes one intercepted endpoint and the response substituted for it.
type Stub struct {
	Name        string
	Path        string
	File        string
	Status      int
	ContentType string
	Body        []byte
}

// Pattern is the wildcard URL pattern used by the browser's request router.
func (s Stub) Pattern() string {
	return "*" + s.Path
}

// Matches reports whether a request path is served by this stub.
func (s Stub) Matches(path string) bool {
	return path == s.Path
}

type stubDef struct {
	name string
	path string
	file string
}

var known = []stubDef{
	{name: "nfs-ganesha", path: "/ui-api/nfs-ganesha/status", file: "nfs-ganesha-status.json"},
	{name: "rgw", path: "/ui-api/rgw/status", file: "rgw-status.json"},
	{name: "block-rbd", path: "/ui-api/block/rbd/status", file: "block-rbd-status.json"},
}

// ErrInvalidPayload is returned when a fixture body is not valid JSON.
var ErrInvalidPayload = errors.New("invalid fixture payload")

// Default returns the three status stubs with their embedded payloads.
func Default() []Stub {
	stubs := make([]Stub, 0, len(known))
	for _, k := range known {
		body, err := payloads.ReadFile("data/" + k.file)
		if err != nil {
			// embedded at build time
			panic(fmt.Sprintf("fixtures: missing embedded payload %s: %v", k.file, err))
		}
		stubs = append(stubs, newStub(k, body))
	}
	return stubs
}

// Load returns the default stubs with any payload found in dir replacing
// the embedded one. An empty dir yields Default().
func Load(dir string) ([]Stub, error) {
	stubs := Default()
	if dir == "" {
		return stubs, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("fixtures dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fixtures dir %s is not a directory", dir)
	}
	for i, s := range stubs {
		body, err := os.ReadFile(filepath.Join(dir, s.File))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read fixture %s: %w", s.File, err)
		}
		stubs[i].Body = body
	}
	if err := Validate(stubs); err != nil {
		return nil, err
	}
	return stubs, nil
}

// Validate checks every stub has a path and a JSON body.
func Validate(stubs []Stub) error {
	for _, s := range stubs {
		if s.Path == "" {
			return fmt.Errorf("fixture %q has no path", s.Name)
		}
		if !json.Valid(s.Body) {
			return fmt.Errorf("%w: %s", ErrInvalidPayload, s.File)
		}
	}
	return nil
}

// Dump writes every stub payload into dir under its fixture file name.
func Dump(dir string, stubs []Stub) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create fixtures dir: %w", err)
	}
	for _, s := range stubs {
		if err := os.WriteFile(filepath.Join(dir, s.File), s.Body, 0o644); err != nil {
			return fmt.Errorf("write fixture %s: %w", s.File, err)
		}
	}
	return nil
}

// Lookup returns the stub serving path.
func Lookup(stubs []Stub, path string) (Stub, bool) {
	for _, s := range stubs {
		if s.Matches(path) {
			return s, true
		}
	}
	return Stub{}, false
}

func newStub(k stubDef, body []byte) Stub {
	return Stub{
		Name:        k.name,
		Path:        k.path,
		File:        k.file,
		Status:      http.StatusOK,
		ContentType: "application/json",
		Body:        body,
	}
}
