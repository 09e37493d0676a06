// Package router registers styleguide pages in a client-side router manifest
// (for example an Ember app/router.js) and emits empty route handler stubs.
package router

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/kssbuilder/internal/fsutil"
)

// Defaults for Options.
const (
	DefaultAnchor     = "Router.map(function() {"
	DefaultLineFormat = "  this.route('%s');"
	DefaultStubExt    = ".js"
)

// DefaultStub is written for routes that have no handler yet.
const DefaultStub = "import Route from '@ember/routing/route';\n\nexport default class extends Route {}\n"

// ErrAnchorNotFound is returned when the manifest has no anchor line.
var ErrAnchorNotFound = errors.New("router anchor not found")

var routeName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Options controls manifest patching and stub generation.
type Options struct {
	Anchor     string // line after which routes are inserted
	LineFormat string // one %s for the route name
	StubExt    string
	Stub       string
}

func (o Options) withDefaults() Options {
	if o.Anchor == "" {
		o.Anchor = DefaultAnchor
	}
	if o.LineFormat == "" {
		o.LineFormat = DefaultLineFormat
	}
	if o.StubExt == "" {
		o.StubExt = DefaultStubExt
	}
	if o.Stub == "" {
		o.Stub = DefaultStub
	}
	return o
}

// Register inserts the registration line for route directly after the anchor
// line of the manifest. A route that is already registered is left alone and
// reported as not added.
func Register(manifestPath, route string, opts Options) (bool, error) {
	if !routeName.MatchString(route) {
		return false, fmt.Errorf("invalid route name %q", route)
	}
	opts = opts.withDefaults()

	// #nosec G304 -- manifest path comes from trusted configuration.
	content, err := os.ReadFile(manifestPath)
	if err != nil {
		return false, fmt.Errorf("read router manifest: %w", err)
	}
	line := fmt.Sprintf(opts.LineFormat, route)
	if registered(content, line) {
		return false, nil
	}

	nl := "\n"
	if bytes.Contains(content, []byte("\r\n")) {
		nl = "\r\n"
	}
	lines := strings.Split(string(content), nl)
	for i, l := range lines {
		if strings.TrimSpace(l) != strings.TrimSpace(opts.Anchor) {
			continue
		}
		out := make([]string, 0, len(lines)+1)
		out = append(out, lines[:i+1]...)
		out = append(out, line)
		out = append(out, lines[i+1:]...)
		info, err := os.Stat(manifestPath)
		if err != nil {
			return false, err
		}
		if err := fsutil.WriteFileAtomic(manifestPath, []byte(strings.Join(out, nl)), info.Mode().Perm()); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, fmt.Errorf("%s: %w: %q", manifestPath, ErrAnchorNotFound, opts.Anchor)
}

func registered(content []byte, line string) bool {
	want := strings.TrimSpace(line)
	for _, l := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(l) == want {
			return true
		}
	}
	return false
}

// WriteStub writes <dir>/<route><ext> when it does not exist yet. Existing
// handlers are never overwritten.
func WriteStub(dir, route string, opts Options) (bool, error) {
	if !routeName.MatchString(route) {
		return false, fmt.Errorf("invalid route name %q", route)
	}
	opts = opts.withDefaults()
	if err := fsutil.EnsureDir(dir); err != nil {
		return false, err
	}
	path := filepath.Join(dir, route+opts.StubExt)
	// #nosec G304 -- path is built from a validated route name.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create route stub: %w", err)
	}
	if _, err := f.WriteString(opts.Stub); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("write route stub: %w", err)
	}
	return true, f.Close()
}
