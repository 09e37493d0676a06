// Package stylesheet compiles the styleguide stylesheet: @import statements
// are inlined recursively and the result is minified.
//
// Only the import subset of LESS is understood. Variables, mixins and nesting
// are passed through untouched, so entry files should be plain CSS apart from
// their imports.
package stylesheet

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
)

// Options controls compilation.
type Options struct {
	Minify bool
	// IncludePaths are searched when an import is not found next to the
	// importing file.
	IncludePaths []string
}

// Result is a compiled stylesheet.
type Result struct {
	CSS     []byte
	Sources []string // every file inlined, entry first
}

var importRule = regexp.MustCompile(`(?m)^[ \t]*@import\s+(?:\([^)]*\)\s*)?(?:url\(\s*)?(?:"([^"]+)"|'([^']+)'|([^\s;)]+))\s*\)?\s*([^;]*);[ \t]*$`)

// Compile reads entry, inlines its imports and optionally minifies it.
func Compile(entry string, opts Options) (*Result, error) {
	c := &compiler{opts: opts, seen: map[string]bool{}}
	abs, err := filepath.Abs(entry)
	if err != nil {
		return nil, err
	}
	out, err := c.inline(abs, nil)
	if err != nil {
		return nil, err
	}
	if opts.Minify {
		m := minify.New()
		m.AddFunc("text/css", css.Minify)
		min, err := m.Bytes("text/css", out)
		if err != nil {
			return nil, fmt.Errorf("minify %s: %w", entry, err)
		}
		out = min
	}
	return &Result{CSS: out, Sources: c.sources}, nil
}

type compiler struct {
	opts    Options
	seen    map[string]bool
	sources []string
}

// inline returns the content of path with imports replaced by the imported
// content. stack holds the files currently being inlined.
func (c *compiler) inline(path string, stack []string) ([]byte, error) {
	for _, p := range stack {
		if p == path {
			return nil, fmt.Errorf("import cycle: %s -> %s", strings.Join(stack, " -> "), path)
		}
	}
	// #nosec G304 -- stylesheet paths come from the template and configuration.
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stylesheet: %w", err)
	}
	c.seen[path] = true
	c.sources = append(c.sources, path)
	stack = append(stack, path)

	var firstErr error
	out := importRule.ReplaceAllFunc(src, func(stmt []byte) []byte {
		if firstErr != nil {
			return stmt
		}
		m := importRule.FindSubmatch(stmt)
		target := string(m[1]) + string(m[2]) + string(m[3])
		media := strings.TrimSpace(string(m[4]))
		if isRemote(target) {
			return stmt
		}
		resolved, err := c.resolve(filepath.Dir(path), target)
		if err != nil {
			firstErr = fmt.Errorf("%s: %w", path, err)
			return stmt
		}
		if c.seen[resolved] && !slices.Contains(stack, resolved) {
			return nil // already inlined elsewhere
		}
		body, err := c.inline(resolved, stack)
		if err != nil {
			firstErr = err
			return stmt
		}
		if media != "" {
			return []byte(fmt.Sprintf("@media %s {\n%s\n}", media, bytes.TrimSpace(body)))
		}
		return bytes.TrimRight(body, "\n")
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func (c *compiler) resolve(dir, target string) (string, error) {
	candidates := []string{target}
	if filepath.Ext(target) == "" {
		candidates = append(candidates, target+".less", target+".css")
	}
	search := append([]string{dir}, c.opts.IncludePaths...)
	for _, base := range search {
		for _, cand := range candidates {
			p := cand
			if !filepath.IsAbs(p) {
				p = filepath.Join(base, cand)
			}
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return filepath.Abs(p)
			}
		}
	}
	return "", fmt.Errorf("import %q not found", target)
}

func isRemote(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "//")
}
