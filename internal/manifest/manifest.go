// Package manifest records what a build emitted so the next build can skip
// pages whose content did not change.
package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/kssbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/kssbuilder/internal/fsutil"
	"git.home.luguber.info/inful/kssbuilder/internal/styleguide"
)

// FileName is the manifest file written into the destination directory.
const FileName = ".kssbuilder-manifest.json"

// BuildManifest is the persisted record of one build.
type BuildManifest struct {
	ID        string          `json:"id"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Inputs    Inputs          `json:"inputs"`
	Pages     []PageRecord    `json:"pages"`
	Overview  *SourceRecord   `json:"overview,omitempty"`
	Failures  []FailureRecord `json:"failures,omitempty"`
	Status    string          `json:"status"`
	Duration  int64           `json:"duration_ms"`
}

// Inputs captures what the build read.
type Inputs struct {
	Source   string   `json:"source"`
	Template string   `json:"template"`
	Revision string   `json:"revision,omitempty"`
	Branch   string   `json:"branch,omitempty"`
	Files    []string `json:"files"`
	Sections int      `json:"sections"`
}

// PageRecord is one emitted page.
type PageRecord struct {
	Kind        string `json:"kind"`
	Root        string `json:"root,omitempty"`
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
}

// SourceRecord fingerprints the overview markdown.
type SourceRecord struct {
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
}

// FailureRecord is a page that failed to render or write.
type FailureRecord struct {
	Root  string `json:"root,omitempty"`
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Fingerprint returns the content fingerprint of a rendered page.
func Fingerprint(content []byte) string {
	return mdfp.CalculateFingerprintFromParts("", string(content))
}

// OverviewFingerprint fingerprints a markdown document from its front
// matter fields and body. Field order and formatting do not matter.
func OverviewFingerprint(fields map[string]any, body []byte) (string, error) {
	fm, err := frontmatter.Canonical(fields)
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(fm, string(body)), nil
}

// PageRecords converts emitted pages into manifest records.
func PageRecords(pages []styleguide.Page) []PageRecord {
	out := make([]PageRecord, 0, len(pages))
	for _, p := range pages {
		out = append(out, PageRecord{Kind: string(p.Kind), Root: p.Root, Path: p.Path, Fingerprint: Fingerprint(p.Content)})
	}
	return out
}

// ToJSON serializes the manifest to JSON.
func (m *BuildManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*BuildManifest, error) {
	var m BuildManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Load reads the manifest from dir. A missing manifest yields nil.
func Load(dir string) (*BuildManifest, error) {
	// #nosec G304 -- fixed file name under the configured destination.
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return FromJSON(data)
}

// Save writes m into dir atomically.
func Save(dir string, m *BuildManifest) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(filepath.Join(dir, FileName), data, 0o644)
}

// Lookup returns the record for a page path.
func (m *BuildManifest) Lookup(path string) (PageRecord, bool) {
	if m == nil {
		return PageRecord{}, false
	}
	for _, p := range m.Pages {
		if p.Path == path {
			return p, true
		}
	}
	return PageRecord{}, false
}

// IncrementalWriter skips pages whose fingerprint matches the previous
// manifest and whose file is still present; everything else goes to Next.
type IncrementalWriter struct {
	Previous *BuildManifest
	Next     styleguide.PageWriter
}

func (w IncrementalWriter) WritePage(ctx context.Context, dir string, page styleguide.Page) (bool, error) {
	if rec, ok := w.Previous.Lookup(page.Path); ok &&
		rec.Fingerprint == Fingerprint(page.Content) &&
		fsutil.Exists(filepath.Join(dir, page.Path)) {
		return false, nil
	}
	next := w.Next
	if next == nil {
		next = styleguide.FileWriter{}
	}
	return next.WritePage(ctx, dir, page)
}
