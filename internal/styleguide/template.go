package styleguide

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// TemplateFile is the page template expected in a template directory.
const TemplateFile = "index.html"

//go:embed templates/default
var embeddedTemplate embed.FS

// Template is the page template plus the static assets that accompany it.
type Template struct {
	Origin string // "embedded" or the template directory
	Source string
	Public fs.FS // assets copied to <destination>/public; nil when absent
}

// LoadTemplate reads <dir>/index.html and <dir>/public. An empty dir selects
// the embedded default template.
func LoadTemplate(dir string) (*Template, error) {
	if dir == "" {
		return embeddedDefault()
	}
	path := filepath.Join(dir, TemplateFile)
	// #nosec G304 -- template path comes from trusted configuration.
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	tpl := &Template{Origin: dir, Source: string(src)}
	if info, err := os.Stat(filepath.Join(dir, "public")); err == nil && info.IsDir() {
		tpl.Public = os.DirFS(filepath.Join(dir, "public"))
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat template public dir: %w", err)
	}
	return tpl, nil
}

func embeddedDefault() (*Template, error) {
	src, err := embeddedTemplate.ReadFile("templates/default/" + TemplateFile)
	if err != nil {
		return nil, fmt.Errorf("embedded template missing: %w", err)
	}
	public, err := fs.Sub(embeddedTemplate, "templates/default/public")
	if err != nil {
		return nil, fmt.Errorf("embedded public assets missing: %w", err)
	}
	return &Template{Origin: "embedded", Source: string(src), Public: public}, nil
}
