package styleguide

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"

	"git.home.luguber.info/inful/kssbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/kssbuilder/internal/markdown"
)

// Overview is the rendered overview document for the index page.
type Overview struct {
	Path        string
	HTML        template.HTML
	Meta        map[string]any
	FrontMatter []byte
	Body        []byte
}

// LoadOverview reads and renders the markdown overview at path. A missing
// file is not an error: it returns nil, meaning "no overview".
func LoadOverview(path string) (*Overview, error) {
	if path == "" {
		return nil, nil
	}
	// #nosec G304 -- overview path comes from trusted configuration.
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read overview: %w", err)
	}
	doc, err := frontmatter.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse overview front matter: %w", err)
	}
	rendered, err := markdown.New(markdown.Options{HeadingIDs: true}).Render(doc.Body)
	if err != nil {
		return nil, fmt.Errorf("render overview: %w", err)
	}
	if _, ok := doc.Fields["title"]; !ok {
		if title := markdown.Title(doc.Body); title != "" {
			doc.Fields["title"] = title
		}
	}
	return &Overview{
		Path: path,
		// #nosec G203 -- rendered from the project's own markdown.
		HTML:        template.HTML(rendered),
		Meta:        doc.Fields,
		FrontMatter: doc.Raw,
		Body:        doc.Body,
	}, nil
}
