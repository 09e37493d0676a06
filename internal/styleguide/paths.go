package styleguide

import "strings"

// Mode selects where pages are written and how they are linked.
type Mode string

const (
	// ModeStatic writes section-<root>.html and index.html.
	ModeStatic Mode = "static"
	// ModeRoutes writes section<root><ext> and index<ext> route templates.
	ModeRoutes Mode = "routes"
)

// PathScheme derives page file names and links from root tokens.
type PathScheme struct {
	Mode Mode
	Ext  string // template extension in routes mode, e.g. ".hbs"
}

func (p PathScheme) ext() string {
	if p.Mode == ModeRoutes && p.Ext != "" {
		if !strings.HasPrefix(p.Ext, ".") {
			return "." + p.Ext
		}
		return p.Ext
	}
	return ".html"
}

// SectionFile is the file name of the page for root.
func (p PathScheme) SectionFile(root string) string {
	if p.Mode == ModeRoutes {
		return "section" + root + p.ext()
	}
	return "section-" + root + ".html"
}

// IndexFile is the file name of the overview page.
func (p PathScheme) IndexFile() string {
	return "index" + p.ext()
}

// Route is the route name of the page for root.
func (p PathScheme) Route(root string) string {
	return "section" + root
}

// Link is the href used to reach the page for root from another page. An
// empty root links to the overview page.
func (p PathScheme) Link(root string) string {
	switch {
	case p.Mode == ModeRoutes && root == "":
		return "index"
	case p.Mode == ModeRoutes:
		return p.Route(root)
	case root == "":
		return p.IndexFile()
	}
	return p.SectionFile(root)
}
