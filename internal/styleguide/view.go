package styleguide

import (
	"html/template"

	"git.home.luguber.info/inful/kssbuilder/internal/kss"
)

// SectionView is the template projection of a kss.Section.
type SectionView struct {
	Header       string
	Description  template.HTML
	Reference    string
	Depth        int
	Deprecated   bool
	Experimental bool
	Markup       template.HTML
	Modifiers    []ModifierView
}

// ModifierView is the template projection of a kss.Modifier.
type ModifierView struct {
	Name        string
	Description template.HTML
	ClassName   string
	Markup      template.HTML
}

// RootLink describes one section page for navigation.
type RootLink struct {
	Number string
	Header string // header of the depth-1 section, or "" when undocumented
	Href   string
}

// BuildInfo identifies the build that produced a page. It holds no
// timestamps, so identical inputs render identical bytes.
type BuildInfo struct {
	Version  string
	Revision string
	Branch   string
}

// PageContext is the data passed to the page template.
type PageContext struct {
	Sections     []SectionView
	RootNumber   string // empty on the index page
	SectionRoots []string
	Roots        []RootLink
	Overview     template.HTML // empty unless rendering the index page
	HasOverview  bool          // an index page exists to link to
	OverviewMeta map[string]any
	Argv         map[string]string
	Build        BuildInfo
}

// IsIndex reports whether the context renders the overview page.
func (c PageContext) IsIndex() bool { return c.RootNumber == "" }

func projectSection(s *kss.Section) SectionView {
	v := SectionView{
		Header: s.Header,
		// #nosec G203 -- descriptions are rendered markdown or escaped text from the parser.
		Description:  template.HTML(s.Description),
		Reference:    s.Reference,
		Depth:        s.Depth(),
		Deprecated:   s.Deprecated,
		Experimental: s.Experimental,
		// #nosec G203 -- example markup from the stylesheet author is emitted verbatim.
		Markup: template.HTML(s.RenderedMarkup()),
	}
	for _, m := range s.Modifiers {
		v.Modifiers = append(v.Modifiers, projectModifier(m))
	}
	return v
}

func projectModifier(m *kss.Modifier) ModifierView {
	return ModifierView{
		Name: m.Name,
		// #nosec G203 -- see projectSection.
		Description: template.HTML(m.Description),
		ClassName:   m.ClassName,
		// #nosec G203 -- see projectSection.
		Markup: template.HTML(m.Markup),
	}
}

func projectSections(sections []*kss.Section) []SectionView {
	out := make([]SectionView, 0, len(sections))
	for _, s := range sections {
		out = append(out, projectSection(s))
	}
	return out
}
