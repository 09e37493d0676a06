package styleguide

import (
	"html/template"

	"git.home.luguber.info/inful/kssbuilder/internal/kss"
)

// helperFuncs builds the template helpers for one styleguide snapshot. Every
// helper receives its subject explicitly; none depends on the position in
// the template.
func helperFuncs(sg *kss.Styleguide, links []RootLink, paths PathScheme) template.FuncMap {
	return template.FuncMap{
		// section returns the section with the given reference, or nil.
		"section": func(ref string) *SectionView {
			s, ok := sg.Get(ref)
			if !ok {
				return nil
			}
			v := projectSection(s)
			return &v
		},
		// sections evaluates a styleguide query such as "2.x" or "*".
		"sections": func(query string) []SectionView {
			return projectSections(sg.Query(query))
		},
		"roots": func() []RootLink {
			return links
		},
		"depthIs": func(depth int, s SectionView) bool {
			return s.Depth == depth
		},
		"modifiers": func(s SectionView) []ModifierView {
			return s.Modifiers
		},
		"modifierMarkup": func(m ModifierView) template.HTML {
			return m.Markup
		},
		"sectionMarkup": func(s SectionView) template.HTML {
			return s.Markup
		},
		// #nosec G203 -- explicit opt-in by the template author.
		"html": func(s string) template.HTML {
			return template.HTML(s)
		},
		"pageFor": func(root string) string {
			return paths.Link(root)
		},
	}
}
