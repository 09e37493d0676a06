package kss

import "strings"

// Section is one documented block of a stylesheet, identified by a dotted
// numeric reference such as "2.1.3".
type Section struct {
	Reference    string
	Header       string
	Description  string // HTML: rendered markdown, or escaped text wrapped in <p>
	Markup       string // raw markup with the {$modifiers} placeholder
	Deprecated   bool
	Experimental bool
	Modifiers    []*Modifier
	File         string
	Line         int
}

// Modifier is a named markup/style variant documented under a Section.
type Modifier struct {
	Name        string
	Description string // HTML, same rules as Section.Description
	ClassName   string
	Markup      string // section markup with the placeholder replaced by ClassName
}

// ModifiersPlaceholder is substituted with a modifier's class name in markup.
const ModifiersPlaceholder = "{$modifiers}"

// Depth is the number of dot-separated components of the reference.
func (s *Section) Depth() int {
	if s.Reference == "" {
		return 0
	}
	return strings.Count(s.Reference, ".") + 1
}

// Root is the first component of the reference.
func (s *Section) Root() string {
	root, _, _ := strings.Cut(s.Reference, ".")
	return root
}

// RenderedMarkup is the section markup with the placeholder removed.
func (s *Section) RenderedMarkup() string {
	return strings.ReplaceAll(s.Markup, ModifiersPlaceholder, "")
}

// ClassName derives the CSS class fragment for a modifier name:
// ".primary.large" becomes "primary large", ":hover" becomes "pseudo-class-hover".
func ClassName(name string) string {
	cls := strings.ReplaceAll(name, ".", " ")
	cls = strings.ReplaceAll(cls, ":", " pseudo-class-")
	return strings.Join(strings.Fields(cls), " ")
}

func newModifier(name, description, markup string) *Modifier {
	cls := ClassName(name)
	m := &Modifier{Name: name, Description: description, ClassName: cls}
	if markup != "" {
		m.Markup = strings.ReplaceAll(markup, ModifiersPlaceholder, cls)
	}
	return m
}
