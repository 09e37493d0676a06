package kss

import (
	"fmt"
	"slices"
	"strings"
)

// Styleguide is the immutable, reference-ordered set of sections parsed from
// one source tree.
type Styleguide struct {
	sections []*Section
	byRef    map[string]*Section
	files    []string
	warnings []Warning
}

// NewStyleguide orders sections by reference. A duplicate reference keeps the
// first occurrence and records a warning.
func NewStyleguide(sections []*Section, files []string, warnings []Warning) *Styleguide {
	sg := &Styleguide{
		byRef:    make(map[string]*Section, len(sections)),
		files:    slices.Clone(files),
		warnings: slices.Clone(warnings),
	}
	for _, s := range sections {
		if first, dup := sg.byRef[s.Reference]; dup {
			sg.warnings = append(sg.warnings, Warning{
				File:    s.File,
				Line:    s.Line,
				Message: fmt.Sprintf("duplicate styleguide reference %s (first defined in %s:%d)", s.Reference, first.File, first.Line),
			})
			continue
		}
		sg.byRef[s.Reference] = s
		sg.sections = append(sg.sections, s)
	}
	slices.SortStableFunc(sg.sections, func(a, b *Section) int {
		return CompareReferences(a.Reference, b.Reference)
	})
	return sg
}

// All returns every section in reference order.
func (sg *Styleguide) All() []*Section { return slices.Clone(sg.sections) }

// Len is the number of sections.
func (sg *Styleguide) Len() int { return len(sg.sections) }

// Get returns the section with the given reference.
func (sg *Styleguide) Get(ref string) (*Section, bool) {
	if norm, ok := NormalizeReference(ref); ok {
		ref = norm
	}
	s, ok := sg.byRef[ref]
	return s, ok
}

// Roots returns the depth-1 sections.
func (sg *Styleguide) Roots() []*Section {
	return sg.filter(func(s *Section) bool { return s.Depth() == 1 })
}

// Descendants returns root itself (when documented) and every section below it.
func (sg *Styleguide) Descendants(root string) []*Section {
	return sg.filter(func(s *Section) bool { return IsDescendant(s.Reference, root) })
}

// Children returns the sections exactly one level below parent.
func (sg *Styleguide) Children(parent string) []*Section {
	depth := strings.Count(parent, ".") + 2
	return sg.filter(func(s *Section) bool {
		return s.Depth() == depth && strings.HasPrefix(s.Reference, parent+".")
	})
}

// Query selects sections:
//
//	"*"      every section
//	"x"      depth-1 sections
//	"N"      N and its descendants (also "N.*")
//	"N.x"    direct children of N
func (sg *Styleguide) Query(q string) []*Section {
	q = strings.TrimSpace(q)
	switch {
	case q == "*" || q == "*." || q == "":
		return sg.All()
	case q == "x":
		return sg.Roots()
	case strings.HasSuffix(q, ".x"):
		return sg.Children(strings.TrimSuffix(q, ".x"))
	case strings.HasSuffix(q, ".*"):
		q = strings.TrimSuffix(q, ".*")
	}
	if norm, ok := NormalizeReference(q); ok {
		q = norm
	}
	return sg.Descendants(q)
}

// Files lists the parsed source files in traversal order.
func (sg *Styleguide) Files() []string { return slices.Clone(sg.files) }

// Warnings lists blocks that were skipped while parsing.
func (sg *Styleguide) Warnings() []Warning { return slices.Clone(sg.warnings) }

func (sg *Styleguide) filter(keep func(*Section) bool) []*Section {
	var out []*Section
	for _, s := range sg.sections {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
