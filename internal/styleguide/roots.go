package styleguide

import (
	"cmp"
	"slices"
	"strings"

	"git.home.luguber.info/inful/kssbuilder/internal/kss"
)

// CollectRoots returns the distinct root tokens of sections in numeric order.
// A root is discovered from any reference, so "2.1" alone still yields "2".
// Sections whose first reference component is empty or not all digits are
// returned as malformed instead of being grouped.
func CollectRoots(sections []*kss.Section) (roots []string, malformed []*kss.Section) {
	seen := make(map[string]bool)
	for _, s := range sections {
		root, ok := rootToken(s.Reference)
		if !ok {
			malformed = append(malformed, s)
			continue
		}
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	slices.SortFunc(roots, compareRoots)
	return roots, malformed
}

// ChildrenOf selects the sections whose reference is root or starts with
// root + ".", preserving input order.
func ChildrenOf(sections []*kss.Section, root string) []*kss.Section {
	var out []*kss.Section
	for _, s := range sections {
		if kss.IsDescendant(s.Reference, root) {
			out = append(out, s)
		}
	}
	return out
}

// RootSections returns, for each root token, the depth-1 section documenting
// it. Roots without one are omitted.
func RootSections(sections []*kss.Section, roots []string) []*kss.Section {
	byRef := make(map[string]*kss.Section, len(roots))
	for _, s := range sections {
		if s.Depth() == 1 {
			if _, dup := byRef[s.Reference]; !dup {
				byRef[s.Reference] = s
			}
		}
	}
	out := make([]*kss.Section, 0, len(roots))
	for _, r := range roots {
		if s, ok := byRef[r]; ok {
			out = append(out, s)
		}
	}
	return out
}

func rootToken(ref string) (string, bool) {
	root, _, _ := strings.Cut(ref, ".")
	if root == "" {
		return "", false
	}
	for _, c := range root {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	return root, true
}

// compareRoots orders digit-only tokens numerically without parsing them,
// breaking ties such as "02" and "2" on the raw string.
func compareRoots(a, b string) int {
	ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if c := cmp.Compare(len(ta), len(tb)); c != 0 {
		return c
	}
	if c := strings.Compare(ta, tb); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
