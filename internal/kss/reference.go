package kss

import (
	"regexp"
	"strconv"
	"strings"
)

var referencePattern = regexp.MustCompile(`^\d+(\.\d+)*$`)

// NormalizeReference strips a trailing "." and trailing ".0" segments
// ("2.0." becomes "2") and reports whether the result is a valid
// dot-separated sequence of non-negative integers.
func NormalizeReference(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimSuffix(ref, ".")
	for strings.HasSuffix(ref, ".0") {
		ref = strings.TrimSuffix(ref, ".0")
	}
	return ref, referencePattern.MatchString(ref)
}

// CompareReferences orders references component-wise by numeric value, with
// a parent sorting before its descendants. Non-numeric components compare as
// strings after numeric ones.
func CompareReferences(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareSegment(as[i], bs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}

func compareSegment(a, b string) int {
	an, aerr := strconv.ParseUint(a, 10, 64)
	bn, berr := strconv.ParseUint(b, 10, 64)
	switch {
	case aerr == nil && berr == nil:
		if an != bn {
			if an < bn {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b) // "01" vs "1"
	case aerr == nil:
		return -1
	case berr == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// IsDescendant reports whether ref equals root or lies beneath it.
func IsDescendant(ref, root string) bool {
	return ref == root || strings.HasPrefix(ref, root+".")
}
