package swim

import (
	"sort"
	"strings"
)

// IsCustom reports whether attribute key of element tag belongs in the
// customAttributes argument instead of being a named argument.
func IsCustom(tag, key string) bool {
	switch {
	case strings.HasPrefix(key, "data"), strings.HasPrefix(key, "aria"):
		return true
	case tag == "style" && key == "type":
		return true
	case tag == "meta" && key == "property":
		return true
	default:
		return false
	}
}

// Classify splits attrs into standard and custom attributes, keeping the
// input order within each list.
func Classify(tag string, attrs []Attr) (standard, custom []Attr) {
	for _, a := range attrs {
		if IsCustom(tag, a.Key) {
			custom = append(custom, a)
			continue
		}
		standard = append(standard, a)
	}
	return standard, custom
}

func sortByKey(attrs []Attr) []Attr {
	sorted := make([]Attr, len(attrs))
	copy(sorted, attrs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	return sorted
}
