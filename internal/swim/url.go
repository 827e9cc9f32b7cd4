package swim

import (
	"strings"
	"unicode"
)

// urlKeys are the attributes whose relative values are rewritten to
// root-relative paths.
var urlKeys = map[string]bool{
	"src":    true,
	"href":   true,
	"url":    true,
	"action": true,
	"srcset": true,
}

// IsAbsolute reports whether v is left alone by path rewriting. Only
// values starting with "http", "/" or "#" count; "mailto:x" is relative.
func IsAbsolute(v string) bool {
	return strings.HasPrefix(v, "http") ||
		strings.HasPrefix(v, "/") ||
		strings.HasPrefix(v, "#")
}

// Prettify maps index.html to / and strips the .html suffix from relative
// paths.
func Prettify(v string) string {
	if v == "index.html" {
		return "/"
	}
	if IsAbsolute(v) {
		return v
	}
	return strings.TrimSuffix(v, ".html")
}

// NormalizeValue returns the value of attribute key as it should appear in
// the generated source.
func NormalizeValue(key, value string) string {
	if key == "srcset" {
		return normalizeSrcset(value)
	}
	pretty := Prettify(value)
	if urlKeys[key] {
		return rootRelative(pretty)
	}
	return pretty
}

func rootRelative(v string) string {
	if IsAbsolute(v) {
		return v
	}
	return "/" + v
}

// normalizeSrcset rewrites every candidate of a srcset list. Each candidate
// is a URL optionally followed by a descriptor ("1x", "640w"). Empty
// candidates are dropped and the descriptor is joined with a single space.
func normalizeSrcset(value string) string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		u, descriptor := part, ""
		if i := strings.IndexFunc(part, unicode.IsSpace); i >= 0 {
			u, descriptor = part[:i], strings.TrimSpace(part[i:])
		}
		candidate := rootRelative(Prettify(u))
		if descriptor != "" {
			candidate += " " + descriptor
		}
		out = append(out, candidate)
	}
	return strings.Join(out, ", ")
}
