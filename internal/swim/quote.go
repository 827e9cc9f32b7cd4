package swim

import "strings"

// Quote returns s as a Swift string literal.
//
// Strings with a newline become raw multi-line literals, strings with a
// double quote become raw single-line literals and everything else is a
// plain literal written without escaping.
func Quote(s string) string {
	switch {
	case strings.Contains(s, "\n"):
		hashes := strings.Repeat("#", delimiterHashes(s))
		return hashes + `"""` + "\n" + s + "\n" + `"""` + hashes
	case strings.Contains(s, `"`):
		hashes := strings.Repeat("#", delimiterHashes(s))
		return hashes + `"` + s + `"` + hashes
	default:
		return `"` + s + `"`
	}
}

// delimiterHashes returns how many '#' the raw literal delimiters need so
// that no `"#...` or `\#...` run inside s can close or escape the literal.
func delimiterHashes(s string) int {
	longest := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '"' && s[i] != '\\' {
			continue
		}
		run := 0
		for j := i + 1; j < len(s) && s[j] == '#'; j++ {
			run++
		}
		if run > longest {
			longest = run
		}
	}
	return longest + 1
}
