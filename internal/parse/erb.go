package parse

import "regexp"

var erbBlock = regexp.MustCompile(`(?s)<%(.*?)%>`)

// ReplaceERBBlocks turns embedded Ruby tags into HTML comments so that
// templates still parse and the code survives as source comments.
func ReplaceERBBlocks(src string) string {
	return erbBlock.ReplaceAllString(src, "<!-- $1 -->")
}
