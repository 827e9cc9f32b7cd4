// Package markdown renders a readable text preview of markup, used by
// inspect to show what a page says next to how it converts.
package markdown

import (
	"regexp"
	"strings"

	htmltomd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

var languageClass = regexp.MustCompile(`(?:^|\s)(?:language|lang)-([a-zA-Z0-9_+-]+)(?:\s|$)`)

type Converter struct {
	md *htmltomd.Converter
}

// NewConverter returns a GitHub-flavored converter. Links are resolved
// against domain when it is set.
func NewConverter(domain string) *Converter {
	conv := htmltomd.NewConverter(domain, true, nil)
	conv.Use(plugin.GitHubFlavored())
	conv.Remove("script", "style", "noscript")
	conv.AddRules(codeBlockRule())
	return &Converter{md: conv}
}

// Preview converts html to Markdown. An empty result means the markup
// carries no visible text.
func (c *Converter) Preview(html string) (string, error) {
	body, err := c.md.ConvertString(html)
	if err != nil {
		return "", err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return "", nil
	}
	return body + "\n", nil
}

func codeBlockRule() htmltomd.Rule {
	return htmltomd.Rule{
		Filter: []string{"pre"},
		Replacement: func(_ string, selec *goquery.Selection, _ *htmltomd.Options) *string {
			if selec == nil {
				empty := ""
				return &empty
			}

			code := selec.Find("code").First()
			if code.Length() == 0 {
				return nil
			}

			text := strings.ReplaceAll(code.Text(), "\r\n", "\n")
			text = strings.TrimSuffix(text, "\n")

			fence := "```"
			if strings.Contains(text, "```") {
				fence = "````"
			}

			out := "\n" + fence + detectLanguage(code) + "\n" + text + "\n" + fence + "\n"
			return &out
		},
	}
}

func detectLanguage(code *goquery.Selection) string {
	class := strings.TrimSpace(code.AttrOr("class", ""))
	m := languageClass.FindStringSubmatch(class)
	if len(m) != 2 {
		return ""
	}
	lang := strings.ToLower(m[1])
	if lang == "golang" {
		lang = "go"
	}
	return lang
}
