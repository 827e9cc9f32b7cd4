package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"html2swim/internal/swim"
)

// Parser selects the markup parser used to build the node tree.
type Parser string

const (
	// ParserXML parses the input strictly; unbalanced or malformed markup
	// is rejected.
	ParserXML Parser = "xml"
	// ParserHTML parses the input like a browser would and never rejects it.
	ParserHTML Parser = "html"
)

// Options controls how markup is turned into a node tree.
type Options struct {
	Parser          Parser
	Selector        string
	ExcludeSelector string
}

// Parse turns src into a document tree using the configured parser.
func Parse(src string, opts Options) (swim.Root, error) {
	switch opts.Parser {
	case ParserXML, "":
		if strings.TrimSpace(opts.Selector) != "" || strings.TrimSpace(opts.ExcludeSelector) != "" {
			return swim.Root{}, errors.New("selectors require the html parser")
		}
		return ParseXML(src)
	case ParserHTML:
		return parseHTMLWithSelectors(src, opts)
	default:
		return swim.Root{}, fmt.Errorf("unknown parser: %s", opts.Parser)
	}
}

func parseHTMLWithSelectors(src string, opts Options) (swim.Root, error) {
	doc, err := NewDocument(src)
	if err != nil {
		return swim.Root{}, err
	}
	if strings.TrimSpace(opts.ExcludeSelector) != "" {
		if _, err := RemoveSelectors(doc, opts.ExcludeSelector); err != nil {
			return swim.Root{}, err
		}
	}
	doc, err = ExtractBySelector(doc, opts.Selector)
	if err != nil {
		return swim.Root{}, err
	}
	return FromHTML(doc.Get(0))
}

// NewDocument parses htmlText into a goquery document. Markup without an
// <html> element is parsed as a body fragment so that no implied
// html/head/body wrappers show up in the output.
func NewDocument(htmlText string) (*goquery.Document, error) {
	if strings.TrimSpace(htmlText) == "" {
		return nil, errors.New("empty html")
	}
	if isFullDocument(htmlText) {
		return goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	}
	root, err := parseFragment(htmlText)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromNode(root), nil
}

func isFullDocument(htmlText string) bool {
	lower := strings.ToLower(htmlText)
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype")
}
