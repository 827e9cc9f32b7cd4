package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// compileSelector rejects selectors that goquery would otherwise treat as
// matching nothing.
func compileSelector(selector string) (cascadia.Selector, error) {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return m, nil
}

// ExtractBySelector narrows doc to the first element matching selector.
// An empty selector keeps the whole document.
func ExtractBySelector(doc *goquery.Document, selector string) (*goquery.Document, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}
	if strings.TrimSpace(selector) == "" {
		return doc, nil
	}
	m, err := compileSelector(selector)
	if err != nil {
		return nil, err
	}
	sel := doc.FindMatcher(m).First()
	if sel.Length() == 0 {
		return nil, errors.New("selector not found: " + selector)
	}
	return goquery.NewDocumentFromNode(sel.Get(0)), nil
}

// RemoveSelectors drops every element matching selector, children
// included, and returns how many matched.
func RemoveSelectors(doc *goquery.Document, selector string) (int, error) {
	if doc == nil {
		return 0, errors.New("nil document")
	}
	m, err := compileSelector(selector)
	if err != nil {
		return 0, err
	}
	sel := doc.FindMatcher(m)
	n := sel.Length()
	sel.Remove()
	return n, nil
}
