package parse

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"html2swim/internal/swim"
)

func parseFragment(htmlText string) (*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(htmlText), body)
	if err != nil {
		return nil, err
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

// FromHTML converts an x/net/html tree into a document tree. A document
// node becomes the root; any other node becomes the root's only child.
func FromHTML(n *html.Node) (swim.Root, error) {
	if n == nil {
		return swim.Root{}, errors.New("nil document")
	}
	if n.Type != html.DocumentNode {
		child, err := convertHTML(n)
		if err != nil {
			return swim.Root{}, err
		}
		return swim.Root{Children: []swim.Node{child}}, nil
	}
	children, err := convertHTMLChildren(n)
	if err != nil {
		return swim.Root{}, err
	}
	return swim.Root{Children: children}, nil
}

func convertHTMLChildren(n *html.Node) ([]swim.Node, error) {
	var out []swim.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		child, err := convertHTML(c)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

func convertHTML(n *html.Node) (swim.Node, error) {
	switch n.Type {
	case html.ElementNode:
		children, err := convertHTMLChildren(n)
		if err != nil {
			return nil, err
		}
		attrs := make([]swim.Attr, 0, len(n.Attr))
		for _, a := range n.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			attrs = append(attrs, swim.Attr{Key: key, Value: a.Val})
		}
		return swim.Element{Tag: n.Data, Attrs: attrs, Children: children}, nil
	case html.TextNode:
		if isRawTextParent(n.Parent) {
			return swim.RawData{Value: n.Data}, nil
		}
		return swim.Text{Value: n.Data}, nil
	case html.RawNode:
		return swim.RawData{Value: n.Data}, nil
	case html.CommentNode:
		return swim.Comment{Value: n.Data}, nil
	case html.DoctypeNode:
		return swim.Doctype{Value: n.Data}, nil
	default:
		return nil, &swim.UnsupportedNodeKindError{Kind: fmt.Sprintf("html node type %d", n.Type)}
	}
}

func isRawTextParent(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	return n.DataAtom == atom.Script || n.DataAtom == atom.Style
}
