package parse

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"

	"html2swim/internal/swim"
)

// groupTag wraps the input so that markup with several top-level elements
// is a well-formed XML document.
const groupTag = "group"

// ParseXML parses src strictly. The decoder error is returned verbatim for
// malformed markup. HTML named entities such as &nbsp; are accepted.
func ParseXML(src string) (swim.Root, error) {
	wrapped := "<" + groupTag + ">" + src + "</" + groupTag + ">"
	doc, err := xmlquery.ParseWithOptions(strings.NewReader(wrapped), xmlquery.ParserOptions{
		Decoder: &xmlquery.DecoderOptions{
			Strict: true,
			Entity: xml.HTMLEntity,
		},
	})
	if err != nil {
		return swim.Root{}, err
	}
	group := findGroup(doc)
	if group == nil {
		return swim.Root{}, fmt.Errorf("xml: missing <%s> wrapper", groupTag)
	}
	children, err := convertXMLChildren(group)
	if err != nil {
		return swim.Root{}, err
	}
	return swim.Root{Children: children}, nil
}

func findGroup(doc *xmlquery.Node) *xmlquery.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode && n.Data == groupTag {
			return n
		}
	}
	return nil
}

func convertXMLChildren(n *xmlquery.Node) ([]swim.Node, error) {
	var out []swim.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		child, err := convertXML(c)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

func convertXML(n *xmlquery.Node) (swim.Node, error) {
	switch n.Type {
	case xmlquery.ElementNode:
		children, err := convertXMLChildren(n)
		if err != nil {
			return nil, err
		}
		attrs := make([]swim.Attr, 0, len(n.Attr))
		for _, a := range n.Attr {
			attrs = append(attrs, swim.Attr{Key: qualified(a.Name.Space, a.Name.Local), Value: a.Value})
		}
		return swim.Element{Tag: qualified(n.Prefix, n.Data), Attrs: attrs, Children: children}, nil
	case xmlquery.TextNode:
		return swim.Text{Value: n.Data}, nil
	case xmlquery.CharDataNode:
		return swim.RawData{Value: n.Data}, nil
	case xmlquery.CommentNode:
		return swim.Comment{Value: n.Data}, nil
	case xmlquery.DeclarationNode, xmlquery.NotationNode:
		return swim.Doctype{Value: n.Data}, nil
	default:
		return nil, &swim.UnsupportedNodeKindError{Kind: fmt.Sprintf("xml node type %d", n.Type)}
	}
}

func qualified(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}
