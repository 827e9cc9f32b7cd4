package swim

import "fmt"

// Node is a parsed document node. The set of implementations is closed:
// Root, Element, Text, Comment, RawData and Doctype.
type Node interface {
	node()
}

type Root struct {
	Children []Node
}

func (Root) node() {}

type Attr struct {
	Key   string
	Value string
}

type Element struct {
	Tag      string
	Attrs    []Attr
	Children []Node
}

func (Element) node() {}

type Text struct {
	Value string
}

func (Text) node() {}

type Comment struct {
	Value string
}

func (Comment) node() {}

// RawData is unparsed embedded content such as script or style bodies.
type RawData struct {
	Value string
}

func (RawData) node() {}

type Doctype struct {
	Value string
}

func (Doctype) node() {}

// UnsupportedNodeKindError reports a node the renderer has no rule for.
// It means a parser adapter broke its output contract.
type UnsupportedNodeKindError struct {
	Kind string
}

func (e *UnsupportedNodeKindError) Error() string {
	return fmt.Sprintf("unsupported node kind: %s", e.Kind)
}
