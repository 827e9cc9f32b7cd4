package swim

import (
	"fmt"
	"strings"
)

// DefaultIndent is one nesting level of generated source.
const DefaultIndent = "    "

// Renderer turns a node tree into Swim source. The zero value indents with
// DefaultIndent.
type Renderer struct {
	Indent string
}

// Render renders n with the default renderer.
func Render(n Node) string {
	return Renderer{}.Render(n)
}

// Render renders n starting at indentation level zero.
//
// It panics with *UnsupportedNodeKindError when the tree contains a node
// type outside the closed Node set.
func (r Renderer) Render(n Node) string {
	var b strings.Builder
	r.render(&b, n, 0)
	return b.String()
}

func (r Renderer) indent(level int) string {
	unit := r.Indent
	if unit == "" {
		unit = DefaultIndent
	}
	return strings.Repeat(unit, level)
}

func (r Renderer) render(b *strings.Builder, n Node, level int) {
	switch t := n.(type) {
	case Root:
		r.renderChildren(b, t.Children, level)
	case Element:
		r.renderElement(b, t, level)
	case Text:
		text := strings.TrimSpace(t.Value)
		if text == "" {
			return
		}
		b.WriteString(r.indent(level) + Quote(text))
	case Comment:
		r.renderComment(b, t.Value, level)
	case RawData:
		b.WriteString(r.indent(level) + Quote(t.Value))
	case Doctype:
	default:
		panic(&UnsupportedNodeKindError{Kind: fmt.Sprintf("%T", n)})
	}
}

// renderChildren writes each child that produces output on its own line.
func (r Renderer) renderChildren(b *strings.Builder, children []Node, level int) {
	for _, c := range children {
		start := b.Len()
		r.render(b, c, level)
		if b.Len() > start {
			b.WriteString("\n")
		}
	}
}

func (r Renderer) renderElement(b *strings.Builder, el Element, level int) {
	indentation := r.indent(level)
	b.WriteString(indentation + el.Tag + "(")

	standard, custom := Classify(el.Tag, el.Attrs)
	args := make([]string, 0, len(standard)+1)
	for _, a := range sortByKey(standard) {
		args = append(args, a.Key+": "+Quote(NormalizeValue(a.Key, a.Value)))
	}
	if len(custom) > 0 {
		pairs := make([]string, 0, len(custom))
		for _, a := range custom {
			pairs = append(pairs, Quote(a.Key)+": "+Quote(NormalizeValue(a.Key, a.Value)))
		}
		args = append(args, "customAttributes: ["+strings.Join(pairs, ", ")+"]")
	}
	b.WriteString(strings.Join(args, ", "))
	b.WriteString(")")

	if len(el.Children) == 0 {
		return
	}
	b.WriteString(" {\n")
	r.renderChildren(b, el.Children, level+1)
	b.WriteString(indentation + "}")
}

func (r Renderer) renderComment(b *strings.Builder, body string, level int) {
	indentation := r.indent(level)
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = indentation + "// " + line
	}
	b.WriteString(strings.Join(lines, "\n"))
}
