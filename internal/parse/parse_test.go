package parse_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"html2swim/internal/parse"
	"html2swim/internal/swim"
)

func TestParseXML(t *testing.T) {
	root, err := parse.ParseXML(`<bar /><em class="foo">Emphasis</em><!-- note --><script><![CDATA[a < b]]></script>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := swim.Root{Children: []swim.Node{
		swim.Element{Tag: "bar", Attrs: []swim.Attr{}},
		swim.Element{Tag: "em", Attrs: []swim.Attr{{Key: "class", Value: "foo"}}, Children: []swim.Node{swim.Text{Value: "Emphasis"}}},
		swim.Comment{Value: " note "},
		swim.Element{Tag: "script", Attrs: []swim.Attr{}, Children: []swim.Node{swim.RawData{Value: "a < b"}}},
	}}
	if diff := cmp.Diff(want, root); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseXML_Malformed(t *testing.T) {
	_, err := parse.ParseXML(`<div><p>unclosed</div>`)
	if err == nil {
		t.Fatal("expected error for malformed markup")
	}
	if !strings.Contains(err.Error(), "XML syntax error") {
		t.Fatalf("expected decoder error, got %v", err)
	}
}

func TestParseXML_HTMLEntities(t *testing.T) {
	root, err := parse.ParseXML(`<p>a&nbsp;b &amp; c</p>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := root.Children[0].(swim.Element)
	if got := p.Children[0].(swim.Text).Value; got != "a\u00a0b & c" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestParseXML_ProcessingInstructionUnsupported(t *testing.T) {
	_, err := parse.ParseXML(`<p>x</p><?php echo 1; ?>`)
	var unsupported *swim.UnsupportedNodeKindError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedNodeKindError, got %v", err)
	}
}

func TestParseHTMLFragment(t *testing.T) {
	root, err := parse.Parse(`<p class="x">Hi<br>there</p><script>if (a < b) {}</script>`, parse.Options{Parser: parse.ParserHTML})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 top-level nodes, got %d: %#v", len(root.Children), root.Children)
	}
	p, ok := root.Children[0].(swim.Element)
	if !ok || p.Tag != "p" {
		t.Fatalf("expected <p>, got %#v", root.Children[0])
	}
	if len(p.Children) != 3 {
		t.Fatalf("expected text, br, text; got %#v", p.Children)
	}
	script := root.Children[1].(swim.Element)
	if diff := cmp.Diff([]swim.Node{swim.RawData{Value: "if (a < b) {}"}}, script.Children); diff != "" {
		t.Fatalf("script body mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHTMLDocument(t *testing.T) {
	root, err := parse.Parse(`<!DOCTYPE html><html><head><title>T</title></head><body><p>x</p></body></html>`, parse.Options{Parser: parse.ParserHTML})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := root.Children[0].(swim.Doctype); !ok {
		t.Fatalf("expected doctype first, got %#v", root.Children[0])
	}
	html, ok := root.Children[1].(swim.Element)
	if !ok || html.Tag != "html" {
		t.Fatalf("expected <html>, got %#v", root.Children[1])
	}
}

func TestParseHTML_Selectors(t *testing.T) {
	src := `<div><nav>skip</nav><main id="content"><p class="ad">ad</p><p>Alpha</p></main></div>`
	root, err := parse.Parse(src, parse.Options{Parser: parse.ParserHTML, Selector: "#content", ExcludeSelector: ".ad"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := swim.Root{Children: []swim.Node{
		swim.Element{
			Tag:      "main",
			Attrs:    []swim.Attr{{Key: "id", Value: "content"}},
			Children: []swim.Node{swim.Element{Tag: "p", Attrs: []swim.Attr{}, Children: []swim.Node{swim.Text{Value: "Alpha"}}}},
		},
	}}
	if diff := cmp.Diff(want, root); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_SelectorNotFound(t *testing.T) {
	_, err := parse.Parse(`<div></div>`, parse.Options{Parser: parse.ParserHTML, Selector: "#missing"})
	if err == nil {
		t.Fatal("expected error for missing selector")
	}
}

func TestParse_SelectorsNeedHTMLParser(t *testing.T) {
	_, err := parse.Parse(`<div></div>`, parse.Options{Parser: parse.ParserXML, Selector: "div"})
	if err == nil {
		t.Fatal("expected error when selectors are used with the xml parser")
	}
}

func TestParse_UnknownParser(t *testing.T) {
	if _, err := parse.Parse(`<div></div>`, parse.Options{Parser: "sgml"}); err == nil {
		t.Fatal("expected error for unknown parser")
	}
}

func TestReplaceERBBlocks(t *testing.T) {
	got := parse.ReplaceERBBlocks("<p><%= user.name %></p><% if x\n %>")
	want := "<p><!-- = user.name  --></p><!--  if x\n  -->"
	if got != want {
		t.Fatalf("ReplaceERBBlocks()=%q want %q", got, want)
	}
}
