package convert_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"html2swim/internal/convert"
	"html2swim/internal/parse"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts convert.Options
		want string
	}{
		{
			name: "emphasis",
			in:   `<em class="foo">Emphasis</em>`,
			opts: convert.DefaultOptions(),
			want: "em(class: \"foo\") {\n    \"Emphasis\"\n}\n",
		},
		{
			name: "self-closing element",
			in:   `<bar />`,
			opts: convert.DefaultOptions(),
			want: "bar()\n",
		},
		{
			name: "editor sample",
			in:   `<bar /><em class="foo">Emphasis</em>`,
			opts: convert.DefaultOptions(),
			want: "bar()\nem(class: \"foo\") {\n    \"Emphasis\"\n}\n",
		},
		{
			name: "nested layout with links",
			in: `<nav data-turbo="false">
  <a href="index.html">Home</a>
  <a href="blog/post.html" aria-current="page">Post</a>
</nav>`,
			opts: convert.DefaultOptions(),
			want: `nav(customAttributes: ["data-turbo": "false"]) {
    a(href: "/") {
        "Home"
    }
    a(href: "/blog/post", customAttributes: ["aria-current": "page"]) {
        "Post"
    }
}
`,
		},
		{
			name: "erb becomes comments",
			in:   `<p><%= title %></p>`,
			opts: convert.DefaultOptions(),
			want: "p() {\n    //  = title  \n}\n",
		},
		{
			name: "html parser",
			in:   `<ul><li>One<li>Two</ul>`,
			opts: convert.Options{Parser: parse.ParserHTML},
			want: "ul() {\n    li() {\n        \"One\"\n    }\n    li() {\n        \"Two\"\n    }\n}\n",
		},
		{
			name: "custom indent",
			in:   `<div><span>x</span></div>`,
			opts: convert.Options{Parser: parse.ParserXML, Indent: "  "},
			want: "div() {\n  span() {\n    \"x\"\n  }\n}\n",
		},
		{
			name: "tidy does not change output",
			in:   `<div>  <span>x</span>  </div>`,
			opts: convert.Options{Parser: parse.ParserXML, Tidy: true},
			want: "div() {\n    span() {\n        \"x\"\n    }\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := convert.Convert(tt.in, tt.opts)
			if !out.OK() {
				t.Fatalf("unexpected error: %v", out.Err)
			}
			if diff := cmp.Diff(tt.want, out.Message()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConvert_ParseErrorIsShownVerbatim(t *testing.T) {
	out := convert.Convert(`<div><p>broken</div>`, convert.DefaultOptions())
	if out.OK() {
		t.Fatalf("expected failure, got source %q", out.Source)
	}
	var parseErr *convert.ParseError
	if !errors.As(out.Err, &parseErr) {
		t.Fatalf("expected ParseError, got %T", out.Err)
	}
	if out.Source != "" {
		t.Fatalf("expected no partial output, got %q", out.Source)
	}
	if got := out.Message(); got != parseErr.Err.Error() {
		t.Fatalf("Message()=%q want parser error %q", got, parseErr.Err.Error())
	}
	if out.Fatal() {
		t.Fatal("parse errors are not fatal")
	}
}

func TestConvert_UnsupportedNodeIsFatal(t *testing.T) {
	out := convert.Convert(`<p>x</p><?php echo 1; ?>`, convert.DefaultOptions())
	if !out.Fatal() {
		t.Fatalf("expected fatal output, got %#v", out)
	}
}

func TestOutput_UnknownError(t *testing.T) {
	if got := (convert.Output{}).Message(); got != convert.UnknownError {
		t.Fatalf("Message()=%q want %q", got, convert.UnknownError)
	}
}

func TestConvert_EmptyInput(t *testing.T) {
	out := convert.Convert("", convert.DefaultOptions())
	if !out.OK() || out.Message() != "" {
		t.Fatalf("expected empty source, got %#v", out)
	}
}
