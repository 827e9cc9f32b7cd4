package markdown_test

import (
	"strings"
	"testing"

	"html2swim/internal/markdown"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name         string
		html         string
		wantContains []string
		wantMissing  []string
	}{
		{
			name:         "heading and paragraph",
			html:         "<h1>Title</h1><p>Hello <em>world</em></p>",
			wantContains: []string{"# Title", "Hello _world_"},
		},
		{
			name:         "table",
			html:         `<table><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2</td></tr></table>`,
			wantContains: []string{"| A | B |", "| 1 | 2 |"},
		},
		{
			name:         "links",
			html:         `<p><a href="/docs">relative</a> and <a href="https://example.com/abs">absolute</a></p>`,
			wantContains: []string{"[relative](/docs)", "[absolute](https://example.com/abs)"},
		},
		{
			name: "fenced code",
			html: `<pre><button>Copy</button><code class="language-go">fmt.Println("hi")
</code></pre>`,
			wantContains: []string{"```go", "fmt.Println(\"hi\")"},
		},
		{
			name:         "language alias",
			html:         `<pre><code class="highlight lang-golang">x := 1</code></pre>`,
			wantContains: []string{"```go\nx := 1"},
		},
		{
			name:         "swift sample",
			html:         `<pre><code class="language-swift">VStack { Text("hi") }</code></pre>`,
			wantContains: []string{"```swift"},
		},
		{
			name:         "no language",
			html:         `<pre><code>plain</code></pre>`,
			wantContains: []string{"```\nplain\n```"},
		},
		{
			name:         "fence grows around backticks",
			html:         "<pre><code class=\"language-md\">use ``` fences</code></pre>",
			wantContains: []string{"````md", "use ``` fences"},
		},
		{
			name:         "scripts dropped",
			html:         `<p>Shown</p><script>var hidden = 1;</script><style>p{}</style>`,
			wantContains: []string{"Shown"},
			wantMissing:  []string{"hidden", "p{}"},
		},
	}

	conv := markdown.NewConverter("")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := conv.Preview(tt.html)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("expected output to contain %q, but got:\n%s", want, got)
				}
			}
			for _, miss := range tt.wantMissing {
				if strings.Contains(got, miss) {
					t.Errorf("expected output to omit %q, but got:\n%s", miss, got)
				}
			}
		})
	}
}

func TestPreview_Empty(t *testing.T) {
	got, err := markdown.NewConverter("").Preview("<div>  </div>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty preview, got %q", got)
	}
}
