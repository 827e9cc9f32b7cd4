package swim

import (
	"strings"
	"testing"
)

func TestQuotePlain(t *testing.T) {
	tests := []string{"", "Emphasis", "a b c", "it's", "100% <ok> & done", `C:\path`}
	for _, s := range tests {
		if got, want := Quote(s), `"`+s+`"`; got != want {
			t.Errorf("Quote(%q)=%s want %s", s, got, want)
		}
	}
}

func TestQuoteRawSingleLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`say "hi"`, `#"say "hi""#`},
		{`"#tag"`, `##""#tag""##`},
		{`\#x "y"`, `##"\#x "y""##`},
	}
	for _, tt := range tests {
		got := Quote(tt.in)
		if got != tt.want {
			t.Errorf("Quote(%q)=%s want %s", tt.in, got, tt.want)
		}
		if decoded := decodeRaw(t, got); decoded != tt.in {
			t.Errorf("round trip of %q gave %q", tt.in, decoded)
		}
	}
}

func TestQuoteMultiLine(t *testing.T) {
	tests := []string{
		"line one\nline two",
		"with \"quotes\"\nand more",
		"trailing newline\n",
		"\"\"\"#\nclosing-looking",
	}
	for _, s := range tests {
		got := Quote(s)
		if !strings.Contains(got, `"""`+"\n") {
			t.Fatalf("Quote(%q)=%s is not a multi-line literal", s, got)
		}
		if decoded := decodeRaw(t, got); decoded != s {
			t.Errorf("round trip of %q gave %q", s, decoded)
		}
	}
}

// decodeRaw strips the delimiters of a raw literal produced by Quote and
// checks that the body cannot terminate the literal early.
func decodeRaw(t *testing.T, lit string) string {
	t.Helper()
	hashes := lit[:strings.IndexByte(lit, '"')]
	multi := strings.HasPrefix(lit[len(hashes):], `"""`)
	open, closing := hashes+`"`, `"`+hashes
	if multi {
		open, closing = hashes+`"""`+"\n", "\n"+`"""`+hashes
	}
	if !strings.HasPrefix(lit, open) || !strings.HasSuffix(lit, closing) {
		t.Fatalf("malformed literal %s", lit)
	}
	body := lit[len(open) : len(lit)-len(closing)]
	if strings.Contains(body, `"`+hashes) || strings.Contains(body, `\`+hashes) {
		t.Fatalf("body of %s contains its own delimiter", lit)
	}
	return body
}
