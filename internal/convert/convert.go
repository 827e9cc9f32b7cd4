// Package convert runs the markup-to-Swim pipeline: ERB rewriting, parsing
// and rendering.
package convert

import (
	"errors"

	"html2swim/internal/parse"
	"html2swim/internal/swim"
)

// UnknownError is shown when a conversion produced neither source nor an
// error.
const UnknownError = "<unknown error>"

type Options struct {
	Parser          parse.Parser
	ERB             bool
	Indent          string
	Selector        string
	ExcludeSelector string
	// Tidy is accepted and carried through configuration but does not
	// change the conversion.
	Tidy bool
}

// DefaultOptions matches the behavior of the interactive editor: strict
// parsing with ERB blocks kept as comments.
func DefaultOptions() Options {
	return Options{Parser: parse.ParserXML, ERB: true}
}

// ParseError wraps the parser's rejection of the input.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// Output holds either the rendered source or the error that prevented it.
type Output struct {
	Source string
	Err    error
	Root   swim.Root

	rendered bool
}

// OK reports whether the conversion produced source.
func (o Output) OK() bool {
	return o.Err == nil && o.rendered
}

// Fatal reports whether the conversion hit a node kind no rule exists for.
// Unlike a parse error this is not a problem with the input.
func (o Output) Fatal() bool {
	var unsupported *swim.UnsupportedNodeKindError
	return errors.As(o.Err, &unsupported)
}

// Message returns the text to display for the conversion.
func (o Output) Message() string {
	if o.Err != nil {
		return o.Err.Error()
	}
	if !o.rendered {
		return UnknownError
	}
	return o.Source
}

// Convert turns src into Swim source.
//
// A parse failure is returned in Output.Err as a *ParseError and no source
// is rendered. A node kind the parser adapters cannot map is returned as
// *swim.UnsupportedNodeKindError.
func Convert(src string, opts Options) Output {
	if opts.ERB {
		src = parse.ReplaceERBBlocks(src)
	}
	root, err := parse.Parse(src, parse.Options{
		Parser:          opts.Parser,
		Selector:        opts.Selector,
		ExcludeSelector: opts.ExcludeSelector,
	})
	if err != nil {
		var unsupported *swim.UnsupportedNodeKindError
		if errors.As(err, &unsupported) {
			return Output{Err: err}
		}
		return Output{Err: &ParseError{Err: err}}
	}
	r := swim.Renderer{Indent: opts.Indent}
	return Output{Source: r.Render(root), Root: root, rendered: true}
}
