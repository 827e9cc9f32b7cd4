package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"html2swim/internal/fetch"
	"html2swim/internal/parse"
)

// setting is a flag value that remembers whether it was given on the
// command line. Config files only fill settings the command line left
// alone.
type setting[T any] struct {
	Value  T
	WasSet bool
	parse  func(string) (T, error)
}

func (s *setting[T]) String() string {
	if s == nil {
		return ""
	}
	return fmt.Sprint(s.Value)
}

func (s *setting[T]) Set(v string) error {
	parsed, err := s.parse(strings.TrimSpace(v))
	if err != nil {
		return err
	}
	s.Value = parsed
	s.WasSet = true
	return nil
}

// fill takes v from a config file. ok is false when the config does not
// carry the value.
func (s *setting[T]) fill(v T, ok bool) {
	if !s.WasSet && ok {
		s.Value = v
	}
}

func (s *setting[T]) fillPtr(v *T) {
	if v != nil {
		s.fill(*v, true)
	}
}

type toggle struct {
	setting[bool]
}

func (*toggle) IsBoolFlag() bool { return true }

func textSetting(def string) setting[string] {
	return setting[string]{Value: def, parse: parseText}
}

func countSetting(def int) setting[int] {
	return setting[int]{Value: def, parse: parseCount}
}

func toggleSetting(def bool) toggle {
	return toggle{setting[bool]{Value: def, parse: parseToggle}}
}

func rateSetting() setting[float64] {
	return setting[float64]{parse: parseRate}
}

func parserSetting() setting[parse.Parser] {
	return setting[parse.Parser]{parse: parseParser}
}

func modeSetting() setting[fetch.Mode] {
	return setting[fetch.Mode]{Value: fetch.ModeAuto, parse: fetch.ParseMode}
}

func parseCount(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New("want a whole number")
	}
	if n < 0 {
		return 0, errors.New("must not be negative")
	}
	return n, nil
}

func parseRate(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New("want a number")
	}
	if f < 0 {
		return 0, errors.New("must not be negative")
	}
	return f, nil
}

func parseToggle(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "true", "1", "yes", "y":
		return true, nil
	case "false", "0", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("want true or false, got %q", v)
}

func parseParser(v string) (parse.Parser, error) {
	switch p := parse.Parser(strings.ToLower(v)); p {
	case parse.ParserXML, parse.ParserHTML:
		return p, nil
	}
	return "", fmt.Errorf("want xml or html, got %q", v)
}

// pairs collects repeatable key=value flags such as --header and --cookie.
type pairs struct {
	Values map[string]string
}

func (p *pairs) String() string {
	if p == nil || len(p.Values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p.Values))
	for k := range p.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+p.Values[k])
	}
	return strings.Join(out, ",")
}

func (p *pairs) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	if p.Values == nil {
		p.Values = make(map[string]string)
	}
	p.Values[key] = strings.TrimSpace(value)
	return nil
}

// merge adds config entries for keys not given on the command line.
func (p *pairs) merge(values map[string]string) {
	for k, v := range values {
		if _, ok := p.Values[k]; ok {
			continue
		}
		if p.Values == nil {
			p.Values = make(map[string]string)
		}
		p.Values[k] = v
	}
}
