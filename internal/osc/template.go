package osc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var paramNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Template is an address pattern with whole-segment placeholders, such as
// "/atem/me/<me>/usk/<key>/on-air".
//
// Templates are expanded into concrete addresses at registration time so
// the Router only ever matches exact strings.
type Template struct {
	raw      string
	segments []segment
}

type segment struct {
	literal string
	param   string // non-empty for a placeholder
}

// Range is an inclusive span of placeholder values. A range with To < From
// is empty and expands to nothing.
type Range struct {
	From int
	To   int
}

// Span returns the 1-based range [1, n].
func Span(n int) Range {
	return Range{From: 1, To: n}
}

// Ranges supplies a Range for each placeholder name.
type Ranges map[string]Range

// Params holds the placeholder values of one expanded address.
type Params map[string]int

// Get returns the value of placeholder name, or 0 when absent.
func (p Params) Get(name string) int {
	return p[name]
}

// Binding is one concrete address produced by Template.Expand.
type Binding struct {
	Address string
	Params  Params
}

// ParseTemplate parses an address template.
// Placeholders must occupy a whole segment and may appear at most once.
func ParseTemplate(s string) (Template, error) {
	if !strings.HasPrefix(s, "/") || strings.HasSuffix(s, "/") {
		return Template{}, fmt.Errorf("%w: %q", ErrInvalidTemplate, s)
	}

	parts := strings.Split(s[1:], "/")
	t := Template{raw: s, segments: make([]segment, 0, len(parts))}
	seen := make(map[string]bool)

	for _, part := range parts {
		if part == "" {
			return Template{}, fmt.Errorf("%w: %q has an empty segment", ErrInvalidTemplate, s)
		}
		if !strings.ContainsAny(part, "<>") {
			t.segments = append(t.segments, segment{literal: part})
			continue
		}
		if !strings.HasPrefix(part, "<") || !strings.HasSuffix(part, ">") {
			return Template{}, fmt.Errorf("%w: %q: placeholder must fill the segment %q", ErrInvalidTemplate, s, part)
		}
		name := part[1 : len(part)-1]
		if !paramNameRegex.MatchString(name) {
			return Template{}, fmt.Errorf("%w: %q: bad placeholder name %q", ErrInvalidTemplate, s, name)
		}
		if seen[name] {
			return Template{}, fmt.Errorf("%w: %q: placeholder %q repeated", ErrInvalidTemplate, s, name)
		}
		seen[name] = true
		t.segments = append(t.segments, segment{param: name})
	}
	return t, nil
}

// MustParseTemplate is like ParseTemplate but panics on error.
// It is intended for package-level address tables.
func MustParseTemplate(s string) Template {
	t, err := ParseTemplate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the template as written.
func (t Template) String() string {
	return t.raw
}

// Params returns the placeholder names in order of appearance.
func (t Template) Params() []string {
	var names []string
	for _, seg := range t.segments {
		if seg.param != "" {
			names = append(names, seg.param)
		}
	}
	return names
}

// Expand produces every concrete address for the given ranges. The first
// placeholder varies slowest. A template without placeholders yields one
// binding. Every placeholder must have a range.
func (t Template) Expand(ranges Ranges) ([]Binding, error) {
	names := t.Params()
	for _, name := range names {
		if _, ok := ranges[name]; !ok {
			return nil, fmt.Errorf("%w: %s: no range for <%s>", ErrInvalidTemplate, t.raw, name)
		}
	}

	var out []Binding
	current := make(Params, len(names))

	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(names) {
			params := make(Params, len(current))
			for k, v := range current {
				params[k] = v
			}
			out = append(out, Binding{Address: t.render(params), Params: params})
			return
		}
		rg := ranges[names[depth]]
		for v := rg.From; v <= rg.To; v++ {
			current[names[depth]] = v
			walk(depth + 1)
		}
	}
	walk(0)

	return out, nil
}

func (t Template) render(params Params) string {
	var sb strings.Builder
	for _, seg := range t.segments {
		sb.WriteByte('/')
		if seg.param != "" {
			sb.WriteString(strconv.Itoa(params[seg.param]))
			continue
		}
		sb.WriteString(seg.literal)
	}
	return sb.String()
}
