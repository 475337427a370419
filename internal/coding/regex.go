package coding

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxListedMatches caps the matches returned by Find.
	MaxListedMatches = 200

	previewLimit = 80
)

// RegexFlags mirror the usual IGNORECASE/MULTILINE/DOTALL switches.
type RegexFlags struct {
	IgnoreCase bool
	Multiline  bool
	DotAll     bool
}

func (f RegexFlags) prefix() string {
	var b strings.Builder
	if f.IgnoreCase {
		b.WriteByte('i')
	}
	if f.Multiline {
		b.WriteByte('m')
	}
	if f.DotAll {
		b.WriteByte('s')
	}
	if b.Len() == 0 {
		return ""
	}
	return "(?" + b.String() + ")"
}

// Compile builds pattern with flags applied.
func Compile(pattern string, flags RegexFlags) (*regexp.Regexp, error) {
	rx, err := regexp.Compile(flags.prefix() + pattern)
	if err != nil {
		return nil, fmt.Errorf("regex error: %w", err)
	}
	return rx, nil
}

// Match is one regex hit. Start and End are character offsets into the text.
type Match struct {
	Start   int
	End     int
	Preview string
}

// FindResult lists up to MaxListedMatches matches out of Total.
type FindResult struct {
	Total   int
	Matches []Match
}

// Find runs pattern over text.
func Find(pattern, text string, flags RegexFlags) (FindResult, error) {
	rx, err := Compile(pattern, flags)
	if err != nil {
		return FindResult{}, err
	}

	locs := rx.FindAllStringIndex(text, -1)
	res := FindResult{Total: len(locs)}
	for _, loc := range locs[:min(len(locs), MaxListedMatches)] {
		res.Matches = append(res.Matches, Match{
			Start:   utf8.RuneCountInString(text[:loc[0]]),
			End:     utf8.RuneCountInString(text[:loc[1]]),
			Preview: truncate(text[loc[0]:loc[1]], previewLimit),
		})
	}
	return res, nil
}

// String renders the result as the report shown on the Coding page.
func (r FindResult) String() string {
	lines := []string{fmt.Sprintf("Matches: %d", r.Total)}
	for i, m := range r.Matches {
		lines = append(lines, fmt.Sprintf("%03d  %d-%d  %s", i+1, m.Start, m.End, m.Preview))
	}
	if r.Total > len(r.Matches) {
		lines = append(lines, fmt.Sprintf("... showing first %d of %d", len(r.Matches), r.Total))
	}
	return strings.Join(lines, "\n")
}

// replRef matches the group references accepted in a replacement: \1,
// \g<1>, \g<name>, or an escaped backslash.
var replRef = regexp.MustCompile(`\\(?:(\d{1,2})|g<(\w+)>|(\\))`)

// Substitute replaces every match of pattern in text. Groups are referenced
// as \1 or \g<name>; every other character of repl, "$" included, is literal.
func Substitute(pattern, repl, text string, flags RegexFlags) (string, error) {
	rx, err := Compile(pattern, flags)
	if err != nil {
		return "", err
	}
	return rx.ReplaceAllString(text, expandTemplate(repl)), nil
}

// expandTemplate rewrites repl into a regexp.Expand template.
func expandTemplate(repl string) string {
	var b strings.Builder
	last := 0
	for _, m := range replRef.FindAllStringSubmatchIndex(repl, -1) {
		b.WriteString(strings.ReplaceAll(repl[last:m[0]], "$", "$$"))
		switch {
		case m[2] >= 0:
			b.WriteString("${" + repl[m[2]:m[3]] + "}")
		case m[4] >= 0:
			b.WriteString("${" + repl[m[4]:m[5]] + "}")
		default:
			b.WriteString(`\`)
		}
		last = m[1]
	}
	b.WriteString(strings.ReplaceAll(repl[last:], "$", "$$"))
	return b.String()
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-3]) + "..."
}
