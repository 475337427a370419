package coding

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFind(t *testing.T) {
	res, err := Find(`b+`, "abbcébbb", RegexFlags{})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	want := FindResult{
		Total: 2,
		Matches: []Match{
			{Start: 1, End: 3, Preview: "bb"},
			{Start: 5, End: 8, Preview: "bbb"},
		},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestFind_Flags(t *testing.T) {
	text := "Alpha\nbeta\nALPHA"
	tests := []struct {
		name    string
		pattern string
		flags   RegexFlags
		want    int
	}{
		{"case sensitive", "alpha", RegexFlags{}, 0},
		{"ignore case", "alpha", RegexFlags{IgnoreCase: true}, 2},
		{"anchors without multiline", "^beta$", RegexFlags{}, 0},
		{"multiline", "^beta$", RegexFlags{Multiline: true}, 1},
		{"dot without dotall", "a.b", RegexFlags{}, 0},
		{"dotall", "a.b", RegexFlags{DotAll: true}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Find(tt.pattern, text, tt.flags)
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if res.Total != tt.want {
				t.Errorf("want %d matches, got %d", tt.want, res.Total)
			}
		})
	}
}

func TestFind_CapsAndTruncates(t *testing.T) {
	res, err := Find("x", strings.Repeat("x", 250), RegexFlags{})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if res.Total != 250 || len(res.Matches) != MaxListedMatches {
		t.Errorf("total=%d listed=%d", res.Total, len(res.Matches))
	}
	report := res.String()
	if !strings.HasSuffix(report, "... showing first 200 of 250") {
		t.Errorf("report footer missing:\n%s", report[len(report)-60:])
	}
	if !strings.HasPrefix(report, "Matches: 250\n001  0-1  x") {
		t.Errorf("report header: %q", report[:30])
	}

	long := strings.Repeat("y", 100)
	res, _ = Find("y+", long, RegexFlags{})
	if got := res.Matches[0].Preview; len(got) != 80 || !strings.HasSuffix(got, "...") {
		t.Errorf("preview should be truncated to 80 chars, got %d", len(got))
	}
}

func TestFind_InvalidPattern(t *testing.T) {
	if _, err := Find("(", "abc", RegexFlags{}); err == nil {
		t.Error("want error for invalid pattern")
	}
}

func TestSubstitute(t *testing.T) {
	tests := []struct {
		pattern, repl, text string
		flags               RegexFlags
		want                string
	}{
		{`(\w+)@(\w+)`, `\2 at \1`, "me@host", RegexFlags{}, "host at me"},
		{`(\w+)@(\w+)`, `\g<2> at \g<1>`, "me@host", RegexFlags{}, "host at me"},
		{`cat`, `dog`, "Cat cat", RegexFlags{IgnoreCase: true}, "dog dog"},
		{`(?P<y>\d{4})`, `[\g<y>]`, "in 2026", RegexFlags{}, "in [2026]"},
		{`price`, `$5 off`, "price today", RegexFlags{}, "$5 off today"},
		{`(\w+)@(\w+)`, `$2 at $1`, "me@host", RegexFlags{}, "$2 at $1"},
		{`(\d+)`, `\1$`, "cost 12", RegexFlags{}, "cost 12$"},
		{`a`, `\\`, "bab", RegexFlags{}, `b\b`},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.pattern, tt.repl), func(t *testing.T) {
			got, err := Substitute(tt.pattern, tt.repl, tt.text, tt.flags)
			if err != nil {
				t.Fatalf("Substitute: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := Substitute("[", "", "x", RegexFlags{}); err == nil {
		t.Error("want error for invalid pattern")
	}
}
