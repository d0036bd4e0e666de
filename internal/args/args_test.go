package args

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func collect(content string) []string {
	var out []string
	for {
		token, rest, ok := Next(content)
		if !ok {
			return out
		}
		out = append(out, token)
		content = rest
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"empty", "", nil},
		{"whitespace only", "  \t ", nil},
		{"single word", "hello", []string{"hello"}},
		{"words", "say hello there", []string{"say", "hello", "there"}},
		{"collapses whitespace", "  a \t b\n c ", []string{"a", "b", "c"}},
		{"double quotes", `say "hello world" bye`, []string{"say", "hello world", "bye"}},
		{"single quotes", "say 'hello world' bye", []string{"say", "hello world", "bye"}},
		{"guillemets", "say «hello world» bye", []string{"say", "hello world", "bye"}},
		{"corner brackets", "say 「hello world」 bye", []string{"say", "hello world", "bye"}},
		{"curly quotes", "say “hello world” bye", []string{"say", "hello world", "bye"}},
		{"quote inside word", `it's fine`, []string{"it's", "fine"}},
		{"unterminated quote slurps", `"abc def`, []string{"abc def"}},
		{"escaped close inside quotes", `"a \" b" c`, []string{`a " b`, "c"}},
		{"escaped quote in word", `a\"b`, []string{`a\"b`}},
		{"escaped opener is literal", `\"abc def`, []string{`"abc`, "def"}},
		{"doubled backslash", `a\\ b`, []string{`a\`, "b"}},
		{"close without following space", `"a"b c" d`, []string{`a"b c`, "d"}},
		{"empty quoted argument", `"" x`, []string{"", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(tt.content)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNextIsPure(t *testing.T) {
	content := `say "hello world" bye`
	t1, r1, _ := Next(content)
	t2, r2, _ := Next(content)
	if t1 != t2 || r1 != r2 {
		t.Fatalf("Next is not deterministic: (%q,%q) vs (%q,%q)", t1, r1, t2, r2)
	}
}

func TestRejoinReproducesInput(t *testing.T) {
	// Without quote characters, consumed tokens joined with single spaces
	// must reproduce the whitespace-collapsed input.
	content := "  alpha \t beta   gamma\ndelta "
	got := strings.Join(collect(content), " ")
	want := strings.Join(strings.Fields(content), " ")
	if got != want {
		t.Errorf("rejoined %q, want %q", got, want)
	}
}

func TestRemainderComposes(t *testing.T) {
	content := `cmd "two words" tail bits`
	_, rest, ok := Next(content)
	if !ok {
		t.Fatal("expected a token")
	}
	if diff := cmp.Diff([]string{"two words", "tail", "bits"}, collect(rest)); diff != "" {
		t.Errorf("remainder tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestPeek(t *testing.T) {
	got := Peek(`a "b c" d`, 5)
	if diff := cmp.Diff([]string{"a", "b c", "d"}, got); diff != "" {
		t.Errorf("Peek mismatch (-want +got):\n%s", diff)
	}
	if got := Peek("x y z", 2); len(got) != 2 {
		t.Errorf("Peek(2) returned %d tokens", len(got))
	}
}
