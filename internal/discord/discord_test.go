package discord

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/keshon/herald/internal/storage"
)

func TestCleanNeutralizesMassMentions(t *testing.T) {
	got := Clean("hi @everyone and @here")
	if strings.Contains(got, "@everyone") || strings.Contains(got, "@here") {
		t.Errorf("mass mention survived: %q", got)
	}
}

func TestCleanTruncates(t *testing.T) {
	got := Clean(strings.Repeat("a", 3000))
	if len(got) > maxMessageLength+3 {
		t.Errorf("length %d exceeds limit", len(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Error("missing ellipsis")
	}
}

func TestParseMention(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<@123456>", "123456"},
		{"<@!123456>", "123456"},
		{"123456", "123456"},
		{"someone", ""},
		{"<@abc>", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := parseMention(tc.in); got != tc.want {
			t.Errorf("parseMention(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func newStore(t *testing.T) *storage.Storage {
	t.Helper()
	s, err := storage.New(filepath.Join(t.TempDir(), "data.json"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInvokersDefaultAndCustom(t *testing.T) {
	store := newStore(t)
	inv := NewInvokers(store, "+")

	if diff := cmp.Diff([]string{"+"}, inv.For("g1")); diff != "" {
		t.Fatalf("fresh guild (-want +got):\n%s", diff)
	}

	if err := inv.Add("g1", "herald!"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"herald!", "+"}, inv.For("g1")); diff != "" {
		t.Errorf("custom prefix (-want +got):\n%s", diff)
	}
}

func TestInvokersRemoveDefault(t *testing.T) {
	store := newStore(t)
	inv := NewInvokers(store, "+")

	if err := inv.Add("g1", "!"); err != nil {
		t.Fatal(err)
	}
	if err := inv.Remove("g1", "+"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"!"}, inv.For("g1")); diff != "" {
		t.Errorf("default should be gone (-want +got):\n%s", diff)
	}

	if err := inv.Add("g1", "+"); err != nil {
		t.Fatal(err)
	}
	got := inv.For("g1")
	found := false
	for _, p := range got {
		if p == "+" {
			found = true
		}
	}
	if !found {
		t.Errorf("default not restored: %v", got)
	}
}

func TestInvokersCacheInvalidatedOnMutation(t *testing.T) {
	store := newStore(t)
	inv := NewInvokers(store, "+")

	inv.For("g1")
	if err := inv.Add("g1", "??"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"??", "+"}, inv.For("g1")); diff != "" {
		t.Errorf("stale cache (-want +got):\n%s", diff)
	}
}
