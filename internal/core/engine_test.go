package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/keshon/herald/internal/cmderr"
	"github.com/keshon/herald/internal/convert"
)

// stubLines is an in-memory LineSource: lines[qualifiedID][key] = text,
// names[qualifiedID] = localized names.
type stubLines struct {
	lines map[string]map[string]string
	names map[string][]LocalizedName
}

var errNoLine = errors.New("no such line")

func (s *stubLines) Line(qualifiedID, key, _ string) (string, error) {
	if table, ok := s.lines[qualifiedID]; ok {
		if line, ok := table[key]; ok {
			return line, nil
		}
	}
	return "", errNoLine
}

func (s *stubLines) Names(qualifiedID string) []LocalizedName {
	return s.names[qualifiedID]
}

// replies collects messages sent back during a dispatch.
type replies struct {
	mu    sync.Mutex
	lines []string
}

func (r *replies) send(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, text)
	return nil
}

func (r *replies) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func defaultLines() *stubLines {
	return &stubLines{
		lines: map[string]map[string]string{
			"": {
				"ARG_MISSING":     "Missing argument: %s",
				"ARG_ERROR":       "Bad argument.",
				"error_authority": "Not authorised: %s",
			},
		},
		names: map[string][]LocalizedName{},
	}
}

type testEnv struct {
	engine *Engine
	out    *replies
}

func newEnv(lines LineSource, owners ...string) *testEnv {
	return &testEnv{
		engine: New(Options{Lines: lines, Owners: owners}),
		out:    &replies{},
	}
}

func (env *testEnv) dispatch(t *testing.T, content string) (*Auth, error) {
	t.Helper()
	ctx := env.engine.NewContext(context.Background(), ContextParams{
		AuthorID: "user1",
		GuildID:  "guild1",
		Locale:   "en",
		Content:  content,
		Reply:    env.out.send,
	})
	return env.engine.Dispatch(ctx)
}

func TestRootCommandNoArgs(t *testing.T) {
	env := newEnv(defaultLines())
	called := false
	env.engine.Command("ping", Signature{}, func(_ *Context, bound []any) error {
		called = true
		if len(bound) != 0 {
			t.Errorf("bound = %v, want none", bound)
		}
		return nil
	})

	blocked, err := env.dispatch(t, "ping")
	if err != nil || blocked != nil {
		t.Fatalf("dispatch: blocked=%v err=%v", blocked, err)
	}
	if !called {
		t.Fatal("handler was not called")
	}
	if len(env.out.all()) != 0 {
		t.Fatalf("unexpected replies: %v", env.out.all())
	}
}

func TestRoutingDescendsAndStops(t *testing.T) {
	env := newEnv(defaultLines())
	var got string
	root := env.engine.Command("cfg", Signature{}, func(ctx *Context, _ []any) error {
		got = "cfg:" + ctx.Remainder()
		return nil
	})
	root.Subcommand("set", Signature{
		Pos: []ParamSpec{{Name: "value", Type: convert.T("str")}},
	}, func(ctx *Context, bound []any) error {
		got = "set:" + bound[0].(string)
		return nil
	})

	if _, err := env.dispatch(t, "cfg set hello"); err != nil {
		t.Fatal(err)
	}
	if got != "set:hello" {
		t.Fatalf("got %q", got)
	}

	// An unmatched token stops the descent at the current node.
	if _, err := env.dispatch(t, "cfg bogus"); err != nil {
		t.Fatal(err)
	}
	if got != "cfg:bogus" {
		t.Fatalf("got %q", got)
	}
}

func TestLocalizedAliasPrecedence(t *testing.T) {
	lines := defaultLines()
	lines.names["greet"] = []LocalizedName{
		{Locale: "en", Name: "hello"},
		{Locale: "fr", Name: "bonjour"},
	}
	env := newEnv(lines)

	var called string
	env.engine.Command("greet", Signature{}, func(*Context, []any) error {
		called = "greet"
		return nil
	})
	// A competing bare-named command registered after: the locale-qualified
	// lookup for "hello" must still win for locale en.
	env.engine.Command("hello", Signature{}, func(*Context, []any) error {
		called = "hello"
		return nil
	})

	if _, err := env.dispatch(t, "hello"); err != nil {
		t.Fatal(err)
	}
	if called != "greet" {
		t.Fatalf("locale-qualified alias lost to bare name: called %q", called)
	}
}

func TestAuthBlameIsDeclaredOrder(t *testing.T) {
	env := newEnv(defaultLines())

	// A is slow and fails; B is instant and fails. Blame must fall on A,
	// regardless of completion order.
	authA := NewAuth("slowA", func(*Context) bool {
		time.Sleep(30 * time.Millisecond)
		return false
	})
	authB := NewAuth("fastB", func(*Context) bool { return false })

	env.engine.Command("guarded", Signature{}, func(*Context, []any) error {
		t.Error("handler must not run")
		return nil
	}, authA, authB)

	blocked, err := env.dispatch(t, "guarded")
	if err != nil {
		t.Fatal(err)
	}
	if blocked == nil || blocked.Name != "slowA" {
		t.Fatalf("blocked = %v, want slowA", blocked)
	}
}

func TestOwnerOverride(t *testing.T) {
	env := newEnv(defaultLines(), "boss")

	var calls atomic.Int32
	deny := NewAuth("deny", func(*Context) bool {
		calls.Add(1)
		return false
	})

	ran := false
	env.engine.Command("locked", Signature{}, func(*Context, []any) error {
		ran = true
		return nil
	}, deny)

	ctx := env.engine.NewContext(context.Background(), ContextParams{
		AuthorID: "boss",
		GuildID:  "guild1",
		Locale:   "en",
		Content:  "locked",
		Reply:    env.out.send,
	})
	blocked, err := env.engine.Dispatch(ctx)
	if err != nil || blocked != nil {
		t.Fatalf("owner was blocked: %v, %v", blocked, err)
	}
	if !ran {
		t.Fatal("handler did not run for owner")
	}
	// The failing predicate still executed.
	if calls.Load() != 1 {
		t.Fatalf("predicate ran %d times, want 1", calls.Load())
	}
	// No denial message was produced.
	if len(env.out.all()) != 0 {
		t.Fatalf("unexpected replies: %v", env.out.all())
	}
}

func TestDenialMessageCooldown(t *testing.T) {
	env := newEnv(defaultLines())
	deny := NewAuth("deny", func(*Context) bool { return false })
	env.engine.Command("locked", Signature{}, func(*Context, []any) error {
		t.Error("handler must not run")
		return nil
	}, deny)

	for i := 0; i < 3; i++ {
		blocked, err := env.dispatch(t, "locked")
		if err != nil {
			t.Fatal(err)
		}
		// The command blocks every time inside the window.
		if blocked == nil {
			t.Fatalf("dispatch %d was not blocked", i)
		}
	}
	// Only the first denial sends a message.
	want := []string{"Not authorised: deny"}
	if diff := cmp.Diff(want, env.out.all()); diff != "" {
		t.Errorf("denial replies mismatch (-want +got):\n%s", diff)
	}
}

func TestStarMinimumEnforced(t *testing.T) {
	env := newEnv(defaultLines())
	env.engine.Command("pick", Signature{
		Star: &StarSpec{Name: "items", Type: convert.Required(2, convert.T("int"))},
	}, func(*Context, []any) error {
		t.Error("handler must not run below the minimum")
		return nil
	})

	if _, err := env.dispatch(t, "pick 7"); err != nil {
		t.Fatal(err)
	}
	want := []string{"Missing argument: items"}
	if diff := cmp.Diff(want, env.out.all()); diff != "" {
		t.Errorf("replies mismatch (-want +got):\n%s", diff)
	}
}

func TestStarCollectsFlattened(t *testing.T) {
	env := newEnv(defaultLines())
	var got []any
	env.engine.Command("sum", Signature{
		Star: &StarSpec{Name: "nums", Type: convert.Required(1, convert.T("int"))},
	}, func(_ *Context, bound []any) error {
		got = bound
		return nil
	})

	if _, err := env.dispatch(t, "sum 1 2 3"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]any{1, 2, 3}, got); diff != "" {
		t.Errorf("star values mismatch (-want +got):\n%s", diff)
	}
}

func TestPositionalMissingReported(t *testing.T) {
	lines := defaultLines()
	lines.lines["give"] = map[string]string{
		"target_ARG_MISSING": "Who should receive it?",
	}
	env := newEnv(lines)
	env.engine.Command("give", Signature{
		Pos: []ParamSpec{{Name: "target", Type: convert.T("str")}},
	}, func(*Context, []any) error {
		t.Error("handler must not run")
		return nil
	})

	if _, err := env.dispatch(t, "give"); err != nil {
		t.Fatal(err)
	}
	// The parameter-specific key beats the generic one.
	want := []string{"Who should receive it?"}
	if diff := cmp.Diff(want, env.out.all()); diff != "" {
		t.Errorf("replies mismatch (-want +got):\n%s", diff)
	}
}

func TestConversionErrorSpecificity(t *testing.T) {
	lines := defaultLines()
	lines.lines["repeat"] = map[string]string{
		"count_INT_RESOLVE_error": "The count must be a number.",
	}
	env := newEnv(lines)
	env.engine.Command("repeat", Signature{
		Pos: []ParamSpec{{Name: "count", Type: convert.T("int")}},
	}, func(*Context, []any) error {
		t.Error("handler must not run")
		return nil
	})

	if _, err := env.dispatch(t, "repeat lots"); err != nil {
		t.Fatal(err)
	}
	want := []string{"The count must be a number."}
	if diff := cmp.Diff(want, env.out.all()); diff != "" {
		t.Errorf("replies mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultsFillMissing(t *testing.T) {
	env := newEnv(defaultLines())
	var got []any
	env.engine.Command("roll", Signature{
		Pos: []ParamSpec{{Name: "sides", Type: convert.T("int"), Default: convert.With(6)}},
	}, func(_ *Context, bound []any) error {
		got = bound
		return nil
	})

	if _, err := env.dispatch(t, "roll"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]any{6}, got); diff != "" {
		t.Errorf("bound mismatch (-want +got):\n%s", diff)
	}
}

func TestRemainder(t *testing.T) {
	env := newEnv(defaultLines())
	var got []any
	env.engine.Command("say", Signature{
		Remainder: &RemainderSpec{Name: "text"},
	}, func(_ *Context, bound []any) error {
		got = bound
		return nil
	})

	if _, err := env.dispatch(t, `say  all of "this text"  `); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]any{`all of "this text"`}, got); diff != "" {
		t.Errorf("remainder mismatch (-want +got):\n%s", diff)
	}

	// Empty remainder with no default reports the argument missing.
	got = nil
	if _, err := env.dispatch(t, "say"); err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatal("handler ran with empty remainder and no default")
	}
	want := []string{"Missing argument: text"}
	if diff := cmp.Diff(want, env.out.all()); diff != "" {
		t.Errorf("replies mismatch (-want +got):\n%s", diff)
	}
}

func TestHandlerKeyedErrorRecovered(t *testing.T) {
	lines := defaultLines()
	lines.lines["kick"] = map[string]string{
		"KICK_failed": "Could not kick %s.",
	}
	env := newEnv(lines)
	env.engine.Command("kick", Signature{}, func(*Context, []any) error {
		return cmderr.New("KICK_failed", "someone")
	})

	blocked, err := env.dispatch(t, "kick")
	if blocked != nil || err != nil {
		t.Fatalf("keyed error escaped: blocked=%v err=%v", blocked, err)
	}
	want := []string{"Could not kick someone."}
	if diff := cmp.Diff(want, env.out.all()); diff != "" {
		t.Errorf("replies mismatch (-want +got):\n%s", diff)
	}
}

func TestHandlerUnknownErrorPropagates(t *testing.T) {
	env := newEnv(defaultLines())
	boom := errors.New("boom")
	env.engine.Command("explode", Signature{}, func(*Context, []any) error {
		return fmt.Errorf("wrapping: %w", boom)
	})

	_, err := env.dispatch(t, "explode")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
}

func TestObserversRunAndAreIsolated(t *testing.T) {
	env := newEnv(defaultLines())
	env.engine.Command("noop", Signature{}, func(*Context, []any) error { return nil })

	var sawBlocked atomic.Bool
	var ran atomic.Int32
	env.engine.AfterInvoke(func(_ *Context, blocked *Auth) {
		ran.Add(1)
		if blocked != nil {
			sawBlocked.Store(true)
		}
		panic("observer failure must be isolated")
	})
	env.engine.AfterInvoke(func(_ *Context, _ *Auth) {
		ran.Add(1)
	})

	if _, err := env.dispatch(t, "noop"); err != nil {
		t.Fatal(err)
	}
	if ran.Load() != 2 {
		t.Fatalf("observers ran %d times, want 2", ran.Load())
	}
	if sawBlocked.Load() {
		t.Fatal("blocked auth reported for a successful invocation")
	}
}

func TestObserversReceiveBlockingAuth(t *testing.T) {
	env := newEnv(defaultLines())
	deny := NewAuth("deny", func(*Context) bool { return false })
	env.engine.Command("locked", Signature{}, func(*Context, []any) error { return nil }, deny)

	var got *Auth
	env.engine.AfterInvoke(func(_ *Context, blocked *Auth) { got = blocked })

	if _, err := env.dispatch(t, "locked"); err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Name != "deny" {
		t.Fatalf("observer got %v, want the deny auth", got)
	}
}

func TestStarAndRemainderConflict(t *testing.T) {
	env := newEnv(defaultLines())
	defer func() {
		if recover() == nil {
			t.Fatal("registering star and remainder together must panic")
		}
	}()
	env.engine.Command("bad", Signature{
		Star:      &StarSpec{Name: "s", Type: convert.T("str")},
		Remainder: &RemainderSpec{Name: "r"},
	}, func(*Context, []any) error { return nil })
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	env := newEnv(defaultLines())
	env.engine.Command("once", Signature{}, func(*Context, []any) error { return nil })
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate registration must panic")
		}
	}()
	env.engine.Command("once", Signature{}, func(*Context, []any) error { return nil })
}

func TestConflictingAliasPanics(t *testing.T) {
	lines := defaultLines()
	lines.names["greet"] = []LocalizedName{{Locale: "fr", Name: "bonjour"}}
	lines.names["wave"] = []LocalizedName{{Locale: "fr", Name: "bonjour"}}
	env := newEnv(lines)
	env.engine.Command("greet", Signature{}, func(*Context, []any) error { return nil })
	defer func() {
		if recover() == nil {
			t.Fatal("two siblings sharing a localized alias must panic")
		}
	}()
	env.engine.Command("wave", Signature{}, func(*Context, []any) error { return nil })
}
