package storage

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data.json"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestToggleScopesRoundTrip(t *testing.T) {
	s := newStorage(t)

	scopes, err := s.DisabledScopes("music.play")
	if err != nil {
		t.Fatal(err)
	}
	if len(scopes) != 0 {
		t.Fatalf("fresh store: got %v", scopes)
	}

	if err := s.AddToggle("g1", "music.play"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddToggle("g2", "music.play"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddToggle("g1", "music.play"); err != nil {
		t.Fatal(err)
	}

	scopes, err = s.DisabledScopes("music.play")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"g1", "g2"}, scopes); diff != "" {
		t.Errorf("scopes mismatch (-want +got):\n%s", diff)
	}

	if err := s.RemoveToggle("g1", "music.play"); err != nil {
		t.Fatal(err)
	}
	scopes, err = s.DisabledScopes("music.play")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"g2"}, scopes); diff != "" {
		t.Errorf("after removal (-want +got):\n%s", diff)
	}
}

func TestBotbans(t *testing.T) {
	s := newStorage(t)

	if err := s.AddBotban("g1", "u1"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddBotban("g1", "u2"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddBotban("g1", "u1"); err != nil {
		t.Fatal(err)
	}

	bans, err := s.Botbans("g1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"u1", "u2"}, bans); diff != "" {
		t.Errorf("bans mismatch (-want +got):\n%s", diff)
	}

	if err := s.RemoveBotban("g1", "u1"); err != nil {
		t.Fatal(err)
	}
	bans, err = s.Botbans("g1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"u2"}, bans); diff != "" {
		t.Errorf("after unban (-want +got):\n%s", diff)
	}

	other, err := s.Botbans("g2")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("other guild affected: %v", other)
	}
}

func TestInvokersDefaultRemovedMarker(t *testing.T) {
	s := newStorage(t)

	if err := s.AddInvoker("g1", "!"); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveInvoker("g1", "+", "+"); err != nil {
		t.Fatal(err)
	}

	invokers, defaultRemoved, err := s.Invokers("g1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"!"}, invokers); diff != "" {
		t.Errorf("invokers mismatch (-want +got):\n%s", diff)
	}
	if !defaultRemoved {
		t.Error("default prefix should be marked removed")
	}

	if err := s.RestoreDefaultInvoker("g1"); err != nil {
		t.Fatal(err)
	}
	_, defaultRemoved, err = s.Invokers("g1")
	if err != nil {
		t.Fatal(err)
	}
	if defaultRemoved {
		t.Error("marker should be cleared")
	}
}

func TestLocales(t *testing.T) {
	s := newStorage(t)

	if err := s.SetGuildLocale("g1", "fr"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetChannelLocale("g1", "c1", "de"); err != nil {
		t.Fatal(err)
	}

	loc, err := s.GuildLocale("g1")
	if err != nil {
		t.Fatal(err)
	}
	if loc != "fr" {
		t.Errorf("guild locale: got %q", loc)
	}

	channels, err := s.ChannelLocales("g1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]string{"c1": "de"}, channels); diff != "" {
		t.Errorf("channel locales (-want +got):\n%s", diff)
	}

	if err := s.SetChannelLocale("g1", "c1", ""); err != nil {
		t.Fatal(err)
	}
	channels, err = s.ChannelLocales("g1")
	if err != nil {
		t.Fatal(err)
	}
	if len(channels) != 0 {
		t.Errorf("override not cleared: %v", channels)
	}
}
