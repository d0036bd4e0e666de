// Package lang serves localized command names and response lines. Locale
// tables are YAML files loaded once at boot; lookups afterwards are plain
// map reads and safe for concurrent use.
package lang

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/keshon/herald/internal/core"
)

// ErrNotFound signals that a key is absent from every consulted table, so
// the engine can try alternate keys and walk the ancestor chain.
var ErrNotFound = errors.New("line not found")

// DefaultLocale is the fallback consulted when a locale lacks a key.
const DefaultLocale = "en"

// file is the YAML shape of one locale: top-level lines plus per-command
// sections keyed by qualified id.
type file struct {
	Strings  map[string]string  `yaml:"strings"`
	Commands map[string]section `yaml:"commands"`
}

type section struct {
	Names   []string          `yaml:"names"`
	Strings map[string]string `yaml:"strings"`
}

// Store holds every loaded locale table.
type Store struct {
	locales  map[string]file
	fallback string
}

// Load reads every *.yaml file in dir; the file base name is the locale tag
// (en.yaml, fr.yaml, ...).
func Load(dir string) (*Store, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no locale files in %s", dir)
	}
	sort.Strings(matches)

	s := &Store{locales: make(map[string]file), fallback: DefaultLocale}
	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", path, err)
		}
		var f file
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", path, err)
		}
		tag := strings.TrimSuffix(filepath.Base(path), ".yaml")
		s.locales[tag] = f
	}
	if _, ok := s.locales[s.fallback]; !ok {
		return nil, fmt.Errorf("missing fallback locale %q", s.fallback)
	}
	return s, nil
}

// NewStore builds a store from already-parsed tables, mainly for tests.
func NewStore(tables map[string]map[string]string, names map[string]map[string][]string) *Store {
	s := &Store{locales: make(map[string]file), fallback: DefaultLocale}
	for locale, lines := range tables {
		f := file{Strings: map[string]string{}, Commands: map[string]section{}}
		for key, line := range lines {
			qid, k, found := strings.Cut(key, "/")
			if !found {
				f.Strings[key] = line
				continue
			}
			sec := f.Commands[qid]
			if sec.Strings == nil {
				sec.Strings = map[string]string{}
			}
			sec.Strings[k] = line
			f.Commands[qid] = sec
		}
		for qid, aliases := range names[locale] {
			sec := f.Commands[qid]
			sec.Names = append(sec.Names, aliases...)
			f.Commands[qid] = sec
		}
		s.locales[locale] = f
	}
	return s
}

// Line returns the string under key for the command with the given
// qualified id (empty id addresses the root table). The requested locale is
// consulted first, then the fallback locale.
func (s *Store) Line(qualifiedID, key, locale string) (string, error) {
	if line, ok := s.lookup(qualifiedID, key, locale); ok {
		return line, nil
	}
	if locale != s.fallback {
		if line, ok := s.lookup(qualifiedID, key, s.fallback); ok {
			return line, nil
		}
	}
	return "", fmt.Errorf("%w: %s %s (%s)", ErrNotFound, qualifiedID, key, locale)
}

// Names returns every (locale, name) pair the command answers to.
func (s *Store) Names(qualifiedID string) []core.LocalizedName {
	var out []core.LocalizedName
	locales := make([]string, 0, len(s.locales))
	for tag := range s.locales {
		locales = append(locales, tag)
	}
	sort.Strings(locales)
	for _, tag := range locales {
		sec, ok := s.locales[tag].Commands[qualifiedID]
		if !ok {
			continue
		}
		for _, name := range sec.Names {
			out = append(out, core.LocalizedName{Locale: tag, Name: name})
		}
	}
	return out
}

// Locales returns the loaded locale tags, sorted.
func (s *Store) Locales() []string {
	out := make([]string, 0, len(s.locales))
	for tag := range s.locales {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Has reports whether the locale tag is loaded.
func (s *Store) Has(locale string) bool {
	_, ok := s.locales[locale]
	return ok
}

func (s *Store) lookup(qualifiedID, key, locale string) (string, bool) {
	f, ok := s.locales[locale]
	if !ok {
		return "", false
	}
	if qualifiedID == "" {
		line, ok := f.Strings[key]
		return line, ok
	}
	sec, ok := f.Commands[qualifiedID]
	if !ok {
		return "", false
	}
	line, ok := sec.Strings[key]
	return line, ok
}
