// Package toggle decides whether a command is disabled in a scope (a guild,
// or "global" when absent). One toggle predicate instance is constructed at
// boot and wired first into every node's auth chain.
package toggle

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/keshon/herald/internal/cache"
	"github.com/keshon/herald/internal/core"
)

const cacheSize = 100

// Store is the persistent disablement set, keyed by (scope, qualified id).
type Store interface {
	// DisabledScopes returns every scope the command is disabled in.
	DisabledScopes(qualifiedID string) ([]string, error)
	AddToggle(scope, qualifiedID string) error
	RemoveToggle(scope, qualifiedID string) error
}

// Service answers and mutates toggles. Reads are served from a bounded
// per-qualified-id cache of disabled scopes; mutations write through to the
// store and patch the cached entry instead of invalidating it. Cached lists
// are never mutated once published: readers may hold one across lock
// boundaries, so every patch swaps in a fresh copy.
type Service struct {
	store Store
	mu    sync.Mutex
	cache *cache.LFU
}

// New builds a toggle service over the given store.
func New(store Store) *Service {
	return &Service{store: store, cache: cache.NewLFU(cacheSize)}
}

// Predicate returns the auth predicate attached to every command node. It
// denies when the current node is disabled in the invocation's scope; store
// failures fail open.
func (s *Service) Predicate() core.Predicate {
	return func(ctx *core.Context) bool {
		return !s.Disabled(ctx.GuildID(), ctx.Node().QualifiedID())
	}
}

// Disabled reports whether the command is disabled in scope. The empty
// scope (DMs) is never disabled.
func (s *Service) Disabled(scope, qualifiedID string) bool {
	if scope == "" {
		return false
	}
	scopes, err := s.scopes(qualifiedID)
	if err != nil {
		log.Warn().Err(err).Str("command", qualifiedID).Msg("toggle lookup failed, allowing")
		return false
	}
	for _, s := range scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Disable marks the commands disabled in scope. Disabling an already
// disabled command is a no-op.
func (s *Service) Disable(scope string, qualifiedIDs ...string) error {
	for _, qid := range qualifiedIDs {
		if err := s.store.AddToggle(scope, qid); err != nil {
			return fmt.Errorf("disable %s: %w", qid, err)
		}
		s.patch(qid, func(scopes []string) []string {
			for _, sc := range scopes {
				if sc == scope {
					return scopes
				}
			}
			out := make([]string, 0, len(scopes)+1)
			out = append(out, scopes...)
			return append(out, scope)
		})
	}
	return nil
}

// Enable removes the commands from the disablement set for scope.
func (s *Service) Enable(scope string, qualifiedIDs ...string) error {
	for _, qid := range qualifiedIDs {
		if err := s.store.RemoveToggle(scope, qid); err != nil {
			return fmt.Errorf("enable %s: %w", qid, err)
		}
		s.patch(qid, func(scopes []string) []string {
			out := make([]string, 0, len(scopes))
			for _, sc := range scopes {
				if sc != scope {
					out = append(out, sc)
				}
			}
			return out
		})
	}
	return nil
}

// Toggle flips each command between enabled and disabled in scope and
// returns nothing; use Disabled to observe the new state.
func (s *Service) Toggle(scope string, qualifiedIDs ...string) error {
	for _, qid := range qualifiedIDs {
		var err error
		if s.Disabled(scope, qid) {
			err = s.Enable(scope, qid)
		} else {
			err = s.Disable(scope, qid)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// scopes returns the cached disabled-scope list for a command, loading it
// from the store on a miss.
func (s *Service) scopes(qualifiedID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache.Get(qualifiedID); ok {
		return v.([]string), nil
	}
	scopes, err := s.store.DisabledScopes(qualifiedID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(qualifiedID, scopes)
	return scopes, nil
}

// patch replaces the cached list of a command with fn's result, if one is
// cached. fn must return a fresh slice rather than edit its argument, since
// readers outside the lock may still iterate the old one. Missing entries
// stay missing: they will be loaded from the store, which already holds the
// mutation.
func (s *Service) patch(qualifiedID string, fn func([]string) []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache.Get(qualifiedID); ok {
		s.cache.Set(qualifiedID, fn(v.([]string)))
	}
}
