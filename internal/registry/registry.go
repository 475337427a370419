// Package registry holds the searchable tool actions that pages register at
// startup and ranks them for the command palette.
package registry

import (
	"sort"
	"strings"
	"sync"
)

// Action is a searchable entry point that opens a page.
type Action struct {
	ID       string
	Title    string
	Keywords []string
	PageID   string
}

// Registry is an append-only collection of actions.
// All methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	actions []Action
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Register appends an action. Keywords are copied so later changes by the
// caller do not leak into the registry.
func (r *Registry) Register(a Action) {
	a.Keywords = append([]string(nil), a.Keywords...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
}

// Actions returns every registered action in registration order.
func (r *Registry) Actions() []Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actions)
}

// Search returns actions relevant to query, best match first.
//
// A whole-query substring hit on the title or keywords scores 100; otherwise
// each whitespace-separated token found scores 10. Zero-score actions are
// dropped and ties keep registration order. A blank query matches nothing.
func (r *Registry) Search(query string) []Action {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	tokens := strings.Fields(q)

	type ranked struct {
		score  int
		action Action
	}

	r.mu.RLock()
	candidates := make([]ranked, 0, len(r.actions))
	for _, a := range r.actions {
		if s := score(a, q, tokens); s > 0 {
			candidates = append(candidates, ranked{score: s, action: a})
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	result := make([]Action, len(candidates))
	for i, c := range candidates {
		result[i] = c.action
	}
	return result
}

func score(a Action, q string, tokens []string) int {
	hay := haystack(a)
	if strings.Contains(hay, q) {
		return 100
	}
	total := 0
	for _, t := range tokens {
		if strings.Contains(hay, t) {
			total += 10
		}
	}
	return total
}

func haystack(a Action) string {
	parts := make([]string, 0, len(a.Keywords)+1)
	parts = append(parts, a.Title)
	parts = append(parts, a.Keywords...)
	return strings.ToLower(strings.Join(parts, " "))
}
