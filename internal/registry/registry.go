// Package registry holds the canonical institution list and resolves
// free-text institution names against it.
//
// A Registry is built once through a Builder, which assigns identifiers in
// insertion order. Every alias of every entity is pooled into a single index
// sorted by alias text, so exact lookups are a binary search and fuzzy
// lookups scan the index in a stable order. A built Registry is never
// modified and may be shared between goroutines.
package registry

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Iron-Ham/pcsplit/internal/fuzzy"
	"golang.org/x/text/unicode/norm"
)

// ID identifies an Entity within one Registry.
type ID int

// NotFound is returned alongside false by lookups that fail.
const NotFound ID = -1

// DefaultNoiseWords are removed from aliases and queries before matching.
var DefaultNoiseWords = []string{"UNIVERSITY", "COLLEGE"}

// Entity is a canonical institution.
type Entity struct {
	ID      ID
	Name    string   // display name, the first alias
	Aliases []string // normalised aliases, Name included
}

// Match is the result of a fuzzy lookup.
type Match struct {
	Name  string // the alias that matched
	ID    ID
	Score int
}

type aliasEntry struct {
	alias string
	id    ID
}

// Registry is an immutable index of entities and their aliases.
type Registry struct {
	entities   []Entity
	index      []aliasEntry
	aliases    fuzzy.Choices // index[i].alias, processed for fuzzy lookups
	noiseWords []string
}

// Builder accumulates entities for a Registry.
type Builder struct {
	entities   []Entity
	noiseWords []string
}

// NewBuilder returns a Builder that strips the given noise words from every
// alias. A nil slice selects DefaultNoiseWords.
func NewBuilder(noiseWords []string) *Builder {
	if noiseWords == nil {
		noiseWords = DefaultNoiseWords
	}
	upper := make([]string, 0, len(noiseWords))
	for _, w := range noiseWords {
		if w = strings.ToUpper(strings.TrimSpace(w)); w != "" {
			upper = append(upper, w)
		}
	}
	return &Builder{noiseWords: upper}
}

// Add registers an entity with the given aliases and returns its ID.
// Aliases that normalise to the empty string are dropped. An entity with no
// usable alias is not registered and NotFound is returned.
func (b *Builder) Add(aliases ...string) ID {
	normalised := make([]string, 0, len(aliases))
	for _, a := range aliases {
		if n := Normalize(a, b.noiseWords); n != "" {
			normalised = append(normalised, n)
		}
	}
	if len(normalised) == 0 {
		return NotFound
	}
	id := ID(len(b.entities))
	b.entities = append(b.entities, Entity{
		ID:      id,
		Name:    normalised[0],
		Aliases: normalised,
	})
	return id
}

// Build sorts the alias index and returns the finished Registry.
func (b *Builder) Build() *Registry {
	var index []aliasEntry
	for _, e := range b.entities {
		for _, a := range e.Aliases {
			index = append(index, aliasEntry{alias: a, id: e.ID})
		}
	}
	slices.SortStableFunc(index, func(x, y aliasEntry) int {
		return cmp.Compare(x.alias, y.alias)
	})

	aliases := make([]string, len(index))
	for i, entry := range index {
		aliases[i] = entry.alias
	}

	return &Registry{
		entities:   slices.Clone(b.entities),
		index:      index,
		aliases:    fuzzy.NewChoices(aliases),
		noiseWords: slices.Clone(b.noiseWords),
	}
}

// Normalize upper-cases s, applies NFKC, removes every occurrence of the
// noise words and collapses whitespace.
func Normalize(s string, noiseWords []string) string {
	s = strings.ToUpper(norm.NFKC.String(s))
	for _, w := range noiseWords {
		s = strings.ReplaceAll(s, w, "")
	}
	return strings.Join(strings.Fields(s), " ")
}

// Normalize applies the registry's own noise words.
func (r *Registry) Normalize(s string) string {
	return Normalize(s, r.noiseWords)
}

// NoiseWords returns the words stripped during normalisation.
func (r *Registry) NoiseWords() []string {
	return slices.Clone(r.noiseWords)
}

// Len returns the number of entities.
func (r *Registry) Len() int {
	return len(r.entities)
}

// Entity returns the entity with the given ID.
func (r *Registry) Entity(id ID) (Entity, bool) {
	if id < 0 || int(id) >= len(r.entities) {
		return Entity{}, false
	}
	return r.entities[id], true
}

// All returns every entity in ID order.
func (r *Registry) All() []Entity {
	return slices.Clone(r.entities)
}

// LookupExact finds the entity owning the alias equal to the normalised name.
// When two entities share an alias the one registered first wins.
func (r *Registry) LookupExact(name string) (ID, bool) {
	name = r.Normalize(name)
	if name == "" {
		return NotFound, false
	}
	pos, found := slices.BinarySearchFunc(r.index, name, func(e aliasEntry, target string) int {
		return cmp.Compare(e.alias, target)
	})
	if !found {
		return NotFound, false
	}
	return r.index[pos].id, true
}

// LookupFuzzy scores query against every alias and returns the best one.
// Ties go to the alias that sorts first. It reports false only when the
// registry is empty.
func (r *Registry) LookupFuzzy(query string, scorer fuzzy.Scorer) (Match, bool) {
	m, ok := r.aliases.ExtractOne(query, scorer)
	if !ok {
		return Match{Name: "", ID: NotFound}, false
	}
	entry := r.index[m.Index]
	return Match{Name: entry.alias, ID: entry.id, Score: m.Score}, true
}

// Resolve tries an exact lookup and falls back to a fuzzy lookup whose score
// must be at least threshold.
func (r *Registry) Resolve(query string, scorer fuzzy.Scorer, threshold int) (ID, bool) {
	if strings.TrimSpace(query) == "" {
		return NotFound, false
	}
	if id, ok := r.LookupExact(query); ok {
		return id, true
	}
	m, ok := r.LookupFuzzy(r.Normalize(query), scorer)
	if !ok || m.Score < threshold {
		return NotFound, false
	}
	return m.ID, true
}
