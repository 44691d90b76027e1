package committee

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// MemberSet is a set of member identifiers.
type MemberSet map[MemberID]struct{}

// NewMemberSet returns a set holding ids.
func NewMemberSet(ids ...MemberID) MemberSet {
	s := make(MemberSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts ids.
func (s MemberSet) Add(ids ...MemberID) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Has reports membership.
func (s MemberSet) Has(id MemberID) bool {
	_, ok := s[id]
	return ok
}

// Union adds every element of other.
func (s MemberSet) Union(other MemberSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Minus returns the elements of s that are not in other.
func (s MemberSet) Minus(other MemberSet) MemberSet {
	out := make(MemberSet)
	for id := range s {
		if !other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Clone returns an independent copy.
func (s MemberSet) Clone() MemberSet {
	return maps.Clone(s)
}

// Sorted returns the identifiers in ascending order.
func (s MemberSet) Sorted() []MemberID {
	return slices.Sorted(maps.Keys(s))
}

// AuthorRecord is an author entry as it appears in the submission export.
type AuthorRecord struct {
	First       string `json:"first"`
	Last        string `json:"last"`
	Email       string `json:"email"`
	Affiliation string `json:"affiliation"`
}

// Paper is a submission together with its conflict state.
type Paper struct {
	ID       int
	Title    string
	Abstract string
	Topics   []string

	// RawAuthors is the author list from the export; Authors is filled in
	// once the authors are linked against the roster.
	RawAuthors []AuthorRecord
	Authors    []*Member

	// Collaborators holds the declared non-author conflicts, cleaned and
	// split into names once resolved.
	Collaborators ConflictList

	// DeclaredEmails are the committee conflicts declared at submission.
	DeclaredEmails []string

	// Declared is the linked form of DeclaredEmails. It is kept unchanged
	// so that inferred conflicts can be reported separately.
	Declared MemberSet

	// Conflicts is Declared plus every inferred conflict.
	Conflicts MemberSet

	authorsLinked  bool
	declaredLinked bool
}

// NewPaper returns a paper with empty conflict sets.
func NewPaper(id int, title string) *Paper {
	return &Paper{
		ID:        id,
		Title:     title,
		Declared:  make(MemberSet),
		Conflicts: make(MemberSet),
	}
}

// AuthorsLinked reports whether Authors has been populated.
func (p *Paper) AuthorsLinked() bool { return p.authorsLinked }

// SetAuthors records the linked author list. It may only be called once.
func (p *Paper) SetAuthors(authors []*Member) {
	p.Authors = authors
	p.authorsLinked = true
}

// DeclaredLinked reports whether DeclaredEmails has been converted.
func (p *Paper) DeclaredLinked() bool { return p.declaredLinked }

// SetDeclared records the linked declared conflicts and seeds Conflicts
// with them.
func (p *Paper) SetDeclared(ids MemberSet) {
	p.Declared = ids.Clone()
	if p.Conflicts == nil {
		p.Conflicts = make(MemberSet)
	}
	p.Conflicts.Union(ids)
	p.declaredLinked = true
}

// NewConflicts returns the conflicts that were not declared.
func (p *Paper) NewConflicts() MemberSet {
	return p.Conflicts.Minus(p.Declared)
}

// ResetConflicts drops every inferred conflict, keeping the declared ones.
func (p *Paper) ResetConflicts() {
	p.Conflicts = p.Declared.Clone()
}

// HasAuthor reports whether the member wrote the paper.
func (p *Paper) HasAuthor(id MemberID) bool {
	return slices.ContainsFunc(p.Authors, func(m *Member) bool { return m.ID == id })
}

// String renders the paper as "pid: title".
func (p *Paper) String() string {
	return fmt.Sprintf("%d: %s", p.ID, p.Title)
}

// SortPapers orders papers by ID.
func SortPapers(papers []*Paper) {
	slices.SortFunc(papers, func(a, b *Paper) int { return cmp.Compare(a.ID, b.ID) })
}
