// Package committee defines the records the conflict and partitioning
// stages work on: program committee members, paper authors and papers.
package committee

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/pcsplit/internal/registry"
)

// MemberID identifies a Member within one Roster.
type MemberID int

// Kind distinguishes roster reviewers from people who only appear as authors.
type Kind int

const (
	// Reviewer is a person listed on the committee roster.
	Reviewer Kind = iota
	// AuthorOnly is a paper author with no roster entry.
	AuthorOnly
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Reviewer:
		return "reviewer"
	case AuthorOnly:
		return "author"
	default:
		return "unknown"
	}
}

// Roster tags that carry meaning beyond scheduling.
const (
	TagPC          = "pc"
	TagSecondaryPC = "epc"
)

// Affiliations is either the raw affiliation text from the input or the
// institutions it resolved to. The zero value is unresolved and empty.
type Affiliations struct {
	raw      string
	ids      []registry.ID
	resolved bool
}

// UnresolvedAffiliations wraps raw affiliation text.
func UnresolvedAffiliations(raw string) Affiliations {
	return Affiliations{raw: raw}
}

// ResolvedAffiliations wraps institutions that are already known.
func ResolvedAffiliations(ids ...registry.ID) Affiliations {
	return Affiliations{ids: slices.Clone(ids), resolved: true}
}

// Resolved reports whether the raw text has been converted.
func (a Affiliations) Resolved() bool { return a.resolved }

// Raw returns the original text. It is empty once resolved.
func (a Affiliations) Raw() string { return a.raw }

// IDs returns the resolved institutions in resolution order.
func (a Affiliations) IDs() []registry.ID { return slices.Clone(a.ids) }

// Contains reports whether id is among the resolved institutions.
func (a Affiliations) Contains(id registry.ID) bool {
	return slices.Contains(a.ids, id)
}

// With returns a resolved copy with id appended when not already present.
func (a Affiliations) With(id registry.ID) Affiliations {
	out := Affiliations{ids: slices.Clone(a.ids), resolved: true}
	if !slices.Contains(out.ids, id) {
		out.ids = append(out.ids, id)
	}
	return out
}

// ConflictList is either the raw conflicts block or the free-text conflict
// names left after institutions were pulled out of it.
type ConflictList struct {
	raw      string
	names    []string
	resolved bool
}

// UnresolvedConflicts wraps a raw conflicts block.
func UnresolvedConflicts(raw string) ConflictList {
	return ConflictList{raw: raw}
}

// ResolvedConflicts wraps already split conflict names.
func ResolvedConflicts(names ...string) ConflictList {
	return ConflictList{names: slices.Clone(names), resolved: true}
}

// Resolved reports whether the block has been split.
func (c ConflictList) Resolved() bool { return c.resolved }

// Raw returns the original block. It is empty once resolved.
func (c ConflictList) Raw() string { return c.raw }

// Names returns the unresolved conflict names.
func (c ConflictList) Names() []string { return slices.Clone(c.names) }

// Append returns a resolved copy with names added after the existing ones.
func (c ConflictList) Append(names ...string) ConflictList {
	out := ConflictList{names: slices.Clone(c.names), resolved: true}
	out.names = append(out.names, names...)
	return out
}

// Member is a committee reviewer or a paper author.
type Member struct {
	ID           MemberID
	Kind         Kind
	Name         string // "FIRST LAST", upper case
	Email        string
	Affiliations Affiliations
	Conflicts    ConflictList
	Tags         []string
	Topics       []string
	IsPC         bool
	IsSecondary  bool
}

// NewMember builds a Member from roster or author fields. The name is
// joined and upper-cased; tags are split on whitespace.
func NewMember(first, last, email, affiliation, conflicts, tags string) *Member {
	tagList := strings.Fields(tags)
	return &Member{
		Name:         FormatName(first, last),
		Email:        strings.TrimSpace(email),
		Affiliations: UnresolvedAffiliations(affiliation),
		Conflicts:    UnresolvedConflicts(conflicts),
		Tags:         tagList,
		IsPC:         slices.Contains(tagList, TagPC),
		IsSecondary:  slices.Contains(tagList, TagSecondaryPC),
	}
}

// FormatName joins first and last names the way rosters and listings
// refer to members.
func FormatName(first, last string) string {
	return strings.ToUpper(strings.TrimSpace(fmt.Sprintf("%s %s", strings.TrimSpace(first), strings.TrimSpace(last))))
}

// HasTag reports whether the member carries tag.
func (m *Member) HasTag(tag string) bool {
	return slices.Contains(m.Tags, tag)
}

// HasTopic reports whether topic is among the member's expertise.
func (m *Member) HasTopic(topic string) bool {
	return slices.Contains(m.Topics, topic)
}

// IsPrimaryReviewer reports whether the member sits on the main committee.
func (m *Member) IsPrimaryReviewer() bool {
	return m.Kind == Reviewer && m.IsPC && !m.IsSecondary
}

// String renders the member for logs and error messages.
func (m *Member) String() string {
	return fmt.Sprintf("%s <%s>", m.Name, m.Email)
}
