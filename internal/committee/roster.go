package committee

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Iron-Ham/pcsplit/internal/registry"
)

type nameEntry struct {
	name string
	id   MemberID
}

// Roster owns every Member and hands out their identifiers. Reviewers come
// from the committee roster; authors who are not reviewers are registered
// separately so they never show up in committee listings.
type Roster struct {
	all       []*Member
	reviewers []*Member
	byEmail   map[string]MemberID
	names     []nameEntry // reviewers only, sorted by name
}

// NewRoster returns an empty roster.
func NewRoster() *Roster {
	return &Roster{byEmail: make(map[string]MemberID)}
}

// Add registers a reviewer and assigns its ID.
func (r *Roster) Add(m *Member) MemberID {
	m.Kind = Reviewer
	m.ID = MemberID(len(r.all))
	r.all = append(r.all, m)
	r.reviewers = append(r.reviewers, m)

	if key := emailKey(m.Email); key != "" {
		if _, exists := r.byEmail[key]; !exists {
			r.byEmail[key] = m.ID
		}
	}

	// Insert after any equal names so the first registration wins lookups.
	pos, _ := slices.BinarySearchFunc(r.names, m.Name, func(e nameEntry, target string) int {
		if c := cmp.Compare(e.name, target); c != 0 {
			return c
		}
		return -1
	})
	r.names = slices.Insert(r.names, pos, nameEntry{name: m.Name, id: m.ID})
	return m.ID
}

// AddAuthor registers a person who appears only as a paper author.
func (r *Roster) AddAuthor(m *Member) MemberID {
	m.Kind = AuthorOnly
	m.ID = MemberID(len(r.all))
	r.all = append(r.all, m)
	return m.ID
}

// Len returns the number of reviewers.
func (r *Roster) Len() int {
	return len(r.reviewers)
}

// Members returns the reviewers in registration order.
func (r *Roster) Members() []*Member {
	return slices.Clone(r.reviewers)
}

// Member returns any registered person by ID.
func (r *Roster) Member(id MemberID) (*Member, bool) {
	if id < 0 || int(id) >= len(r.all) {
		return nil, false
	}
	return r.all[id], true
}

// ByEmail finds a reviewer by email, ignoring case.
func (r *Roster) ByEmail(email string) (*Member, bool) {
	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return nil, false
	}
	return r.all[id], true
}

// ByName finds a reviewer by the upper-case "FIRST LAST" name.
func (r *Roster) ByName(name string) (*Member, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	pos, found := slices.BinarySearchFunc(r.names, name, func(e nameEntry, target string) int {
		return cmp.Compare(e.name, target)
	})
	if !found {
		return nil, false
	}
	return r.all[r.names[pos].id], true
}

// WithAffiliation returns the reviewers affiliated with the institution.
func (r *Roster) WithAffiliation(id registry.ID) []*Member {
	var out []*Member
	for _, m := range r.reviewers {
		if m.Affiliations.Contains(id) {
			out = append(out, m)
		}
	}
	return out
}

// Primary returns the reviewers on the main committee, excluding the
// secondary committee.
func (r *Roster) Primary() []*Member {
	var out []*Member
	for _, m := range r.reviewers {
		if !m.IsSecondary {
			out = append(out, m)
		}
	}
	return out
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
