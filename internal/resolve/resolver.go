// Package resolve turns the free text in rosters and submissions into
// institutions and committee members, and infers the conflicts of interest
// that authors did not declare.
package resolve

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/patrickmn/go-cache"

	"github.com/Iron-Ham/pcsplit/internal/committee"
	"github.com/Iron-Ham/pcsplit/internal/errors"
	"github.com/Iron-Ham/pcsplit/internal/fuzzy"
	"github.com/Iron-Ham/pcsplit/internal/logging"
	"github.com/Iron-Ham/pcsplit/internal/registry"
)

// DefaultThreshold is the minimum score for accepting a fuzzy match.
const DefaultThreshold = 90

var (
	affiliationSep = regexp.MustCompile(`;| AND |/`)
	// Qualifiers dropped from each line of a member's conflicts block.
	memberQualifiers = regexp.MustCompile(`\(.+\)|;.+|,.+|:.+`)
	// Qualifiers dropped from each line of a paper's collaborators block.
	paperQualifiers = regexp.MustCompile(`\(.+\)|;.+|,.+`)
)

// Resolver resolves names against an institution registry.
type Resolver struct {
	reg                   *registry.Registry
	institutionThreshold  int
	collaboratorThreshold int
	logger                *logging.Logger

	// memo holds earlier answers; affiliations and collaborator names
	// repeat heavily across a roster.
	memo *cache.Cache
}

type memoEntry struct {
	id registry.ID
	ok bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithInstitutionThreshold sets the minimum token-set score for affiliation
// fragments.
func WithInstitutionThreshold(t int) Option {
	return func(r *Resolver) { r.institutionThreshold = t }
}

// WithCollaboratorThreshold sets the minimum ratio score for collaborator
// lines.
func WithCollaboratorThreshold(t int) Option {
	return func(r *Resolver) { r.collaboratorThreshold = t }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *logging.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a Resolver backed by reg.
func New(reg *registry.Registry, opts ...Option) *Resolver {
	r := &Resolver{
		reg:                   reg,
		institutionThreshold:  DefaultThreshold,
		collaboratorThreshold: DefaultThreshold,
		logger:                logging.NopLogger(),
		memo:                  cache.New(cache.NoExpiration, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the institution registry.
func (r *Resolver) Registry() *registry.Registry {
	return r.reg
}

// resolve wraps Registry.Resolve with the memo.
func (r *Resolver) resolve(query, scorerName string, threshold int) (registry.ID, bool) {
	key := fmt.Sprintf("%s|%d|%s", scorerName, threshold, query)
	if v, found := r.memo.Get(key); found {
		e := v.(memoEntry)
		return e.id, e.ok
	}
	scorer, _ := fuzzy.ScorerByName(scorerName)
	id, ok := r.reg.Resolve(query, scorer, threshold)
	r.memo.Set(key, memoEntry{id: id, ok: ok}, cache.NoExpiration)
	return id, ok
}

// ResolveAffiliation splits free affiliation text on ";", "/" and " AND "
// and resolves each fragment with the token-set scorer. Fragments that do
// not resolve are dropped. Each institution appears once, in the order it
// was first found.
func (r *Resolver) ResolveAffiliation(text string) []registry.ID {
	var ids []registry.ID
	for _, part := range affiliationSep.Split(strings.ToUpper(text), -1) {
		part = r.reg.Normalize(part)
		id, ok := r.resolve(part, fuzzy.ScorerTokenSet, r.institutionThreshold)
		if !ok {
			if part != "" {
				r.logger.Debug("affiliation not resolved", "fragment", part)
			}
			continue
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// ResolveCollaboratorList splits a member's conflicts block into lines,
// drops parenthesised text and anything after ";", "," or ":", and resolves
// each remaining line with the ratio scorer. Lines naming an institution
// come back as ids; the rest are returned as free-text names.
func (r *Resolver) ResolveCollaboratorList(block string) ([]registry.ID, []string) {
	var ids []registry.ID
	var names []string
	for _, line := range r.cleanLines(block, memberQualifiers) {
		if id, ok := r.resolve(line, fuzzy.ScorerRatio, r.collaboratorThreshold); ok {
			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
			continue
		}
		names = append(names, line)
	}
	return ids, names
}

// CleanCollaborators splits a paper's collaborators block into upper-case
// names without parenthesised text or anything after ";" or ",".
func (r *Resolver) CleanCollaborators(block string) []string {
	return r.cleanLines(block, paperQualifiers)
}

func (r *Resolver) cleanLines(block string, qualifiers *regexp.Regexp) []string {
	var out []string
	for _, line := range strings.Split(strings.ToUpper(block), "\n") {
		line = r.reg.Normalize(qualifiers.ReplaceAllString(line, ""))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ProcessMember resolves a member's affiliations and then its conflicts
// block. Institutions named in the conflicts block join the affiliations.
// Fields that are already resolved are left alone.
func (r *Resolver) ProcessMember(m *committee.Member) {
	if !m.Affiliations.Resolved() {
		m.Affiliations = committee.ResolvedAffiliations(r.ResolveAffiliation(m.Affiliations.Raw())...)
	}
	if !m.Conflicts.Resolved() {
		ids, names := r.ResolveCollaboratorList(m.Conflicts.Raw())
		for _, id := range ids {
			m.Affiliations = m.Affiliations.With(id)
		}
		m.Conflicts = committee.ResolvedConflicts(names...)
	}
}

// ProcessPaper cleans the paper's collaborators, links its declared
// conflicts and links its authors. Reviewers must have been processed
// first so that their conflicts can be carried onto the paper.
func (r *Resolver) ProcessPaper(p *committee.Paper, roster *committee.Roster) error {
	if !p.Collaborators.Resolved() {
		p.Collaborators = committee.ResolvedConflicts(r.CleanCollaborators(p.Collaborators.Raw())...)
	}
	if err := r.LinkDeclaredConflicts(p, roster); err != nil {
		return err
	}
	r.LinkAuthors(p, roster)
	return nil
}

// LinkDeclaredConflicts converts the declared conflict emails into members.
// An email missing from the roster is fatal.
func (r *Resolver) LinkDeclaredConflicts(p *committee.Paper, roster *committee.Roster) error {
	if p.DeclaredLinked() {
		return nil
	}
	ids := committee.NewMemberSet()
	for _, email := range p.DeclaredEmails {
		m, ok := roster.ByEmail(email)
		if !ok {
			return errors.NewCrossReferenceError("declared conflict not on roster", errors.ErrMemberNotFound).
				WithRecord(p.String()).
				WithField("pc_conflicts").
				WithKey(email)
		}
		ids.Add(m.ID)
	}
	p.SetDeclared(ids)
	return nil
}

// LinkAuthors replaces the paper's raw author records with members. Authors
// on the roster are matched by email and their unresolved conflict names
// join the paper's collaborators. Everyone else is registered as an author
// with resolved affiliations.
func (r *Resolver) LinkAuthors(p *committee.Paper, roster *committee.Roster) {
	if p.AuthorsLinked() {
		return
	}
	authors := make([]*committee.Member, 0, len(p.RawAuthors))
	for _, a := range p.RawAuthors {
		if a.Email != "" {
			if m, ok := roster.ByEmail(a.Email); ok {
				authors = append(authors, m)
				p.Collaborators = p.Collaborators.Append(m.Conflicts.Names()...)
				continue
			}
		}
		m := committee.NewMember(a.First, a.Last, a.Email, a.Affiliation, "", "")
		roster.AddAuthor(m)
		r.ProcessMember(m)
		authors = append(authors, m)
	}
	p.SetAuthors(authors)
}

// FindInstitutionalConflicts resolves the paper's collaborator names with
// the ratio scorer and returns the institutions among them. The literal
// "NONE" is skipped.
func (r *Resolver) FindInstitutionalConflicts(p *committee.Paper) []registry.ID {
	var ids []registry.ID
	for _, c := range p.Collaborators.Names() {
		if c == "NONE" {
			continue
		}
		id, ok := r.resolve(c, fuzzy.ScorerRatio, r.collaboratorThreshold)
		if ok && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// FindSharedAffiliationConflicts returns the reviewers who share an
// institution with any of the paper's authors.
func FindSharedAffiliationConflicts(p *committee.Paper, roster *committee.Roster) committee.MemberSet {
	out := committee.NewMemberSet()
	for _, a := range p.Authors {
		for _, id := range a.Affiliations.IDs() {
			for _, m := range roster.WithAffiliation(id) {
				out.Add(m.ID)
			}
		}
	}
	return out
}
