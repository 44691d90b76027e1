package resolve

import (
	"testing"

	"github.com/Iron-Ham/pcsplit/internal/committee"
	"github.com/Iron-Ham/pcsplit/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type detectFixture struct {
	resolver *Resolver
	roster   *committee.Roster
	alice    *committee.Member
	carol    *committee.Member
	dave     *committee.Member
	erin     *committee.Member
	paper    *committee.Paper
}

func newDetectFixture(t *testing.T) detectFixture {
	t.Helper()
	r := newTestResolver(t)
	roster := committee.NewRoster()
	f := detectFixture{
		resolver: r,
		roster:   roster,
		alice:    committee.NewMember("Alice", "A", "alice@x", "MIT", "", "pc"),
		carol:    committee.NewMember("Carol", "C", "carol@x", "Harvard", "", "pc"),
		dave:     committee.NewMember("Dave", "D", "dave@x", "Stanford", "", "pc"),
		erin:     committee.NewMember("Erin", "E", "erin@x", "", "", "pc"),
	}
	for _, m := range []*committee.Member{f.alice, f.carol, f.dave, f.erin} {
		roster.Add(m)
		r.ProcessMember(m)
	}

	p := committee.NewPaper(1, "Paper one")
	p.Collaborators = committee.UnresolvedConflicts("Stanford University\nNONE")
	p.DeclaredEmails = []string{"erin@x"}
	p.RawAuthors = []committee.AuthorRecord{{First: "Bob", Last: "B", Email: "bob@y", Affiliation: "Harvard"}}
	require.NoError(t, r.ProcessPaper(p, roster))
	f.paper = p
	return f
}

func TestDetector_Run(t *testing.T) {
	f := newDetectFixture(t)
	d := NewDetector(f.resolver, f.roster)
	d.SetManual(map[int]committee.MemberSet{1: committee.NewMemberSet(f.alice.ID)})

	findings := d.Run([]*committee.Paper{f.paper}, AllSteps()...)

	assert.Equal(t, []committee.MemberID{f.alice.ID}, findings[1][StepManual].Sorted())
	assert.Equal(t, []committee.MemberID{f.carol.ID}, findings[1][StepAffiliation].Sorted())
	assert.Equal(t, []committee.MemberID{f.dave.ID}, findings[1][StepInstitution].Sorted())

	assert.Equal(t,
		[]committee.MemberID{f.alice.ID, f.carol.ID, f.dave.ID, f.erin.ID},
		f.paper.Conflicts.Sorted())
	assert.Equal(t,
		[]committee.MemberID{f.alice.ID, f.carol.ID, f.dave.ID},
		f.paper.NewConflicts().Sorted())

	assert.Equal(t, 1, findings.Count(StepInstitution))
	assert.Len(t, findings.Step(StepAffiliation), 1)
}

func TestDetector_SingleStepExcludesDeclared(t *testing.T) {
	f := newDetectFixture(t)
	d := NewDetector(f.resolver, f.roster)

	// Declaring Carol means the affiliation step finds nothing new.
	f.paper.SetDeclared(committee.NewMemberSet(f.carol.ID))
	findings := d.Run([]*committee.Paper{f.paper}, StepAffiliation)

	assert.Empty(t, findings[1][StepAffiliation])
	assert.Empty(t, findings.Step(StepAffiliation))
	assert.NotContains(t, findings[1], StepInstitution)
}

func TestParseStep(t *testing.T) {
	step, err := ParseStep("institution")
	require.NoError(t, err)
	assert.Equal(t, StepInstitution, step)

	_, err = ParseStep("magic")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestManualConflicts(t *testing.T) {
	f := newDetectFixture(t)
	papers := map[int]*committee.Paper{1: f.paper}

	got, err := ManualConflicts([]ReviewEntry{
		{MemberName: "ALICE A", PaperID: 1},
		{MemberName: "dave d", PaperID: 1},
	}, f.roster, papers)
	require.NoError(t, err)
	assert.Equal(t, []committee.MemberID{f.alice.ID, f.dave.ID}, got[1].Sorted())

	_, err = ManualConflicts([]ReviewEntry{{MemberName: "NOBODY", PaperID: 1}}, f.roster, papers)
	assert.ErrorIs(t, err, errors.ErrMemberNotFound)

	_, err = ManualConflicts([]ReviewEntry{{MemberName: "ALICE A", PaperID: 99}}, f.roster, papers)
	assert.ErrorIs(t, err, errors.ErrPaperNotFound)
}

func TestMatchCollaborators(t *testing.T) {
	roster := committee.NewRoster()
	jane := committee.NewMember("Jane", "Doe", "jane@x", "", "", "pc")
	roster.Add(jane)

	paper := func(id int, collaborators ...string) *committee.Paper {
		p := committee.NewPaper(id, "t")
		p.Collaborators = committee.ResolvedConflicts(collaborators...)
		return p
	}
	papers := []*committee.Paper{
		paper(1, "JANE DOE"),
		paper(2, "JANE DOLAN"),
		paper(3, "BOB"),
		paper(4),
	}

	reviews := MatchCollaborators(roster, papers, DefaultReviewThreshold, DefaultVerifyThreshold)
	require.Len(t, reviews, 1)
	assert.Same(t, jane, reviews[0].Member)
	assert.Equal(t, []CollaboratorHit{
		{PaperID: 1, Score: 100, Collaborator: "JANE DOE"},
		{PaperID: 2, Score: 78, Collaborator: "JANE DOLAN", Verify: true},
	}, reviews[0].Hits)
}

func TestFindCollaborator_EmptyName(t *testing.T) {
	p := committee.NewPaper(1, "t")
	p.Collaborators = committee.ResolvedConflicts("JANE DOE")
	_, ok := FindCollaborator(p, "")
	assert.False(t, ok)
}
