package resolve

import (
	"fmt"

	"github.com/Iron-Ham/pcsplit/internal/committee"
	"github.com/Iron-Ham/pcsplit/internal/errors"
	"github.com/Iron-Ham/pcsplit/internal/logging"
)

// Step names one way of inferring conflicts.
type Step string

const (
	// StepManual applies conflicts confirmed in a collaborator review file.
	StepManual Step = "manual"
	// StepAffiliation flags reviewers sharing an institution with an author.
	StepAffiliation Step = "affiliation"
	// StepInstitution flags reviewers at institutions listed as collaborators.
	StepInstitution Step = "institution"
)

// AllSteps returns every step in the order they are applied.
func AllSteps() []Step {
	return []Step{StepManual, StepAffiliation, StepInstitution}
}

// ParseStep converts a step name.
func ParseStep(s string) (Step, error) {
	for _, step := range AllSteps() {
		if string(step) == s {
			return step, nil
		}
	}
	return "", errors.NewValidationError(fmt.Sprintf("unknown detection step %q", s)).WithField("step").WithValue(s)
}

// Findings records, per paper ID, the undeclared conflicts each step found.
type Findings map[int]map[Step]committee.MemberSet

// Step returns the conflicts a step contributed across all papers.
func (f Findings) Step(step Step) map[int]committee.MemberSet {
	out := make(map[int]committee.MemberSet)
	for pid, steps := range f {
		if s, ok := steps[step]; ok && len(s) > 0 {
			out[pid] = s
		}
	}
	return out
}

// Count returns the number of (paper, member) pairs a step contributed.
func (f Findings) Count(step Step) int {
	n := 0
	for _, steps := range f {
		n += len(steps[step])
	}
	return n
}

// Detector runs conflict inference steps over papers.
type Detector struct {
	resolver *Resolver
	roster   *committee.Roster
	manual   map[int]committee.MemberSet
	logger   *logging.Logger
}

// NewDetector returns a Detector. Papers and reviewers must already be
// processed by resolver.
func NewDetector(resolver *Resolver, roster *committee.Roster) *Detector {
	return &Detector{
		resolver: resolver,
		roster:   roster,
		manual:   make(map[int]committee.MemberSet),
		logger:   resolver.logger.WithStep("conflicts"),
	}
}

// SetManual supplies the conflicts used by StepManual, keyed by paper ID.
func (d *Detector) SetManual(conflicts map[int]committee.MemberSet) {
	d.manual = conflicts
}

// Detect returns every conflict a single step finds for p, declared or not.
func (d *Detector) Detect(p *committee.Paper, step Step) committee.MemberSet {
	switch step {
	case StepManual:
		if s, ok := d.manual[p.ID]; ok {
			return s.Clone()
		}
		return committee.NewMemberSet()
	case StepAffiliation:
		return FindSharedAffiliationConflicts(p, d.roster)
	case StepInstitution:
		out := committee.NewMemberSet()
		for _, id := range d.resolver.FindInstitutionalConflicts(p) {
			for _, m := range d.roster.WithAffiliation(id) {
				out.Add(m.ID)
			}
		}
		return out
	default:
		return committee.NewMemberSet()
	}
}

// Run applies steps to every paper, adding what they find to each paper's
// conflicts. The returned findings exclude declared conflicts.
func (d *Detector) Run(papers []*committee.Paper, steps ...Step) Findings {
	findings := make(Findings, len(papers))
	for _, p := range papers {
		perStep := make(map[Step]committee.MemberSet, len(steps))
		for _, step := range steps {
			found := d.Detect(p, step)
			p.Conflicts.Union(found)
			perStep[step] = found.Minus(p.Declared)
		}
		findings[p.ID] = perStep
	}
	for _, step := range steps {
		d.logger.Info("detection step finished", "detection", string(step), "new_conflicts", findings.Count(step))
	}
	return findings
}

// ManualConflicts converts confirmed review entries into conflicts keyed by
// paper ID. Every member name and paper ID must exist.
func ManualConflicts(entries []ReviewEntry, roster *committee.Roster, papers map[int]*committee.Paper) (map[int]committee.MemberSet, error) {
	out := make(map[int]committee.MemberSet)
	for _, e := range entries {
		m, ok := roster.ByName(e.MemberName)
		if !ok {
			return nil, errors.NewCrossReferenceError("reviewed member not on roster", errors.ErrMemberNotFound).
				WithRecord(fmt.Sprintf("paper %d", e.PaperID)).
				WithField("member").
				WithKey(e.MemberName)
		}
		if _, ok := papers[e.PaperID]; !ok {
			return nil, errors.NewCrossReferenceError("reviewed paper not in submissions", errors.ErrPaperNotFound).
				WithRecord(m.Name).
				WithField("paper").
				WithKey(fmt.Sprint(e.PaperID))
		}
		s, ok := out[e.PaperID]
		if !ok {
			s = committee.NewMemberSet()
			out[e.PaperID] = s
		}
		s.Add(m.ID)
	}
	return out, nil
}
