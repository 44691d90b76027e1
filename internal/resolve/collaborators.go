package resolve

import (
	"github.com/Iron-Ham/pcsplit/internal/committee"
	"github.com/Iron-Ham/pcsplit/internal/fuzzy"
)

// Default cut-offs for the collaborator review.
const (
	DefaultReviewThreshold = 80
	DefaultVerifyThreshold = 70
)

// CollaboratorHit is a paper whose collaborators list seems to name a
// reviewer.
type CollaboratorHit struct {
	PaperID      int
	Score        int
	Collaborator string
	// Verify marks scores below the review threshold that still deserve a look.
	Verify bool
}

// MemberReview groups the hits for one reviewer.
type MemberReview struct {
	Member *committee.Member
	Hits   []CollaboratorHit
}

// ReviewEntry is one confirmed reviewer/paper pair read back from an edited
// review file.
type ReviewEntry struct {
	MemberName string
	PaperID    int
}

// FindCollaborator returns the paper collaborator closest to name under the
// ratio scorer. It reports false when name is empty or the paper lists no
// collaborators.
func FindCollaborator(p *committee.Paper, name string) (fuzzy.Match, bool) {
	if name == "" {
		return fuzzy.Match{}, false
	}
	return fuzzy.ExtractOne(name, p.Collaborators.Names(), fuzzy.Ratio)
}

// MatchCollaborators looks for every reviewer among every paper's declared
// collaborators. Scores at or above review are reported; scores above
// verify but below review are reported with Verify set. Every reviewer gets
// an entry, in roster order, and papers are visited in the order given.
func MatchCollaborators(roster *committee.Roster, papers []*committee.Paper, review, verify int) []MemberReview {
	members := roster.Members()
	out := make([]MemberReview, 0, len(members))
	for _, m := range members {
		mr := MemberReview{Member: m}
		for _, p := range papers {
			match, ok := FindCollaborator(p, m.Name)
			if !ok {
				continue
			}
			switch {
			case match.Score >= review:
				mr.Hits = append(mr.Hits, CollaboratorHit{PaperID: p.ID, Score: match.Score, Collaborator: match.Choice})
			case match.Score > verify:
				mr.Hits = append(mr.Hits, CollaboratorHit{PaperID: p.ID, Score: match.Score, Collaborator: match.Choice, Verify: true})
			}
		}
		out = append(out, mr)
	}
	return out
}
