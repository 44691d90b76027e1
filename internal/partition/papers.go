package partition

import (
	"math/rand/v2"

	"github.com/Iron-Ham/pcsplit/internal/committee"
	"github.com/Iron-Ham/pcsplit/internal/score"
)

// PaperResult is the outcome of a paper search.
type PaperResult = Result[*committee.Paper]

// Papers splits papers between the two days given the committee split. A
// paper written by a primary committee member goes to the day that member
// does not attend; the first such author found decides. Other papers are
// placed by a fair coin. Candidates are scored by the conflicted reviewers
// present on each paper's day, and the best of the trial budget (default
// 100) wins.
func (p *Partitioner) Papers(papers []*committee.Paper, friday, saturday []*committee.Member) PaperResult {
	onFriday := memberIDs(friday)
	onSaturday := memberIDs(saturday)
	logger := p.logger.WithStep("partition-papers")

	return runTrials(p.seed, p.trialsOr(DefaultPaperTrials), p.workers, logger, p.onTrial, func(rng *rand.Rand) candidate[*committee.Paper] {
		var fri, sat []*committee.Paper
		for _, paper := range papers {
			day, ok := authorDay(paper, onFriday, onSaturday)
			if !ok {
				day = Saturday
				if flip(rng, 0.5) {
					day = Friday
				}
			}
			if day == Friday {
				fri = append(fri, paper)
			} else {
				sat = append(sat, paper)
			}
		}
		return candidate[*committee.Paper]{
			friday:   fri,
			saturday: sat,
			score:    PaperScore(fri, sat, friday, saturday),
		}
	})
}

// PaperScore is the conflict score of a paper split against a committee
// split, summed over both days.
func PaperScore(friPapers, satPapers []*committee.Paper, friday, saturday []*committee.Member) int {
	return score.ConflictScore(friPapers, friday) + score.ConflictScore(satPapers, saturday)
}

// authorDay returns the day a paper is forced onto by its committee
// authors.
func authorDay(paper *committee.Paper, onFriday, onSaturday committee.MemberSet) (Day, bool) {
	for _, a := range paper.Authors {
		if !a.IsPrimaryReviewer() {
			continue
		}
		if onFriday.Has(a.ID) {
			return Saturday, true
		}
		if onSaturday.Has(a.ID) {
			return Friday, true
		}
	}
	return Friday, false
}

func memberIDs(members []*committee.Member) committee.MemberSet {
	s := committee.NewMemberSet()
	for _, m := range members {
		s.Add(m.ID)
	}
	return s
}
