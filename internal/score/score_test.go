package score

import (
	"testing"

	"github.com/Iron-Ham/pcsplit/internal/committee"
	"github.com/stretchr/testify/assert"
)

func member(id int, topics ...string) *committee.Member {
	return &committee.Member{ID: committee.MemberID(id), Topics: topics}
}

func TestTopicHistogram(t *testing.T) {
	h := TopicHistogram([]*committee.Member{
		member(0, "ML", "Systems"),
		member(1, "ML"),
		member(2),
	})
	assert.Equal(t, Histogram{"ML": 2, "Systems": 1}, h)
	assert.Equal(t, []string{"ML", "Systems"}, h.Topics())
	assert.Empty(t, TopicHistogram(nil))
}

func TestCombinedImbalance(t *testing.T) {
	a := []*committee.Member{member(0, "ML"), member(1, "ML"), member(2, "DB")}
	b := []*committee.Member{member(3, "ML"), member(4, "Storage")}

	// ML: |2-1| + DB: |1-0|; Storage only appears in b.
	assert.Equal(t, 2, CombinedImbalance(a, b))
	// ML: |1-2| + Storage: |1-0|.
	assert.Equal(t, 2, CombinedImbalance(b, a))

	c := []*committee.Member{member(5, "ML"), member(6, "Storage"), member(7, "Storage")}
	assert.Equal(t, 1, CombinedImbalance(b, c))
	assert.Equal(t, 1, CombinedImbalance(c, b))
	assert.Equal(t, 0, CombinedImbalance(nil, c), "empty first group scores zero")
}

func TestConflictScore(t *testing.T) {
	p1 := committee.NewPaper(1, "a")
	p1.Conflicts.Add(0, 2)
	p2 := committee.NewPaper(2, "b")
	p2.Conflicts.Add(2)

	group := []*committee.Member{member(0), member(1), member(2)}
	assert.Equal(t, 3, ConflictScore([]*committee.Paper{p1, p2}, group))
	assert.Equal(t, 0, ConflictScore([]*committee.Paper{p1, p2}, []*committee.Member{member(1)}))
	assert.Equal(t, 0, ConflictScore(nil, group))
}

func TestInterdayDiff(t *testing.T) {
	fri := []*committee.Member{member(0, "A", "B"), member(1, "A"), member(2, "C")}
	sat := []*committee.Member{member(3, "B"), member(4, "B"), member(5, "D")}

	assert.Equal(t, []TopicDiff{
		{Topic: "A", Diff: 2},
		{Topic: "C", Diff: 1},
		{Topic: "B", Diff: -1},
	}, InterdayDiff(fri, sat))
}

func TestCoverage(t *testing.T) {
	all := []*committee.Member{member(0, "A"), member(1, "A"), member(2, "A"), member(3, "B")}
	group := []*committee.Member{all[0], all[3]}

	assert.Equal(t, []TopicCoverage{
		{Topic: "A", Count: 1, Percent: 33},
		{Topic: "B", Count: 1, Percent: 100},
	}, Coverage(group, all))
}
