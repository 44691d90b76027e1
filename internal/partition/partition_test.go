package partition

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"testing"

	"github.com/Iron-Ham/pcsplit/internal/committee"
	"github.com/Iron-Ham/pcsplit/internal/errors"
	"github.com/Iron-Ham/pcsplit/internal/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rosterBuilder struct {
	roster *committee.Roster
}

func newRosterBuilder() *rosterBuilder {
	return &rosterBuilder{roster: committee.NewRoster()}
}

func (b *rosterBuilder) add(name, tags string, topics ...string) *committee.Member {
	m := committee.NewMember(name, "X", name+"@example.org", "", "", "pc "+tags)
	m.Topics = topics
	b.roster.Add(m)
	return m
}

func ids(members []*committee.Member) []committee.MemberID {
	out := make([]committee.MemberID, len(members))
	for i, m := range members {
		out[i] = m.ID
	}
	return out
}

func paperIDs(papers []*committee.Paper) []int {
	out := make([]int, len(papers))
	for i, p := range papers {
		out[i] = p.ID
	}
	return out
}

// sampleCommittee has fixed members on both days and a mix of flexible
// members spread over a handful of topics.
func sampleCommittee() *rosterBuilder {
	b := newRosterBuilder()
	topics := []string{"ML", "Systems", "Security", "Networks", "Storage"}
	b.add("F1", "PC_Friday", "ML", "Systems")
	b.add("F2", "PC_Friday", "Security")
	b.add("S1", "PC_Saturday", "ML")
	b.add("S2", "PC_Saturday", "Networks", "Storage")
	for i := range 8 {
		b.add(fmt.Sprintf("E%d", i), "PC_Either", topics[i%len(topics)], topics[(i+2)%len(topics)])
	}
	for i := range 4 {
		b.add(fmt.Sprintf("B%d", i), "PC_Both", topics[(i+1)%len(topics)])
	}
	b.add("SEC", "epc PC_Either", "ML")
	b.add("NOTAG", "", "ML")
	return b
}

func TestSplit(t *testing.T) {
	b := sampleCommittee()
	pools := Split(b.roster.Members(), DefaultTags())

	assert.Len(t, pools.Friday, 2)
	assert.Len(t, pools.Saturday, 2)
	assert.Len(t, pools.Either, 8)
	assert.Len(t, pools.Both, 4)
	require.Len(t, pools.Unplaced, 1)
	assert.Equal(t, "NOTAG X", pools.Unplaced[0].Name)
	assert.Equal(t, 12, pools.Flexible())
}

func TestSplit_FirstMatchingTagWins(t *testing.T) {
	b := newRosterBuilder()
	m := b.add("A", "PC_Either PC_Friday")
	pools := Split(b.roster.Members(), DefaultTags())
	assert.Equal(t, []*committee.Member{m}, pools.Friday)
	assert.Empty(t, pools.Either)
}

func TestRandom_ProducesValidPartition(t *testing.T) {
	b := sampleCommittee()
	tags := DefaultTags()
	pools := Split(b.roster.Members(), tags)
	pools.Unplaced = nil

	res := New(WithSeed(7), WithTrials(50)).Random(pools)

	require.NoError(t, VerifyGroup(res.Friday, Friday, tags))
	require.NoError(t, VerifyGroup(res.Saturday, Saturday, tags))

	placed := append(append([]*committee.Member{}, pools.Friday...), pools.Saturday...)
	placed = append(placed, pools.Either...)
	placed = append(placed, pools.Both...)
	require.NoError(t, VerifyComplete(res.Friday, res.Saturday, placed, tags))

	assert.Equal(t, 50, res.Trials)
	assert.Equal(t, uint64(7), res.Seed)
	assert.Equal(t, score.CombinedImbalance(res.Friday, res.Saturday), res.Score)
	assertHistory(t, res.History, res.Score, res.Trial)
}

func assertHistory(t *testing.T, history []int, best, trial int) {
	t.Helper()
	require.NotEmpty(t, history)
	for i := 1; i < len(history); i++ {
		assert.LessOrEqual(t, history[i], history[i-1], "history must not increase at %d", i)
	}
	assert.Equal(t, best, history[len(history)-1])
	assert.Equal(t, best, history[trial])
	if trial > 0 {
		assert.Greater(t, history[trial-1], best, "winner must be the first trial reaching the best score")
	}
}

func TestSmart_ProducesValidPartition(t *testing.T) {
	b := sampleCommittee()
	tags := DefaultTags()
	pools := Split(b.roster.Members(), tags)

	res := New(WithSeed(11), WithTrials(200)).Smart(pools)

	require.NoError(t, VerifyGroup(res.Friday, Friday, tags))
	require.NoError(t, VerifyGroup(res.Saturday, Saturday, tags))

	fri, sat := memberIDs(res.Friday), memberIDs(res.Saturday)
	for _, m := range pools.Either {
		assert.True(t, fri.Has(m.ID) != sat.Has(m.ID), "either member %s must sit on exactly one day", m.Name)
	}
	for _, m := range pools.Both {
		assert.True(t, fri.Has(m.ID) || sat.Has(m.ID), "both member %s must be placed", m.Name)
	}
	for _, m := range pools.Friday {
		assert.True(t, fri.Has(m.ID))
		assert.False(t, sat.Has(m.ID))
	}
	assert.Equal(t, score.CombinedImbalance(res.Friday, res.Saturday), res.Score)
	assertHistory(t, res.History, res.Score, res.Trial)
}

func TestSmart_BalancesTwoEitherMembers(t *testing.T) {
	b := newRosterBuilder()
	b.add("FIXEDA", "PC_Friday", "A")
	b.add("FIXEDB", "PC_Saturday", "B")
	b.add("EITHERA", "PC_Either", "A")
	b.add("EITHERB", "PC_Either", "B")
	pools := Split(b.roster.Members(), DefaultTags())

	res := New(WithSeed(1), WithTrials(20)).Smart(pools)
	assert.Equal(t, 0, res.Score)
	assert.Len(t, append(res.Friday, res.Saturday...), 4)
}

func TestSmart_RoutingRulesOverrideImbalance(t *testing.T) {
	build := func() Pools {
		b := newRosterBuilder()
		b.add("F", "PC_Friday", "Storage systems")
		b.add("S1", "PC_Saturday", "Storage systems")
		b.add("S2", "PC_Saturday", "Storage systems")
		b.add("E", "PC_Either", "Storage systems")
		return Split(b.roster.Members(), DefaultTags())
	}

	// Friday lacks storage experts, but storage topics must go to Saturday.
	res := New(WithSeed(3), WithTrials(10)).Smart(build())
	assert.Equal(t, []string{"F X"}, names(res.Friday))
	assert.Contains(t, names(res.Saturday), "E X")

	res = New(WithSeed(3), WithTrials(10), WithRules(Rules{})).Smart(build())
	assert.Equal(t, []string{"F X", "E X"}, names(res.Friday))
}

func names(members []*committee.Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Name
	}
	return out
}

func TestSmart_FallsBackWithoutTopics(t *testing.T) {
	b := newRosterBuilder()
	b.add("E1", "PC_Either", "A")
	b.add("E2", "PC_Either")
	b.add("B1", "PC_Both")
	pools := Split(b.roster.Members(), DefaultTags())

	res := New(WithSeed(5), WithTrials(30)).Smart(pools)
	fri, sat := memberIDs(res.Friday), memberIDs(res.Saturday)
	for _, m := range pools.Either {
		assert.True(t, fri.Has(m.ID) != sat.Has(m.ID))
	}
	assert.True(t, fri.Has(pools.Both[0].ID) || sat.Has(pools.Both[0].ID))
}

func TestSmart_BothPoolKeepsTopicGuidanceAfterEitherFallback(t *testing.T) {
	b := newRosterBuilder()
	b.add("FIX", "PC_Friday", "A")
	b.add("Z", "PC_Either", "Z")
	both := b.add("B", "PC_Both", "A")
	pools := Split(b.roster.Members(), DefaultTags())

	// No Either member holds A, so Either falls back to the coin; B still
	// holds A and must follow it to Saturday or sit on both days.
	for seed := uint64(1); seed <= 400; seed++ {
		res := New(WithSeed(seed), WithTrials(1), WithWorkers(1)).Smart(pools)
		assert.True(t, memberIDs(res.Saturday).Has(both.ID), "seed %d: both member left on Friday only", seed)
	}
}

func TestSmart_EitherFallbackSplitsMembersWithoutFixedDays(t *testing.T) {
	b := newRosterBuilder()
	a := b.add("EITHERA", "PC_Either", "A")
	bm := b.add("EITHERB", "PC_Either", "B")
	pools := Split(b.roster.Members(), DefaultTags())

	// With both days empty no topic is unbalanced; the size-biased coin
	// sends the second member to the day the first one skipped.
	res := New(WithSeed(1), WithTrials(50)).Smart(pools)
	require.Len(t, res.Friday, 1)
	require.Len(t, res.Saturday, 1)
	assert.ElementsMatch(t, []committee.MemberID{a.ID, bm.ID}, append(ids(res.Friday), ids(res.Saturday)...))
	assert.Equal(t, 1, res.Score)
}

func TestSearch_DeterministicAcrossWorkers(t *testing.T) {
	b := sampleCommittee()
	pools := Split(b.roster.Members(), DefaultTags())

	for _, strategy := range []Strategy{StrategyRandom, StrategySmart} {
		t.Run(string(strategy), func(t *testing.T) {
			one, err := New(WithSeed(99), WithTrials(120), WithWorkers(1)).Members(strategy, pools)
			require.NoError(t, err)
			many, err := New(WithSeed(99), WithTrials(120), WithWorkers(7)).Members(strategy, pools)
			require.NoError(t, err)

			assert.Equal(t, ids(one.Friday), ids(many.Friday))
			assert.Equal(t, ids(one.Saturday), ids(many.Saturday))
			assert.Equal(t, one.Score, many.Score)
			assert.Equal(t, one.Trial, many.Trial)
			assert.Equal(t, one.History, many.History)
		})
	}
}

func TestSearch_ReportsProgress(t *testing.T) {
	b := sampleCommittee()
	pools := Split(b.roster.Members(), DefaultTags())

	var done atomic.Int64
	res := New(WithSeed(3), WithTrials(57), WithWorkers(4), WithProgress(func() { done.Add(1) })).Random(pools)

	assert.Equal(t, 57, res.Trials)
	assert.Equal(t, int64(57), done.Load())
}

func TestMembers_UnknownStrategy(t *testing.T) {
	_, err := New().Members("optimal", Pools{})
	assert.ErrorIs(t, err, errors.ErrUnknownStrategy)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("smart")
	require.NoError(t, err)
	assert.Equal(t, StrategySmart, s)

	_, err = ParseStrategy("exact")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
	assert.ErrorIs(t, err, errors.ErrUnknownStrategy)
}

func TestDefaults(t *testing.T) {
	p := New(WithTrials(0), WithWorkers(-1))
	assert.Equal(t, DefaultSmartTrials, p.trialsOr(DefaultSmartTrials))
	assert.GreaterOrEqual(t, p.workers, 1)

	res := New(WithSeed(1)).Random(Pools{})
	assert.Equal(t, DefaultRandomTrials, res.Trials)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, 0, res.Trial)
}

func TestPapers_AuthorsGoToOtherDay(t *testing.T) {
	b := newRosterBuilder()
	fri := b.add("FRI", "PC_Friday")
	sat := b.add("SAT", "PC_Saturday")
	sec := b.add("SEC", "epc PC_Friday")
	outsider := committee.NewMember("Out", "Sider", "o@x", "", "", "")
	b.roster.AddAuthor(outsider)

	byFri := committee.NewPaper(1, "friday author")
	byFri.SetAuthors([]*committee.Member{outsider, fri})
	bySat := committee.NewPaper(2, "saturday author")
	bySat.SetAuthors([]*committee.Member{sat})
	bySec := committee.NewPaper(3, "secondary author")
	bySec.SetAuthors([]*committee.Member{sec})
	free := committee.NewPaper(4, "no committee author")
	free.SetAuthors([]*committee.Member{outsider})
	papers := []*committee.Paper{byFri, bySat, bySec, free}

	for seed := range uint64(5) {
		res := New(WithSeed(seed), WithTrials(10)).Papers(papers, []*committee.Member{fri}, []*committee.Member{sat})
		assert.Contains(t, paperIDs(res.Saturday), 1)
		assert.Contains(t, paperIDs(res.Friday), 2)
		assert.Len(t, append(res.Friday, res.Saturday...), 4)
	}
}

func TestPapers_MinimisesConflicts(t *testing.T) {
	b := newRosterBuilder()
	fri := b.add("FRI", "PC_Friday")
	sat := b.add("SAT", "PC_Saturday")

	// Paper 1 conflicts with the Friday reviewer, paper 2 with Saturday's.
	p1 := committee.NewPaper(1, "a")
	p1.SetDeclared(committee.NewMemberSet(fri.ID))
	p2 := committee.NewPaper(2, "b")
	p2.SetDeclared(committee.NewMemberSet(sat.ID))

	res := New(WithSeed(42), WithTrials(100)).Papers(
		[]*committee.Paper{p1, p2}, []*committee.Member{fri}, []*committee.Member{sat})

	assert.Equal(t, 0, res.Score)
	assert.Equal(t, []int{2}, paperIDs(res.Friday))
	assert.Equal(t, []int{1}, paperIDs(res.Saturday))
	assert.Equal(t, 0, PaperScore(res.Friday, res.Saturday, []*committee.Member{fri}, []*committee.Member{sat}))
	assertHistory(t, res.History, res.Score, res.Trial)
}

func TestVerifyGroup(t *testing.T) {
	b := newRosterBuilder()
	f := b.add("F", "PC_Friday")
	s := b.add("S", "PC_Saturday")
	e := b.add("E", "PC_Either")
	bo := b.add("B", "PC_Both")
	tags := DefaultTags()

	assert.NoError(t, VerifyGroup([]*committee.Member{f, e, bo}, Friday, tags))
	err := VerifyGroup([]*committee.Member{f, s}, Friday, tags)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTagMismatch)

	var pe *errors.PartitionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "S X", pe.Member)
	assert.Equal(t, "friday", pe.Day)
}

func TestVerifyComplete(t *testing.T) {
	b := newRosterBuilder()
	f := b.add("F", "PC_Friday")
	e := b.add("E", "PC_Either")
	bo := b.add("B", "PC_Both")
	b.add("SEC", "epc")
	tags := DefaultTags()
	members := b.roster.Members()

	assert.NoError(t, VerifyComplete([]*committee.Member{f, bo}, []*committee.Member{e, bo}, members, tags))

	err := VerifyComplete([]*committee.Member{f}, []*committee.Member{bo}, members, tags)
	assert.ErrorIs(t, err, errors.ErrMemberMissing)

	err = VerifyComplete([]*committee.Member{f, e}, []*committee.Member{e, bo}, members, tags)
	assert.ErrorIs(t, err, errors.ErrTagMismatch)
}

func TestTopicDist(t *testing.T) {
	d := &topicDist{
		topics:  []score.TopicDiff{{Topic: "A", Diff: 3}, {Topic: "B", Diff: 0}, {Topic: "C", Diff: -1}},
		weights: []float64{3, 0, 1},
	}
	rng := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		k := d.sample(rng)
		assert.NotEqual(t, 1, k, "zero-weight topics are never drawn while others have mass")
	}

	d.remove(0)
	d.remove(1)
	require.Len(t, d.topics, 1)
	assert.Equal(t, "B", d.topics[0].Topic)
	assert.Equal(t, 0, d.sample(rng), "all-zero weights fall back to a uniform draw")
}

func TestRulesRoute(t *testing.T) {
	r := Rules{SaturdayPrefixes: []string{"storage"}, FridayPrefixes: []string{"ML"}}

	d, ok := r.route("Storage: flash")
	assert.True(t, ok)
	assert.Equal(t, Saturday, d)

	d, ok = r.route("ml systems")
	assert.True(t, ok)
	assert.Equal(t, Friday, d)

	_, ok = r.route("Networks")
	assert.False(t, ok)
}

func TestTrialRand_DependsOnSeedAndIndex(t *testing.T) {
	a := trialRand(1, 5).Uint64()
	assert.Equal(t, a, trialRand(1, 5).Uint64())
	assert.NotEqual(t, a, trialRand(1, 6).Uint64())
	assert.NotEqual(t, a, trialRand(2, 5).Uint64())
}

func TestDay(t *testing.T) {
	assert.Equal(t, "friday", Friday.String())
	assert.Equal(t, "saturday", Saturday.String())
	assert.Equal(t, Saturday, Friday.Other())
	assert.Equal(t, "PC_Saturday", DefaultTags().For(Saturday))
}
