package partition

import (
	"math/rand/v2"
	"slices"

	"github.com/Iron-Ham/pcsplit/internal/committee"
	"github.com/Iron-Ham/pcsplit/internal/score"
)

// MemberResult is the outcome of a committee search.
type MemberResult = Result[*committee.Member]

// Members runs the named strategy.
func (p *Partitioner) Members(strategy Strategy, pools Pools) (MemberResult, error) {
	switch strategy {
	case StrategyRandom:
		return p.Random(pools), nil
	case StrategySmart:
		return p.Smart(pools), nil
	default:
		_, err := ParseStrategy(string(strategy))
		return MemberResult{}, err
	}
}

// Random merges the flexible pools by coin flips. Either members pick a day
// with a fair coin. Both members sit on both days with the configured
// probability and otherwise lean toward the smaller group. The best of the
// trial budget (default 100) by combined imbalance wins.
func (p *Partitioner) Random(pools Pools) MemberResult {
	logger := p.logger.WithStrategy(string(StrategyRandom))
	return runTrials(p.seed, p.trialsOr(DefaultRandomTrials), p.workers, logger, p.onTrial, func(rng *rand.Rand) candidate[*committee.Member] {
		g := pools.clone()
		for _, m := range g.Either {
			if flip(rng, 0.5) {
				g.Friday = append(g.Friday, m)
			} else {
				g.Saturday = append(g.Saturday, m)
			}
		}
		for _, m := range g.Both {
			p.placeBoth(rng, &g, m, p.bothProb, smallerDay)
		}
		return candidate[*committee.Member]{
			friday:   g.Friday,
			saturday: g.Saturday,
			score:    score.CombinedImbalance(g.Friday, g.Saturday),
		}
	})
}

// smallerDay asks placeBoth to choose with a coin biased toward the smaller
// group.
const smallerDay Day = -1

// placeBoth puts a Both member on both days with probability prob and
// otherwise on dest.
func (p *Partitioner) placeBoth(rng *rand.Rand, g *Pools, m *committee.Member, prob float64, dest Day) {
	if flip(rng, prob) {
		g.Friday = append(g.Friday, m)
		g.Saturday = append(g.Saturday, m)
		return
	}
	if dest == smallerDay {
		dest = towardSmaller(rng, len(g.Friday), len(g.Saturday))
	}
	g.add(dest, m)
}

func (g *Pools) add(d Day, m *committee.Member) {
	if d == Friday {
		g.Friday = append(g.Friday, m)
	} else {
		g.Saturday = append(g.Saturday, m)
	}
}

// Smart merges the flexible pools by repeatedly sampling an unbalanced topic
// and moving a member who holds it to the day that lacks it. The best of the
// trial budget (default 10,000) by combined imbalance wins.
func (p *Partitioner) Smart(pools Pools) MemberResult {
	logger := p.logger.WithStrategy(string(StrategySmart))
	return runTrials(p.seed, p.trialsOr(DefaultSmartTrials), p.workers, logger, p.onTrial, func(rng *rand.Rand) candidate[*committee.Member] {
		g := p.mergeSmart(rng, pools.clone())
		return candidate[*committee.Member]{
			friday:   g.Friday,
			saturday: g.Saturday,
			score:    score.CombinedImbalance(g.Friday, g.Saturday),
		}
	})
}

func (p *Partitioner) mergeSmart(rng *rand.Rand, g Pools) Pools {
	dist := newTopicDist(g.Friday, g.Saturday)
	for len(g.Either) > 0 || len(g.Both) > 0 {
		if dist.empty() {
			if len(g.Either) > 0 {
				placeRemainingEither(rng, &g)
				dist = newTopicDist(g.Friday, g.Saturday)
				continue
			}
			p.placeRemainingBoth(rng, &g)
			break
		}

		k := dist.sample(rng)
		td := dist.topics[k]
		dest := p.destination(rng, td, len(g.Friday), len(g.Saturday))

		fromEither := len(g.Either) > 0
		pool := &g.Both
		if fromEither {
			pool = &g.Either
		}
		idx := qualifying(rng, *pool, td.Topic)
		if idx < 0 {
			dist.remove(k)
			continue
		}
		m := (*pool)[idx]
		*pool = slices.Delete(*pool, idx, idx+1)

		if fromEither {
			g.add(dest, m)
		} else {
			p.placeBoth(rng, &g, m, p.smartBothProb, dest)
		}
		dist = newTopicDist(g.Friday, g.Saturday)
	}
	return g
}

// placeRemainingEither empties the Either pool once no topic can guide it,
// each member by a coin biased toward the smaller group. The Both pool is
// left for the topic loop.
func placeRemainingEither(rng *rand.Rand, g *Pools) {
	for _, m := range g.Either {
		g.add(towardSmaller(rng, len(g.Friday), len(g.Saturday)), m)
	}
	g.Either = nil
}

// placeRemainingBoth empties the Both pool by the random strategy's rule.
func (p *Partitioner) placeRemainingBoth(rng *rand.Rand, g *Pools) {
	for _, m := range g.Both {
		p.placeBoth(rng, g, m, p.bothProb, smallerDay)
	}
	g.Both = nil
}

// destination sends a topic to the day holding fewer of its experts. Routing
// rules win over the imbalance, and a balanced topic leans toward the
// smaller group.
func (p *Partitioner) destination(rng *rand.Rand, td score.TopicDiff, friday, saturday int) Day {
	var dest Day
	switch {
	case td.Diff < 0:
		dest = Friday
	case td.Diff > 0:
		dest = Saturday
	default:
		dest = towardSmaller(rng, friday, saturday)
	}
	if forced, ok := p.rules.route(td.Topic); ok {
		return forced
	}
	return dest
}

// qualifying returns the index of a uniformly chosen member holding topic,
// or -1.
func qualifying(rng *rand.Rand, members []*committee.Member, topic string) int {
	var idx []int
	for i, m := range members {
		if m.HasTopic(topic) {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return -1
	}
	return idx[rng.IntN(len(idx))]
}

// topicDist is a sampling distribution over topics weighted by absolute
// imbalance.
type topicDist struct {
	topics  []score.TopicDiff
	weights []float64
}

func newTopicDist(friday, saturday []*committee.Member) *topicDist {
	diffs := score.InterdayDiff(friday, saturday)
	weights := make([]float64, len(diffs))
	for i, d := range diffs {
		weights[i] = float64(max(d.Diff, -d.Diff))
	}
	return &topicDist{topics: diffs, weights: weights}
}

func (d *topicDist) empty() bool {
	return len(d.topics) == 0
}

// sample draws a topic index with probability proportional to its weight.
// When every weight is zero the draw is uniform.
func (d *topicDist) sample(rng *rand.Rand) int {
	total := 0.0
	for _, w := range d.weights {
		total += w
	}
	if total == 0 {
		return rng.IntN(len(d.topics))
	}
	r := rng.Float64() * total
	last := 0
	for i, w := range d.weights {
		if w == 0 {
			continue
		}
		last = i
		if r < w {
			return i
		}
		r -= w
	}
	return last
}

// remove drops topic k. Sampling divides by the remaining total, which
// spreads its mass over the rest in proportion to their weights.
func (d *topicDist) remove(k int) {
	d.topics = slices.Delete(d.topics, k, k+1)
	d.weights = slices.Delete(d.weights, k, k+1)
}
