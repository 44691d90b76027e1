// Package score evaluates candidate partitions: how evenly topic expertise
// is spread across the two days and how many conflicted reviewers end up in
// the session that discusses the paper.
package score

import (
	"cmp"
	"slices"

	"github.com/Iron-Ham/pcsplit/internal/committee"
)

// Histogram counts members per topic.
type Histogram map[string]int

// TopicHistogram counts, for each topic, the members holding it. Topics
// with no holder are absent.
func TopicHistogram(members []*committee.Member) Histogram {
	h := make(Histogram)
	for _, m := range members {
		for _, t := range m.Topics {
			h[t]++
		}
	}
	return h
}

// Topics returns the histogram's topics in sorted order.
func (h Histogram) Topics() []string {
	topics := make([]string, 0, len(h))
	for t := range h {
		topics = append(topics, t)
	}
	slices.Sort(topics)
	return topics
}

// CombinedImbalance sums |a[t] - b[t]| over the topics present in a.
// Topics held only in b do not count, so the measure is not symmetric.
func CombinedImbalance(a, b []*committee.Member) int {
	ha, hb := TopicHistogram(a), TopicHistogram(b)
	total := 0
	for t, n := range ha {
		d := n - hb[t]
		if d < 0 {
			d = -d
		}
		total += d
	}
	return total
}

// ConflictScore counts (paper, member) pairs where the member sits in group
// and is conflicted with the paper.
func ConflictScore(papers []*committee.Paper, group []*committee.Member) int {
	total := 0
	for _, p := range papers {
		for _, m := range group {
			if p.Conflicts.Has(m.ID) {
				total++
			}
		}
	}
	return total
}

// TopicDiff is the signed difference a[t] - b[t] for one topic.
type TopicDiff struct {
	Topic string
	Diff  int
}

// InterdayDiff returns a[t] - b[t] for every topic held in a, largest
// difference first. Equal differences are ordered by topic name.
func InterdayDiff(a, b []*committee.Member) []TopicDiff {
	ha, hb := TopicHistogram(a), TopicHistogram(b)
	out := make([]TopicDiff, 0, len(ha))
	for t, n := range ha {
		out = append(out, TopicDiff{Topic: t, Diff: n - hb[t]})
	}
	slices.SortFunc(out, func(x, y TopicDiff) int {
		if c := cmp.Compare(y.Diff, x.Diff); c != 0 {
			return c
		}
		return cmp.Compare(x.Topic, y.Topic)
	})
	return out
}

// TopicCoverage is how many of a topic's holders sit in one group.
type TopicCoverage struct {
	Topic   string
	Count   int
	Percent int // of the topic's holders across the whole committee
}

// Coverage reports, for each topic in group, its holder count and the
// percentage of all holders in total that the count represents, rounded
// down. Topics are sorted by name.
func Coverage(group, total []*committee.Member) []TopicCoverage {
	hg, ht := TopicHistogram(group), TopicHistogram(total)
	out := make([]TopicCoverage, 0, len(hg))
	for _, t := range hg.Topics() {
		pct := 0
		if ht[t] > 0 {
			pct = 100 * hg[t] / ht[t]
		}
		out = append(out, TopicCoverage{Topic: t, Count: hg[t], Percent: pct})
	}
	return out
}
