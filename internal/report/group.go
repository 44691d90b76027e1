package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/Iron-Ham/pcsplit/internal/committee"
	"github.com/Iron-Ham/pcsplit/internal/errors"
	"github.com/Iron-Ham/pcsplit/internal/score"
)

const rule = "========="

// Column gap between the longest topic name and the counts.
const topicGap = 3

// WriteGroup writes a day's listing: the topic coverage table followed by
// the member names. Coverage percentages are relative to all holders of a
// topic in the whole committee.
func WriteGroup(w io.Writer, label string, group, all []*committee.Member) error {
	cov := score.Coverage(group, all)
	names := make([]string, len(cov))
	for i, c := range cov {
		names[i] = c.Topic
	}
	indent := topicIndent(names)

	ew := &errWriter{w: w}
	ew.printf("%s\n", rule)
	ew.printf("Number of %s confident PC members by topic\n%s\n", label, rule)
	for _, c := range cov {
		ew.printf("%s:%s%d (%d%%)\n", c.Topic, pad(c.Topic, indent), c.Count, c.Percent)
	}
	ew.printf("%s\n", rule)
	ew.printf("PC members (%d):\n%s\n", len(group), rule)
	for _, m := range group {
		ew.printf("%s\n", m.Name)
	}
	return ew.err
}

// ReadGroup reads the member names back from a listing written by
// WriteGroup and looks each one up on the roster. Everything before the
// "PC members" heading is ignored. The members come back in file order.
func ReadGroup(r io.Reader, roster *committee.Roster) ([]*committee.Member, error) {
	sc := bufio.NewScanner(r)
	var (
		group    []*committee.Member
		started  bool
		skipRule bool
		line     int
	)
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if !started {
			if strings.HasPrefix(text, "PC members") {
				started, skipRule = true, true
			}
			continue
		}
		if skipRule {
			skipRule = false
			if strings.HasPrefix(text, "===") {
				continue
			}
		}
		if text == "" {
			continue
		}
		m, ok := roster.ByName(text)
		if !ok {
			return nil, errors.NewCrossReferenceError("listed member not on roster", errors.ErrMemberNotFound).
				WithRecord(fmt.Sprintf("line %d", line)).
				WithField("name").
				WithKey(text)
		}
		group = append(group, m)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.NewInputError("read group listing", err)
	}
	if !started {
		return nil, errors.NewInputError("no member list in group listing", errors.ErrMalformedRecord)
	}
	return group, nil
}

// WriteDiff writes, for every topic, the Friday count minus the Saturday
// count and that difference as a fraction of all the topic's holders.
// Topics are listed by name.
func WriteDiff(w io.Writer, friday, saturday, all []*committee.Member) error {
	hf, hs := score.TopicHistogram(friday), score.TopicHistogram(saturday)
	total := score.TopicHistogram(all)
	for t := range hs {
		if _, ok := hf[t]; !ok {
			hf[t] = 0
		}
	}
	topics := hf.Topics()
	indent := topicIndent(topics)

	ew := &errWriter{w: w}
	ew.printf("%s\n", rule)
	ew.printf("Difference in topics per day.\n%s\n", rule)
	for _, t := range topics {
		diff := hf[t] - hs[t]
		frac := 0.0
		if total[t] > 0 {
			frac = float64(diff) / float64(total[t])
		}
		ew.printf("%s:%s%d (%.2f)\n", t, pad(t, indent), diff, frac)
	}
	return ew.err
}

func topicIndent(topics []string) int {
	widest := 0
	for _, t := range topics {
		widest = max(widest, runewidth.StringWidth(t))
	}
	return widest + topicGap
}

func pad(topic string, indent int) string {
	return strings.Repeat(" ", max(1, indent-runewidth.StringWidth(topic)))
}
