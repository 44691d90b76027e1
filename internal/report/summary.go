package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/Iron-Ham/pcsplit/internal/committee"
	"github.com/Iron-Ham/pcsplit/internal/score"
)

// MaxTopicWidth is the widest topic name shown in summaries before it is
// truncated.
const MaxTopicWidth = 40

// MemberSummary describes a committee split for display.
type MemberSummary struct {
	Strategy string
	Seed     uint64
	Score    int
	Trial    int
	Trials   int
	Friday   []*committee.Member
	Saturday []*committee.Member
	Missing  []*committee.Member // primary members in neither group
}

// PaperSummary describes a paper split for display.
type PaperSummary struct {
	Seed       uint64
	Score      int
	Trial      int
	Trials     int
	Friday     []*committee.Paper
	Saturday   []*committee.Paper
	FridayPC   []*committee.Member
	SaturdayPC []*committee.Member
}

// StepCount is the number of new conflicts one detection step found.
type StepCount struct {
	Step  string
	Count int
}

// Renderer renders summaries for a terminal.
type Renderer struct {
	r *lipgloss.Renderer
	s styles
}

// NewRenderer returns a Renderer writing to w. With color false, or when w
// is not a terminal, output is plain text.
func NewRenderer(w io.Writer, color bool) *Renderer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{r: r, s: newStyles(r)}
}

// Members renders topic counts per day, their difference and the search
// outcome.
func (rd *Renderer) Members(sum MemberSummary) string {
	hf := score.TopicHistogram(sum.Friday)
	hs := score.TopicHistogram(sum.Saturday)
	for t := range hs {
		if _, ok := hf[t]; !ok {
			hf[t] = 0
		}
	}

	var rows [][]string
	for _, t := range hf.Topics() {
		rows = append(rows, []string{
			ansi.Truncate(t, MaxTopicWidth, "…"),
			strconv.Itoa(hf[t]),
			strconv.Itoa(hs[t]),
			strconv.Itoa(hf[t] - hs[t]),
		})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(rd.s.border).
		Headers("Topic", "Friday", "Saturday", "Diff").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return rd.s.header
			case col == 0:
				return rd.s.cell
			case col == 3:
				return rd.diffStyle(rows[row][3])
			default:
				return rd.s.number
			}
		})

	var b strings.Builder
	b.WriteString(rd.s.title.Render(fmt.Sprintf("Committee split (%s)", sum.Strategy)))
	b.WriteString("\n")
	b.WriteString(tbl.String())
	b.WriteString("\n")
	b.WriteString(rd.s.subtitle.Render(fmt.Sprintf(
		"Friday %d, Saturday %d members. Imbalance %d from trial %d of %d, seed %d.",
		len(sum.Friday), len(sum.Saturday), sum.Score, sum.Trial, sum.Trials, sum.Seed)))
	b.WriteString("\n")
	for _, m := range sum.Missing {
		b.WriteString(rd.s.notice.Render(fmt.Sprintf("missing! %s has no scheduling tag", m.Name)))
		b.WriteString("\n")
	}
	return b.String()
}

// Papers renders the paper split and the conflicted reviewers on each day.
func (rd *Renderer) Papers(sum PaperSummary) string {
	fri := score.ConflictScore(sum.Friday, sum.FridayPC)
	sat := score.ConflictScore(sum.Saturday, sum.SaturdayPC)
	rows := [][]string{
		{"Friday", strconv.Itoa(len(sum.Friday)), strconv.Itoa(len(sum.FridayPC)), strconv.Itoa(fri)},
		{"Saturday", strconv.Itoa(len(sum.Saturday)), strconv.Itoa(len(sum.SaturdayPC)), strconv.Itoa(sat)},
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(rd.s.border).
		Headers("Day", "Papers", "PC", "Conflicts").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return rd.s.header
			case col == 0:
				return rd.s.cell
			default:
				return rd.s.number
			}
		})

	var b strings.Builder
	b.WriteString(rd.s.title.Render("Paper split"))
	b.WriteString("\n")
	b.WriteString(tbl.String())
	b.WriteString("\n")
	outcome := fmt.Sprintf("Conflict score %d from trial %d of %d, seed %d.", sum.Score, sum.Trial, sum.Trials, sum.Seed)
	if sum.Trials == 0 {
		outcome = fmt.Sprintf("Conflict score %d for the existing listings.", sum.Score)
	}
	b.WriteString(rd.s.subtitle.Render(outcome))
	b.WriteString("\n")
	return b.String()
}

// Findings renders how many new conflicts each detection step found.
func (rd *Renderer) Findings(counts []StepCount, papers int) string {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Step, strconv.Itoa(c.Count)})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(rd.s.border).
		Headers("Step", "New conflicts").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return rd.s.header
			case col == 0:
				return rd.s.cell
			default:
				return rd.s.number
			}
		})

	var b strings.Builder
	b.WriteString(rd.s.title.Render("Conflict detection"))
	b.WriteString("\n")
	b.WriteString(tbl.String())
	b.WriteString("\n")
	b.WriteString(rd.s.subtitle.Render(fmt.Sprintf("%d papers checked.", papers)))
	b.WriteString("\n")
	return b.String()
}

func (rd *Renderer) diffStyle(v string) lipgloss.Style {
	n, _ := strconv.Atoi(v)
	switch {
	case n == 0:
		return rd.s.good
	case n > 2 || n < -2:
		return rd.s.bad
	default:
		return rd.s.warn
	}
}
