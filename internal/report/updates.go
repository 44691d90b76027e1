package report

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/Iron-Ham/pcsplit/internal/committee"
	"github.com/Iron-Ham/pcsplit/internal/errors"
	"github.com/Iron-Ham/pcsplit/internal/partition"
)

// AssignmentConflict is the bulk-update assignment that marks a conflict.
const AssignmentConflict = "conflict"

var updateHeader = []string{"paper", "assignment", "email"}

// WriteUpdates writes a bulk assignment CSV with one conflict row per
// paper/member pair. Papers are ordered by ID and members by name.
func WriteUpdates(w io.Writer, conflicts map[int]committee.MemberSet, roster *committee.Roster) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(updateHeader); err != nil {
		return err
	}
	for _, pid := range slices.Sorted(maps.Keys(conflicts)) {
		members := make([]*committee.Member, 0, len(conflicts[pid]))
		for id := range conflicts[pid] {
			if m, ok := roster.Member(id); ok {
				members = append(members, m)
			}
		}
		slices.SortFunc(members, func(a, b *committee.Member) int {
			if c := cmp.Compare(a.Name, b.Name); c != 0 {
				return c
			}
			return cmp.Compare(a.Email, b.Email)
		})
		for _, m := range members {
			if err := cw.Write([]string{strconv.Itoa(pid), AssignmentConflict, m.Email}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// PaperConflicts collects each paper's conflicts through pick, leaving out
// papers for which pick returns an empty set.
func PaperConflicts(papers []*committee.Paper, pick func(*committee.Paper) committee.MemberSet) map[int]committee.MemberSet {
	out := make(map[int]committee.MemberSet, len(papers))
	for _, p := range papers {
		if s := pick(p); len(s) > 0 {
			out[p.ID] = s
		}
	}
	return out
}

// ReadUpdates reads a bulk assignment CSV written by WriteUpdates. Rows
// whose assignment is not a conflict are skipped. An unknown paper or email
// is an error.
func ReadUpdates(r io.Reader, roster *committee.Roster, papers map[int]*committee.Paper) (map[int]committee.MemberSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.NewInputError("parse update csv", errors.Join(errors.ErrMalformedRecord, err))
	}
	if len(rows) == 0 {
		return nil, errors.NewInputError("empty update csv", errors.ErrEmptyInput)
	}
	if !slices.Equal(normaliseHeader(rows[0]), updateHeader) {
		return nil, errors.NewInputError("update csv header", errors.ErrMissingColumn).
			WithLine(1).
			WithField(strings.Join(updateHeader, ","))
	}

	out := make(map[int]committee.MemberSet)
	for i, row := range rows[1:] {
		line := i + 2
		if len(row) < len(updateHeader) {
			return nil, errors.NewInputError("short update row", errors.ErrMalformedRecord).WithLine(line)
		}
		if strings.TrimSpace(row[1]) != AssignmentConflict {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, errors.NewInputError("update row", errors.Join(errors.ErrMalformedRecord, err)).
				WithLine(line).
				WithField("paper")
		}
		if _, ok := papers[pid]; !ok {
			return nil, errors.NewCrossReferenceError("update names unknown paper", errors.ErrPaperNotFound).
				WithRecord(fmt.Sprintf("line %d", line)).
				WithField("paper").
				WithKey(row[0])
		}
		email := strings.TrimSpace(row[2])
		m, ok := roster.ByEmail(email)
		if !ok {
			return nil, errors.NewCrossReferenceError("update names unknown member", errors.ErrMemberNotFound).
				WithRecord(fmt.Sprintf("line %d", line)).
				WithField("email").
				WithKey(email)
		}
		if out[pid] == nil {
			out[pid] = committee.NewMemberSet()
		}
		out[pid].Add(m.ID)
	}
	return out, nil
}

func normaliseHeader(h []string) []string {
	out := make([]string, len(h))
	for i, s := range h {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// TagUpdate is one row of a tag update CSV.
type TagUpdate struct {
	Email  string
	Add    []string
	Remove []string
}

// OrigSuffix marks the tag that records a member's original flexibility.
const OrigSuffix = "_orig"

// TagUpdates turns a committee split into tag changes. Flexible members get
// the tags of the days they were placed on; their flexible tag is replaced
// by a copy with OrigSuffix. Members with fixed days need no change. Rows
// follow the Friday group and then the Saturday-only members.
func TagUpdates(friday, saturday []*committee.Member, tags partition.Tags) []TagUpdate {
	onFriday := make(map[committee.MemberID]bool, len(friday))
	for _, m := range friday {
		onFriday[m.ID] = true
	}
	onSaturday := make(map[committee.MemberID]bool, len(saturday))
	for _, m := range saturday {
		onSaturday[m.ID] = true
	}

	var out []TagUpdate
	seen := make(map[committee.MemberID]bool)
	for _, m := range slices.Concat(friday, saturday) {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true

		var flex string
		switch {
		case m.HasTag(tags.Either):
			flex = tags.Either
		case m.HasTag(tags.Both):
			flex = tags.Both
		default:
			continue
		}
		var add []string
		if onFriday[m.ID] {
			add = append(add, tags.Friday)
		}
		if onSaturday[m.ID] {
			add = append(add, tags.Saturday)
		}
		add = append(add, flex+OrigSuffix)
		out = append(out, TagUpdate{Email: m.Email, Add: add, Remove: []string{flex}})
	}
	return out
}

// WriteTagUpdates writes tag changes as an "email,add_tags,remove_tags"
// CSV. Multiple tags share one cell, comma separated.
func WriteTagUpdates(w io.Writer, updates []TagUpdate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"email", "add_tags", "remove_tags"}); err != nil {
		return err
	}
	for _, u := range updates {
		if err := cw.Write([]string{u.Email, strings.Join(u.Add, ","), strings.Join(u.Remove, ",")}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
