package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Iron-Ham/pcsplit/internal/committee"
	"github.com/Iron-Ham/pcsplit/internal/errors"
)

// WritePaperGroup lists papers one per line as "pid: title".
func WritePaperGroup(w io.Writer, papers []*committee.Paper) error {
	ew := &errWriter{w: w}
	for _, p := range papers {
		ew.printf("%s\n", p)
	}
	return ew.err
}

// ReadPaperGroup reads a listing written by WritePaperGroup. Only the paper
// IDs are used; titles may have been edited.
func ReadPaperGroup(r io.Reader, papers map[int]*committee.Paper) ([]*committee.Paper, error) {
	sc := bufio.NewScanner(r)
	var out []*committee.Paper
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		idText, _, _ := strings.Cut(text, ":")
		pid, err := strconv.Atoi(strings.TrimSpace(idText))
		if err != nil {
			return nil, errors.NewInputError("paper listing", errors.Join(errors.ErrMalformedRecord, err)).
				WithLine(line).
				WithField("pid")
		}
		p, ok := papers[pid]
		if !ok {
			return nil, errors.NewCrossReferenceError("listed paper not in submissions", errors.ErrPaperNotFound).
				WithRecord(fmt.Sprintf("line %d", line)).
				WithField("pid").
				WithKey(idText)
		}
		out = append(out, p)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.NewInputError("read paper listing", err)
	}
	return out, nil
}

// WriteConflictSheet writes a spreadsheet with one column per paper and one
// row per member, marking conflicts with "C".
func WriteConflictSheet(w io.Writer, papers []*committee.Paper, group []*committee.Member) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(papers)+1)
	header = append(header, "")
	for _, p := range papers {
		header = append(header, strconv.Itoa(p.ID))
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, m := range group {
		row := make([]string, 0, len(papers)+1)
		row = append(row, m.Name)
		for _, p := range papers {
			cell := ""
			if p.Conflicts.Has(m.ID) {
				cell = "C"
			}
			row = append(row, cell)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTopicSheet writes a members by topics spreadsheet, marking each
// member's expertise with "X". Secondary committee members are left out.
func WriteTopicSheet(w io.Writer, members []*committee.Member, topics []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{""}, topics...)); err != nil {
		return err
	}
	for _, m := range members {
		if m.IsSecondary {
			continue
		}
		row := make([]string, 0, len(topics)+1)
		row = append(row, m.Name)
		for _, t := range topics {
			cell := ""
			if m.HasTopic(t) {
				cell = "X"
			}
			row = append(row, cell)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
