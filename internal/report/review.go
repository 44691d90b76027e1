package report

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/Iron-Ham/pcsplit/internal/errors"
	"github.com/Iron-Ham/pcsplit/internal/resolve"
)

const (
	reviewRule   = "================================="
	memberPrefix = "PC member"
	nameMarker   = "## "
	verifyMarker = "!!! VERIFY !!!"
)

// WriteCollaboratorReview writes one block per reviewer listing the papers
// whose collaborators seem to name them:
//
//	=================================
//	PC member  4 ## ADA LOVELACE
//	=================================
//	17 ## 92 : ADA LOVELACE
//	23 ## 75 : ADA LOVELAC !!! VERIFY !!!
//
// Chairs delete the false matches and feed the file back through
// ReadCollaboratorReview.
func WriteCollaboratorReview(w io.Writer, reviews []resolve.MemberReview) error {
	ew := &errWriter{w: w}
	for _, mr := range reviews {
		ew.printf("%s\n", reviewRule)
		ew.printf("%s  %d %s%s\n", memberPrefix, mr.Member.ID, nameMarker, mr.Member.Name)
		ew.printf("%s\n", reviewRule)
		for _, h := range mr.Hits {
			if h.Verify {
				ew.printf("%d ## %d : %s %s\n", h.PaperID, h.Score, h.Collaborator, verifyMarker)
				continue
			}
			ew.printf("%d ## %d : %s\n", h.PaperID, h.Score, h.Collaborator)
		}
	}
	return ew.err
}

// ReadCollaboratorReview reads an edited review file. Every paper line left
// under a reviewer's heading becomes a confirmed conflict for that
// reviewer.
func ReadCollaboratorReview(r io.Reader) ([]resolve.ReviewEntry, error) {
	sc := bufio.NewScanner(r)
	var (
		entries []resolve.ReviewEntry
		member  string
		line    int
	)
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		switch {
		case text == "" || strings.HasPrefix(text, "==="):
			continue
		case strings.HasPrefix(text, memberPrefix):
			_, name, ok := strings.Cut(text, nameMarker)
			if !ok || strings.TrimSpace(name) == "" {
				return nil, errors.NewInputError("reviewer heading without name", errors.ErrMalformedRecord).
					WithLine(line)
			}
			member = strings.TrimSpace(name)
			continue
		}

		if member == "" {
			return nil, errors.NewInputError("paper line before any reviewer heading", errors.ErrMalformedRecord).
				WithLine(line)
		}
		pid, err := strconv.Atoi(strings.Fields(text)[0])
		if err != nil {
			return nil, errors.NewInputError("review line", errors.Join(errors.ErrMalformedRecord, err)).
				WithLine(line).
				WithField("pid")
		}
		entries = append(entries, resolve.ReviewEntry{MemberName: member, PaperID: pid})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.NewInputError("read collaborator review", err)
	}
	return entries, nil
}
