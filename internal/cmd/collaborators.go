package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/pcsplit/internal/report"
	"github.com/Iron-Ham/pcsplit/internal/resolve"
)

var collaboratorsCmd = &cobra.Command{
	Use:   "collaborators",
	Short: "List papers whose collaborators seem to name a committee member",
	Long: `Match every committee member against every paper's declared collaborators
and write the likely hits to collaborator_review.txt.

Delete the false matches from the file, then pass it to
'pcsplit conflicts --review'. Entries marked !!! VERIFY !!! scored below the
review threshold and need a closer look.`,
	RunE: runCollaborators,
}

func init() {
	rootCmd.AddCommand(collaboratorsCmd)
}

func runCollaborators(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ws, err := a.prepare(cmd.Context())
	if err != nil {
		return err
	}

	reviews := resolve.MatchCollaborators(ws.Roster, ws.Papers,
		a.cfg.Matching.ReviewThreshold, a.cfg.Matching.VerifyThreshold)
	hits := 0
	for _, r := range reviews {
		hits += len(r.Hits)
	}

	if err := a.write(fileCollaboratorReview, func(w io.Writer) error {
		return report.WriteCollaboratorReview(w, reviews)
	}); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Found %d possible collaborator matches for %d members\n", hits, len(reviews))
	fmt.Fprintf(a.stdout, "Wrote %s\n", a.out.Path(fileCollaboratorReview))
	return nil
}
