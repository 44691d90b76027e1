package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/pcsplit/internal/committee"
	"github.com/Iron-Ham/pcsplit/internal/report"
	"github.com/Iron-Ham/pcsplit/internal/resolve"
	"github.com/Iron-Ham/pcsplit/internal/store"
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Find undeclared conflicts and export them as bulk updates",
	Long: `Find conflicts of interest that authors did not declare and write them
as a bulk assignment CSV (paper,assignment,email).

Detection steps:
  manual       reviewers confirmed in an edited collaborator review (--review)
  affiliation  reviewers who share an institution with an author
  institution  reviewers at institutions named in the collaborators list

The combined export leaves out conflicts that were already declared.`,
	RunE: runConflicts,
}

var (
	conflictsReview        string
	conflictsUpdates       string
	conflictsSeparateSteps bool
	conflictsStore         bool
)

func init() {
	conflictsCmd.Flags().StringVar(&conflictsReview, "review", "", "edited collaborator review file for the manual step")
	conflictsCmd.Flags().StringVar(&conflictsUpdates, "updates", "", "import a previously exported update CSV first")
	conflictsCmd.Flags().BoolVar(&conflictsSeparateSteps, "separate-steps", false, "also write one update CSV per detection step")
	conflictsCmd.Flags().BoolVar(&conflictsStore, "store", false, "save the results to the SQLite store")
	conflictsCmd.Flags().String("store-path", "", "SQLite store path")
	rootCmd.AddCommand(conflictsCmd)
}

func runConflicts(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	ws, err := a.prepare(ctx)
	if err != nil {
		return err
	}

	if conflictsUpdates != "" {
		var imported map[int]committee.MemberSet
		err := report.Open(fs, conflictsUpdates, func(r io.Reader) error {
			var err error
			imported, err = report.ReadUpdates(r, ws.Roster, ws.index)
			return err
		})
		if err != nil {
			return err
		}
		for pid, set := range imported {
			ws.index[pid].Conflicts.Union(set)
		}
		a.logger.Info("update csv imported", "path", conflictsUpdates, "papers", len(imported))
	}

	detector := resolve.NewDetector(ws.resolver, ws.Roster)
	steps := []resolve.Step{resolve.StepAffiliation, resolve.StepInstitution}
	if conflictsReview != "" {
		var entries []resolve.ReviewEntry
		err := report.Open(fs, conflictsReview, func(r io.Reader) error {
			var err error
			entries, err = report.ReadCollaboratorReview(r)
			return err
		})
		if err != nil {
			return err
		}
		manual, err := resolve.ManualConflicts(entries, ws.Roster, ws.index)
		if err != nil {
			return err
		}
		detector.SetManual(manual)
		steps = resolve.AllSteps()
	}

	findings := detector.Run(ws.Papers, steps...)

	if conflictsSeparateSteps {
		for _, step := range steps {
			name := fmt.Sprintf("update_%s.csv", step)
			if err := a.write(name, func(w io.Writer) error {
				return report.WriteUpdates(w, findings.Step(step), ws.Roster)
			}); err != nil {
				return err
			}
		}
	}

	combined := report.PaperConflicts(ws.Papers, func(p *committee.Paper) committee.MemberSet {
		return p.NewConflicts()
	})
	if err := a.write(fileUpdatesCombined, func(w io.Writer) error {
		return report.WriteUpdates(w, combined, ws.Roster)
	}); err != nil {
		return err
	}

	if conflictsStore {
		st, err := store.Open(a.cfg.Store.Path, store.WithLogger(a.logger.WithStep("store")))
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
		run, err := st.SaveRun(ctx, ws.Papers, findings, ws.Roster)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Saved run %s to %s\n", run.ID, a.cfg.Store.Path)
	}

	counts := make([]report.StepCount, 0, len(steps))
	for _, step := range steps {
		counts = append(counts, report.StepCount{Step: string(step), Count: findings.Count(step)})
	}
	fmt.Fprint(a.stdout, a.render.Findings(counts, len(ws.Papers)))
	fmt.Fprintf(a.stdout, "Wrote %s\n", a.out.Path(fileUpdatesCombined))
	return nil
}
