package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/pcsplit/internal/committee"
	"github.com/Iron-Ham/pcsplit/internal/partition"
	"github.com/Iron-Ham/pcsplit/internal/report"
	"github.com/Iron-Ham/pcsplit/internal/resolve"
	"github.com/Iron-Ham/pcsplit/internal/store"
)

var partitionPapersCmd = &cobra.Command{
	Use:   "partition-papers",
	Short: "Split the papers between the Friday and Saturday groups",
	Long: `Split the papers so that as few conflicted reviewers as possible sit in
the room when each paper is discussed.

A paper written by a committee member goes to the day that member does not
attend. Conflicts come from --updates, from the latest stored run
(--from-store), or are detected afresh. With --use-existing the paper
listings from an earlier run are scored and the conflict sheets rewritten.`,
	RunE: runPartitionPapers,
}

var (
	partitionPapersFriday      string
	partitionPapersSaturday    string
	partitionPapersUpdates     string
	partitionPapersFromStore   bool
	partitionPapersUseExisting bool
)

func init() {
	f := partitionPapersCmd.Flags()
	f.StringVar(&partitionPapersFriday, "friday", "", "Friday group listing (default <out>/"+fileFridayGroup+")")
	f.StringVar(&partitionPapersSaturday, "saturday", "", "Saturday group listing (default <out>/"+fileSaturdayGroup+")")
	f.StringVar(&partitionPapersUpdates, "updates", "", "take conflicts from an update CSV")
	f.BoolVar(&partitionPapersFromStore, "from-store", false, "take conflicts from the latest stored run")
	f.BoolVar(&partitionPapersUseExisting, "use-existing", false, "score the existing paper listings instead of searching")
	f.Uint64("seed", 0, "fix the search seed (0 picks one from the clock)")
	f.String("store-path", "", "SQLite store path")
	partitionPapersCmd.MarkFlagsMutuallyExclusive("updates", "from-store")
	rootCmd.AddCommand(partitionPapersCmd)
}

func runPartitionPapers(cmd *cobra.Command, args []string) error {
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
	if err := a.loadConflicts(ctx, ws); err != nil {
		return err
	}

	fridayPath := partitionPapersFriday
	if fridayPath == "" {
		fridayPath = a.out.Path(fileFridayGroup)
	}
	saturdayPath := partitionPapersSaturday
	if saturdayPath == "" {
		saturdayPath = a.out.Path(fileSaturdayGroup)
	}
	friday, err := readGroup(fridayPath, ws.Roster)
	if err != nil {
		return err
	}
	saturday, err := readGroup(saturdayPath, ws.Roster)
	if err != nil {
		return err
	}

	var res partition.PaperResult
	if partitionPapersUseExisting {
		res, err = a.existingPapers(ws, friday, saturday)
		if err != nil {
			return err
		}
	} else {
		p, finish := a.partitioner(a.cfg.Partition.PaperTrials, "partition-papers", a.cfg.Partition.Seed)
		res = p.Papers(ws.Papers, friday, saturday)
		finish()
		committee.SortPapers(res.Friday)
		committee.SortPapers(res.Saturday)

		if err := a.write(fileFridayPapers, func(w io.Writer) error {
			return report.WritePaperGroup(w, res.Friday)
		}); err != nil {
			return err
		}
		if err := a.write(fileSaturdayPapers, func(w io.Writer) error {
			return report.WritePaperGroup(w, res.Saturday)
		}); err != nil {
			return err
		}
	}

	if err := a.write(fileFridaySheet, func(w io.Writer) error {
		return report.WriteConflictSheet(w, res.Friday, friday)
	}); err != nil {
		return err
	}
	if err := a.write(fileSaturdaySheet, func(w io.Writer) error {
		return report.WriteConflictSheet(w, res.Saturday, saturday)
	}); err != nil {
		return err
	}

	fmt.Fprint(a.stdout, a.render.Papers(report.PaperSummary{
		Seed:       res.Seed,
		Score:      res.Score,
		Trial:      res.Trial,
		Trials:     res.Trials,
		Friday:     res.Friday,
		Saturday:   res.Saturday,
		FridayPC:   friday,
		SaturdayPC: saturday,
	}))
	return nil
}

// loadConflicts fills in every paper's conflicts from the source the flags
// select.
func (a *app) loadConflicts(ctx context.Context, ws *workspace) error {
	switch {
	case partitionPapersUpdates != "":
		var imported map[int]committee.MemberSet
		err := report.Open(fs, partitionPapersUpdates, func(r io.Reader) error {
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
		a.logger.Info("conflicts imported", "path", partitionPapersUpdates, "papers", len(imported))

	case partitionPapersFromStore:
		st, err := store.Open(a.cfg.Store.Path, store.WithLogger(a.logger.WithStep("store")))
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
		run, err := st.Latest(ctx)
		if err != nil {
			return err
		}
		if err := st.Restore(ctx, run.ID, ws.index, ws.Roster); err != nil {
			return err
		}
		a.logger.Info("conflicts restored", "run_id", run.ID.String(), "conflicts", run.Conflicts)

	default:
		resolve.NewDetector(ws.resolver, ws.Roster).
			Run(ws.Papers, resolve.StepAffiliation, resolve.StepInstitution)
	}
	return nil
}

// existingPapers scores the paper listings written by an earlier run.
func (a *app) existingPapers(ws *workspace, friday, saturday []*committee.Member) (partition.PaperResult, error) {
	read := func(name string) ([]*committee.Paper, error) {
		var papers []*committee.Paper
		err := report.Open(fs, a.out.Path(name), func(r io.Reader) error {
			var err error
			papers, err = report.ReadPaperGroup(r, ws.index)
			return err
		})
		return papers, err
	}
	fri, err := read(fileFridayPapers)
	if err != nil {
		return partition.PaperResult{}, err
	}
	sat, err := read(fileSaturdayPapers)
	if err != nil {
		return partition.PaperResult{}, err
	}
	return partition.PaperResult{
		Friday:   fri,
		Saturday: sat,
		Score:    partition.PaperScore(fri, sat, friday, saturday),
		Trials:   0,
	}, nil
}
