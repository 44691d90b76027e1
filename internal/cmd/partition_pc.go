package cmd

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/pcsplit/internal/errors"
	"github.com/Iron-Ham/pcsplit/internal/partition"
	"github.com/Iron-Ham/pcsplit/internal/report"
)

var partitionPCCmd = &cobra.Command{
	Use:   "partition-pc",
	Short: "Split the program committee into Friday and Saturday groups",
	Long: `Split the primary committee into two groups with balanced topic expertise.

Members tagged with a fixed day stay on it. Either members sit on exactly one
day and Both members on one day or both. The best split of the trial budget
is written to friday_group.txt, saturday_group.txt and diff_group.txt.

Strategies:
  smart   move members toward the day lacking a sampled unbalanced topic
  random  place flexible members by coin flips`,
	RunE: runPartitionPC,
}

var partitionPCTrials int

func init() {
	partitionPCCmd.Flags().String("strategy", "", "partition strategy (smart, random)")
	partitionPCCmd.Flags().IntVar(&partitionPCTrials, "trials", 0, "number of candidate splits (default from config)")
	partitionPCCmd.Flags().Uint64("seed", 0, "fix the search seed (0 picks one from the clock)")
	rootCmd.AddCommand(partitionPCCmd)
}

func runPartitionPC(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	strategy, err := partition.ParseStrategy(a.cfg.Partition.Strategy)
	if err != nil {
		return err
	}
	trials := partitionPCTrials
	if trials < 1 {
		trials = a.cfg.Partition.MemberTrials
		if strategy == partition.StrategyRandom {
			trials = a.cfg.Partition.RandomTrials
		}
	}

	roster, err := a.roster()
	if err != nil {
		return err
	}
	tags := a.tags()
	primary := roster.Primary()
	pools := partition.Split(roster.Members(), tags)
	for _, m := range pools.Unplaced {
		a.logger.Warn("member has no scheduling tag", "member", m.Name)
	}
	// Untagged members are reported in the summary rather than failing the
	// completeness check below.
	placed := slices.Concat(pools.Friday, pools.Saturday, pools.Either, pools.Both)
	if len(placed) == 0 {
		return errors.NewValidationError("no committee member carries a scheduling tag").WithField("tags")
	}

	p, finish := a.partitioner(trials, "partition-pc", a.cfg.Partition.Seed)
	res, err := p.Members(strategy, pools)
	finish()
	if err != nil {
		return err
	}

	if err := errors.Join(
		partition.VerifyGroup(res.Friday, partition.Friday, tags),
		partition.VerifyGroup(res.Saturday, partition.Saturday, tags),
		partition.VerifyComplete(res.Friday, res.Saturday, placed, tags),
	); err != nil {
		return err
	}

	if err := a.write(fileFridayGroup, func(w io.Writer) error {
		return report.WriteGroup(w, "Friday", res.Friday, primary)
	}); err != nil {
		return err
	}
	if err := a.write(fileSaturdayGroup, func(w io.Writer) error {
		return report.WriteGroup(w, "Saturday", res.Saturday, primary)
	}); err != nil {
		return err
	}
	if err := a.write(fileDiffGroup, func(w io.Writer) error {
		return report.WriteDiff(w, res.Friday, res.Saturday, primary)
	}); err != nil {
		return err
	}

	fmt.Fprint(a.stdout, a.render.Members(report.MemberSummary{
		Strategy: string(strategy),
		Seed:     res.Seed,
		Score:    res.Score,
		Trial:    res.Trial,
		Trials:   res.Trials,
		Friday:   res.Friday,
		Saturday: res.Saturday,
		Missing:  pools.Unplaced,
	}))
	fmt.Fprintf(a.stdout, "Wrote %s and %s\n", a.out.Path(fileFridayGroup), a.out.Path(fileSaturdayGroup))
	return nil
}
