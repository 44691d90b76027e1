package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/schollz/progressbar/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/pcsplit/internal/committee"
	"github.com/Iron-Ham/pcsplit/internal/config"
	"github.com/Iron-Ham/pcsplit/internal/loader"
	"github.com/Iron-Ham/pcsplit/internal/logging"
	"github.com/Iron-Ham/pcsplit/internal/partition"
	"github.com/Iron-Ham/pcsplit/internal/report"
	"github.com/Iron-Ham/pcsplit/internal/resolve"
)

// Output file names inside the output directory.
const (
	fileCollaboratorReview = "collaborator_review.txt"
	fileUpdatesCombined    = "update_combined.csv"
	fileFridayGroup        = "friday_group.txt"
	fileSaturdayGroup      = "saturday_group.txt"
	fileDiffGroup          = "diff_group.txt"
	fileFridayPapers       = "friday_papers.txt"
	fileSaturdayPapers     = "saturday_papers.txt"
	fileFridaySheet        = "friday_papers.csv"
	fileSaturdaySheet      = "saturday_papers.csv"
	fileTagUpdates         = "tag_updates.csv"
	fileTopicSheet         = "topics.csv"
)

// fs is the filesystem every command reads and writes. Tests swap it.
var fs afero.Fs = afero.NewOsFs()

// app bundles what a command needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	out    *report.Dir
	render *report.Renderer
	stdout io.Writer
	stderr io.Writer
}

func newApp(cmd *cobra.Command) (*app, error) {
	bindCommandFlags(cmd)
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := logging.NopLogger()
	if cfg.Logging.Enabled {
		if logger, err = logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level); err != nil {
			return nil, err
		}
	}

	color := cfg.Output.Color
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		color = false
	}

	return &app{
		cfg:    cfg,
		logger: logger.With("command", cmd.Name()),
		out:    report.NewDir(fs, cfg.Output.Dir),
		render: report.NewRenderer(cmd.OutOrStdout(), color),
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
	}, nil
}

func (a *app) close() {
	_ = a.logger.Close()
}

func (a *app) loader() *loader.Loader {
	return loader.New(
		loader.WithFs(fs),
		loader.WithNoiseWords(a.cfg.Matching.NoiseWords),
		loader.WithTopicPrefix(a.cfg.Roster.TopicPrefix),
		loader.WithMinTopicPreference(a.cfg.Roster.MinTopicPreference),
		loader.WithLogger(a.logger.WithStep("load")),
	)
}

func (a *app) tags() partition.Tags {
	return partition.Tags{
		Friday:   a.cfg.Tags.Friday,
		Saturday: a.cfg.Tags.Saturday,
		Both:     a.cfg.Tags.Both,
		Either:   a.cfg.Tags.Either,
	}
}

// workspace is the loaded and resolved input.
type workspace struct {
	*loader.Dataset
	resolver *resolve.Resolver
	index    map[int]*committee.Paper
}

// prepare loads every input, resolves reviewer affiliations and conflicts
// and links each paper's declared conflicts and authors.
func (a *app) prepare(ctx context.Context) (*workspace, error) {
	ds, err := a.loader().Load(ctx, loader.Inputs{
		Papers:       a.cfg.Inputs.Papers,
		Roster:       a.cfg.Inputs.Roster,
		Institutions: a.cfg.Inputs.Institutions,
	})
	if err != nil {
		return nil, err
	}

	res := resolve.New(ds.Registry,
		resolve.WithInstitutionThreshold(a.cfg.Matching.InstitutionThreshold),
		resolve.WithCollaboratorThreshold(a.cfg.Matching.CollaboratorThreshold),
		resolve.WithLogger(a.logger.WithStep("resolve")),
	)
	for _, m := range ds.Roster.Members() {
		res.ProcessMember(m)
	}
	for _, p := range ds.Papers {
		if err := res.ProcessPaper(p, ds.Roster); err != nil {
			return nil, err
		}
	}
	return &workspace{Dataset: ds, resolver: res, index: ds.PaperIndex()}, nil
}

// roster loads only the committee roster.
func (a *app) roster() (*committee.Roster, error) {
	return a.loader().ReadRoster(a.cfg.Inputs.Roster)
}

// partitioner builds a search over trials candidates. On a terminal a
// progress bar is drawn on stderr; the returned func finishes it.
func (a *app) partitioner(trials int, label string, seed uint64) (*partition.Partitioner, func()) {
	opts := []partition.Option{
		partition.WithTrials(trials),
		partition.WithWorkers(a.cfg.Partition.Workers),
		partition.WithBothProbability(a.cfg.Partition.BothProbability),
		partition.WithSmartBothProbability(a.cfg.Partition.SmartBothProbability),
		partition.WithRules(partition.Rules{
			SaturdayPrefixes: a.cfg.Partition.SaturdayTopicPrefixes,
			FridayPrefixes:   a.cfg.Partition.FridayTopicPrefixes,
		}),
		partition.WithLogger(a.logger.WithStep("partition")),
	}
	if seed != 0 {
		opts = append(opts, partition.WithSeed(seed))
	}

	finish := func() {}
	if f, ok := a.stderr.(*os.File); ok && term.IsTerminal(f.Fd()) {
		bar := progressbar.NewOptions(trials,
			progressbar.OptionSetWriter(f),
			progressbar.OptionSetDescription(label),
			progressbar.OptionShowCount(),
		)
		opts = append(opts, partition.WithProgress(func() { _ = bar.Add(1) }))
		finish = func() {
			_ = bar.Finish()
			_, _ = io.WriteString(f, "\n")
		}
	}
	return partition.New(opts...), finish
}

// readGroup reads a group listing from path.
func readGroup(path string, roster *committee.Roster) ([]*committee.Member, error) {
	var group []*committee.Member
	err := report.Open(fs, path, func(r io.Reader) error {
		var err error
		group, err = report.ReadGroup(r, roster)
		return err
	})
	return group, err
}

func (a *app) write(name string, fn func(io.Writer) error) error {
	path, err := a.out.Create(name, fn)
	if err != nil {
		return err
	}
	a.logger.Info("report written", "path", path)
	return nil
}
