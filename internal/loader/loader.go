// Package loader reads the committee roster, the submission export and the
// institution alias list.
package loader

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"golang.org/x/sync/errgroup"

	"github.com/Iron-Ham/pcsplit/internal/committee"
	"github.com/Iron-Ham/pcsplit/internal/errors"
	"github.com/Iron-Ham/pcsplit/internal/logging"
	"github.com/Iron-Ham/pcsplit/internal/registry"
)

// Defaults for roster parsing.
const (
	DefaultTopicPrefix        = "topic:"
	DefaultMinTopicPreference = 2
)

// Roster columns that must be present.
var requiredRosterColumns = []string{"first", "last", "email"}

// Loader reads input files from a filesystem.
type Loader struct {
	fs            afero.Fs
	noiseWords    []string
	topicPrefix   string
	minPreference int
	logger        *logging.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithFs sets the filesystem. The default is the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(l *Loader) { l.fs = fs }
}

// WithNoiseWords sets the words stripped from institution aliases.
func WithNoiseWords(words []string) Option {
	return func(l *Loader) { l.noiseWords = words }
}

// WithTopicPrefix sets the prefix that marks topic preference columns.
func WithTopicPrefix(prefix string) Option {
	return func(l *Loader) { l.topicPrefix = prefix }
}

// WithMinTopicPreference sets the lowest preference that counts as
// expertise.
func WithMinTopicPreference(n int) Option {
	return func(l *Loader) { l.minPreference = n }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(lg *logging.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// New returns a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		fs:            afero.NewOsFs(),
		topicPrefix:   DefaultTopicPrefix,
		minPreference: DefaultMinTopicPreference,
		logger:        logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fs returns the filesystem the loader reads from.
func (l *Loader) Fs() afero.Fs {
	return l.fs
}

// Inputs names the three input files.
type Inputs struct {
	Papers       string
	Roster       string
	Institutions string
}

// Dataset is everything read from the inputs, not yet resolved.
type Dataset struct {
	Registry *registry.Registry
	Roster   *committee.Roster
	Papers   []*committee.Paper
}

// PaperIndex maps paper IDs to papers.
func (d *Dataset) PaperIndex() map[int]*committee.Paper {
	idx := make(map[int]*committee.Paper, len(d.Papers))
	for _, p := range d.Papers {
		idx[p.ID] = p
	}
	return idx
}

// Load reads the three inputs concurrently. The first failure cancels the
// rest.
func (l *Loader) Load(ctx context.Context, in Inputs) (*Dataset, error) {
	var ds Dataset
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		reg, err := l.ReadInstitutions(in.Institutions)
		ds.Registry = reg
		return err
	})
	g.Go(func() error {
		roster, err := l.ReadRoster(in.Roster)
		ds.Roster = roster
		return err
	})
	g.Go(func() error {
		papers, err := l.ReadPapers(in.Papers)
		ds.Papers = papers
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	l.logger.Info("inputs loaded",
		"institutions", ds.Registry.Len(),
		"members", ds.Roster.Len(),
		"papers", len(ds.Papers),
	)
	return &ds, nil
}

// ReadInstitutions reads one alias group per line. The first alias is the
// display name.
func (l *Loader) ReadInstitutions(path string) (*registry.Registry, error) {
	f, err := l.fs.Open(path)
	if err != nil {
		return nil, errors.NewInputError("open institutions", err).WithFile(path)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	b := registry.NewBuilder(l.noiseWords)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewInputError("parse institutions", errors.Join(errors.ErrMalformedRecord, err)).
				WithFile(path).
				WithLine(parseLine(err))
		}
		if b.Add(rec...) == registry.NotFound {
			line, _ := r.FieldPos(0)
			l.logger.Warn("institution line has no usable alias", "file", path, "line", line)
		}
	}
	reg := b.Build()
	if reg.Len() == 0 {
		return nil, errors.NewInputError("no institutions", errors.ErrEmptyInput).WithFile(path)
	}
	return reg, nil
}

// ReadRoster reads the committee roster CSV. Topic columns are named with
// the topic prefix; a topic counts as expertise when its preference is at
// least the configured minimum. Empty preferences are skipped.
func (l *Loader) ReadRoster(path string) (*committee.Roster, error) {
	f, err := l.fs.Open(path)
	if err != nil {
		return nil, errors.NewInputError("open roster", err).WithFile(path)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 0

	header, err := r.Read()
	if err == io.EOF {
		return nil, errors.NewInputError("empty roster", errors.ErrEmptyInput).WithFile(path)
	}
	if err != nil {
		return nil, errors.NewInputError("parse roster header", errors.Join(errors.ErrMalformedRecord, err)).
			WithFile(path).
			WithLine(1)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, c := range requiredRosterColumns {
		if _, ok := cols[c]; !ok {
			return nil, errors.NewInputError("roster header", errors.ErrMissingColumn).
				WithFile(path).
				WithLine(1).
				WithField(c)
		}
	}

	roster := committee.NewRoster()
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewInputError("parse roster", errors.Join(errors.ErrMalformedRecord, err)).
				WithFile(path).
				WithLine(parseLine(err))
		}
		line, _ := r.FieldPos(0)
		field := func(name string) string {
			if i, ok := cols[name]; ok {
				return rec[i]
			}
			return ""
		}

		m := committee.NewMember(field("first"), field("last"), field("email"),
			field("affiliation"), field("collaborators"), field("tags"))
		// Group listings and review files name reviewers, so names must be
		// unique to read back.
		if prev, ok := roster.ByName(m.Name); ok {
			return nil, errors.NewInputError("duplicate reviewer name",
				errors.Wrapf(errors.ErrMalformedRecord, "%s already listed as %s", m.Name, prev.Email)).
				WithFile(path).
				WithLine(line).
				WithField("last")
		}
		for i, h := range header {
			topic, ok := l.topicName(h)
			if !ok {
				continue
			}
			pref := strings.TrimSpace(rec[i])
			if pref == "" {
				continue
			}
			n, err := cast.ToIntE(pref)
			if err != nil {
				return nil, errors.NewInputError("topic preference", errors.Join(errors.ErrMalformedRecord, err)).
					WithFile(path).
					WithLine(line).
					WithField(h)
			}
			if n >= l.minPreference {
				m.Topics = append(m.Topics, topic)
			}
		}
		roster.Add(m)
	}
	if roster.Len() == 0 {
		return nil, errors.NewInputError("no committee members", errors.ErrEmptyInput).WithFile(path)
	}
	l.logger.Debug("roster read", "file", path, "members", roster.Len())
	return roster, nil
}

// parseLine returns the line a csv error starts on, or 0.
func parseLine(err error) int {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.StartLine
	}
	return 0
}

func (l *Loader) topicName(column string) (string, bool) {
	if !strings.HasPrefix(column, l.topicPrefix) {
		return "", false
	}
	return strings.TrimSpace(column[len(l.topicPrefix):]), true
}

type paperRecord struct {
	PID           *int                       `json:"pid"`
	Title         string                     `json:"title"`
	Abstract      string                     `json:"abstract"`
	Authors       []committee.AuthorRecord   `json:"authors"`
	Collaborators string                     `json:"collaborators"`
	Topics        map[string]json.RawMessage `json:"topics"`
	PCConflicts   map[string]json.RawMessage `json:"pc_conflicts"`
}

// ReadPapers reads the submission export: a JSON array of papers. Topics
// and declared conflicts are the keys of their objects, taken in sorted
// order. Papers come back ordered by ID.
func (l *Loader) ReadPapers(path string) ([]*committee.Paper, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, errors.NewInputError("open submissions", err).WithFile(path)
	}

	var records []paperRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.NewInputError("parse submissions", errors.Join(errors.ErrMalformedRecord, err)).
			WithFile(path)
	}

	seen := make(map[int]bool, len(records))
	papers := make([]*committee.Paper, 0, len(records))
	for i, rec := range records {
		if rec.PID == nil {
			return nil, errors.NewInputError("submission without pid", errors.ErrMalformedRecord).
				WithFile(path).
				WithLine(i + 1).
				WithField("pid")
		}
		if seen[*rec.PID] {
			return nil, errors.NewInputError("duplicate pid", errors.ErrMalformedRecord).
				WithFile(path).
				WithLine(i + 1).
				WithField("pid")
		}
		seen[*rec.PID] = true

		p := committee.NewPaper(*rec.PID, rec.Title)
		p.Abstract = rec.Abstract
		p.RawAuthors = rec.Authors
		p.Collaborators = committee.UnresolvedConflicts(rec.Collaborators)
		p.Topics = slices.Sorted(maps.Keys(rec.Topics))
		p.DeclaredEmails = slices.Sorted(maps.Keys(rec.PCConflicts))
		papers = append(papers, p)
	}
	if len(papers) == 0 {
		return nil, errors.NewInputError("no submissions", errors.ErrEmptyInput).WithFile(path)
	}
	committee.SortPapers(papers)
	l.logger.Debug("submissions read", "file", path, "papers", len(papers))
	return papers, nil
}
