// Package store keeps snapshots of conflict detection runs in SQLite so that
// later stages can reuse them without repeating the fuzzy matching.
package store

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Iron-Ham/pcsplit/internal/committee"
	"github.com/Iron-Ham/pcsplit/internal/errors"
	"github.com/Iron-Ham/pcsplit/internal/logging"
	"github.com/Iron-Ham/pcsplit/internal/resolve"
)

// timeLayout keeps stored times sortable as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// StepDeclared labels conflicts that were declared at submission.
const StepDeclared = "declared"

// StepImported labels conflicts added to a paper that no detection step
// found, such as updates merged from an earlier manual round.
const StepImported = "imported"

// Run describes one saved detection run.
type Run struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Papers    int
	Conflicts int
}

// Record is one stored paper/member conflict. Members are stored by email
// because member IDs depend on roster order.
type Record struct {
	PaperID int
	Email   string
	Step    string
}

// Store is a SQLite database of detection runs.
type Store struct {
	db     *sql.DB
	logger *logging.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces the clock used to stamp runs.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open creates or opens the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open store %s", path)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "open store %s", path)
	}

	s := &Store{db: db, logger: logging.NopLogger(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init store schema")
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			papers INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS conflicts (
			run_id TEXT NOT NULL REFERENCES runs(id),
			paper_id INTEGER NOT NULL,
			email TEXT NOT NULL,
			step TEXT NOT NULL,
			PRIMARY KEY (run_id, paper_id, email, step)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_conflicts_run ON conflicts(run_id);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun stores every paper's declared conflicts, the new conflicts each
// step found and any other conflict the paper carries, under a fresh run ID.
func (s *Store) SaveRun(ctx context.Context, papers []*committee.Paper, findings resolve.Findings, roster *committee.Roster) (Run, error) {
	run := Run{ID: uuid.New(), CreatedAt: s.now().UTC(), Papers: len(papers)}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, errors.Wrap(err, "begin run")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, papers) VALUES (?, ?, ?)`,
		run.ID.String(), run.CreatedAt.Format(timeLayout), run.Papers,
	); err != nil {
		return Run{}, errors.Wrap(err, "insert run")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO conflicts (run_id, paper_id, email, step) VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, paper_id, email, step) DO NOTHING
	`)
	if err != nil {
		return Run{}, errors.Wrap(err, "prepare conflicts")
	}
	defer func() { _ = stmt.Close() }()

	insert := func(pid int, set committee.MemberSet, step string) error {
		for _, id := range set.Sorted() {
			m, ok := roster.Member(id)
			if !ok {
				continue
			}
			if _, err := stmt.ExecContext(ctx, run.ID.String(), pid, m.Email, step); err != nil {
				return errors.Wrapf(err, "insert conflict for paper %d", pid)
			}
			run.Conflicts++
		}
		return nil
	}

	for _, p := range papers {
		if err := insert(p.ID, p.Declared, StepDeclared); err != nil {
			return Run{}, err
		}
		imported := p.NewConflicts()
		for step, set := range findings[p.ID] {
			if err := insert(p.ID, set, string(step)); err != nil {
				return Run{}, err
			}
			imported = imported.Minus(set)
		}
		if err := insert(p.ID, imported, StepImported); err != nil {
			return Run{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, errors.Wrap(err, "commit run")
	}
	s.logger.Info("detection run saved", "run_id", run.ID.String(), "papers", run.Papers, "conflicts", run.Conflicts)
	return run, nil
}

// Runs lists the saved runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.created_at, r.papers, COUNT(c.paper_id)
		FROM runs r LEFT JOIN conflicts c ON c.run_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC, r.id
	`)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			id, created string
			run         Run
		)
		if err := rows.Scan(&id, &created, &run.Papers, &run.Conflicts); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, errors.Wrapf(err, "parse run id %q", id)
		}
		if run.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, errors.Wrapf(err, "parse run time %q", created)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Latest returns the newest run.
func (s *Store) Latest(ctx context.Context) (Run, error) {
	runs, err := s.Runs(ctx)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, errors.NewNotFoundError("run", "latest")
	}
	return runs[0], nil
}

// Records returns the conflicts stored for a run, ordered by paper, step
// and email.
func (s *Store) Records(ctx context.Context, runID uuid.UUID) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT paper_id, email, step FROM conflicts
		WHERE run_id = ?
		ORDER BY paper_id, step, email
	`, runID.String())
	if err != nil {
		return nil, errors.Wrap(err, "query conflicts")
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.PaperID, &r.Email, &r.Step); err != nil {
			return nil, errors.Wrap(err, "scan conflict")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Restore applies a run's conflicts to papers: each paper's conflicts
// become the stored ones, declared and inferred alike. Stored papers or
// emails that no longer exist are errors.
func (s *Store) Restore(ctx context.Context, runID uuid.UUID, papers map[int]*committee.Paper, roster *committee.Roster) error {
	records, err := s.Records(ctx, runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errors.NewNotFoundError("run", runID.String())
	}

	for _, p := range papers {
		p.ResetConflicts()
	}
	for _, r := range records {
		p, ok := papers[r.PaperID]
		if !ok {
			return errors.NewCrossReferenceError("stored conflict names unknown paper", errors.ErrPaperNotFound).
				WithRecord("run " + runID.String()).
				WithField("paper_id").
				WithKey(strconv.Itoa(r.PaperID))
		}
		m, ok := roster.ByEmail(r.Email)
		if !ok {
			return errors.NewCrossReferenceError("stored conflict names unknown member", errors.ErrMemberNotFound).
				WithRecord("run " + runID.String()).
				WithField("email").
				WithKey(r.Email)
		}
		p.Conflicts.Add(m.ID)
	}
	s.logger.Debug("conflicts restored", "run_id", runID.String(), "records", len(records))
	return nil
}
