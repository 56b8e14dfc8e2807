// Package runlog records run metadata in a SQLite database so past runs can
// be listed and compared. Gridded values are never stored.
package runlog

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/blockminmax/internal/monitoring"
	"github.com/banshee-data/blockminmax/internal/pipeline"
	"github.com/banshee-data/blockminmax/internal/version"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeLayout is fixed width so started_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Run is one row of the runs table.
type Run struct {
	ID         string
	StartedAt  time.Time
	Version    string
	InputPath  string
	OutputPath string
	Region     string
	Inc        float64
	Mode       string
	Addressing string
	Update     string
	Format     string
	NX, NY     int
	Lines      int
	Records    int
	Skipped    int
	Dropped    int
	Occupied   int
	Bytes      int64
	Elapsed    time.Duration
}

// NewRun builds a Run from a completed pipeline run.
func NewRun(cfg pipeline.Config, sum pipeline.Summary) Run {
	o := cfg.Engine
	return Run{
		StartedAt:  sum.Started,
		Version:    version.String(),
		InputPath:  cfg.InputPath,
		OutputPath: cfg.OutputPath,
		Region:     o.Region.String(),
		Inc:        o.Inc,
		Mode:       o.Mode.String(),
		Addressing: o.Addressing.String(),
		Update:     o.Update.String(),
		Format:     o.Format.String(),
		NX:         sum.NX,
		NY:         sum.NY,
		Lines:      sum.Lines,
		Records:    sum.Records,
		Skipped:    sum.Skipped,
		Dropped:    sum.Dropped,
		Occupied:   sum.Occupied,
		Bytes:      sum.Bytes,
		Elapsed:    sum.Elapsed,
	}
}

// Store is a run log backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the run log at path and applies pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure run log: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}
	// m is not closed: that would close db.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// migrateLogger implements migrate.Logger.
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Logf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts run, assigning a new ID when run.ID is empty, and returns
// the stored ID.
func (s *Store) Record(run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`
		INSERT INTO runs (
			run_id, started_at, version, input_path, output_path, region, inc,
			mode, addressing, update_rule, format, nx, ny,
			lines, records, skipped, dropped, occupied, bytes, elapsed_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(timeLayout), run.Version,
		run.InputPath, run.OutputPath, run.Region, run.Inc,
		run.Mode, run.Addressing, run.Update, run.Format, run.NX, run.NY,
		run.Lines, run.Records, run.Skipped, run.Dropped, run.Occupied,
		run.Bytes, run.Elapsed.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return run.ID, nil
}

// List returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT run_id, started_at, version, input_path, output_path, region, inc,
			mode, addressing, update_rule, format, nx, ny,
			lines, records, skipped, dropped, occupied, bytes, elapsed_ms
		FROM runs
		ORDER BY started_at DESC, run_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r         Run
			started   string
			elapsedMS int64
		)
		if err := rows.Scan(
			&r.ID, &started, &r.Version, &r.InputPath, &r.OutputPath, &r.Region, &r.Inc,
			&r.Mode, &r.Addressing, &r.Update, &r.Format, &r.NX, &r.NY,
			&r.Lines, &r.Records, &r.Skipped, &r.Dropped, &r.Occupied, &r.Bytes, &elapsedMS,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("run %s: bad started_at %q: %w", r.ID, started, err)
		}
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
