package metadata

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/sqlmeta/internal/schema"
)

// Source is an open connection the Introspector can describe.
type Source interface {
	Querier() Querier
	Provider() Provider
	DatabaseName() string
}

// Run describes one completed introspection, successful or not.
type Run struct {
	ID        string
	Provider  Provider
	Database  string
	Schema    string
	DSN       string
	Tables    int
	Columns   int
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

// Recorder receives every Run. Implementations must not block for long.
type Recorder interface {
	Record(ctx context.Context, run Run) error
}

// Result is the outcome of Describe.
type Result struct {
	RunID    string         `json:"run_id"`
	Provider Provider       `json:"provider"`
	Database string         `json:"database,omitempty"`
	Schema   string         `json:"schema,omitempty"`
	Tables   []schema.Table `json:"tables"`
	Summary  string         `json:"summary"`
	Duration time.Duration  `json:"-"`
}

// Introspector wraps GetMetadata with logging and run recording.
type Introspector struct {
	logger    *slog.Logger
	recorders []Recorder
	now       func() time.Time
}

// NewIntrospector returns an Introspector. A nil logger discards output.
func NewIntrospector(logger *slog.Logger, recorders ...Recorder) *Introspector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Introspector{
		logger:    logger,
		recorders: recorders,
		now:       time.Now,
	}
}

// dsnSource is implemented by connections that know their DSN. Recorders
// are responsible for redacting it.
type dsnSource interface {
	DSN() string
}

// Describe introspects src. The Summary field is identical to what
// GetMetadata returns for the same rows.
func (i *Introspector) Describe(ctx context.Context, src Source, schemaName string) (*Result, error) {
	p := src.Provider()
	run := Run{
		ID:        uuid.NewString(),
		Provider:  p,
		Database:  src.DatabaseName(),
		StartedAt: i.now(),
	}
	if ds, ok := src.(dsnSource); ok {
		run.DSN = ds.DSN()
	}
	run.Schema, _ = ResolveSchema(p, schemaName)

	i.logger.Debug("running catalog query",
		"run_id", run.ID, "provider", p, "schema", run.Schema, "database", run.Database)

	rows, err := Fetch(ctx, src.Querier(), p, schemaName)
	run.Duration = i.now().Sub(run.StartedAt)
	if err != nil {
		run.Err = err
		i.logger.Error("introspection failed",
			"run_id", run.ID, "provider", p, "error", err)
		i.record(ctx, run)
		return nil, err
	}

	tables := Fold(rows)
	run.Tables = len(tables)
	run.Columns = len(rows)
	i.logger.Info("introspection complete",
		"run_id", run.ID, "provider", p, "schema", run.Schema,
		"tables", run.Tables, "columns", run.Columns, "duration", run.Duration)
	i.record(ctx, run)

	return &Result{
		RunID:    run.ID,
		Provider: p,
		Database: run.Database,
		Schema:   run.Schema,
		Tables:   tables,
		Summary:  Format(tables),
		Duration: run.Duration,
	}, nil
}

// record runs even when ctx is already cancelled or past its deadline;
// those runs are recorded too.
func (i *Introspector) record(ctx context.Context, run Run) {
	ctx = context.WithoutCancel(ctx)
	for _, r := range i.recorders {
		if r == nil {
			continue
		}
		if err := r.Record(ctx, run); err != nil {
			i.logger.Warn("could not record run", "run_id", run.ID, "error", err)
		}
	}
}
