package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
)

type Engine string

const (
	EngineSQLite   Engine = "sqlite"
	EnginePostgres Engine = "postgres"
)

var ErrUnsupportedEngine = errors.New("unsupported database engine")

// ResolveEngine maps a configured driver name to the engine whose statements
// the optimizer runs.
func ResolveEngine(driver string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return EngineSQLite, nil
	case "postgres", "postgresql", "pgx":
		return EnginePostgres, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedEngine, driver)
}

type Step string

const (
	StepFull      Step = "full"
	StepAnalyze   Step = "analyze"
	StepCache     Step = "cache"
	StepIntegrity Step = "integrity"
)

type Options struct {
	Full    bool
	Analyze bool
	Cache   bool
	All     bool
}

// Steps returns the steps to run in execution order. No selection means
// analyze only.
func (o Options) Steps() []Step {
	if o.All {
		return []Step{StepFull, StepAnalyze, StepCache, StepIntegrity}
	}
	var steps []Step
	if o.Full {
		steps = append(steps, StepFull)
	}
	if o.Analyze {
		steps = append(steps, StepAnalyze)
	}
	if o.Cache {
		steps = append(steps, StepCache)
	}
	if len(steps) == 0 {
		steps = []Step{StepAnalyze}
	}
	return steps
}

type Optimizer struct {
	db     *sqlx.DB
	engine Engine
	logger *slog.Logger
}

func NewOptimizer(db *sqlx.DB, engine Engine, logger *slog.Logger) *Optimizer {
	return &Optimizer{db: db, engine: engine, logger: logger}
}

// Run executes the selected steps in order and stops at the first failure.
// Nothing is rolled back: statements that already ran stay applied.
func (o *Optimizer) Run(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{Engine: o.engine}

	for _, step := range opts.Steps() {
		o.logger.InfoContext(ctx, "running optimization step", "step", step, "engine", o.engine)

		var err error
		switch step {
		case StepFull:
			err = o.vacuum(ctx, report)
		case StepAnalyze:
			err = o.analyze(ctx, report)
		case StepCache:
			err = o.tuneCache(ctx, report)
		case StepIntegrity:
			err = o.checkIntegrity(ctx, report)
		}
		if err != nil {
			report.fail(step, err.Error())
			o.logger.ErrorContext(ctx, "optimization step failed", "step", step, "error", err)
			return report, fmt.Errorf("%s step: %w", step, err)
		}
	}
	return report, nil
}

func (o *Optimizer) exec(ctx context.Context, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := o.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

func (o *Optimizer) vacuum(ctx context.Context, report *Report) error {
	if o.engine == EnginePostgres {
		if err := o.exec(ctx, "VACUUM ANALYZE"); err != nil {
			return err
		}
		report.pass(StepFull, "VACUUM ANALYZE completed")
		return nil
	}

	before, err := o.sqliteSize(ctx)
	if err != nil {
		return err
	}
	if err := o.exec(ctx, "VACUUM"); err != nil {
		return err
	}
	after, err := o.sqliteSize(ctx)
	if err != nil {
		return err
	}
	report.pass(StepFull, fmt.Sprintf("VACUUM completed, size %s -> %s", formatBytes(before), formatBytes(after)))
	return nil
}

func (o *Optimizer) sqliteSize(ctx context.Context) (int64, error) {
	var pages, pageSize int64
	if err := o.db.GetContext(ctx, &pages, "PRAGMA page_count"); err != nil {
		return 0, fmt.Errorf("PRAGMA page_count: %w", err)
	}
	if err := o.db.GetContext(ctx, &pageSize, "PRAGMA page_size"); err != nil {
		return 0, fmt.Errorf("PRAGMA page_size: %w", err)
	}
	return pages * pageSize, nil
}

func (o *Optimizer) analyze(ctx context.Context, report *Report) error {
	if o.engine == EnginePostgres {
		if err := o.exec(ctx, "ANALYZE"); err != nil {
			return err
		}
		report.pass(StepAnalyze, "ANALYZE completed")
		return nil
	}

	if err := o.exec(ctx, "ANALYZE", "PRAGMA optimize"); err != nil {
		return err
	}
	report.pass(StepAnalyze, "ANALYZE and PRAGMA optimize completed")
	return nil
}

func (o *Optimizer) tuneCache(ctx context.Context, report *Report) error {
	if o.engine == EnginePostgres {
		report.skip(StepCache, "cache settings are managed by the postgres server configuration")
		return nil
	}

	var mode string
	if err := o.db.GetContext(ctx, &mode, "PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("PRAGMA journal_mode=WAL: %w", err)
	}
	if err := o.exec(ctx,
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000",
		"PRAGMA temp_store=MEMORY",
	); err != nil {
		return err
	}
	report.pass(StepCache, fmt.Sprintf("journal_mode=%s (stored in the file); synchronous=NORMAL cache_size=64MB temp_store=MEMORY (this connection only)", mode))
	return nil
}

// sessionParams are the go-sqlite3 DSN parameters for the per-connection
// pragmas tuneCache sets. temp_store has no DSN form.
var sessionParams = []struct{ key, value string }{
	{"_synchronous", "NORMAL"},
	{"_cache_size", "-64000"},
}

// SessionDSN adds the connection-scoped cache tuning to a sqlite source so
// every pooled connection opens with it. Parameters already present win.
func SessionDSN(source string) string {
	for _, p := range sessionParams {
		if strings.Contains(source, p.key+"=") {
			continue
		}
		sep := "?"
		if strings.Contains(source, "?") {
			sep = "&"
		}
		source += sep + p.key + "=" + p.value
	}
	return source
}

func (o *Optimizer) checkIntegrity(ctx context.Context, report *Report) error {
	if o.engine == EnginePostgres {
		report.skip(StepIntegrity, "no integrity check for postgres")
		return nil
	}

	var rows []string
	if err := o.db.SelectContext(ctx, &rows, "PRAGMA integrity_check"); err != nil {
		return fmt.Errorf("PRAGMA integrity_check: %w", err)
	}
	if len(rows) != 1 || rows[0] != "ok" {
		return fmt.Errorf("integrity check failed: %s", strings.Join(rows, "; "))
	}
	report.pass(StepIntegrity, "integrity check ok")
	return nil
}
