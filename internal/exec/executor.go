// Package exec runs a validated plan against a schema and writes the
// generated tables.
package exec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mmrzaf/datalchemy/internal/domain"
	"github.com/mmrzaf/datalchemy/internal/foreign"
	"github.com/mmrzaf/datalchemy/internal/infra/targets/sqlite"
	"github.com/mmrzaf/datalchemy/internal/logging"
	"github.com/mmrzaf/datalchemy/internal/output"
	"github.com/mmrzaf/datalchemy/internal/planner"
	"github.com/mmrzaf/datalchemy/internal/registry"
)

const runDirTimeLayout = "20060102T150405Z"

type Executor struct {
	genRegistry *registry.GeneratorRegistry
	logger      *logging.Logger
	opts        Options
	now         func() time.Time
}

func NewExecutor(genRegistry *registry.GeneratorRegistry, logger *logging.Logger, opts Options) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{
		genRegistry: genRegistry,
		logger:      logger.WithComponent("exec"),
		opts:        opts.withDefaults(),
		now:         time.Now,
	}
}

// Result describes a finished or failed run. Report is always set once the
// run directory exists.
type Result struct {
	RunID        string
	RunDir       string
	Strict       bool
	Tasks        []domain.GenerationTask
	Report       *domain.GenerationReport
	BytesWritten int64
}

// Execute generates every planned table in FK order. The report is written
// on success and on failure; a failed run returns the partial result with
// the error.
func (e *Executor) Execute(ctx context.Context, schema *domain.DatabaseSchema, plan *domain.Plan) (*Result, error) {
	opts := e.opts
	strict := opts.Strict
	if s, ok := plan.Strict(); ok {
		strict = s
	}
	if opts.StrictOverride != nil {
		strict = *opts.StrictOverride
	}
	autoParents := opts.AutoGenerateParents
	if a, ok := plan.AutoGenerateParents(); ok {
		autoParents = a
	}

	started := e.now().UTC()
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	runDir := filepath.Join(opts.OutDir, fmt.Sprintf("%s__run_%s", started.Format(runDirTimeLayout), runID))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run dir: %w", err)
	}

	resolved := normalizePlan(plan)
	if err := output.WriteJSON(filepath.Join(runDir, output.ResolvedPlanFile), resolved); err != nil {
		return nil, err
	}

	report := domain.NewGenerationReport(runID, started)
	result := &Result{RunID: runID, RunDir: runDir, Strict: strict, Report: report}
	log := e.logger.With(map[string]any{"run_id": runID})
	log.Infow("run.started", map[string]any{"seed": plan.Seed, "strict": strict, "out_dir": runDir})

	err := e.run(ctx, schema, resolved, strict, autoParents, result, log)
	report.Finish(e.now().UTC())
	if err != nil {
		report.AddUnsupported(domain.Issue{Code: "generation_failed", Message: err.Error()})
	}
	if werr := output.WriteJSON(filepath.Join(runDir, output.ReportFile), report); werr != nil && err == nil {
		err = werr
	}

	if err != nil {
		log.Errorw("run.failed", map[string]any{"error": err.Error()})
		return result, err
	}
	log.Infow("run.completed", map[string]any{
		"tables":        len(report.Tables),
		"rows":          report.TotalRows(),
		"retries":       report.RetriesTotal,
		"bytes_written": result.BytesWritten,
	})
	return result, nil
}

func (e *Executor) run(ctx context.Context, schema *domain.DatabaseSchema, plan *domain.Plan, strict, autoParents bool, result *Result, log *logging.Logger) error {
	idx, err := buildPlanIndex(schema, plan, e.genRegistry, strict, result.Report)
	if err != nil {
		return err
	}
	tasks, err := planner.PlanTables(schema, plan, autoParents)
	if err != nil {
		return err
	}
	result.Tasks = tasks

	var exporter *sqlite.Exporter
	if e.opts.SQLiteExport {
		exporter = sqlite.NewExporter(filepath.Join(result.RunDir, output.SQLiteFile))
		if err := exporter.Connect(); err != nil {
			return fmt.Errorf("failed to open sqlite export: %w", err)
		}
		defer exporter.Close()
	}

	state := &runState{
		plan:     plan,
		idx:      idx,
		registry: e.genRegistry,
		foreign:  foreign.NewContext(),
		report:   result.Report,
		log:      log,
		opts:     e.opts,
		strict:   strict,
		warned:   make(map[string]bool),
	}

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		table, ok := schema.FindTable(task.Schema, task.Table)
		if !ok {
			return domain.InvalidPlanf("table %s not found in schema", task.Key())
		}
		tc, err := newTableContext(schema, task.Schema, table, idx)
		if err != nil {
			return err
		}

		start := time.Now()
		log.Infow("table.started", map[string]any{"table": task.Key(), "rows": task.Rows})
		rows, retries, err := state.generateTable(tc, task.Rows, plan.Seed)
		if err != nil {
			return fmt.Errorf("table %s: %w", task.Key(), err)
		}

		path := filepath.Join(result.RunDir, output.TableFileName(task.Schema, task.Table))
		n, err := output.WriteTableCSV(path, table, rows)
		if err != nil {
			return err
		}
		result.BytesWritten += n
		if exporter != nil {
			if err := exporter.ExportTable(task.Schema, table, rows); err != nil {
				return err
			}
		}

		state.foreign.Ingest(task.Schema, table, rows)
		result.Report.AddTable(domain.TableReport{
			Schema:        task.Schema,
			Table:         task.Table,
			RowsRequested: task.Rows,
			RowsGenerated: int64(len(rows)),
			Retries:       retries,
		})
		log.Infow("table.completed", map[string]any{
			"table":       task.Key(),
			"rows":        len(rows),
			"retries":     retries,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
	return nil
}

// runState is the mutable state of one run. Tables are generated one at a
// time; the foreign context only grows between tables.
type runState struct {
	plan     *domain.Plan
	idx      *planIndex
	registry *registry.GeneratorRegistry
	foreign  *foreign.Context
	report   *domain.GenerationReport
	log      *logging.Logger
	opts     Options
	strict   bool
	warned   map[string]bool
}

// warnOnce records a warning the first time key is seen in the run.
func (r *runState) warnOnce(key string, issue domain.Issue) {
	if r.warned[key] {
		return
	}
	r.warned[key] = true
	r.report.AddWarning(issue)
	r.log.Warnw(issue.Code, map[string]any{
		"schema":  issue.Schema,
		"table":   issue.Table,
		"column":  issue.Column,
		"message": issue.Message,
	})
}

var errAttemptFailed = errors.New("table attempt failed")
