package exec

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/mmrzaf/datalchemy/internal/checks"
	"github.com/mmrzaf/datalchemy/internal/domain"
	"github.com/mmrzaf/datalchemy/internal/hashing"
)

// generateTable runs up to MaxAttemptsTable whole-table attempts. A row that
// exhausts MaxAttemptsRow fails the attempt, or the run when strict. Running
// out of table attempts fails the run regardless of strict.
func (r *runState) generateTable(tc *tableContext, n int64, planSeed uint64) ([]domain.Row, int64, error) {
	if tc.fkMode == domain.FKDisable && !r.idx.allowFKDisable && len(tc.fks) > 0 {
		r.warnOnce("fk_disable_without_flag:"+tc.key, domain.Issue{
			Code:    "fk_disable_without_flag",
			Message: fmt.Sprintf("foreign keys disabled for %s without allow_fk_disable", tc.key),
			Schema:  tc.schema,
			Table:   tc.table.Name,
		})
	}
	if tc.checkMode == domain.ModeIgnore {
		for _, c := range tc.checks {
			if _, ok := checks.Parse(c.Expression); !ok {
				r.warnOnce("check_unsupported_ignored:"+tc.key+":"+c.Expression, domain.Issue{
					Code:    "check_unsupported_ignored",
					Message: fmt.Sprintf("unsupported CHECK %s ignored: %s", c.Name, c.Expression),
					Schema:  tc.schema,
					Table:   tc.table.Name,
				})
			}
		}
	}

	tableSeed := hashing.TableSeed(planSeed, tc.key)
	var retries int64
	var lastErr error
	for attempt := 0; attempt < r.opts.MaxAttemptsTable; attempt++ {
		rows, attemptRetries, err := r.tableAttempt(tc, n, tableSeed, attempt)
		retries += attemptRetries
		if err == nil {
			return rows, retries, nil
		}
		if !errors.Is(err, errAttemptFailed) {
			return nil, retries, err
		}
		lastErr = err
		r.log.Warnw("table.attempt_failed", map[string]any{
			"table":   tc.key,
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}
	return nil, retries, domain.Unsupportedf("failed to generate %s within %d table attempts: %v", tc.key, r.opts.MaxAttemptsTable, lastErr)
}

func (r *runState) tableAttempt(tc *tableContext, n int64, tableSeed uint64, tableAttempt int) ([]domain.Row, int64, error) {
	sets := tc.newUniqueSets()
	rows := make([]domain.Row, 0, n)
	var retries int64
	for i := int64(0); i < n; i++ {
		row, attempts, err := r.generateRow(tc, sets, tableSeed, i, tableAttempt)
		retries += int64(attempts - 1)
		if err != nil {
			return nil, retries, err
		}
		rows = append(rows, row)
	}
	return rows, retries, nil
}

// generateRow retries one row index. The seed of each attempt depends only on
// the table seed, the row index and the attempt sequence number, which keeps
// table retries deterministic without replaying the same rows.
func (r *runState) generateRow(tc *tableContext, sets []*uniqueSet, tableSeed uint64, index int64, tableAttempt int) (domain.Row, int, error) {
	maxRow := r.opts.MaxAttemptsRow
	var last error
	for attempt := 1; attempt <= maxRow; attempt++ {
		seq := uint64(tableAttempt*maxRow + attempt)
		rng := rand.New(rand.NewSource(int64(hashing.RowSeed(tableSeed, uint64(index), seq))))

		row, err := r.buildRow(tc, index, rng)
		if err != nil {
			return nil, attempt, err
		}
		err = r.checkRow(tc, sets, row)
		if err == nil {
			return row, attempt, nil
		}
		var v *rowViolation
		if !errors.As(err, &v) {
			return nil, attempt, err
		}
		last = v.err
	}
	if r.strict {
		return nil, maxRow, fmt.Errorf("row %d: %w", index, last)
	}
	return nil, maxRow, fmt.Errorf("%w: row %d: %v", errAttemptFailed, index, last)
}

func (r *runState) buildRow(tc *tableContext, index int64, rng *rand.Rand) (domain.Row, error) {
	row := make(domain.Row, len(tc.columns))
	if tc.fkMode == domain.FKRespect {
		if err := r.applyForeignKeys(tc, row, rng); err != nil {
			return nil, err
		}
	}
	for _, col := range tc.order {
		name := strings.ToLower(col.Name)
		if _, done := row[name]; done {
			continue
		}
		v, err := r.columnValue(tc, col, index, row, rng)
		if err != nil {
			return nil, err
		}
		row[name] = v
	}
	if err := r.applyTransforms(tc, row, rng); err != nil {
		return nil, err
	}
	return row, nil
}

// applyForeignKeys copies the referenced columns of one random parent row
// per foreign key. FKs with a column that has its own rule are skipped.
func (r *runState) applyForeignKeys(tc *tableContext, row domain.Row, rng *rand.Rand) error {
	for _, fk := range tc.fks {
		if r.fkHandledElsewhere(tc, fk, row) {
			continue
		}
		parent, err := r.foreign.PickRow(rng, fk.ReferencedSchema, fk.ReferencedTable)
		if err != nil {
			return fmt.Errorf("fk %s on %s: %w", fk.Name, tc.key, err)
		}
		for i, child := range fk.Columns {
			if i >= len(fk.ReferencedColumns) {
				break
			}
			v, ok := parent[strings.ToLower(fk.ReferencedColumns[i])]
			if !ok {
				return domain.Unsupportedf("missing referenced column %s in parent %s", fk.ReferencedColumns[i], domain.TableKey(fk.ReferencedSchema, fk.ReferencedTable))
			}
			row[strings.ToLower(child)] = v
		}
	}
	return nil
}

func (r *runState) fkHandledElsewhere(tc *tableContext, fk domain.Constraint, row domain.Row) bool {
	for _, child := range fk.Columns {
		if _, ok := row[strings.ToLower(child)]; ok {
			return true
		}
		if r.idx.column(tc.schema, tc.table.Name, child) != nil {
			return true
		}
	}
	return false
}

// rowViolation is a constraint failure that a retry of the row may fix.
type rowViolation struct {
	err error
}

func (v *rowViolation) Error() string { return v.err.Error() }

func (v *rowViolation) Unwrap() error { return v.err }

func violationf(format string, args ...interface{}) error {
	return &rowViolation{err: domain.Unsupportedf(format, args...)}
}

// checkRow enforces NOT NULL, then CHECK, then PK/UNIQUE. Unique keys are
// only recorded once the row passes everything else.
func (r *runState) checkRow(tc *tableContext, sets []*uniqueSet, row domain.Row) error {
	for i := range tc.columns {
		col := &tc.columns[i]
		if !col.IsNullable && row[strings.ToLower(col.Name)].IsNull() {
			return violationf("column %s is null", tc.columnKey(col))
		}
	}
	if err := r.evaluateChecks(tc, row); err != nil {
		return err
	}
	if err := admitUnique(sets, row); err != nil {
		return &rowViolation{err: err}
	}
	return nil
}

func (r *runState) evaluateChecks(tc *tableContext, row domain.Row) error {
	if tc.checkMode == domain.ModeIgnore {
		return nil
	}
	for _, c := range tc.checks {
		switch checks.Evaluate(c.Expression, row, r.opts.BaseDate) {
		case checks.Failed:
			if tc.checkMode == domain.ModeWarn {
				r.warnOnce("check_failed_warn:"+tc.key+":"+c.Expression, domain.Issue{
					Code:    "check_failed_warn",
					Message: fmt.Sprintf("CHECK %s failed and was accepted: %s", c.Name, c.Expression),
					Schema:  tc.schema,
					Table:   tc.table.Name,
				})
				continue
			}
			return violationf("CHECK %s failed on %s: %s", c.Name, tc.key, c.Expression)
		case checks.Unsupported:
			if tc.checkMode == domain.ModeWarn && !r.strict {
				r.warnOnce("check_unsupported_warn:"+tc.key+":"+c.Expression, domain.Issue{
					Code:    "check_unsupported_warn",
					Message: fmt.Sprintf("unsupported CHECK %s accepted: %s", c.Name, c.Expression),
					Schema:  tc.schema,
					Table:   tc.table.Name,
				})
				continue
			}
			return domain.Unsupportedf("unsupported CHECK %s on %s: %s", c.Name, tc.key, c.Expression)
		}
	}
	return nil
}
