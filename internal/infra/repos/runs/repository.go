package runs

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

// Repository stores the run history of the datalchemy control plane.
type Repository interface {
	Init() error
	Create(run *domain.Run) error
	Update(run *domain.Run) error
	Get(id string) (*domain.Run, error)
	List(limit int, status string) ([]*domain.Run, error)
	Close() error
}

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.New("run not found")

const defaultListLimit = 50

var runColumns = []string{
	"id", "config_hash", "plan_path", "schema_path", "seed", "status",
	"out_dir", "started_at", "completed_at", "stats", "error",
}

// store holds the query code shared by both dialects. Seeds are stored as
// the int64 with the same bits since drivers reject uint64 values above
// math.MaxInt64.
type store struct {
	db *sql.DB
	qb squirrel.StatementBuilderType
}

func (s *store) create(run *domain.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	query, args, err := s.qb.Insert("runs").Columns(runColumns...).Values(
		run.ID, run.ConfigHash, run.PlanPath, run.SchemaPath, int64(run.Seed), string(run.Status),
		run.OutDir, run.StartedAt.UTC(), nullTime(run.CompletedAt), nullJSON(run.Stats), run.Error,
	).ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.Exec(query, args...)
	return err
}

func (s *store) update(run *domain.Run) error {
	query, args, err := s.qb.Update("runs").
		Set("status", string(run.Status)).
		Set("out_dir", run.OutDir).
		Set("completed_at", nullTime(run.CompletedAt)).
		Set("stats", nullJSON(run.Stats)).
		Set("error", run.Error).
		Where(squirrel.Eq{"id": run.ID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, run.ID)
	}
	return nil
}

func (s *store) get(id string) (*domain.Run, error) {
	query, args, err := s.qb.Select(runColumns...).From("runs").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	run, err := scanRun(s.db.QueryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

func (s *store) list(limit int, status string) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	q := s.qb.Select(runColumns...).From("runs").OrderBy("started_at DESC", "id").Limit(uint64(limit))
	if status != "" {
		q = q.Where(squirrel.Eq{"status": status})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (s *store) close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (*domain.Run, error) {
	var (
		run         domain.Run
		seed        int64
		status      string
		planPath    sql.NullString
		schemaPath  sql.NullString
		outDir      sql.NullString
		completedAt sql.NullTime
		stats       sql.NullString
		errStr      sql.NullString
	)
	if err := sc.Scan(
		&run.ID, &run.ConfigHash, &planPath, &schemaPath, &seed, &status,
		&outDir, &run.StartedAt, &completedAt, &stats, &errStr,
	); err != nil {
		return nil, err
	}
	run.Seed = uint64(seed)
	run.Status = domain.RunStatus(status)
	run.PlanPath = planPath.String
	run.SchemaPath = schemaPath.String
	run.OutDir = outDir.String
	run.StartedAt = run.StartedAt.UTC()
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		run.CompletedAt = &t
	}
	if stats.Valid && stats.String != "" {
		run.Stats = json.RawMessage(stats.String)
	}
	run.Error = errStr.String
	return &run, nil
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
