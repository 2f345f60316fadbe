package runs

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

type PostgresRepository struct {
	dsn string
	store
}

func NewPostgresRepository(dsn string) *PostgresRepository {
	return &PostgresRepository{
		dsn:   strings.TrimSpace(dsn),
		store: store{qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)},
	}
}

func (r *PostgresRepository) Init() error {
	if r.dsn == "" {
		return fmt.Errorf("datalchemy db dsn is required")
	}
	db, err := sql.Open("postgres", r.dsn)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return err
	}
	r.db = db
	return r.applyMigrations()
}

func (r *PostgresRepository) DB() *sql.DB { return r.db }

type migration struct {
	version int
	up      func(*sql.DB) error
}

var migrations = []migration{
	{1, migrateV1Runs},
	{2, migrateV2RunsStartedIndex},
}

func (r *PostgresRepository) applyMigrations() error {
	if _, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return err
	}
	var cur int
	if err := r.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&cur); err != nil {
		return err
	}

	for _, m := range migrations {
		if cur >= m.version {
			continue
		}
		if err := m.up(r.db); err != nil {
			return fmt.Errorf("migration %d failed: %w", m.version, err)
		}
		query, args, err := r.qb.Insert("schema_migrations").Columns("version").Values(m.version).ToSql()
		if err != nil {
			return err
		}
		if _, err := r.db.Exec(query, args...); err != nil {
			return err
		}
		cur = m.version
	}
	return nil
}

func migrateV1Runs(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		config_hash TEXT NOT NULL,
		plan_path TEXT,
		schema_path TEXT,
		seed BIGINT NOT NULL,
		status TEXT NOT NULL,
		out_dir TEXT,
		started_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ,
		stats TEXT,
		error TEXT
	)`)
	return err
}

func migrateV2RunsStartedIndex(db *sql.DB) error {
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC)`)
	return err
}

func (r *PostgresRepository) Create(run *domain.Run) error { return r.create(run) }

func (r *PostgresRepository) Update(run *domain.Run) error { return r.update(run) }

func (r *PostgresRepository) Get(id string) (*domain.Run, error) { return r.get(id) }

func (r *PostgresRepository) List(limit int, status string) ([]*domain.Run, error) {
	return r.list(limit, status)
}

func (r *PostgresRepository) Close() error { return r.close() }
