package runs

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

type SQLiteRepository struct {
	dbPath string
	store
}

func NewSQLiteRepository(dbPath string) *SQLiteRepository {
	return &SQLiteRepository{
		dbPath: dbPath,
		store:  store{qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)},
	}
}

// Init opens the database file, creating its parent directory when needed.
func (r *SQLiteRepository) Init() error {
	if dir := filepath.Dir(r.dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create runs db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", r.dbPath)
	if err != nil {
		return err
	}
	r.db = db

	_, err = r.db.Exec(`
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		config_hash TEXT NOT NULL,
		plan_path TEXT,
		schema_path TEXT,
		seed INTEGER NOT NULL,
		status TEXT NOT NULL,
		out_dir TEXT,
		started_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP,
		stats TEXT,
		error TEXT
	)`)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC)`)
	return err
}

func (r *SQLiteRepository) DB() *sql.DB { return r.db }

func (r *SQLiteRepository) Create(run *domain.Run) error { return r.create(run) }

func (r *SQLiteRepository) Update(run *domain.Run) error { return r.update(run) }

func (r *SQLiteRepository) Get(id string) (*domain.Run, error) { return r.get(id) }

func (r *SQLiteRepository) List(limit int, status string) ([]*domain.Run, error) {
	return r.list(limit, status)
}

func (r *SQLiteRepository) Close() error { return r.close() }
