// Package sqlite exports generated tables into a standalone SQLite file.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mmrzaf/datalchemy/internal/domain"
	"github.com/mmrzaf/datalchemy/internal/output"
	"github.com/mmrzaf/datalchemy/internal/validation"
)

// Exporter writes each generated table as "<schema>__<table>". Every column
// is stored as TEXT using the CSV rendering; nulls stay NULL.
type Exporter struct {
	path string
	db   *sql.DB
}

func NewExporter(path string) *Exporter {
	return &Exporter{path: path}
}

func (e *Exporter) Connect() error {
	db, err := sql.Open("sqlite3", e.path)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}
	e.db = db
	return nil
}

func (e *Exporter) Close() error {
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

// TableName is the exported name of schema.table.
func TableName(schema, table string) string {
	return schema + "__" + table
}

func quoteIdent(name string) string {
	if validation.IsValidIdentifier(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ExportTable replaces any previous copy of the table and inserts rows in a
// single transaction.
func (e *Exporter) ExportTable(schema string, table *domain.Table, rows []domain.Row) error {
	if e.db == nil {
		return fmt.Errorf("sqlite exporter is not connected")
	}
	name := quoteIdent(TableName(schema, table.Name))
	columns := table.OrderedColumns()

	defs := make([]string, len(columns))
	names := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		names[i] = quoteIdent(col.Name)
		defs[i] = names[i] + " TEXT"
		placeholders[i] = "?"
	}

	tx, err := e.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", name)); err != nil {
		return fmt.Errorf("failed to drop %s: %w", name, err)
	}
	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(defs, ", "))
	if _, err := tx.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		name, strings.Join(names, ", "), strings.Join(placeholders, ", "))
	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]interface{}, len(columns))
	for _, row := range rows {
		for i := range columns {
			v := row[strings.ToLower(columns[i].Name)]
			if v.IsNull() {
				args[i] = nil
				continue
			}
			args[i] = output.FormatValue(&columns[i], v)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", name, err)
		}
	}

	return tx.Commit()
}
