package domain

import (
	"encoding/json"
	"time"
)

type Run struct {
	ID          string          `json:"id" yaml:"id"`
	ConfigHash  string          `json:"config_hash" yaml:"config_hash"`
	PlanPath    string          `json:"plan_path,omitempty" yaml:"plan_path,omitempty"`
	SchemaPath  string          `json:"schema_path,omitempty" yaml:"schema_path,omitempty"`
	Seed        uint64          `json:"seed" yaml:"seed"`
	Status      RunStatus       `json:"status" yaml:"status"`
	OutDir      string          `json:"out_dir,omitempty" yaml:"out_dir,omitempty"`
	StartedAt   time.Time       `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Stats       json.RawMessage `json:"stats,omitempty" yaml:"-"`
	Error       string          `json:"error,omitempty" yaml:"error,omitempty"`
}

type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// RunStats is the summary stored with a run record.
type RunStats struct {
	TablesGenerated int             `json:"tables_generated"`
	TotalRows       int64           `json:"total_rows"`
	RetriesTotal    int64           `json:"retries_total"`
	Warnings        int             `json:"warnings"`
	DurationSeconds float64         `json:"duration_seconds"`
	Tables          []TableRunStats `json:"tables"`
}

type TableRunStats struct {
	Table         string `json:"table"`
	RowsGenerated int64  `json:"rows_generated"`
	Retries       int64  `json:"retries"`
}

// GenerationTask is one planned unit of work: a table and its row target.
type GenerationTask struct {
	Schema string `json:"schema" yaml:"schema"`
	Table  string `json:"table" yaml:"table"`
	Rows   int64  `json:"rows" yaml:"rows"`
}

func (t GenerationTask) Key() string { return TableKey(t.Schema, t.Table) }
