package domain

import (
	"sort"
	"time"
)

type IssueLevel string

const (
	IssueWarning     IssueLevel = "warning"
	IssueUnsupported IssueLevel = "unsupported"
)

// Issue is a warning or unsupported-feature notice recorded during a run.
type Issue struct {
	Level       IssueLevel `json:"level"`
	Code        string     `json:"code"`
	Message     string     `json:"message"`
	Path        string     `json:"path,omitempty"`
	Schema      string     `json:"schema,omitempty"`
	Table       string     `json:"table,omitempty"`
	Column      string     `json:"column,omitempty"`
	GeneratorID string     `json:"generator_id,omitempty"`
}

type TableReport struct {
	Schema        string `json:"schema"`
	Table         string `json:"table"`
	RowsRequested int64  `json:"rows_requested"`
	RowsGenerated int64  `json:"rows_generated"`
	Retries       int64  `json:"retries"`
}

type GenerationReport struct {
	RunID                   string           `json:"run_id"`
	StartedAt               time.Time        `json:"started_at"`
	FinishedAt              *time.Time       `json:"finished_at,omitempty"`
	Tables                  []TableReport    `json:"tables"`
	RetriesTotal            int64            `json:"retries_total"`
	Warnings                []Issue          `json:"warnings"`
	Unsupported             []Issue          `json:"unsupported"`
	GeneratorUsage          map[string]int64 `json:"generator_usage"`
	TransformUsage          map[string]int64 `json:"transform_usage"`
	FallbackCount           int64            `json:"fallback_count"`
	UnknownGeneratorIDCount int64            `json:"unknown_generator_id_count"`
	PIIColumnsTouched       []string         `json:"pii_columns_touched"`
	WarningsByCode          map[string]int64 `json:"warnings_by_code"`

	pii map[string]struct{}
}

func NewGenerationReport(runID string, startedAt time.Time) *GenerationReport {
	return &GenerationReport{
		RunID:             runID,
		StartedAt:         startedAt,
		Tables:            make([]TableReport, 0),
		Warnings:          make([]Issue, 0),
		Unsupported:       make([]Issue, 0),
		GeneratorUsage:    make(map[string]int64),
		TransformUsage:    make(map[string]int64),
		PIIColumnsTouched: make([]string, 0),
		WarningsByCode:    make(map[string]int64),
		pii:               make(map[string]struct{}),
	}
}

func (r *GenerationReport) AddWarning(issue Issue) {
	issue.Level = IssueWarning
	r.Warnings = append(r.Warnings, issue)
	r.WarningsByCode[issue.Code]++
}

func (r *GenerationReport) AddUnsupported(issue Issue) {
	issue.Level = IssueUnsupported
	r.Unsupported = append(r.Unsupported, issue)
}

func (r *GenerationReport) AddTable(t TableReport) {
	r.Tables = append(r.Tables, t)
	r.RetriesTotal += t.Retries
}

func (r *GenerationReport) RecordGenerator(id string) {
	r.GeneratorUsage[id]++
}

func (r *GenerationReport) RecordTransform(id string) {
	r.TransformUsage[id]++
}

// TouchPII records a "schema.table.column:tag" entry once and keeps the list sorted.
func (r *GenerationReport) TouchPII(entry string) {
	if r.pii == nil {
		r.pii = make(map[string]struct{})
	}
	if _, ok := r.pii[entry]; ok {
		return
	}
	r.pii[entry] = struct{}{}
	r.PIIColumnsTouched = append(r.PIIColumnsTouched, entry)
	sort.Strings(r.PIIColumnsTouched)
}

func (r *GenerationReport) Finish(at time.Time) {
	r.FinishedAt = &at
}

func (r *GenerationReport) TotalRows() int64 {
	var total int64
	for _, t := range r.Tables {
		total += t.RowsGenerated
	}
	return total
}

// Stats condenses the report into the summary stored with run records.
func (r *GenerationReport) Stats() RunStats {
	stats := RunStats{
		TablesGenerated: len(r.Tables),
		TotalRows:       r.TotalRows(),
		RetriesTotal:    r.RetriesTotal,
		Warnings:        len(r.Warnings),
		Tables:          make([]TableRunStats, 0, len(r.Tables)),
	}
	if r.FinishedAt != nil {
		stats.DurationSeconds = r.FinishedAt.Sub(r.StartedAt).Seconds()
	}
	for _, t := range r.Tables {
		stats.Tables = append(stats.Tables, TableRunStats{
			Table:         TableKey(t.Schema, t.Table),
			RowsGenerated: t.RowsGenerated,
			Retries:       t.Retries,
		})
	}
	return stats
}
