package exec

import (
	"time"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

// Options control a generation run. Plan options strict and
// auto_generate_parents override Strict and AutoGenerateParents;
// StrictOverride, when set, wins over both.
type Options struct {
	OutDir              string
	Strict              bool
	StrictOverride      *bool
	MaxAttemptsRow      int
	MaxAttemptsTable    int
	AutoGenerateParents bool
	BaseDate            time.Time
	SQLiteExport        bool
	// RunID names the run directory and report. Empty means a fresh uuid.
	RunID               string
}

func DefaultOptions() Options {
	return Options{
		OutDir:              "out",
		MaxAttemptsRow:      50,
		MaxAttemptsTable:    5,
		AutoGenerateParents: true,
		BaseDate:            domain.DefaultBaseDate,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.OutDir == "" {
		o.OutDir = def.OutDir
	}
	if o.MaxAttemptsRow <= 0 {
		o.MaxAttemptsRow = def.MaxAttemptsRow
	}
	if o.MaxAttemptsTable <= 0 {
		o.MaxAttemptsTable = def.MaxAttemptsTable
	}
	if o.BaseDate.IsZero() {
		o.BaseDate = def.BaseDate
	}
	return o
}
