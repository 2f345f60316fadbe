package output

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	ResolvedPlanFile = "resolved_plan.json"
	ReportFile       = "generation_report.json"
	SQLiteFile       = "dataset.sqlite"
)

// WriteJSON writes v indented with a trailing newline.
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
