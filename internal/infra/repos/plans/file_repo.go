package plans

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

type Repository interface {
	LoadPlan(path string) (*domain.Plan, error)
	LoadSchema(path string) (*domain.DatabaseSchema, error)
	ListPlans() ([]*PlanSummary, error)
}

// PlanSummary is the listing entry for one plan file.
type PlanSummary struct {
	Path        string `json:"path"`
	PlanVersion string `json:"plan_version"`
	Seed        uint64 `json:"seed"`
	Targets     int    `json:"targets"`
	Rules       int    `json:"rules"`
}

// FileRepository reads plans and schemas below baseDir. An empty baseDir
// disables the containment check.
type FileRepository struct {
	baseDir string
}

func NewFileRepository(baseDir string) *FileRepository {
	return &FileRepository{baseDir: baseDir}
}

func (r *FileRepository) LoadPlan(path string) (*domain.Plan, error) {
	var plan domain.Plan
	if err := r.load(path, &plan); err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	return &plan, nil
}

func (r *FileRepository) LoadSchema(path string) (*domain.DatabaseSchema, error) {
	var schema domain.DatabaseSchema
	if err := r.load(path, &schema); err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	return &schema, nil
}

// ListPlans summarizes every readable plan file directly in baseDir.
// Files that fail to parse are skipped.
func (r *FileRepository) ListPlans() ([]*PlanSummary, error) {
	out := make([]*PlanSummary, 0)
	if r.baseDir == "" {
		return out, nil
	}
	entries, err := os.ReadDir(r.baseDir)
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() || !isPlanFile(entry.Name()) {
			continue
		}
		plan, err := r.LoadPlan(entry.Name())
		if err != nil || plan.PlanVersion == "" {
			continue
		}
		out = append(out, &PlanSummary{
			Path:        entry.Name(),
			PlanVersion: plan.PlanVersion,
			Seed:        plan.Seed,
			Targets:     len(plan.Targets),
			Rules:       len(plan.Rules),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func isPlanFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func (r *FileRepository) load(path string, v interface{}) error {
	resolved, err := r.resolve(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return err
	}
	return Decode(resolved, data, v)
}

// Decode parses JSON for .json files and YAML otherwise.
func Decode(path string, data []byte, v interface{}) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return json.Unmarshal(data, v)
	}
	return yaml.Unmarshal(data, v)
}

func (r *FileRepository) resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path is required")
	}
	if r.baseDir == "" {
		return filepath.Clean(path), nil
	}
	base, err := filepath.Abs(r.baseDir)
	if err != nil {
		return "", err
	}
	candidate := path
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(base, candidate)
	}
	candidate = filepath.Clean(candidate)
	rel, err := filepath.Rel(base, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes %s", path, r.baseDir)
	}
	return candidate, nil
}
