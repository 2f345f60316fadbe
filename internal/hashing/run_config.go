package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

type runConfigHashPayload struct {
	PlanHash          string           `json:"plan_hash"`
	SchemaFingerprint string           `json:"schema_fingerprint,omitempty"`
	Strict            bool             `json:"strict"`
	ResolvedCounts    map[string]int64 `json:"resolved_counts"`
	Seed              uint64           `json:"seed"`
}

// HashRunConfig identifies everything that determines a run's output.
func HashRunConfig(plan *domain.Plan, schema *domain.DatabaseSchema, strict bool, tasks []domain.GenerationTask, seed uint64) (string, error) {
	ph, err := HashPlan(plan)
	if err != nil {
		return "", err
	}

	keys := make([]string, 0, len(tasks))
	counts := make(map[string]int64, len(tasks))
	for _, t := range tasks {
		keys = append(keys, t.Key())
		counts[t.Key()] = t.Rows
	}
	sort.Strings(keys)
	canon := make(map[string]int64, len(keys))
	for _, k := range keys {
		canon[k] = counts[k]
	}

	p := runConfigHashPayload{
		PlanHash:       ph,
		Strict:         strict,
		ResolvedCounts: canon,
		Seed:           seed,
	}
	if schema != nil {
		p.SchemaFingerprint = schema.SchemaFingerprint
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
