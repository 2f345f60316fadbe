package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

// HashPlan returns the sha256 of the plan's JSON encoding. encoding/json
// sorts map keys, so equal plans hash equally regardless of param order.
func HashPlan(plan *domain.Plan) (string, error) {
	data, err := json.Marshal(plan)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}
