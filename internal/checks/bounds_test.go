package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

func TestExtractBoundsBetween(t *testing.T) {
	bounds := ExtractBounds([]string{"CHECK (age BETWEEN 18 AND 65)"})
	b, ok := bounds["age"]
	require.True(t, ok)
	require.NotNil(t, b.Min)
	require.NotNil(t, b.Max)
	assert.Equal(t, 18.0, *b.Min)
	assert.Equal(t, 65.0, *b.Max)
}

func TestExtractBoundsComparisonsMergeTightest(t *testing.T) {
	bounds := ExtractBounds([]string{
		"CHECK (((qty > 0) AND (qty <= 100)))",
		"qty >= 5",
		"qty < 50",
	})
	b := bounds["qty"]
	require.NotNil(t, b.Min)
	require.NotNil(t, b.Max)
	assert.Equal(t, 5.0, *b.Min)
	assert.Equal(t, 49.0, *b.Max)
}

func TestExtractBoundsIgnoresNonNumeric(t *testing.T) {
	bounds := ExtractBounds([]string{"status IN ('a')", "birth <= CURRENT_DATE"})
	assert.Empty(t, bounds)
}

func TestBoundsApply(t *testing.T) {
	bounds := ExtractBounds([]string{"age BETWEEN 18 AND 65"})
	b := bounds["age"]

	assert.Equal(t, domain.IntValue(18), b.Apply(domain.IntValue(3)))
	assert.Equal(t, domain.IntValue(65), b.Apply(domain.IntValue(900)))
	assert.Equal(t, domain.IntValue(40), b.Apply(domain.IntValue(40)))
	assert.Equal(t, domain.FloatValue(65), b.Apply(domain.FloatValue(70.5)))
	assert.Equal(t, domain.TextValue("x"), b.Apply(domain.TextValue("x")))
}

func TestCurrentDateAndEmailColumns(t *testing.T) {
	exprs := []string{
		"CHECK ((birth_date <= CURRENT_DATE))",
		"CURRENT_DATE >= signup",
		"(POSITION(('@'::text) IN (email)) > 1)",
	}
	assert.Equal(t, map[string]struct{}{"birth_date": {}, "signup": {}}, CurrentDateColumns(exprs))
	assert.Equal(t, map[string]struct{}{"email": {}}, EmailColumns(exprs))
}
