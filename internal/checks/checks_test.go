package checks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

var baseDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestParseRecognisesShapes(t *testing.T) {
	cases := []struct {
		expr string
		want Match
	}{
		{"CHECK ((age >= 18))", ComparisonMatch{Column: "age", Op: ">=", RHS: "18"}},
		{"age BETWEEN 18 AND 65", BetweenMatch{Column: "age", Min: "18", Max: "65"}},
		{"(status IN ('Open', 'closed'))", InMatch{Column: "status", Values: []string{"Open", "closed"}}},
		{"((status)::text = ANY ((ARRAY['A'::character varying, 'b'::character varying])::text[]))", InMatch{Column: "status", Values: []string{"A", "b"}}},
		{"email IS NOT NULL", NotNullMatch{Column: "email"}},
		{"(POSITION(('@'::text) IN (email)) > 1)", PositionMatch{Needle: "@", Column: "email", Op: ">", Value: 1}},
		{"(a > 0) AND (b < 5)", AndMatch{Parts: []string{"(a > 0)", "(b < 5)"}}},
	}
	for _, tc := range cases {
		got, ok := Parse(tc.expr)
		require.True(t, ok, tc.expr)
		assert.Equal(t, tc.want, got, tc.expr)
	}

	_, ok := Parse("length(name) > 3 OR name ~ '^x'")
	assert.False(t, ok)
}

func TestParseStripsOnlyEnclosingParens(t *testing.T) {
	m, ok := Parse("(a > 0) AND (b < 5)")
	require.True(t, ok)
	and, isAnd := m.(AndMatch)
	require.True(t, isAnd)
	assert.Len(t, and.Parts, 2)
}

func TestConjunctionKeepsLiteralCaseAndBetween(t *testing.T) {
	parts := splitConjunction("kind = 'Mixed AND Case' and age between 1 AND 5 AND x > 2")
	assert.Equal(t, []string{"kind = 'Mixed AND Case'", "age between 1 AND 5", "x > 2"}, parts)
}

func TestEvaluateNumeric(t *testing.T) {
	row := domain.Row{"age": domain.IntValue(30), "price": domain.FloatValue(1.5), "qty": domain.IntValue(2)}

	assert.Equal(t, Passed, Evaluate("age BETWEEN 18 AND 65", row, baseDate))
	assert.Equal(t, Failed, Evaluate("age BETWEEN 40 AND 65", row, baseDate))
	assert.Equal(t, Passed, Evaluate("CHECK ((age >= 18) AND (age <= 65))", row, baseDate))
	assert.Equal(t, Failed, Evaluate("age < 30", row, baseDate))
	assert.Equal(t, Passed, Evaluate("price = 1.5", row, baseDate))
	assert.Equal(t, Passed, Evaluate("qty > price", row, baseDate))
	assert.Equal(t, Passed, Evaluate("(price >= (0)::numeric)", row, baseDate))
}

func TestEvaluateText(t *testing.T) {
	row := domain.Row{"status": domain.TextValue("Open"), "email": domain.TextValue("ana@example.com")}

	assert.Equal(t, Passed, Evaluate("status IN ('Open', 'closed')", row, baseDate))
	assert.Equal(t, Failed, Evaluate("status IN ('open', 'closed')", row, baseDate))
	assert.Equal(t, Passed, Evaluate("status = 'Open'", row, baseDate))
	assert.Equal(t, Failed, Evaluate("status = 'open'", row, baseDate))
	assert.Equal(t, Passed, Evaluate("status = ANY (ARRAY['Open'::text, 'x'::text])", row, baseDate))
	assert.Equal(t, Passed, Evaluate("position('@' in email) > 1", row, baseDate))
	assert.Equal(t, Failed, Evaluate("position('#' in email) > 0", row, baseDate))
}

func TestEvaluateDates(t *testing.T) {
	row := domain.Row{
		"birth":   domain.DateValue(time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)),
		"started": domain.DateValue(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
		"ended":   domain.TimestampValue(time.Date(2023, 2, 1, 8, 0, 0, 0, time.UTC)),
	}

	assert.Equal(t, Passed, Evaluate("birth <= CURRENT_DATE", row, baseDate))
	assert.Equal(t, Failed, Evaluate("birth > CURRENT_DATE", row, baseDate))
	assert.Equal(t, Passed, Evaluate("birth >= '1900-01-01'::date", row, baseDate))
	assert.Equal(t, Passed, Evaluate("birth >= 1900-01-01", row, baseDate))
	assert.Equal(t, Passed, Evaluate("ended >= started", row, baseDate))
	assert.Equal(t, Failed, Evaluate("started > ended", row, baseDate))
}

func TestEvaluateNullHandling(t *testing.T) {
	row := domain.Row{"email": domain.Null(), "age": domain.Null(), "name": domain.TextValue("x")}

	assert.Equal(t, Passed, Evaluate("email IS NULL OR position('@' in email) > 1", row, baseDate))
	assert.Equal(t, Failed, Evaluate("email IS NOT NULL", row, baseDate))
	assert.Equal(t, Passed, Evaluate("name IS NOT NULL", row, baseDate))
	assert.Equal(t, Passed, Evaluate("age >= 18", row, baseDate))
}

func TestEvaluateNullRightHandColumn(t *testing.T) {
	cases := []struct {
		name string
		expr string
		row  domain.Row
	}{
		{"date", "(ended >= started)", domain.Row{"ended": domain.DateValue(baseDate), "started": domain.Null()}},
		{"numeric", "total >= subtotal", domain.Row{"total": domain.IntValue(5), "subtotal": domain.Null()}},
		{"cast column", "ended > (started)::date", domain.Row{"ended": domain.DateValue(baseDate), "started": domain.Null()}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, Passed, Evaluate(tc.expr, tc.row, baseDate))
		})
	}
}

func TestEvaluateTimestampsKeepTimeOfDay(t *testing.T) {
	row := domain.Row{
		"started_at": domain.TimestampValue(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)),
		"ended_at":   domain.TimestampValue(time.Date(2024, 3, 1, 17, 30, 0, 0, time.UTC)),
	}

	assert.Equal(t, Passed, Evaluate("ended_at > started_at", row, baseDate))
	assert.Equal(t, Failed, Evaluate("started_at >= ended_at", row, baseDate))
	assert.Equal(t, Failed, Evaluate("ended_at = started_at", row, baseDate))
}

func TestEvaluateUnsupported(t *testing.T) {
	row := domain.Row{"age": domain.IntValue(1)}

	assert.Equal(t, Unsupported, Evaluate("missing > 0", row, baseDate))
	assert.Equal(t, Unsupported, Evaluate("length(name) > 3", row, baseDate))
	assert.Equal(t, Unsupported, Evaluate("age > 0 AND missing > 0", row, baseDate))
	assert.Equal(t, Unsupported, Evaluate("age = 'x'", row, baseDate))
}

func TestEvaluateIsPure(t *testing.T) {
	row := domain.Row{"age": domain.IntValue(70)}
	first := Evaluate("age BETWEEN 18 AND 65", row, baseDate)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Evaluate("age BETWEEN 18 AND 65", row, baseDate))
	}
}
