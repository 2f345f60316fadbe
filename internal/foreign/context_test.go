package foreign

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/datalchemy/internal/domain"
	"github.com/mmrzaf/datalchemy/internal/generators"
)

var _ generators.ForeignResolver = (*Context)(nil)

func customers() *domain.Table {
	return &domain.Table{
		Name: "customers",
		Columns: []domain.Column{
			{OrdinalPosition: 1, Name: "id"},
			{OrdinalPosition: 2, Name: "Email"},
		},
		Constraints: []domain.Constraint{{Kind: domain.ConstraintPrimaryKey, Columns: []string{"id"}}},
	}
}

func customerRows() []domain.Row {
	return []domain.Row{
		{"id": domain.IntValue(1), "email": domain.TextValue("a@example.com")},
		{"id": domain.IntValue(2), "email": domain.TextValue("b@example.com")},
	}
}

func TestPickFKReturnsParentValues(t *testing.T) {
	c := NewContext()
	c.Ingest("public", customers(), customerRows())

	rng := rand.New(rand.NewSource(1))
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		v, err := c.PickFK(rng, "public", "customers", "ID")
		require.NoError(t, err)
		seen[v.String()] = true
	}
	assert.Equal(t, map[string]bool{"1": true, "2": true}, seen)
	assert.Equal(t, 2, c.RowCount("public", "customers"))
}

func TestPickFKWithoutParentRows(t *testing.T) {
	c := NewContext()
	_, err := c.PickFK(rand.New(rand.NewSource(1)), "public", "customers", "id")
	assert.True(t, domain.IsUnsupported(err))

	c.Ingest("public", customers(), nil)
	_, err = c.PickRow(rand.New(rand.NewSource(1)), "public", "customers")
	assert.True(t, domain.IsUnsupported(err))
}

func TestLookupParentByPrimaryKey(t *testing.T) {
	c := NewContext()
	c.Ingest("public", customers(), customerRows())

	v, ok := c.LookupParent("public", "customers", domain.IntValue(2), "email")
	require.True(t, ok)
	assert.Equal(t, "b@example.com", v.String())

	_, ok = c.LookupParent("public", "customers", domain.IntValue(3), "email")
	assert.False(t, ok)
}

func TestCompositePrimaryKeysAreNotIndexed(t *testing.T) {
	table := customers()
	table.Constraints[0].Columns = []string{"id", "email"}
	c := NewContext()
	c.Ingest("public", table, customerRows())

	_, ok := c.LookupParent("public", "customers", domain.IntValue(1), "email")
	assert.False(t, ok)
}
