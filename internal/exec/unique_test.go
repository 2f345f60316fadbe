package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

func newSet(primary bool, cols ...string) *uniqueSet {
	return &uniqueSet{columns: cols, primary: primary, seen: make(map[string]struct{})}
}

func TestUniqueSetKey(t *testing.T) {
	cases := []struct {
		name    string
		set     *uniqueSet
		row     domain.Row
		tracked bool
	}{
		{"unique with values", newSet(false, "a", "b"), domain.Row{"a": domain.IntValue(1), "b": domain.IntValue(2)}, true},
		{"unique with a null column is exempt", newSet(false, "a", "b"), domain.Row{"a": domain.IntValue(1), "b": domain.Null()}, false},
		{"unique with a missing column is exempt", newSet(false, "a", "b"), domain.Row{"a": domain.IntValue(1)}, false},
		{"primary key with a null column is tracked", newSet(true, "a", "b"), domain.Row{"a": domain.IntValue(1), "b": domain.Null()}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := tc.set.key(tc.row)
			assert.Equal(t, tc.tracked, ok)
		})
	}

	k1, _ := newSet(false, "a", "b").key(domain.Row{"a": domain.TextValue("1"), "b": domain.TextValue("23")})
	k2, _ := newSet(false, "a", "b").key(domain.Row{"a": domain.TextValue("12"), "b": domain.TextValue("3")})
	assert.NotEqual(t, k1, k2)
}

func TestAdmitUniqueComposite(t *testing.T) {
	sets := []*uniqueSet{newSet(false, "a", "b")}
	pair := func(a, b int64) domain.Row { return domain.Row{"a": domain.IntValue(a), "b": domain.IntValue(b)} }

	require.NoError(t, admitUnique(sets, pair(1, 2)))
	require.NoError(t, admitUnique(sets, pair(1, 3)))
	require.NoError(t, admitUnique(sets, pair(2, 2)))
	err := admitUnique(sets, pair(1, 2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate key for columns a, b")
}

func TestAdmitUniqueNullHandling(t *testing.T) {
	unique := []*uniqueSet{newSet(false, "email")}
	nullEmail := domain.Row{"email": domain.Null()}
	require.NoError(t, admitUnique(unique, nullEmail))
	require.NoError(t, admitUnique(unique, nullEmail))
	assert.Empty(t, unique[0].seen)

	primary := []*uniqueSet{newSet(true, "id")}
	nullID := domain.Row{"id": domain.Null()}
	require.NoError(t, admitUnique(primary, nullID))
	assert.Error(t, admitUnique(primary, nullID))
}

func TestAdmitUniqueRejectsWithoutPartialCommit(t *testing.T) {
	ids := newSet(true, "id")
	emails := newSet(false, "email")
	sets := []*uniqueSet{ids, emails}

	require.NoError(t, admitUnique(sets, domain.Row{"id": domain.IntValue(1), "email": domain.TextValue("a@example.com")}))

	err := admitUnique(sets, domain.Row{"id": domain.IntValue(2), "email": domain.TextValue("a@example.com")})
	require.Error(t, err)
	assert.Len(t, ids.seen, 1)

	// id 2 was not recorded, so a row reusing it with a fresh email is admitted
	require.NoError(t, admitUnique(sets, domain.Row{"id": domain.IntValue(2), "email": domain.TextValue("b@example.com")}))
	assert.Len(t, ids.seen, 2)
	assert.Len(t, emails.seen, 2)
}
