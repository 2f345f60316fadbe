package generators

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/datalchemy/internal/assets"
	"github.com/mmrzaf/datalchemy/internal/domain"
)

func fakerByID(t *testing.T, id string) *FakerGenerator {
	t.Helper()
	for _, g := range FakerGenerators(nil) {
		if g.ID() == id {
			return g
		}
	}
	t.Fatalf("faker generator %s not found", id)
	return nil
}

func TestFakerIsSeededFromRowRNG(t *testing.T) {
	gen := fakerByID(t, "faker.name.raw.FirstName")
	a, err := gen.Generate(newCtx(textColumn("first", nil)), nil, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, err := gen.Generate(newCtx(textColumn("first", nil)), nil, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a.String())
}

func TestFakerPtBRUsesAssetLists(t *testing.T) {
	gen := fakerByID(t, "faker.name.raw.LastName")
	ctx := newCtx(textColumn("last", nil))
	ctx.Locale = LocalePtBR
	v, err := gen.Generate(ctx, nil, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Contains(t, assets.DefaultLastNames, v.String())
}

func TestFakerRejectsUnknownLocale(t *testing.T) {
	gen := fakerByID(t, "faker.lorem.raw.Word")
	ctx := newCtx(textColumn("w", nil))
	ctx.Locale = "fr_FR"
	_, err := gen.Generate(ctx, nil, rand.New(rand.NewSource(1)))
	assert.True(t, domain.IsInvalidPlan(err))
}

func TestFakerHonoursMaxLen(t *testing.T) {
	gen := fakerByID(t, "faker.lorem.raw.Paragraph")
	p := params(t, gen, map[string]interface{}{"max_len": 12})
	v, err := gen.Generate(newCtx(textColumn("body", intPtr(40))), p, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(v.String())), 12)

	err = gen.Validate(params(t, gen, map[string]interface{}{"max_len": 50}), textColumn("body", intPtr(40)))
	assert.True(t, domain.IsInvalidPlan(err))
}

func TestFakerCoordinatesAreNumbers(t *testing.T) {
	gen := fakerByID(t, "faker.address.raw.Latitude")
	v, err := gen.Generate(newCtx(typedColumn("lat", "float8")), nil, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	f, ok := v.Float()
	require.True(t, ok)
	assert.GreaterOrEqual(t, f, -90.0)
	assert.LessOrEqual(t, f, 90.0)
}

func TestFakerEmailUnique(t *testing.T) {
	gen := fakerByID(t, "faker.internet.raw.SafeEmail")
	v, err := gen.GenerateUnique(newCtx(textColumn("email", nil)), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "user00001@example.com", v.String())

	s, err := gen.Generate(newCtx(textColumn("email", nil)), nil, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(s.String(), "@example.com"))
}
