package generators

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

// Generator produces one value for one column.
type Generator interface {
	ID() string
	Params() []ParamSpec
	Generate(ctx *GeneratorContext, params Params, rng *rand.Rand) (domain.Value, error)
}

// UniqueGenerator is implemented by generators that can produce a value that
// is unique per row index, used when the target column is part of a PK or
// UNIQUE constraint.
type UniqueGenerator interface {
	GenerateUnique(ctx *GeneratorContext, params Params, index int64) (domain.Value, error)
}

// Validator runs checks on params beyond their declared kinds, such as
// min <= max. It is called once at plan validation.
type Validator interface {
	Validate(params Params, column *domain.Column) error
}

// PIITagger lists the PII categories a generator's output falls into.
type PIITagger interface {
	PIITags() []string
}

// Transform post-processes a generated value.
type Transform interface {
	ID() string
	Params() []ParamSpec
	Apply(input domain.Value, ctx *TransformContext, params Params, rng *rand.Rand) (domain.Value, error)
}

// ForeignResolver exposes already generated parent rows to derive generators.
type ForeignResolver interface {
	PickFK(rng *rand.Rand, schema, table, column string) (domain.Value, error)
	LookupParent(schema, table string, key domain.Value, column string) (domain.Value, bool)
}

type GeneratorContext struct {
	Schema      string
	Table       *domain.Table
	Column      *domain.Column
	Row         domain.Row
	ForeignKeys []domain.Constraint
	BaseDate    time.Time
	RowIndex    int64
	EnumValues  []string
	IsEnum      bool
	Locale      string
	Foreign     ForeignResolver
	// MinHint and MaxHint are the column's numeric range taken from its
	// CHECK constraints. Nil means unbounded.
	MinHint     *float64
	MaxHint     *float64
}

// Lookup returns a same-row value by column name.
func (c *GeneratorContext) Lookup(column string) (domain.Value, bool) {
	v, ok := c.Row[strings.ToLower(column)]
	return v, ok
}

func (c *GeneratorContext) maxLength() (int, bool) {
	if c.Column == nil {
		return 0, false
	}
	return c.Column.ColumnType.MaxLength()
}

type TransformContext struct {
	Schema string
	Table  *domain.Table
	Column *domain.Column
	Row    domain.Row
}

// truncate cuts s to n runes.
func truncate(s string, n int) string {
	if n < 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func truncateToColumn(ctx *GeneratorContext, s string) string {
	if n, ok := ctx.maxLength(); ok {
		return truncate(s, n)
	}
	return s
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}

// intBetween returns a uniform value in [min, max].
func intBetween(rng *rand.Rand, min, max int64) int64 {
	if max <= min {
		return min
	}
	span := uint64(max-min) + 1
	switch {
	case span == 0:
		return int64(rng.Uint64())
	case span > math.MaxInt64:
		return min + int64(rng.Uint64()%span)
	}
	return min + rng.Int63n(int64(span))
}

// floatBetween returns a uniform value in [min, max].
func floatBetween(rng *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + rng.Float64()*(max-min)
}

// LocaleAware is implemented by generators that only support some locales.
type LocaleAware interface {
	SupportsLocale(locale string) bool
}
