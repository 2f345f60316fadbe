package exec

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/mmrzaf/datalchemy/internal/checks"
	"github.com/mmrzaf/datalchemy/internal/domain"
	"github.com/mmrzaf/datalchemy/internal/generators"
	"github.com/mmrzaf/datalchemy/internal/timeutil"
)

const nullChance = 0.10

// columnValue resolves one column: rule generator, unique synthesis,
// default expression, random null, then the type default.
func (r *runState) columnValue(tc *tableContext, col *domain.Column, index int64, row domain.Row, rng *rand.Rand) (domain.Value, error) {
	name := strings.ToLower(col.Name)
	rule := r.idx.column(tc.schema, tc.table.Name, col.Name)
	ruled := rule != nil && rule.gen != nil
	locale := r.plan.GlobalLocale()
	if rule != nil {
		locale = rule.locale
	}
	gctx := r.generatorContext(tc, col, index, row, locale, ruled && rule.derive())

	var (
		v   domain.Value
		err error
	)
	switch {
	case ruled:
		v, err = r.fromRule(tc, rule, gctx, rng)
	case tc.uniqueColumns[name]:
		v = uniqueValue(tc, gctx, r.opts.BaseDate)
		r.touchPII(tc, col, nil)
	default:
		if dv, ok := defaultValue(col, r.opts.BaseDate, rng); ok {
			v = dv
		} else if col.IsNullable && rng.Float64() < nullChance {
			v = domain.Null()
		} else {
			v, err = r.fromTypeDefault(tc, gctx, rng)
		}
	}
	if err != nil {
		return domain.Null(), err
	}

	if !ruled {
		if _, ok := tc.currentDate[name]; ok {
			v = clampToBaseDate(v, r.opts.BaseDate)
		}
	}
	if b, ok := tc.bounds[name]; ok {
		v = b.Apply(v)
	}
	return v, nil
}

func (r *runState) generatorContext(tc *tableContext, col *domain.Column, index int64, row domain.Row, locale string, withForeign bool) *generators.GeneratorContext {
	labels, isEnum := tc.enums[strings.ToLower(col.Name)]
	ctx := &generators.GeneratorContext{
		Schema:      tc.schema,
		Table:       tc.table,
		Column:      col,
		Row:         row,
		ForeignKeys: tc.fks,
		BaseDate:    r.opts.BaseDate,
		RowIndex:    index,
		EnumValues:  labels,
		IsEnum:      isEnum,
		Locale:      locale,
	}
	if b, ok := tc.bounds[strings.ToLower(col.Name)]; ok {
		ctx.MinHint, ctx.MaxHint = b.Min, b.Max
	}
	if withForeign {
		ctx.Foreign = r.foreign
	}
	return ctx
}

func (r *runState) fromRule(tc *tableContext, rule *columnRule, gctx *generators.GeneratorContext, rng *rand.Rand) (domain.Value, error) {
	name := strings.ToLower(gctx.Column.Name)
	unique := tc.uniqueColumns[name] && !tc.fkColumns[name] && !rule.derive()

	var (
		v   domain.Value
		err error
	)
	if unique {
		if ug, ok := rule.gen.(generators.UniqueGenerator); ok {
			v, err = ug.GenerateUnique(gctx, rule.params, gctx.RowIndex)
		} else {
			v = uniqueValue(tc, gctx, r.opts.BaseDate)
		}
	} else {
		v, err = rule.gen.Generate(gctx, rule.params, rng)
	}
	if err != nil {
		return domain.Null(), fmt.Errorf("%s: %s: %w", tc.columnKey(gctx.Column), rule.generatorID, err)
	}
	r.report.RecordGenerator(rule.generatorID)
	r.touchPII(tc, gctx.Column, rule.gen)
	return v, nil
}

func (r *runState) fromTypeDefault(tc *tableContext, gctx *generators.GeneratorContext, rng *rand.Rand) (domain.Value, error) {
	col := gctx.Column
	id := defaultGeneratorID(tc, col, gctx.IsEnum)
	gen, err := r.registry.Get(id)
	if err != nil {
		r.report.FallbackCount++
		r.warnOnce("fallback_used:"+tc.columnKey(col), domain.Issue{
			Code:        "fallback_used",
			Message:     fmt.Sprintf("no default generator for %s, using a type fallback", tc.columnKey(col)),
			Schema:      tc.schema,
			Table:       tc.table.Name,
			Column:      col.Name,
			GeneratorID: id,
		})
		r.touchPII(tc, col, nil)
		return fallbackValue(col, r.opts.BaseDate, rng), nil
	}
	v, err := gen.Generate(gctx, generators.Params{}, rng)
	if err != nil {
		return domain.Null(), fmt.Errorf("%s: %s: %w", tc.columnKey(col), id, err)
	}
	r.report.RecordGenerator(id)
	r.touchPII(tc, col, gen)
	return v, nil
}

// defaultGeneratorID picks the generator used for columns without a rule.
func defaultGeneratorID(tc *tableContext, col *domain.Column, isEnum bool) string {
	if isEnum {
		return "primitive.enum"
	}
	name := strings.ToLower(col.Name)
	if _, ok := tc.emailColumns[name]; ok || strings.Contains(name, "email") {
		if col.ColumnType.Class() == domain.TypeText || col.ColumnType.Class() == domain.TypeOther {
			return "semantic.person.email"
		}
	}
	switch col.ColumnType.Class() {
	case domain.TypeUUID:
		return "primitive.uuid"
	case domain.TypeInteger:
		return "primitive.int"
	case domain.TypeNumeric:
		return "primitive.decimal.numeric"
	case domain.TypeFloat:
		return "primitive.float"
	case domain.TypeBool:
		return "primitive.bool"
	case domain.TypeDate:
		return "primitive.date"
	case domain.TypeTime:
		return "primitive.time"
	case domain.TypeTimestamp:
		return "primitive.timestamp"
	}
	return "primitive.text"
}

// uniqueValue synthesizes a value that is distinct per row index.
func uniqueValue(tc *tableContext, gctx *generators.GeneratorContext, base time.Time) domain.Value {
	col := gctx.Column
	i := gctx.RowIndex
	switch col.ColumnType.Class() {
	case domain.TypeUUID:
		return generators.UniqueUUID(i)
	case domain.TypeInteger:
		return domain.IntValue(int64(uniqueNumber(tc.bounds[strings.ToLower(col.Name)], i)))
	case domain.TypeNumeric:
		n := uniqueNumber(tc.bounds[strings.ToLower(col.Name)], i)
		if scale, ok := col.ColumnType.Scale(); ok && scale > 0 {
			return domain.FloatValue(n)
		}
		return domain.IntValue(int64(n))
	case domain.TypeFloat:
		return domain.FloatValue(uniqueNumber(tc.bounds[strings.ToLower(col.Name)], i))
	case domain.TypeBool:
		return domain.BoolValue(i%2 == 0)
	case domain.TypeDate:
		return generators.UniqueDate(base, i)
	case domain.TypeTimestamp:
		return generators.UniqueTimestamp(base, i)
	case domain.TypeTime:
		return domain.TimeOfDay(i)
	}
	name := strings.ToLower(col.Name)
	if _, ok := tc.emailColumns[name]; ok || strings.Contains(name, "email") {
		return generators.UniqueEmail(gctx, i)
	}
	return generators.UniqueText(gctx, i)
}

// uniqueNumber is i+1 shifted into the column's CHECK range, so that
// clamping never folds distinct indexes onto one bound.
func uniqueNumber(b checks.Bounds, i int64) float64 {
	n := float64(i + 1)
	switch {
	case b.Min != nil && n < math.Ceil(*b.Min):
		n = math.Ceil(*b.Min) + float64(i)
	case b.Min == nil && b.Max != nil && n > math.Floor(*b.Max):
		n = math.Floor(*b.Max) - float64(i)
	}
	return n
}

// defaultValue materializes recognized SQL column defaults.
func defaultValue(col *domain.Column, base time.Time, rng *rand.Rand) (domain.Value, bool) {
	if strings.TrimSpace(col.Default) == "" {
		return domain.Null(), false
	}
	expr := normalizeDefault(col.Default)
	switch strings.ToLower(expr) {
	case "gen_random_uuid()", "uuid_generate_v4()":
		return generators.RandomUUID(rng), true
	case "now()", "current_timestamp", "localtimestamp", "transaction_timestamp()", "statement_timestamp()":
		if col.ColumnType.Class() == domain.TypeDate {
			return domain.DateValue(base), true
		}
		return domain.TimestampValue(timeutil.Noon(base)), true
	case "current_date":
		return domain.DateValue(base), true
	}

	literal, ok := unquote(expr)
	if !ok {
		lower := strings.ToLower(expr)
		if _, err := strconv.ParseFloat(expr, 64); err != nil && lower != "true" && lower != "false" {
			return domain.Null(), false
		}
		literal = expr
	}
	v, err := generators.LiteralForColumn(col, literal)
	if err != nil {
		return domain.Null(), false
	}
	return v, true
}

// normalizeDefault strips enclosing parentheses and a trailing ::type cast.
func normalizeDefault(expr string) string {
	s := stripParens(strings.TrimSpace(expr))
	if strings.HasPrefix(s, "'") {
		if end := closingQuote(s); end > 0 {
			return s[:end+1]
		}
		return s
	}
	if i := strings.Index(s, "::"); i >= 0 {
		s = s[:i]
	}
	return stripParens(strings.TrimSpace(s))
}

func stripParens(s string) string {
	for len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' && enclosing(s) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// enclosing reports whether the first paren closes at the last byte.
func enclosing(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return depth == 0
}

func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		if s[i] != '\'' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '\'' {
			i++
			continue
		}
		return i
	}
	return -1
}

func unquote(s string) (string, bool) {
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return "", false
	}
	return strings.ReplaceAll(s[1:len(s)-1], "''", "'"), true
}

// fallbackValue is used only when the registry lacks a default generator.
func fallbackValue(col *domain.Column, base time.Time, rng *rand.Rand) domain.Value {
	switch col.ColumnType.Class() {
	case domain.TypeUUID:
		return generators.RandomUUID(rng)
	case domain.TypeInteger:
		return domain.IntValue(1 + rng.Int63n(100000))
	case domain.TypeNumeric:
		if scale, ok := col.ColumnType.Scale(); ok && scale > 0 {
			return domain.FloatValue(rng.Float64() * 100000)
		}
		return domain.IntValue(1 + rng.Int63n(100000))
	case domain.TypeFloat:
		return domain.FloatValue(rng.Float64() * 100000)
	case domain.TypeBool:
		return domain.BoolValue(rng.Intn(2) == 1)
	case domain.TypeDate:
		return domain.DateValue(base.AddDate(0, 0, rng.Intn(366)))
	case domain.TypeTimestamp:
		return domain.TimestampValue(timeutil.Noon(base).AddDate(0, 0, rng.Intn(366)))
	case domain.TypeTime:
		return domain.TimeOfDay(rng.Int63n(86400))
	}
	s := []rune(fmt.Sprintf("%s_%d", col.Name, rng.Uint32()))
	if n, ok := col.ColumnType.MaxLength(); ok && len(s) > n {
		s = s[:n]
	}
	return domain.TextValue(string(s))
}

func clampToBaseDate(v domain.Value, base time.Time) domain.Value {
	switch v.Kind() {
	case domain.KindDate:
		return domain.DateValue(base)
	case domain.KindTimestamp:
		return domain.TimestampValue(timeutil.Noon(base))
	}
	return v
}

// applyTransforms runs rule transforms over the built row in ordinal order.
func (r *runState) applyTransforms(tc *tableContext, row domain.Row, rng *rand.Rand) error {
	for i := range tc.columns {
		col := &tc.columns[i]
		rule := r.idx.column(tc.schema, tc.table.Name, col.Name)
		if rule == nil || len(rule.transforms) == 0 {
			continue
		}
		name := strings.ToLower(col.Name)
		v, ok := row[name]
		if !ok {
			continue
		}
		tctx := &generators.TransformContext{Schema: tc.schema, Table: tc.table, Column: col, Row: row}
		for _, step := range rule.transforms {
			next, err := step.t.Apply(v, tctx, step.params, rng)
			if err != nil {
				if r.strict {
					return fmt.Errorf("%s: %s: %w", tc.columnKey(col), step.id, err)
				}
				r.warnOnce("transform_failed:"+tc.columnKey(col)+":"+step.id, domain.Issue{
					Code:        "transform_failed",
					Message:     fmt.Sprintf("transform %s failed: %v", step.id, err),
					Schema:      tc.schema,
					Table:       tc.table.Name,
					Column:      col.Name,
					GeneratorID: rule.generatorID,
				})
				continue
			}
			v = next
			r.report.RecordTransform(step.id)
		}
		row[name] = v
	}
	return nil
}

// columnPIITags infers PII categories from a column name.
func columnPIITags(column string) []string {
	name := strings.ToLower(column)
	var tags []string
	add := func(tag string, needles ...string) {
		for _, n := range needles {
			if strings.Contains(name, n) {
				tags = append(tags, tag)
				return
			}
		}
	}
	add(generators.TagEmail, "email")
	add(generators.TagCPF, "cpf")
	add(generators.TagCNPJ, "cnpj")
	add(generators.TagRG, "rg")
	add(generators.TagPhone, "phone", "telefone")
	add(generators.TagName, "name", "nome")
	add(generators.TagAddress, "address", "endereco", "logradouro")
	return tags
}

func (r *runState) touchPII(tc *tableContext, col *domain.Column, gen generators.Generator) {
	tags := columnPIITags(col.Name)
	if tagger, ok := gen.(generators.PIITagger); ok {
		tags = append(tags, tagger.PIITags()...)
	}
	for _, tag := range tags {
		r.report.TouchPII(tc.columnKey(col) + ":" + tag)
	}
}
