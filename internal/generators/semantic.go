package generators

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"github.com/mmrzaf/datalchemy/internal/assets"
	"github.com/mmrzaf/datalchemy/internal/domain"
)

const (
	TagName     = "pii.name"
	TagEmail    = "pii.email"
	TagPhone    = "pii.phone"
	TagCPF      = "pii.cpf"
	TagCNPJ     = "pii.cnpj"
	TagRG       = "pii.rg"
	TagLocation = "pii.location"
	TagAddress  = "pii.address"
	TagNetwork  = "pii.network"
)

func firstNames(l *assets.Loader) []string { return l.LinesOr(assets.FirstNamesPath, assets.DefaultFirstNames) }

func lastNames(l *assets.Loader) []string { return l.LinesOr(assets.LastNamesPath, assets.DefaultLastNames) }

func fullName(l *assets.Loader, rng *rand.Rand) string {
	return pick(rng, firstNames(l)) + " " + pick(rng, lastNames(l))
}

type BRNameGenerator struct {
	assets *assets.Loader
}

func (g *BRNameGenerator) ID() string { return "semantic.br.name" }

func (g *BRNameGenerator) Params() []ParamSpec { return nil }

func (g *BRNameGenerator) PIITags() []string { return []string{TagName} }

func (g *BRNameGenerator) Generate(ctx *GeneratorContext, _ Params, rng *rand.Rand) (domain.Value, error) {
	return domain.TextValue(truncateToColumn(ctx, fullName(g.assets, rng))), nil
}

func (g *BRNameGenerator) GenerateUnique(ctx *GeneratorContext, _ Params, index int64) (domain.Value, error) {
	return domain.TextValue(truncateToColumn(ctx, fmt.Sprintf("Pessoa %d", index+1))), nil
}

// SafeEmailGenerator builds addresses on example.com from a random name.
type SafeEmailGenerator struct {
	id     string
	assets *assets.Loader
}

func (g *SafeEmailGenerator) ID() string { return g.id }

func (g *SafeEmailGenerator) Params() []ParamSpec { return nil }

func (g *SafeEmailGenerator) PIITags() []string { return []string{TagEmail} }

func (g *SafeEmailGenerator) Generate(ctx *GeneratorContext, _ Params, rng *rand.Rand) (domain.Value, error) {
	local := slug(fullName(g.assets, rng))
	if local == "" {
		local = fmt.Sprintf("user%d", intBetween(rng, 1, 9999))
	}
	return domain.TextValue(truncateToColumn(ctx, local+"@example.com")), nil
}

func (g *SafeEmailGenerator) GenerateUnique(ctx *GeneratorContext, _ Params, index int64) (domain.Value, error) {
	return UniqueEmail(ctx, index), nil
}

// UniqueEmail is "user00001@example.com" style.
func UniqueEmail(ctx *GeneratorContext, index int64) domain.Value {
	return domain.TextValue(truncateToColumn(ctx, fmt.Sprintf("user%05d@example.com", index+1)))
}

type BRPhoneGenerator struct{}

func (g *BRPhoneGenerator) ID() string { return "semantic.br.phone" }

func (g *BRPhoneGenerator) Params() []ParamSpec { return nil }

func (g *BRPhoneGenerator) PIITags() []string { return []string{TagPhone} }

func (g *BRPhoneGenerator) Generate(ctx *GeneratorContext, _ Params, rng *rand.Rand) (domain.Value, error) {
	phone := fmt.Sprintf("+55%s%05d%04d", pick(rng, assets.DDDCodes), intBetween(rng, 90000, 99999), intBetween(rng, 0, 9999))
	return domain.TextValue(truncateToColumn(ctx, phone)), nil
}

// DocumentGenerator emits Brazilian tax ids (CPF, CNPJ) with valid check digits.
type DocumentGenerator struct {
	id      string
	base    int
	weights func(n int) []int
	tag     string
}

func NewCPFGenerator() *DocumentGenerator {
	return &DocumentGenerator{id: "semantic.br.cpf", base: 9, weights: cpfWeights, tag: TagCPF}
}

func NewCNPJGenerator() *DocumentGenerator {
	return &DocumentGenerator{id: "semantic.br.cnpj", base: 12, weights: cnpjWeights, tag: TagCNPJ}
}

func (g *DocumentGenerator) ID() string { return g.id }

func (g *DocumentGenerator) Params() []ParamSpec { return nil }

func (g *DocumentGenerator) PIITags() []string { return []string{g.tag} }

func (g *DocumentGenerator) Generate(ctx *GeneratorContext, _ Params, rng *rand.Rand) (domain.Value, error) {
	digits := make([]int, g.base, g.base+2)
	for i := range digits {
		digits[i] = rng.Intn(10)
	}
	digits = append(digits, checkDigit(digits, g.weights(len(digits))))
	digits = append(digits, checkDigit(digits, g.weights(len(digits))))
	var sb strings.Builder
	for _, d := range digits {
		sb.WriteByte(byte('0' + d))
	}
	return domain.TextValue(truncateToColumn(ctx, sb.String())), nil
}

func (g *DocumentGenerator) GenerateUnique(ctx *GeneratorContext, _ Params, index int64) (domain.Value, error) {
	return domain.TextValue(truncateToColumn(ctx, fmt.Sprintf("%0*d", g.base+2, index+1))), nil
}

// cpfWeights counts down from n+1 to 2.
func cpfWeights(n int) []int {
	w := make([]int, n)
	for i := range w {
		w[i] = n + 1 - i
	}
	return w
}

var cnpjWeightTable = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}

func cnpjWeights(n int) []int {
	return cnpjWeightTable[len(cnpjWeightTable)-n:]
}

func checkDigit(digits, weights []int) int {
	sum := 0
	for i, d := range digits {
		sum += d * weights[i]
	}
	if r := sum % 11; r >= 2 {
		return 11 - r
	}
	return 0
}

// DigitsGenerator emits a zero-padded random number of fixed width.
type DigitsGenerator struct {
	id    string
	width int
	tag   string
}

func (g *DigitsGenerator) ID() string { return g.id }

func (g *DigitsGenerator) Params() []ParamSpec { return nil }

func (g *DigitsGenerator) PIITags() []string { return []string{g.tag} }

func (g *DigitsGenerator) Generate(ctx *GeneratorContext, _ Params, rng *rand.Rand) (domain.Value, error) {
	var sb strings.Builder
	for i := 0; i < g.width; i++ {
		sb.WriteByte(byte('0' + rng.Intn(10)))
	}
	return domain.TextValue(truncateToColumn(ctx, sb.String())), nil
}

func (g *DigitsGenerator) GenerateUnique(ctx *GeneratorContext, _ Params, index int64) (domain.Value, error) {
	return domain.TextValue(truncateToColumn(ctx, fmt.Sprintf("%0*d", g.width, index+1))), nil
}

type BRCityGenerator struct {
	assets *assets.Loader
}

func (g *BRCityGenerator) ID() string { return "semantic.br.city" }

func (g *BRCityGenerator) Params() []ParamSpec { return nil }

func (g *BRCityGenerator) PIITags() []string { return []string{TagLocation} }

func (g *BRCityGenerator) Generate(ctx *GeneratorContext, _ Params, rng *rand.Rand) (domain.Value, error) {
	cities := g.assets.CitiesOr(assets.CitiesPath, assets.DefaultCities)
	return domain.TextValue(truncateToColumn(ctx, cities[rng.Intn(len(cities))].Name)), nil
}

type BRAddressGenerator struct {
	assets *assets.Loader
}

func (g *BRAddressGenerator) ID() string { return "semantic.br.address" }

func (g *BRAddressGenerator) Params() []ParamSpec { return nil }

func (g *BRAddressGenerator) PIITags() []string { return []string{TagAddress} }

func (g *BRAddressGenerator) Generate(ctx *GeneratorContext, _ Params, rng *rand.Rand) (domain.Value, error) {
	street := pick(rng, g.assets.LinesOr(assets.StreetsPath, assets.DefaultStreets))
	return domain.TextValue(truncateToColumn(ctx, fmt.Sprintf("%s, %d", street, intBetween(rng, 1, 9999)))), nil
}

type IPGenerator struct{}

func (g *IPGenerator) ID() string { return "semantic.br.ip" }

func (g *IPGenerator) Params() []ParamSpec { return nil }

func (g *IPGenerator) PIITags() []string { return []string{TagNetwork} }

func (g *IPGenerator) Generate(ctx *GeneratorContext, _ Params, rng *rand.Rand) (domain.Value, error) {
	ip := fmt.Sprintf("%d.%d.%d.%d", intBetween(rng, 1, 254), intBetween(rng, 1, 254), intBetween(rng, 1, 254), intBetween(rng, 1, 254))
	return domain.TextValue(truncateToColumn(ctx, ip)), nil
}

type URLGenerator struct{}

func (g *URLGenerator) ID() string { return "semantic.br.url" }

func (g *URLGenerator) Params() []ParamSpec { return nil }

func (g *URLGenerator) PIITags() []string { return []string{TagNetwork} }

func (g *URLGenerator) Generate(ctx *GeneratorContext, _ Params, rng *rand.Rand) (domain.Value, error) {
	return domain.TextValue(truncateToColumn(ctx, fmt.Sprintf("https://example.com/pagina-%d", intBetween(rng, 1, 9999)))), nil
}

func (g *URLGenerator) GenerateUnique(ctx *GeneratorContext, _ Params, index int64) (domain.Value, error) {
	return domain.TextValue(truncateToColumn(ctx, fmt.Sprintf("https://example.com/pagina-%d", index+1))), nil
}

var accentFolds = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
	"é", "e", "ê", "e", "è", "e", "ë", "e",
	"í", "i", "î", "i", "ì", "i", "ï", "i",
	"ó", "o", "ô", "o", "õ", "o", "ò", "o", "ö", "o",
	"ú", "u", "û", "u", "ù", "u", "ü", "u",
	"ç", "c", "ñ", "n",
)

// slug lowercases s, folds accents and joins alphanumeric runs with dots.
func slug(s string) string {
	s = accentFolds.Replace(strings.ToLower(s))
	var sb strings.Builder
	pendingDot := false
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingDot && sb.Len() > 0 {
				sb.WriteByte('.')
			}
			pendingDot = false
			sb.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			pendingDot = true
		}
	}
	return sb.String()
}
