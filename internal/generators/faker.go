package generators

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/go-faker/faker/v4"

	"github.com/mmrzaf/datalchemy/internal/assets"
	"github.com/mmrzaf/datalchemy/internal/domain"
)

const (
	LocaleEnUS = "en_US"
	LocalePtBR = "pt_BR"
)

// faker keeps its random source in a package global.
var fakerMu sync.Mutex

type fakerText func() string

type fakerEntry struct {
	text    fakerText
	number  func() float64
	ptBR    func(l *assets.Loader, rng *rand.Rand) string
	email   bool
	piiTags []string
}

var companySuffixes = []string{"Inc", "LLC", "Group", "Ltd", "Holdings", "Partners"}

var freeEmailDomains = []string{"gmail.com", "yahoo.com", "hotmail.com"}

var fakerCatalogue = map[string]map[string]fakerEntry{
	"name": {
		"Name":            {text: func() string { return faker.Name() }, ptBR: fullName, piiTags: []string{TagName}},
		"FirstName":       {text: func() string { return faker.FirstName() }, ptBR: func(l *assets.Loader, rng *rand.Rand) string { return pick(rng, firstNames(l)) }, piiTags: []string{TagName}},
		"LastName":        {text: func() string { return faker.LastName() }, ptBR: func(l *assets.Loader, rng *rand.Rand) string { return pick(rng, lastNames(l)) }, piiTags: []string{TagName}},
		"FirstNameMale":   {text: func() string { return faker.FirstNameMale() }, piiTags: []string{TagName}},
		"FirstNameFemale": {text: func() string { return faker.FirstNameFemale() }, piiTags: []string{TagName}},
		"TitleMale":       {text: func() string { return faker.TitleMale() }},
		"TitleFemale":     {text: func() string { return faker.TitleFemale() }},
	},
	"internet": {
		"Email":      {text: func() string { return faker.Email() }, email: true, piiTags: []string{TagEmail}},
		"SafeEmail":  {text: func() string { return strings.ToLower(faker.Username()) + "@example.com" }, email: true, piiTags: []string{TagEmail}},
		"FreeEmail":  {text: freeEmail, email: true, piiTags: []string{TagEmail}},
		"Username":   {text: func() string { return faker.Username() }},
		"URL":        {text: func() string { return faker.URL() }, piiTags: []string{TagNetwork}},
		"DomainName": {text: func() string { return faker.DomainName() }},
		"IPv4":       {text: func() string { return faker.IPv4() }, piiTags: []string{TagNetwork}},
		"IPv6":       {text: func() string { return faker.IPv6() }, piiTags: []string{TagNetwork}},
		"MacAddress": {text: func() string { return faker.MacAddress() }, piiTags: []string{TagNetwork}},
		"Password":   {text: func() string { return faker.Password() }},
	},
	"phone_number": {
		"PhoneNumber":         {text: func() string { return faker.Phonenumber() }, piiTags: []string{TagPhone}},
		"E164PhoneNumber":     {text: func() string { return faker.E164PhoneNumber() }, piiTags: []string{TagPhone}},
		"TollFreePhoneNumber": {text: func() string { return faker.TollFreePhoneNumber() }, piiTags: []string{TagPhone}},
	},
	"lorem": {
		"Word":      {text: func() string { return faker.Word() }},
		"Sentence":  {text: func() string { return faker.Sentence() }},
		"Paragraph": {text: func() string { return faker.Paragraph() }},
	},
	"address": {
		"StreetAddress": {text: func() string { return faker.GetRealAddress().Address }, ptBR: brStreet, piiTags: []string{TagAddress}},
		"City":          {text: func() string { return faker.GetRealAddress().City }, ptBR: brCity, piiTags: []string{TagLocation}},
		"State":         {text: func() string { return faker.GetRealAddress().State }, ptBR: brState, piiTags: []string{TagLocation}},
		"PostalCode":    {text: func() string { return faker.GetRealAddress().PostalCode }, ptBR: brPostalCode, piiTags: []string{TagLocation}},
		"Latitude":      {number: func() float64 { return faker.Latitude() }, piiTags: []string{TagLocation}},
		"Longitude":     {number: func() float64 { return faker.Longitude() }, piiTags: []string{TagLocation}},
	},
	"company": {
		"CompanyName":   {text: func() string { return faker.LastName() + " " + companySuffixes[fakerIndex(len(companySuffixes))] }},
		"CompanySuffix": {text: func() string { return companySuffixes[fakerIndex(len(companySuffixes))] }},
	},
	"finance": {
		"Currency":           {text: func() string { return faker.Currency() }},
		"AmountWithCurrency": {text: func() string { return faker.AmountWithCurrency() }},
	},
	"datetime": {
		"Date":      {text: func() string { return faker.Date() }},
		"Time":      {text: func() string { return faker.TimeString() }},
		"MonthName": {text: func() string { return faker.MonthName() }},
		"Year":      {text: func() string { return faker.YearString() }},
		"DayOfWeek": {text: func() string { return faker.DayOfWeek() }},
		"Timezone":  {text: func() string { return faker.Timezone() }},
		"Century":   {text: func() string { return faker.Century() }},
	},
	"payment": {
		"CreditCardNumber": {text: func() string { return faker.CCNumber() }},
		"CreditCardType":   {text: func() string { return faker.CCType() }},
	},
}

var fakerRand = rand.New(rand.NewSource(1))

// fakerIndex draws from the source seeded alongside faker; callers hold fakerMu.
func fakerIndex(n int) int { return fakerRand.Intn(n) }

func freeEmail() string {
	return strings.ToLower(faker.Username()) + "@" + freeEmailDomains[fakerIndex(len(freeEmailDomains))]
}

func brStreet(l *assets.Loader, rng *rand.Rand) string {
	return fmt.Sprintf("%s, %d", pick(rng, l.LinesOr(assets.StreetsPath, assets.DefaultStreets)), intBetween(rng, 1, 9999))
}

func brCity(l *assets.Loader, rng *rand.Rand) string {
	cities := l.CitiesOr(assets.CitiesPath, assets.DefaultCities)
	return cities[rng.Intn(len(cities))].Name
}

func brState(l *assets.Loader, rng *rand.Rand) string {
	cities := l.CitiesOr(assets.CitiesPath, assets.DefaultCities)
	if uf := cities[rng.Intn(len(cities))].UF; uf != "" {
		return uf
	}
	return pick(rng, assets.UFs)
}

func brPostalCode(_ *assets.Loader, rng *rand.Rand) string {
	return fmt.Sprintf("%05d-%03d", intBetween(rng, 1000, 99999), intBetween(rng, 0, 999))
}

// FakerGenerator adapts one go-faker function as faker.<module>.raw.<Name>.
type FakerGenerator struct {
	id     string
	entry  fakerEntry
	assets *assets.Loader
}

// FakerGenerators builds the adapter for every catalogued faker function.
func FakerGenerators(loader *assets.Loader) []*FakerGenerator {
	modules := make([]string, 0, len(fakerCatalogue))
	for m := range fakerCatalogue {
		modules = append(modules, m)
	}
	sort.Strings(modules)
	out := make([]*FakerGenerator, 0)
	for _, m := range modules {
		names := make([]string, 0, len(fakerCatalogue[m]))
		for n := range fakerCatalogue[m] {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			out = append(out, &FakerGenerator{
				id:     "faker." + m + ".raw." + n,
				entry:  fakerCatalogue[m][n],
				assets: loader,
			})
		}
	}
	return out
}

func (g *FakerGenerator) ID() string { return g.id }

func (g *FakerGenerator) Params() []ParamSpec {
	if g.entry.number != nil {
		return nil
	}
	return textLimitParams
}

func (g *FakerGenerator) PIITags() []string { return g.entry.piiTags }

func (g *FakerGenerator) SupportsLocale(locale string) bool {
	return locale == "" || locale == LocaleEnUS || locale == LocalePtBR
}

func (g *FakerGenerator) Validate(params Params, column *domain.Column) error {
	_, err := NewTextLimits(g.id, params, column)
	return err
}

func (g *FakerGenerator) Generate(ctx *GeneratorContext, params Params, rng *rand.Rand) (domain.Value, error) {
	if !g.SupportsLocale(ctx.Locale) {
		return domain.Null(), domain.InvalidPlanf("%s: unsupported locale %q", g.id, ctx.Locale)
	}
	if g.entry.number != nil {
		var f float64
		withFakerSeed(rng, func() { f = g.entry.number() })
		return domain.FloatValue(f), nil
	}
	limits, err := NewTextLimits(g.id, params, ctx.Column)
	if err != nil {
		return domain.Null(), err
	}
	var s string
	for attempt := 0; attempt < 10; attempt++ {
		s = limits.clip(g.text(ctx, rng))
		if err = limits.Check(g.id, s); err == nil {
			return domain.TextValue(s), nil
		}
	}
	return domain.Null(), err
}

func (g *FakerGenerator) text(ctx *GeneratorContext, rng *rand.Rand) string {
	if ctx.Locale == LocalePtBR && g.entry.ptBR != nil {
		return g.entry.ptBR(g.assets, rng)
	}
	var s string
	withFakerSeed(rng, func() { s = g.entry.text() })
	return s
}

func (g *FakerGenerator) GenerateUnique(ctx *GeneratorContext, _ Params, index int64) (domain.Value, error) {
	if g.entry.number != nil {
		return domain.FloatValue(float64(index + 1)), nil
	}
	if g.entry.email {
		return UniqueEmail(ctx, index), nil
	}
	return uniqueColumnText(ctx, index), nil
}

// withFakerSeed reseeds faker from rng for the duration of fn.
func withFakerSeed(rng *rand.Rand, fn func()) {
	seed := rng.Int63()
	fakerMu.Lock()
	defer fakerMu.Unlock()
	faker.SetRandomSource(faker.NewSafeSource(rand.NewSource(seed)))
	fakerRand = rand.New(rand.NewSource(seed))
	fn()
}

// clip truncates to the tightest max length before checking.
func (l *TextLimits) clip(s string) string {
	max := -1
	if l.MaxLen != nil {
		max = *l.MaxLen
	}
	if l.SchemaMax != nil && (max < 0 || *l.SchemaMax < max) {
		max = *l.SchemaMax
	}
	return truncate(s, max)
}
