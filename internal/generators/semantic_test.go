package generators

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMod11(digits string, weights func(int) []int, base int) bool {
	nums := make([]int, len(digits))
	for i, r := range digits {
		nums[i] = int(r - '0')
	}
	for n := base; n < len(nums); n++ {
		if checkDigit(nums[:n], weights(n)) != nums[n] {
			return false
		}
	}
	return true
}

func TestCPFHasValidCheckDigits(t *testing.T) {
	gen := NewCPFGenerator()
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		v, err := gen.Generate(newCtx(nil), nil, rng)
		require.NoError(t, err)
		s := v.String()
		require.Len(t, s, 11)
		assert.True(t, validMod11(s, cpfWeights, 9), s)
	}
}

func TestCPFKnownValue(t *testing.T) {
	// 529.982.247-25 is a commonly cited valid CPF.
	digits := []int{5, 2, 9, 9, 8, 2, 2, 4, 7}
	d1 := checkDigit(digits, cpfWeights(9))
	d2 := checkDigit(append(digits, d1), cpfWeights(10))
	assert.Equal(t, 2, d1)
	assert.Equal(t, 5, d2)
}

func TestCNPJHasValidCheckDigits(t *testing.T) {
	gen := NewCNPJGenerator()
	rng := rand.New(rand.NewSource(8))
	for i := 0; i < 100; i++ {
		v, err := gen.Generate(newCtx(nil), nil, rng)
		require.NoError(t, err)
		s := v.String()
		require.Len(t, s, 14)
		assert.True(t, validMod11(s, cnpjWeights, 12), s)
	}
}

func TestCNPJKnownValue(t *testing.T) {
	// 11.222.333/0001-81
	digits := []int{1, 1, 2, 2, 2, 3, 3, 3, 0, 0, 0, 1}
	d1 := checkDigit(digits, cnpjWeights(12))
	d2 := checkDigit(append(digits, d1), cnpjWeights(13))
	assert.Equal(t, 8, d1)
	assert.Equal(t, 1, d2)
}

func TestDocumentUniqueIsZeroPadded(t *testing.T) {
	v, _ := NewCPFGenerator().GenerateUnique(newCtx(nil), nil, 41)
	assert.Equal(t, "00000000042", v.String())
	v, _ = NewCNPJGenerator().GenerateUnique(newCtx(nil), nil, 0)
	assert.Equal(t, "00000000000001", v.String())
}

func TestPhoneShape(t *testing.T) {
	v, err := (&BRPhoneGenerator{}).Generate(newCtx(nil), nil, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Regexp(t, `^\+55\d{2}9\d{8}$`, v.String())
}

func TestSafeEmailUsesExampleDomain(t *testing.T) {
	gen := &SafeEmailGenerator{id: "semantic.br.email.safe"}
	v, err := gen.Generate(newCtx(nil), nil, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(v.String(), "@example.com"))
	assert.Regexp(t, `^[a-z0-9.]+@example\.com$`, v.String())

	u, _ := gen.GenerateUnique(newCtx(nil), nil, 49)
	assert.Equal(t, "user00050@example.com", u.String())
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "joao.da.silva", slug("  João  da-Silva. "))
	assert.Equal(t, "ana.b", slug("Ana__B"))
	assert.Equal(t, "", slug("!!!"))
}

func TestNameUnique(t *testing.T) {
	v, _ := (&BRNameGenerator{}).GenerateUnique(newCtx(nil), nil, 2)
	assert.Equal(t, "Pessoa 3", v.String())
}

func TestDomainValueSets(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	gen := &ValueSetGenerator{id: "domain.finance.payment_method", values: paymentMethods}
	v, err := gen.Generate(newCtx(nil), nil, rng)
	require.NoError(t, err)
	assert.Contains(t, paymentMethods, v.String())

	v, _ = (&TrackingCodeGenerator{}).Generate(newCtx(nil), nil, rng)
	assert.Regexp(t, `^BR\d{10}$`, v.String())

	v, _ = (&DimensionsGenerator{}).Generate(newCtx(nil), nil, rng)
	assert.Regexp(t, `^\d+x\d+x\d+$`, v.String())
}

func TestCatalogueIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, g := range Catalogue(nil) {
		assert.False(t, seen[g.ID()], g.ID())
		seen[g.ID()] = true
	}
	for _, id := range []string{"primitive.int.range", "semantic.br.cpf", "domain.finance.installments", "derive.fk", "derive.parent_value", "faker.name.raw.FirstName"} {
		assert.True(t, seen[id], id)
	}
}

func TestUFValues(t *testing.T) {
	for _, g := range Catalogue(nil) {
		if g.ID() != "semantic.br.uf" {
			continue
		}
		v, err := g.Generate(newCtx(nil), nil, rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		assert.Len(t, v.String(), 2)
		tagger, ok := g.(PIITagger)
		require.True(t, ok)
		assert.Equal(t, []string{TagLocation}, tagger.PIITags())
		return
	}
	t.Fatal("semantic.br.uf not registered")
}

