package generators

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

var (
	leadStages       = []string{"novo", "qualificado", "perdido"}
	activityTypes    = []string{"tarefa", "reuniao", "anotacao"}
	pipelineNames    = []string{"Prospeccao", "Qualificacao", "Fechamento"}
	transactionTypes = []string{"debito", "credito", "pix"}
	paymentMethods   = []string{"cartao_credito", "cartao_debito", "pix", "boleto", "transferencia"}
	invoiceStatuses  = []string{"aberta", "paga", "cancelada"}
	shipmentStatuses = []string{"criado", "em_transito", "entregue", "cancelado"}
	carriers         = []string{"correios", "jadlog", "total_express", "azul_cargo"}
)

type TrackingCodeGenerator struct{}

func (g *TrackingCodeGenerator) ID() string { return "domain.logistics.tracking_code" }

func (g *TrackingCodeGenerator) Params() []ParamSpec { return nil }

func (g *TrackingCodeGenerator) Generate(ctx *GeneratorContext, _ Params, rng *rand.Rand) (domain.Value, error) {
	var sb strings.Builder
	sb.WriteString("BR")
	for i := 0; i < 10; i++ {
		sb.WriteByte(byte('0' + rng.Intn(10)))
	}
	return domain.TextValue(truncateToColumn(ctx, sb.String())), nil
}

func (g *TrackingCodeGenerator) GenerateUnique(ctx *GeneratorContext, _ Params, index int64) (domain.Value, error) {
	return domain.TextValue(truncateToColumn(ctx, fmt.Sprintf("BR%010d", index+1))), nil
}

// DimensionsGenerator renders package sizes as "LxWxH" in centimetres.
type DimensionsGenerator struct{}

func (g *DimensionsGenerator) ID() string { return "domain.logistics.dimensions_cm" }

func (g *DimensionsGenerator) Params() []ParamSpec { return nil }

func (g *DimensionsGenerator) Generate(ctx *GeneratorContext, _ Params, rng *rand.Rand) (domain.Value, error) {
	dims := fmt.Sprintf("%dx%dx%d", intBetween(rng, 10, 100), intBetween(rng, 10, 100), intBetween(rng, 5, 80))
	return domain.TextValue(truncateToColumn(ctx, dims)), nil
}
