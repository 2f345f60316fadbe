package generators

import (
	"strings"

	"github.com/mmrzaf/datalchemy/internal/assets"
)

// Catalogue returns every built-in generator. Generators that read asset
// lists share loader.
func Catalogue(loader *assets.Loader) []Generator {
	gens := []Generator{
		&BoolGenerator{id: "primitive.bool"},
		&IntRangeGenerator{id: "primitive.int.range", defMin: 0, defMax: 10000},
		&IntSequenceHintGenerator{},
		&FloatRangeGenerator{id: "primitive.float.range", defMin: 0, defMax: 10000, scale: -1},
		&DecimalNumericGenerator{},
		&NormalGenerator{},
		&ConstGenerator{},
		&ChoiceGenerator{},
		&PatternGenerator{},
		&LoremGenerator{id: "primitive.text.lorem"},
		&UUIDv4Generator{id: "primitive.uuid.v4"},
		&DateRangeGenerator{id: "primitive.date.range"},
		&TimeRangeGenerator{id: "primitive.time.range"},
		&TimestampRangeGenerator{id: "primitive.timestamp.range"},
		&TimestampSeriesGenerator{},
		&EnumGenerator{},

		// Type defaults used when a column has no rule.
		&IntRangeGenerator{id: "primitive.int", defMin: 0, defMax: 10000},
		&FloatRangeGenerator{id: "primitive.float", defMin: 0, defMax: 10000, scale: -1},
		&UUIDv4Generator{id: "primitive.uuid"},
		&DateRangeGenerator{id: "primitive.date"},
		&TimeRangeGenerator{id: "primitive.time"},
		&TimestampRangeGenerator{id: "primitive.timestamp"},
		&LoremGenerator{id: "primitive.text"},

		&BRNameGenerator{assets: loader},
		&SafeEmailGenerator{id: "semantic.br.email.safe", assets: loader},
		&SafeEmailGenerator{id: "semantic.person.email", assets: loader},
		&BRPhoneGenerator{},
		NewCPFGenerator(),
		NewCNPJGenerator(),
		&DigitsGenerator{id: "semantic.br.rg", width: 9, tag: TagRG},
		&DigitsGenerator{id: "semantic.br.cep", width: 8, tag: TagLocation},
		&ValueSetGenerator{id: "semantic.br.uf", values: assets.UFs, tags: []string{TagLocation}},
		&BRCityGenerator{assets: loader},
		&BRAddressGenerator{assets: loader},
		&FloatRangeGenerator{id: "semantic.br.money.brl", defMin: 10, defMax: 10000, scale: 2},
		&IPGenerator{},
		&URLGenerator{},

		&ValueSetGenerator{id: "domain.crm.lead_stage", values: leadStages},
		&ValueSetGenerator{id: "domain.crm.activity_type", values: activityTypes},
		&FloatRangeGenerator{id: "domain.crm.deal_value", defMin: 1000, defMax: 75000, scale: 2},
		&ValueSetGenerator{id: "domain.crm.pipeline_name", values: pipelineNames},
		&ValueSetGenerator{id: "domain.finance.transaction_type", values: transactionTypes},
		&ValueSetGenerator{id: "domain.finance.payment_method", values: paymentMethods},
		&ValueSetGenerator{id: "domain.finance.invoice_status", values: invoiceStatuses},
		&IntRangeGenerator{id: "domain.finance.installments", defMin: 1, defMax: 12},
		&TrackingCodeGenerator{},
		&ValueSetGenerator{id: "domain.logistics.shipment_status", values: shipmentStatuses},
		&ValueSetGenerator{id: "domain.logistics.carrier", values: carriers},
		&DimensionsGenerator{},

		&EmailFromNameGenerator{},
		&AfterGenerator{id: "derive.updated_after_created"},
		&AfterGenerator{id: "derive.end_after_start"},
		&MoneyTotalGenerator{},
		&FKGenerator{},
		&ParentValueGenerator{},
	}
	for _, g := range FakerGenerators(loader) {
		gens = append(gens, g)
	}
	return gens
}

// Transforms returns every built-in transform.
func Transforms() []Transform {
	return []Transform{
		&NullRateTransform{},
		&TruncateTransform{},
		&FormatTransform{},
		&PrefixSuffixTransform{},
		&CasingTransform{},
		&WeightedChoiceTransform{},
		&MaskTransform{},
	}
}

// IsDerive reports whether id names a cross-column derivation.
func IsDerive(id string) bool {
	return strings.HasPrefix(id, "derive.")
}
