package settings

import (
	"github.com/hitoshi/bookstore/internal/numeric"
	"github.com/hitoshi/bookstore/internal/validation"
)

const (
	FieldTaxRate      = "tax_rate"
	FieldShippingCost = "shipping_cost"
	FieldSubtotal     = "subtotal"
)

const (
	MsgTaxRateRequired      = "Tax rate is required"
	MsgTaxRateNumber        = "Tax rate must be a number"
	MsgTaxRateRange         = "Tax rate must be between 0 and 1"
	MsgShippingCostRequired = "Shipping cost is required"
	MsgShippingCostNumber   = "Shipping cost must be a number"
	MsgSubtotalNumber       = "Subtotal must be a number"
)

func isNumber(v string) bool {
	_, err := numeric.ParseNumericInput(v)
	return err == nil
}

// isAmount は2桁に丸めても有限のままの金額かを判定する。
func isAmount(v string) bool {
	f, err := numeric.ParseNumericInput(v)
	return err == nil && isFinite(numeric.Round2(f))
}

func isRate(v string) bool {
	f, err := numeric.ParseNumericInput(v)
	return err == nil && f >= 0 && f <= 1
}

// UpdateSchema は設定更新フォームのスキーマ。
// 数値入力は符号や指数表記を受け付けないため、送料は常に0以上になる。
var UpdateSchema = validation.Schema{
	Name: "settings",
	Fields: []validation.FieldRules{
		{Field: FieldTaxRate, Rules: []validation.Rule{
			validation.Required(MsgTaxRateRequired),
			validation.Custom(isNumber, MsgTaxRateNumber),
			validation.Custom(isRate, MsgTaxRateRange),
		}},
		{Field: FieldShippingCost, Rules: []validation.Rule{
			validation.Required(MsgShippingCostRequired),
			validation.Custom(isNumber, MsgShippingCostNumber),
			validation.Custom(isAmount, MsgShippingCostNumber),
		}},
	},
}

// UpdateInput は設定更新の入力。
type UpdateInput struct {
	TaxRate      NumericInput `json:"tax_rate"`
	ShippingCost NumericInput `json:"shipping_cost"`
}

// Fields はvalidation.Inputを実装する。
func (in UpdateInput) Fields() map[string]string {
	return map[string]string{
		FieldTaxRate:      in.TaxRate.Raw,
		FieldShippingCost: in.ShippingCost.Raw,
	}
}
