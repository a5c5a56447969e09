package deal

import (
	"github.com/Simplici0/dealdesk/internal/num"
)

const (
	DefaultDocFee     = 299.0
	DefaultTaxRate    = 0.0725
	DefaultTermMonths = 48
	DefaultAPR        = 18.0

	// MaxTermMonths bounds the loan term; longer terms fall back to the default.
	MaxTermMonths = 600
)

// Defaults are substituted for worksheet fields that are blank or unparsable.
// Every other monetary field falls back to 0.
type Defaults struct {
	DocFee     float64 `json:"doc_fee"`
	TaxRate    float64 `json:"tax_rate"`
	TermMonths int     `json:"term_months"`
	APR        float64 `json:"apr"`
}

// StandardDefaults returns the dealership's out-of-the-box worksheet defaults.
func StandardDefaults() Defaults {
	return Defaults{
		DocFee:     DefaultDocFee,
		TaxRate:    DefaultTaxRate,
		TermMonths: DefaultTermMonths,
		APR:        DefaultAPR,
	}
}

// ParseInputs reads worksheet fields by their form names. It never fails: any
// value that does not parse takes the field's default.
func ParseInputs(values num.Getter, d Defaults) Inputs {
	money := func(key string) float64 { return num.Money(values.Get(key), 0) }

	return Inputs{
		VehicleCashPrice:     money("vehicle_cash_price"),
		AccessoriesTotal:     money("accessories_total"),
		RebateAmount:         money("rebate_amount"),
		RebateApplied:        money("rebate_applied"),
		TradeInAllowance:     money("trade_in_allowance"),
		TradeInPayoff:        money("trade_in_payoff"),
		DownPayment:          money("down_payment"),
		ServiceContractPrice: money("service_contract_price"),
		GAPPrice:             money("gap_insurance_price"),
		ProtectionPrice:      money("protection_package_price"),
		DocFee:               num.Money(values.Get("doc_fee"), d.DocFee),
		TaxRate:              num.Money(values.Get("tax_rate"), d.TaxRate),
		LicenseFee:           money("license_fee"),
		RegistrationFee:      money("registration_fee"),
		TitleFee:             money("title_fee"),
		PropertyTax:          money("property_tax"),
		InspectionFee:        money("inspection_fee"),
		EmissionsFee:         money("emissions_fee"),
		WasteTireFee:         money("waste_tire_fee"),
		APR:                  num.Money(values.Get("apr"), d.APR),
		TermMonths:           termMonths(num.Int(values.Get("term_months"), d.TermMonths), d.TermMonths),
		CreditScore:          nonNegativeInt(num.Int(values.Get("credit_score"), 0), 0),
	}
}

// ParseVehicle returns nil unless at least one vehicle field was submitted.
func ParseVehicle(values num.Getter) *Vehicle {
	if !num.Present(values, "vehicle_purchase_price", "vehicle_mileage", "vehicle_year", "trade_acv") {
		return nil
	}

	return &Vehicle{
		PurchasePrice: num.Money(values.Get("vehicle_purchase_price"), 0),
		Mileage:       nonNegativeInt(num.Int(values.Get("vehicle_mileage"), 0), 0),
		Year:          nonNegativeInt(num.Int(values.Get("vehicle_year"), 0), 0),
		TradeACV:      num.Money(values.Get("trade_acv"), 0),
	}
}

func termMonths(v, fallback int) int {
	if v > MaxTermMonths {
		return fallback
	}
	return nonNegativeInt(v, fallback)
}

func nonNegativeInt(v, fallback int) int {
	if v < 0 {
		return fallback
	}
	return v
}
