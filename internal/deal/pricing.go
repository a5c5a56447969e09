package deal

import (
	"math"

	"github.com/Simplici0/dealdesk/internal/finance"
)

// Inputs contains the raw figures entered on a deal worksheet. Rates follow the
// worksheet conventions: TaxRate is a fraction (0.0725), APR is a percent (18).
type Inputs struct {
	VehicleCashPrice     float64 `json:"vehicle_cash_price"`
	AccessoriesTotal     float64 `json:"accessories_total"`
	RebateAmount         float64 `json:"rebate_amount"`
	RebateApplied        float64 `json:"rebate_applied"`
	TradeInAllowance     float64 `json:"trade_in_allowance"`
	TradeInPayoff        float64 `json:"trade_in_payoff"`
	DownPayment          float64 `json:"down_payment"`
	ServiceContractPrice float64 `json:"service_contract_price"`
	GAPPrice             float64 `json:"gap_insurance_price"`
	ProtectionPrice      float64 `json:"protection_package_price"`
	DocFee               float64 `json:"doc_fee"`
	TaxRate              float64 `json:"tax_rate"`
	LicenseFee           float64 `json:"license_fee"`
	RegistrationFee      float64 `json:"registration_fee"`
	TitleFee             float64 `json:"title_fee"`
	PropertyTax          float64 `json:"property_tax"`
	InspectionFee        float64 `json:"inspection_fee"`
	EmissionsFee         float64 `json:"emissions_fee"`
	WasteTireFee         float64 `json:"waste_tire_fee"`
	APR                  float64 `json:"apr"`
	TermMonths           int     `json:"term_months"`
	CreditScore          int     `json:"credit_score,omitempty"`
}

// Totals contains every derived figure of the pricing worksheet.
type Totals struct {
	TotalCashPrice    float64 `json:"total_cash_price"`
	SubtotalPrice     float64 `json:"subtotal_price"`
	NetTradeAllowance float64 `json:"net_trade_allowance"`
	TotalCredits      float64 `json:"total_credits"`
	TotalFees         float64 `json:"total_fees"`
	SubtotalTaxable   float64 `json:"subtotal_taxable"`
	NetTaxableAmount  float64 `json:"net_taxable_amount"`
	TaxAmount         float64 `json:"tax_amount"`
	TotalDue          float64 `json:"total_due"`
	BalanceDue        float64 `json:"balance_due"`
	AmountFinanced    float64 `json:"amount_financed"`
	FinanceCharge     float64 `json:"finance_charge"`
	MonthlyPayment    float64 `json:"monthly_payment"`
	TotalOfPayments   float64 `json:"total_of_payments"`
}

// Fees sums the seven government and filing fees.
func (in Inputs) Fees() float64 {
	return in.LicenseFee +
		in.RegistrationFee +
		in.TitleFee +
		in.PropertyTax +
		in.InspectionFee +
		in.EmissionsFee +
		in.WasteTireFee
}

// ComputeTotals runs the worksheet in order. Positive trade equity is both a
// credit and a reduction of the taxable base; negative equity is neither.
// Nothing is rounded here.
func ComputeTotals(in Inputs) Totals {
	totalCashPrice := in.VehicleCashPrice + in.AccessoriesTotal
	subtotalPrice := totalCashPrice - in.RebateApplied
	netTrade := in.TradeInAllowance - in.TradeInPayoff
	tradeEquity := math.Max(netTrade, 0)
	totalCredits := in.DownPayment + tradeEquity
	totalFees := in.Fees()

	subtotalTaxable := subtotalPrice + in.ServiceContractPrice + in.GAPPrice + in.DocFee
	netTaxable := subtotalTaxable - tradeEquity
	taxAmount := netTaxable * in.TaxRate
	totalDue := subtotalTaxable + taxAmount + totalFees
	balanceDue := totalDue - totalCredits

	amountFinanced := balanceDue
	financing := finance.Amortize(amountFinanced, in.APR, in.TermMonths)

	return Totals{
		TotalCashPrice:    totalCashPrice,
		SubtotalPrice:     subtotalPrice,
		NetTradeAllowance: netTrade,
		TotalCredits:      totalCredits,
		TotalFees:         totalFees,
		SubtotalTaxable:   subtotalTaxable,
		NetTaxableAmount:  netTaxable,
		TaxAmount:         taxAmount,
		TotalDue:          totalDue,
		BalanceDue:        balanceDue,
		AmountFinanced:    amountFinanced,
		FinanceCharge:     financing.FinanceCharge,
		MonthlyPayment:    financing.MonthlyPayment,
		TotalOfPayments:   financing.TotalOfPayments,
	}
}
