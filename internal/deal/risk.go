package deal

import (
	"fmt"
	"math"
	"time"

	"github.com/Simplici0/dealdesk/internal/finance"
)

const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

const (
	ProductGAP        = "gap"
	ProductWarranty   = "warranty"
	ProductProtection = "protection"
	ProductAccessory  = "accessory"
)

const (
	baseScore           = 75
	accessoryFlatProfit = 200.0
)

// Vehicle is the inventory context of the unit being sold. TradeACV is the
// appraised actual cash value of the trade, 0 when unknown.
type Vehicle struct {
	PurchasePrice float64 `json:"purchase_price"`
	Mileage       int     `json:"mileage"`
	Year          int     `json:"year"`
	TradeACV      float64 `json:"trade_acv"`
}

// Catalog holds list prices and the share of each price that is dealer profit.
type Catalog struct {
	GAPListPrice         float64
	GAPProfitRate        float64
	WarrantyListPrice    float64
	WarrantyProfitRate   float64
	ProtectionListPrice  float64
	ProtectionProfitRate float64
}

// StandardCatalog returns the built-in back-end product list.
func StandardCatalog() Catalog {
	return Catalog{
		GAPListPrice:         895,
		GAPProfitRate:        0.75,
		WarrantyListPrice:    2495,
		WarrantyProfitRate:   0.50,
		ProtectionListPrice:  799,
		ProtectionProfitRate: 0.70,
	}
}

// Warning flags a structural problem with a deal.
type Warning struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Suggestion is an upsell opportunity with its estimated dealer profit.
type Suggestion struct {
	Title   string  `json:"title"`
	Message string  `json:"message"`
	Profit  float64 `json:"profit"`
	Product string  `json:"product"`
}

// Assessment is the health score of a deal plus the figures it was scored on.
// FrontEnd and TotalProfit are nil when no vehicle context was supplied.
type Assessment struct {
	Score          int          `json:"score"`
	Warnings       []Warning    `json:"warnings"`
	Suggestions    []Suggestion `json:"suggestions"`
	TotalSale      float64      `json:"total_sale"`
	AmountFinanced float64      `json:"amount_financed"`
	MonthlyPayment float64      `json:"monthly_payment"`
	SalesTax       float64      `json:"sales_tax"`
	FinanceCharge  float64      `json:"finance_charge"`
	LTV            float64      `json:"ltv"`
	FrontEnd       *float64     `json:"front_end,omitempty"`
	TotalProfit    *float64     `json:"total_profit,omitempty"`
}

type tier struct {
	above   bool
	bound   float64
	delta   int
	warning Warning
}

func (t tier) matches(v float64) bool {
	if t.above {
		return v > t.bound
	}
	return v < t.bound
}

// firstMatch walks tiers top-down and stops at the first one that matches.
func firstMatch(tiers []tier, v float64) (tier, bool) {
	for _, t := range tiers {
		if t.matches(v) {
			return t, true
		}
	}
	return tier{}, false
}

var ltvTiers = []tier{
	{above: true, bound: 130, delta: -20, warning: Warning{
		Title:    "Severely upside down",
		Message:  "Loan-to-value is above 130%; most lenders will not fund this structure.",
		Severity: SeverityHigh,
	}},
	{above: true, bound: 120, delta: -10, warning: Warning{
		Title:    "High loan-to-value",
		Message:  "Loan-to-value is above 120%; expect lender pushback or a larger down payment.",
		Severity: SeverityMedium,
	}},
}

var creditTiers = []tier{
	{bound: 500, delta: -25, warning: Warning{
		Title:    "Deep subprime credit",
		Message:  "Credit score below 500; approval is unlikely without a cosigner.",
		Severity: SeverityHigh,
	}},
	{bound: 550, delta: -15, warning: Warning{
		Title:    "Subprime credit",
		Message:  "Credit score 500-549; plan for a subprime lender and a higher rate.",
		Severity: SeverityHigh,
	}},
	{bound: 620, delta: -8, warning: Warning{
		Title:    "Near-prime credit",
		Message:  "Credit score 550-619; rate will likely be above the advertised APR.",
		Severity: SeverityMedium,
	}},
}

// Assess scores a deal and proposes back-end products. vehicle may be nil, in
// which case the front-end, profit and warranty rules are skipped. asOf pins the
// current date used for vehicle age.
func Assess(in Inputs, vehicle *Vehicle, catalog Catalog, asOf time.Time) Assessment {
	price := in.VehicleCashPrice
	tradeValue := in.TradeInAllowance

	taxable := math.Max(0, price-tradeValue)
	salesTax := taxable * in.TaxRate
	negativeEquity := math.Max(0, in.TradeInPayoff-tradeValue)
	backEnd := in.GAPPrice + in.ServiceContractPrice + in.ProtectionPrice + in.DocFee + in.AccessoriesTotal
	totalSale := price + backEnd + salesTax - tradeValue + negativeEquity

	amountFinanced := totalSale - in.DownPayment
	financing := finance.Amortize(amountFinanced, in.APR, in.TermMonths)

	ltv := 0.0
	if price != 0 {
		ltv = amountFinanced / price * 100
	}

	a := Assessment{
		Score:          baseScore,
		Warnings:       []Warning{},
		Suggestions:    []Suggestion{},
		TotalSale:      totalSale,
		AmountFinanced: amountFinanced,
		MonthlyPayment: financing.MonthlyPayment,
		SalesTax:       salesTax,
		FinanceCharge:  financing.FinanceCharge,
		LTV:            ltv,
	}

	if t, ok := firstMatch(ltvTiers, ltv); ok {
		a.apply(t.delta, t.warning)
	}

	if vehicle != nil {
		frontEnd := price - vehicle.PurchasePrice
		tradeProfit := 0.0
		if vehicle.TradeACV > 0 {
			tradeProfit = vehicle.TradeACV - tradeValue
		}
		totalProfit := frontEnd + backEnd + tradeProfit
		a.FrontEnd = &frontEnd
		a.TotalProfit = &totalProfit

		if frontEnd < 500 && price > 5000 {
			a.apply(-10, Warning{
				Title:    "Thin front-end gross",
				Message:  fmt.Sprintf("Front-end gross is $%.0f on a $%.0f unit.", frontEnd, price),
				Severity: SeverityMedium,
			})
		}
		if totalProfit < 1000 && price > 8000 {
			a.apply(-5, Warning{
				Title:    "Low total profit",
				Message:  fmt.Sprintf("Total deal profit is $%.0f.", totalProfit),
				Severity: SeverityLow,
			})
		}
	}

	if negativeEquity > 0 {
		a.apply(-10, Warning{
			Title:    "Negative equity",
			Message:  fmt.Sprintf("Trade payoff exceeds allowance by $%.0f; the difference is rolled into the loan.", negativeEquity),
			Severity: SeverityHigh,
		})
	}

	if financing.MonthlyPayment > 700 {
		a.apply(-10, Warning{
			Title:    "High monthly payment",
			Message:  fmt.Sprintf("Payment of $%.2f per month may exceed the customer's budget.", financing.MonthlyPayment),
			Severity: SeverityMedium,
		})
	}

	if in.CreditScore > 0 {
		if t, ok := firstMatch(creditTiers, float64(in.CreditScore)); ok {
			a.apply(t.delta, t.warning)
		}
	}

	if price > 0 && in.DownPayment >= price*0.20 {
		a.Score += 10
	}

	a.Score = clamp(a.Score, 0, 100)
	a.Suggestions = suggest(in, vehicle, catalog, amountFinanced, ltv, asOf)

	return a
}

func (a *Assessment) apply(delta int, w Warning) {
	a.Score += delta
	a.Warnings = append(a.Warnings, w)
}

func suggest(in Inputs, vehicle *Vehicle, catalog Catalog, amountFinanced, ltv float64, asOf time.Time) []Suggestion {
	suggestions := []Suggestion{}

	financed := amountFinanced > 0 && in.APR > 0 && in.TermMonths > 0
	if in.GAPPrice == 0 && financed && ltv > 80 {
		suggestions = append(suggestions, Suggestion{
			Title:   "Offer GAP insurance",
			Message: fmt.Sprintf("Loan-to-value is %.0f%%; GAP covers the difference if the vehicle is totaled.", ltv),
			Profit:  catalog.GAPListPrice * catalog.GAPProfitRate,
			Product: ProductGAP,
		})
	}

	if in.ServiceContractPrice == 0 && vehicle != nil {
		age := 0
		if vehicle.Year > 0 {
			age = asOf.Year() - vehicle.Year
		}
		if vehicle.Mileage > 50000 || age > 5 {
			suggestions = append(suggestions, Suggestion{
				Title:   "Offer an extended warranty",
				Message: fmt.Sprintf("Vehicle has %d miles and is %d years old; factory coverage has likely expired.", vehicle.Mileage, age),
				Profit:  catalog.WarrantyListPrice * catalog.WarrantyProfitRate,
				Product: ProductWarranty,
			})
		}
	}

	if in.ProtectionPrice == 0 {
		suggestions = append(suggestions, Suggestion{
			Title:   "Offer the protection package",
			Message: "Paint and interior protection is not on this deal.",
			Profit:  catalog.ProtectionListPrice * catalog.ProtectionProfitRate,
			Product: ProductProtection,
		})
	}

	if in.AccessoriesTotal == 0 {
		suggestions = append(suggestions, Suggestion{
			Title:   "Add accessories",
			Message: "No accessories are on this deal; floor mats, tint or a bed liner are easy adds.",
			Profit:  accessoryFlatProfit,
			Product: ProductAccessory,
		})
	}

	return suggestions
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
