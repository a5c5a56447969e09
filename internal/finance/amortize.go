package finance

import "math"

// Financing contains the level-payment figures for an amortized loan.
type Financing struct {
	MonthlyPayment  float64
	TotalOfPayments float64
	FinanceCharge   float64
}

// Amortize computes the level monthly payment that repays principal at aprPercent
// over termMonths. It returns the zero value unless principal, APR and term are all
// positive, so a zero monthly rate never reaches the (1+r)^n - 1 denominator.
// When (1+r)^n overflows, the payment takes its limit principal*r.
func Amortize(principal, aprPercent float64, termMonths int) Financing {
	if principal <= 0 || aprPercent <= 0 || termMonths <= 0 {
		return Financing{}
	}

	monthlyRate := aprPercent / 100.0 / 12.0
	growth := math.Pow(1.0+monthlyRate, float64(termMonths))
	payment := principal * monthlyRate
	if !math.IsInf(growth, 1) {
		payment = payment * growth / (growth - 1.0)
	}
	totalOfPayments := payment * float64(termMonths)

	return Financing{
		MonthlyPayment:  payment,
		TotalOfPayments: totalOfPayments,
		FinanceCharge:   totalOfPayments - principal,
	}
}
