package commission

import (
	"math"
	"time"
)

// Payout is a rep's commission statement for one period.
type Payout struct {
	RepID            int64   `json:"rep_id"`
	PayoutPeriod     string  `json:"payout_period"`
	UpfrontTotal     float64 `json:"upfront_total"`
	UpfrontCount     int     `json:"upfront_count"`
	ResidualTotal    float64 `json:"residual_total"`
	ResidualAccounts int     `json:"residual_accounts"`
	BonusTotal       float64 `json:"bonus_total"`
	ClawbackTotal    float64 `json:"clawback_total"`
	ClawbackCount    int     `json:"clawback_count"`
	GrossPayout      float64 `json:"gross_payout"`
	NetPayout        float64 `json:"net_payout"`
}

// ComputePayout builds the statement for rep over period. Signups belonging to
// other reps are ignored. Residuals are paid on every currently active account,
// not just those signed in the period, and each clawback reclaims one full
// upfront commission.
func ComputePayout(rep Rep, signups []Signup, period Period) Payout {
	p := Payout{RepID: rep.ID, PayoutPeriod: period.String()}

	for _, s := range signups {
		if s.RepID != rep.ID {
			continue
		}
		if period.Contains(s.SignupDate) {
			p.UpfrontCount++
		}
		if s.Status == StatusActive {
			p.ResidualAccounts++
			p.ResidualTotal += s.MonthlyRate * rep.ResidualRate
		}
		if s.ClawbackApplied && s.CancelDate != nil && period.Contains(*s.CancelDate) {
			p.ClawbackCount++
		}
	}

	p.UpfrontTotal = float64(p.UpfrontCount) * rep.UpfrontCommission
	if p.UpfrontCount >= rep.BonusThreshold {
		p.BonusTotal = rep.BonusAmount
	}
	p.ClawbackTotal = float64(p.ClawbackCount) * rep.UpfrontCommission

	p.GrossPayout = p.UpfrontTotal + p.ResidualTotal + p.BonusTotal
	p.NetPayout = p.GrossPayout - p.ClawbackTotal
	return p
}

// Cancel cancels an active signup as of asOf. The same instant decides the
// clawback and becomes the stored cancel date. A signup cancelled within the
// rep's clawback window moves to clawback; later cancellations move to
// cancelled. Signups that are no longer active are returned unchanged with
// ok=false.
func Cancel(s Signup, rep Rep, asOf time.Time) (Signup, bool) {
	if s.Status != StatusActive {
		return s, false
	}

	cancelDate := asOf.UTC()
	days := DaysSince(s.SignupDate, cancelDate)

	s.CancelDate = &cancelDate
	if days <= rep.ClawbackDays {
		s.Status = StatusClawback
		s.ClawbackApplied = true
	} else {
		s.Status = StatusCancelled
		s.ClawbackApplied = false
	}
	return s, true
}

// DaysSince returns the whole days elapsed from start to end, floored.
func DaysSince(start, end time.Time) int {
	return int(math.Floor(end.Sub(start).Hours() / 24))
}
