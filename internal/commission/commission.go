package commission

import (
	"fmt"
	"time"
)

const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusClawback  = "clawback"
)

const periodLayout = "2006-01"

// Rep is a sales rep's commission plan. ResidualRate is the fraction of each
// active account's monthly rate paid as residual.
type Rep struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	UpfrontCommission float64    `json:"upfront_commission"`
	ResidualRate      float64    `json:"residual_rate"`
	BonusThreshold    int        `json:"bonus_threshold"`
	BonusAmount       float64    `json:"bonus_amount"`
	ClawbackDays      int        `json:"clawback_days"`
	StartDate         *time.Time `json:"start_date,omitempty"`
	EndDate           *time.Time `json:"end_date,omitempty"`
}

// Signup is one account sold by a rep.
type Signup struct {
	ID              string     `json:"id"`
	RepID           int64      `json:"rep_id"`
	CustomerName    string     `json:"customer_name,omitempty"`
	SignupDate      time.Time  `json:"signup_date"`
	Status          string     `json:"status"`
	MonthlyRate     float64    `json:"monthly_rate"`
	CancelDate      *time.Time `json:"cancel_date,omitempty"`
	ClawbackApplied bool       `json:"clawback_applied"`
}

// Period is a calendar month. Start and End are the first and last day at
// midnight UTC.
type Period struct {
	Start time.Time
	End   time.Time
}

// ParsePeriod parses a "YYYY-MM" payout period.
func ParsePeriod(raw string) (Period, error) {
	month, err := time.Parse(periodLayout, raw)
	if err != nil {
		return Period{}, fmt.Errorf("payout period must be YYYY-MM: %w", err)
	}
	return PeriodOf(month), nil
}

// PeriodOf returns the calendar month containing t.
func PeriodOf(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 1, -1)}
}

// String formats the period as YYYY-MM.
func (p Period) String() string {
	return p.Start.Format(periodLayout)
}

// Contains reports whether the calendar date of t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	d := civilDate(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
