package commission

import (
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/dealdesk/internal/num"
)

const dateLayout = "2006-01-02"

// Plan defaults for reps created without explicit commission terms.
const (
	DefaultClawbackDays   = 90
	DefaultBonusThreshold = 10
)

// ParseRep reads a rep's plan from form values. Numeric fields fall back to
// defaults; only the name and date formats are validated.
func ParseRep(values num.Getter) (Rep, error) {
	rep := Rep{
		Name:              strings.TrimSpace(values.Get("name")),
		UpfrontCommission: num.Money(values.Get("upfront_commission"), 0),
		ResidualRate:      num.Money(values.Get("residual_rate"), 0),
		BonusThreshold:    num.Int(values.Get("bonus_threshold"), DefaultBonusThreshold),
		BonusAmount:       num.Money(values.Get("bonus_amount"), 0),
		ClawbackDays:      num.Int(values.Get("clawback_days"), DefaultClawbackDays),
	}
	if rep.Name == "" {
		return rep, fmt.Errorf("name is required")
	}
	if rep.BonusThreshold < 0 {
		rep.BonusThreshold = DefaultBonusThreshold
	}
	if rep.ClawbackDays < 0 {
		rep.ClawbackDays = DefaultClawbackDays
	}

	var err error
	if rep.StartDate, err = parseOptionalDate(values.Get("start_date"), "start_date"); err != nil {
		return rep, err
	}
	if rep.EndDate, err = parseOptionalDate(values.Get("end_date"), "end_date"); err != nil {
		return rep, err
	}
	return rep, nil
}

// ParseSignup reads a new signup for repID. A blank signup_date means today.
func ParseSignup(values num.Getter, repID int64, today time.Time) (Signup, error) {
	s := Signup{
		RepID:        repID,
		CustomerName: strings.TrimSpace(values.Get("customer_name")),
		Status:       StatusActive,
		MonthlyRate:  num.Money(values.Get("monthly_rate"), 0),
		SignupDate:   civilDate(today),
	}

	date, err := parseOptionalDate(values.Get("signup_date"), "signup_date")
	if err != nil {
		return s, err
	}
	if date != nil {
		s.SignupDate = *date
	}
	return s, nil
}

// ParseDate parses a YYYY-MM-DD date at midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(raw))
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func parseOptionalDate(raw, field string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD", field)
	}
	return &t, nil
}
