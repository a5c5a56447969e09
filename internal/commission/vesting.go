package commission

import (
	"math"
	"time"
)

const vestingMonth = 30 * 24 * time.Hour

// Vesting describes how many months of residuals a rep keeps after leaving.
type Vesting struct {
	MonthsActive   int    `json:"months_active"`
	ResidualMonths int    `json:"residual_months"`
	Description    string `json:"description"`
}

type vestingTier struct {
	minMonths      int
	residualMonths int
	description    string
}

// Highest tier first.
var vestingSchedule = []vestingTier{
	{minMonths: 24, residualMonths: 24, description: "24+ mo tenure: 24 months of residuals vested"},
	{minMonths: 12, residualMonths: 12, description: "12-24 mo tenure: 12 months of residuals vested"},
	{minMonths: 6, residualMonths: 6, description: "6-12 mo tenure: 6 months of residuals vested"},
}

// ComputeVesting measures tenure in 30-day months from the rep's start date to
// their end date, or to now when they are still employed.
func ComputeVesting(rep Rep, now time.Time) Vesting {
	if rep.StartDate == nil {
		return Vesting{Description: "No start date"}
	}

	end := now
	if rep.EndDate != nil {
		end = *rep.EndDate
	}

	months := int(math.Floor(float64(end.Sub(*rep.StartDate)) / float64(vestingMonth)))
	if months < 0 {
		months = 0
	}

	for _, tier := range vestingSchedule {
		if months >= tier.minMonths {
			return Vesting{MonthsActive: months, ResidualMonths: tier.residualMonths, Description: tier.description}
		}
	}
	return Vesting{MonthsActive: months, Description: "Under 6 mo tenure: no residuals vested"}
}
