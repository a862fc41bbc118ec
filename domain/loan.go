package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleMode selects how the per-period breakdown splits each installment.
type ScheduleMode string

const (
	// ScheduleAmortizing recomputes interest on the remaining balance every month.
	ScheduleAmortizing ScheduleMode = "amortizing"
	// ScheduleFlat repeats the first month's interest/principal split for every row.
	ScheduleFlat ScheduleMode = "flat"
)

type LoanInput struct {
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
	TenureYears       decimal.Decimal `json:"tenure_years"`
	Schedule          ScheduleMode    `json:"schedule,omitempty"`
}

type PeriodRow struct {
	Period           int             `json:"period"`
	Installment      decimal.Decimal `json:"installment"`
	InterestPortion  decimal.Decimal `json:"interest_portion"`
	PrincipalPortion decimal.Decimal `json:"principal_portion"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

type AmortizationResult struct {
	Months                   int             `json:"months"`
	MonthlyInstallment       decimal.Decimal `json:"monthly_installment"`
	TotalPayment             decimal.Decimal `json:"total_payment"`
	TotalInterest            decimal.Decimal `json:"total_interest"`
	EffectiveInterestPercent decimal.Decimal `json:"effective_interest_percent"`
	ScheduleMode             ScheduleMode    `json:"schedule_mode"`
	Schedule                 []PeriodRow     `json:"schedule"`
}

// CalculationRecord is a calculation kept in the history store.
type CalculationRecord struct {
	ID                       string          `json:"id"`
	Input                    LoanInput       `json:"input"`
	Months                   int             `json:"months"`
	MonthlyInstallment       decimal.Decimal `json:"monthly_installment"`
	TotalPayment             decimal.Decimal `json:"total_payment"`
	EffectiveInterestPercent decimal.Decimal `json:"effective_interest_percent"`
	CreatedAt                time.Time       `json:"created_at"`
}
