package service

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"emi-calculator/domain"
)

var (
	hundred       = decimal.NewFromInt(100)
	monthsPerYear = decimal.NewFromInt(MonthsPerYear)
	minLoan       = decimal.NewFromFloat(MinLoanAmount)
	maxLoan       = decimal.NewFromFloat(MaxLoanAmount)
	maxRate       = decimal.NewFromFloat(MaxInterestRate)
)

// roundMoney rounds a float64 amount to 2 decimals, half away from zero.
func roundMoney(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value).Round(2)
}

// ParseLoanInput builds a LoanInput from raw form values.
func ParseLoanInput(principal, annualRate, tenureYears, schedule string) (domain.LoanInput, error) {
	p, err := parseField("principal", principal)
	if err != nil {
		return domain.LoanInput{}, err
	}
	r, err := parseField("annual_rate_percent", annualRate)
	if err != nil {
		return domain.LoanInput{}, err
	}
	t, err := parseField("tenure_years", tenureYears)
	if err != nil {
		return domain.LoanInput{}, err
	}
	return domain.LoanInput{
		Principal:         p,
		AnnualRatePercent: r,
		TenureYears:       t,
		Schedule:          domain.ScheduleMode(strings.ToLower(strings.TrimSpace(schedule))),
	}, nil
}

func parseField(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, domain.NewInvalidInput(field, "is required")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.NewInvalidInput(field, "must be numeric")
	}
	return d, nil
}

// ValidateLoanInput checks the input invariants and returns the number of
// monthly periods the tenure rounds to.
func ValidateLoanInput(input domain.LoanInput) (int, error) {
	if !input.Principal.IsPositive() {
		return 0, domain.NewInvalidInput("principal", "must be greater than zero")
	}
	if input.Principal.LessThan(minLoan) {
		return 0, domain.NewInvalidInput("principal", "is below the minimum of "+minLoan.StringFixed(2))
	}
	if input.Principal.GreaterThan(maxLoan) {
		return 0, domain.NewInvalidInput("principal", "exceeds the maximum of "+maxLoan.StringFixed(2))
	}
	if input.AnnualRatePercent.IsNegative() {
		return 0, domain.NewInvalidInput("annual_rate_percent", "must not be negative")
	}
	if input.AnnualRatePercent.GreaterThan(maxRate) {
		return 0, domain.NewInvalidInput("annual_rate_percent", "exceeds the maximum of "+maxRate.String()+"%")
	}
	if !input.TenureYears.IsPositive() {
		return 0, domain.NewInvalidInput("tenure_years", "must be greater than zero")
	}
	switch input.Schedule {
	case "", domain.ScheduleAmortizing, domain.ScheduleFlat:
	default:
		return 0, domain.NewInvalidInput("schedule", "must be \"amortizing\" or \"flat\"")
	}

	months := input.TenureYears.Mul(monthsPerYear).Round(0)
	if months.IsZero() {
		return 0, domain.NewInvalidInput("tenure_years", "rounds to zero months")
	}
	if months.GreaterThan(decimal.NewFromInt(MaxTermMonths)) {
		return 0, domain.NewInvalidInput("tenure_years", "exceeds the maximum of 50 years")
	}
	return int(months.IntPart()), nil
}

// Compute derives the installment, totals and per-period schedule of a loan.
// It is pure: the same input always yields the same result.
func Compute(input domain.LoanInput) (domain.AmortizationResult, error) {
	months, err := ValidateLoanInput(input)
	if err != nil {
		return domain.AmortizationResult{}, err
	}

	mode := input.Schedule
	if mode == "" {
		mode = domain.ScheduleAmortizing
	}

	principal := input.Principal.InexactFloat64()
	rate := input.AnnualRatePercent.InexactFloat64() / 100 / MonthsPerYear
	n := float64(months)

	var installment float64
	growth := math.Pow(1+rate, n)
	if rate == 0 || growth == 1 {
		// Also covers rates too small to move (1+r)^n off 1.
		rate = 0
		installment = principal / n
	} else {
		installment = principal * rate * growth / (growth - 1)
	}

	emi := roundMoney(installment)
	if !emi.IsPositive() {
		return domain.AmortizationResult{}, domain.NewInvalidInput("principal", "is too small to produce a non-zero installment")
	}

	total := installment * n
	interest := total - principal

	return domain.AmortizationResult{
		Months:                   months,
		MonthlyInstallment:       emi,
		TotalPayment:             roundMoney(total),
		TotalInterest:            roundMoney(interest),
		EffectiveInterestPercent: roundMoney(interest / principal * 100),
		ScheduleMode:             mode,
		Schedule:                 buildSchedule(mode, principal, rate, installment, months),
	}, nil
}

func buildSchedule(mode domain.ScheduleMode, principal, rate, installment float64, months int) []domain.PeriodRow {
	rows := make([]domain.PeriodRow, 0, months)
	emi := roundMoney(installment)

	if mode == domain.ScheduleFlat {
		interest := roundMoney(principal * rate)
		principalPortion := emi.Sub(interest)
		balance := decimal.NewFromFloat(principal).Round(2)
		for period := 1; period <= months; period++ {
			balance = balance.Sub(principalPortion)
			if balance.IsNegative() || period == months {
				balance = decimal.Zero
			}
			rows = append(rows, domain.PeriodRow{
				Period:           period,
				Installment:      emi,
				InterestPortion:  interest,
				PrincipalPortion: principalPortion,
				RemainingBalance: balance,
			})
		}
		return rows
	}

	balance := principal
	for period := 1; period <= months; period++ {
		interest := balance * rate
		balance -= installment - interest
		if period == months || balance < 0 {
			balance = 0
		}
		interestPortion := roundMoney(interest)
		rows = append(rows, domain.PeriodRow{
			Period:           period,
			Installment:      emi,
			InterestPortion:  interestPortion,
			PrincipalPortion: emi.Sub(interestPortion),
			RemainingBalance: roundMoney(balance),
		})
	}
	return rows
}
