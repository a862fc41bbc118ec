package service

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"emi-calculator/domain"
)

type TenureComparisonService struct {
	log *logrus.Logger
}

func NewTenureComparisonService(log *logrus.Logger) *TenureComparisonService {
	return &TenureComparisonService{log: log}
}

// CompareTenures evaluates every whole-year tenure in the requested range and
// recommends the shortest one whose installment fits the affordability cap.
// Shorter tenures always carry less total interest at a fixed rate.
func (s *TenureComparisonService) CompareTenures(
	input domain.TenureComparisonInput,
) (domain.TenureComparisonResult, error) {

	if input.MinTenureYears <= 0 || input.MaxTenureYears <= 0 {
		return domain.TenureComparisonResult{}, domain.NewInvalidInput("tenure_years", "range bounds must be greater than zero")
	}
	if input.MinTenureYears > input.MaxTenureYears {
		return domain.TenureComparisonResult{}, domain.NewInvalidInput("min_tenure_years", "is greater than max_tenure_years")
	}
	if input.MaxTenureYears-input.MinTenureYears > MaxTenureRangeYears {
		return domain.TenureComparisonResult{}, domain.NewInvalidInput("max_tenure_years",
			fmt.Sprintf("range exceeds the maximum of %d years", MaxTenureRangeYears))
	}
	if input.MaxMonthlyInstallment.IsNegative() {
		return domain.TenureComparisonResult{}, domain.NewInvalidInput("max_monthly_installment", "must not be negative")
	}

	capped := input.MaxMonthlyInstallment.IsPositive()
	options := make([]domain.TenureOption, 0, input.MaxTenureYears-input.MinTenureYears+1)
	recommended := 0

	for years := input.MinTenureYears; years <= input.MaxTenureYears; years++ {
		result, err := Compute(domain.LoanInput{
			Principal:         input.Principal,
			AnnualRatePercent: input.AnnualRatePercent,
			TenureYears:       decimal.NewFromInt(int64(years)),
		})
		if err != nil {
			// Principal and rate are shared by every tenure, so one failure fails all.
			return domain.TenureComparisonResult{}, err
		}

		affordable := !capped || result.MonthlyInstallment.LessThanOrEqual(input.MaxMonthlyInstallment)
		if affordable && recommended == 0 {
			recommended = years
		}

		options = append(options, domain.TenureOption{
			TenureYears:        years,
			Months:             result.Months,
			MonthlyInstallment: result.MonthlyInstallment,
			TotalPayment:       result.TotalPayment,
			TotalInterest:      result.TotalInterest,
			Affordable:         affordable,
		})
	}

	if recommended == 0 {
		return domain.TenureComparisonResult{}, domain.NewInvalidInput("max_monthly_installment",
			"is below the installment of every tenure in range")
	}

	s.log.WithFields(logrus.Fields{
		"min_years":   input.MinTenureYears,
		"max_years":   input.MaxTenureYears,
		"recommended": recommended,
	}).Debug("tenures compared")

	return domain.TenureComparisonResult{
		RecommendedTenureYears: recommended,
		Options:                options,
	}, nil
}
