package domain

import "github.com/shopspring/decimal"

type TenureComparisonInput struct {
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
	MinTenureYears    int             `json:"min_tenure_years"`
	MaxTenureYears    int             `json:"max_tenure_years"`
	// Zero means no affordability cap.
	MaxMonthlyInstallment decimal.Decimal `json:"max_monthly_installment"`
}

type TenureOption struct {
	TenureYears        int             `json:"tenure_years"`
	Months             int             `json:"months"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	TotalPayment       decimal.Decimal `json:"total_payment"`
	TotalInterest      decimal.Decimal `json:"total_interest"`
	Affordable         bool            `json:"affordable"`
}

type TenureComparisonResult struct {
	RecommendedTenureYears int            `json:"recommended_tenure_years"`
	Options                []TenureOption `json:"options"`
}
