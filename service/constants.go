package service

const (
	MinLoanAmount   = 0.01            // one cent
	MaxLoanAmount   = 1_000_000_000.0 // 1 billion
	MaxInterestRate = 1000.0          // 1000% per annum
	MaxTermMonths   = 600             // 50 years
	MonthsPerYear   = 12

	// Tenure comparison bounds.
	MaxTenureRangeYears = 30

	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 200
)
