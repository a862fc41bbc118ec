package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"emi-calculator/domain"
)

// Fixed width so that created_at sorts lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// LoanRepositorySQLite persists calculation history in a SQLite file.
type LoanRepositorySQLite struct {
	db *sql.DB
}

func NewLoanRepositorySQLite(dbPath string) (*LoanRepositorySQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &LoanRepositorySQLite{db: db}, nil
}

func (r *LoanRepositorySQLite) Save(ctx context.Context, record domain.CalculationRecord) error {
	const query = `
		INSERT INTO calculations (
			id, principal, annual_rate_percent, tenure_years, schedule_mode,
			months, monthly_installment, total_payment, effective_interest_percent, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.Input.Principal.String(),
		record.Input.AnnualRatePercent.String(),
		record.Input.TenureYears.String(),
		string(record.Input.Schedule),
		record.Months,
		record.MonthlyInstallment.String(),
		record.TotalPayment.String(),
		record.EffectiveInterestPercent.String(),
		record.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert calculation %s: %w", record.ID, err)
	}
	return nil
}

func (r *LoanRepositorySQLite) Recent(ctx context.Context, limit int) ([]domain.CalculationRecord, error) {
	const query = `
		SELECT id, principal, annual_rate_percent, tenure_years, schedule_mode,
		       months, monthly_installment, total_payment, effective_interest_percent, created_at
		FROM calculations
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query calculations: %w", err)
	}
	defer rows.Close()

	records := []domain.CalculationRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calculations: %w", err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (domain.CalculationRecord, error) {
	var (
		record                                   domain.CalculationRecord
		principal, rate, tenure, mode            string
		installment, total, effective, createdAt string
	)
	if err := rows.Scan(&record.ID, &principal, &rate, &tenure, &mode,
		&record.Months, &installment, &total, &effective, &createdAt); err != nil {
		return record, fmt.Errorf("scan calculation: %w", err)
	}

	decimals := []struct {
		raw string
		dst *decimal.Decimal
	}{
		{principal, &record.Input.Principal},
		{rate, &record.Input.AnnualRatePercent},
		{tenure, &record.Input.TenureYears},
		{installment, &record.MonthlyInstallment},
		{total, &record.TotalPayment},
		{effective, &record.EffectiveInterestPercent},
	}
	for _, d := range decimals {
		v, err := decimal.NewFromString(d.raw)
		if err != nil {
			return record, fmt.Errorf("calculation %s: parse %q: %w", record.ID, d.raw, err)
		}
		*d.dst = v
	}

	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return record, fmt.Errorf("calculation %s: parse created_at: %w", record.ID, err)
	}
	record.CreatedAt = ts
	record.Input.Schedule = domain.ScheduleMode(mode)
	return record, nil
}

func (r *LoanRepositorySQLite) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
