package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"emi-calculator/domain"
	"emi-calculator/repository"
)

type LoanService struct {
	repo  repository.LoanRepository
	cache repository.CacheRepository
	log   *logrus.Logger
	now   func() time.Time
}

// NewLoanService creates a new LoanService with the given repository and cache.
func NewLoanService(repo repository.LoanRepository,
	cache repository.CacheRepository,
	log *logrus.Logger,
) *LoanService {
	return &LoanService{repo: repo, cache: cache, log: log, now: time.Now}
}

// CalculateLoan computes the amortization for input, serving repeated inputs
// from the cache, and records the calculation in the history.
func (s *LoanService) CalculateLoan(
	ctx context.Context,
	input domain.LoanInput,
) (domain.AmortizationResult, error) {

	if input.Schedule == "" {
		input.Schedule = domain.ScheduleAmortizing
	}
	key := cacheKey(input)

	result, hit := s.cached(ctx, key)
	if !hit {
		var err error
		result, err = Compute(input)
		if err != nil {
			return domain.AmortizationResult{}, err
		}
		s.store(ctx, key, result)
	}

	record := domain.CalculationRecord{
		ID:                       uuid.NewString(),
		Input:                    input,
		Months:                   result.Months,
		MonthlyInstallment:       result.MonthlyInstallment,
		TotalPayment:             result.TotalPayment,
		EffectiveInterestPercent: result.EffectiveInterestPercent,
		CreatedAt:                s.now(),
	}

	// Saving is not critical to the caller.
	if err := s.repo.Save(ctx, record); err != nil {
		s.log.WithError(err).WithField("calculation_id", record.ID).
			Warn("failed to save loan calculation")
	}

	s.log.WithFields(logrus.Fields{
		"calculation_id":      record.ID,
		"months":              result.Months,
		"monthly_installment": result.MonthlyInstallment.String(),
		"cache_hit":           hit,
	}).Debug("loan calculated")

	return result, nil
}

// History returns the most recent calculations, newest first.
func (s *LoanService) History(ctx context.Context, limit int) ([]domain.CalculationRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	records, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load calculation history: %w", err)
	}
	return records, nil
}

func (s *LoanService) cached(ctx context.Context, key string) (domain.AmortizationResult, bool) {
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return domain.AmortizationResult{}, false
	}
	var result domain.AmortizationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("discarding unreadable cache entry")
		return domain.AmortizationResult{}, false
	}
	return result, true
}

func (s *LoanService) store(ctx context.Context, key string, result domain.AmortizationResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		s.log.WithError(err).Warn("failed to encode result for cache")
		return
	}
	if err := s.cache.Set(ctx, key, string(raw)); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("failed to cache loan calculation")
	}
}

// cacheKey hashes the normalised input, so 10 and 10.0 share an entry.
func cacheKey(input domain.LoanInput) string {
	canonical := fmt.Sprintf("%s|%s|%s|%s",
		input.Principal.String(),
		input.AnnualRatePercent.String(),
		input.TenureYears.String(),
		input.Schedule,
	)
	return fmt.Sprintf("emi:v1:%016x", xxhash.Sum64String(canonical))
}
