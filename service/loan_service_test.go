package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"emi-calculator/domain"
	"emi-calculator/repository"
)

type MockLoanRepository struct {
	SaveCalled bool
	ForceError bool
	Saved      []domain.CalculationRecord
}

func (m *MockLoanRepository) Save(
	_ context.Context,
	record domain.CalculationRecord,
) error {
	m.SaveCalled = true
	if m.ForceError {
		return errors.New("save error")
	}
	m.Saved = append(m.Saved, record)
	return nil
}

func (m *MockLoanRepository) Recent(_ context.Context, limit int) ([]domain.CalculationRecord, error) {
	if m.ForceError {
		return nil, errors.New("recent error")
	}
	if limit > len(m.Saved) {
		limit = len(m.Saved)
	}
	return m.Saved[:limit], nil
}

func (m *MockLoanRepository) Close() error { return nil }

type countingCache struct {
	*repository.MemoryCache
	gets, hits, sets int
}

func (c *countingCache) Get(ctx context.Context, key string) (string, bool) {
	c.gets++
	val, ok := c.MemoryCache.Get(ctx, key)
	if ok {
		c.hits++
	}
	return val, ok
}

func (c *countingCache) Set(ctx context.Context, key string, value string) error {
	c.sets++
	return c.MemoryCache.Set(ctx, key, value)
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService(repo repository.LoanRepository) (*LoanService, *countingCache) {
	cache := &countingCache{MemoryCache: repository.NewMemoryCache()}
	return NewLoanService(repo, cache, newTestLogger()), cache
}

func TestCalculateLoan_WithInterest(t *testing.T) {

	mockRepo := &MockLoanRepository{}
	service, _ := newTestService(mockRepo)

	result, err := service.CalculateLoan(context.Background(), loan("10000", "12", "2"))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.MonthlyInstallment.IsPositive() {
		t.Errorf("expected installment > 0")
	}

	if !mockRepo.SaveCalled {
		t.Errorf("expected repository Save to be called")
	}

	record := mockRepo.Saved[0]
	if record.ID == "" || record.Months != 24 {
		t.Errorf("unexpected saved record: %+v", record)
	}
	if !record.MonthlyInstallment.Equal(result.MonthlyInstallment) {
		t.Errorf("saved installment %s differs from result %s", record.MonthlyInstallment, result.MonthlyInstallment)
	}
}

func TestCalculateLoan_ZeroInterest(t *testing.T) {

	mockRepo := &MockLoanRepository{}
	service, _ := newTestService(mockRepo)

	result, err := service.CalculateLoan(context.Background(), loan("1200", "0", "1"))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertMoney(t, "installment", result.MonthlyInstallment, "100")
}

func TestCalculateLoan_InvalidAmount(t *testing.T) {

	mockRepo := &MockLoanRepository{}
	service, cache := newTestService(mockRepo)

	_, err := service.CalculateLoan(context.Background(), loan("0", "10", "1"))

	if !domain.IsInvalidInput(err) {
		t.Errorf("expected InvalidInputError, got %v", err)
	}

	if mockRepo.SaveCalled {
		t.Errorf("repository Save should NOT be called")
	}

	if cache.sets != 0 {
		t.Errorf("invalid input should NOT be cached")
	}
}

func TestCalculateLoan_InvalidTerm(t *testing.T) {

	mockRepo := &MockLoanRepository{}
	service, _ := newTestService(mockRepo)

	_, err := service.CalculateLoan(context.Background(), loan("1000", "10", "0.01"))

	if err == nil {
		t.Errorf("expected error for tenure rounding to zero months")
	}
}

func TestCalculateLoan_ServesRepeatedInputFromCache(t *testing.T) {

	mockRepo := &MockLoanRepository{}
	service, cache := newTestService(mockRepo)
	ctx := context.Background()

	first, err := service.CalculateLoan(ctx, loan("100000", "10", "1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Same value, different notation.
	second, err := service.CalculateLoan(ctx, loan("100000.00", "10.0", "1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cache.sets != 1 || cache.hits != 1 {
		t.Errorf("expected 1 set and 1 hit, got %d sets and %d hits", cache.sets, cache.hits)
	}
	if !first.TotalPayment.Equal(second.TotalPayment) || len(first.Schedule) != len(second.Schedule) {
		t.Errorf("cached result differs from computed result")
	}
	if len(mockRepo.Saved) != 2 {
		t.Errorf("expected both calculations in history, got %d", len(mockRepo.Saved))
	}
}

func TestCalculateLoan_ScheduleModesCachedSeparately(t *testing.T) {

	service, cache := newTestService(&MockLoanRepository{})
	ctx := context.Background()

	flat := loan("100000", "10", "1")
	flat.Schedule = domain.ScheduleFlat

	if _, err := service.CalculateLoan(ctx, loan("100000", "10", "1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := service.CalculateLoan(ctx, flat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cache.hits != 0 {
		t.Errorf("flat schedule must not reuse the amortizing entry")
	}
	if result.ScheduleMode != domain.ScheduleFlat {
		t.Errorf("expected flat schedule, got %q", result.ScheduleMode)
	}
}

func TestCalculateLoan_UnreadableCacheEntryIsRecomputed(t *testing.T) {

	service, cache := newTestService(&MockLoanRepository{})
	input := loan("5000", "6", "1")
	input.Schedule = domain.ScheduleAmortizing

	_ = cache.MemoryCache.Set(context.Background(), cacheKey(input), "{not json")

	result, err := service.CalculateLoan(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Months != 12 {
		t.Errorf("expected recomputed result, got %+v", result)
	}
	if cache.sets != 1 {
		t.Errorf("expected the entry to be rewritten")
	}
}

func TestCalculateLoan_SaveErrorIsNotFatal(t *testing.T) {

	mockRepo := &MockLoanRepository{ForceError: true}
	service, _ := newTestService(mockRepo)

	_, err := service.CalculateLoan(context.Background(), loan("1000", "10", "1"))

	if err != nil {
		t.Fatalf("save failure should not fail the calculation: %v", err)
	}
}

func TestHistory_ClampsLimit(t *testing.T) {

	repo := repository.NewLoanRepositoryMemory()
	service, _ := newTestService(repo)
	ctx := context.Background()

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	service.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	for i := 1; i <= 3; i++ {
		if _, err := service.CalculateLoan(ctx, loan("1000", "5", "1")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	records, err := service.History(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if !records[0].CreatedAt.After(records[2].CreatedAt) {
		t.Errorf("expected newest record first")
	}

	records, _ = service.History(ctx, 2)
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
}

func TestHistory_RepositoryError(t *testing.T) {

	service, _ := newTestService(&MockLoanRepository{ForceError: true})

	if _, err := service.History(context.Background(), 10); err == nil {
		t.Errorf("expected error from repository")
	}
}
