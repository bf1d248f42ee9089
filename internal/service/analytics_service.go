package service

import (
	"context"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository"
)

// AnalyticsService aggregates an owner's transactions.
type AnalyticsService interface {
	MonthlyTotals(ctx context.Context, owner *domain.User, year int) ([]domain.MonthlyTotal, error)
	CategoryTotals(ctx context.Context, owner *domain.User) ([]domain.CategoryTotal, error)
}

type analyticsService struct {
	queries repository.AnalyticsRepository
}

func NewAnalyticsService(queries repository.AnalyticsRepository) AnalyticsService {
	return &analyticsService{queries: queries}
}

func (s *analyticsService) MonthlyTotals(ctx context.Context, owner *domain.User, year int) ([]domain.MonthlyTotal, error) {
	if year < 1 || year > 9999 {
		return nil, validationError("year must be between 1 and 9999")
	}
	return s.queries.MonthlyTotals(ctx, owner.ID, year)
}

func (s *analyticsService) CategoryTotals(ctx context.Context, owner *domain.User) ([]domain.CategoryTotal, error) {
	return s.queries.CategoryTotals(ctx, owner.ID)
}
