package repository

import (
	"context"

	"finance-tracker/internal/domain"
)

// TransactionRepository exposes persistence operations for transactions.
// Every method is scoped by the owning user's id.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) (int64, error)
	Get(ctx context.Context, userID, id int64) (*domain.Transaction, error)
	List(ctx context.Context, userID int64, skip, limit int) ([]domain.Transaction, error)
	Update(ctx context.Context, userID, id int64, patch domain.TransactionPatch) (*domain.Transaction, error)
	Delete(ctx context.Context, userID, id int64) error
}

// AnalyticsRepository runs read-only aggregate queries over a user's transactions.
type AnalyticsRepository interface {
	MonthlyTotals(ctx context.Context, userID int64, year int) ([]domain.MonthlyTotal, error)
	CategoryTotals(ctx context.Context, userID int64) ([]domain.CategoryTotal, error)
}
