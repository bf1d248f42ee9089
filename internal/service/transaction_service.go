package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// NewTransaction holds the fields accepted on create. Date defaults to now.
type NewTransaction struct {
	Amount      float64
	Category    string
	Type        domain.TransactionType
	Description *string
	Date        *time.Time
}

// TransactionService coordinates transaction operations for an authenticated owner.
type TransactionService interface {
	Create(ctx context.Context, owner *domain.User, in NewTransaction) (*domain.Transaction, error)
	List(ctx context.Context, owner *domain.User, skip, limit int) ([]domain.Transaction, error)
	Get(ctx context.Context, owner *domain.User, id int64) (*domain.Transaction, error)
	Update(ctx context.Context, owner *domain.User, id int64, patch domain.TransactionPatch) (*domain.Transaction, error)
	Delete(ctx context.Context, owner *domain.User, id int64) error
}

type transactionService struct {
	txs repository.TransactionRepository
	now func() time.Time
}

func NewTransactionService(txs repository.TransactionRepository) TransactionService {
	return &transactionService{
		txs: txs,
		now: time.Now,
	}
}

func (s *transactionService) Create(ctx context.Context, owner *domain.User, in NewTransaction) (*domain.Transaction, error) {
	if err := validateAmount(in.Amount); err != nil {
		return nil, err
	}
	if err := validateCategory(in.Category); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, validationError("type must be one of income, expense")
	}

	date := s.now()
	if in.Date != nil {
		date = *in.Date
	}

	tx := &domain.Transaction{
		UserID:      owner.ID,
		Amount:      in.Amount,
		Category:    in.Category,
		Type:        in.Type,
		Description: in.Description,
		Date:        date,
	}
	if _, err := s.txs.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *transactionService) List(ctx context.Context, owner *domain.User, skip, limit int) ([]domain.Transaction, error) {
	if skip < 0 {
		return nil, validationError("skip must not be negative")
	}
	if limit < 1 || limit > MaxListLimit {
		return nil, validationError("limit must be between 1 and 1000")
	}
	return s.txs.List(ctx, owner.ID, skip, limit)
}

func (s *transactionService) Get(ctx context.Context, owner *domain.User, id int64) (*domain.Transaction, error) {
	tx, err := s.txs.Get(ctx, owner.ID, id)
	if err != nil {
		return nil, notFound(err)
	}
	return tx, nil
}

func (s *transactionService) Update(ctx context.Context, owner *domain.User, id int64, patch domain.TransactionPatch) (*domain.Transaction, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	tx, err := s.txs.Update(ctx, owner.ID, id, patch)
	if err != nil {
		return nil, notFound(err)
	}
	return tx, nil
}

func (s *transactionService) Delete(ctx context.Context, owner *domain.User, id int64) error {
	return notFound(s.txs.Delete(ctx, owner.ID, id))
}

func validatePatch(p domain.TransactionPatch) error {
	switch {
	case p.Amount.Set && p.Amount.Null:
		return validationError("amount may not be null")
	case p.Category.Set && p.Category.Null:
		return validationError("category may not be null")
	case p.Type.Set && p.Type.Null:
		return validationError("type may not be null")
	case p.Date.Set && p.Date.Null:
		return validationError("date may not be null")
	}
	if p.Amount.Set {
		if err := validateAmount(p.Amount.Value); err != nil {
			return err
		}
	}
	if p.Category.Set {
		if err := validateCategory(p.Category.Value); err != nil {
			return err
		}
	}
	if p.Type.Set && !p.Type.Value.Valid() {
		return validationError("type must be one of income, expense")
	}
	return nil
}

func validateAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return validationError("amount must be a finite number")
	}
	return nil
}

func validateCategory(c string) error {
	if strings.TrimSpace(c) == "" {
		return validationError("category is required")
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTransactionNotFound
	}
	return err
}
