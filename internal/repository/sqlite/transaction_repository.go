package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository"
)

const selectTransaction = `
SELECT id, user_id, amount, category, type, description, date
FROM transactions`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

var (
	_ repository.TransactionRepository = (*TransactionRepository)(nil)
	_ repository.AnalyticsRepository   = (*TransactionRepository)(nil)
)

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) (int64, error) {
	tx.Date = fromUnixMicro(toUnixMicro(tx.Date))
	res, err := r.db.ExecContext(ctx, `
INSERT INTO transactions (user_id, amount, category, type, description, date)
VALUES (?, ?, ?, ?, ?, ?)`,
		tx.UserID,
		tx.Amount,
		tx.Category,
		string(tx.Type),
		nullString(tx.Description),
		toUnixMicro(tx.Date),
	)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction last insert id: %w", err)
	}
	tx.ID = id
	return id, nil
}

func (r *TransactionRepository) Get(ctx context.Context, userID, id int64) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx, selectTransaction+`
WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	return scanTransaction(row)
}

func (r *TransactionRepository) List(ctx context.Context, userID int64, skip, limit int) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransaction+`
WHERE user_id = ?
ORDER BY id ASC
LIMIT ? OFFSET ?`,
		userID,
		limit,
		skip,
	)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}

	return transactions, rows.Err()
}

// Update re-reads the row under the owner filter inside one database
// transaction, applies the patch and writes it back.
func (r *TransactionRepository) Update(ctx context.Context, userID, id int64, patch domain.TransactionPatch) (*domain.Transaction, error) {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer dbtx.Rollback() // safe no-op on commit

	current, err := scanTransaction(dbtx.QueryRowContext(ctx, selectTransaction+`
WHERE id = ? AND user_id = ?`,
		id,
		userID,
	))
	if err != nil {
		return nil, err
	}

	patch.Apply(current)

	res, err := dbtx.ExecContext(ctx, `
UPDATE transactions
SET amount=?, category=?, type=?, description=?, date=?
WHERE id=? AND user_id=?`,
		current.Amount,
		current.Category,
		string(current.Type),
		nullString(current.Description),
		toUnixMicro(current.Date),
		id,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return nil, err
	}

	if err := dbtx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction update: %w", err)
	}
	current.Date = fromUnixMicro(toUnixMicro(current.Date))
	return current, nil
}

func (r *TransactionRepository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return expectOneRow(res)
}

func (r *TransactionRepository) MonthlyTotals(ctx context.Context, userID int64, year int) ([]domain.MonthlyTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT CAST(strftime('%m', date / 1000000, 'unixepoch') AS INTEGER) AS month, type, SUM(amount) AS total
FROM transactions
WHERE user_id = ? AND CAST(strftime('%Y', date / 1000000, 'unixepoch') AS INTEGER) = ?
GROUP BY month, type
ORDER BY month ASC, type ASC`,
		userID,
		year,
	)
	if err != nil {
		return nil, fmt.Errorf("query monthly totals: %w", err)
	}
	defer rows.Close()

	totals := []domain.MonthlyTotal{}
	for rows.Next() {
		var (
			row   domain.MonthlyTotal
			ttype string
		)
		if err := rows.Scan(&row.Month, &ttype, &row.Total); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		row.Type = domain.TransactionType(ttype)
		totals = append(totals, row)
	}
	return totals, rows.Err()
}

func (r *TransactionRepository) CategoryTotals(ctx context.Context, userID int64) ([]domain.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT category, type, SUM(amount) AS total
FROM transactions
WHERE user_id = ?
GROUP BY category, type
ORDER BY category ASC, type ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query category totals: %w", err)
	}
	defer rows.Close()

	totals := []domain.CategoryTotal{}
	for rows.Next() {
		var (
			row   domain.CategoryTotal
			ttype string
		)
		if err := rows.Scan(&row.Category, &ttype, &row.Total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		row.Type = domain.TransactionType(ttype)
		totals = append(totals, row)
	}
	return totals, rows.Err()
}

func scanTransaction(scanner interface {
	Scan(dest ...any) error
}) (*domain.Transaction, error) {
	var (
		tx          domain.Transaction
		ttype       string
		description sql.NullString
		date        int64
	)

	if err := scanner.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.Amount,
		&tx.Category,
		&ttype,
		&description,
		&date,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transaction: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	tx.Type = domain.TransactionType(ttype)
	tx.Date = fromUnixMicro(date)
	if description.Valid {
		v := description.String
		tx.Description = &v
	}
	return &tx, nil
}

func expectOneRow(res sql.Result) error {
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("transaction: %w", repository.ErrNotFound)
	}
	return nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
