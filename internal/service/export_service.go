package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository"
	"finance-tracker/internal/storage"
)

// ExportResult describes a finished CSV export.
type ExportResult struct {
	Key   string
	URL   string
	Count int
}

// ExportOptions configures where exports are written.
type ExportOptions struct {
	Bucket    string
	KeyPrefix string
	URLTTL    time.Duration
	Logger    *logrus.Logger
}

// ExportService writes an owner's transactions to object storage as CSV.
type ExportService interface {
	ExportCSV(ctx context.Context, owner *domain.User) (*ExportResult, error)
}

type exportService struct {
	txs   repository.TransactionRepository
	store storage.Service
	opts  ExportOptions
}

// NewExportService returns an ExportService. A nil store or empty bucket
// yields a service whose exports fail with ErrExportUnavailable.
func NewExportService(txs repository.TransactionRepository, store storage.Service, opts ExportOptions) ExportService {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	return &exportService{txs: txs, store: store, opts: opts}
}

var csvHeader = []string{"id", "date", "type", "category", "amount", "description"}

func (s *exportService) ExportCSV(ctx context.Context, owner *domain.User) (*ExportResult, error) {
	if s.store == nil || s.opts.Bucket == "" {
		return nil, ErrExportUnavailable
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	count := 0
	for skip := 0; ; skip += MaxListLimit {
		page, err := s.txs.List(ctx, owner.ID, skip, MaxListLimit)
		if err != nil {
			return nil, err
		}
		for _, tx := range page {
			if err := w.Write(csvRecord(tx)); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
		count += len(page)
		if len(page) < MaxListLimit {
			break
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	key := path.Join(
		strings.Trim(s.opts.KeyPrefix, "/"),
		fmt.Sprintf("user-%d", owner.ID),
		fmt.Sprintf("transactions-%s.csv", uuid.NewString()),
	)
	obj, err := s.store.Put(ctx, s.opts.Bucket, key, "text/csv", &buf)
	if err != nil {
		return nil, err
	}

	url, err := s.store.PresignGet(ctx, obj.Bucket, obj.Key, s.opts.URLTTL)
	if err != nil {
		return nil, err
	}

	s.opts.Logger.WithFields(logrus.Fields{
		"user_id": owner.ID,
		"key":     obj.Key,
		"rows":    count,
		"bytes":   obj.Size,
	}).Info("transactions exported")

	return &ExportResult{Key: obj.Key, URL: url, Count: count}, nil
}

func csvRecord(tx domain.Transaction) []string {
	desc := ""
	if tx.Description != nil {
		desc = *tx.Description
	}
	return []string{
		strconv.FormatInt(tx.ID, 10),
		tx.Date.UTC().Format(time.RFC3339Nano),
		string(tx.Type),
		tx.Category,
		strconv.FormatFloat(tx.Amount, 'f', -1, 64),
		desc,
	}
}
