package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository/sqlite"
	"finance-tracker/internal/storage"
)

type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	db        *sql.DB
	users     UserService
	txs       TransactionService
	analytics AnalyticsService
	repo      *sqlite.TransactionRepository

	alice *domain.User
	bob   *domain.User
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	db, err := sqlite.Open(filepath.Join(s.T().TempDir(), "finance.db"))
	require.NoError(s.T(), err)
	s.db = db

	users := &userService{users: sqlite.NewUserRepository(db), cost: bcrypt.MinCost}
	s.users = users
	s.repo = sqlite.NewTransactionRepository(db)
	s.txs = NewTransactionService(s.repo)
	s.analytics = NewAnalyticsService(s.repo)

	s.alice, err = s.users.Register(s.ctx, "alice@example.com", "alice", "password-a")
	require.NoError(s.T(), err)
	s.bob, err = s.users.Register(s.ctx, "bob@example.com", "bob", "password-b")
	require.NoError(s.T(), err)
}

func (s *ServiceSuite) TearDownTest() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *ServiceSuite) create(owner *domain.User, amount float64, category string, typ domain.TransactionType, date time.Time) *domain.Transaction {
	tx, err := s.txs.Create(s.ctx, owner, NewTransaction{Amount: amount, Category: category, Type: typ, Date: &date})
	require.NoError(s.T(), err)
	return tx
}

func (s *ServiceSuite) TestRegisterAndAuthenticate() {
	assert.Empty(s.T(), s.alice.PasswordHash)
	assert.Equal(s.T(), "alice@example.com", s.alice.Email)

	user, err := s.users.Authenticate(s.ctx, "alice", "password-a")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.alice.ID, user.ID)
	assert.Empty(s.T(), user.PasswordHash)

	_, err = s.users.Authenticate(s.ctx, "alice", "wrong-password")
	assert.ErrorIs(s.T(), err, ErrInvalidCredentials)
	_, err = s.users.Authenticate(s.ctx, "nobody", "password-a")
	assert.ErrorIs(s.T(), err, ErrInvalidCredentials)

	byID, err := s.users.GetByID(s.ctx, s.bob.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "bob", byID.Username)
}

func (s *ServiceSuite) TestRegisterValidation() {
	cases := []struct {
		email, username, password string
	}{
		{"", "carol", "password-c"},
		{"carol@example.com", "  ", "password-c"},
		{"not-an-email", "carol", "password-c"},
		{"Carol <carol@example.com>", "carol", "password-c"},
		{"carol@example.com", "carol", "short"},
	}
	for _, tc := range cases {
		_, err := s.users.Register(s.ctx, tc.email, tc.username, tc.password)
		assert.ErrorIs(s.T(), err, ErrValidation, tc)
	}

	_, err := s.users.Register(s.ctx, "alice@example.com", "alice2", "password-x")
	assert.ErrorIs(s.T(), err, ErrUserAlreadyExists)
	_, err = s.users.Register(s.ctx, "alice2@example.com", "alice", "password-x")
	assert.ErrorIs(s.T(), err, ErrUserAlreadyExists)
}

func (s *ServiceSuite) TestCreateDefaultsDate() {
	fixed := time.Date(2024, 7, 4, 10, 0, 0, 0, time.UTC)
	svc := &transactionService{txs: s.repo, now: func() time.Time { return fixed }}

	desc := "coffee"
	tx, err := svc.Create(s.ctx, s.alice, NewTransaction{Amount: -3.2, Category: "food", Type: domain.TransactionTypeExpense, Description: &desc})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), fixed, tx.Date)
	assert.Equal(s.T(), s.alice.ID, tx.UserID)
	assert.Equal(s.T(), -3.2, tx.Amount)

	got, err := s.txs.Get(s.ctx, s.alice, tx.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), tx, got)
}

func (s *ServiceSuite) TestCreateValidation() {
	_, err := s.txs.Create(s.ctx, s.alice, NewTransaction{Amount: 1, Category: " ", Type: domain.TransactionTypeIncome})
	assert.ErrorIs(s.T(), err, ErrValidation)

	_, err = s.txs.Create(s.ctx, s.alice, NewTransaction{Amount: 1, Category: "x", Type: "transfer"})
	assert.ErrorIs(s.T(), err, ErrValidation)
}

func (s *ServiceSuite) TestListBounds() {
	_, err := s.txs.List(s.ctx, s.alice, -1, 10)
	assert.ErrorIs(s.T(), err, ErrValidation)
	_, err = s.txs.List(s.ctx, s.alice, 0, 0)
	assert.ErrorIs(s.T(), err, ErrValidation)
	_, err = s.txs.List(s.ctx, s.alice, 0, MaxListLimit+1)
	assert.ErrorIs(s.T(), err, ErrValidation)

	list, err := s.txs.List(s.ctx, s.alice, 0, DefaultListLimit)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), list)
}

func (s *ServiceSuite) TestOwnershipHiding() {
	tx := s.create(s.alice, 10, "food", domain.TransactionTypeExpense, time.Now())

	_, err := s.txs.Get(s.ctx, s.bob, tx.ID)
	assert.ErrorIs(s.T(), err, ErrTransactionNotFound)
	_, err = s.txs.Update(s.ctx, s.bob, tx.ID, domain.TransactionPatch{Category: domain.Some("stolen")})
	assert.ErrorIs(s.T(), err, ErrTransactionNotFound)
	assert.ErrorIs(s.T(), s.txs.Delete(s.ctx, s.bob, tx.ID), ErrTransactionNotFound)

	_, err = s.txs.Get(s.ctx, s.alice, tx.ID+1000)
	assert.ErrorIs(s.T(), err, ErrTransactionNotFound)

	got, err := s.txs.Get(s.ctx, s.alice, tx.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "food", got.Category)
}

func (s *ServiceSuite) TestUpdateFromJSONPatch() {
	desc := "lunch"
	tx, err := s.txs.Create(s.ctx, s.alice, NewTransaction{Amount: 12, Category: "food", Type: domain.TransactionTypeExpense, Description: &desc})
	require.NoError(s.T(), err)

	var patch domain.TransactionPatch
	require.NoError(s.T(), json.Unmarshal([]byte(`{"amount": 50}`), &patch))
	updated, err := s.txs.Update(s.ctx, s.alice, tx.ID, patch)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 50.0, updated.Amount)
	assert.Equal(s.T(), "food", updated.Category)
	require.NotNil(s.T(), updated.Description)
	assert.Equal(s.T(), "lunch", *updated.Description)

	patch = domain.TransactionPatch{}
	require.NoError(s.T(), json.Unmarshal([]byte(`{"description": null, "type": "income"}`), &patch))
	updated, err = s.txs.Update(s.ctx, s.alice, tx.ID, patch)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), updated.Description)
	assert.Equal(s.T(), domain.TransactionTypeIncome, updated.Type)
	assert.Equal(s.T(), 50.0, updated.Amount)
}

func (s *ServiceSuite) TestUpdateRejectsNullRequiredFields() {
	tx := s.create(s.alice, 10, "food", domain.TransactionTypeExpense, time.Now())

	for _, body := range []string{`{"amount": null}`, `{"category": null}`, `{"type": null}`, `{"date": null}`, `{"category": ""}`} {
		var patch domain.TransactionPatch
		require.NoError(s.T(), json.Unmarshal([]byte(body), &patch))
		_, err := s.txs.Update(s.ctx, s.alice, tx.ID, patch)
		assert.ErrorIs(s.T(), err, ErrValidation, body)
	}
}

func (s *ServiceSuite) TestDeleteIsPermanent() {
	tx := s.create(s.alice, 10, "food", domain.TransactionTypeExpense, time.Now())
	require.NoError(s.T(), s.txs.Delete(s.ctx, s.alice, tx.ID))
	_, err := s.txs.Get(s.ctx, s.alice, tx.ID)
	assert.ErrorIs(s.T(), err, ErrTransactionNotFound)
}

func (s *ServiceSuite) TestAnalytics() {
	year := 2024
	s.create(s.alice, 10, "food", domain.TransactionTypeExpense, time.Date(year, 1, 5, 0, 0, 0, 0, time.UTC))
	s.create(s.alice, 5, "food", domain.TransactionTypeExpense, time.Date(year, 1, 20, 0, 0, 0, 0, time.UTC))
	s.create(s.alice, 100, "salary", domain.TransactionTypeIncome, time.Date(year, 2, 1, 0, 0, 0, 0, time.UTC))
	s.create(s.bob, 999, "food", domain.TransactionTypeExpense, time.Date(year, 1, 5, 0, 0, 0, 0, time.UTC))

	monthly, err := s.analytics.MonthlyTotals(s.ctx, s.alice, year)
	require.NoError(s.T(), err)
	assert.ElementsMatch(s.T(), []domain.MonthlyTotal{
		{Month: 1, Type: domain.TransactionTypeExpense, Total: 15},
		{Month: 2, Type: domain.TransactionTypeIncome, Total: 100},
	}, monthly)

	categories, err := s.analytics.CategoryTotals(s.ctx, s.alice)
	require.NoError(s.T(), err)
	assert.ElementsMatch(s.T(), []domain.CategoryTotal{
		{Category: "food", Type: domain.TransactionTypeExpense, Total: 15},
		{Category: "salary", Type: domain.TransactionTypeIncome, Total: 100},
	}, categories)

	_, err = s.analytics.MonthlyTotals(s.ctx, s.alice, 0)
	assert.ErrorIs(s.T(), err, ErrValidation)
}

type memoryStore struct {
	objects map[string][]byte
	putErr  error
}

func (m *memoryStore) Put(_ context.Context, bucket, key, _ string, body io.Reader) (storage.Object, error) {
	if m.putErr != nil {
		return storage.Object{}, m.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return storage.Object{}, err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = data
	return storage.Object{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

func (m *memoryStore) PresignGet(_ context.Context, bucket, key string, expires time.Duration) (string, error) {
	return "https://" + bucket + ".example/" + key + "?ttl=" + expires.String(), nil
}

func (s *ServiceSuite) TestExportCSV() {
	desc := "rent, march"
	_, err := s.txs.Create(s.ctx, s.alice, NewTransaction{Amount: 950.5, Category: "housing", Type: domain.TransactionTypeExpense, Description: &desc})
	require.NoError(s.T(), err)
	s.create(s.alice, 2000, "salary", domain.TransactionTypeIncome, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	s.create(s.bob, 1, "secret", domain.TransactionTypeIncome, time.Now())

	store := &memoryStore{}
	logger, _ := test.NewNullLogger()
	svc := NewExportService(s.repo, store, ExportOptions{Bucket: "statements", KeyPrefix: "/exports/", URLTTL: time.Minute, Logger: logger})

	res, err := svc.ExportCSV(s.ctx, s.alice)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, res.Count)
	assert.True(s.T(), strings.HasPrefix(res.Key, "exports/user-"))
	assert.True(s.T(), strings.HasSuffix(res.Key, ".csv"))
	assert.Contains(s.T(), res.URL, res.Key)

	records, err := csv.NewReader(bytes.NewReader(store.objects[res.Key])).ReadAll()
	require.NoError(s.T(), err)
	require.Len(s.T(), records, 3)
	assert.Equal(s.T(), csvHeader, records[0])
	assert.Equal(s.T(), []string{"expense", "housing", "950.5", "rent, march"}, records[1][2:])
	assert.Equal(s.T(), []string{"2024-03-01T00:00:00Z", "income", "salary", "2000", ""}, records[2][1:])
}

func (s *ServiceSuite) TestExportUnavailable() {
	_, err := NewExportService(s.repo, nil, ExportOptions{Bucket: "b"}).ExportCSV(s.ctx, s.alice)
	assert.ErrorIs(s.T(), err, ErrExportUnavailable)

	_, err = NewExportService(s.repo, &memoryStore{}, ExportOptions{}).ExportCSV(s.ctx, s.alice)
	assert.ErrorIs(s.T(), err, ErrExportUnavailable)

	boom := errors.New("bucket gone")
	_, err = NewExportService(s.repo, &memoryStore{putErr: boom}, ExportOptions{Bucket: "b"}).ExportCSV(s.ctx, s.alice)
	assert.ErrorIs(s.T(), err, boom)
}
