package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/username/fintrack/backend/src/analytics"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/models"
	"github.com/username/fintrack/backend/src/security/validation"
	"github.com/username/fintrack/backend/src/storage"
)

var (
	ErrInvalidTransactionType = errors.New("transaction type must be income or expense")
	ErrInvalidAmount          = errors.New("amount must be positive")
)

const alertCheckTimeout = 10 * time.Second

// CacheInvalidator drops derived views for a user after a write.
type CacheInvalidator interface {
	InvalidateUser(userID int64)
}

// Notifier is the outbound notification collaborator. Dispatch failures
// never fail the request that triggered them.
type Notifier interface {
	SendExpenseAlert(ctx context.Context, user *models.User, ratio int) error
}

// CreateTransactionInput carries the validated-at-the-boundary fields
// of a new transaction. Amount arrives as a decimal number and is
// converted to cents by the JSON layer.
type CreateTransactionInput struct {
	Amount      models.Cents `json:"amount"`
	Type        string       `json:"type"`
	Category    string       `json:"category"`
	Description string       `json:"description"`
	Date        time.Time    `json:"date"`
}

// TransactionService owns the write path: create and delete, with the
// balance delta applied atomically by the store, cache invalidation,
// and the post-create expense-ratio alert check.
type TransactionService struct {
	store    storage.Store
	cache    CacheInvalidator
	notifier Notifier
	now      func() time.Time
}

func NewTransactionService(store storage.Store, cache CacheInvalidator, notifier Notifier) *TransactionService {
	return &TransactionService{
		store:    store,
		cache:    cache,
		notifier: notifier,
		now:      time.Now,
	}
}

// Create validates and stores a new transaction. Unknown types are
// rejected here so they can never reach aggregation; a missing
// category gets the default one. After the write it checks the current
// calendar month's expense ratio and dispatches an alert when it
// crosses the threshold.
func (s *TransactionService) Create(ctx context.Context, userID int64, input CreateTransactionInput) (*models.Transaction, error) {
	if !models.ValidType(input.Type) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTransactionType, input.Type)
	}
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	category := validation.CleanLabel(input.Category)
	if category == "" {
		category = models.DefaultCategory
	}

	date := input.Date
	if date.IsZero() {
		date = s.now()
	}

	tx := &models.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      input.Amount,
		Type:        input.Type,
		Category:    category,
		Description: validation.CleanLabel(input.Description),
		Date:        date.UTC(),
	}

	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	s.cache.InvalidateUser(userID)

	// Fire and forget: the alert check must not delay or fail the
	// request that triggered it.
	go s.checkExpenseRatio(userID)

	return tx, nil
}

// Delete removes the user's transaction, reversing its balance
// contribution.
func (s *TransactionService) Delete(ctx context.Context, userID int64, id string) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	s.cache.InvalidateUser(userID)
	return nil
}

// checkExpenseRatio computes the current calendar month's expense
// ratio and dispatches an alert when it crosses the threshold.
func (s *TransactionService) checkExpenseRatio(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), alertCheckTimeout)
	defer cancel()

	current, _ := analytics.ResolveMonthPair(s.now())
	txs, err := s.store.ListTransactions(ctx, userID, current.Start, current.End)
	if err != nil {
		logger.L.Error("Expense ratio check: fetching month transactions failed", "userID", userID, "error", err)
		return
	}

	summary := analytics.Aggregate(txs)
	ratio := analytics.ExpenseRatio(summary.TotalIncome, summary.TotalExpenses)
	if !analytics.ShouldAlert(ratio) {
		return
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		logger.L.Error("Expense ratio check: fetching user failed", "userID", userID, "error", err)
		return
	}
	if err := s.notifier.SendExpenseAlert(ctx, user, ratio); err != nil {
		logger.L.Error("Expense alert dispatch failed", "userID", userID, "ratio", ratio, "error", err)
		return
	}
	logger.L.Info("Expense alert dispatched", "userID", userID, "ratio", ratio)
}
