package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/username/fintrack/backend/src/models"
	"github.com/username/fintrack/backend/src/storage"
)

type recordingNotifier struct {
	alerts chan int
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{alerts: make(chan int, 8)}
}

func (n *recordingNotifier) SendExpenseAlert(_ context.Context, _ *models.User, ratio int) error {
	n.alerts <- ratio
	return nil
}

type noopInvalidator struct{ count int }

func (i *noopInvalidator) InvalidateUser(int64) { i.count++ }

func newTestTransactionService(t *testing.T) (*TransactionService, *storage.MemoryStore, *models.User, *recordingNotifier, *noopInvalidator) {
	t.Helper()
	store := storage.NewMemoryStore()
	notifier := newRecordingNotifier()
	invalidator := &noopInvalidator{}
	svc := NewTransactionService(store, invalidator, notifier)
	svc.now = func() time.Time { return testNow }

	user := &models.User{Username: "ana", Email: "ana@example.com", Password: "x"}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return svc, store, user, notifier, invalidator
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc, _, user, _, _ := newTestTransactionService(t)
	_, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
		Amount: 100, Type: "transfer",
	})
	if !errors.Is(err, ErrInvalidTransactionType) {
		t.Errorf("error = %v, want ErrInvalidTransactionType", err)
	}
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	svc, _, user, _, _ := newTestTransactionService(t)
	for _, amount := range []models.Cents{0, -100} {
		_, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
			Amount: amount, Type: models.TypeIncome,
		})
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("amount %d: error = %v, want ErrInvalidAmount", amount, err)
		}
	}
}

func TestCreateDefaultsAndSanitizesCategory(t *testing.T) {
	svc, _, user, _, _ := newTestTransactionService(t)

	tx, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
		Amount: 100, Type: models.TypeExpense,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tx.Category != models.DefaultCategory {
		t.Errorf("category = %q, want %q", tx.Category, models.DefaultCategory)
	}

	tx, err = svc.Create(context.Background(), user.ID, CreateTransactionInput{
		Amount: 100, Type: models.TypeExpense, Category: " <b>Food</b> ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tx.Category != "Food" {
		t.Errorf("category = %q, want sanitized \"Food\"", tx.Category)
	}
}

func TestCreateUpdatesBalanceAndInvalidatesCache(t *testing.T) {
	svc, store, user, _, invalidator := newTestTransactionService(t)

	if _, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
		Amount: 12345, Type: models.TypeIncome, Date: testNow,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	stored, err := store.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.Balance != 12345 {
		t.Errorf("balance = %d, want 12345", stored.Balance)
	}
	if invalidator.count == 0 {
		t.Error("cache was not invalidated after create")
	}
}

func TestDeleteRestoresBalance(t *testing.T) {
	svc, store, user, _, _ := newTestTransactionService(t)

	tx, err := svc.Create(context.Background(), user.ID, CreateTransactionInput{
		Amount: 500, Type: models.TypeExpense, Date: testNow,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(context.Background(), user.ID, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	stored, err := store.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.Balance != 0 {
		t.Errorf("balance = %d, want 0", stored.Balance)
	}
}

func TestCreateDispatchesAlertAtThreshold(t *testing.T) {
	svc, _, user, notifier, _ := newTestTransactionService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, user.ID, CreateTransactionInput{
		Amount: 10000, Type: models.TypeIncome, Date: testNow,
	}); err != nil {
		t.Fatalf("create income: %v", err)
	}
	if _, err := svc.Create(ctx, user.ID, CreateTransactionInput{
		Amount: 8500, Type: models.TypeExpense, Date: testNow,
	}); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	select {
	case ratio := <-notifier.alerts:
		if ratio != 85 {
			t.Errorf("alert ratio = %d, want 85", ratio)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected an expense alert, none dispatched")
	}
}

func TestCreateNoAlertBelowThreshold(t *testing.T) {
	svc, _, user, notifier, _ := newTestTransactionService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, user.ID, CreateTransactionInput{
		Amount: 10000, Type: models.TypeIncome, Date: testNow,
	}); err != nil {
		t.Fatalf("create income: %v", err)
	}
	if _, err := svc.Create(ctx, user.ID, CreateTransactionInput{
		Amount: 1000, Type: models.TypeExpense, Date: testNow,
	}); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	select {
	case ratio := <-notifier.alerts:
		t.Errorf("unexpected alert with ratio %d", ratio)
	case <-time.After(200 * time.Millisecond):
	}
}
