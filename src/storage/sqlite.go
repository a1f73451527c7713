package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/username/fintrack/backend/src/models"
)

// Dates are stored as fixed-width RFC3339 UTC strings so that the SQL
// range comparison is a plain lexicographic >= / <=.
const dateLayout = time.RFC3339

// SQLiteStore implements Store on a database/sql handle. The handle is
// injected at construction; the store holds no other state.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, email, password, balance_cents, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.Password, int64(user.Balance), now, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read user id: %w", err)
	}
	user.ID = id
	return nil
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password, balance_cents, created_at, updated_at
		FROM users WHERE `+where, arg)

	var user models.User
	var balance int64
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password,
		&balance, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	user.Balance = models.Cents(balance)
	return &user, nil
}

// CreateTransaction inserts the row and applies the signed amount to
// the owner's balance in one SQL transaction. The balance update is an
// in-place `balance_cents = balance_cents + ?` so concurrent creates
// for the same user cannot lose updates.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	now := time.Now().UTC()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer dbTx.Rollback()

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, amount_cents, type, category, description, date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, int64(tx.Amount), tx.Type, tx.Category, tx.Description,
		tx.Date.UTC().Format(dateLayout), now, now)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return ErrUserNotFound
		}
		return fmt.Errorf("insert transaction: %w", err)
	}

	res, err := dbTx.ExecContext(ctx,
		`UPDATE users SET balance_cents = balance_cents + ?, updated_at = ? WHERE id = ?`,
		int64(tx.Signed()), now, tx.UserID)
	if err != nil {
		return fmt.Errorf("apply balance delta: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check balance update: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return dbTx.Commit()
}

// DeleteTransaction removes the row and reverses its balance
// contribution atomically. Deleting another user's transaction is
// indistinguishable from deleting a missing one.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, userID int64, id string) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer dbTx.Rollback()

	var amount int64
	var txType string
	err = dbTx.QueryRowContext(ctx,
		`SELECT amount_cents, type FROM transactions WHERE id = ? AND user_id = ?`,
		id, userID).Scan(&amount, &txType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTransactionNotFound
		}
		return fmt.Errorf("select transaction: %w", err)
	}

	if _, err = dbTx.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	delta := amount
	if txType == models.TypeIncome {
		delta = -amount
	}
	if _, err = dbTx.ExecContext(ctx,
		`UPDATE users SET balance_cents = balance_cents + ?, updated_at = ? WHERE id = ?`,
		delta, time.Now().UTC(), userID); err != nil {
		return fmt.Errorf("reverse balance delta: %w", err)
	}

	return dbTx.Commit()
}

func (s *SQLiteStore) ListTransactions(ctx context.Context, userID int64, start, end time.Time) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, amount_cents, type, category, description, date, created_at, updated_at
		FROM transactions
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, created_at ASC`,
		userID, start.UTC().Format(dateLayout), end.UTC().Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		var tx models.Transaction
		var amount int64
		var date string
		if err := rows.Scan(&tx.ID, &tx.UserID, &amount, &tx.Type, &tx.Category,
			&tx.Description, &date, &tx.CreatedAt, &tx.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Amount = models.Cents(amount)
		tx.Date, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", date, err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

func (s *SQLiteStore) CreateSession(ctx context.Context, session *models.Session) error {
	session.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, refresh_token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		session.Token, session.RefreshToken, session.UserID, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSessionByToken(ctx context.Context, token string) (*models.Session, error) {
	return s.getSession(ctx, "token = ?", token)
}

func (s *SQLiteStore) GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	return s.getSession(ctx, "refresh_token = ?", refreshToken)
}

func (s *SQLiteStore) getSession(ctx context.Context, where string, arg any) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token, refresh_token, user_id, expires_at, created_at
		FROM sessions WHERE `+where, arg)

	var session models.Session
	err := row.Scan(&session.Token, &session.RefreshToken, &session.UserID,
		&session.ExpiresAt, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	return &session, nil
}

func (s *SQLiteStore) UpdateSessionToken(ctx context.Context, refreshToken, newToken string, expiresAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET token = ?, expires_at = ? WHERE refresh_token = ?`,
		newToken, expiresAt, refreshToken)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check session update: %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteSessionByToken(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
