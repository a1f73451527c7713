// Package storage is the persistence boundary of the tracker. The
// aggregation engine never touches it directly; services fetch the
// in-scope records here and hand plain slices to the analytics package.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/username/fintrack/backend/src/models"
)

var (
	// ErrUserNotFound indicates the authenticated identity has no user
	// record, i.e. the caller has not completed registration.
	ErrUserNotFound = errors.New("user not found")

	// ErrTransactionNotFound indicates the transaction does not exist
	// or belongs to another user.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrEmailTaken indicates a registration conflict.
	ErrEmailTaken = errors.New("email already registered")

	// ErrSessionNotFound indicates an unknown or revoked session token.
	ErrSessionNotFound = errors.New("session not found")
)

// Store is the storage collaborator interface. Implementations must
// keep the user balance invariant: CreateTransaction and
// DeleteTransaction apply the signed amount to the owner's stored
// balance atomically with the row change, never read-modify-write.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, userID int64, id string) error
	// ListTransactions returns the user's transactions with an economic
	// date inside [start, end], both boundaries inclusive, oldest first.
	ListTransactions(ctx context.Context, userID int64, start, end time.Time) ([]models.Transaction, error)

	CreateSession(ctx context.Context, session *models.Session) error
	GetSessionByToken(ctx context.Context, token string) (*models.Session, error)
	GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*models.Session, error)
	UpdateSessionToken(ctx context.Context, refreshToken, newToken string, expiresAt time.Time) error
	DeleteSessionByToken(ctx context.Context, token string) error
}
