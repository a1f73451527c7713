package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/username/fintrack/backend/src/models"
)

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// MemoryStore is an in-memory Store used by tests and by local runs
// that don't need durability. It honors the same balance invariant as
// the SQLite store.
type MemoryStore struct {
	mu           sync.Mutex
	nextUserID   int64
	users        map[int64]*models.User
	usersByEmail map[string]int64
	transactions map[string]*models.Transaction
	sessions     map[string]*models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextUserID:   1,
		users:        make(map[int64]*models.User),
		usersByEmail: make(map[string]int64),
		transactions: make(map[string]*models.Transaction),
		sessions:     make(map[string]*models.Session),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usersByEmail[user.Email]; ok {
		return ErrEmailTaken
	}
	now := time.Now().UTC()
	user.ID = s.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	s.nextUserID++
	copied := *user
	s.users[user.ID] = &copied
	s.usersByEmail[user.Email] = user.ID
	return nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *s.users[id]
	return &copied, nil
}

func (s *MemoryStore) CreateTransaction(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[tx.UserID]
	if !ok {
		return ErrUserNotFound
	}
	now := time.Now().UTC()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	copied := *tx
	s.transactions[tx.ID] = &copied
	user.Balance += tx.Signed()
	user.UpdatedAt = now
	return nil
}

func (s *MemoryStore) DeleteTransaction(_ context.Context, userID int64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok || tx.UserID != userID {
		return ErrTransactionNotFound
	}
	delete(s.transactions, id)
	if user, ok := s.users[userID]; ok {
		user.Balance -= tx.Signed()
		user.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (s *MemoryStore) ListTransactions(_ context.Context, userID int64, start, end time.Time) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txs := []models.Transaction{}
	for _, tx := range s.transactions {
		if tx.UserID != userID {
			continue
		}
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		txs = append(txs, *tx)
	}
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.Before(txs[j].Date)
		}
		return txs[i].CreatedAt.Before(txs[j].CreatedAt)
	})
	return txs, nil
}

func (s *MemoryStore) CreateSession(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.CreatedAt = time.Now().UTC()
	copied := *session
	s.sessions[session.Token] = &copied
	return nil
}

func (s *MemoryStore) GetSessionByToken(_ context.Context, token string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *MemoryStore) GetSessionByRefreshToken(_ context.Context, refreshToken string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		if session.RefreshToken == refreshToken {
			copied := *session
			return &copied, nil
		}
	}
	return nil, ErrSessionNotFound
}

func (s *MemoryStore) UpdateSessionToken(_ context.Context, refreshToken, newToken string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.sessions {
		if session.RefreshToken == refreshToken {
			delete(s.sessions, token)
			session.Token = newToken
			session.ExpiresAt = expiresAt
			s.sessions[newToken] = session
			return nil
		}
	}
	return ErrSessionNotFound
}

func (s *MemoryStore) DeleteSessionByToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
