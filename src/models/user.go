package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User owns a set of transactions and a stored running balance. Balance
// is the anchor: it is adjusted by the signed amount inside the same
// storage transaction that inserts or deletes a transaction row, so at
// any instant balance == sum of all signed transaction amounts.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Balance   Cents     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) HashPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}
