package security

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateTokenRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret-test-secret-test-secret!")

	token, err := svc.GenerateToken(42, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	userID, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}
}

// Issued timestamps only have second precision, so uniqueness must not
// depend on them: sessions key on the token string, and refresh
// rotation replaces one token with another.
func TestGenerateTokenUnique(t *testing.T) {
	svc := NewAuthService("test-secret-test-secret-test-secret!")

	first, err := svc.GenerateToken(42, time.Minute)
	if err != nil {
		t.Fatalf("generate first: %v", err)
	}
	second, err := svc.GenerateToken(42, time.Minute)
	if err != nil {
		t.Fatalf("generate second: %v", err)
	}
	if first == second {
		t.Error("two tokens for the same user and TTL are identical")
	}
}

func TestValidateTokenRejectsBadInput(t *testing.T) {
	svc := NewAuthService("test-secret-test-secret-test-secret!")
	other := NewAuthService("another-secret-another-secret-now!!!")

	token, err := other.GenerateToken(42, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for name, input := range map[string]string{
		"garbage":      "not-a-jwt",
		"wrong secret": token,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.ValidateToken(input); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewAuthService("test-secret-test-secret-test-secret!")

	token, err := svc.GenerateToken(42, -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}
