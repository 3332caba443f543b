package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/liquidevz/rangaone/internal/models"
)

type memUsers struct {
	users map[string]*models.User
}

func (m *memUsers) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (m *memUsers) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	if m.users == nil {
		m.users = map[string]*models.User{}
	}
	u := &models.User{ID: len(m.users) + 1, Username: username, PasswordHash: passwordHash}
	m.users[username] = u
	return u, nil
}

func TestTokenRoundTrip(t *testing.T) {
	s := NewService("secret", time.Hour)

	token, err := s.GenerateToken(3, "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := s.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 3 || claims.Username != "admin" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	s := NewService("secret", time.Hour)
	other := NewService("other", time.Hour)

	foreign, _ := other.GenerateToken(1, "x")
	if _, err := s.ValidateToken(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign signature: expected ErrInvalidToken, got %v", err)
	}

	expired := NewService("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.GenerateToken(1, "x")
	if _, err := s.ValidateToken(old); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: expected ErrInvalidToken, got %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := s.ValidateToken(unsigned); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("alg none: expected ErrInvalidToken, got %v", err)
	}
}

func TestEnsureAdminAndLogin(t *testing.T) {
	s := NewService("secret", time.Hour)
	users := &memUsers{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	if err := s.EnsureAdmin(ctx, users, "admin", "s3cret", logger); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	hash := users.users["admin"].PasswordHash

	// Повторный вызов не пересоздаёт пользователя
	if err := s.EnsureAdmin(ctx, users, "admin", "changed", logger); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if users.users["admin"].PasswordHash != hash {
		t.Error("existing admin must be kept")
	}

	token, user, err := s.Login(ctx, users, "admin", "s3cret")
	if err != nil || token == "" || user.Username != "admin" {
		t.Fatalf("Login = %q, %+v, %v", token, user, err)
	}

	if _, _, err := s.Login(ctx, users, "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := s.Login(ctx, users, "ghost", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}
