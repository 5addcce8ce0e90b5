package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	jwtsvc "cinespot/internal/pkg/jwt"
)

type Service struct {
	repo Repository
	jwt  *jwtsvc.Service
}

func NewService(repo Repository, jwt *jwtsvc.Service) *Service {
	return &Service{repo: repo, jwt: jwt}
}

// Login checks the credentials against the stored hash and issues a
// session token. Unknown email and wrong password are the same error.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	return s.jwt.GenerateToken(admin.ID, admin.Email)
}

// EnsureAdmin creates or refreshes the bootstrap admin account from
// the environment. Called once at startup.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.repo.Upsert(ctx, &Admin{
		Email:        normalizeEmail(email),
		PasswordHash: string(hash),
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
