// Package auth handles account registration, login, and token validation.
package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/aivahq/aiva-backend/internal/models"
	"github.com/aivahq/aiva-backend/internal/repository"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
)

type Service struct {
	accounts *repository.AccountRepo
	jwt      *JWTService

	// onChange callbacks fire after login, registration, and logout.
	onChange []func(account *models.Account)
}

func NewService(accounts *repository.AccountRepo, jwt *JWTService) *Service {
	return &Service{accounts: accounts, jwt: jwt}
}

// OnAuthChange registers a callback invoked with the account on sign-in
// and nil on sign-out. Not safe to call after the service is serving.
func (s *Service) OnAuthChange(fn func(account *models.Account)) {
	s.onChange = append(s.onChange, fn)
}

func (s *Service) notify(account *models.Account) {
	for _, fn := range s.onChange {
		fn(account)
	}
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string         `json:"token"`
	User  models.Account `json:"user"`
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if _, _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if err != repository.ErrNotFound {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.Create(ctx, email, hash, input.FirstName, input.LastName)
	if err != nil {
		return nil, err
	}
	token, err := s.jwt.GenerateToken(account.ID, account.Email, account.Role)
	if err != nil {
		return nil, err
	}
	s.notify(&account)
	return &AuthResponse{Token: token, User: account}, nil
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	account, hash, err := s.accounts.GetByEmail(ctx, email)
	if err == repository.ErrNotFound {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, ErrInactiveUser
	}
	if !CheckPassword(hash, input.Password) {
		return nil, ErrInvalidCredentials
	}
	token, err := s.jwt.GenerateToken(account.ID, account.Email, account.Role)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.TouchLastLogin(ctx, account.ID); err != nil {
		return nil, err
	}
	s.notify(&account)
	return &AuthResponse{Token: token, User: account}, nil
}

// Logout only fires the change callbacks; tokens stay valid until expiry.
func (s *Service) Logout() {
	s.notify(nil)
}

func (s *Service) Validate(token string) (*Claims, error) {
	return s.jwt.ValidateToken(token)
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
