package user

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/infrastructure/store"
)

// Roles.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Service struct {
	store store.DocumentStore
}

func NewService(ds store.DocumentStore) *Service {
	return &Service{store: ds}
}

// Register creates a new account with the given role.
func (s *Service) Register(ctx context.Context, email, name, password, role string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || name == "" {
		return nil, ErrInvalidCredentials
	}

	if existing, err := s.FindByEmail(ctx, email); err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	if err := s.store.Put(ctx, store.CollectionUsers, u.ID, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies credentials and returns the account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.Active || !auth.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	raw, err := s.store.List(ctx, store.CollectionUsers)
	if err != nil {
		return nil, err
	}
	for _, doc := range raw {
		var u User
		if err := json.Unmarshal(doc, &u); err != nil {
			continue
		}
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}
