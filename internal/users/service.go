package users

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/quillbooks/quillbooks/internal/shared"
)

// ErrInvalidCredentials indicates login failure.
var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := User{
		CompanyID:    req.CompanyID,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
	}
	id, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.repo.GetUser(ctx, id)
}

// Authenticate verifies a user's credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) GetCompany(ctx context.Context, id int64) (*Company, error) {
	return s.repo.GetCompany(ctx, id)
}

func (s *Service) UpdateCompany(ctx context.Context, id int64, req UpdateCompanyRequest) (*Company, error) {
	if _, err := s.repo.GetCompany(ctx, id); err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.PostalCode != nil {
		updates["postal_code"] = *req.PostalCode
	}
	if req.CountryCode != nil {
		updates["country_code"] = *req.CountryCode
	}
	if req.VATNumber != nil {
		updates["vat_number"] = *req.VATNumber
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateCompany(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update company: %w", err)
		}
	}
	return s.repo.GetCompany(ctx, id)
}
