package users

import (
	"time"

	"github.com/quillbooks/quillbooks/internal/billing/document"
)

// Company is the issuing party whose identity is embedded in documents.
type Company struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	Address     string    `json:"address" db:"address"`
	City        string    `json:"city" db:"city"`
	PostalCode  string    `json:"postal_code" db:"postal_code"`
	CountryCode string    `json:"country_code" db:"country_code"`
	VATNumber   string    `json:"vat_number" db:"vat_number"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Snapshot copies the company's identity data for embedding in a document.
func (c *Company) Snapshot() document.CompanySnapshot {
	return document.CompanySnapshot{
		Name:        c.Name,
		Email:       c.Email,
		Address:     c.Address,
		City:        c.City,
		PostalCode:  c.PostalCode,
		CountryCode: c.CountryCode,
		VATNumber:   c.VATNumber,
	}
}

// User is an operator account scoped to a company.
type User struct {
	ID           int64     `json:"id" db:"id"`
	CompanyID    int64     `json:"company_id" db:"company_id"`
	Email        string    `json:"email" db:"email"`
	FullName     string    `json:"full_name" db:"full_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
