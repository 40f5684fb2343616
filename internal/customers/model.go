package customers

import (
	"time"

	"github.com/quillbooks/quillbooks/internal/billing/document"
)

type Customer struct {
	ID          int64     `json:"id" db:"id"`
	CompanyID   int64     `json:"company_id" db:"company_id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	Phone       *string   `json:"phone,omitempty" db:"phone"`
	Address     string    `json:"address" db:"address"`
	City        string    `json:"city" db:"city"`
	PostalCode  string    `json:"postal_code" db:"postal_code"`
	CountryCode string    `json:"country_code" db:"country_code"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Snapshot copies the customer's identity data for embedding in a document.
// Documents keep this copy regardless of later customer edits.
func (c *Customer) Snapshot() document.CustomerSnapshot {
	return document.CustomerSnapshot{
		Name:        c.Name,
		Email:       c.Email,
		Address:     c.Address,
		City:        c.City,
		PostalCode:  c.PostalCode,
		CountryCode: c.CountryCode,
	}
}
