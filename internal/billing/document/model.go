// Package document holds the pricing model shared by quotes and invoices:
// priced lines, amount breakdowns and the party snapshots embedded in every
// commercial document.
package document

// RateUnit enumerates how a line rate is expressed.
type RateUnit string

const (
	RateUnitHourly RateUnit = "HOURLY"
	RateUnitDaily  RateUnit = "DAILY"
)

// Valid reports whether the rate unit is a known value.
func (u RateUnit) Valid() bool {
	return u == RateUnitHourly || u == RateUnitDaily
}

// AmountBreakdown is a net/tax/gross triple of fixed-scale decimal strings.
// Every instance constructed by this package satisfies gross = net + tax.
type AmountBreakdown struct {
	Net   string `json:"net"`
	Tax   string `json:"tax"`
	Gross string `json:"gross"`
}

// Line is a single priced document line. Position is a stable 0-based
// ordering index, unique within a document.
type Line struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Quantity    string          `json:"quantity"`
	RateUnit    RateUnit        `json:"rate_unit"`
	Rate        string          `json:"rate"`
	Amount      AmountBreakdown `json:"amount"`
	Position    int             `json:"position"`
}

// CustomerSnapshot is an immutable copy of customer identity data taken at
// document creation or update time. It does not follow later changes to the
// customer record.
type CustomerSnapshot struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
}

// CompanySnapshot is the issuing company's identity as of issuance.
type CompanySnapshot struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
	VATNumber   string `json:"vat_number"`
}

// Document carries the commercial content common to quotes and invoices.
// Total is always the exact sum of the line amounts.
type Document struct {
	Title    string           `json:"title"`
	Subtitle string           `json:"subtitle,omitempty"`
	Currency string           `json:"currency"`
	VATRate  string           `json:"vat_rate"`
	Total    AmountBreakdown  `json:"total"`
	Lines    []Line           `json:"lines"`
	Customer CustomerSnapshot `json:"customer"`
	Company  CompanySnapshot  `json:"company"`
}
