package invoices

import "time"

type LineRequest struct {
	ID          int64   `json:"id,omitempty"`
	Description string  `json:"description" validate:"required,max=500"`
	Quantity    float64 `json:"quantity" validate:"required,gt=0"`
	RateUnit    string  `json:"rate_unit" validate:"required,oneof=HOURLY DAILY"`
	Rate        float64 `json:"rate" validate:"gte=0"`
}

type CreateInvoiceRequest struct {
	CompanyID  int64         `json:"company_id" validate:"required,gt=0"`
	CustomerID int64         `json:"customer_id" validate:"required,gt=0"`
	Title      string        `json:"title" validate:"required,max=255"`
	Subtitle   string        `json:"subtitle" validate:"max=255"`
	Currency   string        `json:"currency" validate:"required,len=3"`
	VATRate    float64       `json:"vat_rate" validate:"gte=0,lte=100"`
	Lines      []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

type UpdateInvoiceRequest struct {
	Title    string        `json:"title" validate:"required,max=255"`
	Subtitle string        `json:"subtitle" validate:"max=255"`
	Currency string        `json:"currency" validate:"required,len=3"`
	VATRate  float64       `json:"vat_rate" validate:"gte=0,lte=100"`
	Lines    []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

type IssueInvoiceRequest struct {
	DueDate time.Time `json:"due_date" validate:"required"`
}

type AttachRecurrenceRequest struct {
	Frequency       string     `json:"frequency" validate:"required,oneof=MONTHLY QUARTERLY"`
	Interval        int        `json:"interval" validate:"required,gt=0"`
	AnchorDate      time.Time  `json:"anchor_date" validate:"required"`
	EndStrategy     string     `json:"end_strategy" validate:"required,oneof=NEVER UNTIL_DATE UNTIL_COUNT"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	OccurrenceCount int        `json:"occurrence_count,omitempty" validate:"gte=0"`
}

type InstallmentRequest struct {
	Percentage float64    `json:"percentage" validate:"required,gt=0,lte=100"`
	DueDate    *time.Time `json:"due_date,omitempty"`
}

type AttachInstallmentPlanRequest struct {
	Installments []InstallmentRequest `json:"installments" validate:"required,min=1,dive"`
}

type GenerateRequest struct {
	// Force generates the next occurrence even before its scheduled time.
	Force bool `json:"force"`
}

type ListInvoicesRequest struct {
	CompanyID  int64      `json:"company_id" validate:"required,gt=0"`
	CustomerID *int64     `json:"customer_id,omitempty"`
	Status     *Status    `json:"status,omitempty"`
	DateFrom   *time.Time `json:"date_from,omitempty"`
	DateTo     *time.Time `json:"date_to,omitempty"`
	Limit      int        `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int        `json:"offset" validate:"gte=0"`

	// DueBefore narrows to invoices whose due date has passed. Set by the
	// service when resolving an OVERDUE status filter, not accepted over
	// the wire.
	DueBefore *time.Time `json:"-"`
}
