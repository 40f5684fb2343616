package quotes

import "time"

type LineRequest struct {
	ID          int64   `json:"id,omitempty"`
	Description string  `json:"description" validate:"required,max=500"`
	Quantity    float64 `json:"quantity" validate:"required,gt=0"`
	RateUnit    string  `json:"rate_unit" validate:"required,oneof=HOURLY DAILY"`
	Rate        float64 `json:"rate" validate:"gte=0"`
}

type CreateQuoteRequest struct {
	CompanyID  int64         `json:"company_id" validate:"required,gt=0"`
	CustomerID int64         `json:"customer_id" validate:"required,gt=0"`
	Title      string        `json:"title" validate:"required,max=255"`
	Subtitle   string        `json:"subtitle" validate:"max=255"`
	Currency   string        `json:"currency" validate:"required,len=3"`
	VATRate    float64       `json:"vat_rate" validate:"gte=0,lte=100"`
	Lines      []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

type UpdateQuoteRequest struct {
	Title    string        `json:"title" validate:"required,max=255"`
	Subtitle string        `json:"subtitle" validate:"max=255"`
	Currency string        `json:"currency" validate:"required,len=3"`
	VATRate  float64       `json:"vat_rate" validate:"gte=0,lte=100"`
	Lines    []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

type ListQuotesRequest struct {
	CompanyID  int64      `json:"company_id" validate:"required,gt=0"`
	CustomerID *int64     `json:"customer_id,omitempty"`
	Status     *Status    `json:"status,omitempty"`
	DateFrom   *time.Time `json:"date_from,omitempty"`
	DateTo     *time.Time `json:"date_to,omitempty"`
	Limit      int        `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int        `json:"offset" validate:"gte=0"`
}
