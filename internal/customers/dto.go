package customers

type CreateCustomerRequest struct {
	CompanyID   int64   `json:"company_id" validate:"required,gt=0"`
	Name        string  `json:"name" validate:"required,max=200"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address     string  `json:"address" validate:"required,max=200"`
	City        string  `json:"city" validate:"required,max=100"`
	PostalCode  string  `json:"postal_code" validate:"required,max=20"`
	CountryCode string  `json:"country_code" validate:"required,iso3166_1_alpha2"`
	Notes       *string `json:"notes,omitempty"`
}

type UpdateCustomerRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=200"`
	City        *string `json:"city,omitempty" validate:"omitempty,max=100"`
	PostalCode  *string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	CountryCode *string `json:"country_code,omitempty" validate:"omitempty,iso3166_1_alpha2"`
	Notes       *string `json:"notes,omitempty"`
}

type ListCustomersRequest struct {
	CompanyID int64   `json:"company_id" validate:"required,gt=0"`
	Search    *string `json:"search,omitempty"`
	Limit     int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset    int     `json:"offset" validate:"gte=0"`
}
