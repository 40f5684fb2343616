package users

type CreateUserRequest struct {
	CompanyID int64  `json:"company_id" validate:"required,gt=0"`
	Email     string `json:"email" validate:"required,email"`
	FullName  string `json:"full_name" validate:"required,max=200"`
	Password  string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateCompanyRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=200"`
	City        *string `json:"city,omitempty" validate:"omitempty,max=100"`
	PostalCode  *string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	CountryCode *string `json:"country_code,omitempty" validate:"omitempty,iso3166_1_alpha2"`
	VATNumber   *string `json:"vat_number,omitempty" validate:"omitempty,max=30"`
}
