package models

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignupRequest struct {
	Credentials
	FullName string `json:"fullName" validate:"required,min=2,max=100"`
}
