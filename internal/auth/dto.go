package auth

import (
	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/core/common/validation"
	"github.com/ashraf950/timesheet-client/internal/core/datamodel/user"
)

// LoginDTO is the body of POST /auth/login.
type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (d LoginDTO) Validate() *internal.AppError {
	return validation.Struct(d)
}

// RegisterDTO is the body of POST /auth/register.
type RegisterDTO struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (d RegisterDTO) Validate() *internal.AppError {
	return validation.Struct(d)
}

// authResponse is the {token, user} pair both endpoints return.
type authResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}
