package auth

import (
	"time"

	"github.com/angelmondragon/recruitdesk-backend/internal/employees"
)

// LoginRequest captures the employee credentials sent to the login endpoint.
// Executives sign in with their employee code; email is accepted as well.
type LoginRequest struct {
	EmployeeCode string `json:"employee_code" validate:"required_without=Email,omitempty,empcode"`
	Email        string `json:"email" validate:"required_without=EmployeeCode,omitempty,email"`
	Password     string `json:"password" validate:"required"`
}

// LoginResponse contains the access token and the signed-in employee.
type LoginResponse struct {
	AccessToken string                 `json:"access_token"`
	ExpiresAt   time.Time              `json:"expires_at"`
	Employee    *employees.EmployeeDTO `json:"employee"`
}

// LogoutRequest identifies the session being closed. Both values come from
// the verified access token.
type LogoutRequest struct {
	AccessID     string
	EmployeeCode string
}
