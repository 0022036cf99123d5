package auth

import (
	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	EmployeeID uuid.UUID
	Code       string
	Role       enums.EmployeeRole
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to employees. Code is the
// executive identifier written into feedback entries as Entered By.
type AccessTokenClaims struct {
	EmployeeID uuid.UUID          `json:"employee_id"`
	Code       string             `json:"code"`
	Role       enums.EmployeeRole `json:"role"`
	jwt.RegisteredClaims
}
