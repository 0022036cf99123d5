package employees

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/recruitdesk-backend/pkg/db/models"
	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
)

// EmployeeDTO is the transport shape that omits sensitive credentials.
type EmployeeDTO struct {
	ID          uuid.UUID          `json:"id"`
	Code        string             `json:"code"`
	DisplayName string             `json:"display_name"`
	Email       string             `json:"email"`
	Role        enums.EmployeeRole `json:"role"`
	Active      bool               `json:"active"`
	LastLoginAt *time.Time         `json:"last_login_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// CreateEmployeeDTO holds the data required by the repo to persist a new employee.
type CreateEmployeeDTO struct {
	Code         string
	DisplayName  string
	Email        string
	PasswordHash string
	Role         enums.EmployeeRole
}

func FromModel(e *models.Employee) *EmployeeDTO {
	if e == nil {
		return nil
	}
	return &EmployeeDTO{
		ID:          e.ID,
		Code:        e.Code,
		DisplayName: e.DisplayName,
		Email:       e.Email,
		Role:        e.Role,
		Active:      e.Active,
		LastLoginAt: e.LastLoginAt,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (c CreateEmployeeDTO) ToModel() *models.Employee {
	return &models.Employee{
		Code:         NormalizeCode(c.Code),
		DisplayName:  strings.TrimSpace(c.DisplayName),
		Email:        NormalizeEmail(c.Email),
		PasswordHash: c.PasswordHash,
		Role:         c.Role,
		Active:       true,
	}
}

// NormalizeCode upper-cases executive codes so lookups are case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
