package employees

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/recruitdesk-backend/pkg/config"
	dbpkg "github.com/angelmondragon/recruitdesk-backend/pkg/db"
	"github.com/angelmondragon/recruitdesk-backend/pkg/db/models"
	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
	"github.com/angelmondragon/recruitdesk-backend/pkg/security"
)

const tempPasswordLength = 12

var codePattern = regexp.MustCompile(`^[A-Z0-9]{2,16}$`)

type employeesRepository interface {
	Create(ctx context.Context, dto CreateEmployeeDTO) (*models.Employee, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type directoryCache interface {
	Executives(ctx context.Context) ([]Entry, error)
	Invalidate(ctx context.Context) error
}

// Service exposes the employee directory and admin management operations.
type Service interface {
	ListExecutives(ctx context.Context) ([]Entry, error)
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*EmployeeDTO, error)
}

type service struct {
	repo      employeesRepository
	directory directoryCache
	passwords config.PasswordConfig
}

// CreateInput carries the admin-supplied fields for a new employee. A blank
// password makes the service generate a temporary one.
type CreateInput struct {
	Code        string
	DisplayName string
	Email       string
	Role        enums.EmployeeRole
	Password    string
}

// CreateResult returns the created employee and, when generated, the one-time password.
type CreateResult struct {
	Employee     *EmployeeDTO `json:"employee"`
	TempPassword string       `json:"temp_password,omitempty"`
}

func NewService(repo employeesRepository, directory directoryCache, passwords config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("employees repository required")
	}
	if directory == nil {
		return nil, fmt.Errorf("employee directory required")
	}
	return &service{repo: repo, directory: directory, passwords: passwords}, nil
}

func (s *service) ListExecutives(ctx context.Context) ([]Entry, error) {
	entries, err := s.directory.Executives(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load employee directory")
	}
	return entries, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	code := NormalizeCode(input.Code)
	if !codePattern.MatchString(code) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code must be 2-16 letters or digits")
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display_name is required")
	}
	email := NormalizeEmail(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid email is required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	password := input.Password
	generated := ""
	if password == "" {
		temp, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate password")
		}
		password = temp
		generated = temp
	}
	hash, err := security.HashPassword(password, s.passwords)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	employee, err := s.repo.Create(ctx, CreateEmployeeDTO{
		Code:         code,
		DisplayName:  input.DisplayName,
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "employee code or email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create employee")
	}
	s.invalidate(ctx)

	return &CreateResult{Employee: FromModel(employee), TempPassword: generated}, nil
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*EmployeeDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee id required")
	}
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load employee")
	}
	if employee.Active != active {
		if err := s.repo.SetActive(ctx, id, active); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update employee")
		}
		employee.Active = active
		s.invalidate(ctx)
	}
	return FromModel(employee), nil
}

// invalidate is best effort; a stale snapshot expires on its own.
func (s *service) invalidate(ctx context.Context) {
	_ = s.directory.Invalidate(ctx)
}
