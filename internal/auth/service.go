package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/recruitdesk-backend/internal/employees"
	pkgAuth "github.com/angelmondragon/recruitdesk-backend/pkg/auth"
	"github.com/angelmondragon/recruitdesk-backend/pkg/auth/session"
	"github.com/angelmondragon/recruitdesk-backend/pkg/config"
	"github.com/angelmondragon/recruitdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
	"github.com/angelmondragon/recruitdesk-backend/pkg/logger"
	"github.com/angelmondragon/recruitdesk-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, req LogoutRequest) error
}

type employeeRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Employee, error)
	FindByCode(ctx context.Context, code string) (*models.Employee, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type sessionManager interface {
	Open(ctx context.Context, accessID, employeeCode string) error
	Revoke(ctx context.Context, accessID string) error
}

type directoryInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Employees      employeeRepository
	SessionManager sessionManager
	Directory      directoryInvalidator
	JWTConfig      config.JWTConfig
	Passwords      config.PasswordConfig
	Logger         *logger.Logger
	Clock          func() time.Time
}

type service struct {
	employees employeeRepository
	session   sessionManager
	directory directoryInvalidator
	jwtCfg    config.JWTConfig
	passwords config.PasswordConfig
	logg      *logger.Logger
	clock     func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Employees == nil {
		return nil, fmt.Errorf("employee repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Directory == nil {
		return nil, fmt.Errorf("employee directory is required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		employees: params.Employees,
		session:   params.SessionManager,
		directory: params.Directory,
		jwtCfg:    params.JWTConfig,
		passwords: params.Passwords,
		logg:      params.Logger,
		clock:     clock,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	employee, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	if err := s.employees.UpdateLastLogin(ctx, employee.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update last login")
	}
	employee.LastLoginAt = &now
	s.upgradeHash(ctx, employee, req.Password)

	accessID := session.NewAccessID()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		EmployeeID: employee.ID,
		Code:       employee.Code,
		Role:       employee.Role,
		JTI:        accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if err := s.session.Open(ctx, accessID, employee.Code); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open session")
	}

	return &LoginResponse{
		AccessToken: token,
		ExpiresAt:   now.Add(s.jwtCfg.TTL()),
		Employee:    employees.FromModel(employee),
	}, nil
}

// Logout revokes the session and drops the cached employee directory so the
// next request sees current names and active flags.
func (s *service) Logout(ctx context.Context, req LogoutRequest) error {
	if strings.TrimSpace(req.AccessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	if err := s.session.Revoke(ctx, req.AccessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	if err := s.directory.Invalidate(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalidate employee directory")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithExecutive(ctx, req.EmployeeCode), "auth.logout")
	}
	return nil
}

// authenticate looks the employee up by code when one is given, else by email.
func (s *service) authenticate(ctx context.Context, req LoginRequest) (*models.Employee, error) {
	code := employees.NormalizeCode(req.EmployeeCode)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := req.Password
	if (code == "" && email == "") || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	var (
		employee *models.Employee
		err      error
	)
	if code != "" {
		employee, err = s.employees.FindByCode(ctx, code)
	} else {
		employee, err = s.employees.FindByEmail(ctx, email)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup employee")
	}

	valid, err := security.VerifyPassword(password, employee.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !employee.Active {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return employee, nil
}

// upgradeHash rewrites hashes made with weaker argon2 settings. Failure only
// costs the upgrade, never the login.
func (s *service) upgradeHash(ctx context.Context, employee *models.Employee, password string) {
	if !security.NeedsRehash(employee.PasswordHash, s.passwords) {
		return
	}
	hash, err := security.HashPassword(password, s.passwords)
	if err == nil {
		err = s.employees.UpdatePasswordHash(ctx, employee.ID, hash)
	}
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "auth.rehash_failed")
		}
		return
	}
	employee.PasswordHash = hash
}
