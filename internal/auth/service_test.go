package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/angelmondragon/recruitdesk-backend/pkg/auth"
	"github.com/angelmondragon/recruitdesk-backend/pkg/config"
	"github.com/angelmondragon/recruitdesk-backend/pkg/db/models"
	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
	"github.com/angelmondragon/recruitdesk-backend/pkg/security"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "recruitdesk", ExpirationMinutes: 30}

// weak keeps hashing fast; strong is what the service is configured with so
// a weak hash gets upgraded on login.
var (
	weakPasswords   = config.PasswordConfig{ArgonMemoryKB: 8 * 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
	strongPasswords = config.PasswordConfig{ArgonMemoryKB: 16 * 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
)

func TestServiceLoginMintsTokenAndOpensSession(t *testing.T) {
	employee := newEmployee(t, "recruiter-secret", weakPasswords)
	svc, deps := buildTestService(t, employee, strongPasswords)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: " Asha@Example.com ", Password: "recruiter-secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.EmployeeID != employee.ID || claims.Code != "E7" || claims.Role != enums.EmployeeRoleExecutive {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if deps.sessions.opened[claims.ID] != "E7" {
		t.Fatalf("expected session opened for jti %s, got %v", claims.ID, deps.sessions.opened)
	}
	if resp.Employee == nil || resp.Employee.LastLoginAt == nil {
		t.Fatalf("expected last login to be recorded")
	}
	if !resp.ExpiresAt.Equal(loginNow.Add(30 * time.Minute)) {
		t.Fatalf("unexpected expiry %v", resp.ExpiresAt)
	}
	if deps.repo.rehashed == "" {
		t.Fatalf("expected weak hash to be upgraded")
	}
	if security.NeedsRehash(deps.repo.rehashed, strongPasswords) {
		t.Fatalf("upgraded hash still weak")
	}
}

func TestServiceLoginRejectsBadCredentials(t *testing.T) {
	employee := newEmployee(t, "recruiter-secret", weakPasswords)
	svc, deps := buildTestService(t, employee, weakPasswords)
	ctx := context.Background()

	cases := []LoginRequest{
		{Email: "asha@example.com", Password: "wrong"},
		{Email: "", Password: "recruiter-secret"},
		{Email: "nobody@example.com", Password: "recruiter-secret"},
	}
	deps.repo.missing = map[string]bool{"nobody@example.com": true}
	for _, req := range cases {
		_, err := svc.Login(ctx, req)
		if pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized for %q, got %v", req.Email, err)
		}
	}

	employee.Active = false
	if _, err := svc.Login(ctx, LoginRequest{Email: "asha@example.com", Password: "recruiter-secret"}); pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("inactive employee must not log in, got %v", err)
	}
	if len(deps.sessions.opened) != 0 {
		t.Fatalf("no session expected, got %v", deps.sessions.opened)
	}
}

func TestServiceLoginByEmployeeCode(t *testing.T) {
	employee := newEmployee(t, "recruiter-secret", weakPasswords)
	svc, deps := buildTestService(t, employee, weakPasswords)
	ctx := context.Background()

	resp, err := svc.Login(ctx, LoginRequest{EmployeeCode: " e7 ", Password: "recruiter-secret"})
	if err != nil {
		t.Fatalf("login by code: %v", err)
	}
	if resp.Employee == nil || resp.Employee.Code != "E7" {
		t.Fatalf("unexpected employee %+v", resp.Employee)
	}

	// a code takes precedence over an email in the same request
	_, err = svc.Login(ctx, LoginRequest{EmployeeCode: "E8", Email: "asha@example.com", Password: "recruiter-secret"})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for unknown code, got %v", err)
	}
	if len(deps.sessions.opened) != 1 {
		t.Fatalf("expected exactly one session, got %v", deps.sessions.opened)
	}
}

func TestServiceLogoutRevokesAndInvalidatesDirectory(t *testing.T) {
	employee := newEmployee(t, "recruiter-secret", weakPasswords)
	svc, deps := buildTestService(t, employee, weakPasswords)

	if err := svc.Logout(context.Background(), LogoutRequest{AccessID: "jti-1", EmployeeCode: "E7"}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(deps.sessions.revoked) != 1 || deps.sessions.revoked[0] != "jti-1" {
		t.Fatalf("expected jti-1 revoked, got %v", deps.sessions.revoked)
	}
	if deps.directory.invalidated != 1 {
		t.Fatalf("expected directory invalidated once, got %d", deps.directory.invalidated)
	}

	if err := svc.Logout(context.Background(), LogoutRequest{}); pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for blank session, got %v", err)
	}
}

// loginNow must be current because ParseAccessToken checks expiry against the wall clock.
var loginNow = time.Now().UTC().Truncate(time.Second)

type testDeps struct {
	repo      *stubEmployeeRepo
	sessions  *stubSessionManager
	directory *stubDirectory
}

func buildTestService(t *testing.T, employee *models.Employee, passwords config.PasswordConfig) (Service, testDeps) {
	t.Helper()
	deps := testDeps{
		repo:      &stubEmployeeRepo{employee: employee},
		sessions:  &stubSessionManager{opened: map[string]string{}},
		directory: &stubDirectory{},
	}
	svc, err := NewService(ServiceParams{
		Employees:      deps.repo,
		SessionManager: deps.sessions,
		Directory:      deps.directory,
		JWTConfig:      testJWT,
		Passwords:      passwords,
		Clock:          func() time.Time { return loginNow },
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, deps
}

func newEmployee(t *testing.T, password string, cfg config.PasswordConfig) *models.Employee {
	t.Helper()
	hash, err := security.HashPassword(password, cfg)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.Employee{
		ID:           uuid.New(),
		Code:         "E7",
		DisplayName:  "Asha",
		Email:        "asha@example.com",
		PasswordHash: hash,
		Role:         enums.EmployeeRoleExecutive,
		Active:       true,
	}
}

type stubEmployeeRepo struct {
	employee *models.Employee
	missing  map[string]bool
	rehashed string
}

func (s *stubEmployeeRepo) FindByEmail(_ context.Context, email string) (*models.Employee, error) {
	if s.missing[email] || s.employee == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.employee, nil
}

func (s *stubEmployeeRepo) FindByCode(_ context.Context, code string) (*models.Employee, error) {
	if s.employee == nil || s.employee.Code != code {
		return nil, gorm.ErrRecordNotFound
	}
	return s.employee, nil
}

func (s *stubEmployeeRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if s.employee != nil && s.employee.ID == id {
		s.employee.LastLoginAt = &at
	}
	return nil
}

func (s *stubEmployeeRepo) UpdatePasswordHash(_ context.Context, _ uuid.UUID, hash string) error {
	s.rehashed = hash
	return nil
}

type stubSessionManager struct {
	opened  map[string]string
	revoked []string
}

func (s *stubSessionManager) Open(_ context.Context, accessID, code string) error {
	s.opened[accessID] = code
	return nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

type stubDirectory struct {
	invalidated int
}

func (s *stubDirectory) Invalidate(context.Context) error {
	s.invalidated++
	return nil
}
