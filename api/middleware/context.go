package middleware

import "context"

type contextKey string

const (
	ctxEmployeeID contextKey = "employee_id"
	ctxCode       contextKey = "employee_code"
	ctxRole       contextKey = "actor_role"
	ctxAccessID   contextKey = "access_id"
)

func EmployeeIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxEmployeeID)
}

// CodeFromContext returns the executive code of the caller.
func CodeFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxCode)
}

func RoleFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxRole)
}

// AccessIDFromContext returns the jti of the presented token.
func AccessIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxAccessID)
}

// WithEmployee injects the caller identity into the context and records the
// executive code on the request scope. Tests use it to skip token minting.
func WithEmployee(ctx context.Context, employeeID, code, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if s := scopeFrom(ctx); s != nil {
		s.executive = code
	}
	ctx = context.WithValue(ctx, ctxEmployeeID, employeeID)
	ctx = context.WithValue(ctx, ctxCode, code)
	return context.WithValue(ctx, ctxRole, role)
}

// WithAccessID injects the session identifier into the context.
func WithAccessID(ctx context.Context, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccessID, accessID)
}

func stringFromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
