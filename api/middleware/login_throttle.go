package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/recruitdesk-backend/api/responses"
	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
	"github.com/angelmondragon/recruitdesk-backend/pkg/logger"
)

// maxLoginBody caps how much of a login body is buffered to find the identity.
const maxLoginBody = 8 << 10

type counterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// LoginThrottlePolicy bounds login attempts inside one fixed window, per
// client address and per account. An account is an employee code or an email,
// whichever the body names; codes take precedence.
type LoginThrottlePolicy struct {
	Window        time.Duration
	IPLimit       int
	IdentityLimit int
}

func (p LoginThrottlePolicy) enabled() bool {
	return p.Window > 0 && (p.IPLimit > 0 || p.IdentityLimit > 0)
}

// loginIdentity is the throttling key for the account named in a login body.
// Codes are compared upper-case and emails lower-case, matching how the
// employee directory stores them.
func loginIdentity(body []byte) string {
	var req struct {
		Email        string `json:"email"`
		EmployeeCode string `json:"employee_code"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return ""
	}
	if code := strings.ToUpper(strings.TrimSpace(req.EmployeeCode)); code != "" {
		return "code:" + code
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
		return "email:" + email
	}
	return ""
}

// LoginThrottle counts login attempts in store and answers 429 with a
// Retry-After header once either limit is passed.
func LoginThrottle(policy LoginThrottlePolicy, store counterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.IPLimit > 0 {
				if ip := clientIP(r); ip != "" {
					if !admit(ctx, logg, w, store, policy, policy.IPLimit, "ip", ip, "rl:login:ip:"+ip) {
						return
					}
				}
			}

			if policy.IdentityLimit > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxLoginBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if identity := loginIdentity(body); identity != "" {
					digest := hashIdentity(identity)
					if !admit(ctx, logg, w, store, policy, policy.IdentityLimit, "account", digest, "rl:login:account:"+digest) {
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// admit increments key and writes the rejection itself when the attempt is
// over limit or the counter is unavailable.
func admit(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, store counterStore, policy LoginThrottlePolicy, limit int, scope, subject, key string) bool {
	count, err := store.IncrWithTTL(ctx, key, policy.Window)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "login throttle"))
		return false
	}
	if count <= int64(limit) {
		return true
	}
	if logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"scope":          scope,
			"subject":        subject,
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(policy.Window.Seconds()),
		}), "auth.login_throttled")
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(policy.Window)))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, fmt.Sprintf("too many login attempts, retry in %s", policy.Window)))
	return false
}

func retryAfterSeconds(window time.Duration) int {
	secs := int(window / time.Second)
	if window%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		return 1
	}
	return secs
}

// clientIP prefers the first X-Forwarded-For hop set by the load balancer.
func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func hashIdentity(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return hex.EncodeToString(sum[:12])
}
