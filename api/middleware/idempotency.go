package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/recruitdesk-backend/api/responses"
	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
	"github.com/angelmondragon/recruitdesk-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/recruitdesk-backend/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
	maxIdempotencyKey = 128

	writeReplayTTL    = 24 * time.Hour
	reassignReplayTTL = 7 * 24 * time.Hour
	// claimTTL frees a key whose request died without releasing it.
	claimTTL = 2 * time.Minute
)

const (
	outcomePending = "pending"
	outcomeDone    = "done"
)

// idempotentRoute matches a POST path by prefix, and by suffix when one is
// set; an empty suffix means the path must equal prefix.
type idempotentRoute struct {
	prefix string
	suffix string
	ttl    time.Duration
}

var idempotentRoutes = []idempotentRoute{
	{prefix: "/api/v1/candidates", ttl: writeReplayTTL},
	{prefix: "/api/v1/assignments", ttl: writeReplayTTL},
	{prefix: "/api/v1/assignments/", suffix: "/feedback", ttl: writeReplayTTL},
	// a replayed reassignment must never append a second audit entry
	{prefix: "/api/v1/assignments/", suffix: "/reassign", ttl: reassignReplayTTL},
}

func (rt idempotentRoute) matches(path string) bool {
	if rt.suffix == "" {
		return path == rt.prefix
	}
	return len(path) > len(rt.prefix)+len(rt.suffix) &&
		strings.HasPrefix(path, rt.prefix) && strings.HasSuffix(path, rt.suffix)
}

// storedOutcome is what sits under an idempotency key: a pending claim
// while the handler runs, then the response to replay.
type storedOutcome struct {
	State       string `json:"state"`
	Fingerprint string `json:"fingerprint"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Idempotency makes the recruitment write endpoints safe to retry. The first
// request with a key claims it before the handler runs, so a duplicate that
// arrives mid-flight is refused instead of executed twice. Server errors
// release the claim so the caller can retry with the same key.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, ok := replayTTL(r.Method, idempotencyPattern(r))
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			idemKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if idemKey == "" || len(idemKey) > maxIdempotencyKey {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required (at most 128 characters)"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			fingerprint := fingerprintBody(body)
			key := store.IdempotencyKey(replayScope(r), idemKey)

			claim, _ := json.Marshal(storedOutcome{State: outcomePending, Fingerprint: fingerprint})
			claimed, err := store.SetNX(r.Context(), key, string(claim), claimTTL)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				answerDuplicate(w, r, store, key, fingerprint, logg)
				return
			}

			// Writes after the handler must outlive a disconnected caller.
			bg := context.WithoutCancel(r.Context())
			finished := false
			defer func() {
				if !finished {
					release(bg, store, key, logg)
				}
			}()

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			finished = true

			status := rec.statusOrOK()
			if status >= http.StatusInternalServerError {
				release(bg, store, key, logg)
				return
			}

			done, err := json.Marshal(storedOutcome{
				State:       outcomeDone,
				Fingerprint: fingerprint,
				Status:      status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
			})
			if err == nil {
				err = store.Set(bg, key, string(done), ttl)
			}
			if err != nil {
				logError(bg, logg, "idempotency.persist_failed", err)
			}
		})
	}
}

func answerDuplicate(w http.ResponseWriter, r *http.Request, store pkgredis.IdempotencyStore, key, fingerprint string, logg *logger.Logger) {
	raw, err := store.Get(r.Context(), key)
	if errors.Is(err, redis.Nil) {
		// the claim expired between SetNX and Get
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this Idempotency-Key is still in progress"))
		return
	}
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read idempotency record"))
		return
	}

	var stored storedOutcome
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	switch {
	case stored.Fingerprint != fingerprint:
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
	case stored.State != outcomeDone:
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this Idempotency-Key is still in progress"))
	default:
		if stored.ContentType != "" {
			w.Header().Set("Content-Type", stored.ContentType)
		}
		w.Header().Set(replayedHeader, "true")
		w.WriteHeader(stored.Status)
		_, _ = w.Write(stored.Body)
	}
}

func release(ctx context.Context, store pkgredis.IdempotencyStore, key string, logg *logger.Logger) {
	if err := store.Del(ctx, key); err != nil {
		logError(ctx, logg, "idempotency.release_failed", err)
	}
}

// replayScope keeps one employee's keys apart from another's.
func replayScope(r *http.Request) string {
	return EmployeeIDFromContext(r.Context()) + "|" + r.Method + "|" + r.URL.Path
}

func fingerprintBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// idempotencyPattern prefers the chi route pattern but falls back to the raw
// path while routing is still inside a mounted subrouter.
func idempotencyPattern(r *http.Request) string {
	pattern := routePattern(r)
	if pattern == "" || strings.Contains(pattern, "*") {
		pattern = r.URL.Path
	}
	if pattern != "/" {
		pattern = strings.TrimSuffix(pattern, "/")
	}
	return pattern
}

func replayTTL(method, pattern string) (time.Duration, bool) {
	if method != http.MethodPost || pattern == "" {
		return 0, false
	}
	for _, rt := range idempotentRoutes {
		if rt.matches(pattern) {
			return rt.ttl, true
		}
	}
	return 0, false
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseCapture) statusOrOK() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
