package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/recruitdesk-backend/api/middleware"
	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	"github.com/angelmondragon/recruitdesk-backend/pkg/logger"
)

var testEmployeeID = uuid.MustParse("8b3f1b9e-2c2a-4a7e-9a55-6f0f4f1c0a01")

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

// newRequest builds a request as Auth and chi would leave it.
func newRequest(method, target, body string, role enums.EmployeeRole, params map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := req.Context()
	if role != "" {
		ctx = middleware.WithEmployee(ctx, testEmployeeID.String(), "E1", string(role))
		ctx = middleware.WithAccessID(ctx, "jti-1")
	}
	routeCtx := chi.NewRouteContext()
	for k, v := range params {
		routeCtx.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	return req.WithContext(ctx)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	return env
}
