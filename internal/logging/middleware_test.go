package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var ctxLogger zerolog.Logger
	handler := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger = FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/topics", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	reqID := rec.Header().Get(RequestIDHeader)
	require.NotEmpty(t, reqID)
	assert.NotEqual(t, zerolog.Nop(), ctxLogger)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, reqID, entry["request_id"])
	assert.Equal(t, "/v1/topics", entry["path"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
}

func TestMiddlewareKeepsIncomingRequestID(t *testing.T) {
	handler := Middleware(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestFromContextFallsBackToNop(t *testing.T) {
	logger := FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.Equal(t, zerolog.Nop(), logger)
}
