package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/traceid"
	"github.com/stretchr/testify/assert"
)

func TestStructuredLogger(t *testing.T) {
	t.Run("should log the completed request and pass it through", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		handler := StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte("created"))
		}))

		req := httptest.NewRequest(http.MethodPost, "/loans", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "created", rec.Body.String())

		var line map[string]any
		assert.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "Request completed", line["msg"])
		assert.Equal(t, "POST", line["method"])
		assert.Equal(t, "/loans", line["path"])
		assert.Equal(t, float64(http.StatusCreated), line["status"])
		assert.Equal(t, float64(len("created")), line["bytes"])
	})

	t.Run("should carry the trace id installed upstream", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		handler := traceid.Middleware(StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

		req := httptest.NewRequest(http.MethodGet, "/loans", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		var line map[string]any
		assert.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.NotEmpty(t, line["trace_id"])
	})
}
