package middleware

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "kopilka/internal/errors"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"app_error", apperrors.WithMessage(apperrors.ErrCategoryNotFound, "Category 'x' not found"), http.StatusNotFound, "CATEGORY_NOT_FOUND"},
		{"wrapped_app_error", apperrors.Wrap(apperrors.ErrInternalServer, errors.New("db down")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"plain_error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(ErrorHandler())
			r.GET("/test", func(c *gin.Context) {
				_ = c.Error(tt.err)
			})
			rec := doRequest(r, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			assertErrorCode(t, rec, tt.wantCode)
		})
	}
}

func TestRequestLogging(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString(requestIDKey)})
	})

	rec := doRequest(r, nil)
	generated := rec.Header().Get("X-Request-ID")
	if generated == "" {
		t.Fatal("expected a generated request id")
	}
	if id, err := uuid.Parse(generated); err != nil || id.Version() != 7 {
		t.Errorf("expected a UUIDv7 request id, got %s", generated)
	}
	if body := parseBody(t, rec); body["request_id"] != generated {
		t.Errorf("context id %v does not match header %s", body["request_id"], generated)
	}

	const incoming = "0b8f3f5e-6f1e-4a8e-9c61-1f0b6c1c2d3e"
	rec = doRequest(r, map[string]string{"X-Request-ID": incoming})
	if got := rec.Header().Get("X-Request-ID"); got != incoming {
		t.Errorf("expected incoming id kept, got %s", got)
	}

	rec = doRequest(r, map[string]string{"X-Request-ID": "not-a-uuid"})
	if got := rec.Header().Get("X-Request-ID"); got == "not-a-uuid" {
		t.Error("expected malformed id replaced")
	}
}
