package dto

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-aggregator/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewErrorResponse(t *testing.T) {
	t.Parallel()

	resp := NewErrorResponse(ErrorCodeNotFound, "quote not found")

	assert.Equal(t, ErrorCodeNotFound, resp.Error.Code)
	assert.Equal(t, "quote not found", resp.Error.Message)
	assert.Nil(t, resp.Error.Details)
	assert.Empty(t, resp.TraceID)
}

func TestNewErrorResponseWithDetails(t *testing.T) {
	t.Parallel()

	details := map[string]string{"userEmail": "must be a valid email address"}
	resp := NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", details)

	assert.Equal(t, ErrorCodeValidation, resp.Error.Code)
	assert.Equal(t, details, resp.Error.Details)
}

func TestWithTraceID(t *testing.T) {
	t.Parallel()

	resp := NewErrorResponse(ErrorCodeInternal, "boom").WithTraceID("abc123")

	assert.Equal(t, "abc123", resp.TraceID)

	// TraceID should serialize at the top level
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"traceId":"abc123"`)
}

func TestHTTPStatusFromCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code   string
		status int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeConflict, http.StatusConflict},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeBadRequest, http.StatusBadRequest},
		{ErrorCodeForbidden, http.StatusForbidden},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeTimeout, http.StatusGatewayTimeout},
		{ErrorCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.status, HTTPStatusFromCode(tt.code))
		})
	}
}

func TestHandleError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        domain.NewNotFoundError("quote", "q-1"),
			wantStatus: http.StatusNotFound,
			wantCode:   ErrorCodeNotFound,
		},
		{
			name:       "conflict",
			err:        domain.NewConflictError("vote", "pair already in ledger"),
			wantStatus: http.StatusConflict,
			wantCode:   ErrorCodeConflict,
		},
		{
			name:       "validation",
			err:        domain.NewValidationError("source", "unknown quote source nope"),
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrorCodeValidation,
		},
		{
			name:       "unavailable",
			err:        domain.NewUnavailableError("character-quote-api", "HTTP 502"),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   ErrorCodeUnavailable,
		},
		{
			name:       "unknown error hides message",
			err:        errors.New("secret database detail"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrorCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

			HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)

			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, resp.Error.Message, "secret")
			}
		})
	}
}

func TestHandleError_ValidationDetails(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	HandleError(c, domain.NewValidationError("limit", "must be an integer"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "must be an integer", resp.Error.Details["limit"])
}

func TestGetTraceID_NoSpan(t *testing.T) {
	t.Parallel()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	assert.Empty(t, GetTraceID(c))
}

type voteBody struct {
	UserEmail string `json:"userEmail" validate:"required,email"`
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid struct", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, Validate(&voteBody{UserEmail: "homer@example.com"}))
	})

	t.Run("missing required field", func(t *testing.T) {
		t.Parallel()

		err := Validate(&voteBody{})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
		assert.True(t, IsValidationError(err))
	})

	t.Run("invalid email", func(t *testing.T) {
		t.Parallel()

		err := Validate(&voteBody{UserEmail: "not-an-email"})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})
}

func TestBindAndValidate(t *testing.T) {
	t.Parallel()

	newContext := func(body string) (*gin.Context, *httptest.ResponseRecorder) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		return c, w
	}

	t.Run("valid body", func(t *testing.T) {
		t.Parallel()

		c, _ := newContext(`{"userEmail":"marge@example.com"}`)

		var req voteBody
		require.NoError(t, BindAndValidate(c, &req))
		assert.Equal(t, "marge@example.com", req.UserEmail)
	})

	t.Run("malformed JSON is a binding error", func(t *testing.T) {
		t.Parallel()

		c, _ := newContext(`{"userEmail":`)

		var req voteBody
		err := BindAndValidate(c, &req)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrBinding)
		assert.False(t, IsValidationError(err))
	})

	t.Run("invalid field is a validation error", func(t *testing.T) {
		t.Parallel()

		c, _ := newContext(`{"userEmail":"nope"}`)

		var req voteBody
		err := BindAndValidate(c, &req)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestValidationErrors(t *testing.T) {
	t.Parallel()

	t.Run("uses json tag names and friendly messages", func(t *testing.T) {
		t.Parallel()

		err := Validate(&voteBody{UserEmail: "nope"})
		require.Error(t, err)

		fields := ValidationErrors(err)
		assert.Equal(t, "must be a valid email address", fields["userEmail"])
	})

	t.Run("empty map for non-validation errors", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, ValidationErrors(errors.New("plain error")))
	})
}

type guardedBody struct {
	UserEmail string `json:"userEmail" validate:"required,email"`
}

func (g *guardedBody) Validate() error {
	if strings.HasSuffix(g.UserEmail, "@blocked.example.com") {
		return errors.New("domain is blocked")
	}

	return nil
}

func TestValidateAll(t *testing.T) {
	t.Parallel()

	t.Run("tags only", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, ValidateAll(&voteBody{UserEmail: "lisa@example.com"}))
		assert.Error(t, ValidateAll(&voteBody{}))
	})

	t.Run("custom Validate runs after tags", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, ValidateAll(&guardedBody{UserEmail: "ok@example.com"}))

		err := ValidateAll(&guardedBody{UserEmail: "bad@blocked.example.com"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
	})
}
