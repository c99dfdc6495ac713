package errors_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apierrors "github.com/felix-ong/volunteer-board/internal/app/features/errors"
	"github.com/felix-ong/volunteer-board/internal/app/system/apperr"
	"github.com/felix-ong/volunteer-board/internal/app/system/limits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		name   string
	}{
		{apperr.ValidationFailed("title", "title is required"), http.StatusBadRequest, "validation_error"},
		{apperr.Unauthorized("no"), http.StatusUnauthorized, "unauthorized"},
		{apperr.Forbidden("no"), http.StatusForbidden, "forbidden"},
		{apperr.NotFound("job", "x"), http.StatusNotFound, "not_found"},
		{apperr.Conflict("again"), http.StatusConflict, "conflict"},
		{apperr.RateLimited("slow down"), http.StatusTooManyRequests, "rate_limited"},
		{fmt.Errorf("wrapped: %w", apperr.Conflict("again")), http.StatusConflict, "conflict"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range tests {
		status, name := apierrors.Status(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.name, name, tc.err.Error())
	}
}

func TestWrite_ClientError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", nil)

	apierrors.Write(rec, req, zap.NewNop(), apperr.ValidationFailed("hours", "hours must be a positive number"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"validation_error","message":"hours must be a positive number","field":"hours"}`, rec.Body.String())
}

func TestWrite_InternalErrorIsLoggedNotLeaked(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)

	apierrors.Write(rec, req, zap.New(core), fmt.Errorf("mongo: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "mongo")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "/api/jobs", logs.All()[0].ContextMap()["path"])
}

func TestDecode(t *testing.T) {
	var v struct {
		Feedback string `json:"feedback"`
	}

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"feedback":"add dates"}`))
	require.NoError(t, apierrors.Decode(httptest.NewRecorder(), req, &v))
	assert.Equal(t, "add dates", v.Feedback)

	req = httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"feedback":`))
	err := apierrors.Decode(httptest.NewRecorder(), req, &v)
	require.Error(t, err)
	assert.Equal(t, "body", apperr.Field(err))

	req = httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(``))
	assert.NoError(t, apierrors.Decode(httptest.NewRecorder(), req, &v))
}

func TestDecode_Oversized(t *testing.T) {
	var v struct {
		Feedback string `json:"feedback"`
	}
	body := `{"feedback":"` + strings.Repeat("x", limits.MaxJSONBody) + `"}`

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(body))
	err := apierrors.Decode(httptest.NewRecorder(), req, &v)
	require.Error(t, err)
	assert.Equal(t, "body", apperr.Field(err))
}
