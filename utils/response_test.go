package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/intranet/services"
)

func failWith(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/api/x", nil)
	Fail(ctx, err)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestFailMapsServiceErrors(t *testing.T) {
	w, body := failWith(t, fmt.Errorf("loading: %w", &services.NotFoundError{Entity: "Post", ID: 7}))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Post with id 7 not found", body.Detail)

	w, body = failWith(t, services.Invalid("limit", "must be between 1 and 1000"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "limit", body.Errors[0].Field)

	w, body = failWith(t, errors.New("connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", body.Detail)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "<p>Hello</p>", Sanitize(`<p onclick="x()">Hello</p><script>alert(1)</script>`))
	assert.Nil(t, SanitizePtr(nil))
	in := `<b>bold</b>`
	assert.Equal(t, "<b>bold</b>", *SanitizePtr(&in))
}

func TestGinzapAssignsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Ginzap(Logger, "2006-01-02", true), RecoveryWithZap(Logger, false))
	r.GET("/ok", func(ctx *gin.Context) { ctx.String(http.StatusOK, RequestID(ctx)) })
	r.GET("/boom", func(ctx *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
