package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(h gin.HandlerFunc, header, value string) int {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", h, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestWebhookSecret(t *testing.T) {
	assert.Equal(t, http.StatusNoContent, serve(WebhookSecret(""), "", ""))
	assert.Equal(t, http.StatusNoContent, serve(WebhookSecret("s3cret"), SecretTokenHeader, "s3cret"))
	assert.Equal(t, http.StatusUnauthorized, serve(WebhookSecret("s3cret"), SecretTokenHeader, "nope"))
	assert.Equal(t, http.StatusUnauthorized, serve(WebhookSecret("s3cret"), "", ""))
}

func TestAdminAuth(t *testing.T) {
	assert.Equal(t, http.StatusNoContent, serve(AdminAuth("tok"), "Authorization", "Bearer tok"))
	assert.Equal(t, http.StatusNoContent, serve(AdminAuth("tok"), "Authorization", "bearer tok"))
	assert.Equal(t, http.StatusUnauthorized, serve(AdminAuth("tok"), "Authorization", "Bearer other"))
	assert.Equal(t, http.StatusUnauthorized, serve(AdminAuth("tok"), "Authorization", "Basic tok"))
	assert.Equal(t, http.StatusUnauthorized, serve(AdminAuth("tok"), "", ""))
	assert.Equal(t, http.StatusUnauthorized, serve(AdminAuth(""), "Authorization", "Bearer "))
}
