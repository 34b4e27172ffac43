package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestGinContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Response body should be valid JSON: %s", w.Body.String())
	return resp
}

// ============================================================================
// Request validation tests. The handler rejects these before touching the
// service, so a zero-value handler is enough.
// ============================================================================

func validRegisterBody() map[string]interface{} {
	return map[string]interface{}{
		"first_names":         "Laura",
		"first_surname":       "Gomez",
		"identification_type": "CC",
		"identification":      "1020304050",
		"email":               "laura@example.com",
		"phone":               "3001234567",
		"password":            "secret-password",
	}
}

func TestRegister_ValidationErrors(t *testing.T) {
	handler := &AuthHandler{}

	tests := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"empty body", nil},
		{"missing email", func(b map[string]interface{}) { delete(b, "email") }},
		{"invalid email", func(b map[string]interface{}) { b["email"] = "not-an-email" }},
		{"short password", func(b map[string]interface{}) { b["password"] = "1234567" }},
		{"unknown identification type", func(b map[string]interface{}) { b["identification_type"] = "XX" }},
		{"short identification", func(b map[string]interface{}) { b["identification"] = "123" }},
		{"missing phone", func(b map[string]interface{}) { delete(b, "phone") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body interface{}
			if tt.mutate != nil {
				m := validRegisterBody()
				tt.mutate(m)
				body = m
			}

			c, w := newTestGinContext(http.MethodPost, "/api/v1/auth/register", body)
			handler.Register(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := parseJSONResponse(t, w)
			assert.Contains(t, resp["error"], "Invalid request data")
		})
	}
}

func TestActivate_ValidationErrors(t *testing.T) {
	handler := &AuthHandler{}

	tests := []struct {
		name string
		body interface{}
	}{
		{"empty body", nil},
		{"missing code", map[string]string{"email": "laura@example.com"}},
		{"short code", map[string]string{"email": "laura@example.com", "code": "123"}},
		{"non numeric code", map[string]string{"email": "laura@example.com", "code": "12a456"}},
		{"missing email", map[string]string{"code": "123456"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext(http.MethodPost, "/api/v1/auth/activate", tt.body)
			handler.Activate(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLogin_ValidationErrors(t *testing.T) {
	handler := &AuthHandler{}

	tests := []struct {
		name string
		body interface{}
	}{
		{"empty body", nil},
		{"missing password", map[string]string{"identification": "1020304050"}},
		{"missing identification", map[string]string{"password": "secret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext(http.MethodPost, "/api/v1/auth/login", tt.body)
			handler.Login(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
