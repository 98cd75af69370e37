package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Kilat-Home-Services/service-booking/internal/platform/auth"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(m *auth.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(m), RequireRole(auth.RoleCustomer), func(c *gin.Context) {
		id, _ := GetUserID(c)
		response.Success(c, id.String())
	})
	return r
}

func callMe(t *testing.T, r *gin.Engine, header string) (int, response.Envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env
}

func TestAuthMiddleware(t *testing.T) {
	m := auth.NewJWTManager("secret", "kilat-auth", time.Minute)
	r := newAuthRouter(m)
	userID := uuid.New()

	customer, err := m.GenerateAccessToken(userID, auth.RoleCustomer)
	require.NoError(t, err)
	worker, err := m.GenerateAccessToken(userID, auth.RoleWorker)
	require.NoError(t, err)

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID: userID,
		Role:   auth.RoleCustomer,
		Type:   "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "kilat-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"no header", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"garbage token", "Bearer abc", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong role", "Bearer " + worker, http.StatusForbidden, "FORBIDDEN"},
		{"customer", "Bearer " + customer, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := callMe(t, r, tt.header)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantCode == "" {
				assert.True(t, env.Success)
				assert.Equal(t, userID.String(), env.Data)
				return
			}
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}
