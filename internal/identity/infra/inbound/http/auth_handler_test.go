package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/davicafu/rosterlab/internal/identity/application"
	"github.com/davicafu/rosterlab/internal/identity/infra/auth"
	sharedHTTP "github.com/davicafu/rosterlab/internal/shared/infra/inbound/http"
	"github.com/davicafu/rosterlab/tests/mocks"
)

func setupRouter(t *testing.T) (*gin.Engine, *application.IdentityService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtManager := auth.NewJWTManager("test-secret", "rosterlab", time.Hour)
	svc := application.NewIdentityService(mocks.NewInMemoryUserRepo(), jwtManager, zap.NewNop()).
		WithHashCost(bcrypt.MinCost)

	r := gin.New()
	r.Use(sharedHTTP.Authenticate(jwtManager, zap.NewNop()))
	RegisterAuthRoutes(r, NewAuthHandler(svc, zap.NewNop()))
	return r, svc
}

func doJSON(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthFlow(t *testing.T) {
	r, _ := setupRouter(t)
	creds := map[string]string{"email": "nadio@example.com", "password": "Test!123"}

	w := doJSON(r, http.MethodPost, "/auth/register", creds, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password_hash")

	w = doJSON(r, http.MethodPost, "/auth/register", creds, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/login", map[string]string{"email": "nadio@example.com", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/login", creds, "")
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Data.Token)

	w = doJSON(r, http.MethodGet, "/auth/me", nil, login.Data.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "nadio@example.com")

	w = doJSON(r, http.MethodGet, "/", nil, login.Data.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_role":"User"`)
}

func TestMe_RequiresToken(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodGet, "/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/auth/me", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHome_Anonymous(t *testing.T) {
	r, svc := setupRouter(t)
	require.NoError(t, svc.EnsureRoles(context.Background()))

	w := doJSON(r, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_role":""`)
}
