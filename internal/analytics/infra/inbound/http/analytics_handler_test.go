package http

import (
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

	"github.com/davicafu/rosterlab/internal/analytics/application"
	analyticsDomain "github.com/davicafu/rosterlab/internal/analytics/domain"
	"github.com/davicafu/rosterlab/internal/analytics/infra/outbound/memory"
	"github.com/davicafu/rosterlab/internal/shared/domain/access"
	sharedHTTP "github.com/davicafu/rosterlab/internal/shared/infra/inbound/http"
)

func newRouter(t *testing.T, policy access.AccessPolicy) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := memory.NewRegistrationRepo()
	require.NoError(t, repo.LogBatch(context.Background(), []analyticsDomain.RegistrationEntry{
		{EventID: "1", Kind: "student", RecordID: "1", Action: analyticsDomain.ActionCreated, OccurredAt: time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)},
		{EventID: "2", Kind: "student", RecordID: "2", Action: analyticsDomain.ActionCreated, OccurredAt: time.Date(2024, 2, 1, 1, 0, 0, 0, time.UTC)},
	}))

	r := gin.New()
	r.Use(sharedHTTP.WithPolicy(policy))
	RegisterAnalyticsRoutes(r, NewAnalyticsHandler(application.NewAnalyticsService(repo, zap.NewNop()), zap.NewNop()))
	return r
}

func get(r http.Handler, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestRegistrationTrend(t *testing.T) {
	admin := access.Resolve(access.Principal{Email: "admin@gmail.com", Roles: []access.Role{access.RoleAdmin}})

	w := get(newRouter(t, admin), "/admin/analytics/registrations?from=2024-01-01&to=2024-01-31")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data []analyticsDomain.DailyTrend `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1, "to incluye el día entero y excluye el siguiente")
	assert.Equal(t, uint64(1), body.Data[0].Created)

	tests := []struct {
		name   string
		policy access.AccessPolicy
		url    string
		want   int
	}{
		{"bad date", admin, "/admin/analytics/registrations?from=01/02/2024", http.StatusBadRequest},
		{"inverted range", admin, "/admin/analytics/registrations?from=2024-02-02&to=2024-01-01", http.StatusUnprocessableEntity},
		{"owner", access.Resolve(access.Principal{Email: "a@b.com", Roles: []access.Role{access.RoleStudent}}), "/admin/analytics/registrations", http.StatusForbidden},
		{"anonymous", access.PublicPolicy{}, "/admin/analytics/registrations", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, get(newRouter(t, tc.policy), tc.url).Code)
		})
	}
}
