package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/davicafu/rosterlab/internal/seed/application"
	"github.com/davicafu/rosterlab/internal/shared/domain/access"
	sharedHTTP "github.com/davicafu/rosterlab/internal/shared/infra/inbound/http"
)

type runnerFunc func(ctx context.Context) (application.Report, error)

func (f runnerFunc) Run(ctx context.Context) (application.Report, error) { return f(ctx) }

func TestSeedHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	admin := access.Resolve(access.Principal{Email: "admin@gmail.com", Roles: []access.Role{access.RoleAdmin}})
	user := access.Resolve(access.Principal{Email: "u@example.com", Roles: []access.Role{access.RoleUser}})

	ok := runnerFunc(func(context.Context) (application.Report, error) {
		return application.Report{Students: 3, Consumers: 2, Skipped: []string{"consumer:90909 (Misper)"}}, nil
	})
	broken := runnerFunc(func(context.Context) (application.Report, error) {
		return application.Report{}, errors.New("boom")
	})

	tests := []struct {
		name   string
		policy access.AccessPolicy
		runner Runner
		want   int
	}{
		{"admin", admin, ok, http.StatusOK},
		{"failure", admin, broken, http.StatusInternalServerError},
		{"user", user, ok, http.StatusForbidden},
		{"anonymous", access.PublicPolicy{}, ok, http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(sharedHTTP.WithPolicy(tc.policy))
			RegisterSeedRoutes(r, NewSeedHandler(tc.runner, zap.NewNop()))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/seed", nil))
			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"students_inserted":3`)
			}
		})
	}
}
