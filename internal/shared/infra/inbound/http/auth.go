package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davicafu/rosterlab/internal/shared/domain/access"
	"github.com/davicafu/rosterlab/pkg/utils"
)

const policyKey = "access_policy"

// TokenParser valida un token y devuelve la identidad que transporta.
type TokenParser interface {
	ParsePrincipal(token string) (access.Principal, error)
}

// Authenticate resuelve la AccessPolicy de la petición una sola vez.
// Sin token la política es pública; un token inválido es 401.
func Authenticate(parser TokenParser, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			c.Set(policyKey, access.AccessPolicy(access.PublicPolicy{}))
			c.Next()
			return
		}

		principal, err := parser.ParsePrincipal(token)
		if err != nil {
			log.Debug("invalid bearer token", zap.Error(err))
			utils.SendUnauthorized(c, "invalid token")
			c.Abort()
			return
		}

		c.Set(policyKey, access.Resolve(principal))
		c.Next()
	}
}

// PolicyFrom devuelve la política resuelta por Authenticate (pública si no hay).
func PolicyFrom(c *gin.Context) access.AccessPolicy {
	if v, ok := c.Get(policyKey); ok {
		if p, ok := v.(access.AccessPolicy); ok {
			return p
		}
	}
	return access.PublicPolicy{}
}

// WithPolicy fija la política en el contexto; útil en tests de handlers.
func WithPolicy(p access.AccessPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(policyKey, p)
		c.Next()
	}
}

// RequireAuth corta con 401 las peticiones anónimas.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !PolicyFrom(c).Principal().Authenticated() {
			utils.SendUnauthorized(c, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin deja pasar sólo a quien puede administrar.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		policy := PolicyFrom(c)
		if !policy.Principal().Authenticated() {
			utils.SendUnauthorized(c, "authentication required")
			c.Abort()
			return
		}
		if !policy.CanAdminister() {
			utils.SendForbidden(c, "admin only")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Deny responde 401 a anónimos y 403 al resto.
func Deny(c *gin.Context, policy access.AccessPolicy) {
	if !policy.Principal().Authenticated() {
		utils.SendUnauthorized(c, "authentication required")
		return
	}
	utils.SendForbidden(c, "access denied")
}

func extractBearer(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
