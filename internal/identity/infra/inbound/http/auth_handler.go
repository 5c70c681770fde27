package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davicafu/rosterlab/internal/identity/application"
	"github.com/davicafu/rosterlab/internal/identity/domain"
	sharedHTTP "github.com/davicafu/rosterlab/internal/shared/infra/inbound/http"
	"github.com/davicafu/rosterlab/pkg/utils"
)

// AuthHandler expone registro, login y la identidad actual.
type AuthHandler struct {
	service *application.IdentityService
	log     *zap.Logger
}

func NewAuthHandler(service *application.IdentityService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{service: service, log: log}
}

// Register endpoint POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req application.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, "invalid request body")
		return
	}
	utils.SendOutcome(c, h.service.Register(c.Request.Context(), req), http.StatusCreated, h.log)
}

// Login endpoint POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, "email and password are required")
		return
	}

	sess, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			utils.SendUnauthorized(c, "invalid email or password")
			return
		}
		h.log.Error("login failed", zap.Error(err))
		utils.SendInternalServerError(c, "internal error")
		return
	}
	utils.SendSuccess(c, http.StatusOK, sess)
}

// Me endpoint GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	utils.SendSuccess(c, http.StatusOK, sharedHTTP.PolicyFrom(c).Principal())
}

// Home endpoint GET /
func (h *AuthHandler) Home(c *gin.Context) {
	p := sharedHTTP.PolicyFrom(c).Principal()
	utils.SendSuccess(c, http.StatusOK, gin.H{
		"user_id":   p.UserID,
		"user_name": p.Email,
		"user_role": p.PrimaryRole(),
	})
}
