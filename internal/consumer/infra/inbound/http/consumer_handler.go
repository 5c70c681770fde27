package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davicafu/rosterlab/internal/consumer/application"
	consumerDomain "github.com/davicafu/rosterlab/internal/consumer/domain"
	"github.com/davicafu/rosterlab/internal/shared/domain/access"
	"github.com/davicafu/rosterlab/internal/shared/domain/outcome"
	sharedHTTP "github.com/davicafu/rosterlab/internal/shared/infra/inbound/http"
	"github.com/davicafu/rosterlab/pkg/utils"
)

const kind = access.KindConsumer

// ConsumerHandler encapsula los endpoints HTTP de las fichas de cliente.
type ConsumerHandler struct {
	service *application.ConsumerService
	log     *zap.Logger
}

func NewConsumerHandler(service *application.ConsumerService, log *zap.Logger) *ConsumerHandler {
	return &ConsumerHandler{service: service, log: log}
}

// allowed responde 401/403 si check es falso.
func allowed(c *gin.Context, check func(access.AccessPolicy) bool) (access.AccessPolicy, bool) {
	policy := sharedHTTP.PolicyFrom(c)
	if !check(policy) {
		sharedHTTP.Deny(c, policy)
		return policy, false
	}
	return policy, true
}

// ListConsumers endpoint GET /consumers
func (h *ConsumerHandler) ListConsumers(c *gin.Context) {
	if _, ok := allowed(c, func(p access.AccessPolicy) bool { return p.CanList(kind) }); !ok {
		return
	}

	params := sharedHTTP.ParseListParams(c)
	res := h.service.List(c.Request.Context(), params.Request)
	if !res.IsOK() {
		utils.SendOutcome(c, res, http.StatusOK, h.log)
		return
	}
	utils.SendSuccess(c, http.StatusOK, sharedHTTP.NewListResponse(res.Value, params))
}

// NewConsumer endpoint GET /consumers/new
func (h *ConsumerHandler) NewConsumer(c *gin.Context) {
	policy, ok := allowed(c, func(p access.AccessPolicy) bool { return p.CanCreate(kind) })
	if !ok {
		return
	}

	res := h.service.Draft(c.Request.Context(), policy.Principal().Email)
	if res.IsOK() && res.Value.ExistingID != "" {
		c.Redirect(http.StatusSeeOther, "/consumers/"+res.Value.ExistingID)
		return
	}
	utils.SendOutcome(c, res, http.StatusOK, h.log)
}

// MyConsumer endpoint GET /consumers/me
func (h *ConsumerHandler) MyConsumer(c *gin.Context) {
	email := sharedHTTP.PolicyFrom(c).Principal().Email
	utils.SendOutcome(c, h.service.GetByEmail(c.Request.Context(), email), http.StatusOK, h.log)
}

// GetConsumer endpoint GET /consumers/:id
func (h *ConsumerHandler) GetConsumer(c *gin.Context) {
	res := h.service.Get(c.Request.Context(), c.Param("id"))
	if res.IsOK() {
		email := res.Value.Email
		if _, ok := allowed(c, func(p access.AccessPolicy) bool { return p.CanView(kind, email) }); !ok {
			return
		}
	}
	utils.SendOutcome(c, res, http.StatusOK, h.log)
}

// CreateConsumer endpoint POST /consumers (multipart)
func (h *ConsumerHandler) CreateConsumer(c *gin.Context) {
	policy, ok := allowed(c, func(p access.AccessPolicy) bool { return p.CanCreate(kind) })
	if !ok {
		return
	}

	var in consumerDomain.ConsumerInput
	if err := c.ShouldBind(&in); err != nil {
		utils.SendBadRequest(c, "invalid form")
		return
	}
	photo, closeFn, ok := sharedHTTP.FormPhoto(c)
	if !ok {
		return
	}
	defer closeFn()

	utils.SendOutcome(c, h.service.Create(c.Request.Context(), policy.Principal(), in, photo), http.StatusCreated, h.log)
}

// UpdateConsumer endpoint PUT /consumers/:id (multipart)
func (h *ConsumerHandler) UpdateConsumer(c *gin.Context) {
	id := c.Param("id")
	current := h.service.Get(c.Request.Context(), id)
	if !current.IsOK() {
		utils.SendOutcome(c, current, http.StatusOK, h.log)
		return
	}
	email := current.Value.Email
	if _, ok := allowed(c, func(p access.AccessPolicy) bool { return p.CanEdit(kind, email) }); !ok {
		return
	}

	var in consumerDomain.ConsumerInput
	if err := c.ShouldBind(&in); err != nil {
		utils.SendBadRequest(c, "invalid form")
		return
	}
	photo, closeFn, ok := sharedHTTP.FormPhoto(c)
	if !ok {
		return
	}
	defer closeFn()

	utils.SendOutcome(c, h.service.Update(c.Request.Context(), id, in, photo), http.StatusOK, h.log)
}

// DeleteConsumer endpoint DELETE /consumers/:id
func (h *ConsumerHandler) DeleteConsumer(c *gin.Context) {
	if _, ok := allowed(c, func(p access.AccessPolicy) bool { return p.CanDelete(kind) }); !ok {
		return
	}

	res := h.service.Delete(c.Request.Context(), c.Param("id"))
	utils.SendOutcome(c, outcome.Outcome[struct{}]{Kind: res.Kind, Fields: res.Fields, Err: res.Err}, http.StatusNoContent, h.log)
}
