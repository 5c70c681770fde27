package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davicafu/rosterlab/internal/shared/domain/access"
	"github.com/davicafu/rosterlab/internal/shared/domain/outcome"
	sharedHTTP "github.com/davicafu/rosterlab/internal/shared/infra/inbound/http"
	"github.com/davicafu/rosterlab/internal/student/application"
	studentDomain "github.com/davicafu/rosterlab/internal/student/domain"
	"github.com/davicafu/rosterlab/pkg/utils"
)

const kind = access.KindStudent

// StudentHandler encapsula los endpoints HTTP de las fichas de estudiante.
type StudentHandler struct {
	service *application.StudentService
	log     *zap.Logger
}

func NewStudentHandler(service *application.StudentService, log *zap.Logger) *StudentHandler {
	return &StudentHandler{service: service, log: log}
}

// ---------------- Handlers ----------------

// ListStudents endpoint GET /students
func (h *StudentHandler) ListStudents(c *gin.Context) {
	policy := sharedHTTP.PolicyFrom(c)
	if !policy.CanList(kind) {
		sharedHTTP.Deny(c, policy)
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

// NewStudent endpoint GET /students/new
func (h *StudentHandler) NewStudent(c *gin.Context) {
	policy := sharedHTTP.PolicyFrom(c)
	if !policy.CanCreate(kind) {
		sharedHTTP.Deny(c, policy)
		return
	}

	res := h.service.Draft(c.Request.Context(), policy.Principal().Email)
	if res.IsOK() && res.Value.ExistingID != "" {
		c.Redirect(http.StatusSeeOther, "/students/"+res.Value.ExistingID)
		return
	}
	utils.SendOutcome(c, res, http.StatusOK, h.log)
}

// MyStudent endpoint GET /students/me
func (h *StudentHandler) MyStudent(c *gin.Context) {
	email := sharedHTTP.PolicyFrom(c).Principal().Email
	utils.SendOutcome(c, h.service.GetByEmail(c.Request.Context(), email), http.StatusOK, h.log)
}

// GetStudent endpoint GET /students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	policy := sharedHTTP.PolicyFrom(c)
	res := h.service.Get(c.Request.Context(), c.Param("id"))
	if res.IsOK() && !policy.CanView(kind, res.Value.Email) {
		sharedHTTP.Deny(c, policy)
		return
	}
	utils.SendOutcome(c, res, http.StatusOK, h.log)
}

// CreateStudent endpoint POST /students (multipart)
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	policy := sharedHTTP.PolicyFrom(c)
	if !policy.CanCreate(kind) {
		sharedHTTP.Deny(c, policy)
		return
	}

	var in studentDomain.StudentInput
	if err := c.ShouldBind(&in); err != nil {
		utils.SendBadRequest(c, "invalid form")
		return
	}
	photo, closeFn, ok := sharedHTTP.FormPhoto(c)
	if !ok {
		return
	}
	defer closeFn()

	res := h.service.Create(c.Request.Context(), policy.Principal(), in, photo)
	utils.SendOutcome(c, res, http.StatusCreated, h.log)
}

// UpdateStudent endpoint PUT /students/:id (multipart)
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	policy := sharedHTTP.PolicyFrom(c)
	id := c.Param("id")

	current := h.service.Get(c.Request.Context(), id)
	if !current.IsOK() {
		utils.SendOutcome(c, current, http.StatusOK, h.log)
		return
	}
	if !policy.CanEdit(kind, current.Value.Email) {
		sharedHTTP.Deny(c, policy)
		return
	}

	var in studentDomain.StudentInput
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

// DeleteStudent endpoint DELETE /students/:id
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	policy := sharedHTTP.PolicyFrom(c)
	if !policy.CanDelete(kind) {
		sharedHTTP.Deny(c, policy)
		return
	}

	res := h.service.Delete(c.Request.Context(), c.Param("id"))
	utils.SendOutcome(c, outcome.Outcome[struct{}]{Kind: res.Kind, Fields: res.Fields, Err: res.Err}, http.StatusNoContent, h.log)
}
