package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/rosterlab/internal/shared/domain/access"
	"github.com/davicafu/rosterlab/internal/shared/domain/listing"
	sharedHTTP "github.com/davicafu/rosterlab/internal/shared/infra/inbound/http"
	"github.com/davicafu/rosterlab/internal/shared/infra/platform/storage"
	"github.com/davicafu/rosterlab/internal/student/application"
	studentDomain "github.com/davicafu/rosterlab/internal/student/domain"
	"github.com/davicafu/rosterlab/tests/mocks"
)

var (
	admin    = access.NewAdminPolicy(access.Principal{Email: "admin@gmail.com", Roles: []access.Role{access.RoleAdmin}})
	newUser  = access.NewOwnerPolicy(access.Principal{Email: "alex@example.com", Roles: []access.Role{access.RoleUser}})
	owner    = access.NewOwnerPolicy(access.Principal{Email: "alex@example.com", Roles: []access.Role{access.RoleStudent}})
	stranger = access.NewOwnerPolicy(access.Principal{Email: "other@example.com", Roles: []access.Role{access.RoleStudent}})
)

func setup(t *testing.T) *mocks.InMemoryStudentRepo {
	t.Helper()
	repo := mocks.NewInMemoryStudentRepo()
	for _, s := range []*studentDomain.Student{
		{StudentNumber: "2021000001", FirstName: "Alexander", Surname: "May", Email: "alex@example.com", EnrollmentDate: time.Date(2021, 2, 3, 0, 0, 0, 0, time.UTC), Photo: "DefaultPic.png"},
		{StudentNumber: "2012000002", FirstName: "Meredith", Surname: "Alonso", Email: "DefaultEmail@gmail.com", EnrollmentDate: time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC), Photo: "DefaultPic.png"},
		{StudentNumber: "2021000003", FirstName: "Arturo", Surname: "Anand", Email: "DefaultEmail@gmail.com", EnrollmentDate: time.Date(2021, 2, 4, 0, 0, 0, 0, time.UTC), Photo: "DefaultPic.png"},
	} {
		repo.Students[s.StudentNumber] = s
	}
	return repo
}

func router(t *testing.T, repo *mocks.InMemoryStudentRepo, policy access.AccessPolicy) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	photos, err := storage.NewPhotoStore(afero.NewMemMapFs(), "/uploads", zap.NewNop())
	require.NoError(t, err)
	svc := application.NewStudentService(repo, nil, photos, &mocks.RoleAssignerStub{}, listing.NewEngine[*studentDomain.Student](2), zap.NewNop())

	r := gin.New()
	r.Use(sharedHTTP.WithPolicy(policy))
	RegisterStudentRoutes(r, NewStudentHandler(svc, zap.NewNop()))
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func multipartBody(t *testing.T, fields map[string]string, photoName string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if photoName != "" {
		fw, err := mw.CreateFormFile("photo", photoName)
		require.NoError(t, err)
		_, _ = fw.Write([]byte("fake image"))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestListStudents(t *testing.T) {
	repo := setup(t)

	t.Run("admin gets first page", func(t *testing.T) {
		w := serve(router(t, repo, admin), httptest.NewRequest(http.MethodGet, "/students?sort=date_desc", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data struct {
				Items       []studentDomain.Student `json:"items"`
				TotalPages  int                     `json:"total_pages"`
				CurrentSort string                  `json:"current_sort"`
				Links       sharedHTTP.PageLinks    `json:"links"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Data.Items, 2)
		assert.Equal(t, "2021000003", body.Data.Items[0].StudentNumber)
		assert.Equal(t, 2, body.Data.TotalPages)
		assert.Equal(t, "date_desc", body.Data.CurrentSort)
		assert.Equal(t, "?sort=date_desc&page=2", body.Data.Links.Next)
	})

	t.Run("owner is forbidden", func(t *testing.T) {
		w := serve(router(t, repo, owner), httptest.NewRequest(http.MethodGet, "/students", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		w := serve(router(t, repo, access.PublicPolicy{}), httptest.NewRequest(http.MethodGet, "/students", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetStudent(t *testing.T) {
	repo := setup(t)

	w := serve(router(t, repo, owner), httptest.NewRequest(http.MethodGet, "/students/2021000001", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router(t, repo, stranger), httptest.NewRequest(http.MethodGet, "/students/2021000001", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(router(t, repo, admin), httptest.NewRequest(http.MethodGet, "/students/2021000001", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router(t, repo, admin), httptest.NewRequest(http.MethodGet, "/students/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(router(t, repo, owner), httptest.NewRequest(http.MethodGet, "/students/me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2021000001")
}

func TestNewStudent(t *testing.T) {
	repo := setup(t)

	// Una cuenta con ficha es redirigida a su ficha.
	w := serve(router(t, repo, access.NewOwnerPolicy(access.Principal{Email: "alex@example.com", Roles: []access.Role{access.RoleUser}})),
		httptest.NewRequest(http.MethodGet, "/students/new", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/students/2021000001", w.Header().Get("Location"))

	fresh := access.NewOwnerPolicy(access.Principal{Email: "fresh@example.com", Roles: []access.Role{access.RoleUser}})
	w = serve(router(t, repo, fresh), httptest.NewRequest(http.MethodGet, "/students/new", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fresh@example.com")

	w = serve(router(t, repo, admin), httptest.NewRequest(http.MethodGet, "/students/new", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateStudent(t *testing.T) {
	repo := mocks.NewInMemoryStudentRepo()
	r := router(t, repo, newUser)

	body, ct := multipartBody(t, map[string]string{"student_number": "2021000001", "first_name": "Alexander", "surname": "May"}, "me.jpg")
	req := httptest.NewRequest(http.MethodPost, "/students", body)
	req.Header.Set("Content-Type", ct)
	w := serve(r, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"token":"token-Student"`)
	require.Contains(t, repo.Students, "2021000001")
	assert.Regexp(t, `\.jpg$`, repo.Students["2021000001"].Photo)

	body, ct = multipartBody(t, map[string]string{"student_number": "1", "first_name": "A", "surname": "M"}, "")
	req = httptest.NewRequest(http.MethodPost, "/students", body)
	req.Header.Set("Content-Type", ct)
	w = serve(router(t, mocks.NewInMemoryStudentRepo(), newUser), req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "student_number")

	// Quien ya es Student no puede registrar otra ficha de estudiante.
	body, ct = multipartBody(t, map[string]string{"student_number": "2021000009", "first_name": "Alex", "surname": "May"}, "")
	req = httptest.NewRequest(http.MethodPost, "/students", body)
	req.Header.Set("Content-Type", ct)
	w = serve(router(t, repo, owner), req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateStudent(t *testing.T) {
	repo := setup(t)

	body, ct := multipartBody(t, map[string]string{"first_name": "Alex", "surname": "Mayer"}, "")
	req := httptest.NewRequest(http.MethodPut, "/students/2021000001", body)
	req.Header.Set("Content-Type", ct)
	w := serve(router(t, repo, owner), req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Mayer", repo.Students["2021000001"].Surname)

	body, ct = multipartBody(t, map[string]string{"first_name": "Hacker", "surname": "Man"}, "")
	req = httptest.NewRequest(http.MethodPut, "/students/2021000001", body)
	req.Header.Set("Content-Type", ct)
	w = serve(router(t, repo, stranger), req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	body, ct = multipartBody(t, map[string]string{"first_name": "Alex", "surname": "Mayer"}, "")
	req = httptest.NewRequest(http.MethodPut, "/students/2021000001", body)
	req.Header.Set("Content-Type", ct)
	w = serve(router(t, repo, admin), req)
	assert.Equal(t, http.StatusForbidden, w.Code, "admin no edita fichas ajenas")
}

func TestDeleteStudent(t *testing.T) {
	repo := setup(t)

	w := serve(router(t, repo, owner), httptest.NewRequest(http.MethodDelete, "/students/2021000001", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(router(t, repo, admin), httptest.NewRequest(http.MethodDelete, "/students/2021000001", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotContains(t, repo.Students, "2021000001")

	w = serve(router(t, repo, admin), httptest.NewRequest(http.MethodDelete, "/students/2021000001", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
