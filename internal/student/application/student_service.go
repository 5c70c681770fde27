package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/rosterlab/internal/shared/domain"
	"github.com/davicafu/rosterlab/internal/shared/domain/access"
	sharedEvents "github.com/davicafu/rosterlab/internal/shared/domain/events"
	"github.com/davicafu/rosterlab/internal/shared/domain/listing"
	"github.com/davicafu/rosterlab/internal/shared/domain/outcome"
	"github.com/davicafu/rosterlab/internal/shared/domain/validation"
	sharedCache "github.com/davicafu/rosterlab/internal/shared/infra/platform/cache"
	sharedUtils "github.com/davicafu/rosterlab/internal/shared/infra/utils"
	studentDomain "github.com/davicafu/rosterlab/internal/student/domain"
)

const defaultCacheTTL = 120

// Registration es el resultado de dar de alta una ficha: la ficha y, si la
// promoción de rol funcionó, el token con el rol nuevo.
type Registration struct {
	Student *studentDomain.Student `json:"student"`
	Token   string                 `json:"token,omitempty"`
}

// Draft es el formulario de alta ya relleno, o el id de la ficha que la
// cuenta ya tiene.
type Draft struct {
	Student    *studentDomain.Student `json:"student,omitempty"`
	ExistingID string                 `json:"existing_id,omitempty"`
}

// StudentService define los casos de uso de las fichas de estudiante.
type StudentService struct {
	repo      studentDomain.StudentRepository
	cache     sharedCache.Cache
	photos    sharedDomain.PhotoStorage
	roles     studentDomain.RoleAssigner
	engine    listing.Engine[*studentDomain.Student]
	validator *validation.Validator
	cacheTTL  int
	now       func() time.Time
	log       *zap.Logger
}

func NewStudentService(
	repo studentDomain.StudentRepository,
	cache sharedCache.Cache,
	photos sharedDomain.PhotoStorage,
	roles studentDomain.RoleAssigner,
	engine listing.Engine[*studentDomain.Student],
	log *zap.Logger,
) *StudentService {
	return &StudentService{
		repo:      repo,
		cache:     cache,
		photos:    photos,
		roles:     roles,
		engine:    engine,
		validator: validation.New(),
		cacheTTL:  defaultCacheTTL,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
	}
}

// WithCacheTTL fija el TTL en segundos; <= 0 deja el valor por defecto.
func (s *StudentService) WithCacheTTL(secs int) *StudentService {
	s.cacheTTL = sharedUtils.Ternary(secs > 0, secs, defaultCacheTTL)
	return s
}

// Draft prepara el alta para la cuenta email.
func (s *StudentService) Draft(ctx context.Context, email string) outcome.Outcome[Draft] {
	existing, err := s.findByOwner(ctx, email)
	if err != nil {
		return outcome.Failed[Draft](err)
	}
	if existing != nil {
		return outcome.OK(Draft{ExistingID: existing.StudentNumber})
	}
	return outcome.OK(Draft{Student: &studentDomain.Student{
		Email:          normalize(email),
		EnrollmentDate: s.now(),
		Photo:          sharedDomain.DefaultPhoto,
	}})
}

// Create da de alta la ficha de owner y le cambia el rol a Student.
func (s *StudentService) Create(ctx context.Context, owner access.Principal, in studentDomain.StudentInput, photo *sharedDomain.Upload) outcome.Outcome[Registration] {
	in.StudentNumber = strings.TrimSpace(in.StudentNumber)
	if fields := s.validator.Struct(in); fields != nil {
		return outcome.Invalid[Registration](fields)
	}

	existing, err := s.findByOwner(ctx, owner.Email)
	if err != nil {
		return outcome.Failed[Registration](err)
	}
	if existing != nil {
		return outcome.Invalid[Registration](outcome.FieldErrors{"email": "already has a student record"})
	}

	taken, err := s.repo.Exists(ctx, in.StudentNumber)
	if err != nil {
		return outcome.Failed[Registration](err)
	}
	if taken {
		return outcome.Invalid[Registration](outcome.FieldErrors{"student_number": "is already taken"})
	}

	photoName, res := s.savePhoto(ctx, photo)
	if res != nil {
		return outcome.Outcome[Registration]{Kind: res.Kind, Fields: res.Fields, Err: res.Err}
	}

	now := s.now()
	student := &studentDomain.Student{
		StudentNumber:  in.StudentNumber,
		Email:          normalize(owner.Email),
		EnrollmentDate: now,
		Photo:          sharedUtils.Ternary(photoName != "", photoName, sharedDomain.DefaultPhoto),
	}
	student.Apply(in)

	evt := sharedDomain.NewOutboxEvent(studentDomain.StudentAggregate, student.StudentNumber, studentDomain.StudentCreated, student.Changed(now))
	if err := s.repo.Create(ctx, student, evt); err != nil {
		s.discardPhoto(ctx, photoName)
		if errors.Is(err, studentDomain.ErrStudentAlreadyExists) {
			return outcome.Invalid[Registration](outcome.FieldErrors{"student_number": "is already taken"})
		}
		s.log.Error("Failed to create student", zap.String("student_number", student.StudentNumber), zap.Error(err))
		return outcome.Failed[Registration](err)
	}

	sharedCache.SetNow(ctx, s.cache, studentDomain.StudentCacheKeyByID(student.StudentNumber), student, s.cacheTTL, s.log)

	token, err := s.roles.Promote(ctx, student.Email, access.KindStudent.RoleFor())
	if err != nil {
		// La ficha ya existe; el usuario puede volver a iniciar sesión.
		s.log.Warn("Role promotion failed", zap.String("email", student.Email), zap.Error(err))
	}

	return outcome.OK(Registration{Student: student, Token: token})
}

// Get obtiene una ficha usando cache-aside con reintentos.
func (s *StudentService) Get(ctx context.Context, id string) outcome.Outcome[*studentDomain.Student] {
	key := studentDomain.StudentCacheKeyByID(id)
	if s.cache != nil {
		var cached studentDomain.Student
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return outcome.OK(&cached)
		}
	}

	student, res := s.load(ctx, id)
	if res != nil {
		return *res
	}

	sharedCache.SetNow(ctx, s.cache, key, student, s.cacheTTL, s.log)
	return outcome.OK(student)
}

// GetByEmail devuelve la ficha de una cuenta.
func (s *StudentService) GetByEmail(ctx context.Context, email string) outcome.Outcome[*studentDomain.Student] {
	student, err := s.findByOwner(ctx, email)
	if err != nil {
		return outcome.Failed[*studentDomain.Student](err)
	}
	if student == nil {
		return outcome.Missing[*studentDomain.Student]()
	}
	return outcome.OK(student)
}

// Update cambia nombre y apellido y, si llega, la foto.
func (s *StudentService) Update(ctx context.Context, id string, in studentDomain.StudentInput, photo *sharedDomain.Upload) outcome.Outcome[*studentDomain.Student] {
	in.StudentNumber = id
	if fields := s.validator.Struct(in); fields != nil {
		return outcome.Invalid[*studentDomain.Student](fields)
	}

	student, res := s.load(ctx, id)
	if res != nil {
		return *res
	}

	newPhoto, res := s.savePhoto(ctx, photo)
	if res != nil {
		return *res
	}

	oldPhoto := student.Photo
	student.Apply(in)
	if newPhoto != "" {
		student.Photo = newPhoto
	}

	evt := sharedDomain.NewOutboxEvent(studentDomain.StudentAggregate, id, studentDomain.StudentUpdated, student.Changed(s.now()))
	if err := s.repo.Update(ctx, student, evt); err != nil {
		s.discardPhoto(ctx, newPhoto)
		if errors.Is(err, studentDomain.ErrStudentNotFound) {
			return outcome.Missing[*studentDomain.Student]()
		}
		s.log.Error("Failed to update student", zap.String("student_number", id), zap.Error(err))
		return outcome.Failed[*studentDomain.Student](err)
	}

	if newPhoto != "" {
		s.discardPhoto(ctx, oldPhoto)
	}

	key := studentDomain.StudentCacheKeyByID(id)
	sharedCache.SetNow(ctx, s.cache, key, student, s.cacheTTL, s.log)
	return outcome.OK(student)
}

// Delete borra la ficha y después su foto.
func (s *StudentService) Delete(ctx context.Context, id string) outcome.Outcome[*studentDomain.Student] {
	student, res := s.load(ctx, id)
	if res != nil {
		return *res
	}

	payload := &sharedEvents.RecordRemoved{Kind: studentDomain.StudentAggregate, ID: id}
	evt := sharedDomain.NewOutboxEvent(studentDomain.StudentAggregate, id, studentDomain.StudentDeleted, payload)
	if err := s.repo.DeleteByID(ctx, id, evt); err != nil {
		if errors.Is(err, studentDomain.ErrStudentNotFound) {
			return outcome.Missing[*studentDomain.Student]()
		}
		s.log.Error("Failed to delete student", zap.String("student_number", id), zap.Error(err))
		return outcome.Failed[*studentDomain.Student](err)
	}

	sharedCache.InvalidateNow(ctx, s.cache, studentDomain.StudentCacheKeyByID(id), s.log)
	s.discardPhoto(ctx, student.Photo)
	return outcome.OK(student)
}

// List carga todas las fichas y aplica búsqueda, orden y paginación.
func (s *StudentService) List(ctx context.Context, req listing.Request) outcome.Outcome[listing.Page[*studentDomain.Student]] {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		s.log.Error("Failed to list students", zap.Error(err))
		return outcome.Failed[listing.Page[*studentDomain.Student]](err)
	}
	return outcome.OK(s.engine.Query(all, req))
}

func (s *StudentService) load(ctx context.Context, id string) (*studentDomain.Student, *outcome.Outcome[*studentDomain.Student]) {
	var student *studentDomain.Student
	err := sharedUtils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		var errRetry error
		student, errRetry = s.repo.GetByID(ctx, id)
		if errors.Is(errRetry, studentDomain.ErrStudentNotFound) {
			return sharedUtils.Permanent(errRetry)
		}
		return errRetry
	})
	if err == nil {
		return student, nil
	}

	res := outcome.Failed[*studentDomain.Student](err)
	if errors.Is(err, studentDomain.ErrStudentNotFound) {
		s.log.Warn("Student not found", zap.String("student_number", id))
		res = outcome.Missing[*studentDomain.Student]()
	} else {
		s.log.Error("Failed to fetch student", zap.String("student_number", id), zap.Error(err))
	}
	return nil, &res
}

func (s *StudentService) findByOwner(ctx context.Context, email string) (*studentDomain.Student, error) {
	if strings.TrimSpace(email) == "" {
		return nil, nil
	}
	found, err := s.repo.ListByCriteria(ctx, studentDomain.OwnerCriteria{Email: email})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

// savePhoto guarda la subida si la hay. Devuelve "" cuando no hay foto nueva.
func (s *StudentService) savePhoto(ctx context.Context, photo *sharedDomain.Upload) (string, *outcome.Outcome[*studentDomain.Student]) {
	if photo == nil || photo.Content == nil {
		return "", nil
	}
	name, err := s.photos.Save(ctx, photo.Filename, photo.Content)
	if err == nil {
		return name, nil
	}
	if errors.Is(err, sharedDomain.ErrInvalidPhoto) {
		res := outcome.Invalid[*studentDomain.Student](outcome.FieldErrors{"photo": "must be a png, jpg, gif or webp image"})
		return "", &res
	}
	s.log.Error("Failed to store photo", zap.Error(err))
	res := outcome.Failed[*studentDomain.Student](err)
	return "", &res
}

func (s *StudentService) discardPhoto(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.photos.Delete(ctx, name); err != nil {
		s.log.Warn("Failed to delete photo", zap.String("photo", name), zap.Error(err))
	}
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
