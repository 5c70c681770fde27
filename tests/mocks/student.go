package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	sharedDomain "github.com/davicafu/rosterlab/internal/shared/domain"
	studentDomain "github.com/davicafu/rosterlab/internal/student/domain"
)

// InMemoryStudentRepo simula StudentRepository con outbox incluido.
type InMemoryStudentRepo struct {
	Students map[string]*studentDomain.Student
	Outbox   []sharedDomain.OutboxEvent
	FailWith error
	mu       sync.Mutex
}

var _ studentDomain.StudentRepository = (*InMemoryStudentRepo)(nil)

func NewInMemoryStudentRepo() *InMemoryStudentRepo {
	return &InMemoryStudentRepo{Students: make(map[string]*studentDomain.Student)}
}

func (r *InMemoryStudentRepo) Create(ctx context.Context, s *studentDomain.Student, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if _, ok := r.Students[s.StudentNumber]; ok {
		return studentDomain.ErrStudentAlreadyExists
	}
	cp := *s
	r.Students[s.StudentNumber] = &cp
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryStudentRepo) Update(ctx context.Context, s *studentDomain.Student, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if _, ok := r.Students[s.StudentNumber]; !ok {
		return studentDomain.ErrStudentNotFound
	}
	cp := *s
	r.Students[s.StudentNumber] = &cp
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryStudentRepo) DeleteByID(ctx context.Context, id string, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if _, ok := r.Students[id]; !ok {
		return studentDomain.ErrStudentNotFound
	}
	delete(r.Students, id)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryStudentRepo) GetByID(ctx context.Context, id string) (*studentDomain.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	s, ok := r.Students[id]
	if !ok {
		return nil, studentDomain.ErrStudentNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *InMemoryStudentRepo) ListAll(ctx context.Context) ([]*studentDomain.Student, error) {
	return r.ListByCriteria(ctx, nil)
}

// ListByCriteria evalúa los criterios en memoria, ordenado por id como haría la base de datos.
func (r *InMemoryStudentRepo) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria) ([]*studentDomain.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	var out []*studentDomain.Student
	for _, s := range r.Students {
		s := s
		hit := sharedDomain.Matches(criteria, func(field string) interface{} {
			switch field {
			case "student_number":
				return s.StudentNumber
			case "first_name":
				return s.FirstName
			case "surname":
				return s.Surname
			case "email":
				return strings.ToLower(s.Email)
			case "enrollment_date":
				return s.EnrollmentDate
			}
			return nil
		})
		if hit {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentNumber < out[j].StudentNumber })
	return out, nil
}

func (r *InMemoryStudentRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return false, r.FailWith
	}
	_, ok := r.Students[id]
	return ok, nil
}

// Events devuelve los tipos de evento escritos en la outbox, en orden.
func (r *InMemoryStudentRepo) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.Outbox))
	for _, evt := range r.Outbox {
		types = append(types, evt.EventType)
	}
	return types
}
