package domain

import (
	"time"

	sharedEvents "github.com/davicafu/rosterlab/internal/shared/domain/events"
	"github.com/davicafu/rosterlab/internal/shared/domain/listing"
)

// Student es la ficha de un estudiante. Se enlaza con la cuenta por Email.
type Student struct {
	StudentNumber  string    `json:"student_number"`
	FirstName      string    `json:"first_name"`
	Surname        string    `json:"surname"`
	Email          string    `json:"email"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	Photo          string    `json:"photo"`
}

// StudentInput son los campos que el usuario puede escribir.
type StudentInput struct {
	StudentNumber string `json:"student_number" form:"student_number" validate:"required,min=3,max=10"`
	FirstName     string `json:"first_name" form:"first_name" validate:"required,min=2,max=50"`
	Surname       string `json:"surname" form:"surname" validate:"required,min=2,max=50"`
}

func (s *Student) RecordID() string { return s.StudentNumber }

// RecordName es el nombre completo, que es por lo que se busca y ordena.
func (s *Student) RecordName() string { return s.FirstName + " " + s.Surname }

func (s *Student) RecordEmail() string { return s.Email }

func (s *Student) RecordDate() time.Time { return s.EnrollmentDate }

// Apply copia los campos editables.
func (s *Student) Apply(in StudentInput) {
	s.FirstName = in.FirstName
	s.Surname = in.Surname
}

// Changed es el payload de integración de created/updated.
func (s *Student) Changed(at time.Time) *sharedEvents.RecordChanged {
	return &sharedEvents.RecordChanged{
		Kind:       StudentAggregate,
		ID:         s.StudentNumber,
		Name:       s.RecordName(),
		Email:      s.Email,
		OccurredOn: at,
	}
}

var _ listing.Record = (*Student)(nil)
