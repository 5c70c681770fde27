package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	consumerDomain "github.com/davicafu/rosterlab/internal/consumer/domain"
	sharedDomain "github.com/davicafu/rosterlab/internal/shared/domain"
	studentDomain "github.com/davicafu/rosterlab/internal/student/domain"
)

// IdentitySeeder prepara roles y la cuenta de administración.
type IdentitySeeder interface {
	EnsureRoles(ctx context.Context) error
	EnsureAdmin(ctx context.Context, email, password string) error
}

// AdminAccount son las credenciales de la cuenta inicial.
type AdminAccount struct {
	Email    string
	Password string
}

// Report resume una ejecución del seeder.
type Report struct {
	Students  int      `json:"students_inserted"`
	Consumers int      `json:"consumers_inserted"`
	Skipped   []string `json:"skipped,omitempty"`
}

type Seeder struct {
	identity  IdentitySeeder
	students  studentDomain.StudentRepository
	consumers consumerDomain.ConsumerRepository
	admin     AdminAccount
	log       *zap.Logger
}

func NewSeeder(identity IdentitySeeder, students studentDomain.StudentRepository, consumers consumerDomain.ConsumerRepository, admin AdminAccount, log *zap.Logger) *Seeder {
	return &Seeder{identity: identity, students: students, consumers: consumers, admin: admin, log: log}
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// SampleStudents y SampleConsumers son los datos de arranque. Dos consumers
// comparten id a propósito: el segundo se descarta al insertar.
func SampleStudents() []*studentDomain.Student {
	return []*studentDomain.Student{
		{StudentNumber: "2021000001", FirstName: "Alexander", Surname: "May", Email: "DefaultEmail@gmail.com", EnrollmentDate: day("2021-02-03"), Photo: sharedDomain.DefaultPhoto},
		{StudentNumber: "2012000002", FirstName: "Meredith", Surname: "Alonso", Email: "DefaultEmail@gmail.com", EnrollmentDate: day("2021-02-01"), Photo: sharedDomain.DefaultPhoto},
		{StudentNumber: "2021000003", FirstName: "Arturo", Surname: "Anand", Email: "DefaultEmail@gmail.com", EnrollmentDate: day("2021-02-04"), Photo: sharedDomain.DefaultPhoto},
	}
}

func SampleConsumers() []*consumerDomain.Consumer {
	return []*consumerDomain.Consumer{
		{ConsumerID: "90909", Name: "tshego", Email: "tshego@example.com", Address: "66 kerk st", Phone: "0795547786", RegistrationDate: day("2021-02-03"), Photo: sharedDomain.DefaultPhoto},
		{ConsumerID: "90909", Name: "Misper", Email: "misper@example.com", Address: "45 Oaktree village", Phone: "0795547786", RegistrationDate: day("2021-02-01"), Photo: sharedDomain.DefaultPhoto},
		{ConsumerID: "77777", Name: "nadio", Email: "nadio@example.com", Address: "789 parkhof willows", Phone: "0795547786", RegistrationDate: day("2021-02-04"), Photo: sharedDomain.DefaultPhoto},
	}
}

// Run asegura roles y admin, y carga los datos de ejemplo en las tablas vacías.
// Es idempotente.
func (s *Seeder) Run(ctx context.Context) (Report, error) {
	var report Report

	if err := s.identity.EnsureRoles(ctx); err != nil {
		return report, fmt.Errorf("seed roles: %w", err)
	}
	if s.admin.Email != "" {
		if err := s.identity.EnsureAdmin(ctx, s.admin.Email, s.admin.Password); err != nil {
			return report, fmt.Errorf("seed admin: %w", err)
		}
	}

	existing, err := s.students.ListAll(ctx)
	if err != nil {
		return report, fmt.Errorf("seed students: %w", err)
	}
	if len(existing) == 0 {
		for _, st := range SampleStudents() {
			evt := sharedDomain.NewOutboxEvent(studentDomain.StudentAggregate, st.StudentNumber, studentDomain.StudentCreated, st.Changed(time.Now().UTC()))
			err := s.students.Create(ctx, st, evt)
			switch {
			case errors.Is(err, studentDomain.ErrStudentAlreadyExists):
				s.skip(&report, "student", st.StudentNumber, st.RecordName())
			case err != nil:
				return report, fmt.Errorf("seed student %s: %w", st.StudentNumber, err)
			default:
				report.Students++
			}
		}
	}

	current, err := s.consumers.ListAll(ctx)
	if err != nil {
		return report, fmt.Errorf("seed consumers: %w", err)
	}
	if len(current) == 0 {
		for _, c := range SampleConsumers() {
			evt := sharedDomain.NewOutboxEvent(consumerDomain.ConsumerAggregate, c.ConsumerID, consumerDomain.ConsumerCreated, c.Changed(time.Now().UTC()))
			err := s.consumers.Create(ctx, c, evt)
			switch {
			case errors.Is(err, consumerDomain.ErrConsumerAlreadyExists):
				s.skip(&report, "consumer", c.ConsumerID, c.Name)
			case err != nil:
				return report, fmt.Errorf("seed consumer %s: %w", c.ConsumerID, err)
			default:
				report.Consumers++
			}
		}
	}

	s.log.Info("🌱 Seed completado",
		zap.Int("students", report.Students),
		zap.Int("consumers", report.Consumers),
		zap.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}

func (s *Seeder) skip(report *Report, kind, id, name string) {
	s.log.Warn("Seed duplicado ignorado", zap.String("kind", kind), zap.String("id", id), zap.String("name", name))
	report.Skipped = append(report.Skipped, kind+":"+id+" ("+name+")")
}
