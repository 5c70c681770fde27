package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sharedDomain "github.com/davicafu/rosterlab/internal/shared/domain"
	"github.com/davicafu/rosterlab/internal/shared/infra/platform/db/sqlstore"
	studentDomain "github.com/davicafu/rosterlab/internal/student/domain"
)

const studentColumns = `student_number, first_name, surname, email, enrollment_date, photo`

// studentFields son los campos filtrables. El email se compara en minúsculas.
var studentFields = map[string]string{
	"student_number":  "student_number",
	"first_name":      "first_name",
	"surname":         "surname",
	"email":           "LOWER(email)",
	"enrollment_date": "enrollment_date",
}

// StudentRepo implementa StudentRepository para SQLite y PostgreSQL.
type StudentRepo struct {
	db *sqlstore.DB
}

var _ studentDomain.StudentRepository = (*StudentRepo)(nil)

func NewStudentRepo(db *sqlstore.DB) *StudentRepo {
	return &StudentRepo{db: db}
}

// ------------------ CRUD + Outbox ------------------

// Create inserta la ficha y su evento en una transacción.
func (r *StudentRepo) Create(ctx context.Context, s *studentDomain.Student, evt sharedDomain.OutboxEvent) error {
	return r.db.WithTx(ctx, func(tx *sqlstore.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO students (`+studentColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
			s.StudentNumber, s.FirstName, s.Surname, s.Email, s.EnrollmentDate.UTC(), s.Photo,
		)
		if err != nil {
			if sqlstore.IsUniqueViolation(err) {
				return studentDomain.ErrStudentAlreadyExists
			}
			return fmt.Errorf("db error: %w", err)
		}
		return sqlstore.InsertOutboxTx(ctx, tx, evt)
	})
}

// Update actualiza la ficha y crea un evento en una transacción.
func (r *StudentRepo) Update(ctx context.Context, s *studentDomain.Student, evt sharedDomain.OutboxEvent) error {
	return r.db.WithTx(ctx, func(tx *sqlstore.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE students SET first_name=?, surname=?, email=?, enrollment_date=?, photo=? WHERE student_number=?`,
			s.FirstName, s.Surname, s.Email, s.EnrollmentDate.UTC(), s.Photo, s.StudentNumber,
		)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if err := sqlstore.RowsAffected(res, studentDomain.ErrStudentNotFound); err != nil {
			return err
		}
		return sqlstore.InsertOutboxTx(ctx, tx, evt)
	})
}

// DeleteByID elimina la ficha y crea un evento en una transacción.
func (r *StudentRepo) DeleteByID(ctx context.Context, id string, evt sharedDomain.OutboxEvent) error {
	return r.db.WithTx(ctx, func(tx *sqlstore.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM students WHERE student_number=?`, id)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if err := sqlstore.RowsAffected(res, studentDomain.ErrStudentNotFound); err != nil {
			return err
		}
		return sqlstore.InsertOutboxTx(ctx, tx, evt)
	})
}

// ------------------ Lectura ------------------

func (r *StudentRepo) GetByID(ctx context.Context, id string) (*studentDomain.Student, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE student_number=?`, id,
	)
	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, studentDomain.ErrStudentNotFound
		}
		return nil, fmt.Errorf("db scan error: %w", err)
	}
	return s, nil
}

func (r *StudentRepo) ListAll(ctx context.Context) ([]*studentDomain.Student, error) {
	return r.ListByCriteria(ctx, nil)
}

// ListByCriteria devuelve las fichas que cumplen criteria, ordenadas por número.
func (r *StudentRepo) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria) ([]*studentDomain.Student, error) {
	whereSQL, args, err := sqlstore.ApplyCriteria(criteria, studentFields)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + studentColumns + ` FROM students`
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}
	query += " ORDER BY student_number"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var students []*studentDomain.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *StudentRepo) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM students WHERE student_number=?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanStudent(row scanner) (*studentDomain.Student, error) {
	var s studentDomain.Student
	if err := row.Scan(&s.StudentNumber, &s.FirstName, &s.Surname, &s.Email, &s.EnrollmentDate, &s.Photo); err != nil {
		return nil, err
	}
	s.EnrollmentDate = s.EnrollmentDate.UTC()
	return &s, nil
}
