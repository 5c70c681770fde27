package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedDomain "github.com/davicafu/rosterlab/internal/shared/domain"
	"github.com/davicafu/rosterlab/internal/shared/infra/platform/db/sqlstore"
	studentDomain "github.com/davicafu/rosterlab/internal/student/domain"
)

func newRepo(t *testing.T) (*StudentRepo, *sqlstore.OutboxRepo) {
	t.Helper()
	ctx := context.Background()
	db, err := sqlstore.Open(ctx, sqlstore.SQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, sqlstore.InitSchema(ctx, db))
	t.Cleanup(func() { db.Close() })
	return NewStudentRepo(db), sqlstore.NewOutboxRepo(db)
}

func sample(id, first, surname string, day int) *studentDomain.Student {
	return &studentDomain.Student{
		StudentNumber:  id,
		FirstName:      first,
		Surname:        surname,
		Email:          "DefaultEmail@gmail.com",
		EnrollmentDate: time.Date(2021, 2, day, 0, 0, 0, 0, time.UTC),
		Photo:          "DefaultPic.png",
	}
}

func evt(s *studentDomain.Student, eventType string) sharedDomain.OutboxEvent {
	return sharedDomain.NewOutboxEvent(studentDomain.StudentAggregate, s.StudentNumber, eventType, s.Changed(time.Now().UTC()))
}

func TestStudentRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	repo, outbox := newRepo(t)

	s := sample("2021000001", "Alexander", "May", 3)
	require.NoError(t, repo.Create(ctx, s, evt(s, studentDomain.StudentCreated)))
	assert.ErrorIs(t, repo.Create(ctx, s, evt(s, studentDomain.StudentCreated)), studentDomain.ErrStudentAlreadyExists)

	got, err := repo.GetByID(ctx, "2021000001")
	require.NoError(t, err)
	assert.Equal(t, "Alexander May", got.RecordName())
	assert.Equal(t, "DefaultPic.png", got.Photo)
	assert.True(t, s.EnrollmentDate.Equal(got.EnrollmentDate), "got %v", got.EnrollmentDate)

	exists, err := repo.Exists(ctx, "2021000001")
	require.NoError(t, err)
	assert.True(t, exists)

	s.Surname = "Mayer"
	require.NoError(t, repo.Update(ctx, s, evt(s, studentDomain.StudentUpdated)))
	got, err = repo.GetByID(ctx, "2021000001")
	require.NoError(t, err)
	assert.Equal(t, "Mayer", got.Surname)

	ghost := sample("404", "No", "One", 1)
	assert.ErrorIs(t, repo.Update(ctx, ghost, evt(ghost, studentDomain.StudentUpdated)), studentDomain.ErrStudentNotFound)

	require.NoError(t, repo.DeleteByID(ctx, "2021000001", evt(s, studentDomain.StudentDeleted)))
	_, err = repo.GetByID(ctx, "2021000001")
	assert.ErrorIs(t, err, studentDomain.ErrStudentNotFound)
	assert.ErrorIs(t, repo.DeleteByID(ctx, "2021000001", evt(s, studentDomain.StudentDeleted)), studentDomain.ErrStudentNotFound)

	pending, err := outbox.FetchPendingOutbox(ctx, 10)
	require.NoError(t, err)
	var types []string
	for _, e := range pending {
		types = append(types, e.EventType)
	}
	// Las mutaciones fallidas no dejan evento.
	assert.Equal(t, []string{studentDomain.StudentCreated, studentDomain.StudentUpdated, studentDomain.StudentDeleted}, types)
}

func TestStudentRepo_ListByCriteria(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	for _, s := range []*studentDomain.Student{
		sample("2021000001", "Alexander", "May", 3),
		sample("2012000002", "Meredith", "Alonso", 1),
		sample("2021000003", "Arturo", "Anand", 4),
	} {
		require.NoError(t, repo.Create(ctx, s, evt(s, studentDomain.StudentCreated)))
	}
	owned := sample("2021000004", "Nadio", "Ndlovu", 5)
	owned.Email = "nadio@example.com"
	require.NoError(t, repo.Create(ctx, owned, evt(owned, studentDomain.StudentCreated)))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "2012000002", all[0].StudentNumber)

	// Tres fichas de ejemplo comparten email.
	shared, err := repo.ListByCriteria(ctx, studentDomain.OwnerCriteria{Email: "defaultemail@gmail.com"})
	require.NoError(t, err)
	assert.Len(t, shared, 3)

	mine, err := repo.ListByCriteria(ctx, studentDomain.OwnerCriteria{Email: "NADIO@example.com"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "2021000004", mine[0].StudentNumber)

	either, err := repo.ListByCriteria(ctx, sharedDomain.Or(
		sharedDomain.FieldContains{Field: "surname", Text: "Alon"},
		sharedDomain.FieldEquals{Field: "student_number", Value: "2021000003"},
	))
	require.NoError(t, err)
	assert.Len(t, either, 2)

	_, err = repo.ListByCriteria(ctx, sharedDomain.FieldEquals{Field: "photo; DROP TABLE students", Value: "x"})
	assert.Error(t, err)
}
