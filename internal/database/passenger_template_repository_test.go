package database

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripveda/booking-backend/internal/models"
)

func setupTemplateRepositoryTest(t *testing.T) (*PassengerTemplateRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewPassengerTemplateRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestTemplateCreateAssignsID(t *testing.T) {
	repo, mock := setupTemplateRepositoryTest(t)

	mock.ExpectExec("INSERT INTO passenger_templates").
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), "Asha Verma", "9876543210", 22,
			sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tpl := &models.PassengerTemplate{
		UserID: uuid.New(),
		Name:   "Asha Verma",
		Phone:  "9876543210",
		Age:    22,
	}
	require.NoError(t, repo.Create(tpl))
	assert.NotEqual(t, uuid.Nil, tpl.ID)
	assert.False(t, tpl.CreatedAt.IsZero())
}

func TestTemplateListByUser(t *testing.T) {
	repo, mock := setupTemplateRepositoryTest(t)
	userID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "phone", "age", "college", "created_at"}).
		AddRow(uuid.New(), userID, "Asha Verma", "9876543210", 22, []byte(`{"name":"NIT Trichy","not_prefer_to_say":false}`), time.Now()).
		AddRow(uuid.New(), userID, "Ravi Verma", "9123456780", 24, []byte(`{"not_prefer_to_say":true}`), time.Now().Add(-time.Hour))

	mock.ExpectQuery("SELECT id, user_id, name, phone, age, college, created_at").
		WithArgs(userID).
		WillReturnRows(rows)

	templates, err := repo.ListByUser(userID)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "NIT Trichy", templates[0].College.Name)
	assert.True(t, templates[1].College.NotPreferToSay)
}

func TestTemplateDeleteMissingIsNotFound(t *testing.T) {
	repo, mock := setupTemplateRepositoryTest(t)
	userID, templateID := uuid.New(), uuid.New()

	mock.ExpectExec("DELETE FROM passenger_templates WHERE id").
		WithArgs(templateID, userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(userID, templateID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTemplateDeleteOlderThan(t *testing.T) {
	repo, mock := setupTemplateRepositoryTest(t)
	cutoff := time.Now().AddDate(0, -6, 0)

	mock.ExpectExec("DELETE FROM passenger_templates WHERE created_at").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 5))

	removed, err := repo.DeleteOlderThan(cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(5), removed)
}
