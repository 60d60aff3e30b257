package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountCallerDirectReports(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM persons p`).
		WithArgs("org-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountCallerDirectReports(context.Background(), "org-1", "user-1")

	require.NoError(t, err)
	assert.Equal(t, 4, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountCallerDirectReports_UnlinkedUserIsZero(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	// Пользователь без записи в persons: подзапрос отдает NULL,
	// COUNT по пустой выборке — ноль, а не ошибка
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM persons p`).
		WithArgs("org-1", "user-hr").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	count, err := repo.CountCallerDirectReports(context.Background(), "org-1", "user-hr")

	require.NoError(t, err)
	assert.Zero(t, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
