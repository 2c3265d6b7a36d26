package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chama/core/user"
)

var userTestColumns = []string{"id", "name", "username", "email", "is_active", "password_hash", "created_at", "updated_at", "last_login"}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestUserRepositoryGetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	id := "af39a8a9-bfd3-4b21-a83f-254bb1a736f5"
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(userTestColumns).
			AddRow(id, "T", "t", "t@test.cd", true, []byte("hash"), now, now, nil)
		mock.ExpectQuery(`SELECT \* FROM users WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(rows)

		usr, err := repo.GetUserByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, usr.ID)
		assert.Equal(t, "t@test.cd", usr.Email)
		assert.True(t, usr.LastLogin.IsZero())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM users WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(userTestColumns))

		_, err := repo.GetUserByID(ctx, id)
		assert.Equal(t, user.ErrNotFound, errors.Cause(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid uuid short-circuits", func(t *testing.T) {
		_, err := repo.GetUserByID(ctx, "not-a-uuid")
		assert.Equal(t, user.ErrNotFound, errors.Cause(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepositoryGetByUsernameOrEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(userTestColumns).
		AddRow("u1", "T", "t", "t@test.cd", true, []byte("hash"), now, now, now)
	mock.ExpectQuery(`SELECT \* FROM users WHERE username = \$1 OR email = \$1`).
		WithArgs("t").
		WillReturnRows(rows)

	usr, err := repo.GetUserByUsernameOrEmail(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "t", usr.Username)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCheckUsernameUniqueness(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("available", func(t *testing.T) {
		mock.ExpectQuery(`SELECT username, email FROM users WHERE \(username = \$1 OR email = \$2\)`).
			WithArgs("t", "t@test.cd").
			WillReturnRows(sqlmock.NewRows([]string{"username", "email"}))

		require.NoError(t, repo.CheckUsernameUniqueness(ctx, "t", "t@test.cd"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("username taken", func(t *testing.T) {
		mock.ExpectQuery(`SELECT username, email FROM users WHERE \(username = \$1 OR email = \$2\)`).
			WithArgs("t", "t@test.cd").
			WillReturnRows(sqlmock.NewRows([]string{"username", "email"}).AddRow("t", "other@test.cd"))

		err := repo.CheckUsernameUniqueness(ctx, "t", "t@test.cd")
		assert.Equal(t, user.ErrUsernameExists, errors.Cause(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("email taken", func(t *testing.T) {
		mock.ExpectQuery(`SELECT username, email FROM users WHERE \(username = \$1 OR email = \$2\)`).
			WithArgs("t", "t@test.cd").
			WillReturnRows(sqlmock.NewRows([]string{"username", "email"}).AddRow("other", "t@test.cd"))

		err := repo.CheckUsernameUniqueness(ctx, "t", "t@test.cd")
		assert.Equal(t, user.ErrEmailExists, errors.Cause(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("excluded user ignored", func(t *testing.T) {
		mock.ExpectQuery(`SELECT username, email FROM users WHERE \(username = \? OR email = \?\) AND id NOT IN \(\?\)`).
			WithArgs("t", "t@test.cd", "u1").
			WillReturnRows(sqlmock.NewRows([]string{"username", "email"}))

		err := repo.CheckUsernameUniqueness(ctx, "t", "t@test.cd", user.User{ID: "u1"})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now().UTC()
	usr, err := repo.CreateUser(ctx, user.User{
		Name:         "T",
		Username:     "t",
		Email:        "t@test.cd",
		IsActive:     true,
		PasswordHash: []byte("hash"),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	usr := user.User{
		ID:           "u1",
		Name:         "T",
		Username:     "t",
		Email:        "t@test.cd",
		PasswordHash: []byte("hash"),
		UpdatedAt:    time.Now().UTC(),
	}

	t.Run("updated", func(t *testing.T) {
		mock.ExpectExec(`UPDATE users`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		isActive := false
		got, err := repo.UpdateUser(ctx, usr, &isActive)
		require.NoError(t, err)
		assert.False(t, got.IsActive)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows affected", func(t *testing.T) {
		mock.ExpectExec(`UPDATE users`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := repo.UpdateUser(ctx, usr, nil)
		assert.Equal(t, user.ErrNotFound, errors.Cause(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepositoryDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM users WHERE id IN \(\?, \?\)`).
		WithArgs("u1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.DeleteUsersByID(ctx, "u1", "u2"))
	require.NoError(t, mock.ExpectationsWereMet())
}
