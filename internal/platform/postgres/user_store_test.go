package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/openride/carpool-api/internal/domain"
	"github.com/openride/carpool-api/internal/store"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func validTestUser(t *testing.T) *domain.User {
	t.Helper()

	user, err := domain.NewUser(
		"kim123", "Kim", "kim@example.com", domain.RolePassenger, "", "password123",
	)
	require.NoError(t, err)
	return user
}

func TestPostgresUserStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("hashes the password and inserts the row", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)
		user := validTestUser(t)

		mock.ExpectExec("INSERT INTO users").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), user))
		assert.Empty(t, user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword(
			[]byte(user.HashedPassword), []byte("password123")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps the login ID constraint to ErrLoginIDExists", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_login_id_key"})

		err := s.Create(context.Background(), validTestUser(t))
		assert.ErrorIs(t, err, store.ErrLoginIDExists)
	})

	t.Run("maps the email constraint to ErrEmailExists", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		err := s.Create(context.Background(), validTestUser(t))
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("rejects an invalid user before touching the database", func(t *testing.T) {
		db, _ := newMockDB(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		user := validTestUser(t)
		user.Email = "not-an-email"
		assert.ErrorIs(t, s.Create(context.Background(), user), domain.ErrInvalidEmail)
	})
}

func TestPostgresUserStore_GetByID(t *testing.T) {
	t.Parallel()

	userColumns := []string{
		"id", "login_id", "nickname", "email", "role",
		"profile_image", "hashed_password", "created_at", "updated_at",
	}

	t.Run("returns the user", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)
		id := uuid.New()
		now := time.Now().UTC()

		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(id, "kim123", "Kim", "kim@example.com", "driver", "", "hash", now, now))

		user, err := s.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, domain.RoleDriver, user.Role)
	})

	t.Run("returns ErrUserNotFound when missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		mock.ExpectQuery("SELECT (.+) FROM users").
			WillReturnError(sql.ErrNoRows)

		_, err := s.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}
