package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("creates a valid user", func(t *testing.T) {
		user, err := NewUser("kim123", "Kim", "kim@example.com", RolePassenger, "", "password123")
		require.NoError(t, err)
		assert.Equal(t, RolePassenger, user.Role)
		assert.Equal(t, "password123", user.Password)
		assert.Empty(t, user.HashedPassword)
	})

	tests := []struct {
		name     string
		loginID  string
		nickname string
		email    string
		role     Role
		password string
		wantErr  error
	}{
		{"empty login", "", "Kim", "kim@example.com", RoleDriver, "password123", ErrEmptyLoginID},
		{"empty nickname", "kim123", "", "kim@example.com", RoleDriver, "password123", ErrEmptyNickname},
		{"empty email", "kim123", "Kim", "", RoleDriver, "password123", ErrEmptyEmail},
		{"bad email", "kim123", "Kim", "not-an-email", RoleDriver, "password123", ErrInvalidEmail},
		{"bad role", "kim123", "Kim", "kim@example.com", Role("admin"), "password123", ErrInvalidRole},
		{"short password", "kim123", "Kim", "kim@example.com", RoleDriver, "short", ErrPasswordTooShort},
		{
			"long password",
			"kim123",
			"Kim",
			"kim@example.com",
			RoleDriver,
			strings.Repeat("x", 73),
			ErrPasswordTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.loginID, tt.nickname, tt.email, tt.role, "", tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRoleValid(t *testing.T) {
	t.Parallel()

	assert.True(t, RoleDriver.Valid())
	assert.True(t, RolePassenger.Valid())
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}

func TestUserValidate_StoredUser(t *testing.T) {
	t.Parallel()

	// Users loaded from the store carry only the hash.
	user, err := NewUser("kim123", "Kim", "kim@example.com", RoleDriver, "", "password123")
	require.NoError(t, err)
	user.Password = ""
	user.HashedPassword = "$2a$10$somestoredhashvalue"
	assert.NoError(t, user.Validate())

	user.HashedPassword = ""
	assert.ErrorIs(t, user.Validate(), ErrEmptyPassword)
}
