package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role determines which operations an account may perform. It is fixed at
// registration and never changes afterwards.
type Role string

const (
	// RoleDriver may publish, edit and delete routes.
	RoleDriver Role = "driver"

	// RolePassenger may reserve and cancel seats on routes.
	RolePassenger Role = "passenger"
)

// Valid reports whether the role is one of the two supported values.
func (r Role) Valid() bool {
	return r == RoleDriver || r == RolePassenger
}

// Common validation errors
var (
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrEmptyLoginID     = errors.New("login ID cannot be empty")
	ErrEmptyNickname    = errors.New("nickname cannot be empty")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword    = errors.New("password cannot be empty")
)

// User represents a registered account, either a driver or a passenger.
// The role is uniform on the struct; all role-dependent behavior lives in
// the access policy, not in subtypes.
type User struct {
	ID             uuid.UUID `json:"id"`
	LoginID        string    `json:"login_id"`
	Nickname       string    `json:"nickname"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	ProfileImage   string    `json:"profile_image,omitempty"`
	Password       string    `json:"-"` // Plaintext password, only set during registration
	HashedPassword string    `json:"-"` // Never expose the password hash
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with a generated ID and timestamps.
// The plaintext password is carried on the struct until the store hashes it;
// it is never persisted as-is.
func NewUser(loginID, nickname, email string, role Role, profileImage, password string) (*User, error) {
	user := &User{
		ID:           uuid.New(),
		LoginID:      loginID,
		Nickname:     nickname,
		Email:        email,
		Role:         role,
		ProfileImage: profileImage,
		Password:     password,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.LoginID == "" {
		return ErrEmptyLoginID
	}

	if u.Nickname == "" {
		return ErrEmptyNickname
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !validEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if !u.Role.Valid() {
		return ErrInvalidRole
	}

	if u.Password != "" {
		if len(u.Password) < 8 {
			return ErrPasswordTooShort
		}
		// bcrypt truncates beyond 72 bytes
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		// Existing users loaded from the store carry only the hash.
		return ErrEmptyPassword
	}

	return nil
}

// validEmailFormat performs a basic structural check of an email address.
// Request-level validation uses the validator package; this is the last line
// of defense before persistence.
func validEmailFormat(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domainPart := email[at+1:]
	dot := strings.IndexByte(domainPart, '.')
	return dot > 0 && dot < len(domainPart)-1
}
