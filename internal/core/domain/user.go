package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidUser        = errors.New("invalid user")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Field length bounds for a stored user.
const (
	UsernameMinLen = 6
	UsernameMaxLen = 255
	EmailMinLen    = 6
	EmailMaxLen    = 255
	PasswordMinLen = 6
	PasswordMaxLen = 1024
)

// PasswordHasher turns a plaintext password into its stored, salted form.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// User models an account. Password holds plaintext only between SetPassword
// and the next BeforeSave; at rest it is always a hash.
type User struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Username  string             `json:"username" bson:"username"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`

	passwordModified bool
}

// NewUser returns an unsaved user carrying a plaintext password.
func NewUser(username, email, password string) *User {
	u := &User{
		Username: strings.TrimSpace(username),
		Email:    strings.ToLower(strings.TrimSpace(email)),
	}
	u.SetPassword(password)
	return u
}

// SetPassword replaces the password with plaintext and marks it for hashing
// on the next save.
func (u *User) SetPassword(plain string) {
	u.Password = plain
	u.passwordModified = true
}

// PasswordModified reports whether the next save will hash the password.
func (u *User) PasswordModified() bool {
	return u.passwordModified
}

// BeforeSave is the pre-persistence hook. It validates the user, replaces a
// modified plaintext password with its hash exactly once and stamps the
// timestamps.
func (u *User) BeforeSave(h PasswordHasher, now time.Time) error {
	if err := u.validate(); err != nil {
		return err
	}

	if u.passwordModified {
		hash, err := h.Hash(u.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u.Password = hash
		u.passwordModified = false
	}

	now = now.UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

func (u *User) validate() error {
	if err := checkLength("username", u.Username, UsernameMinLen, UsernameMaxLen); err != nil {
		return err
	}
	if err := checkLength("email", u.Email, EmailMinLen, EmailMaxLen); err != nil {
		return err
	}
	if u.passwordModified {
		return checkLength("password", u.Password, PasswordMinLen, PasswordMaxLen)
	}
	if u.Password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidUser)
	}
	return nil
}

func checkLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	switch {
	case n == 0:
		return fmt.Errorf("%w: %s is required", ErrInvalidUser, field)
	case n < min:
		return fmt.Errorf("%w: %s must be at least %d characters", ErrInvalidUser, field, min)
	case n > max:
		return fmt.Errorf("%w: %s must be at most %d characters", ErrInvalidUser, field, max)
	}
	return nil
}
