package models

import (
	"database/sql"
	"encoding/base64"
	"strings"
	"time"
)

// Valid user roles.
const (
	RoleUser      = "user"
	RoleSuperuser = "superuser"
	RoleAdmin     = "admin"
)

// Roles lists every valid role value.
var Roles = []string{RoleUser, RoleSuperuser, RoleAdmin}

// NormalizeEmail lower-cases an email address. Emails are stored and
// compared in their normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailsEqual compares two email addresses case-insensitively.
func EmailsEqual(a, b string) bool {
	return NormalizeEmail(a) == NormalizeEmail(b)
}

// UserDB represents a user record in the database.
type UserDB struct {
	ID                 int64          `json:"id" db:"id"`                  // Primary key
	Email              string         `json:"email" db:"email"`            // Unique, stored lower-cased
	PasswordHash       string         `json:"-" db:"password"`             // bcrypt hash
	Role               string         `json:"role" db:"role"`              // user, superuser or admin
	APIToken           string         `json:"-" db:"api_token"`            // Long-lived header-auth secret
	PasswordResetToken sql.NullString `json:"-" db:"password_reset_token"` // Short-lived reset secret
	PasswordResetSent  sql.NullTime   `json:"-" db:"password_reset_sent"`  // Reset token issuance time
	LastLogin          sql.NullTime   `json:"-" db:"last_login"`           // Last successful login
	Updated            time.Time      `json:"updated" db:"updated"`        // Refreshed on mutation
	Created            time.Time      `json:"created" db:"created"`        // Creation timestamp

	Profile *UserProfileDB `json:"profile" db:"-"`
}

// AuthorizationToken returns the value accepted by the
// "Authorization: Token ..." header: base64 of "email:api_token".
func (u *UserDB) AuthorizationToken() string {
	return base64.StdEncoding.EncodeToString([]byte(u.Email + ":" + u.APIToken))
}

// FullName returns the profile's full name, or "" without a profile.
func (u *UserDB) FullName() string {
	if u.Profile == nil {
		return ""
	}
	return u.Profile.FullName()
}

// UserProfileDB represents a user's profile record. Each user owns
// exactly one profile; deleting the user deletes the profile.
type UserProfileDB struct {
	ID        int64     `json:"-" db:"id"`
	UserID    int64     `json:"-" db:"user_id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Updated   time.Time `json:"-" db:"updated"`
	Created   time.Time `json:"-" db:"created"`
}

// FullName joins first and last name with a space.
func (p *UserProfileDB) FullName() string {
	return p.FirstName + " " + p.LastName
}

// UserJSON is the public representation of a user. It excludes the
// password hash, API token and password-reset fields.
type UserJSON struct {
	ID        int64            `json:"id"`
	Email     string           `json:"email"`
	Role      string           `json:"role"`
	LastLogin *time.Time       `json:"last_login"`
	Profile   *UserProfileJSON `json:"profile"`
	Updated   time.Time        `json:"updated"`
	Created   time.Time        `json:"created"`
}

// UserProfileJSON is the public representation of a profile.
type UserProfileJSON struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// NewUserJSON builds the public view of a user record.
func NewUserJSON(u *UserDB) *UserJSON {
	if u == nil {
		return nil
	}
	out := &UserJSON{
		ID:      u.ID,
		Email:   u.Email,
		Role:    u.Role,
		Updated: u.Updated,
		Created: u.Created,
	}
	if u.LastLogin.Valid {
		t := u.LastLogin.Time
		out.LastLogin = &t
	}
	if u.Profile != nil {
		out.Profile = &UserProfileJSON{
			FirstName: u.Profile.FirstName,
			LastName:  u.Profile.LastName,
		}
	}
	return out
}

// NewUserListJSON builds the public view of a list of user records.
func NewUserListJSON(users []UserDB) []*UserJSON {
	out := make([]*UserJSON, 0, len(users))
	for i := range users {
		out = append(out, NewUserJSON(&users[i]))
	}
	return out
}

// AuthUserJSON is the login/register response view. Unlike UserJSON it
// includes the API token so clients can authenticate subsequent calls.
type AuthUserJSON struct {
	ID        int64            `json:"id"`
	Email     string           `json:"email"`
	Role      string           `json:"role"`
	LastLogin *time.Time       `json:"last_login"`
	APIToken  string           `json:"api_token"`
	Profile   *UserProfileJSON `json:"profile"`
}

// NewAuthUserJSON builds the login/register view of a user record.
func NewAuthUserJSON(u *UserDB) *AuthUserJSON {
	if u == nil {
		return nil
	}
	out := &AuthUserJSON{
		ID:       u.ID,
		Email:    u.Email,
		Role:     u.Role,
		APIToken: u.APIToken,
	}
	if u.LastLogin.Valid {
		t := u.LastLogin.Time
		out.LastLogin = &t
	}
	if u.Profile != nil {
		out.Profile = &UserProfileJSON{
			FirstName: u.Profile.FirstName,
			LastName:  u.Profile.LastName,
		}
	}
	return out
}
