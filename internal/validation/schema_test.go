package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCreateSchema(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		values, errs := UserCreateSchema.Validate(map[string]string{
			"email":              "user@example.com",
			"password":           "secret123",
			"profile.first_name": "John",
			"profile.last_name":  "Smith",
		})
		require.Empty(t, errs)
		assert.Equal(t, "user@example.com", values["email"])
		assert.Equal(t, "user", values["role"], "role defaults to user")
		assert.Equal(t, "John", values["profile.first_name"])
	})

	t.Run("missing required fields", func(t *testing.T) {
		values, errs := UserCreateSchema.Validate(map[string]string{
			"email": "user@example.com",
		})
		assert.Empty(t, values, "no values on failure")
		assert.Equal(t, "Missing value", errs["password"])
		assert.Equal(t, "Missing value", errs["profile.first_name"])
		assert.Equal(t, "Missing value", errs["profile.last_name"])
		assert.NotContains(t, errs, "email")
	})

	t.Run("invalid role", func(t *testing.T) {
		_, errs := UserCreateSchema.Validate(map[string]string{
			"email":              "user@example.com",
			"password":           "secret123",
			"role":               "root",
			"profile.first_name": "John",
			"profile.last_name":  "Smith",
		})
		assert.Equal(t, "Invalid value", errs["role"])
	})

	t.Run("nested errors keep dotted keys", func(t *testing.T) {
		_, errs := UserCreateSchema.Validate(map[string]string{
			"email":              "user@example.com",
			"password":           "secret123",
			"profile.first_name": "",
			"profile.last_name":  "Smith",
		})
		assert.Equal(t, "Please enter a value", errs["profile.first_name"])
	})
}

func TestUserUpdateSchema(t *testing.T) {
	t.Run("missing fields are skipped", func(t *testing.T) {
		values, errs := UserUpdateSchema.Validate(map[string]string{
			"email": "new@example.com",
		})
		require.Empty(t, errs)
		assert.Equal(t, map[string]any{"email": "new@example.com"}, values)
	})

	t.Run("present fields must validate", func(t *testing.T) {
		_, errs := UserUpdateSchema.Validate(map[string]string{
			"email":    "broken",
			"password": "short",
		})
		assert.Equal(t, "Please enter a valid email address", errs["email"])
		assert.Equal(t, "Enter a value 6 characters long or longer", errs["password"])
	})

	t.Run("empty parameter set passes", func(t *testing.T) {
		values, errs := UserUpdateSchema.Validate(map[string]string{})
		assert.Empty(t, errs)
		assert.Empty(t, values)
	})
}

func TestUserRegisterForm(t *testing.T) {
	params := map[string]string{
		"email":              "user@example.com",
		"password":           "secret123",
		"confirm":            "secret123",
		"profile.first_name": "John",
		"profile.last_name":  "Smith",
	}

	t.Run("valid", func(t *testing.T) {
		_, errs := UserRegisterForm.Validate(params)
		assert.Empty(t, errs)
	})

	t.Run("password confirm mismatch is a global error", func(t *testing.T) {
		bad := map[string]string{}
		for k, v := range params {
			bad[k] = v
		}
		bad["confirm"] = "different"

		values, errs := UserRegisterForm.Validate(bad)
		assert.Empty(t, values)
		assert.Equal(t, "Fields do not match", errs[GlobalKey])
	})
}

func TestUserResetPasswordForm(t *testing.T) {
	t.Run("token required", func(t *testing.T) {
		_, errs := UserResetPasswordForm.Validate(map[string]string{
			"email":    "user@example.com",
			"password": "secret123",
			"confirm":  "secret123",
		})
		assert.Equal(t, "Missing value", errs["token"])
	})

	t.Run("valid", func(t *testing.T) {
		values, errs := UserResetPasswordForm.Validate(map[string]string{
			"email":    "user@example.com",
			"password": "secret123",
			"confirm":  "secret123",
			"token":    "reset-token",
		})
		require.Empty(t, errs)
		assert.Equal(t, "reset-token", values["token"])
	})
}

func TestUserLoginForm(t *testing.T) {
	values, errs := UserLoginForm.Validate(map[string]string{
		"email":    "user@example.com",
		"password": "whatever",
	})
	require.Empty(t, errs)
	assert.Equal(t, "user@example.com", values["email"])
	assert.NotContains(t, values, "next", "optional field without default stays absent")
}
