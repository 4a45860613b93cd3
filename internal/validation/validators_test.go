package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	v := String{Min: 6}
	_, err := v.Validate("short")
	assert.EqualError(t, err, "Enter a value 6 characters long or longer")

	got, err := v.Validate("longenough")
	require.NoError(t, err)
	assert.Equal(t, "longenough", got)

	v = String{Max: 5}
	_, err = v.Validate("toolong")
	assert.EqualError(t, err, "Enter a value not more than 5 characters long")

	v = String{NotEmpty: true}
	_, err = v.Validate("")
	assert.EqualError(t, err, "Please enter a value")
	_, err = v.Validate("   ")
	assert.Error(t, err, "whitespace-only counts as empty")
}

func TestEmail(t *testing.T) {
	v := Email{Max: 255}

	got, err := v.Validate("user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", got)

	for _, bad := range []string{"", "not-an-email", "missing@tld", "two@@example.com", "spaces in@example.com"} {
		_, err := v.Validate(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}

	_, err = v.Validate(strings.Repeat("a", 250) + "@example.com")
	assert.EqualError(t, err, "Enter a value not more than 255 characters long")
}

func TestInt(t *testing.T) {
	v := Int{Min: 1}

	got, err := v.Validate("2")
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	_, err = v.Validate("0")
	assert.EqualError(t, err, "Please enter a number that is 1 or greater")

	_, err = v.Validate("abc")
	assert.EqualError(t, err, "Please enter a number")
}

func TestOneOf(t *testing.T) {
	v := OneOf{Allowed: []string{"user", "superuser", "admin"}}

	got, err := v.Validate("superuser")
	require.NoError(t, err)
	assert.Equal(t, "superuser", got)

	_, err = v.Validate("root")
	assert.EqualError(t, err, "Invalid value")
	assert.NotContains(t, err.Error(), "admin", "allowed values are not echoed")
}

func TestFieldsMatch(t *testing.T) {
	m := FieldsMatch{A: "password", B: "confirm"}

	assert.NoError(t, m.Check(map[string]string{"password": "secret", "confirm": "secret"}))
	assert.EqualError(t, m.Check(map[string]string{"password": "secret", "confirm": "other"}), "Fields do not match")
}
