package validation

import (
	"github.com/olegkuprianov/webapp-starter/internal/models"
)

// Field declares one schema entry. Nested fields use dotted names
// ("profile.first_name"); both form posts and JSON bodies are flattened
// to the same shape before validation, and errors on nested fields keep
// the dotted key.
type Field struct {
	Name      string
	Validator Validator
	Required  bool   // a missing key is an error
	Default   string // used when the key is missing and not required
}

// Schema is an explicit, statically declared validator for a parameter
// map. Chained checks run only after every field validates.
type Schema struct {
	Fields  []Field
	Chained []FieldsMatch
}

// Validate runs the schema over the flattened parameter map. On success
// the coerced values are returned with an empty error map; on failure
// the error map carries one message per offending field (cross-field
// failures use the catch-all key) and the value map is empty.
func (s *Schema) Validate(params map[string]string) (map[string]any, map[string]string) {
	values := make(map[string]any)
	errs := make(map[string]string)

	for _, f := range s.Fields {
		raw, present := params[f.Name]
		if !present {
			if f.Required {
				errs[f.Name] = "Missing value"
			} else if f.Default != "" {
				values[f.Name] = f.Default
			}
			continue
		}

		coerced, err := f.Validator.Validate(raw)
		if err != nil {
			errs[f.Name] = err.Error()
			continue
		}
		values[f.Name] = coerced
	}

	if len(errs) == 0 {
		for _, chained := range s.Chained {
			if err := chained.Check(params); err != nil {
				errs[GlobalKey] = err.Error()
			}
		}
	}

	if len(errs) > 0 {
		return map[string]any{}, errs
	}
	return values, errs
}

// UserCreateSchema validates administrative user creation; every field
// must be present.
var UserCreateSchema = &Schema{
	Fields: []Field{
		{Name: "email", Validator: Email{Max: 255}, Required: true},
		{Name: "password", Validator: String{Min: 6}, Required: true},
		{Name: "role", Validator: OneOf{Allowed: models.Roles}, Default: models.RoleUser},
		{Name: "profile.first_name", Validator: String{Max: 100, NotEmpty: true}, Required: true},
		{Name: "profile.last_name", Validator: String{Max: 100, NotEmpty: true}, Required: true},
	},
}

// UserUpdateSchema validates administrative user update; missing fields
// are skipped, present fields must validate.
var UserUpdateSchema = &Schema{
	Fields: []Field{
		{Name: "email", Validator: Email{Max: 255}},
		{Name: "password", Validator: String{Min: 6}},
		{Name: "role", Validator: OneOf{Allowed: models.Roles}},
		{Name: "profile.first_name", Validator: String{Max: 100, NotEmpty: true}},
		{Name: "profile.last_name", Validator: String{Max: 100, NotEmpty: true}},
	},
}

// UserLoginForm validates the login form.
var UserLoginForm = &Schema{
	Fields: []Field{
		{Name: "email", Validator: Email{}, Required: true},
		{Name: "password", Validator: String{NotEmpty: true}, Required: true},
		{Name: "next", Validator: String{}},
	},
}

// UserRegisterForm validates self-service registration; the confirm
// field must match the password.
var UserRegisterForm = &Schema{
	Fields: []Field{
		{Name: "email", Validator: Email{Max: 255}, Required: true},
		{Name: "password", Validator: String{Min: 6}, Required: true},
		{Name: "confirm", Validator: String{NotEmpty: true}, Required: true},
		{Name: "profile.first_name", Validator: String{Max: 100, NotEmpty: true}, Required: true},
		{Name: "profile.last_name", Validator: String{Max: 100, NotEmpty: true}, Required: true},
	},
	Chained: []FieldsMatch{{A: "password", B: "confirm"}},
}

// UserForgotPasswordForm validates the reset-request form.
var UserForgotPasswordForm = &Schema{
	Fields: []Field{
		{Name: "email", Validator: Email{}, Required: true},
	},
}

// UserResetPasswordForm validates the password reset form.
var UserResetPasswordForm = &Schema{
	Fields: []Field{
		{Name: "email", Validator: Email{}, Required: true},
		{Name: "password", Validator: String{Min: 6}, Required: true},
		{Name: "confirm", Validator: String{NotEmpty: true}, Required: true},
		{Name: "token", Validator: String{NotEmpty: true}, Required: true},
	},
	Chained: []FieldsMatch{{A: "password", B: "confirm"}},
}
