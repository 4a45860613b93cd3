package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
)

// Validator checks and coerces a single raw parameter value.
type Validator interface {
	Validate(value string) (any, error)
}

// String validates free-form text.
type String struct {
	Min      int
	Max      int
	NotEmpty bool
}

func (v String) Validate(value string) (any, error) {
	if v.NotEmpty && strings.TrimSpace(value) == "" {
		return nil, errors.New("Please enter a value")
	}
	if v.Min > 0 && len(value) < v.Min {
		return nil, fmt.Errorf("Enter a value %d characters long or longer", v.Min)
	}
	if v.Max > 0 && len(value) > v.Max {
		return nil, fmt.Errorf("Enter a value not more than %d characters long", v.Max)
	}
	return value, nil
}

// Email validates email address well-formedness.
type Email struct {
	Max int
}

func (v Email) Validate(value string) (any, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, errors.New("Please enter an email address")
	}
	if v.Max > 0 && len(value) > v.Max {
		return nil, fmt.Errorf("Enter a value not more than %d characters long", v.Max)
	}

	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return nil, errors.New("Please enter a valid email address")
	}
	// require a dotted domain; "user@localhost" is not acceptable here
	domain := value[strings.LastIndex(value, "@")+1:]
	if !strings.Contains(domain, ".") {
		return nil, errors.New("Please enter a valid email address")
	}
	return value, nil
}

// Int validates and coerces an integer parameter.
type Int struct {
	Min int
}

func (v Int) Validate(value string) (any, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return nil, errors.New("Please enter a number")
	}
	if n < v.Min {
		return nil, fmt.Errorf("Please enter a number that is %d or greater", v.Min)
	}
	return n, nil
}

// OneOf validates membership in a fixed value set. The allowed values
// are not echoed back in the error message.
type OneOf struct {
	Allowed []string
}

func (v OneOf) Validate(value string) (any, error) {
	for _, allowed := range v.Allowed {
		if value == allowed {
			return value, nil
		}
	}
	return nil, errors.New("Invalid value")
}

// FieldsMatch is a cross-field check: both named fields must hold equal
// values. Failures land under the catch-all error key.
type FieldsMatch struct {
	A, B string
}

func (v FieldsMatch) Check(params map[string]string) error {
	if params[v.A] != params[v.B] {
		return errors.New("Fields do not match")
	}
	return nil
}
