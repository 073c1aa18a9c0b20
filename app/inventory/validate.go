package inventory

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxNameLength bounds storage and item names, in characters.
const MaxNameLength = 20

// nameRules forbids the delimiters used in keys and button payloads.
const nameRules = "required,max=20,excludesall=:@"

// reservedNames collide with the Redis key suffixes of a pod, so a storage
// or item with one of these names would overwrite a list or the dialog record.
var reservedNames = []string{"item_list", "storage_list", "global_command"}

var validate = validator.New()

// ValidationError describes user input that cannot be accepted as is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Code identifies the error class in handler summaries.
func (e *ValidationError) Code() string {
	return "VALIDATION_" + strings.ToUpper(e.Field)
}

// ValidateName checks a storage or item name.
func ValidateName(field, name string) error {
	err := validate.Var(name, nameRules)
	if err == nil {
		if slices.Contains(reservedNames, name) {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("%q is reserved, pick another name", name)}
		}
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: field, Reason: err.Error()}
	}
	switch verrs[0].Tag() {
	case "required":
		return &ValidationError{Field: field, Reason: "the name cannot be empty"}
	case "max":
		return &ValidationError{Field: field, Reason: fmt.Sprintf("the name must be at most %d characters", MaxNameLength)}
	case "excludesall":
		return &ValidationError{Field: field, Reason: "the name cannot contain ':' or '@'"}
	}
	return &ValidationError{Field: field, Reason: verrs[0].Error()}
}

// NormalizeName trims surrounding whitespace and validates the result.
func NormalizeName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(field, name); err != nil {
		return "", err
	}
	return name, nil
}

// ParseQuantity parses a non-negative integer quantity.
func ParseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &ValidationError{Field: "quantity", Reason: fmt.Sprintf("%q is not a whole number", s)}
	}
	if n < 0 {
		return 0, &ValidationError{Field: "quantity", Reason: "the quantity cannot be negative"}
	}
	return n, nil
}
