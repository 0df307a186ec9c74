package validate

import (
	"fmt"
	"strings"
)

// Validator is a function that validates a string and returns an error if invalid
type Validator func(value string) error

// Field creates a labeled validator with a custom name for better error messages
func Field(name string, validators ...Validator) Validator {
	return func(value string) error {
		for _, v := range validators {
			if err := v(value); err != nil {
				if !strings.Contains(err.Error(), name) {
					return fmt.Errorf("%s: %w", name, err)
				}
				return err
			}
		}
		return nil
	}
}

// Required ensures the field is not empty
func Required() Validator {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("this field is required")
		}
		return nil
	}
}

// MaxLength checks maximum length
func MaxLength(max int) Validator {
	return func(v string) error {
		if len(v) > max {
			return fmt.Errorf("must be no more than %d characters", max)
		}
		return nil
	}
}

// NoSpaces disallows whitespace anywhere in the value
func NoSpaces() Validator {
	return func(v string) error {
		if strings.ContainsAny(v, " \t\r\n") {
			return fmt.Errorf("must not contain spaces")
		}
		return nil
	}
}
