// Package validation exposes the request validator gin binds with, for checks
// that run outside of request binding.
package validation

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Email reports whether s is a syntactically valid email address
func Email(s string) bool {
	return instance().Var(s, "required,email,max=120") == nil
}

// NormalizeEmail trims and lowercases an address for storage and lookup
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
