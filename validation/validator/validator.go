// Package validator registers custom binding rules on gin's validator
// engine and provides small validation helpers.
package validator

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// relatedAreas is the fixed set of organizational areas a task can belong to.
var relatedAreas = map[string]bool{
	"learning-and-development": true,
	"research-and-development": true,
	"finance":                  true,
	"administration":           true,
	"tech":                     true,
	"marketing":                true,
	"others":                   true,
}

// IsRelatedArea reports whether s is a valid organizational area tag.
func IsRelatedArea(s string) bool {
	return relatedAreas[s]
}

// RelatedAreas returns the valid area tags.
func RelatedAreas() []string {
	areas := make([]string, 0, len(relatedAreas))
	for area := range relatedAreas {
		areas = append(areas, area)
	}
	return areas
}

// IsEmpty verify is empty after trimming spaces.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsNotEmpty verify is not empty
func IsNotEmpty(s string) bool {
	return !IsEmpty(s)
}

// RegisterCustomRules installs project-specific rules on gin's binding
// engine. Safe to call once at startup.
func RegisterCustomRules() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("relatedto", func(fl validator.FieldLevel) bool {
		return IsRelatedArea(fl.Field().String())
	})
}
