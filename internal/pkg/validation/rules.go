package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Academic identifier: STU + 5 digits
	AcademicIDPattern = `^STU\d{5}$`

	// Phone numbers: digits with optional leading + and separators
	PhonePattern = `^\+?[0-9][0-9 ()\-]{5,19}$`

	// Password min length
	PasswordMinLength = 6

	// Name validation min/max length
	NameMinLength = 2
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	AcademicID *regexp.Regexp
	Phone      *regexp.Regexp
}{
	AcademicID: regexp.MustCompile(AcademicIDPattern),
	Phone:      regexp.MustCompile(PhonePattern),
}

// Custom validator tags
const (
	TagAcademicID = "academicid"
	TagPhone      = "phone"
)

// IsAcademicID reports whether value is a well-formed academic identifier
func IsAcademicID(value string) bool {
	return CompiledPatterns.AcademicID.MatchString(value)
}

// IsPhone reports whether value looks like a phone number
func IsPhone(value string) bool {
	return CompiledPatterns.Phone.MatchString(value)
}

// RegisterCustomValidators adds the project's tags to a validator instance
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation(TagAcademicID, func(fl validator.FieldLevel) bool {
		return IsAcademicID(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation(TagPhone, func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
}
