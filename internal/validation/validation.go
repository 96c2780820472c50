// Package validation runs struct-tag validation and reports failures as
// resource validation errors keyed by wire field name.
package validation

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"contentadmin/internal/resource"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// slugPattern matches canonical slugs: lowercase word characters in
// hyphen-separated runs.
var slugPattern = regexp.MustCompile(`^[a-z0-9_]+(?:-[a-z0-9_]+)*$`)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"form", "json"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("image", func(fl validator.FieldLevel) bool {
			return IsImageFile(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// IsImageFile reports whether path names a readable file whose content is an image.
func IsImageFile(path string) bool {
	if path == "" {
		return false
	}
	if st, err := os.Stat(path); err != nil || st.IsDir() {
		return false
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt.String(), "image/")
}

// Struct validates v. Failures come back as a resource ValidationError whose
// Fields map wire names to messages.
func Struct(v interface{}) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, dup := fields[fe.Field()]; dup {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
	return resource.ValidationError("Please correct the highlighted fields", fields)
}

// Merge adds extra field errors to err (which may be nil) and returns the
// combined validation error, or nil when there are none.
func Merge(err error, extra map[string]string) error {
	if len(extra) == 0 {
		return err
	}
	fields := map[string]string{}
	for k, v := range resource.FieldErrors(err) {
		fields[k] = v
	}
	if err != nil && len(fields) == 0 {
		return err
	}
	for k, v := range extra {
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}
	return resource.ValidationError("Please correct the highlighted fields", fields)
}

func message(fe validator.FieldError) string {
	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "email":
		return "Enter a valid email address"
	case "slug":
		return "Slug may only contain lowercase letters, digits, underscores and hyphens"
	case "image":
		return label + " must be an image file"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", label, fe.Param())
	default:
		return label + " is invalid"
	}
}

// humanize turns "coverImage" into "Cover image".
func humanize(field string) string {
	var b strings.Builder
	for i, r := range field {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteRune(' ')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		if i == 0 && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
