// Package validation checks character drafts field by field and reports every
// violation as a field -> message map keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"heroes/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var labels = map[string]string{
	"name":             "Name",
	"real_name":        "Real name",
	"origin":           "Origin",
	"universe":         "Universe",
	"powers":           "Powers",
	"affiliation":      "Affiliation",
	"first_appearance": "First appearance",
	"status":           "Status",
	"alignment":        "Alignment",
	"description":      "Description",
	"image_url":        "Image URL",
}

// Result is the outcome of validating a record.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// Err returns the result as an *Error, or nil when the record is valid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &Error{Fields: r.Errors}
}

// Error is returned when a record fails validation. It must not be persisted.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsError unwraps err into a validation *Error if it is one.
func AsError(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			panic(fmt.Sprintf("register notblank: %v", err))
		}
		validate = v
	})
	return validate
}

// Validate checks every field of c and returns all violations.
// A field reports at most one message; presence is checked before length.
func Validate(c models.Character) Result {
	res := Result{Valid: true, Errors: map[string]string{}}

	err := engine().Struct(c)
	if err == nil {
		return res
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// Only reachable on programmer error (non-struct input).
		res.Valid = false
		res.Errors["_"] = err.Error()
		return res
	}
	for _, fe := range fieldErrs {
		if _, seen := res.Errors[fe.Field()]; seen {
			continue
		}
		res.Errors[fe.Field()] = message(fe)
	}
	res.Valid = len(res.Errors) == 0
	return res
}

func message(fe validator.FieldError) string {
	label, ok := labels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Field() {
	case "status":
		return fmt.Sprintf("%s is required and must be one of %s", label, joinStatuses())
	case "alignment":
		return fmt.Sprintf("%s is required and must be one of %s", label, joinAlignments())
	}
	switch fe.Tag() {
	case "required", "notblank":
		return label + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", label)
}

func joinStatuses() string {
	out := make([]string, len(models.Statuses))
	for i, s := range models.Statuses {
		out[i] = string(s)
	}
	return strings.Join(out, ", ")
}

func joinAlignments() string {
	out := make([]string, len(models.Alignments))
	for i, a := range models.Alignments {
		out[i] = string(a)
	}
	return strings.Join(out, ", ")
}
