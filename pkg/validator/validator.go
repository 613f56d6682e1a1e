// Package validator decodes JSON request bodies and checks them against
// go-playground/validator struct tags, reporting failures by JSON field name.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps request bodies read by DecodeAndValidate.
const MaxBodyBytes = 1 << 20

// ErrEmptyBody is returned by DecodeAndValidate for a request without a body.
var ErrEmptyBody = errors.New("request body is required")

var (
	mu       sync.RWMutex
	engine   = newEngine()
	messages = map[string]string{
		"required": "is required",
		"min":      "must be at least %s",
		"max":      "must be at most %s",
		"gt":       "must be greater than %s",
		"gte":      "must be greater than or equal to %s",
		"lte":      "must be less than or equal to %s",
		"oneof":    "must be one of: %s",
	}
)

func newEngine() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return v
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// RegisterString adds a tag that accepts a string field when ok returns true.
// message is reported for fields that fail it.
func RegisterString(tag, message string, ok func(string) bool) {
	mu.Lock()
	defer mu.Unlock()
	// Only fails for an empty tag or a nil func.
	if err := engine.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return ok(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("validator: register %q: %v", tag, err))
	}
	messages[tag] = message
}

// Validate checks s against its validate tags.
func Validate(s any) error {
	mu.RLock()
	defer mu.RUnlock()

	err := engine.Struct(s)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return newValidationError(fieldErrs)
	}
	return err
}

// ValidationError lists every field that failed, by JSON name.
type ValidationError struct {
	fields map[string]string
}

func newValidationError(errs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = describe(fe)
	}
	return &ValidationError{fields: fields}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.fields))
	for name := range e.fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "field '%s' %s", name, e.fields[name])
	}
	return b.String()
}

// Fields returns field name to message. The map is a copy.
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.fields))
	for k, v := range e.fields {
		out[k] = v
	}
	return out
}

// describe is called with mu held.
func describe(fe validator.FieldError) string {
	msg, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, fe.Param())
	}
	return msg
}

// DecodeAndValidate decodes the JSON body of r into dst and validates it.
func DecodeAndValidate(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("decode request body: %w", err)
	}
	return Validate(dst)
}
