package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrEmptyBody is returned by Decode when the request has no body
var ErrEmptyBody = errors.New("request body is empty")

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// Report fields by their JSON names
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// Decode reads a JSON body from r into dst
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// FieldError reports the first field of a request that failed validation
type FieldError struct {
	Field string
	Rule  string
	msg   string
}

func (e *FieldError) Error() string {
	return e.msg
}

// Detail describes the failing rule for API clients
func (e *FieldError) Detail() string {
	return fmt.Sprintf("field %q failed rule %q", e.Field, e.Rule)
}

// Validate checks dst against its validate tags. Field failures are returned
// as *FieldError naming the first failing field.
func Validate(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	ferr := &FieldError{Field: fe.Field(), Rule: fe.Tag()}
	if fe.Param() != "" {
		ferr.Rule += "=" + fe.Param()
	}
	switch fe.Tag() {
	case "required":
		ferr.msg = fmt.Sprintf("%s is required", fe.Field())
	case "min":
		ferr.msg = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		ferr.msg = fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		ferr.msg = fmt.Sprintf("%s is invalid", fe.Field())
	}
	return ferr
}
