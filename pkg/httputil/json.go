package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	perrors "github.com/matzehuels/prodgraph/pkg/errors"
)

// MaxBodyBytes bounds request bodies accepted by [DecodeJSON].
const MaxBodyBytes = 1 << 20

// ErrorBody is the payload of an error response.
type ErrorBody struct {
	Code    perrors.Code      `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse wraps [ErrorBody].
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// FieldError is an INVALID_INPUT error with per-field messages.
type FieldError struct {
	Err    *perrors.Error
	Fields map[string]string
}

func (e *FieldError) Error() string { return e.Err.Error() }
func (e *FieldError) Unwrap() error { return e.Err }

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// Report JSON field names instead of Go field names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validator returns the shared validator so callers can register custom tags.
func Validator() *validator.Validate { return validate }

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as an [ErrorResponse]. The status code comes from
// [StatusFor]; rate limit errors also set Retry-After.
func WriteError(w http.ResponseWriter, err error) {
	body := ErrorBody{Code: perrors.GetCode(err), Message: perrors.UserMessage(err)}

	var rl *perrors.RateLimitedError
	var fe *FieldError
	switch {
	case errors.As(err, &rl):
		body.Code = rl.Code()
		body.Message = rl.Error()
		if rl.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
		}
	case errors.As(err, &fe):
		body.Fields = fe.Fields
	case body.Code == "":
		body.Code = perrors.ErrCodeInternal
		body.Message = "internal server error"
	}
	WriteJSON(w, StatusFor(err), ErrorResponse{Error: body})
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	var rl *perrors.RateLimitedError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &rl):
		return http.StatusTooManyRequests
	case perrors.IsValidation(err):
		return http.StatusBadRequest
	case perrors.IsNotFound(err):
		return http.StatusNotFound
	}
	switch perrors.GetCode(err) {
	case perrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case perrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// DecodeJSON decodes the request body into v, rejecting unknown fields,
// trailing data and bodies larger than [MaxBodyBytes], then validates v's
// struct tags. All failures are INVALID_INPUT errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return perrors.New(perrors.ErrCodeInvalidInput, "request body is empty")
		}
		return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "invalid JSON: %v", err)
	}
	if dec.More() {
		return perrors.New(perrors.ErrCodeInvalidInput, "request body must contain a single JSON object")
	}
	return Validate(v)
}

// Validate checks v's struct tags.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "invalid request")
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldName(fe)] = describe(fe)
	}
	return &FieldError{
		Err:    perrors.Wrap(perrors.ErrCodeInvalidInput, err, "invalid request"),
		Fields: fields,
	}
}

func fieldName(fe validator.FieldError) string {
	// Namespace is "Type.field.sub"; drop the struct type.
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return fmt.Sprintf("is required when %s is missing", strings.ToLower(fe.Param()))
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte", "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte", "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "dive":
		return "contains an invalid value"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
