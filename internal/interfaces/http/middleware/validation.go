package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/interfaces/http/dto"
)

// BodyField names the detail entry of a request body that could not be decoded
const BodyField = "body"

// SetupValidator reports JSON (or form) field names in errors and registers
// the "location" tag. Empty values pass "location" so it composes with omitempty.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("location", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || order.Location(s).IsValid()
	})
}

// FormatValidationErrors turns a binding error into a VALIDATION_ERROR envelope
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var fieldErrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &fieldErrs):
		for _, e := range fieldErrs {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = BodyField
		}
		details = append(details, dto.ValidationDetail{Field: field, Message: "Must be of type " + typeErr.Type.String()})
	case errors.As(err, &syntaxErr), strings.Contains(err.Error(), "EOF"):
		details = append(details, dto.ValidationDetail{Field: BodyField, Message: "Malformed JSON body"})
	}

	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 400 validation response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, getRequestIDFromContext(c)))
}

func getRequestIDFromContext(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	if id := c.GetHeader(RequestIDHeader); id != "" && len(id) <= MaxRequestIDLength {
		return id
	}
	return ""
}

func locationChoices() string {
	names := make([]string, 0, len(order.Locations()))
	for _, l := range order.Locations() {
		names = append(names, string(l))
	}
	return strings.Join(names, ", ")
}

func getValidationMessage(e validator.FieldError) string {
	kind := e.Kind()
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "location":
		return "Must be one of: " + locationChoices()
	case "min":
		switch kind {
		case reflect.String:
			return "Must be at least " + e.Param() + " characters"
		case reflect.Slice, reflect.Array:
			return "Must contain at least " + e.Param() + " items"
		}
		return "Must be at least " + e.Param()
	case "max":
		switch kind {
		case reflect.String:
			return "Must be at most " + e.Param() + " characters"
		case reflect.Slice, reflect.Array:
			return "Must contain at most " + e.Param() + " items"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "numeric":
		return "Must be numeric"
	default:
		return "Invalid value"
	}
}
