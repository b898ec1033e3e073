package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/petsupply/storefront/internal/interfaces/http/dto"
)

const validationFailed = "Request validation failed"

// SetupValidator makes gin's validator name fields by their json (or uri) tag,
// so error details match what the client sent
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "uri"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return ""
	})
}

// HandleValidationError answers 400 for a failed bind
func HandleValidationError(c *gin.Context, err error) {
	resp := FormatValidationErrors(err, GetRequestID(c))
	SetErrorCode(c, resp.Error.Code)
	c.JSON(http.StatusBadRequest, resp)
}

// FormatValidationErrors turns a bind error into the error envelope: unreadable
// JSON is ERR_INVALID_JSON, everything else ERR_VALIDATION with per-field details
func FormatValidationErrors(err error, requestID string) dto.Response {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		fieldErrs validator.ValidationErrors
	)
	switch {
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidJSON, "Request body is not valid JSON", requestID)
	case errors.As(err, &typeErr):
		return dto.NewValidationErrorResponse(validationFailed, requestID, []dto.ValidationDetail{
			{Field: typeErr.Field, Message: "Must be a " + typeErr.Type.String()},
		})
	case errors.As(err, &fieldErrs):
		details := make([]dto.ValidationDetail, len(fieldErrs))
		for i, fe := range fieldErrs {
			details[i] = dto.ValidationDetail{Field: fe.Field(), Message: fieldMessage(fe)}
		}
		return dto.NewValidationErrorResponse(validationFailed, requestID, details)
	}
	return dto.NewValidationErrorResponse(validationFailed, requestID, nil)
}

// boundPhrases words the comparison tags used on request DTOs
var boundPhrases = map[string]string{
	"gt":  "Must be greater than ",
	"gte": "Must be greater than or equal to ",
	"lt":  "Must be less than ",
	"lte": "Must be less than or equal to ",
}

func fieldMessage(fe validator.FieldError) string {
	if phrase, ok := boundPhrases[fe.Tag()]; ok {
		return phrase + fe.Param()
	}
	isText := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "min", "max":
		bound := "at least "
		if fe.Tag() == "max" {
			bound = "at most "
		}
		if isText {
			return "Must be " + bound + fe.Param() + " characters"
		}
		return "Must be " + bound + fe.Param()
	}
	return "Invalid value"
}
