package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/lateleria/storefront/internal/interfaces/http/dto"
)

var setupValidatorOnce sync.Once

// SetupValidator makes validation errors report JSON (or form) field names
func SetupValidator() {
	setupValidatorOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(fieldName)
		}
	})
}

func fieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
	}
	if name == "" {
		name = fld.Name
	}
	return name
}

// FormatValidationErrors formats binding errors into a standard response.
// Malformed JSON yields a response without field details.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
				Tag:     e.Tag(),
			})
		}
	}

	return dto.NewValidationErrorResponse("Los datos enviados no son válidos", requestID, details)
}

// HandleValidationError returns a validation error response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, c.GetString("request_id")))
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	isString := e.Kind() == reflect.String
	switch e.Tag() {
	case "required":
		return "Este campo es obligatorio"
	case "email":
		return "Formato de email no válido"
	case "min":
		if isString {
			return "Debe tener al menos " + e.Param() + " caracteres"
		}
		return "Debe ser como mínimo " + e.Param()
	case "max":
		if isString {
			return "Debe tener como máximo " + e.Param() + " caracteres"
		}
		return "Debe ser como máximo " + e.Param()
	case "len":
		return "Debe tener exactamente " + e.Param() + " caracteres"
	case "uuid":
		return "Identificador no válido"
	case "oneof":
		return "Debe ser uno de: " + e.Param()
	case "gte":
		return "Debe ser mayor o igual que " + e.Param()
	case "lte":
		return "Debe ser menor o igual que " + e.Param()
	case "url":
		return "URL no válida"
	case "numeric":
		return "Debe ser numérico"
	default:
		return "Valor no válido"
	}
}
