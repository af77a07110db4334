package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/barcodeprint/backend/internal/domain/barcode"
	"github.com/barcodeprint/backend/internal/interfaces/http/dto"
)

// TagBarcodeCode accepts a 12-digit code, grouped with spaces or not
const TagBarcodeCode = "barcode_code"

// SetupValidator makes gin's validator report fields by their json or form
// name and registers the barcode_code rule
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			switch name {
			case "-":
				return ""
			case "":
				continue
			}
			return name
		}
		return ""
	})
	registerBarcodeValidations(v)
}

func registerBarcodeValidations(v *validator.Validate) {
	// only fails on an empty tag or nil func
	_ = v.RegisterValidation(TagBarcodeCode, func(fl validator.FieldLevel) bool {
		_, err := barcode.Normalize(fl.Field().String())
		return err == nil
	})
}

// FormatValidationErrors lists each failed field with a readable message
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			details = append(details, dto.ValidationDetail{Field: e.Field(), Message: getValidationMessage(e)})
		}
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

var fixedMessages = map[string]string{
	"required":     "This field is required",
	TagBarcodeCode: "Must be a 12-digit barcode code",
	"uuid":         "Invalid UUID format",
	"oneof":        "Must be one of: ",
	"gte":          "Must be greater than or equal to ",
	"lte":          "Must be less than or equal to ",
}

func getValidationMessage(e validator.FieldError) string {
	switch tag := e.Tag(); tag {
	case "min":
		return "Must " + sizeBound(e.Kind(), "at least ") + e.Param() + sizeUnit(e.Kind())
	case "max":
		return "Must " + sizeBound(e.Kind(), "at most ") + e.Param() + sizeUnit(e.Kind())
	case "oneof", "gte", "lte":
		return fixedMessages[tag] + e.Param()
	default:
		if msg, ok := fixedMessages[tag]; ok {
			return msg
		}
		return "Invalid value"
	}
}

func sizeBound(kind reflect.Kind, bound string) string {
	if kind == reflect.Slice {
		return "contain " + bound
	}
	return "be " + bound
}

func sizeUnit(kind reflect.Kind) string {
	switch kind {
	case reflect.String:
		return " characters"
	case reflect.Slice:
		return " items"
	}
	return ""
}
