package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/facturar/backend/internal/domain/invoicing"
	"github.com/facturar/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// SetupValidator names fields after their json/form tags and registers the
// ledger validators on gin's validator engine.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	return RegisterValidators(v)
}

// RegisterValidators adds payment_terms, invoice_status and decimal_nonnegative to v
func RegisterValidators(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	// decimals are validated through their string form
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	validators := map[string]validator.Func{
		"payment_terms":       validatePaymentTerms,
		"invoice_status":      validateInvoiceStatus,
		"decimal_nonnegative": validateDecimalNonNegative,
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func validatePaymentTerms(fl validator.FieldLevel) bool {
	_, err := invoicing.ParsePaymentTerms(fl.Field().String())
	return err == nil
}

func validateInvoiceStatus(fl validator.FieldLevel) bool {
	return invoicing.Status(fl.Field().String()).IsValid()
}

func validateDecimalNonNegative(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && !d.IsNegative()
}

// ValidationDetails converts validator errors into response details.
// It returns nil for errors that are not field validation failures.
func ValidationDetails(err error) []dto.ValidationDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Message: validationMessage(e),
		})
	}
	return details
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "uuid":
		return "Must be a valid UUID"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "payment_terms":
		return "Must be one of cash, credit, installment"
	case "invoice_status":
		return "Must be one of pending, partial, paid"
	case "decimal_nonnegative":
		return "Must be a non-negative amount"
	}
	return "Invalid value"
}
