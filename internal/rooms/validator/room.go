package validator

import (
	"errors"
	"fmt"
	"reflect"
	roomserrors "staydesk/internal/rooms/errors"
	"staydesk/pkg/logger"
	"staydesk/pkg/model"
	"staydesk/pkg/sanitizer"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

// maxPrice is the first value that no longer fits 10 digits with 2 decimals.
var maxPrice = decimal.New(1, model.PriceMaxDigits-model.PriceScale)

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"-"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Missing lists the fields that failed only because they were absent.
func (v ValidationErrors) Missing() []string {
	var fields []string
	for _, err := range v {
		if err.Tag == "required" {
			fields = append(fields, err.Field)
		}
	}
	return fields
}

type RoomValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRoomValidator(log *logger.Logger) *RoomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		log.Fatal("Failed to register 'notblank' validator", "error", err)
	}
	if err := v.RegisterValidation("price", validatePrice); err != nil {
		log.Fatal("Failed to register 'price' validator", "error", err)
	}

	log.Debug("Room validator initialized successfully")

	return &RoomValidator{
		validate: v,
		logger:   log,
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func validatePrice(fl validator.FieldLevel) bool {
	_, err := ParsePrice(fl.Field().String())
	return err == nil
}

// ParsePrice converts the textual price into a decimal, enforcing the
// column's precision: non-negative, at most 2 decimal places, below 10^8.
func ParsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(sanitizer.SanitizeNumber(raw))
	if err != nil {
		return decimal.Decimal{}, roomserrors.ErrPriceFormat
	}
	if price.IsNegative() {
		return decimal.Decimal{}, roomserrors.ErrPriceNegative
	}
	if !price.Equal(price.Round(model.PriceScale)) {
		return decimal.Decimal{}, roomserrors.ErrPriceScale
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return decimal.Decimal{}, roomserrors.ErrPriceTooLarge
	}
	return price.Round(model.PriceScale), nil
}

// Validate checks a create request. Descriptions are expected to be
// sanitized already.
func (v *RoomValidator) Validate(req *model.CreateRoomRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(req, validationErrs)
		}
		return err
	}
	return nil
}

func (v *RoomValidator) translateValidationErrors(req *model.CreateRoomRequest, errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "notblank":
			message = fmt.Sprintf("%s cannot be empty", err.Field())
		case "price":
			message = roomserrors.ErrPriceFormat.Error()
			if req.PricePerNight != nil {
				if _, perr := ParsePrice(req.PricePerNight.String()); perr != nil {
					message = perr.Error()
				}
			}
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Tag:     err.Tag(),
			Message: message,
		})
	}

	return validationErrors
}
