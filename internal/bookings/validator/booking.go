package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"roomly/pkg/logger"
	"roomly/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
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
	return strings.Join(messages, "; ")
}

// Fields returns the errors keyed by field, for the error envelope.
func (v ValidationErrors) Fields() map[string]any {
	fields := make(map[string]any, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return fields
}

type BookingValidator struct {
	validate *validator.Validate
	log      *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validator.New(),
		log:      log,
	}
}

// ValidateCreate checks field presence on a create request. Timestamp
// contents are parsed later by the service, so a missing field and a
// malformed one produce distinct messages.
func (v *BookingValidator) ValidateCreate(req *model.BookingCreate) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translate(validationErrs)
		}
		return err
	}
	return nil
}

// ValidateUpdate requires at least one updatable field.
func (v *BookingValidator) ValidateUpdate(upd *model.BookingUpdate) error {
	if upd.Empty() {
		return ValidationErrors{
			ValidationError{
				Field:   "fields",
				Message: "at least one of room_id, start_time, end_time is required",
			},
		}
	}
	return nil
}

func (v *BookingValidator) translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		field := jsonField(err.Field())
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", field, err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   field,
			Message: message,
		})
	}

	return validationErrors
}

// jsonField maps the struct field names validator reports back to the
// wire names clients sent.
func jsonField(name string) string {
	switch name {
	case "UserID":
		return "user_id"
	case "RoomID":
		return "room_id"
	case "StartTime":
		return "start_time"
	case "EndTime":
		return "end_time"
	}
	return strings.ToLower(name)
}
