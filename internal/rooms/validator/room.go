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
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

func (v ValidationErrors) Fields() map[string]any {
	fields := make(map[string]any, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return fields
}

type RoomValidator struct {
	validate *validator.Validate
	log      *logger.Logger
}

func NewRoomValidator(log *logger.Logger) *RoomValidator {
	return &RoomValidator{
		validate: validator.New(),
		log:      log,
	}
}

func (v *RoomValidator) ValidateCreate(req *model.RoomCreate) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translate(validationErrs)
		}
		return err
	}

	if *req.Capacity <= 0 {
		return ValidationErrors{
			ValidationError{Field: "capacity", Message: "must be greater than 0"},
		}
	}
	return nil
}

func (v *RoomValidator) ValidateUpdate(upd *model.RoomUpdate) error {
	if upd.Empty() {
		return ValidationErrors{
			ValidationError{
				Field:   "fields",
				Message: "at least one of name, capacity, equipment, location, is_active is required",
			},
		}
	}

	var errs ValidationErrors
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "must not be blank"})
	}
	if upd.Capacity != nil && *upd.Capacity <= 0 {
		errs = append(errs, ValidationError{Field: "capacity", Message: "must be greater than 0"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *RoomValidator) translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors
	for _, err := range errs {
		field := strings.ToLower(err.Field())
		message := err.Error()
		if err.Tag() == "required" {
			message = fmt.Sprintf("%s is required", field)
		}
		validationErrors = append(validationErrors, ValidationError{
			Field:   field,
			Message: message,
		})
	}
	return validationErrors
}
