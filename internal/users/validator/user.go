package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"roomly/pkg/logger"
	"roomly/pkg/model"
)

var usernameRegex = regexp.MustCompile(`^[a-z0-9_.-]{3,64}$`)

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

type UserValidator struct {
	validate *validator.Validate
	log      *logger.Logger
}

func NewUserValidator(log *logger.Logger) *UserValidator {
	return &UserValidator{
		validate: validator.New(),
		log:      log,
	}
}

// ValidateRegister runs after normalization, so the username pattern is
// matched against the lowercased form.
func (v *UserValidator) ValidateRegister(req *model.RegisterRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translate(validationErrs)
		}
		return err
	}

	var errs ValidationErrors
	if !usernameRegex.MatchString(req.Username) {
		errs = append(errs, ValidationError{
			Field:   "username",
			Message: "must be 3-64 characters of a-z, 0-9, '_', '.' or '-'",
		})
	}
	if !strings.Contains(req.Email, "@") {
		errs = append(errs, ValidationError{
			Field:   "email",
			Message: "must be a valid email address",
		})
	}
	if len(req.Password) < 8 {
		errs = append(errs, ValidationError{
			Field:   "password",
			Message: "must be at least 8 characters",
		})
	}
	if req.Role != "" && !model.ValidRole(req.Role) {
		errs = append(errs, ValidationError{
			Field:   "role",
			Message: "must be one of: user, admin, moderator",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *UserValidator) ValidateLogin(req *model.LoginRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translate(validationErrs)
		}
		return err
	}
	return nil
}

func (v *UserValidator) ValidateSelfUpdate(upd *model.UserSelfUpdate) error {
	if upd.Email == "" && upd.FullName == "" && upd.Password == "" {
		return ValidationErrors{
			ValidationError{
				Field:   "fields",
				Message: "at least one of email, full_name, password is required",
			},
		}
	}

	var errs ValidationErrors
	if upd.Email != "" && !strings.Contains(upd.Email, "@") {
		errs = append(errs, ValidationError{
			Field:   "email",
			Message: "must be a valid email address",
		})
	}
	if upd.Password != "" && len(upd.Password) < 8 {
		errs = append(errs, ValidationError{
			Field:   "password",
			Message: "must be at least 8 characters",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *UserValidator) ValidateAdminUpdate(upd *model.UserAdminUpdate) error {
	if upd.Email == "" && upd.FullName == "" && upd.Password == "" && upd.Role == "" {
		return ValidationErrors{
			ValidationError{
				Field:   "fields",
				Message: "at least one of email, full_name, password, role is required",
			},
		}
	}

	var errs ValidationErrors
	if upd.Email != "" && !strings.Contains(upd.Email, "@") {
		errs = append(errs, ValidationError{
			Field:   "email",
			Message: "must be a valid email address",
		})
	}
	if upd.Password != "" && len(upd.Password) < 8 {
		errs = append(errs, ValidationError{
			Field:   "password",
			Message: "must be at least 8 characters",
		})
	}
	if upd.Role != "" && !model.ValidRole(upd.Role) {
		errs = append(errs, ValidationError{
			Field:   "role",
			Message: "must be one of: user, admin, moderator",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *UserValidator) translate(errs validator.ValidationErrors) ValidationErrors {
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
