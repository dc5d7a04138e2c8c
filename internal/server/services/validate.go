package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/go-playground/validator/v10"
)

const (
	maxEmailLength       = 254
	maxDisplayNameLength = 100
)

// inputValidator checks request shape before anything touches the store.
type inputValidator struct {
	v               *validator.Validate
	passwordMinRule string
}

func newInputValidator(passwordMinLength int) *inputValidator {
	return &inputValidator{
		v:               validator.New(validator.WithRequiredStructEnabled()),
		passwordMinRule: fmt.Sprintf("required,min=%d", passwordMinLength),
	}
}

// normalizeEmail trims surrounding whitespace. Case is preserved: emails
// are compared exactly as stored.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func (iv *inputValidator) email(email string) error {
	return iv.check("email", email, fmt.Sprintf("required,email,max=%d", maxEmailLength))
}

// id rejects malformed identity ids before they reach a uuid column.
func (iv *inputValidator) id(id string) error {
	return iv.check("id", id, "required,uuid")
}

func (iv *inputValidator) newPassword(password string) error {
	return iv.check("password", password, iv.passwordMinRule)
}

func (iv *inputValidator) displayName(name string) error {
	return iv.check("displayName", name, fmt.Sprintf("max=%d", maxDisplayNameLength))
}

func (iv *inputValidator) register(in RegisterInput) error {
	return errors.Join(
		iv.email(in.Email),
		iv.newPassword(in.Password),
		iv.displayName(in.DisplayName),
	)
}

func (iv *inputValidator) login(in LoginInput) error {
	return errors.Join(
		iv.email(in.Email),
		iv.check("password", in.Password, "required"),
	)
}

func (iv *inputValidator) check(field, value, rules string) error {
	err := iv.v.Var(value, rules)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return fmt.Errorf("%w: %s %s=%s", common.ErrInvalidInput, field, fe.Tag(), fe.Param())
		}
		return fmt.Errorf("%w: %s %s", common.ErrInvalidInput, field, fe.Tag())
	}
	return fmt.Errorf("%w: %s", common.ErrInvalidInput, field)
}
