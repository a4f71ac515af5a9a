package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"user_admin/internal/domain"
	"user_admin/pkg/password"

	"github.com/go-playground/validator/v10"
)

type userValidator struct {
	validate *validator.Validate
}

func newUserValidator() *userValidator {
	v := validator.New()
	// Report fields by their wire names; Password is hidden from JSON but still reported.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name[:1]) + fld.Name[1:]
		}
		return name
	})
	return &userValidator{validate: v}
}

// check returns one message per missing or malformed field; empty means valid.
func (uv *userValidator) check(user *domain.User) map[string]string {
	fieldErrors := make(map[string]string)
	if user == nil {
		fieldErrors["userName"] = "userName is required"
		fieldErrors["password"] = "password is required"
		fieldErrors["email"] = "email is required"
		return fieldErrors
	}

	err := uv.validate.Struct(user)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fieldErrors[fe.Field()] = fieldMessage(fe)
		}
	}
	if len(user.Password) > password.MaxBytes {
		fieldErrors["password"] = fmt.Sprintf("password must be at most %d bytes", password.MaxBytes)
	}

	for _, r := range user.Roles {
		if _, ok := domain.ParseRoleName(string(r.Name)); !ok {
			fieldErrors["roles"] = "unknown role " + string(r.Name)
			break
		}
	}
	return fieldErrors
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	default:
		return fe.Field() + " is invalid"
	}
}

// normalizeCandidate copies the candidate with trimmed identity fields and canonical role names.
func normalizeCandidate(candidate *domain.User) *domain.User {
	if candidate == nil {
		return nil
	}
	user := &domain.User{
		UserName: strings.TrimSpace(candidate.UserName),
		Password: candidate.Password,
		Email:    strings.ToLower(strings.TrimSpace(candidate.Email)),
	}
	for _, r := range candidate.Roles {
		name, ok := domain.ParseRoleName(string(r.Name))
		if !ok {
			name = r.Name
		}
		user.Roles = append(user.Roles, domain.Role{ID: r.ID, Name: name})
	}
	return user
}

func hasElevatedRole(roles []domain.Role) bool {
	for _, r := range roles {
		if r.Name.IsElevated() {
			return true
		}
	}
	return false
}
