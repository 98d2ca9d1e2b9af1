// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package schema

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const uuidVersionTag = "uuid_version"

var defaultValidator = sync.OnceValue(newValidator)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// the builtin uuid tags only accept lower case hex, this one
	// accepts any case and leaves normalizing to the field.
	err := v.RegisterValidation(uuidVersionTag, validateUUIDVersion)
	if err != nil {
		panic(err)
	}
	return v
}

func validateUUIDVersion(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 36 {
		return false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	if u.Variant() != uuid.RFC4122 {
		return false
	}
	if fl.Param() == "" {
		return true
	}
	version, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return u.Version() == uuid.Version(version)
}

func validateVar(v any, tag string) Issues {
	err := defaultValidator().Var(v, tag)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Issues{{
			Code:    CodeInvalidType,
			Message: err.Error(),
		}}
	}

	iss := make(Issues, 0, len(verrs))
	for _, fe := range verrs {
		iss = append(iss, issueOf(fe))
	}
	return iss
}

func issueOf(fe validator.FieldError) Issue {
	switch fe.Tag() {
	case "min":
		return Issue{
			Code:    CodeTooSmall,
			Message: fmt.Sprintf("must contain at least %s character(s)", fe.Param()),
			Params:  map[string]any{"minimum": paramInt(fe.Param())},
		}
	case "max":
		return Issue{
			Code:    CodeTooBig,
			Message: fmt.Sprintf("must contain at most %s character(s)", fe.Param()),
			Params:  map[string]any{"maximum": paramInt(fe.Param())},
		}
	case "oneof":
		return Issue{
			Code:    CodeInvalidEnum,
			Message: fmt.Sprintf("must be one of [%s]", fe.Param()),
			Params:  map[string]any{"options": fe.Param()},
		}
	case "email":
		return invalidFormat("email", "invalid email address")
	case uuidVersionTag:
		return invalidFormat("uuid", "invalid uuid")
	case "datetime":
		return invalidFormat("datetime", fmt.Sprintf("must match the layout %s", fe.Param()))
	default:
		return invalidFormat(fe.Tag(), fmt.Sprintf("failed the %s check", fe.Tag()))
	}
}

func invalidFormat(format, msg string) Issue {
	return Issue{
		Code:    CodeInvalidFormat,
		Message: msg,
		Params:  map[string]any{"format": format},
	}
}

func paramInt(s string) any {
	n, err := strconv.Atoi(s)
	if err != nil {
		return s
	}
	return n
}
