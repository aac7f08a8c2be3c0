package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate    = newValidator()
	handleRegex = regexp.MustCompile(`^[a-z0-9_]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return handleRegex.MatchString(fl.Field().String())
	})
	return v
}

// validateInput 校验输入结构体，第一个失败字段写入错误信息
func validateInput(in interface{}) error {
	if err := validate.Struct(in); err != nil {
		return validationError(err)
	}
	return nil
}

func validateBody(body string) error {
	if err := validate.Var(body, "notblank,max=20000"); err != nil {
		return fmt.Errorf("%w: body must not be empty", ErrValidation)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return fmt.Errorf("%w: %s failed %q", ErrValidation, f.Field(), f.Tag())
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}
