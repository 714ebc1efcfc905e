// Package validation checks request structs with go-playground/validator and
// reports failures as a common.ValidationError keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

var bookPagePath = regexp.MustCompile(`^/?books/[a-zA-Z0-9_-]+/\d+\.jpg$`)

var messages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"min":      "must be at least %s",
	"max":      "must be at most %s",
	"gte":      "must be greater than or equal to %s",
	"lte":      "must be less than or equal to %s",
	"oneof":    "must be one of %s",
	"bookpage": "must be a URL or /books/<folder>/<page>.jpg",
	"role":     "must be ADMIN or STUDENT",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("bookpage", func(fl validator.FieldLevel) bool {
		return IsBookPage(fl.Field().String())
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		s := strings.ToUpper(strings.TrimSpace(fl.Field().String()))
		return s == "ADMIN" || s == "STUDENT"
	})
	return v
}

// IsBookPage reports whether p is an absolute http(s) URL or a
// /books/<folder>/<page>.jpg path.
func IsBookPage(p string) bool {
	if bookPagePath.MatchString(p) {
		return true
	}
	u, err := url.Parse(p)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Struct validates s. It returns nil or a *common.ValidationError.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return common.NewValidationError("body", err.Error())
	}

	out := &common.ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, e := range verrs {
		field := fieldPath(e)
		if _, seen := out.Fields[field]; !seen {
			out.Fields[field] = message(e)
		}
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace,
// "registerRequest.email" becomes "email" and "pages[2]" stays as is.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func message(e validator.FieldError) string {
	msg, ok := messages[e.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, e.Param())
	}
	return msg
}
