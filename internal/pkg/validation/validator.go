// Package validation checks request bodies with struct tags.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validator satisfies fiber's StructValidator so c.Bind().Body validates
// after decoding.
type Validator struct {
	once sync.Once
	v    *validator.Validate
}

func New() *Validator {
	return &Validator{}
}

func (v *Validator) Validate(out any) error {
	return v.engine().Struct(out)
}

func (v *Validator) engine() *validator.Validate {
	v.once.Do(func() {
		v.v = validator.New(validator.WithRequiredStructEnabled())
		v.v.RegisterTagNameFunc(jsonFieldName)
	})
	return v.v
}

// Fields flattens validation failures into json field -> failed rule. ok is
// false when err is not a validation failure.
func Fields(err error) (map[string]string, bool) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, false
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out[fieldPath(fe.Namespace())] = rule
	}
	return out, true
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// fieldPath drops the root struct name from a namespace like
// "generateQuizRequest.skills[0].proficiency".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
