// Package validate wraps a singleton go-playground validator with english
// translations and yaml/json tag names for messages
package validate

import (
	"reflect"
	"strings"
	"sync"

	perr "triagebot/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Svc holds a singleton validator and translator
type Svc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	once sync.Once
	svc  *Svc
)

// Get returns the validator singleton, initializing on first use
func Get() *Svc {
	once.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// prefer yaml, then json tag names in messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, key := range []string{"yaml", "json"} {
				tag := fld.Tag.Get(key)
				if idx := strings.Index(tag, ","); idx >= 0 {
					tag = tag[:idx]
				}
				if tag == "-" {
					return ""
				}
				if tag != "" {
					return tag
				}
			}
			return fld.Name
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)

		_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		register(v, trans, "nonblank", "{0} must not be blank")
		registerMin(v, trans)

		svc = &Svc{Validator: v, Translator: trans}
	})
	return svc
}

// Struct validates v and maps the first failure to a project error
// code is the ErrorCode to stamp (callers use Validation or Config)
func Struct(v any, code perr.ErrorCode) error {
	err := Get().Validator.Struct(v)
	if err == nil {
		return nil
	}
	field, msg := FieldAndMessage(err)
	return perr.WithField(perr.Newf(code, "%s", msg), field)
}

// FieldAndMessage returns the first failing field path (root struct stripped) and its translated message
func FieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	if inv, ok := err.(*validator.InvalidValidationError); ok {
		return "", inv.Error()
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			ns := fe.Namespace()
			if i := strings.Index(ns, "."); i >= 0 {
				ns = ns[i+1:]
			}
			msg := fe.Translate(Get().Translator)
			if fe.Field() != ns {
				msg = strings.Replace(msg, fe.Field(), ns, 1)
			}
			return ns, msg
		}
	}
	return "", err.Error()
}

func register(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(tag, fe.Field())
			return msg
		},
	)
}

// registerMin shortens min messages and words them as item counts for slices
func registerMin(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterTranslation("min", trans,
		func(ut ut.Translator) error {
			if err := ut.Add("min", "{0} must be at least {1}", true); err != nil {
				return err
			}
			return ut.Add("min-items", "{0} must contain at least {1} item(s)", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			key := "min"
			switch fe.Kind() {
			case reflect.Slice, reflect.Array, reflect.Map:
				key = "min-items"
			}
			msg, _ := ut.T(key, fe.Field(), fe.Param())
			return msg
		},
	)
}
