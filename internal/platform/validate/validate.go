// Package validate owns the process validator with english messages and json field names
// HTTP binding, YAML reports and chart configs all validate through it
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	perr "customerlens/internal/platform/errors"
	"customerlens/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldLevel aliases validator.FieldLevel
type FieldLevel = validator.FieldLevel

// StructLevel aliases validator.StructLevel
type StructLevel = validator.StructLevel

// Svc holds the validator and its translator
type Svc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	once sync.Once
	svc  *Svc
)

// Get returns the singleton, building it on first use
func Get() *Svc {
	once.Do(func() {
		loc := en.New()
		trans, _ := ut.New(loc, loc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonName)
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		short(v, trans, "min", "{0} must be at least {1}")
		short(v, trans, "max", "{0} must be at most {1}")
		short(v, trans, "oneof", "{0} must be one of [{1}]")

		_ = v.RegisterValidation("regexp", isRegexp)
		short(v, trans, "regexp", "{0} must be a valid regular expression")

		svc = &Svc{Validator: v, Translator: trans}
	})
	return svc
}

// RegisterStruct adds a struct level rule for the given types
func RegisterStruct(fn func(StructLevel), types ...any) {
	Get().Validator.RegisterStructValidation(fn, types...)
}

// Struct validates v and returns a Validation error naming the first bad field
func Struct(v any) error {
	err := Get().Validator.Struct(v)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		logger.Named("validate").Error().Err(inv).Msg("validator internal error")
		return perr.Internalf("validation error")
	}
	field, msg := FieldAndMessage(err)
	return perr.WithField(perr.Validationf("%s", msg), field)
}

// FieldAndMessage returns the namespace of the first failing field and its translated message
// the namespace drops the root type, eg "filter.op"
func FieldAndMessage(err error) (field, message string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		return ns, fe.Translate(Get().Translator)
	}
	if err == nil {
		return "", ""
	}
	return "", err.Error()
}

func jsonName(fld reflect.StructField) string {
	for _, key := range []string{"json", "yaml"} {
		tag := fld.Tag.Get(key)
		if tag == "-" {
			return fld.Name
		}
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			return name
		}
	}
	return fld.Name
}

func isRegexp(fl FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, err := regexp.Compile(fl.Field().String())
	return err == nil
}

func short(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(u ut.Translator) error { return u.Add(tag, text, true) },
		func(u ut.Translator, fe validator.FieldError) string {
			msg, _ := u.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}
