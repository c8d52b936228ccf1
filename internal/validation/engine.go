package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/pulseboard-backend/internal/domain/engagement"
	"github.com/yungbote/pulseboard-backend/internal/domain/social"
)

var (
	engineOnce sync.Once
	engineInst *validator.Validate

	clockRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

func engine() *validator.Validate {
	engineOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
			_, ok := social.ParsePlatform(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			return clockRe.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("lookback", func(fl validator.FieldLevel) bool {
			return engagement.LookbackPeriod(fl.Field().Int()).Valid()
		})
		engineInst = v
	})
	return engineInst
}

// decode reads a JSON object into dst. Unknown keys are dropped. Type
// mismatches are recorded on verr so structural validation can still run
// over the fields that did decode.
func decode(raw []byte, dst any, verr *Error) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	if trimmed[0] != '{' {
		verr.add("", "object", "", "expected a JSON object")
		return false
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			path := typeErr.Field
			if path == "" {
				path = typeErr.Struct
			}
			verr.add(path, "type", typeErr.Type.String(), fmt.Sprintf("must be of type %s", jsonKind(typeErr.Type)))
			return true
		}
		verr.add("", "json", "", "malformed JSON: "+err.Error())
		return false
	}
	return true
}

// check runs struct validation and appends each failure to verr.
func check(v any, verr *Error) {
	err := engine().Struct(v)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.add("", "invalid", "", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		verr.add(fieldPath(fe.Namespace()), fe.Tag(), fe.Param(), message(fe))
	}
}

// fieldPath strips the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isList(fe.Kind()) {
			return fmt.Sprintf("must contain at least %s entries", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isList(fe.Kind()) {
			return fmt.Sprintf("must contain at most %s entries", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "unique":
		return "must not contain duplicates"
	case "url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email address"
	case "timezone":
		return "must be an IANA timezone"
	case "iso4217":
		return "must be an ISO-4217 currency code"
	case "platform":
		return "must be a supported platform"
	case "hhmm":
		return "must be a time of day in HH:MM"
	case "lookback":
		return "must be one of [30 90 180 365]"
	default:
		return fmt.Sprintf("failed %q", fe.Tag())
	}
}

func isList(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Array || k == reflect.Map
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.String()
	}
}
