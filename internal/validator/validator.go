package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/projectk/projectk-backend/internal/model"
)

// BodyField is the key used when an error concerns the request body as a whole.
const BodyField = "body"

var (
	// trans is the singleton English translator for validation errors.
	trans ut.Translator
	once  sync.Once
)

// Setup registers the validator with English translations and the custom
// "subject" tag on Gin's binding engine. Safe to call more than once.
func Setup() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*govalidator.Validate)
		if !ok {
			return
		}

		// Use JSON (or form) tag name for field names in error messages.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "" {
				tag = fld.Tag.Get("form")
			}
			name := strings.SplitN(tag, ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("subject", func(fl govalidator.FieldLevel) bool {
			return model.Subject(fl.Field().String()).IsValid()
		})

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		_ = v.RegisterTranslation("subject", trans,
			func(t ut.Translator) error {
				return t.Add("subject", "{0} must be one of "+subjectList(), true)
			},
			func(t ut.Translator, fe govalidator.FieldError) string {
				msg, _ := t.T("subject", fe.Field())
				return msg
			},
		)
	})
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name → human-readable error message. Decoding errors are attributed
// to the offending field where the decoder reports one.
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if trans != nil {
				fields[fe.Field()] = fe.Translate(trans)
			} else {
				fields[fe.Field()] = fe.Error()
			}
		}
		return fields
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			fields[BodyField] = "must be a JSON " + jsonTypeName(typeErr.Type)
		} else {
			fields[typeErr.Field] = fmt.Sprintf("must be of type %s, got %s", jsonTypeName(typeErr.Type), typeErr.Value)
		}
		return fields
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		fields[BodyField] = fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)
		return fields
	}

	if errors.Is(err, io.EOF) {
		fields[BodyField] = "request body is required"
		return fields
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		fields[BodyField] = "request body is truncated"
		return fields
	}

	fields[BodyField] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindQuery binds and validates query parameters into dst.
func BindQuery(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindQuery(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Ptr:
		return jsonTypeName(t.Elem())
	default:
		return t.String()
	}
}

func subjectList() string {
	names := make([]string, 0, len(model.SchoolSubjects)+2)
	for _, s := range model.SchoolSubjects {
		names = append(names, string(s))
	}
	names = append(names, string(model.SubjectMindfulness), string(model.SubjectGeneral))
	return strings.Join(names, ", ")
}
