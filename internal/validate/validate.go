// Package validate holds the request schemas and turns binding failures into
// the message of the first rule that failed.
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"finance-tracker-backend/internal/apperr"
)

const fallbackMessage = "Invalid input"

var (
	hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	once     sync.Once
)

// Register installs the custom rules on gin's validator. It is safe to call
// more than once.
func Register() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		// Money fields are validated through their float value.
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			d, ok := field.Interface().(decimal.Decimal)
			if !ok {
				return nil
			}
			f, _ := d.Float64()
			return f
		}, decimal.Decimal{})
		_ = v.RegisterValidation("hexcolor6", func(fl validator.FieldLevel) bool {
			return hexColor.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := ParseDate(fl.Field().String())
			return err == nil
		})
	})
}

// Bind decodes the JSON body into dst and validates it. Failures come back as
// apperr validation errors carrying the first violated rule's message.
func Bind(c *gin.Context, dst any) error {
	Register()
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.Invalid(Message(dst, err))
	}
	return nil
}

// Struct validates an already decoded value.
func Struct(dst any) error {
	Register()
	if err := binding.Validator.ValidateStruct(dst); err != nil {
		return apperr.Invalid(Message(dst, err))
	}
	return nil
}

// Message picks the message for the first failing rule. Messages come from
// the `msg` struct tag, written as "rule=text;rule=text".
func Message(dst any, err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fallbackMessage
	}
	fe := verrs[0]
	t := reflect.TypeOf(dst)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fallbackMessage
	}
	sf, ok := t.FieldByName(fe.StructField())
	if !ok {
		return fallbackMessage
	}
	for _, pair := range strings.Split(sf.Tag.Get("msg"), ";") {
		rule, text, found := strings.Cut(pair, "=")
		if found && rule == fe.Tag() {
			return text
		}
	}
	return fallbackMessage
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseDate accepts RFC 3339 timestamps and bare dates. Values without a zone
// are read in server local time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// IsDateOnly reports whether s is a bare calendar date.
func IsDateOnly(s string) bool {
	_, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	return err == nil
}
