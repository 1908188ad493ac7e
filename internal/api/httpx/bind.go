package httpx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/buildboard/buildboard-backend/internal/apperr"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Clearable *string fields are tagged omitnil,uuid_or_empty or
// omitnil,date_or_empty: nil leaves the column alone and "" clears it.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterValidations(v)
	}
}

// RegisterValidations adds uuid_or_empty and date_or_empty to v.
func RegisterValidations(v *validator.Validate) {
	_ = v.RegisterValidation("uuid_or_empty", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := uuid.Parse(s)
		return err == nil
	})
	_ = v.RegisterValidation("date_or_empty", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := time.Parse(DateLayout, s)
		return err == nil
	})
}

// BindJSON decodes and validates the body into dst. On failure it writes a
// 400 response and returns false.
func BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		Fail(c, apperr.Validation(describe(err)))
		return false
	}
	return true
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid body"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "uuid", "uuid4", "uuid_or_empty":
		return field + " must be a valid id"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	case "date_or_empty":
		return fmt.Sprintf("%s must match %s", field, DateLayout)
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "url":
		return field + " must be a valid url"
	default:
		return field + " is invalid"
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && s[i-1] >= 'a' && s[i-1] <= 'z' {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParamID returns the named path parameter when it is a UUID. Otherwise it
// writes a 400 response and returns false.
func ParamID(c *gin.Context, name string) (string, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := uuid.Parse(raw)
	if err != nil {
		Fail(c, apperr.Validation("invalid "+name))
		return "", false
	}
	return id.String(), true
}

// QueryID reads an optional UUID query parameter.
func QueryID(c *gin.Context, name string) (*string, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		Fail(c, apperr.Validation("invalid "+name))
		return nil, false
	}
	s := id.String()
	return &s, true
}

// Page reads limit/offset query parameters.
func Page(c *gin.Context) (postgres.Page, bool) {
	var p postgres.Page
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			Fail(c, apperr.Validation("invalid limit"))
			return p, false
		}
		p.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			Fail(c, apperr.Validation("invalid offset"))
			return p, false
		}
		p.Offset = n
	}
	return p.Normalize(), true
}

// Trimmed returns a trimmed copy of an optional string.
func Trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// NonEmpty returns nil for a nil or blank optional string.
func NonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
