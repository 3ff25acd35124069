package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/frahmantamala/practice-management/internal"
)

type FieldType string

const (
	TypeAny     FieldType = ""
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeEmail   FieldType = "email"
	TypePhone   FieldType = "phone"
	TypeDate    FieldType = "date"
)

// DateLayout is the only accepted layout for TypeDate fields.
const DateLayout = "2006-01-02"

var (
	EmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	PhonePattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)
)

// Rule is the declarative rule set for one field. Zero MinLength/MaxLength and
// nil Min/Max mean "unbounded".
type Rule struct {
	Required       bool
	Type           FieldType
	Pattern        *regexp.Regexp
	PatternMessage string
	MinLength      int
	MaxLength      int
	Min            *float64
	Max            *float64
	Custom         func(value any) error
}

type Rules map[string]Rule

// Errors maps a field name to its violation messages.
type Errors map[string][]string

func Required(t FieldType) Rule {
	return Rule{Required: true, Type: t}
}

func Optional(t FieldType) Rule {
	return Rule{Type: t}
}

func (r Rule) WithLength(min, max int) Rule {
	r.MinLength = min
	r.MaxLength = max
	return r
}

func (r Rule) WithRange(min, max float64) Rule {
	r.Min = &min
	r.Max = &max
	return r
}

func (r Rule) WithMin(min float64) Rule {
	r.Min = &min
	return r
}

func (r Rule) WithPattern(re *regexp.Regexp, message string) Rule {
	r.Pattern = re
	r.PatternMessage = message
	return r
}

func (r Rule) WithCustom(fn func(value any) error) Rule {
	r.Custom = fn
	return r
}

// Validate checks data against rules. Fields without a rule are ignored.
func Validate(data map[string]any, rules Rules) Errors {
	errs := Errors{}

	for field, rule := range rules {
		value, present := data[field]
		if !present || isEmpty(value) {
			if rule.Required {
				errs.Add(field, fmt.Sprintf("%s is required", field))
			}
			continue
		}

		if msg := checkType(field, value, rule.Type); msg != "" {
			errs.Add(field, msg)
			continue
		}

		if s, ok := value.(string); ok {
			if rule.Pattern != nil && !rule.Pattern.MatchString(s) {
				msg := rule.PatternMessage
				if msg == "" {
					msg = fmt.Sprintf("%s has an invalid format", field)
				}
				errs.Add(field, msg)
			}

			length := utf8.RuneCountInString(s)
			if rule.MinLength > 0 && length < rule.MinLength {
				errs.Add(field, fmt.Sprintf("%s must be at least %d characters", field, rule.MinLength))
			}
			if rule.MaxLength > 0 && length > rule.MaxLength {
				errs.Add(field, fmt.Sprintf("%s must not exceed %d characters", field, rule.MaxLength))
			}
		}

		if rule.Min != nil || rule.Max != nil {
			if n, ok := toFloat(value); ok {
				if rule.Min != nil && n < *rule.Min {
					errs.Add(field, fmt.Sprintf("%s must be at least %s", field, formatNumber(*rule.Min)))
				}
				if rule.Max != nil && n > *rule.Max {
					errs.Add(field, fmt.Sprintf("%s must not exceed %s", field, formatNumber(*rule.Max)))
				}
			}
		}

		if rule.Custom != nil {
			if err := rule.Custom(value); err != nil {
				errs.Add(field, err.Error())
			}
		}
	}

	return errs
}

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) HasErrors() bool {
	return len(e) > 0
}

// Fields returns the failing field names in sorted order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// AppError converts the violations to the validation AppError, or nil when clean.
func (e Errors) AppError() *apperrors.AppError {
	if !e.HasErrors() {
		return nil
	}

	var details []apperrors.ValidationError
	for _, field := range e.Fields() {
		for _, msg := range e[field] {
			details = append(details, apperrors.ValidationError{
				Field:   field,
				Message: msg,
				Code:    string(apperrors.ErrCodeValidationFailed),
			})
		}
	}

	return apperrors.NewValidationError("Validation failed", apperrors.ErrCodeValidationFailed).
		WithDetails(apperrors.ValidationErrors{Errors: details})
}

// NotFuture rejects dates after today. Accepts time.Time or a DateLayout string.
func NotFuture(value any) error {
	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case string:
		parsed, err := time.Parse(DateLayout, v)
		if err != nil {
			return nil
		}
		t = parsed
	default:
		return nil
	}
	if t.After(time.Now()) {
		return errors.New("date cannot be in the future")
	}
	return nil
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	}
	return false
}

func checkType(field string, value any, t FieldType) string {
	switch t {
	case TypeAny:
		return ""
	case TypeString:
		if _, ok := value.(string); !ok {
			return fmt.Sprintf("%s must be a string", field)
		}
	case TypeInteger:
		n, ok := toFloat(value)
		if !ok || n != float64(int64(n)) {
			return fmt.Sprintf("%s must be an integer", field)
		}
	case TypeNumber:
		if _, ok := toFloat(value); !ok {
			return fmt.Sprintf("%s must be a number", field)
		}
	case TypeBoolean:
		switch v := value.(type) {
		case bool:
		case string:
			if _, err := strconv.ParseBool(v); err != nil {
				return fmt.Sprintf("%s must be a boolean", field)
			}
		default:
			return fmt.Sprintf("%s must be a boolean", field)
		}
	case TypeEmail:
		s, ok := value.(string)
		if !ok || !EmailPattern.MatchString(s) {
			return fmt.Sprintf("%s must be a valid email address", field)
		}
	case TypePhone:
		s, ok := value.(string)
		if !ok || !PhonePattern.MatchString(normalizePhone(s)) {
			return fmt.Sprintf("%s must be a valid phone number", field)
		}
	case TypeDate:
		switch v := value.(type) {
		case time.Time:
		case string:
			if _, err := time.Parse(DateLayout, v); err != nil {
				return fmt.Sprintf("%s must be a valid date (YYYY-MM-DD)", field)
			}
		default:
			return fmt.Sprintf("%s must be a valid date (YYYY-MM-DD)", field)
		}
	default:
		return fmt.Sprintf("%s has unknown type %q", field, t)
	}
	return ""
}

// normalizePhone drops the separators people commonly type.
func normalizePhone(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "").Replace(s)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
