// Package validation checks loosely typed request input against a table of
// field rules and reports every failing field at once.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind is the type a field value must coerce to.
type Kind int

const (
	String Kind = iota
	Integer
	Boolean
)

// Rule describes the constraints of a single input field.
type Rule struct {
	Field    string
	Kind     Kind
	Required bool
	Nullable bool
	// Sometimes skips the rule entirely when the field is absent.
	Sometimes bool
	// Constraint is a validator tag applied to the coerced value, e.g. "max=255".
	Constraint string
}

// Rules is an ordered rule table.
type Rules []Rule

// Attributes holds the fields that passed validation, coerced to Go types:
// string, int64, bool, or nil for an explicit null on a nullable field.
type Attributes map[string]any

// Error carries the messages for every field that failed validation.
type Error struct {
	Errors map[string][]string
}

func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

func (e *Error) add(field, message string) {
	e.Errors[field] = append(e.Errors[field], message)
}

var validate = validator.New()

// DeriveUpdateRules returns a copy of rules in which every rule only applies
// when its field is present. The input table is not modified.
func DeriveUpdateRules(rules Rules) Rules {
	derived := make(Rules, len(rules))
	for i, rule := range rules {
		rule.Sometimes = true
		derived[i] = rule
	}
	return derived
}

// Validate checks input against rules. Keys without a rule are dropped.
// On failure the returned error is an *Error listing all failing fields.
func Validate(rules Rules, input map[string]any) (Attributes, error) {
	attrs := make(Attributes, len(rules))
	verr := &Error{Errors: make(map[string][]string)}

	for _, rule := range rules {
		value, present := input[rule.Field]
		value = normalizeEmpty(value)

		if !present && rule.Sometimes {
			continue
		}
		if value == nil {
			if rule.Required {
				verr.add(rule.Field, fmt.Sprintf("The %s field is required.", label(rule.Field)))
				continue
			}
			if !present {
				continue
			}
			if rule.Nullable {
				attrs[rule.Field] = nil
				continue
			}
		}

		coerced, ok := coerce(rule.Kind, value)
		if !ok {
			verr.add(rule.Field, kindMessage(rule))
			continue
		}

		if rule.Constraint != "" {
			if err := validate.Var(coerced, rule.Constraint); err != nil {
				var fieldErrs validator.ValidationErrors
				if !errors.As(err, &fieldErrs) {
					return nil, fmt.Errorf("invalid constraint %q on %s: %w", rule.Constraint, rule.Field, err)
				}
				for _, fe := range fieldErrs {
					verr.add(rule.Field, constraintMessage(rule, fe))
				}
				continue
			}
		}

		attrs[rule.Field] = coerced
	}

	if len(verr.Errors) > 0 {
		return nil, verr
	}
	return attrs, nil
}

// normalizeEmpty trims strings and turns blank strings into nil.
func normalizeEmpty(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

func coerce(kind Kind, value any) (any, bool) {
	switch kind {
	case String:
		s, ok := value.(string)
		return s, ok
	case Integer:
		return toInt64(value)
	case Boolean:
		return toBool(value)
	}
	return nil, false
}

func toInt64(value any) (any, bool) {
	switch v := value.(type) {
	case json.Number:
		n, err := strconv.ParseInt(v.String(), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt64 || v < math.MinInt64 {
			return nil, false
		}
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	}
	return nil, false
}

func toBool(value any) (any, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case json.Number:
		return toBool(v.String())
	case string:
		switch v {
		case "1", "true":
			return true, true
		case "0", "false":
			return false, true
		}
	case float64:
		return toBool(strconv.FormatFloat(v, 'f', -1, 64))
	case int:
		return toBool(strconv.Itoa(v))
	case int64:
		return toBool(strconv.FormatInt(v, 10))
	}
	return nil, false
}

func label(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func kindMessage(rule Rule) string {
	switch rule.Kind {
	case Integer:
		return fmt.Sprintf("The %s field must be an integer.", label(rule.Field))
	case Boolean:
		return fmt.Sprintf("The %s field must be true or false.", label(rule.Field))
	default:
		return fmt.Sprintf("The %s field must be a string.", label(rule.Field))
	}
}

func constraintMessage(rule Rule, fe validator.FieldError) string {
	name := label(rule.Field)
	unit := ""
	if rule.Kind == String {
		unit = " characters"
	}

	switch fe.Tag() {
	case "max", "lte":
		return fmt.Sprintf("The %s field must not be greater than %s%s.", name, fe.Param(), unit)
	case "min", "gte":
		return fmt.Sprintf("The %s field must be at least %s%s.", name, fe.Param(), unit)
	default:
		return fmt.Sprintf("The %s field is invalid.", name)
	}
}
