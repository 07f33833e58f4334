package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	apperrors "user-pref-service/pkg/errors"
	"user-pref-service/pkg/enum"
)

// Options controls how an input is decoded against a schema.
type Options struct {
	// StripUnknown drops fields the schema does not declare. When false they fail validation.
	StripUnknown bool
}

// Defaulter is implemented by schemas that fill declared defaults after decoding.
type Defaulter interface {
	SetDefaults()
}

// Result is the outcome of a single validation.
type Result[T any] struct {
	Value T
	Valid bool
	Err   error
}

// Rule is a custom validation tag.
type Rule struct {
	Tag     string
	Fn      func(value string) bool
	Message string
}

// EnumRule builds a rule accepting only members of set. Empty strings pass so the rule
// composes with omitempty and required.
func EnumRule[E ~string](tag string, set enum.Set[E]) Rule {
	return Rule{
		Tag: tag,
		Fn: func(value string) bool {
			return value == "" || enum.Contains(set, E(value))
		},
		Message: "must be one of: " + strings.Join(enum.Strings(set), ", "),
	}
}

// PatternRule builds a rule matching value against re.
func PatternRule(tag string, re *regexp.Regexp, message string) Rule {
	return Rule{
		Tag: tag,
		Fn: func(value string) bool {
			return value == "" || re.MatchString(value)
		},
		Message: message,
	}
}

// Validator validates arbitrary input against declarative struct schemas.
type Validator struct {
	validate *validator.Validate
	messages map[string]string
}

// New creates a Validator with the given custom rules registered.
func New(rules ...Rule) *Validator {
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

	messages := make(map[string]string, len(rules))
	for _, r := range rules {
		fn := r.Fn
		// Registration only fails on an empty tag or nil func, both programming errors.
		if err := v.RegisterValidation(r.Tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("schema: register %q: %v", r.Tag, err))
		}
		messages[r.Tag] = r.Message
	}

	return &Validator{validate: v, messages: messages}
}

// Decode coerces input into T, applies defaults and validates the result.
// It is all-or-nothing: on failure the zero value and a contract error are returned.
func Decode[T any](v *Validator, input any, opts Options) (T, error) {
	var zero T

	normalized, err := normalize(input)
	if err != nil {
		return zero, apperrors.Contract("validation failed: payload must be a valid JSON object",
			apperrors.WithDetails(map[string]string{"payload": "invalid json"}),
			apperrors.WithCause(err))
	}

	var out T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      !opts.StripUnknown,
		Result:           &out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return zero, apperrors.Internal("failed to build schema decoder", apperrors.WithCause(err))
	}

	var violations []fieldError
	if err := decoder.Decode(normalized); err != nil {
		violations = decodeViolations(err)
	}

	if d, ok := any(&out).(Defaulter); ok {
		d.SetDefaults()
	}

	structViolations, err := v.violations(out)
	if err != nil {
		return zero, err
	}
	violations = mergeViolations(violations, structViolations)

	if len(violations) > 0 {
		return zero, contractError(violations)
	}

	return out, nil
}

// Check is Decode reported as a Result.
func Check[T any](v *Validator, input any, opts Options) Result[T] {
	value, err := Decode[T](v, input, opts)
	return Result[T]{Value: value, Valid: err == nil, Err: err}
}

// Struct validates an already-typed value.
func (v *Validator) Struct(value any) error {
	violations, err := v.violations(value)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		return nil
	}
	return contractError(violations)
}

type fieldError struct {
	field   string
	message string
}

func (v *Validator) violations(value any) ([]fieldError, error) {
	rv := reflect.Indirect(reflect.ValueOf(value))
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return nil, nil
	}

	err := v.validate.Struct(value)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, apperrors.Internal("schema validation could not run", apperrors.WithCause(err))
	}

	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldError{field: fieldPath(fe), message: v.formatFieldError(fe)})
	}
	return out, nil
}

// mergeViolations appends the rule violations of fields that decoded cleanly.
// A field that failed decoding keeps only its decode message.
func mergeViolations(decoded, rules []fieldError) []fieldError {
	seen := make(map[string]bool, len(decoded))
	for _, fe := range decoded {
		seen[fe.field] = true
	}
	for _, fe := range rules {
		if !seen[fe.field] {
			decoded = append(decoded, fe)
			seen[fe.field] = true
		}
	}
	return decoded
}

// contractError carries no cause: the violations already describe every failure,
// and the raw decoder wording must not reach the envelope.
func contractError(violations []fieldError) error {
	messages := make([]string, 0, len(violations))
	details := make(map[string]string, len(violations))
	for _, fe := range violations {
		messages = append(messages, fe.field+" "+fe.message)
		details[fe.field] = fe.message
	}
	return apperrors.Contract("validation failed: "+strings.Join(messages, ", "),
		apperrors.WithDetails(details))
}

// normalize turns the supported raw input shapes into something mapstructure can decode.
func normalize(input any) (any, error) {
	switch in := input.(type) {
	case nil:
		return map[string]any{}, nil
	case []byte:
		return decodeJSON(in)
	case json.RawMessage:
		return decodeJSON(in)
	case string:
		return decodeJSON([]byte(in))
	case url.Values:
		return flattenValues(in), nil
	case map[string][]string:
		return flattenValues(in), nil
	default:
		return input, nil
	}
}

func decodeJSON(b []byte) (any, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func flattenValues(values map[string][]string) map[string]any {
	out := make(map[string]any, len(values))
	for k, vs := range values {
		switch len(vs) {
		case 0:
		case 1:
			out[k] = vs[0]
		default:
			out[k] = vs
		}
	}
	return out
}

// unusedKeysPrefix starts the error mapstructure raises for undeclared keys when ErrorUnused is set.
const unusedKeysPrefix = "has invalid keys: "

// decodeViolations flattens a mapstructure error tree into one violation per field.
func decodeViolations(err error) []fieldError {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []fieldError
		for _, e := range joined.Unwrap() {
			out = append(out, decodeViolations(e)...)
		}
		return out
	}

	de, ok := err.(*mapstructure.DecodeError)
	if !ok {
		if inner := errors.Unwrap(err); inner != nil {
			return decodeViolations(inner)
		}
		return []fieldError{{field: "payload", message: "is invalid"}}
	}

	inner := de.Unwrap()
	var nested *mapstructure.DecodeError
	if errors.As(inner, &nested) {
		return decodeViolations(inner)
	}

	if keys, ok := strings.CutPrefix(inner.Error(), unusedKeysPrefix); ok {
		out := make([]fieldError, 0, strings.Count(keys, ",")+1)
		for _, key := range strings.Split(keys, ", ") {
			if de.Name() != "" {
				key = de.Name() + "." + key
			}
			out = append(out, fieldError{field: key, message: "is not allowed"})
		}
		return out
	}

	field := de.Name()
	if field == "" {
		field = "payload"
	}
	return []fieldError{{field: field, message: typeMessage(inner)}}
}

func typeMessage(err error) string {
	var (
		unconvertible *mapstructure.UnconvertibleTypeError
		parse         *mapstructure.ParseError
	)
	switch {
	case errors.As(err, &unconvertible):
		return "must be " + typeName(unconvertible.Expected.Type())
	case errors.As(err, &parse):
		return "must be " + typeName(parse.Expected.Type())
	case strings.Contains(err.Error(), "parsing time"):
		return "must be an RFC3339 timestamp"
	case strings.HasPrefix(err.Error(), "must be "):
		// text unmarshalers report in the same register
		return err.Error()
	default:
		return "is invalid"
	}
}

var timeType = reflect.TypeOf(time.Time{})

func typeName(t reflect.Type) string {
	if t == timeType {
		return "an RFC3339 timestamp"
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "a list"
	case reflect.Ptr:
		return typeName(t.Elem())
	default:
		return "an object"
	}
}

// fieldPath drops the root struct name from the namespace: CreateUserRequest.email -> email.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func (v *Validator) formatFieldError(fe validator.FieldError) string {
	if msg, ok := v.messages[fe.Tag()]; ok {
		return msg
	}

	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return "is required when " + param + " is present"
	case "email":
		return "must be a valid email"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "e164":
		return "must be a valid phone number"
	case "numeric":
		return "must be numeric"
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", param)
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters"
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	default:
		return "is invalid"
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
