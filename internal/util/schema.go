package util

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// ValidationError represents argument validation errors with detailed information.
type ValidationError struct {
	Field   string `json:"field"`   // Field that failed validation
	Value   string `json:"value"`   // Value that was provided
	Message string `json:"message"` // Human-readable error message
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// CreateSchema derives an object schema from a struct type. Property names
// follow the json tag, a description tag becomes the property description and
// an enum tag ("a|b|c") restricts the accepted values. Non-pointer fields
// without omitempty are required. Anything but a struct yields an empty
// object schema.
func CreateSchema(structType any) map[string]any {
	properties := map[string]any{}
	schema := map[string]any{"type": "object", "properties": properties}

	t := reflect.TypeOf(structType)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return schema
	}

	var required []string

	for _, field := range reflect.VisibleFields(t) {
		name, prop, mandatory, ok := propertyFor(field)
		if !ok {
			continue
		}

		properties[name] = prop

		if mandatory {
			required = append(required, name)
		}
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

// propertyFor describes one struct field. ok is false for fields that are
// unexported, anonymous or tagged json:"-".
func propertyFor(field reflect.StructField) (name string, prop map[string]any, required, ok bool) {
	if !field.IsExported() || field.Anonymous {
		return "", nil, false, false
	}

	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", nil, false, false
	}

	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}

	prop = map[string]any{"type": getJSONType(field.Type)}

	if d := field.Tag.Get("description"); d != "" {
		prop["description"] = d
	}

	if e := field.Tag.Get("enum"); e != "" {
		prop["enum"] = strings.Split(e, "|")
	}

	required = field.Type.Kind() != reflect.Ptr && !hasOption(opts, "omitempty")

	return name, prop, required, true
}

// ValidateArgs validates textual key/value arguments against a schema built
// by CreateSchema (or written by hand). Required fields must be present and
// values of typed properties must parse as that type. A nil schema accepts
// anything.
func ValidateArgs(args map[string]string, schema map[string]any) error {
	if schema == nil {
		return nil
	}

	for _, fieldName := range RequiredFields(schema) {
		if _, exists := args[fieldName]; !exists {
			return &ValidationError{
				Field:   fieldName,
				Message: "required field is missing",
			}
		}
	}

	properties, _ := schema["properties"].(map[string]any)

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, fieldName := range keys {
		propMap, ok := properties[fieldName].(map[string]any)
		if !ok {
			continue // extra fields are allowed
		}

		expectedType, _ := propMap["type"].(string)

		value := args[fieldName]
		if !parsesAs(value, expectedType) {
			return &ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("expected type %s", expectedType),
			}
		}

		if allowed, ok := propMap["enum"].([]string); ok && !slices.Contains(allowed, value) {
			return &ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: "must be one of " + strings.Join(allowed, ", "),
			}
		}
	}

	return nil
}

// RequiredFields returns the schema's required list whether it was declared
// as []string or decoded as []any.
func RequiredFields(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}

		return out
	default:
		return nil
	}
}

// getJSONType returns the JSON schema type for a given Go type.
func getJSONType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Ptr:
		return getJSONType(t.Elem())
	default:
		return "string"
	}
}

func hasOption(opts, want string) bool {
	for _, o := range strings.Split(opts, ",") {
		if strings.TrimSpace(o) == want {
			return true
		}
	}

	return false
}

// parsesAs checks whether a textual value is acceptable for the JSON type.
func parsesAs(value, expectedType string) bool {
	switch expectedType {
	case "integer":
		_, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		return err == nil
	case "number":
		_, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		return err == nil
	case "boolean":
		_, err := strconv.ParseBool(strings.TrimSpace(value))
		return err == nil
	default:
		return true
	}
}
