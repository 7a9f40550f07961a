package schema

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
)

// Describe renders the schema as a JSON Schema object for API documents.
func (s *Schema) Describe() map[string]any {
	if s.item != nil {
		return map[string]any{"type": "array", "items": s.item.Describe()}
	}
	d := describeType(s.typ, map[reflect.Type]bool{})
	if _, ok := d["title"]; !ok && s.typ.Name() != "" {
		d["title"] = s.typ.Name()
	}
	return d
}

func describeType(t reflect.Type, visiting map[reflect.Type]bool) map[string]any {
	nullable := false
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
		nullable = true
	}
	d := map[string]any{}
	if nullable {
		d["nullable"] = true
	}

	switch {
	case t == timeType:
		d["type"] = "string"
		d["format"] = "date-time"
		return d
	case t == uuidType:
		d["type"] = "string"
		d["format"] = "uuid"
		return d
	}

	switch t.Kind() {
	case reflect.String:
		d["type"] = "string"
	case reflect.Bool:
		d["type"] = "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		d["type"] = "integer"
	case reflect.Float32, reflect.Float64:
		d["type"] = "number"
	case reflect.Slice, reflect.Array:
		d["type"] = "array"
		d["items"] = describeType(t.Elem(), visiting)
	case reflect.Map:
		d["type"] = "object"
		d["additionalProperties"] = describeType(t.Elem(), visiting)
	case reflect.Struct:
		d["type"] = "object"
		if t.Name() != "" {
			d["title"] = t.Name()
		}
		// recursive types stop at the second visit
		if visiting[t] {
			return d
		}
		visiting[t] = true
		defer delete(visiting, t)

		props := map[string]any{}
		var required []string
		for _, f := range structFields(t) {
			p := describeType(f.Type, visiting)
			applyValidateTag(p, f.Tag.Get("validate"))
			props[f.JSONName] = p
			if hasRule(f.Tag.Get("validate"), "required") {
				required = append(required, f.JSONName)
			}
		}
		d["properties"] = props
		if len(required) > 0 {
			d["required"] = required
		}
	default:
		d["type"] = "object"
	}
	return d
}

// applyValidateTag carries the documentable validator rules into the description.
func applyValidateTag(d map[string]any, tag string) {
	for _, rule := range strings.Split(tag, ",") {
		name, raw, _ := strings.Cut(rule, "=")
		var arg any = raw
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			arg = n
		}
		switch name {
		case "oneof":
			d["enum"] = strings.Fields(raw)
		case "max":
			if d["type"] == "string" {
				d["maxLength"] = arg
			} else {
				d["maximum"] = arg
			}
		case "min":
			if d["type"] == "string" {
				d["minLength"] = arg
			} else {
				d["minimum"] = arg
			}
		case "email":
			d["format"] = "email"
		}
	}
}

func hasRule(tag, rule string) bool {
	for _, r := range strings.Split(tag, ",") {
		if r == rule {
			return true
		}
	}
	return false
}
