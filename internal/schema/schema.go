// Package schema describes the request and response shapes of generated
// resource routes and resolves one shape per operation.
//
// A Schema is a handle to a Go struct type. Values are moved in and out of a
// schema through their JSON field names, so a model and a schema only need to
// agree on `json` tags to be shaped into one another.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Schema is an immutable handle to a request or response shape.
type Schema struct {
	typ  reflect.Type
	item *Schema // set for sequence schemas only

	// field table of struct schemas, built once by Of
	fields []Field
	byJSON map[string]int
}

// Field maps one JSON property of a schema to the Go struct field carrying it.
type Field struct {
	JSONName string
	GoName   string
	Type     reflect.Type
	Tag      reflect.StructTag
}

// Of returns the schema for T. Pointer types are dereferenced.
func Of[T any]() *Schema {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s := &Schema{typ: t}
	if t.Kind() == reflect.Struct {
		s.fields = structFields(t)
		s.byJSON = make(map[string]int, len(s.fields))
		for i, f := range s.fields {
			if _, dup := s.byJSON[f.JSONName]; !dup {
				s.byJSON[f.JSONName] = i
			}
		}
	}
	return s
}

// ListOf wraps item as an ordered sequence of item. Wrapping a sequence
// returns it unchanged.
func ListOf(item *Schema) *Schema {
	if item == nil {
		return nil
	}
	if item.IsList() {
		return item
	}
	return &Schema{typ: reflect.SliceOf(item.typ), item: item}
}

// Name returns the Go type name, or "[]Item" for sequences.
func (s *Schema) Name() string {
	if s.item != nil {
		return "[]" + s.item.Name()
	}
	if s.typ.Name() == "" {
		return s.typ.String()
	}
	return s.typ.Name()
}

func (s *Schema) Type() reflect.Type { return s.typ }

func (s *Schema) IsList() bool { return s.item != nil }

// Item returns the element schema of a sequence, or nil.
func (s *Schema) Item() *Schema { return s.item }

// New returns a pointer to a fresh zero value of the schema type.
func (s *Schema) New() any {
	return reflect.New(s.typ).Interface()
}

// Fields lists the JSON properties of a struct schema in declaration order.
// Untagged embedded structs are flattened the way encoding/json does it.
func (s *Schema) Fields() []Field {
	return slices.Clone(s.fields)
}

// Lookup finds the field carrying the given JSON property.
func (s *Schema) Lookup(jsonName string) (Field, bool) {
	i, ok := s.byJSON[jsonName]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Shape re-encodes src into the schema. Properties unknown to the schema are
// dropped. For sequences src must be a slice or array and the result is a
// non-nil slice of the item type.
func (s *Schema) Shape(src any) (any, error) {
	if s.item != nil {
		rv := reflect.ValueOf(src)
		for rv.Kind() == reflect.Ptr {
			if rv.IsNil() {
				return reflect.MakeSlice(s.typ, 0, 0).Interface(), nil
			}
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, fmt.Errorf("shape %s: expected a sequence, got %s", s.Name(), rv.Kind())
		}
		out := reflect.MakeSlice(s.typ, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			v, err := s.item.Shape(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out = reflect.Append(out, reflect.ValueOf(v).Elem())
		}
		return out.Interface(), nil
	}

	raw, err := json.Marshal(src)
	if err != nil {
		return nil, fmt.Errorf("shape %s: %w", s.Name(), err)
	}
	dst := s.New()
	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, fmt.Errorf("shape %s: %w", s.Name(), err)
	}
	return dst, nil
}

func structFields(t reflect.Type) []Field {
	var out []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, skip := jsonName(sf)
		if skip {
			continue
		}
		if sf.Anonymous && sf.Tag.Get("json") == "" {
			ft := sf.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				out = append(out, structFields(ft)...)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		out = append(out, Field{JSONName: name, GoName: sf.Name, Type: sf.Type, Tag: sf.Tag})
	}
	return out
}

// jsonName returns the property name encoding/json would use for sf.
func jsonName(sf reflect.StructField) (string, bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = sf.Name
	}
	return name, false
}
