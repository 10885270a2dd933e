// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"fmt"
	"reflect"
	"strings"

	"google.golang.org/genai"
)

// SchemaFor generates a [genai.Schema] for the type T using reflection,
// mapping Go types to JSON Schema types compatible with LLM function calling.
//
// T is typically a struct describing the tool's arguments; exported fields
// become schema properties named after their json tags (falling back to the
// lowercased field name). Pointer fields and fields tagged omitempty are
// optional, everything else is required.
//
// Supported field types are strings, integers, floats, booleans, slices,
// string-keyed maps, nested structs and any.
func SchemaFor[T any]() (*genai.Schema, error) {
	return typeToSchema(reflect.TypeFor[T]())
}

// typeToSchema converts a Go reflect.Type to a genai.Schema.
func typeToSchema(t reflect.Type) (*genai.Schema, error) {
	if t.Kind() == reflect.Pointer {
		return typeToSchema(t.Elem())
	}

	switch t.Kind() {
	case reflect.String:
		return &genai.Schema{Type: genai.TypeString}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &genai.Schema{Type: genai.TypeInteger}, nil

	case reflect.Float32, reflect.Float64:
		return &genai.Schema{Type: genai.TypeNumber}, nil

	case reflect.Bool:
		return &genai.Schema{Type: genai.TypeBoolean}, nil

	case reflect.Slice, reflect.Array:
		elemSchema, err := typeToSchema(t.Elem())
		if err != nil {
			return nil, err
		}
		return &genai.Schema{
			Type:  genai.TypeArray,
			Items: elemSchema,
		}, nil

	case reflect.Map:
		// Only string keys are representable in JSON.
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map keys must be strings, got %v", t.Key().Kind())
		}
		return &genai.Schema{Type: genai.TypeObject}, nil

	case reflect.Struct:
		return structToSchema(t)

	case reflect.Interface:
		if t == reflect.TypeFor[any]() {
			return &genai.Schema{}, nil // no type constraint
		}
		return &genai.Schema{Type: genai.TypeObject}, nil

	default:
		return nil, fmt.Errorf("unsupported type: %v", t.Kind())
	}
}

// structToSchema converts a struct type to a genai.Schema.
func structToSchema(t reflect.Type) (*genai.Schema, error) {
	properties := make(map[string]*genai.Schema)
	var required []string

	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		fieldName := jsonFieldName(field)
		if fieldName == "-" {
			continue
		}

		fieldSchema, err := typeToSchema(field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		properties[fieldName] = fieldSchema

		if isRequiredField(field) {
			required = append(required, fieldName)
		}
	}

	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: properties,
	}
	if len(required) > 0 {
		schema.Required = required
	}

	return schema, nil
}

// jsonFieldName extracts the JSON field name from struct field tags.
func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return strings.ToLower(field.Name)
	}

	parts := strings.Split(tag, ",")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}

	return strings.ToLower(field.Name)
}

// isRequiredField reports whether a struct field should be required in the schema.
func isRequiredField(field reflect.StructField) bool {
	if field.Type.Kind() == reflect.Pointer {
		return false
	}

	return !strings.Contains(field.Tag.Get("json"), "omitempty")
}
