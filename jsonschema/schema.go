// Package jsonschema holds a minimal JSON Schema representation used to
// export the shape vegaskema accepts.
package jsonschema

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	// Core
	Schema      string   `json:"$schema,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type,omitempty"`
	Enum        []string `json:"enum,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`
}

// Draft is the dialect emitted in $schema.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Object returns an object schema requiring every named property.
func Object(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: "object", Properties: props, Required: required}
}

// Value wraps s as {"value": s}, the Vega encoding of a constant channel.
func Value(s *Schema) *Schema {
	return Object(map[string]*Schema{"value": s}, "value")
}

// Array returns an array schema. max < 0 leaves the upper bound open.
func Array(items *Schema, min, max int) *Schema {
	s := &Schema{Type: "array", Items: items, MinItems: &min}
	if max >= 0 {
		s.MaxItems = &max
	}
	return s
}
