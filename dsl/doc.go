// Package dsl provides gate combinators over decoded JSON trees.
//
// Overview
//   - Node: a cursor with short-circuit propagation. Field/Index/NotNull/Array/
//     MinItems/Items/Number narrow the cursor; Float/Int/Text extract scalars.
//   - The first failing step is kept as a vegaskema.Issue (JSON Pointer, code,
//     message); every later step is a no-op, so a chain reads like a schema.
//   - Enum[T]: static lookup table from wire literals to values; OneOf reads a
//     string and resolves it, reporting unknown literals as unsupported_value.
//
// Example
//
//	doc, _ := vegaskema.DecodeBytes(ctx, data)
//	enter := dsl.At(doc).Field("marks").MinItems(1).Index(0).Field("encode").Field("enter")
//	opacity, err := enter.Field("opacity").Field("value").Float()
//	if err != nil {
//	    iss, _ := vegaskema.AsIssues(err) // iss[0].Path == "/marks/0/encode/enter/opacity"
//	}
//
// Codes produced
//   - required: member missing, or null where NotNull was asked for.
//   - invalid_type: wrong JSON type (Params: expected, got).
//   - too_small / too_big: array arity (Params: min/max, got).
//   - unsupported_value: OneOf with an unknown literal.
package dsl
