package choropleth

import "github.com/reoring/vegaskema/jsonschema"

// JSONSchema describes the document a complete parse requires. Members the
// parser does not read are left unconstrained.
func JSONSchema() *jsonschema.Schema {
	number := &jsonschema.Schema{Type: "number"}
	enter := jsonschema.Object(map[string]*jsonschema.Schema{
		"color_gradient": jsonschema.Value(&jsonschema.Schema{Type: "string", Enum: ColorStyles.Names()}),
		"color_bound":    jsonschema.Value(jsonschema.Array(number, 2, 2)),
		"opacity":        jsonschema.Value(number),
	}, "color_gradient", "color_bound", "opacity")
	mark := jsonschema.Object(map[string]*jsonschema.Schema{
		"encode": jsonschema.Object(map[string]*jsonschema.Schema{"enter": enter}, "enter"),
	}, "encode")

	root := jsonschema.Object(map[string]*jsonschema.Schema{
		"width":  number,
		"height": number,
		"marks":  jsonschema.Array(mark, 1, -1),
	}, "width", "height", "marks")
	root.Schema = jsonschema.Draft
	root.Title = "choropleth map"
	root.Description = "Only the first mark is read; width and height are truncated to integers."
	return root
}
