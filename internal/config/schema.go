package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema returns a JSON Schema for the settings file.
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{ExpandedStruct: true, FieldNameTag: "yaml"}
	sch := r.Reflect(&Settings{})
	sch.Title = "iviweb settings"
	sch.Description = "Contents of <config dir>/iviweb/config.yaml."
	return sch
}

// MarshalSchema indents the schema to JSON bytes.
func MarshalSchema(sch *jsonschema.Schema) ([]byte, error) {
	return json.MarshalIndent(sch, "", "  ")
}
