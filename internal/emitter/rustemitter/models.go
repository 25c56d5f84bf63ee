package rustemitter

import (
	"fmt"
	"strings"

	"github.com/openclientgen/openapi2rust/internal/diag"
	"github.com/openclientgen/openapi2rust/internal/naming"
	"github.com/openclientgen/openapi2rust/internal/spec"
)

// generateModels renders one record per registry schema, in registry
// order, plus the models/mod.rs declaring and re-exporting them. The
// returned map is keyed by path relative to src/.
func generateModels(components *spec.Components, extraExports []string, sink diag.Sink) (map[string]string, error) {
	files := make(map[string]string)
	var mod strings.Builder

	for _, name := range components.Schemas.Keys() {
		schema, _ := components.Schemas.Get(name)
		fileName := naming.ToSnake(name)

		source, err := generateModel(name, schema, sink)
		if err != nil {
			return nil, err
		}
		files["models/"+fileName+".rs"] = source

		fmt.Fprintf(&mod, "pub mod %s;\n", fileName)
		fmt.Fprintf(&mod, "pub use %s::*;\n\n", fileName)
	}

	for _, export := range extraExports {
		fmt.Fprintf(&mod, "pub use %s;\n", export)
	}

	files["models/mod.rs"] = mod.String()
	return files, nil
}

func generateModel(name string, schema *spec.Schema, sink diag.Sink) (string, error) {
	var b strings.Builder

	b.WriteString("use serde::{Deserialize, Serialize};\n")
	b.WriteString("use crate::models;\n")
	b.WriteString("\n")
	b.WriteString("#[derive(Clone, Debug, Serialize, Deserialize)]\n")
	fmt.Fprintf(&b, "pub struct %s {\n", naming.ToPascal(name))

	if schema.Properties.Len() == 0 {
		sink.Warnf("schema %q has no object properties, emitting an empty record (probably an enum?)", name)
	} else {
		required := schema.RequiredSet()
		for _, propName := range schema.Properties.Keys() {
			prop, _ := schema.Properties.Get(propName)
			if err := writeField(&b, propName, prop, required[propName]); err != nil {
				return "", fmt.Errorf("schema %q: %w", name, err)
			}
		}
	}

	b.WriteString("}\n")
	return b.String(), nil
}

func writeField(b *strings.Builder, name string, schema *spec.Schema, required bool) error {
	// serialization keeps the original wire name regardless of escaping
	fmt.Fprintf(b, "    #[serde(rename = %q)]\n", name)

	fieldName := naming.EscapeRustKeyword(naming.ToSnake(name))

	typ, err := mapSchemaType(schema, UsageOwned)
	if err != nil {
		return fmt.Errorf("failed to map type for field %q (schema %+v): %w", name, schema, err)
	}

	fmt.Fprintf(b, "    pub %s: %s,\n", fieldName, wrapOptional(typ, required))
	return nil
}
