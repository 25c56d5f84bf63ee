package rustemitter

import (
	"fmt"
	"strings"

	"github.com/openclientgen/openapi2rust/internal/naming"
	"github.com/openclientgen/openapi2rust/internal/spec"
)

// Usage selects between owned and borrowed type expressions. Operation
// parameters and request payloads are borrowed; struct fields and return
// types are owned.
type Usage int

const (
	UsageOwned Usage = iota
	UsageBorrowedParam
)

// mapType maps a schema's format, instance type and reference onto a Rust
// type expression. Resolution order: format table first, then a single
// instance type, then the reference. No match is an error carrying the
// raw inputs; callers wrap it with the offending field or parameter name.
func mapType(format string, types *spec.TypeSet, ref string, usage Usage) (string, error) {
	switch format {
	case "base64uuid":
		return "base64uuid::Base64Uuid", nil
	case "int32":
		return "i32", nil
	case "int64":
		return "i64", nil
	case "float":
		return "f32", nil
	case "double":
		return "f64", nil
	case "byte", "binary":
		// both formats intentionally map to raw bytes
		return "Vec<u8>", nil
	case "date", "date-time":
		return "time::OffsetDateTime", nil
	case "password":
		return "SecureString", nil
	}

	if types != nil && types.Single != "" {
		switch types.Single {
		case "null":
			return "()", nil
		case "boolean":
			return "bool", nil
		case "object":
			// free-form objects always map to a string map
			return "std::collections::HashMap<String, String>", nil
		case "array":
			if ref != "" {
				return "Vec<" + modelsPath(ref) + ">", nil
			}
			return "Vec<serde_json::Value>", nil
		case "number":
			// numbers decode as integers here; keep as-is
			return "i64", nil
		case "string":
			if usage == UsageBorrowedParam {
				return "&str", nil
			}
			return "String", nil
		case "integer":
			return "i32", nil
		}
	}

	if ref != "" {
		return modelsPath(ref), nil
	}

	return "", fmt.Errorf("unsupported instance type %s and no reference (format %q)",
		describeTypes(types), format)
}

// mapSchemaType is mapType over a schema node.
func mapSchemaType(schema *spec.Schema, usage Usage) (string, error) {
	if schema == nil {
		return "", fmt.Errorf("no schema to map")
	}
	return mapType(schema.Format, schema.Types, schema.Ref, usage)
}

// wrapOptional wraps the type expression in Option<> unless the field or
// parameter is required.
func wrapOptional(typ string, required bool) string {
	if required {
		return typ
	}
	return "Option<" + typ + ">"
}

// modelsPath converts a registry pointer into a models-namespace type
// path: the trailing path segment in Pascal case, or the whole string
// when there is no separator.
func modelsPath(ref string) string {
	name := ref
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		name = ref[i+1:]
	}
	return "models::" + naming.ToPascal(name)
}

func describeTypes(types *spec.TypeSet) string {
	switch {
	case types == nil:
		return "<none>"
	case types.Single != "":
		return types.Single
	default:
		return fmt.Sprintf("%v", types.List)
	}
}
