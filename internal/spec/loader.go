package spec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads an OpenAPI 3 document from a YAML file and builds the
// document model. The input must carry a .yml or .yaml extension.
func LoadFile(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yml" && ext != ".yaml" {
		return nil, &SpecError{
			Code:     InputError,
			Message:  "input needs to be a YAML file (extension: .yml or .yaml)",
			Location: path,
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SpecError{
			Code:     InputError,
			Message:  fmt.Sprintf("read document: %v", err),
			Location: path,
			Cause:    err,
		}
	}
	doc, err := Load(data)
	if err != nil {
		var se *SpecError
		if asSpecError(err, &se) && se.Location == "" {
			se.Location = path
		}
		return nil, err
	}
	return doc, nil
}

// Load parses document bytes into the document model. Only OpenAPI 3.x
// documents are accepted.
func Load(data []byte) (*Document, error) {
	version, err := detectVersion(data)
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: err.Error(), Cause: err}
	}
	if version != 3 {
		return nil, &SpecError{
			Code:    ParseError,
			Message: "unsupported document version (expected 'openapi: 3.x')",
		}
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &SpecError{
			Code:    ParseError,
			Message: fmt.Sprintf("parse document: %v", err),
			Cause:   err,
		}
	}
	return &doc, nil
}

// detectVersion returns 3 for OpenAPI v3 documents and 2 for Swagger v2.
func detectVersion(data []byte) (int, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return 0, fmt.Errorf("parse document: %w", err)
	}
	if v, ok := root["openapi"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
			return 3, nil
		}
	}
	if v, ok := root["swagger"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "2.") {
			return 2, nil
		}
	}
	return 0, fmt.Errorf("missing or unknown document version (expected 'openapi: 3.x')")
}

// Operations returns the path item's operations in fixed emission order:
// GET, PUT, POST, DELETE, PATCH. Absent methods are skipped.
func (p *PathItem) Operations() []MethodOperation {
	ordered := []MethodOperation{
		{Method: "GET", Operation: p.Get},
		{Method: "PUT", Operation: p.Put},
		{Method: "POST", Operation: p.Post},
		{Method: "DELETE", Operation: p.Delete},
		{Method: "PATCH", Operation: p.Patch},
	}
	out := make([]MethodOperation, 0, len(ordered))
	for _, mo := range ordered {
		if mo.Operation != nil {
			out = append(out, mo)
		}
	}
	return out
}

// MethodOperation pairs an HTTP method with its operation.
type MethodOperation struct {
	Method    string
	Operation *Operation
}
