package spec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document model for OpenAPI 3 documents, limited to what the generator
// consumes. The model is built once by the loader and read-only afterwards.

type Document struct {
	OpenAPI    string          `yaml:"openapi"`
	Info       Info            `yaml:"info"`
	Servers    []*Server       `yaml:"servers"`
	Paths      *Map[*PathItem] `yaml:"paths"`
	Components Components      `yaml:"components"`
}

type Info struct {
	Title       string `yaml:"title"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

type Server struct {
	URL         string                `yaml:"url"`
	Description string                `yaml:"description"`
	Variables   *Map[*ServerVariable] `yaml:"variables"`
}

type ServerVariable struct {
	Default     string `yaml:"default"`
	Description string `yaml:"description"`
}

// Components holds the four independent name-keyed registries. Schemas are
// stored directly; the other three categories may themselves be pointers.
type Components struct {
	Schemas       *Map[*Schema]         `yaml:"schemas"`
	Parameters    *Map[*ParameterRef]   `yaml:"parameters"`
	Responses     *Map[*ResponseRef]    `yaml:"responses"`
	RequestBodies *Map[*RequestBodyRef] `yaml:"requestBodies"`
}

// PathItem carries the five generated methods plus parameters shared by
// all of them. Other methods are not generated.
type PathItem struct {
	Parameters []*ParameterRef `yaml:"parameters"`
	Get        *Operation      `yaml:"get"`
	Put        *Operation      `yaml:"put"`
	Post       *Operation      `yaml:"post"`
	Delete     *Operation      `yaml:"delete"`
	Patch      *Operation      `yaml:"patch"`
}

type Operation struct {
	OperationID string             `yaml:"operationId"`
	Description string             `yaml:"description"`
	Parameters  []*ParameterRef    `yaml:"parameters"`
	RequestBody *RequestBodyRef    `yaml:"requestBody"`
	Responses   *Map[*ResponseRef] `yaml:"responses"`
}

// Parameter describes one operation input. The value is either an inline
// Schema or a content map; content-valued parameters cannot be type-mapped
// and are skipped by the synthesizers.
type Parameter struct {
	Name        string           `yaml:"name"`
	In          string           `yaml:"in"`
	Required    bool             `yaml:"required"`
	Description string           `yaml:"description"`
	Schema      *Schema          `yaml:"schema"`
	Content     *Map[*MediaType] `yaml:"content"`
}

type MediaType struct {
	Schema *Schema `yaml:"schema"`
}

type RequestBody struct {
	Description string           `yaml:"description"`
	Required    bool             `yaml:"required"`
	Content     *Map[*MediaType] `yaml:"content"`
}

type Response struct {
	Description string           `yaml:"description"`
	Content     *Map[*MediaType] `yaml:"content"`
}

// Schema is one type-describing node. Exactly one of the type set, the
// reference and the items shape is authoritative for type mapping; the
// mapper applies its own precedence.
type Schema struct {
	Ref         string        `yaml:"$ref"`
	Format      string        `yaml:"format"`
	Types       *TypeSet      `yaml:"type"`
	Items       *ItemsSet     `yaml:"items"`
	Properties  *Map[*Schema] `yaml:"properties"`
	Required    []string      `yaml:"required"`
	Description string        `yaml:"description"`
}

// SingleType returns the instance type when exactly one is declared.
func (s *Schema) SingleType() (string, bool) {
	if s == nil || s.Types == nil || s.Types.Single == "" {
		return "", false
	}
	return s.Types.Single, true
}

// IsPureRef reports whether the node carries nothing but a pointer, which
// the resolver follows transitively.
func (s *Schema) IsPureRef() bool {
	return s != nil && s.Ref != "" && s.Format == "" && s.Types == nil &&
		s.Items == nil && s.Properties.Len() == 0
}

// RequiredSet returns the required property names as a set.
func (s *Schema) RequiredSet() map[string]bool {
	set := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		set[name] = true
	}
	return set
}

// TypeSet is a JSON-schema `type` value: a single instance type or a list
// of them. Only single types participate in type mapping.
type TypeSet struct {
	Single string
	List   []string
}

func (t *TypeSet) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&t.Single)
	case yaml.SequenceNode:
		return node.Decode(&t.List)
	default:
		return fmt.Errorf("line %d: type must be a string or a list of strings", node.Line)
	}
}

// ItemsSet is an array schema's `items` value: one item shape or a list of
// them. A boolean item shape is representable but unsupported downstream.
type ItemsSet struct {
	Single *BoolOrSchema
	List   []*BoolOrSchema
}

func (i *ItemsSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		return node.Decode(&i.List)
	}
	var single BoolOrSchema
	if err := node.Decode(&single); err != nil {
		return err
	}
	i.Single = &single
	return nil
}

// BoolOrSchema is a JSON-schema value that is either a bare boolean or a
// full schema object.
type BoolOrSchema struct {
	Bool   *bool
	Schema *Schema
}

func (b *BoolOrSchema) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var v bool
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("line %d: item schema must be a boolean or an object", node.Line)
		}
		b.Bool = &v
		return nil
	}
	var s Schema
	if err := node.Decode(&s); err != nil {
		return err
	}
	b.Schema = &s
	return nil
}

// ParameterRef is a parameter handle: inline value or registry pointer.
type ParameterRef struct {
	Ref   string
	Value *Parameter
}

func (r *ParameterRef) UnmarshalYAML(node *yaml.Node) error {
	if ref, ok := refOf(node); ok {
		r.Ref = ref
		return nil
	}
	var v Parameter
	if err := node.Decode(&v); err != nil {
		return err
	}
	r.Value = &v
	return nil
}

// ResponseRef is a response handle: inline value or registry pointer.
type ResponseRef struct {
	Ref   string
	Value *Response
}

func (r *ResponseRef) UnmarshalYAML(node *yaml.Node) error {
	if ref, ok := refOf(node); ok {
		r.Ref = ref
		return nil
	}
	var v Response
	if err := node.Decode(&v); err != nil {
		return err
	}
	r.Value = &v
	return nil
}

// RequestBodyRef is a request body handle: inline value or registry pointer.
type RequestBodyRef struct {
	Ref   string
	Value *RequestBody
}

func (r *RequestBodyRef) UnmarshalYAML(node *yaml.Node) error {
	if ref, ok := refOf(node); ok {
		r.Ref = ref
		return nil
	}
	var v RequestBody
	if err := node.Decode(&v); err != nil {
		return err
	}
	r.Value = &v
	return nil
}

// refOf returns the $ref string when the mapping node is a pointer.
func refOf(node *yaml.Node) (string, bool) {
	if node.Kind != yaml.MappingNode {
		return "", false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "$ref" {
			return node.Content[i+1].Value, node.Content[i+1].Value != ""
		}
	}
	return "", false
}
