package spec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Map is a string-keyed map that remembers document order. Registry and
// property iteration order is part of the output contract, so every
// name-keyed mapping in the model decodes into one of these.
type Map[V any] struct {
	keys   []string
	values map[string]V
}

// Len returns the number of entries. Safe on a nil receiver.
func (m *Map[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in document order. Safe on a nil receiver.
func (m *Map[V]) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Get returns the value for key. Safe on a nil receiver.
func (m *Map[V]) Get(key string) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Set appends key (if new) and stores the value.
func (m *Map[V]) Set(key string, value V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *Map[V]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping, got %s", node.Line, nodeKind(node))
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		var value V
		if err := valueNode.Decode(&value); err != nil {
			return err
		}
		m.Set(keyNode.Value, value)
	}
	return nil
}

func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return fmt.Sprintf("kind(%d)", node.Kind)
	}
}
