// Package resolve follows indirection pointers through the component
// registries and hands back concrete entities. It is the only recursive
// algorithm in the generator.
package resolve

import (
	"fmt"
	"strings"

	"github.com/openclientgen/openapi2rust/internal/diag"
	"github.com/openclientgen/openapi2rust/internal/spec"
)

// Kind discriminates the four entity variants a handle can resolve to.
type Kind int

const (
	KindSchema Kind = iota
	KindParameter
	KindResponse
	KindRequestBody
)

func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "Schema"
	case KindParameter:
		return "Parameter"
	case KindResponse:
		return "Response"
	case KindRequestBody:
		return "RequestBody"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Target is a possibly-indirect entity handle: an inline value, a registry
// pointer, or absent. Construct one with the *Target helpers.
type Target struct {
	kind        Kind
	schema      *spec.Schema
	parameter   *spec.ParameterRef
	response    *spec.ResponseRef
	requestBody *spec.RequestBodyRef
}

// SchemaTarget wraps a schema handle; s may be nil (absent).
func SchemaTarget(s *spec.Schema) Target { return Target{kind: KindSchema, schema: s} }

// ParameterTarget wraps a parameter handle; r may be nil (absent).
func ParameterTarget(r *spec.ParameterRef) Target { return Target{kind: KindParameter, parameter: r} }

// ResponseTarget wraps a response handle; r may be nil (absent).
func ResponseTarget(r *spec.ResponseRef) Target { return Target{kind: KindResponse, response: r} }

// RequestBodyTarget wraps a request body handle; r may be nil (absent).
func RequestBodyTarget(r *spec.RequestBodyRef) Target {
	return Target{kind: KindRequestBody, requestBody: r}
}

// Resolved is a concrete entity tagged with its variant. Exactly one of
// the entity fields matching Kind is set. Resolved entities may alias the
// registry; callers must treat them as read-only.
type Resolved struct {
	Kind        Kind
	Schema      *spec.Schema
	Parameter   *spec.Parameter
	Response    *spec.Response
	RequestBody *spec.RequestBody
}

// CycleError reports a self- or mutually-referential pointer chain.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic reference: %s", strings.Join(e.Chain, " -> "))
}

// Resolver resolves handles against a component registry. It never
// mutates the registry and holds no state between calls.
type Resolver struct {
	components *spec.Components
	sink       diag.Sink
}

// New returns a resolver over the given registries. A nil sink discards
// diagnostics.
func New(components *spec.Components, sink diag.Sink) *Resolver {
	if sink == nil {
		sink = diag.Nop{}
	}
	return &Resolver{components: components, sink: sink}
}

// Resolve produces the concrete entity behind a handle. Absent handles
// yield (nil, nil); so do pointers into a recognized category with no
// matching entry. Unrecognized categories are reported to the sink and
// yield (nil, nil). Pointer chains are followed transitively; a cycle is
// a *CycleError.
func (r *Resolver) Resolve(target Target) (*Resolved, error) {
	switch target.kind {
	case KindSchema:
		if target.schema == nil {
			return nil, nil
		}
		if target.schema.Ref != "" {
			return r.resolveRef(target.schema.Ref, nil)
		}
		return &Resolved{Kind: KindSchema, Schema: target.schema}, nil
	case KindParameter:
		if target.parameter == nil {
			return nil, nil
		}
		if target.parameter.Ref != "" {
			return r.resolveRef(target.parameter.Ref, nil)
		}
		return &Resolved{Kind: KindParameter, Parameter: target.parameter.Value}, nil
	case KindResponse:
		if target.response == nil {
			return nil, nil
		}
		if target.response.Ref != "" {
			return r.resolveRef(target.response.Ref, nil)
		}
		return &Resolved{Kind: KindResponse, Response: target.response.Value}, nil
	case KindRequestBody:
		if target.requestBody == nil {
			return nil, nil
		}
		if target.requestBody.Ref != "" {
			return r.resolveRef(target.requestBody.Ref, nil)
		}
		return &Resolved{Kind: KindRequestBody, RequestBody: target.requestBody.Value}, nil
	default:
		return nil, fmt.Errorf("resolve: unknown target kind %d", int(target.kind))
	}
}

// ResolveRef resolves a raw pointer of the form
// #/components/<category>/<name>.
func (r *Resolver) ResolveRef(ref string) (*Resolved, error) {
	return r.resolveRef(ref, nil)
}

func (r *Resolver) resolveRef(ref string, stack []string) (*Resolved, error) {
	for _, seen := range stack {
		if seen == ref {
			return nil, &CycleError{Chain: append(append([]string{}, stack...), ref)}
		}
	}
	stack = append(stack, ref)

	// The first token is #, the second is components.
	parts := strings.Split(ref, "/")
	if len(parts) < 3 {
		return nil, fmt.Errorf("no component category found in %q", ref)
	}
	if len(parts) < 4 {
		return nil, fmt.Errorf("no component name found in %q", ref)
	}
	category, name := parts[2], parts[3]

	switch category {
	case "schemas":
		schema, ok := r.components.Schemas.Get(name)
		if !ok {
			return nil, nil
		}
		// A registry entry that is nothing but a pointer is itself
		// followed; anything with concrete content is returned as-is.
		if schema.IsPureRef() {
			return r.resolveRef(schema.Ref, stack)
		}
		return &Resolved{Kind: KindSchema, Schema: schema}, nil
	case "parameters":
		entry, ok := r.components.Parameters.Get(name)
		if !ok {
			return nil, nil
		}
		if entry.Ref != "" {
			return r.resolveRef(entry.Ref, stack)
		}
		return &Resolved{Kind: KindParameter, Parameter: entry.Value}, nil
	case "responses":
		entry, ok := r.components.Responses.Get(name)
		if !ok {
			return nil, nil
		}
		if entry.Ref != "" {
			return r.resolveRef(entry.Ref, stack)
		}
		return &Resolved{Kind: KindResponse, Response: entry.Value}, nil
	case "requestBodies", "requestBody":
		entry, ok := r.components.RequestBodies.Get(name)
		if !ok {
			return nil, nil
		}
		if entry.Ref != "" {
			return r.resolveRef(entry.Ref, stack)
		}
		return &Resolved{Kind: KindRequestBody, RequestBody: entry.Value}, nil
	default:
		r.sink.Warnf("unsupported component category %q in %q", category, ref)
		return nil, nil
	}
}
