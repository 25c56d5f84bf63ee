package resolve

import (
	"errors"
	"strings"
	"testing"

	"github.com/openclientgen/openapi2rust/internal/diag"
	"github.com/openclientgen/openapi2rust/internal/spec"
)

const componentsDoc = `openapi: 3.0.3
info:
  title: Registry
  version: 1.0.0
paths: {}
components:
  schemas:
    Pet:
      type: object
      properties:
        name:
          type: string
    PetAlias:
      $ref: "#/components/schemas/Pet"
    PetAliasAlias:
      $ref: "#/components/schemas/PetAlias"
    Loop:
      $ref: "#/components/schemas/Loop"
    PingA:
      $ref: "#/components/schemas/PingB"
    PingB:
      $ref: "#/components/schemas/PingA"
  parameters:
    Page:
      name: page
      in: query
      schema:
        type: integer
    PageAlias:
      $ref: "#/components/parameters/Page"
  responses:
    NotFound:
      description: missing
  requestBodies:
    NewPet:
      content:
        application/json:
          schema:
            $ref: "#/components/schemas/Pet"
`

func loadComponents(t *testing.T) *spec.Components {
	t.Helper()
	doc, err := spec.Load([]byte(componentsDoc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return &doc.Components
}

func TestResolve_AbsentHandle(t *testing.T) {
	t.Parallel()
	r := New(loadComponents(t), nil)

	resolved, err := r.Resolve(SchemaTarget(nil))
	if err != nil || resolved != nil {
		t.Fatalf("absent schema: %v, %v", resolved, err)
	}
	resolved, err = r.Resolve(RequestBodyTarget(nil))
	if err != nil || resolved != nil {
		t.Fatalf("absent request body: %v, %v", resolved, err)
	}
}

func TestResolve_InlineIsIdentity(t *testing.T) {
	t.Parallel()
	r := New(loadComponents(t), nil)

	inline := &spec.Parameter{Name: "limit", In: "query"}
	resolved, err := r.Resolve(ParameterTarget(&spec.ParameterRef{Value: inline}))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Kind != KindParameter || resolved.Parameter != inline {
		t.Fatalf("inline parameter not returned as-is: %+v", resolved)
	}
}

func TestResolveRef_TransitiveChain(t *testing.T) {
	t.Parallel()
	r := New(loadComponents(t), nil)

	// Pointer to pointer to pointer, three hops deep.
	resolved, err := r.ResolveRef("#/components/schemas/PetAliasAlias")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved == nil || resolved.Kind != KindSchema {
		t.Fatalf("unexpected result: %+v", resolved)
	}
	if resolved.Schema.Properties.Len() != 1 {
		t.Fatalf("chain did not land on the concrete schema: %+v", resolved.Schema)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	t.Parallel()
	r := New(loadComponents(t), nil)

	first, err := r.ResolveRef("#/components/schemas/PetAlias")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	again, err := r.Resolve(SchemaTarget(first.Schema))
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if again.Schema != first.Schema {
		t.Fatal("resolving a concrete schema changed the entity")
	}
}

func TestResolveRef_SelfCycle(t *testing.T) {
	t.Parallel()
	r := New(loadComponents(t), nil)

	_, err := r.ResolveRef("#/components/schemas/Loop")
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
	if len(cycle.Chain) < 2 {
		t.Fatalf("chain too short: %v", cycle.Chain)
	}
}

func TestResolveRef_MutualCycle(t *testing.T) {
	t.Parallel()
	r := New(loadComponents(t), nil)

	_, err := r.ResolveRef("#/components/schemas/PingA")
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
	if !strings.Contains(cycle.Error(), "PingA") || !strings.Contains(cycle.Error(), "PingB") {
		t.Fatalf("chain missing participants: %v", cycle.Error())
	}
}

func TestResolveRef_UnknownCategoryWarns(t *testing.T) {
	t.Parallel()
	var rec diag.Recorder
	r := New(loadComponents(t), &rec)

	resolved, err := r.ResolveRef("#/components/headers/RateLimit")
	if err != nil || resolved != nil {
		t.Fatalf("unknown category should yield no match: %v, %v", resolved, err)
	}
	warnings := rec.Warnings()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "headers") {
		t.Fatalf("warnings = %v", warnings)
	}
}

func TestResolveRef_MissingName(t *testing.T) {
	t.Parallel()
	r := New(loadComponents(t), nil)

	resolved, err := r.ResolveRef("#/components/schemas/Missing")
	if err != nil || resolved != nil {
		t.Fatalf("missing entry should yield no match: %v, %v", resolved, err)
	}
}

func TestResolveRef_MalformedPointer(t *testing.T) {
	t.Parallel()
	r := New(loadComponents(t), nil)

	if _, err := r.ResolveRef("#/components"); err == nil {
		t.Fatal("expected an error for a pointer without a category")
	}
	if _, err := r.ResolveRef("#/components/schemas"); err == nil {
		t.Fatal("expected an error for a pointer without a name")
	}
}

func TestResolveRef_OtherCategories(t *testing.T) {
	t.Parallel()
	r := New(loadComponents(t), nil)

	param, err := r.ResolveRef("#/components/parameters/PageAlias")
	if err != nil || param == nil || param.Kind != KindParameter {
		t.Fatalf("parameter alias: %+v, %v", param, err)
	}
	if param.Parameter.Name != "page" {
		t.Fatalf("wrong parameter: %+v", param.Parameter)
	}

	resp, err := r.ResolveRef("#/components/responses/NotFound")
	if err != nil || resp == nil || resp.Kind != KindResponse {
		t.Fatalf("response: %+v, %v", resp, err)
	}

	body, err := r.ResolveRef("#/components/requestBodies/NewPet")
	if err != nil || body == nil || body.Kind != KindRequestBody {
		t.Fatalf("request body: %+v, %v", body, err)
	}

	// The singular category token is tolerated.
	body, err = r.ResolveRef("#/components/requestBody/NewPet")
	if err != nil || body == nil || body.Kind != KindRequestBody {
		t.Fatalf("singular request body token: %+v, %v", body, err)
	}
}
