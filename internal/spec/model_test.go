package spec

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestMap_PreservesInsertionOrder(t *testing.T) {
	t.Parallel()
	var m Map[string]
	if err := yaml.Unmarshal([]byte("zulu: one\nalpha: two\nmike: three\n"), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{"zulu", "alpha", "mike"}
	got := m.Keys()
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys = %v, want %v", got, want)
		}
	}
	if v, ok := m.Get("alpha"); !ok || v != "two" {
		t.Fatalf("Get(alpha) = %q, %v", v, ok)
	}
}

func TestMap_NilReceiver(t *testing.T) {
	t.Parallel()
	var m *Map[string]
	if m.Len() != 0 {
		t.Fatalf("Len = %d, want 0", m.Len())
	}
	if keys := m.Keys(); len(keys) != 0 {
		t.Fatalf("Keys = %v, want empty", keys)
	}
	if _, ok := m.Get("anything"); ok {
		t.Fatal("Get on nil map reported a hit")
	}
}

func TestMap_RejectsNonMapping(t *testing.T) {
	t.Parallel()
	var m Map[string]
	if err := yaml.Unmarshal([]byte("- a\n- b\n"), &m); err == nil {
		t.Fatal("expected an error for a sequence node")
	}
}

func TestTypeSet_SingleAndList(t *testing.T) {
	t.Parallel()
	var single TypeSet
	if err := yaml.Unmarshal([]byte("string"), &single); err != nil {
		t.Fatalf("unmarshal scalar: %v", err)
	}
	if single.Single != "string" || single.List != nil {
		t.Fatalf("unexpected TypeSet: %+v", single)
	}

	var list TypeSet
	if err := yaml.Unmarshal([]byte("[string, \"null\"]"), &list); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if list.Single != "" || len(list.List) != 2 {
		t.Fatalf("unexpected TypeSet: %+v", list)
	}
}

func TestItemsSet_Shapes(t *testing.T) {
	t.Parallel()
	var single ItemsSet
	if err := yaml.Unmarshal([]byte("type: string\n"), &single); err != nil {
		t.Fatalf("unmarshal single: %v", err)
	}
	if single.Single == nil || single.Single.Schema == nil {
		t.Fatalf("unexpected ItemsSet: %+v", single)
	}

	var boolean ItemsSet
	if err := yaml.Unmarshal([]byte("true"), &boolean); err != nil {
		t.Fatalf("unmarshal boolean: %v", err)
	}
	if boolean.Single == nil || boolean.Single.Bool == nil || !*boolean.Single.Bool {
		t.Fatalf("unexpected ItemsSet: %+v", boolean)
	}

	var list ItemsSet
	if err := yaml.Unmarshal([]byte("- type: string\n- type: integer\n"), &list); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(list.List) != 2 {
		t.Fatalf("unexpected ItemsSet: %+v", list)
	}
}

func TestParameterRef_PointerAndInline(t *testing.T) {
	t.Parallel()
	var ref ParameterRef
	if err := yaml.Unmarshal([]byte("$ref: \"#/components/parameters/Page\"\n"), &ref); err != nil {
		t.Fatalf("unmarshal pointer: %v", err)
	}
	if ref.Ref != "#/components/parameters/Page" || ref.Value != nil {
		t.Fatalf("unexpected handle: %+v", ref)
	}

	var inline ParameterRef
	if err := yaml.Unmarshal([]byte("name: page\nin: query\nschema:\n  type: integer\n"), &inline); err != nil {
		t.Fatalf("unmarshal inline: %v", err)
	}
	if inline.Ref != "" || inline.Value == nil || inline.Value.Name != "page" {
		t.Fatalf("unexpected handle: %+v", inline)
	}
}

func TestSchema_IsPureRef(t *testing.T) {
	t.Parallel()
	pure := &Schema{Ref: "#/components/schemas/Other"}
	if !pure.IsPureRef() {
		t.Fatal("expected a pure pointer")
	}
	mixed := &Schema{Ref: "#/components/schemas/Other", Format: "int64"}
	if mixed.IsPureRef() {
		t.Fatal("a node with concrete content is not a pure pointer")
	}
	if (*Schema)(nil).IsPureRef() {
		t.Fatal("nil schema is not a pure pointer")
	}
}
