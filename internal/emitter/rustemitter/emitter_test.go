package rustemitter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openclientgen/openapi2rust/internal/spec"
)

const sampleDoc = `openapi: 3.0.3
info:
  title: Sample API
  version: 1.0.0
servers:
  - url: https://api.example.com/v1
    description: Production servers
paths:
  /pets:
    get:
      operationId: list_pets
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: "#/components/schemas/Pet"
    post:
      operationId: create_pet
      requestBody:
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/NewPet"
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Pet"
components:
  schemas:
    Pet:
      type: object
      required:
        - id
      properties:
        id:
          type: string
          format: base64uuid
        name:
          type: string
    NewPet:
      type: object
      properties:
        name:
          type: string
`

func loadSample(t *testing.T) *spec.Document {
	t.Helper()
	doc, err := spec.Load([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return doc
}

func TestEmit_DryRunPlansWithoutWriting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	res, err := Emit(ctx, loadSample(t), Options{OutDir: dir, DryRun: true})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.CrateName != "sample-api" {
		t.Fatalf("crate name = %q", res.CrateName)
	}

	want := []string{
		"Cargo.toml",
		"src/builder.rs",
		"src/clients.rs",
		"src/lib.rs",
		"src/models/mod.rs",
		"src/models/new_pet.rs",
		"src/models/pet.rs",
	}
	if len(res.Planned) != len(want) {
		t.Fatalf("planned %d files, want %d: %+v", len(res.Planned), len(want), res.Planned)
	}
	for i, rel := range want {
		if res.Planned[i].RelPath != rel {
			t.Fatalf("plan[%d] = %q, want %q", i, res.Planned[i].RelPath, rel)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("dry run wrote files: %v", entries)
	}
}

func TestEmit_WritesCrate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	if _, err := Emit(ctx, loadSample(t), Options{OutDir: dir, CrateName: "petstore-client", CrateVersion: "1.2.3", License: "MIT"}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	manifest, err := os.ReadFile(filepath.Join(dir, "Cargo.toml"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	for _, want := range []string{
		"name = \"petstore-client\"",
		"version = \"1.2.3\"",
		"edition = \"2021\"",
		"license = \"MIT\"",
		"[dependencies.reqwest]",
		"features = [\"gzip\", \"json\", \"multipart\", \"rustls-tls\"]",
	} {
		if !strings.Contains(string(manifest), want) {
			t.Errorf("Cargo.toml missing %q:\n%s", want, manifest)
		}
	}

	lib, err := os.ReadFile(filepath.Join(dir, "src", "lib.rs"))
	if err != nil {
		t.Fatalf("read lib.rs: %v", err)
	}
	if !strings.Contains(string(lib), "pub async fn list_pets(") {
		t.Fatalf("lib.rs missing operation:\n%s", lib)
	}

	clients, err := os.ReadFile(filepath.Join(dir, "src", "clients.rs"))
	if err != nil {
		t.Fatalf("read clients.rs: %v", err)
	}
	for _, want := range []string{
		"pub fn production_client(",
		"let url = \"https://api.example.com/v1\";",
		"pub struct ApiClient {",
	} {
		if !strings.Contains(string(clients), want) {
			t.Errorf("clients.rs missing %q:\n%s", want, clients)
		}
	}
}

func TestEmit_Deterministic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	first := t.TempDir()
	second := t.TempDir()

	if _, err := Emit(ctx, loadSample(t), Options{OutDir: first}); err != nil {
		t.Fatalf("first emit: %v", err)
	}
	if _, err := Emit(ctx, loadSample(t), Options{OutDir: second}); err != nil {
		t.Fatalf("second emit: %v", err)
	}

	res, err := Emit(ctx, loadSample(t), Options{OutDir: t.TempDir(), DryRun: true})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	for _, pf := range res.Planned {
		a, err := os.ReadFile(filepath.Join(first, filepath.FromSlash(pf.RelPath)))
		if err != nil {
			t.Fatalf("read %s: %v", pf.RelPath, err)
		}
		b, err := os.ReadFile(filepath.Join(second, filepath.FromSlash(pf.RelPath)))
		if err != nil {
			t.Fatalf("read %s: %v", pf.RelPath, err)
		}
		if !bytes.Equal(a, b) {
			t.Errorf("%s differs between runs", pf.RelPath)
		}
	}
}

func TestEmit_NonEmptyDirNeedsForce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := Emit(ctx, loadSample(t), Options{OutDir: dir})
	if err == nil || !strings.Contains(err.Error(), "not empty") {
		t.Fatalf("expected a non-empty dir error, got %v", err)
	}

	if _, err := Emit(ctx, loadSample(t), Options{OutDir: dir, Force: true}); err != nil {
		t.Fatalf("emit with force: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "src", "lib.rs")); err != nil {
		t.Fatalf("force emit wrote nothing: %v", err)
	}
}

func TestEmit_MissingOutDir(t *testing.T) {
	t.Parallel()
	if _, err := Emit(context.Background(), loadSample(t), Options{}); err == nil {
		t.Fatal("expected an error when OutDir is empty")
	}
}

func TestSanitizeCrateName(t *testing.T) {
	t.Parallel()
	cases := []struct{ in, want string }{
		{"Sample API", "sample-api"},
		{"  my/crate  ", "my-crate"},
		{"--weird--", "weird"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := sanitizeCrateName(tc.in); got != tc.want {
			t.Errorf("sanitizeCrateName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
