// Package rustemitter renders a typed Rust client crate from a parsed
// OpenAPI document: one async function per operation, one record per
// registry schema, fixed transport scaffolding and a crate manifest.
package rustemitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/openclientgen/openapi2rust/internal/diag"
	"github.com/openclientgen/openapi2rust/internal/resolve"
	"github.com/openclientgen/openapi2rust/internal/spec"
)

// Options controls how the Rust emitter renders a crate.
type Options struct {
	OutDir        string // required; target directory to write the crate
	CrateName     string // crate name; defaults to the document title when empty
	CrateVersion  string // crate version; defaults to 0.1.0
	License       string
	Description   string
	Readme        string
	Documentation string
	Repository    string
	Models        []string // extra pub use lines for models/mod.rs
	Force         bool     // overwrite existing files
	DryRun        bool     // don't write, only plan
	Verbose       bool
	Sink          diag.Sink // diagnostics; nil discards
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result returns the planned files and the final resolved crate name.
type Result struct {
	CrateName string
	Planned   []PlannedFile
}

// Emit renders a Rust client crate from the document.
func Emit(ctx context.Context, doc *spec.Document, opts Options) (*Result, error) {
	_ = ctx
	if doc == nil {
		return nil, fmt.Errorf("rustemitter: nil document")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("rustemitter: OutDir is required")
	}
	sink := opts.Sink
	if sink == nil {
		sink = diag.Nop{}
	}
	crateName := sanitizeCrateName(opts.CrateName)
	if crateName == "" {
		crateName = sanitizeCrateName(doc.Info.Title)
		if crateName == "" {
			crateName = "api-client"
		}
	}
	opts.CrateName = crateName

	resolver := resolve.New(&doc.Components, sink)

	files := map[string][]byte{}
	files["Cargo.toml"] = []byte(generateManifest(opts))

	lib, err := generateRoutes(doc, resolver, sink)
	if err != nil {
		return nil, err
	}
	files[filepath.Join("src", "lib.rs")] = []byte(lib)

	models, err := generateModels(&doc.Components, opts.Models, sink)
	if err != nil {
		return nil, err
	}
	for rel, source := range models {
		files[filepath.Join("src", filepath.FromSlash(rel))] = []byte(source)
	}

	clients, err := generateClients(doc.Servers)
	if err != nil {
		return nil, err
	}
	files[filepath.Join("src", "clients.rs")] = []byte(clients)
	files[filepath.Join("src", "builder.rs")] = []byte(builderSource)

	// Plan in deterministic order
	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, filepath.ToSlash(p))
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[filepath.FromSlash(rel)]), Mode: 0o644})
	}

	if !opts.DryRun {
		if err := writeFiles(opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}

	return &Result{CrateName: crateName, Planned: planned}, nil
}

func writeFiles(outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	// Pre-flight: if directory exists and not empty and not force, error.
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("rustemitter: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	for rel, content := range files {
		p := filepath.Join(abs, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		// atomic write via temp file + rename
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}

// sanitizeCrateName lowercases and keeps alnum, dash and underscore;
// spaces and slashes become dashes.
func sanitizeCrateName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ToLower(name)
	b := strings.Builder{}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}
