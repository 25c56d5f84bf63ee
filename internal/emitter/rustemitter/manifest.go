package rustemitter

import (
	"fmt"
	"strings"
)

// generateManifest renders the crate's Cargo.toml. Package metadata comes
// from the options; the dependency block is fixed and matches what the
// generated sources import.
func generateManifest(opts Options) string {
	var b strings.Builder

	b.WriteString("[package]\n")
	fmt.Fprintf(&b, "name = %q\n", opts.CrateName)
	fmt.Fprintf(&b, "version = %q\n", orDefault(opts.CrateVersion, "0.1.0"))
	b.WriteString("edition = \"2021\"\n")
	if opts.License != "" {
		fmt.Fprintf(&b, "license = %q\n", opts.License)
	}
	if opts.Description != "" {
		fmt.Fprintf(&b, "description = %q\n", opts.Description)
	}
	if opts.Readme != "" {
		fmt.Fprintf(&b, "readme = %q\n", opts.Readme)
	}
	if opts.Documentation != "" {
		fmt.Fprintf(&b, "documentation = %q\n", opts.Documentation)
	}
	if opts.Repository != "" {
		fmt.Fprintf(&b, "repository = %q\n", opts.Repository)
	}
	b.WriteString("\n")

	b.WriteString("[dependencies]\n")
	b.WriteString("anyhow = \"1\"\n")
	b.WriteString("bytes = \"1\"\n")
	b.WriteString("secrecy = \"0\"\n")
	b.WriteString("serde_json = \"1\"\n\n")

	b.WriteString("[dependencies.base64uuid]\n")
	b.WriteString("git = \"ssh://git@github.com/fiberplane/fiberplane-rs.git\"\n")
	b.WriteString("branch = \"main\"\n\n")

	b.WriteString("[dependencies.fiberplane-models]\n")
	b.WriteString("git = \"ssh://git@github.com/fiberplane/fiberplane-rs.git\"\n")
	b.WriteString("branch = \"main\"\n\n")

	b.WriteString("[dependencies.reqwest]\n")
	b.WriteString("version = \"0.11\"\n")
	b.WriteString("default-features = false\n")
	b.WriteString("features = [\"gzip\", \"json\", \"multipart\", \"rustls-tls\"]\n\n")

	b.WriteString("[dependencies.serde]\n")
	b.WriteString("version = \"1\"\n")
	b.WriteString("features = [\"derive\"]\n\n")

	b.WriteString("[dependencies.time]\n")
	b.WriteString("version = \"0.3\"\n")
	b.WriteString("features = [\"formatting\", \"parsing\", \"serde-human-readable\", \"serde-well-known\"]\n")

	return b.String()
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
