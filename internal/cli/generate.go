package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/openclientgen/openapi2rust/internal/diag"
	"github.com/openclientgen/openapi2rust/internal/emitter/rustemitter"
	genspec "github.com/openclientgen/openapi2rust/internal/spec"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input         string
	Out           string
	CrateName     string
	CrateVersion  string
	License       string
	Description   string
	Readme        string
	Documentation string
	Repository    string
	Models        []string
	ConfigPath    string
	Validate      bool
	DryRun        bool
	Force         bool
	Verbose       bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a Rust API client crate from an OpenAPI document",
		Long: "Generate a Rust API client crate from an OpenAPI 3 document. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  openapi2rust generate --input api.yml --out ./client
  openapi2rust --config config.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path to the OpenAPI document (.yml or .yaml)")
	flags.String("out", "", "Output directory (derived from the document title when omitted)")
	flags.String("crate-name", "", "Override the generated crate name")
	flags.String("crate-version", "", "Version for the generated Cargo.toml")
	flags.String("license", "", "License identifier for the generated Cargo.toml")
	flags.String("description", "", "Description for the generated Cargo.toml")
	flags.String("readme", "", "Readme path for the generated Cargo.toml")
	flags.String("documentation", "", "Documentation URL for the generated Cargo.toml")
	flags.String("repository", "", "Repository URL for the generated Cargo.toml")
	flags.StringSlice("models", nil, "Extra model paths re-exported from models/mod.rs")
	flags.Bool("validate", false, "Validate the document against the OpenAPI 3 schema before generating")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	stringFlags := map[string]*string{
		"input":         &cfg.Input,
		"out":           &cfg.Out,
		"crate-name":    &cfg.CrateName,
		"crate-version": &cfg.CrateVersion,
		"license":       &cfg.License,
		"description":   &cfg.Description,
		"readme":        &cfg.Readme,
		"documentation": &cfg.Documentation,
		"repository":    &cfg.Repository,
	}
	for name, target := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*target = strings.TrimSpace(value)
	}
	if flags.Changed("models") {
		value, err := flags.GetStringSlice("models")
		if err != nil {
			return err
		}
		cfg.Models = sanitizeList(value)
	}
	boolFlags := map[string]*bool{
		"validate": &cfg.Validate,
		"dry-run":  &cfg.DryRun,
		"force":    &cfg.Force,
		"verbose":  &cfg.Verbose,
	}
	for name, target := range boolFlags {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*target = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.CrateName = strings.TrimSpace(c.CrateName)
	c.CrateVersion = strings.TrimSpace(c.CrateVersion)
	c.License = strings.TrimSpace(c.License)
	c.Description = strings.TrimSpace(c.Description)
	c.Readme = strings.TrimSpace(c.Readme)
	c.Documentation = strings.TrimSpace(c.Documentation)
	c.Repository = strings.TrimSpace(c.Repository)
	c.Models = sanitizeList(c.Models)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if cfg.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	sink := diag.NewLogrus(logger)

	// 1) Load the document into the generation model
	doc, err := genspec.LoadFile(cfg.Input)
	if err != nil {
		return specErrorToUsage(err)
	}

	// 2) Optional schema validation pass over the raw bytes
	if cfg.Validate {
		data, err := os.ReadFile(cfg.Input)
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}
		if err := genspec.Validate(ctx, data, cfg.Input); err != nil {
			return specErrorToUsage(err)
		}
	}

	// 3) Derive the output directory from the crate name when omitted
	outDir := cfg.Out
	if outDir == "" {
		outDir = deriveCrateName(cfg.CrateName, doc.Info.Title)
	}

	absOut := outDir
	if ap, err := filepath.Abs(outDir); err == nil {
		absOut = ap
	}

	// 4) Emit the crate
	res, err := rustemitter.Emit(ctx, doc, rustemitter.Options{
		OutDir:        outDir,
		CrateName:     cfg.CrateName,
		CrateVersion:  cfg.CrateVersion,
		License:       cfg.License,
		Description:   cfg.Description,
		Readme:        cfg.Readme,
		Documentation: cfg.Documentation,
		Repository:    cfg.Repository,
		Models:        cfg.Models,
		Force:         cfg.Force,
		DryRun:        cfg.DryRun,
		Verbose:       cfg.Verbose,
		Sink:          sink,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}
	if cfg.DryRun {
		paths := make([]string, 0, len(res.Planned))
		for _, p := range res.Planned {
			paths = append(paths, p.RelPath)
		}
		printPlan(absOut, len(res.Planned), paths)
	}

	return nil
}

// specErrorToUsage maps structured document errors into friendly messages.
func specErrorToUsage(err error) error {
	var se *genspec.SpecError
	if errors.As(err, &se) {
		msg := fmt.Sprintf("document: %s", se.Message)
		if se.Location != "" {
			msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
		}
		if se.JSONPointer != "" {
			msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
		}
		return newUsageError(msg)
	}
	return err
}

func printPlan(outDir string, count int, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, count)
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}

func deriveCrateName(crateName, title string) string {
	name := strings.TrimSpace(crateName)
	if name == "" {
		name = strings.TrimSpace(title)
	}
	if name == "" {
		return "api-client"
	}
	name = strings.ToLower(name)
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ")
	name = repl.Replace(name)
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "api-client"
	}
	return strings.Join(parts, "-")
}

func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		switch normalized {
		case "input", "out", "cratename", "crateversion", "license", "description", "readme", "documentation", "repository":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			switch normalized {
			case "input":
				cfg.Input = str
			case "out":
				cfg.Out = str
			case "cratename":
				cfg.CrateName = str
			case "crateversion":
				cfg.CrateVersion = str
			case "license":
				cfg.License = str
			case "description":
				cfg.Description = str
			case "readme":
				cfg.Readme = str
			case "documentation":
				cfg.Documentation = str
			case "repository":
				cfg.Repository = str
			}
		case "models":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Models = sanitizeList(list)
		case "validate", "dryrun", "force", "verbose":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			switch normalized {
			case "validate":
				cfg.Validate = val
			case "dryrun":
				cfg.DryRun = val
			case "force":
				cfg.Force = val
			case "verbose":
				cfg.Verbose = val
			}
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
