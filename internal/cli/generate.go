package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/apiweld/sdkgen/internal/emitter/tsemitter"
	"github.com/apiweld/sdkgen/internal/ir"
)

// GenerateConfig captures all inputs that influence the generate command
// after merging defaults, config file values, environment overrides, and CLI
// flags.
type GenerateConfig struct {
	Input            string
	Out              string
	InterfacesModule string
	MagicComments    []string
	FileIncludes     []string
	Casters          map[string]string
	ConfigPath       string
	DryRun           bool
	Force            bool
	Verbose          bool
}

// envOverrides is the environment layer, applied between config file values
// and flags.
type envOverrides struct {
	Input   string `env:"SDKGEN_INPUT"`
	Out     string `env:"SDKGEN_OUT"`
	Verbose bool   `env:"SDKGEN_VERBOSE"`
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a TypeScript client SDK from a service description",
		Long: "Generate typed TypeScript client stubs and wire/domain mapper functions " +
			"from a service description. Options can be provided via flags, config files, " +
			"environment variables, or defaults.",
		Example: strings.TrimSpace(`  sdkgen generate --input service.yaml --out ./sdk
  sdkgen --config sdkgen.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the service description (sdkgen or OpenAPI document)")
	flags.String("out", "", "Output directory for generated artifacts")
	flags.String("interfaces-module", "", "Namespace override for where client classes are placed")
	flags.StringSlice("magic-comment", nil, "Raw comment line prepended to every generated file (repeatable)")
	flags.StringSlice("file-include", nil, "Module imported at the top of each client artifact (repeatable)")
	flags.StringToString("caster", nil, "Custom caster for a primitive or type name, as name=identifier")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := &GenerateConfig{}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyGenerateEnvOverrides(cfg *GenerateConfig) error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return newUsageError(fmt.Sprintf("generate: parse environment: %v", err))
	}
	if overrides.Input != "" {
		cfg.Input = overrides.Input
	}
	if overrides.Out != "" {
		cfg.Out = overrides.Out
	}
	if overrides.Verbose {
		cfg.Verbose = true
	}
	return nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("input") {
		value, err := flags.GetString("input")
		if err != nil {
			return err
		}
		cfg.Input = strings.TrimSpace(value)
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("interfaces-module") {
		value, err := flags.GetString("interfaces-module")
		if err != nil {
			return err
		}
		cfg.InterfacesModule = strings.TrimSpace(value)
	}
	if flags.Changed("magic-comment") {
		value, err := flags.GetStringSlice("magic-comment")
		if err != nil {
			return err
		}
		cfg.MagicComments = value
	}
	if flags.Changed("file-include") {
		value, err := flags.GetStringSlice("file-include")
		if err != nil {
			return err
		}
		cfg.FileIncludes = value
	}
	if flags.Changed("caster") {
		value, err := flags.GetStringToString("caster")
		if err != nil {
			return err
		}
		cfg.Casters = value
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("force") {
		value, err := flags.GetBool("force")
		if err != nil {
			return err
		}
		cfg.Force = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.InterfacesModule = strings.TrimSpace(c.InterfacesModule)
	c.FileIncludes = sanitizeList(c.FileIncludes)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag, config file, or SDKGEN_INPUT)")
	}
	if c.Out == "" {
		return newUsageError("generate: --out is required (set via flag, config file, or SDKGEN_OUT)")
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	logger, err := NewLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	svc, err := ir.Load(ctx, cfg.Input)
	if err != nil {
		var le *ir.LoadError
		if errors.As(err, &le) {
			msg := fmt.Sprintf("input: %s", le.Message)
			if le.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, le.Location)
			}
			return newUsageError(msg)
		}
		return err
	}

	logger.Info("loaded service",
		zap.String("name", svc.Name),
		zap.Int("interfaces", len(svc.Interfaces)),
		zap.Int("types", len(svc.Types)),
		zap.Int("enums", len(svc.Enums)))
	if cfg.Verbose {
		logger.Debug("service IR", zap.String("dump", spew.Sdump(svc)))
	}

	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}

	res, err := tsemitter.Emit(ctx, svc, tsemitter.Options{
		OutDir:           cfg.Out,
		InterfacesModule: cfg.InterfacesModule,
		MagicComments:    cfg.MagicComments,
		FileIncludes:     cfg.FileIncludes,
		Casters:          cfg.Casters,
		Force:            cfg.Force,
		DryRun:           cfg.DryRun,
		Verbose:          cfg.Verbose,
		Logger:           logger,
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
	} else {
		logger.Info("generated artifacts", zap.Int("files", len(res.Planned)), zap.String("out", absOut))
	}

	return nil
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
		case "input":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Input = str
		case "out":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Out = str
		case "interfacesmodule":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.InterfacesModule = str
		case "magiccomments":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.MagicComments = list
		case "fileincludes":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.FileIncludes = sanitizeList(list)
		case "casters", "types":
			m, err := valueAsStringMap(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Casters = m
		case "dryrun":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.DryRun = val
		case "force":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Force = val
		case "verbose":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Verbose = val
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
		return []string{val}, nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, ok := elem.(string)
			if !ok {
				return nil, fmt.Errorf("element %d: expected string, got %T", idx, elem)
			}
			items = append(items, str)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsStringMap(v any) (map[string]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		out := make(map[string]string, len(val))
		for k, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = str
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected mapping, got %T", v)
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
