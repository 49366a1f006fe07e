package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/stevedore/internal/config"
	"github.com/cameronsjo/stevedore/internal/defaults"
	"github.com/cameronsjo/stevedore/internal/lock"
	"github.com/cameronsjo/stevedore/internal/ui"
)

var (
	generateCheck      bool
	generateSort       bool
	generateTrim       bool
	generatePrepend    bool
	generateStructured bool
)

// generateCmd merges defaults into the property templates.
var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"ballast"},
	Short:   "Merge defaults into property templates",
	Long: `Merge shared default properties into every matching template and
write the results to the generated output directory.

Default lines live in files ending with the defaults extension
(.defaults.vtl). A file named application.defaults.vtl merges into
every template in the mirrored directory whose name starts with
"application". Merge behavior (sort, trim, prepend, structured) comes
from stevedore.yaml; flags override it for one run.

Examples:
  stevedore generate              # Merge using stevedore.yaml options
  stevedore generate --sort       # Sort merged lines this run
  stevedore generate --check      # Validate key sets without writing`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().BoolVar(&generateCheck, "check", false, "Validate structural consistency without writing output")
	generateCmd.Flags().BoolVar(&generateSort, "sort", false, "Sort merged lines lexicographically")
	generateCmd.Flags().BoolVar(&generateTrim, "trim", false, "Drop blank lines from merged output")
	generateCmd.Flags().BoolVar(&generatePrepend, "prepend", false, "Put the template's own lines before the defaults")
	generateCmd.Flags().BoolVar(&generateStructured, "structured", false, "Require identical key sets across generated files")
}

// mergeOptions folds command-line overrides over the project settings.
func mergeOptions(cmd *cobra.Command, settings config.Settings) defaults.Options {
	opts := defaults.Options{
		Sort:       settings.Sort,
		Trim:       settings.Trim,
		Prepend:    settings.Prepend,
		Structured: settings.Structured,
		Extension:  settings.DefaultsFileExtension,
	}
	if cmd.Flags().Changed("sort") {
		opts.Sort = generateSort
	}
	if cmd.Flags().Changed("trim") {
		opts.Trim = generateTrim
	}
	if cmd.Flags().Changed("prepend") {
		opts.Prepend = generatePrepend
	}
	if cmd.Flags().Changed("structured") {
		opts.Structured = generateStructured
	}
	return opts
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadProject()
	if err != nil {
		return err
	}

	opts := mergeOptions(cmd, cfg.Settings)

	if generateCheck {
		return checkGenerate(cfg, opts)
	}

	return lock.WithLock(cfg.Root, "generate", func() error {
		if err := defaults.Generate(cfg.DefaultsDir(), cfg.TemplatesDir(), cfg.GeneratedDir(), opts); err != nil {
			return reportStructure(err)
		}
		ui.Crate("Generated property files in %s", cfg.GeneratedDir())
		return nil
	})
}

// checkGenerate runs the merge into a scratch directory and reports
// structural consistency, leaving the project output untouched.
func checkGenerate(cfg *config.Config, opts defaults.Options) error {
	scratch, err := os.MkdirTemp("", "stevedore-check-*")
	if err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	opts.Structured = true
	if err := defaults.Generate(cfg.DefaultsDir(), cfg.TemplatesDir(), scratch, opts); err != nil {
		return reportStructure(err)
	}

	ui.Success("Structural check passed")
	return nil
}

// reportStructure prints divergent keys one per line before failing.
func reportStructure(err error) error {
	var serr *defaults.StructureError
	if !errors.As(err, &serr) {
		return err
	}

	ui.Error("Generated property files define divergent key sets:")
	for _, key := range serr.Keys {
		fmt.Printf("  %s\n", key)
	}
	return fmt.Errorf("structural check failed (%d divergent key(s))", len(serr.Keys))
}
