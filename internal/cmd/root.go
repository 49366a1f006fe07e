// Package cmd provides the CLI commands for stevedore.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/stevedore/internal/ui"
)

const version = "0.1.0"

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "stevedore",
	Short: "Dockside staging for configuration cargo",
	Long: `stevedore - dockside staging for configuration cargo

A nautical-themed toolkit that merges layered configuration into
per-target property files, renders them against each target's context,
and packs versioned archives ready to ship.

SETUP
  init                  Commission a new project (interactive setup wizard)

CARGO COMMANDS
  targets               List targets found on the quay
    --context, -c       Show each target's context values
  generate              Merge defaults into property templates
    --check             Validate key sets without writing output
    --sort              Sort merged lines this run
    --trim              Drop blank lines this run
    --prepend           Put template lines before defaults this run
    --structured        Require identical key sets this run
  stage [target...]     Render, collect, and pack archives per target
    --keep-going, -k    Continue past per-target failures
    --include-all-resources
                        Collect every resource for every target

MAINTENANCE
  update                Update stevedore to the latest version
  completion            Generate shell completion scripts`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// heaveCmd is the hidden easter egg command.
var heaveCmd = &cobra.Command{
	Use:    "heave",
	Hidden: true,
	Short:  "Dockside slang",
	Run: func(cmd *cobra.Command, args []string) {
		ui.Yellow.Println("⚓ Heave ho! Ye found the dockside slang!")
		fmt.Println("")
		fmt.Println("Command aliases for old salts:")
		fmt.Println("  init      → commission")
		fmt.Println("  targets   → berths")
		fmt.Println("  generate  → ballast")
		fmt.Println("  stage     → stow")
		fmt.Println("")
		ui.Blue.Println("Run 'stevedore --help' for all commands.")
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add hidden heave command
	rootCmd.AddCommand(heaveCmd)

	// Version template
	rootCmd.SetVersionTemplate("stevedore version {{.Version}}\n")
}
