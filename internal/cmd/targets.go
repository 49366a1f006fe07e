package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/stevedore/internal/target"
	"github.com/cameronsjo/stevedore/internal/ui"
)

var targetsShowContext bool

// targetsCmd lists the targets discovered in the project.
var targetsCmd = &cobra.Command{
	Use:     "targets",
	Aliases: []string{"berths"},
	Short:   "List targets found on the quay",
	Long: `List every target defined in the targets directory.

Targets are recognized by file name: <name>.properties, <name>.xml, or
<name>.secrets.yaml (sops-encrypted). The file's contents become the
target's context, available to templates during staging.

Examples:
  stevedore targets             # List target names
  stevedore targets --context   # Include each target's context values`,
	Args: cobra.NoArgs,
	RunE: runTargets,
}

func init() {
	rootCmd.AddCommand(targetsCmd)
	targetsCmd.Flags().BoolVarP(&targetsShowContext, "context", "c", false, "Show each target's context values")
}

func runTargets(cmd *cobra.Command, args []string) error {
	cfg, err := loadProject()
	if err != nil {
		return err
	}

	targets, err := discoverTargets(cfg)
	if err != nil {
		return err
	}

	if len(targets) == 0 {
		ui.Warning("No targets found in %s", cfg.TargetsDir())
		return nil
	}

	ui.Compass("%d target(s) on the quay:", len(targets))
	for _, name := range target.Names(targets) {
		t := targets[name]
		fmt.Printf("  %s (%d context value(s))\n", name, len(t.Context))
		if targetsShowContext {
			keys := make([]string, 0, len(t.Context))
			for k := range t.Context {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("      %s=%s\n", k, t.Context[k])
			}
		}
	}

	return nil
}
