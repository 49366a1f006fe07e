package cmd

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/stevedore/internal/config"
	"github.com/cameronsjo/stevedore/internal/target"
)

// completeTargetNames completes target names for the stage command.
// Secrets templates are left out so completion never triggers a
// decryption round-trip.
func completeTargetNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	targets, err := target.Discover(cfg.TargetsDir(), target.DefaultTemplates()...)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, name := range target.Names(targets) {
		if strings.HasPrefix(name, toComplete) && !slices.Contains(args, name) {
			names = append(names, name)
		}
	}

	return names, cobra.ShellCompDirectiveNoFileComp
}

// registerCompletions registers all dynamic completions for commands.
// This is called from init() to set up completions after all commands are defined.
func registerCompletions() {
	stageCmd.ValidArgsFunction = completeTargetNames
}

// init registers completions after all commands are set up.
func init() {
	// Use a deferred registration via cobra.OnInitialize to ensure
	// all commands are registered before we add completions
	cobra.OnInitialize(registerCompletions)
}
