package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/stevedore/internal/config"
	"github.com/cameronsjo/stevedore/internal/defaults"
	"github.com/cameronsjo/stevedore/internal/lock"
	"github.com/cameronsjo/stevedore/internal/stage"
	"github.com/cameronsjo/stevedore/internal/target"
	"github.com/cameronsjo/stevedore/internal/ui"
)

var (
	stageKeepGoing  bool
	stageIncludeAll bool
)

// stageCmd runs the full staging pipeline.
var stageCmd = &cobra.Command{
	Use:     "stage [target...]",
	Aliases: []string{"stow"},
	Short:   "Render, collect, and pack archives per target",
	Long: `Stage configuration cargo for every target, or just the named ones.

For each target this merges defaults, renders the generated templates
with the target's context, collects its resource variants, and packs
one archive into the lib directory as
<artifactId>-<version>-<target>.zip. Finished archives are recorded
together in the local publication repository.

Examples:
  stevedore stage               # Stage every discovered target
  stevedore stage dev qa        # Stage only dev and qa
  stevedore stage -k            # Keep going past per-target failures`,
	RunE: runStage,
}

func init() {
	rootCmd.AddCommand(stageCmd)
	stageCmd.Flags().BoolVarP(&stageKeepGoing, "keep-going", "k", false, "Continue past per-target failures")
	stageCmd.Flags().BoolVar(&stageIncludeAll, "include-all-resources", false, "Collect every resource for every target")
}

func runStage(cmd *cobra.Command, args []string) error {
	cfg, err := loadProject()
	if err != nil {
		return err
	}

	return lock.WithLock(cfg.Root, "stage", func() error {
		return stageProject(cmd, cfg, args)
	})
}

func stageProject(cmd *cobra.Command, cfg *config.Config, args []string) error {
	ctx := cmd.Context()

	targets, err := discoverTargets(cfg)
	if err != nil {
		return err
	}

	selected, err := selectTargets(targets, args)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		ui.Warning("No targets to stage in %s", cfg.TargetsDir())
		return nil
	}

	// Refresh the generated tree so rendering sees current defaults.
	opts := defaults.Options{
		Sort:       cfg.Settings.Sort,
		Trim:       cfg.Settings.Trim,
		Prepend:    cfg.Settings.Prepend,
		Structured: cfg.Settings.Structured,
		Extension:  cfg.Settings.DefaultsFileExtension,
	}
	if err := defaults.Generate(cfg.DefaultsDir(), cfg.TemplatesDir(), cfg.GeneratedDir(), opts); err != nil {
		return reportStructure(err)
	}

	sc := stage.Config{
		ArtifactID:          cfg.Settings.ArtifactID,
		Version:             cfg.Settings.Version,
		GeneratedDir:        cfg.GeneratedDir(),
		ResourcesDir:        cfg.ResourcesDir(),
		StagingDir:          cfg.StagingDir(),
		LibDir:              cfg.LibDir(),
		RepoDir:             cfg.RepoDir(),
		ArchiveExt:          cfg.Settings.ArchiveExtension,
		IncludeAllResources: cfg.Settings.IncludeAllResources,
	}
	if cmd.Flags().Changed("include-all-resources") {
		sc.IncludeAllResources = stageIncludeAll
	}

	o := stage.New(sc)

	var failed []error
	for _, name := range target.Names(selected) {
		if err := o.ConfigureTarget(selected[name]); err != nil {
			if !stageKeepGoing {
				return err
			}
			ui.Error("configure %s: %v", name, err)
			failed = append(failed, err)
		}
	}

	configured := o.Targets()
	ui.Header("=== Staging %d target(s) ===", len(configured))
	for i, name := range configured {
		ui.Step(i+1, "staging %s", name)
		if err := o.RunTarget(ctx, name); err != nil {
			if !stageKeepGoing {
				return err
			}
			ui.Error("stage %s: %v", name, err)
			failed = append(failed, err)
		}
	}

	if len(failed) > 0 {
		ui.Warning("Skipping publication: %d target(s) failed", len(failed))
		return errors.Join(failed...)
	}

	if err := o.Publish(ctx); err != nil {
		return err
	}

	ui.Crate("Staged %d target(s) to %s (run %s)", len(configured), cfg.LibDir(), o.RunID())
	return nil
}

// selectTargets narrows the discovered set to the requested names.
func selectTargets(targets map[string]target.Target, names []string) (map[string]target.Target, error) {
	if len(names) == 0 {
		return targets, nil
	}

	selected := make(map[string]target.Target, len(names))
	for _, name := range names {
		t, ok := targets[name]
		if !ok {
			return nil, fmt.Errorf("unknown target %q (available: %s)",
				name, strings.Join(target.Names(targets), ", "))
		}
		selected[name] = t
	}
	return selected, nil
}
