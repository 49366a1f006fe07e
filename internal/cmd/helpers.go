package cmd

import (
	"fmt"
	"strings"

	"github.com/cameronsjo/stevedore/internal/config"
	"github.com/cameronsjo/stevedore/internal/target"
	"github.com/cameronsjo/stevedore/internal/ui"
)

// loadProject locates the enclosing project and loads its settings.
func loadProject() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	return cfg, nil
}

// discoveryTemplates returns the template set the CLI recognizes:
// plain properties files, property XML, and sops-encrypted secrets.
func discoveryTemplates() []target.Template {
	return append(target.DefaultTemplates(), target.SecretsTemplate())
}

// discoverTargets parses the project's target directory.
func discoverTargets(cfg *config.Config) (map[string]target.Target, error) {
	targets, err := target.Discover(cfg.TargetsDir(), discoveryTemplates()...)
	if err != nil {
		return nil, fmt.Errorf("discover targets: %w", err)
	}
	return targets, nil
}

// printChangelog prints the first lines of a release changelog.
func printChangelog(changelog string) {
	if changelog == "" {
		return
	}

	ui.Yellow.Println("What's new:")
	lines := strings.Split(changelog, "\n")
	maxLines := 10
	if len(lines) < maxLines {
		maxLines = len(lines)
	}
	for i := 0; i < maxLines; i++ {
		fmt.Printf("  %s\n", lines[i])
	}
	if len(lines) > maxLines {
		fmt.Printf("  ... (%d more lines)\n", len(lines)-maxLines)
	}
}
