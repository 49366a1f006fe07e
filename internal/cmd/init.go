package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cameronsjo/stevedore/internal/config"
	"github.com/cameronsjo/stevedore/internal/ui"
)

// initCmd represents the init command.
var initCmd = &cobra.Command{
	Use:     "init [directory]",
	Aliases: []string{"commission"},
	Short:   "Commission a new project (interactive setup wizard)",
	Long: `Initialize a new stevedore project with the required directory
structure, encryption config, and starter files.

This creates:
  - stevedore.yaml     Project settings (artifact coordinates, merge options)
  - targets/           Target definitions (<name>.properties)
  - defaults/          Shared defaults (*.defaults.vtl)
  - templates/         Property templates merged with defaults
  - resources/         Per-target resource variants (<file>.<target>)
  - .sops.yaml         SOPS encryption config for secret targets
  - .gitignore         Git ignore file
  - README.md          Project documentation

If no directory is specified, the current directory is used.

Use --yes to skip all interactive prompts (useful for non-TTY environments).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var initYes bool

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	absDir, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	targetDir = absDir

	ui.Anchor("Commissioning project in %s...", targetDir)
	fmt.Println()

	// Check if already initialized
	settingsFile := filepath.Join(targetDir, config.FileName)
	if _, err := os.Stat(settingsFile); err == nil {
		ui.Warning("This directory already has a stevedore project.")
		if !initYes {
			response, err := promptYesNo("Reinitialize? This won't overwrite existing files.")
			if err != nil {
				return err
			}
			if !response {
				fmt.Println("Aborted.")
				return nil
			}
		}
	}

	// Step 1: Artifact coordinates
	artifactID := filepath.Base(targetDir)
	artifactVersion := "0.1.0"
	if !initYes && isTerminal() {
		if artifactID, err = promptString("Artifact ID", artifactID); err != nil {
			return err
		}
		if artifactVersion, err = promptString("Version", artifactVersion); err != nil {
			return err
		}
	}

	// Step 2: Create directory structure
	ui.Info("Creating project structure...")
	dirs := []string{
		filepath.Join(targetDir, "targets"),
		filepath.Join(targetDir, "defaults"),
		filepath.Join(targetDir, "templates"),
		filepath.Join(targetDir, "resources"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	ui.Success("Created directories")

	// Step 3: Check/setup age key for secret targets
	ui.Info("Setting up encryption...")
	agePubKey, err := setupAgeKey()
	if err != nil {
		ui.Warning("Age setup: %v", err)
		agePubKey = "AGE-PUBLIC-KEY-REPLACE-ME"
	}

	// Step 4: Create .sops.yaml if not exists
	sopsFile := filepath.Join(targetDir, ".sops.yaml")
	if _, err := os.Stat(sopsFile); os.IsNotExist(err) {
		sopsContent := fmt.Sprintf(`creation_rules:
  - path_regex: .*\.secrets\.ya?ml$
    age: %s
`, agePubKey)
		if err := os.WriteFile(sopsFile, []byte(sopsContent), 0644); err != nil {
			return fmt.Errorf("create .sops.yaml: %w", err)
		}
		ui.Success("Created .sops.yaml")
	} else {
		ui.Warning(".sops.yaml already exists, skipping")
	}

	// Step 5: Initialize git if needed
	ui.Info("Setting up version control...")
	switch _, err := git.PlainInit(targetDir, false); {
	case err == nil:
		ui.Success("Initialized git repository")
	case errors.Is(err, git.ErrRepositoryAlreadyExists):
		ui.Success("Git repository exists")
	default:
		ui.Warning("Git init failed: %v", err)
	}

	// Step 6: Create starter files
	ui.Info("Creating starter files...")

	settings := fmt.Sprintf(starterSettings, artifactID, artifactVersion)
	if err := createFileIfNotExists(settingsFile, settings); err != nil {
		return fmt.Errorf("create settings file: %w", err)
	}

	starters := []struct {
		path    string
		content string
	}{
		{filepath.Join(targetDir, "targets", "dev.properties"), starterTarget},
		{filepath.Join(targetDir, "defaults", "application.defaults.vtl"), starterDefaults},
		{filepath.Join(targetDir, "templates", "application.properties"), starterTemplate},
		{filepath.Join(targetDir, "resources", "banner.txt.dev"), starterResource},
		{filepath.Join(targetDir, ".gitignore"), starterGitignore},
		{filepath.Join(targetDir, "README.md"), starterReadme},
	}
	for _, s := range starters {
		if err := createFileIfNotExists(s.path, s.content); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Base(s.path), err)
		}
	}

	// Summary
	fmt.Println()
	ui.Anchor("Project commissioned! Here's your checklist:")
	fmt.Println()
	fmt.Println("  1. Review stevedore.yaml and adjust the artifact coordinates")
	fmt.Println("  2. Add targets to targets/ (one .properties file per environment)")
	fmt.Println("  3. Run 'stevedore targets' to see what's on the quay")
	fmt.Println("  4. Run 'stevedore generate' to merge defaults into templates")
	fmt.Println("  5. Run 'stevedore stage' to pack per-target archives")
	fmt.Println()
	ui.Info("Run 'stevedore --help' for all commands.")

	return nil
}

// setupAgeKey checks for an existing age key or generates a new one.
func setupAgeKey() (string, error) {
	// Get age key file path
	ageKeyFile := os.Getenv("SOPS_AGE_KEY_FILE")
	if ageKeyFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		ageKeyFile = filepath.Join(home, ".config", "sops", "age", "keys.txt")
	}

	// Check if key exists
	if _, err := os.Stat(ageKeyFile); err == nil {
		ui.Success("Age key found: %s", ageKeyFile)
		return extractAgePublicKey(ageKeyFile)
	}

	// Check if age-keygen is available
	if _, err := exec.LookPath("age-keygen"); err != nil {
		ui.Error("age-keygen not found. Install age first:")
		fmt.Println("      brew install age  # macOS")
		fmt.Println("      apt install age   # Debian/Ubuntu")
		return "", fmt.Errorf("age-keygen not found")
	}

	// Generate new key
	ui.Warning("No age key found. Generating...")
	keyDir := filepath.Dir(ageKeyFile)
	if err := os.MkdirAll(keyDir, 0700); err != nil {
		return "", fmt.Errorf("create key directory: %w", err)
	}

	keygen := exec.Command("age-keygen", "-o", ageKeyFile)
	output, err := keygen.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("generate age key: %w", err)
	}

	if err := os.Chmod(ageKeyFile, 0600); err != nil {
		return "", fmt.Errorf("set key permissions: %w", err)
	}

	ui.Success("Generated age key: %s", ageKeyFile)

	// Extract public key from output
	for _, line := range strings.Split(string(output), "\n") {
		if strings.HasPrefix(line, "Public key:") {
			pubKey := strings.TrimSpace(strings.TrimPrefix(line, "Public key:"))
			return pubKey, nil
		}
	}

	// Fall back to extracting from file
	return extractAgePublicKey(ageKeyFile)
}

// extractAgePublicKey reads the public key from an age key file.
func extractAgePublicKey(keyFile string) (string, error) {
	file, err := os.Open(keyFile)
	if err != nil {
		return "", fmt.Errorf("open key file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		// Look for comment with public key
		if strings.Contains(line, "public key:") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) == 2 {
				return strings.TrimSpace(parts[1]), nil
			}
		}
	}

	// Try using age-keygen -y to derive public key
	if _, err := exec.LookPath("age-keygen"); err == nil {
		deriveCmd := exec.Command("age-keygen", "-y", keyFile)
		output, err := deriveCmd.Output()
		if err == nil {
			return strings.TrimSpace(string(output)), nil
		}
	}

	return "", fmt.Errorf("could not extract public key from %s", keyFile)
}

// isTerminal checks if stdin is a TTY.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// promptYesNo asks the user a yes/no question.
// Returns error if stdin is not a TTY and cannot read input.
func promptYesNo(question string) (bool, error) {
	if !isTerminal() {
		return false, fmt.Errorf("cannot prompt for input: stdin is not a TTY. Use --yes flag to skip interactive prompts")
	}

	fmt.Printf("%s [y/N] ", question)

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read user input: %w", err)
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// promptString asks the user for a value, offering a default.
func promptString(question, defaultValue string) (string, error) {
	if !isTerminal() {
		return "", fmt.Errorf("cannot prompt for input: stdin is not a TTY. Use --yes flag to skip interactive prompts")
	}

	fmt.Printf("%s [%s] ", question, defaultValue)

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read user input: %w", err)
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return defaultValue, nil
	}
	return response, nil
}

// createFileIfNotExists creates a file with the given content if it doesn't exist.
func createFileIfNotExists(filename, content string) error {
	if _, err := os.Stat(filename); err == nil {
		ui.Warning("%s already exists, skipping", filepath.Base(filename))
		return nil
	}

	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		return err
	}

	ui.Success("Created %s", filepath.Base(filename))
	return nil
}

// Starter file templates

const starterSettings = `# stevedore project settings
artifactId: %s
version: %s

# Directory layout (defaults shown; uncomment to change)
# targetsDir: targets
# defaultsDir: defaults
# templatesDir: templates
# resourcesDir: resources

# Merge behavior for 'stevedore generate'
sort: false
trim: false
prepend: false
structured: false

# Collect every resource for every target instead of suffix-matched variants
includeAllResources: false
`

const starterTarget = `# Development target
env=development
region=local
`

const starterDefaults = `# Shared defaults merged into every application.* template
log.level=info
retries=3
`

const starterTemplate = `# Application properties rendered per target
app.env={{.env}}
app.region={{.region}}
`

const starterResource = `DEV BUILD banner
`

const starterGitignore = `# Build output
build/

# Lock files
.stevedore/

# OS
.DS_Store
Thumbs.db

# IDE
.idea/
.vscode/
`

const starterReadme = `# My Cargo

Configuration staging by [stevedore](https://github.com/cameronsjo/stevedore).

## Quick Start

` + "```bash" + `
# List targets
stevedore targets

# Merge defaults into templates
stevedore generate

# Pack per-target archives
stevedore stage
` + "```" + `

## Structure

` + "```" + `
├── targets/     # Target definitions (<name>.properties)
├── defaults/    # Shared defaults (*.defaults.vtl)
├── templates/   # Property templates
├── resources/   # Per-target resource variants (<file>.<target>)
└── build/       # Generated output, staging, archives
` + "```" + `
`

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Skip all interactive prompts (assume yes for all questions)")
}
