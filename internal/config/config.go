// Package config locates a stevedore project and loads its settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project marker and settings file.
const FileName = "stevedore.yaml"

// altFileName is accepted as a fallback marker.
const altFileName = "stevedore.yml"

// Settings mirrors the stevedore.yaml file. Relative directories are
// resolved against the project root.
type Settings struct {
	// ArtifactID names the published artifact.
	ArtifactID string `yaml:"artifactId"`

	// Version is the artifact version.
	Version string `yaml:"version"`

	// TargetsDir holds the target definition files.
	TargetsDir string `yaml:"targetsDir"`

	// DefaultsDir holds the shared default properties.
	DefaultsDir string `yaml:"defaultsDir"`

	// TemplatesDir holds the property templates merged with defaults.
	TemplatesDir string `yaml:"templatesDir"`

	// GeneratedDir receives the merged property files.
	GeneratedDir string `yaml:"generatedDir"`

	// ResourcesDir holds per-target resource variants.
	ResourcesDir string `yaml:"resourcesDir"`

	// StagingDir receives per-target render and collect output.
	StagingDir string `yaml:"stagingDir"`

	// LibDir receives the packed archives.
	LibDir string `yaml:"libDir"`

	// RepoDir is the local publication repository.
	RepoDir string `yaml:"repoDir"`

	// ArchiveExtension is the archive extension without the dot.
	ArchiveExtension string `yaml:"archiveExtension"`

	// DefaultsFileExtension marks files in DefaultsDir that carry
	// default properties.
	DefaultsFileExtension string `yaml:"defaultsFileExtension"`

	// IncludeAllResources collects the whole resource tree per target.
	IncludeAllResources bool `yaml:"includeAllResources"`

	// Sort orders merged property lines lexicographically.
	Sort bool `yaml:"sort"`

	// Trim drops blank lines from merged output.
	Trim bool `yaml:"trim"`

	// Structured requires all generated files to share one key set.
	Structured bool `yaml:"structured"`

	// Prepend puts the template's own lines before the defaults.
	Prepend bool `yaml:"prepend"`
}

// DefaultSettings returns the standard project layout.
func DefaultSettings() Settings {
	return Settings{
		TargetsDir:            "targets",
		DefaultsDir:           "defaults",
		TemplatesDir:          "templates",
		GeneratedDir:          filepath.Join("build", "generated"),
		ResourcesDir:          "resources",
		StagingDir:            filepath.Join("build", "staging"),
		LibDir:                filepath.Join("build", "lib"),
		RepoDir:               filepath.Join("build", "repo"),
		ArchiveExtension:      "zip",
		DefaultsFileExtension: ".defaults.vtl",
	}
}

// Config is a loaded project: its root directory plus the effective
// settings.
type Config struct {
	// Root is the project root directory (contains stevedore.yaml).
	Root string

	// Settings are the file's values over DefaultSettings.
	Settings Settings
}

// FindRoot searches upward from the current directory for a directory
// containing stevedore.yaml.
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, altFileName)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("project root not found (no %s)", FileName)
}

// Load finds the project root and reads its settings.
func Load() (*Config, error) {
	root, err := FindRoot()
	if err != nil {
		return nil, err
	}
	return LoadDir(root)
}

// LoadDir reads the project rooted at dir.
func LoadDir(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		path = filepath.Join(dir, altFileName)
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read project settings: %w", err)
	}

	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if settings.ArtifactID == "" {
		return nil, fmt.Errorf("%s: artifactId is required", path)
	}
	if settings.Version == "" {
		return nil, fmt.Errorf("%s: version is required", path)
	}

	return &Config{Root: dir, Settings: settings}, nil
}

// resolve joins a possibly relative settings path onto the root.
func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Root, path)
}

// TargetsDir returns the absolute target definitions directory.
func (c *Config) TargetsDir() string {
	return c.resolve(c.Settings.TargetsDir)
}

// DefaultsDir returns the absolute defaults directory.
func (c *Config) DefaultsDir() string {
	return c.resolve(c.Settings.DefaultsDir)
}

// TemplatesDir returns the absolute templates directory.
func (c *Config) TemplatesDir() string {
	return c.resolve(c.Settings.TemplatesDir)
}

// GeneratedDir returns the absolute generated-output directory.
func (c *Config) GeneratedDir() string {
	return c.resolve(c.Settings.GeneratedDir)
}

// ResourcesDir returns the absolute resources directory.
func (c *Config) ResourcesDir() string {
	return c.resolve(c.Settings.ResourcesDir)
}

// StagingDir returns the absolute staging directory.
func (c *Config) StagingDir() string {
	return c.resolve(c.Settings.StagingDir)
}

// LibDir returns the absolute archive output directory.
func (c *Config) LibDir() string {
	return c.resolve(c.Settings.LibDir)
}

// RepoDir returns the absolute publication repository directory.
func (c *Config) RepoDir() string {
	return c.resolve(c.Settings.RepoDir)
}
