package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evalSymlinks resolves symlinks for path comparison (macOS /var -> /private/var).
func evalSymlinks(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	originalWd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { os.Chdir(originalWd) })
	require.NoError(t, os.Chdir(dir))
}

func writeSettings(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

const minimalSettings = "artifactId: shop-config\nversion: 1.4.0\n"

func TestFindRoot_FromSubdirectory(t *testing.T) {
	tmpDir := evalSymlinks(t, t.TempDir())
	writeSettings(t, tmpDir, FileName, minimalSettings)

	subDir := filepath.Join(tmpDir, "defaults", "shop")
	require.NoError(t, os.MkdirAll(subDir, 0755))
	chdir(t, subDir)

	root, err := FindRoot()
	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)
}

func TestFindRoot_FromProjectRoot(t *testing.T) {
	tmpDir := evalSymlinks(t, t.TempDir())
	writeSettings(t, tmpDir, FileName, minimalSettings)
	chdir(t, tmpDir)

	root, err := FindRoot()
	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)
}

func TestFindRoot_AcceptsYmlFallback(t *testing.T) {
	tmpDir := evalSymlinks(t, t.TempDir())
	writeSettings(t, tmpDir, "stevedore.yml", minimalSettings)
	chdir(t, tmpDir)

	root, err := FindRoot()
	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)
}

func TestFindRoot_NoProjectRoot(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := FindRoot()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project root not found")
}

func TestLoad(t *testing.T) {
	tmpDir := evalSymlinks(t, t.TempDir())
	writeSettings(t, tmpDir, FileName, minimalSettings)
	chdir(t, tmpDir)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, tmpDir, cfg.Root)
	assert.Equal(t, "shop-config", cfg.Settings.ArtifactID)
	assert.Equal(t, "1.4.0", cfg.Settings.Version)
}

func TestLoadDir_AppliesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	writeSettings(t, tmpDir, FileName, minimalSettings)

	cfg, err := LoadDir(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "targets", cfg.Settings.TargetsDir)
	assert.Equal(t, ".defaults.vtl", cfg.Settings.DefaultsFileExtension)
	assert.Equal(t, "zip", cfg.Settings.ArchiveExtension)
	assert.False(t, cfg.Settings.Sort)
	assert.False(t, cfg.Settings.IncludeAllResources)
}

func TestLoadDir_OverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	writeSettings(t, tmpDir, FileName, minimalSettings+
		"targetsDir: environments\n"+
		"defaultsFileExtension: .base.vtl\n"+
		"sort: true\n"+
		"structured: true\n")

	cfg, err := LoadDir(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "environments", cfg.Settings.TargetsDir)
	assert.Equal(t, ".base.vtl", cfg.Settings.DefaultsFileExtension)
	assert.True(t, cfg.Settings.Sort)
	assert.True(t, cfg.Settings.Structured)
	assert.False(t, cfg.Settings.Trim)
}

func TestLoadDir_RequiresArtifactID(t *testing.T) {
	tmpDir := t.TempDir()
	writeSettings(t, tmpDir, FileName, "version: 1.0.0\n")

	_, err := LoadDir(tmpDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "artifactId is required")
}

func TestLoadDir_RequiresVersion(t *testing.T) {
	tmpDir := t.TempDir()
	writeSettings(t, tmpDir, FileName, "artifactId: shop-config\n")

	_, err := LoadDir(tmpDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version is required")
}

func TestLoadDir_MalformedYAML(t *testing.T) {
	tmpDir := t.TempDir()
	writeSettings(t, tmpDir, FileName, "artifactId: [unclosed\n")

	_, err := LoadDir(tmpDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestLoadDir_MissingFile(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read project settings")
}

func TestConfig_PathMethods(t *testing.T) {
	cfg := &Config{Root: filepath.Join("/", "project"), Settings: DefaultSettings()}

	assert.Equal(t, filepath.Join("/", "project", "targets"), cfg.TargetsDir())
	assert.Equal(t, filepath.Join("/", "project", "defaults"), cfg.DefaultsDir())
	assert.Equal(t, filepath.Join("/", "project", "templates"), cfg.TemplatesDir())
	assert.Equal(t, filepath.Join("/", "project", "build", "generated"), cfg.GeneratedDir())
	assert.Equal(t, filepath.Join("/", "project", "resources"), cfg.ResourcesDir())
	assert.Equal(t, filepath.Join("/", "project", "build", "staging"), cfg.StagingDir())
	assert.Equal(t, filepath.Join("/", "project", "build", "lib"), cfg.LibDir())
	assert.Equal(t, filepath.Join("/", "project", "build", "repo"), cfg.RepoDir())
}

func TestConfig_AbsolutePathsPassThrough(t *testing.T) {
	settings := DefaultSettings()
	settings.ArtifactID = "shop-config"
	settings.Version = "1.4.0"
	settings.RepoDir = filepath.Join("/", "srv", "repo")

	cfg := &Config{Root: filepath.Join("/", "project"), Settings: settings}
	assert.Equal(t, filepath.Join("/", "srv", "repo"), cfg.RepoDir())
}
