package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// resetFlags restores command flag defaults mutated by a previous run.
// Cobra commands are package globals, so flag values leak between
// tests unless cleared here.
func resetFlags() {
	targetsShowContext = false
	generateCheck = false
	generateSort = false
	generateTrim = false
	generatePrepend = false
	generateStructured = false
	stageKeepGoing = false
	stageIncludeAll = false
	initYes = false
	checkOnly = false
}

// executeCmd executes the root command with the given args and returns
// its combined output. Help and usage text land in the buffer; ui
// messages go to the real stdout.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	buf := new(bytes.Buffer)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	err := rootCmd.Execute()
	return buf.String(), err
}

// chdir switches the working directory for one test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	originalWd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { os.Chdir(originalWd) })
	require.NoError(t, os.Chdir(dir))
}

// writeFile writes one file under root, creating parent directories.
func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// scaffoldProject writes a minimal two-target project and returns its
// root directory.
func scaffoldProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "stevedore.yaml", "artifactId: shop-config\nversion: 1.4.0\n")
	writeFile(t, dir, filepath.Join("targets", "dev.properties"), "env=development\n")
	writeFile(t, dir, filepath.Join("targets", "prod.properties"), "env=production\n")
	writeFile(t, dir, filepath.Join("defaults", "application.defaults.vtl"), "log.level=info\n")
	writeFile(t, dir, filepath.Join("templates", "application.properties"), "app.env={{.env}}\n")
	writeFile(t, dir, filepath.Join("resources", "banner.txt.dev"), "dev banner\n")
	return dir
}
