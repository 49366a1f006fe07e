package target

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTargetFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestDiscover_Properties(t *testing.T) {
	dir := t.TempDir()
	writeTargetFile(t, dir, "t1.properties", "a=1")
	writeTargetFile(t, dir, "t2.properties", "a=2")

	targets, err := Discover(dir)
	require.NoError(t, err)

	require.Len(t, targets, 2)
	assert.Equal(t, Target{Name: "t1", Context: map[string]string{"a": "1"}}, targets["t1"])
	assert.Equal(t, Target{Name: "t2", Context: map[string]string{"a": "2"}}, targets["t2"])
}

func TestDiscover_XML(t *testing.T) {
	dir := t.TempDir()
	writeTargetFile(t, dir, "t1.xml", `<properties><entry key="a">1</entry></properties>`)
	writeTargetFile(t, dir, "t2.xml", `<properties><entry key="a">2</entry></properties>`)

	targets, err := Discover(dir)
	require.NoError(t, err)

	require.Len(t, targets, 2)
	assert.Equal(t, map[string]string{"a": "1"}, targets["t1"].Context)
	assert.Equal(t, map[string]string{"a": "2"}, targets["t2"].Context)
}

func TestDiscover_LaterTemplateWinsCollision(t *testing.T) {
	dir := t.TempDir()
	writeTargetFile(t, dir, "t1.properties", "src=properties")
	writeTargetFile(t, dir, "t1.xml", `<properties><entry key="src">xml</entry></properties>`)

	// Default order is properties then xml, so the xml result survives.
	targets, err := Discover(dir)
	require.NoError(t, err)

	require.Len(t, targets, 1)
	assert.Equal(t, map[string]string{"src": "xml"}, targets["t1"].Context)
}

func TestDiscover_TemplateOrderIsSignificant(t *testing.T) {
	dir := t.TempDir()
	writeTargetFile(t, dir, "t1.properties", "src=properties")
	writeTargetFile(t, dir, "t1.xml", `<properties><entry key="src">xml</entry></properties>`)

	targets, err := Discover(dir, XMLTemplate(), PropertiesTemplate())
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"src": "properties"}, targets["t1"].Context)
}

func TestDiscover_IgnoresUnmatchedAndSubdirs(t *testing.T) {
	dir := t.TempDir()
	writeTargetFile(t, dir, "dev.properties", "a=1")
	writeTargetFile(t, dir, "README.txt", "not a target")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.properties"), 0755))

	targets, err := Discover(dir)
	require.NoError(t, err)

	require.Len(t, targets, 1)
	assert.Contains(t, targets, "dev")
}

func TestDiscover_MissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscover_NotADir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := Discover(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestDiscover_NameParseError(t *testing.T) {
	dir := t.TempDir()
	writeTargetFile(t, dir, "skip", "a=1")

	// Matches "skip" without resolving the capture group.
	tmpl := NewTemplate(regexp.MustCompile(`^skip$|^(.+)\.conf$`), nil)

	_, err := Discover(dir, tmpl)
	require.Error(t, err)

	var nameErr *NameParseError
	require.ErrorAs(t, err, &nameErr)
	assert.Equal(t, "skip", nameErr.File)
	assert.Contains(t, nameErr.Pattern, ".conf")
}

func TestDiscover_ParseError(t *testing.T) {
	dir := t.TempDir()
	writeTargetFile(t, dir, "t1.xml", "not xml at all <")

	_, err := Discover(dir)
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, filepath.Join(dir, "t1.xml"), parseErr.Path)
	assert.Error(t, parseErr.Unwrap())
}

func TestDiscover_CustomMask(t *testing.T) {
	dir := t.TempDir()
	writeTargetFile(t, dir, "env-dev.conf", "region=eu")

	tmpl, err := NewMaskTemplate("env-*.conf", nil)
	require.NoError(t, err)

	targets, err := Discover(dir, tmpl)
	require.NoError(t, err)

	require.Len(t, targets, 1)
	assert.Equal(t, map[string]string{"region": "eu"}, targets["dev"].Context)
}

func TestNames(t *testing.T) {
	targets := map[string]Target{
		"prod": {Name: "prod"},
		"dev":  {Name: "dev"},
		"test": {Name: "test"},
	}
	assert.Equal(t, []string{"dev", "prod", "test"}, Names(targets))
}
