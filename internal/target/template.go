// Package target discovers named deployment targets from a directory of
// definition files. Each file is recognized and parsed by a Template, a
// filename pattern paired with a content loader.
package target

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cameronsjo/stevedore/internal/props"
)

// Loader converts the raw bytes of a definition file into the target's
// key/value context.
type Loader func(data []byte) (map[string]string, error)

// Template pairs a filename pattern with a content loader. The pattern's
// first capture group yields the target name. Templates are immutable.
type Template struct {
	pattern *regexp.Regexp
	load    Loader
}

// NewTemplate builds a template from a precompiled pattern. The pattern is
// used unanchored, so it claims any filename it matches somewhere. A nil
// loader falls back to PropertiesLoader.
func NewTemplate(pattern *regexp.Regexp, load Loader) Template {
	if load == nil {
		load = PropertiesLoader
	}
	return Template{pattern: pattern, load: load}
}

// NewMaskTemplate builds a template from a filename mask such as
// "*.properties". The first * captures the target name; further * and ?
// match as usual. Masks match the whole filename.
func NewMaskTemplate(mask string, load Loader) (Template, error) {
	pattern, err := maskToPattern(mask)
	if err != nil {
		return Template{}, err
	}
	return NewTemplate(pattern, load), nil
}

// Matches reports whether the template's pattern matches the filename.
func (t Template) Matches(filename string) bool {
	return t.pattern.MatchString(filename)
}

// ExtractName returns the target name captured by the pattern's first
// group. ok is false when the pattern does not match or captures nothing.
func (t Template) ExtractName(filename string) (name string, ok bool) {
	m := t.pattern.FindStringSubmatch(filename)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// Load runs definition-file bytes through the template's loader.
func (t Template) Load(data []byte) (map[string]string, error) {
	return t.load(data)
}

// Pattern returns the pattern source, for error reporting.
func (t Template) Pattern() string {
	return t.pattern.String()
}

// PropertiesLoader parses line-oriented key=value content.
func PropertiesLoader(data []byte) (map[string]string, error) {
	return props.Parse(data), nil
}

var propertiesPattern = regexp.MustCompile(`^(.+)\.properties$`)

// PropertiesTemplate returns the built-in template for <name>.properties
// files.
func PropertiesTemplate() Template {
	return Template{pattern: propertiesPattern, load: PropertiesLoader}
}

// maskToPattern converts a filename mask into an anchored pattern. The
// first * becomes the name capture group.
func maskToPattern(mask string) (*regexp.Regexp, error) {
	if !strings.Contains(mask, "*") {
		return nil, fmt.Errorf("mask %q has no * to capture the target name", mask)
	}

	var b strings.Builder
	b.WriteString("^")
	captured := false
	for _, r := range mask {
		switch r {
		case '*':
			if !captured {
				b.WriteString("(.+)")
				captured = true
			} else {
				b.WriteString(".*")
			}
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")

	pattern, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("compile mask %q: %w", mask, err)
	}
	return pattern, nil
}
