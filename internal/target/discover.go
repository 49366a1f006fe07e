package target

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Target is one named deployment unit with its configuration context.
// Targets are built by Discover and treated as immutable afterwards.
type Target struct {
	Name    string
	Context map[string]string
}

// DefaultTemplates returns the built-in templates in match order: plain
// properties files first, property-XML second.
func DefaultTemplates() []Template {
	return []Template{PropertiesTemplate(), XMLTemplate()}
}

// Discover parses every definition file in dir into a named target. Each
// template claims the files its pattern matches; the target name comes
// from the pattern's first capture group and the context from the
// template's loader. Later templates overwrite earlier results for the
// same name, so template order is significant. With no templates given,
// DefaultTemplates applies.
//
// Discovery fails as a whole on the first bad file; there is no partial
// result.
func Discover(dir string, templates ...Template) (map[string]Target, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("targets directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("targets directory %s is not a directory", dir)
	}

	if len(templates) == 0 {
		templates = DefaultTemplates()
	}

	// ReadDir returns entries sorted by name, so collisions inside one
	// template resolve the same way on every run.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read targets directory: %w", err)
	}

	targets := make(map[string]Target)
	for _, tmpl := range templates {
		for _, entry := range entries {
			if entry.IsDir() || !tmpl.Matches(entry.Name()) {
				continue
			}

			name, ok := tmpl.ExtractName(entry.Name())
			if !ok {
				return nil, &NameParseError{File: entry.Name(), Pattern: tmpl.Pattern()}
			}

			path := filepath.Join(dir, entry.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, &ParseError{Path: path, Err: err}
			}

			context, err := tmpl.Load(data)
			if err != nil {
				return nil, &ParseError{Path: path, Err: err}
			}

			targets[name] = Target{Name: name, Context: context}
		}
	}

	return targets, nil
}

// Names returns the sorted names of a discovered target set.
func Names(targets map[string]Target) []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
