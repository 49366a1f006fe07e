// Package defaults merges shared default configuration lines into
// matching template files, producing the generated property tree that
// downstream rendering consumes.
package defaults

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cameronsjo/stevedore/internal/fileutil"
)

// DefaultExtension selects defaults files when Options.Extension is empty.
const DefaultExtension = ".defaults.vtl"

// Options control how default lines combine with a template file's own
// lines.
type Options struct {
	// Sort orders the merged lines lexicographically. Sorting happens
	// after concatenation, so it reorders across the defaults/override
	// boundary.
	Sort bool

	// Trim drops lines that are empty after whitespace trimming.
	Trim bool

	// Prepend puts the template file's own lines before the defaults
	// instead of after them.
	Prepend bool

	// Structured requires every file generated by one invocation to
	// define the same property key set.
	Structured bool

	// Extension selects defaults files; DefaultExtension when empty.
	Extension string
}

// Entry is one discovered defaults file: its path relative to the
// defaults root, the basename its lines apply to, and the kept lines
// (trimmed, blanks and #-comments dropped).
type Entry struct {
	RelPath  string
	Basename string
	Lines    []string
}

// Scan recursively collects defaults entries under root. A missing root
// yields an empty set, not an error. Entries come back in lexical walk
// order.
func Scan(root, ext string) ([]Entry, error) {
	if ext == "" {
		ext = DefaultExtension
	}

	info, err := os.Stat(root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("defaults root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("defaults root %s is not a directory", root)
	}

	var entries []Entry
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}

		lines, err := defaultLines(path)
		if err != nil {
			return err
		}

		entries = append(entries, Entry{
			RelPath:  relPath,
			Basename: strings.TrimSuffix(d.Name(), ext),
			Lines:    lines,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan defaults: %w", err)
	}
	return entries, nil
}

// defaultLines reads a defaults file keeping only its meaningful lines.
func defaultLines(path string) ([]string, error) {
	raw, err := fileutil.ReadLines(path)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range raw {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines = append(lines, trimmed)
	}
	return lines, nil
}

// Generate merges every defaults entry under defaultsRoot into its
// candidate template files under templatesRoot and writes the merged
// files under outputRoot, mirroring each entry's relative directory.
// Candidates are the files directly inside the entry's directory whose
// name starts with the entry's basename.
//
// With no defaults entries at all, the template tree is copied to
// outputRoot unchanged.
//
// With Structured set, every file written by this invocation must define
// the same property key set; a violation returns *StructureError.
func Generate(defaultsRoot, templatesRoot, outputRoot string, opts Options) error {
	entries, err := Scan(defaultsRoot, opts.Extension)
	if err != nil {
		return err
	}

	var written []string
	if len(entries) == 0 {
		if err := fileutil.CopyDir(templatesRoot, outputRoot); err != nil {
			return fmt.Errorf("copy templates: %w", err)
		}
		written, err = listFiles(outputRoot)
		if err != nil {
			return err
		}
	} else {
		for _, entry := range entries {
			files, err := generateEntry(entry, templatesRoot, outputRoot, opts)
			if err != nil {
				return err
			}
			written = append(written, files...)
		}
	}

	if opts.Structured {
		return checkStructure(written)
	}
	return nil
}

// generateEntry writes one merged file per candidate and returns the
// written paths.
func generateEntry(entry Entry, templatesRoot, outputRoot string, opts Options) ([]string, error) {
	relDir := filepath.Dir(entry.RelPath)
	srcDir := filepath.Join(templatesRoot, relDir)
	dstDir := filepath.Join(outputRoot, relDir)

	candidates, err := os.ReadDir(srcDir)
	if errors.Is(err, os.ErrNotExist) {
		// Nothing matches this entry; the convention expects at least one
		// candidate but its absence is not fatal.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list templates for %s: %w", entry.RelPath, err)
	}

	var written []string
	for _, candidate := range candidates {
		if candidate.IsDir() || !strings.HasPrefix(candidate.Name(), entry.Basename) {
			continue
		}

		ownLines, err := fileutil.ReadLines(filepath.Join(srcDir, candidate.Name()))
		if err != nil {
			return nil, err
		}

		merged := mergeLines(entry.Lines, ownLines, opts)
		dstPath := filepath.Join(dstDir, candidate.Name())
		if err := fileutil.WriteLines(dstPath, merged); err != nil {
			return nil, err
		}
		written = append(written, dstPath)
	}
	return written, nil
}

// mergeLines concatenates default and own lines per the options.
func mergeLines(defaultLines, ownLines []string, opts Options) []string {
	merged := make([]string, 0, len(defaultLines)+len(ownLines))
	if opts.Prepend {
		merged = append(merged, ownLines...)
		merged = append(merged, defaultLines...)
	} else {
		merged = append(merged, defaultLines...)
		merged = append(merged, ownLines...)
	}

	if opts.Trim {
		kept := merged[:0]
		for _, line := range merged {
			if strings.TrimSpace(line) != "" {
				kept = append(kept, line)
			}
		}
		merged = kept
	}

	if opts.Sort {
		// Sort decides the final order, interleaving defaults and
		// overrides as one flat sequence.
		sort.Strings(merged)
	}
	return merged
}

// listFiles returns every regular file under root.
func listFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list generated files: %w", err)
	}
	return files, nil
}
