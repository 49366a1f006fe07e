package stage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cameronsjo/stevedore/internal/fileutil"
)

// Stage is one executable step of a target's pipeline.
type Stage interface {
	// Name identifies the stage inside the registry, e.g. "render-dev".
	Name() string
	// Run executes the stage.
	Run(ctx context.Context) error
}

// RenderStage instantiates the shared generated tree with one target's
// context. Targets without a context skip this stage entirely.
type RenderStage struct {
	name     string
	renderer Renderer
	srcDir   string
	dstDir   string
	context  map[string]string
}

// Name returns the registry name of the stage.
func (s *RenderStage) Name() string { return s.name }

// Run renders every file under the generated tree. A missing source
// tree means nothing has been generated yet and is not an error.
func (s *RenderStage) Run(ctx context.Context) error {
	if _, err := os.Stat(s.srcDir); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return s.renderer.RenderDirectory(ctx, s.srcDir, s.dstDir, s.context)
}

// CollectStage copies shared resources into the target's staging
// directory. By default only files carrying the target's name as a
// trailing suffix are taken, and the suffix is stripped on the way in;
// with includeAll set, the whole resource tree is copied verbatim.
type CollectStage struct {
	name       string
	srcDir     string
	dstDir     string
	target     string
	includeAll bool
}

// Name returns the registry name of the stage.
func (s *CollectStage) Name() string { return s.name }

// Run populates the staging directory. The destination is created even
// when no resource matches, so the archive stage always has a tree to
// pack.
func (s *CollectStage) Run(ctx context.Context) error {
	if err := os.MkdirAll(s.dstDir, 0755); err != nil {
		return fmt.Errorf("create staging dir %s: %w", s.dstDir, err)
	}
	if _, err := os.Stat(s.srcDir); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if s.includeAll {
		return fileutil.CopyDir(s.srcDir, s.dstDir)
	}
	suffix := "." + s.target
	return filepath.WalkDir(s.srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !strings.HasSuffix(d.Name(), suffix) {
			return nil
		}
		rel, err := filepath.Rel(s.srcDir, path)
		if err != nil {
			return fmt.Errorf("resolve resource path %s: %w", path, err)
		}
		dst := filepath.Join(s.dstDir, strings.TrimSuffix(rel, suffix))
		if err := fileutil.CopyFile(path, dst); err != nil {
			return fmt.Errorf("collect resource %s: %w", rel, err)
		}
		return nil
	})
}

// ArchiveStage packs the target's staging directory into its archive.
type ArchiveStage struct {
	name     string
	archiver Archiver
	srcDir   string
	dstPath  string
}

// Name returns the registry name of the stage.
func (s *ArchiveStage) Name() string { return s.name }

// Run packs the staged tree. The enclosing pipeline runs collect first,
// so the source directory always exists by the time we get here.
func (s *ArchiveStage) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.archiver.Pack(s.srcDir, s.dstPath)
}
