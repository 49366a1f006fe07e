// Package stage builds and runs the per-target staging pipeline:
// render, collect, archive, publish.
//
// Each target gets a linear chain of stages. Stages are registered
// under stable names so that configuring the same target twice reuses
// the existing chain instead of duplicating work, and the artifact
// cache guarantees at most one archive and one publication
// registration per target name for the lifetime of a run.
package stage

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/cameronsjo/stevedore/internal/archive"
	"github.com/cameronsjo/stevedore/internal/artifact"
	"github.com/cameronsjo/stevedore/internal/publish"
	"github.com/cameronsjo/stevedore/internal/render"
	"github.com/cameronsjo/stevedore/internal/target"
	"github.com/cameronsjo/stevedore/internal/ui"
)

// Config holds the coordinates and directory layout for one
// orchestration run.
type Config struct {
	// ArtifactID names the published artifact, e.g. "shop-config".
	ArtifactID string

	// Version is the artifact version embedded in archive names.
	Version string

	// GeneratedDir is the shared tree of generated templates rendered
	// once per target.
	GeneratedDir string

	// ResourcesDir is the shared resource tree collected per target.
	ResourcesDir string

	// StagingDir receives the per-target render and collect output.
	StagingDir string

	// LibDir receives the packed per-target archives.
	LibDir string

	// RepoDir is the local publication repository root.
	RepoDir string

	// ArchiveExt is the archive extension without the dot.
	// Defaults to "zip".
	ArchiveExt string

	// IncludeAllResources collects the whole resource tree for every
	// target instead of only the files suffixed with the target name.
	IncludeAllResources bool
}

// DefaultConfig returns a Config wired for the standard project
// layout rooted at dir.
func DefaultConfig(dir, artifactID, version string) Config {
	return Config{
		ArtifactID:   artifactID,
		Version:      version,
		GeneratedDir: filepath.Join(dir, "build", "generated"),
		ResourcesDir: filepath.Join(dir, "resources"),
		StagingDir:   filepath.Join(dir, "build", "staging"),
		LibDir:       filepath.Join(dir, "build", "lib"),
		RepoDir:      filepath.Join(dir, "build", "repo"),
		ArchiveExt:   "zip",
	}
}

// Orchestrator owns the per-run pipeline state: the stage registry,
// the artifact cache, and the collaborators stages delegate to.
type Orchestrator struct {
	config    Config
	runID     string
	stages    map[string]Stage
	pipelines map[string][]Stage
	cache     *artifact.Cache
	renderer  Renderer
	archiver  Archiver
	publisher Publisher
}

// Option adjusts an Orchestrator before first use.
type Option func(*Orchestrator)

// WithRenderer swaps the template renderer.
func WithRenderer(r Renderer) Option {
	return func(o *Orchestrator) { o.renderer = r }
}

// WithArchiver swaps the archive writer.
func WithArchiver(a Archiver) Option {
	return func(o *Orchestrator) { o.archiver = a }
}

// WithPublisher swaps the publication sink.
func WithPublisher(p Publisher) Option {
	return func(o *Orchestrator) { o.publisher = p }
}

// New builds an Orchestrator for one run. The run ID tags the
// publication manifest so repeated runs stay distinguishable.
func New(cfg Config, opts ...Option) *Orchestrator {
	if cfg.ArchiveExt == "" {
		cfg.ArchiveExt = "zip"
	}
	runID := uuid.New().String()[:8]
	o := &Orchestrator{
		config:    cfg,
		runID:     runID,
		stages:    make(map[string]Stage),
		pipelines: make(map[string][]Stage),
		cache:     artifact.NewCache(),
		renderer:  render.NewEngine(),
		archiver:  zipArchiver{},
		publisher: publish.NewRepository(cfg.RepoDir, cfg.ArtifactID, cfg.Version, runID),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunID returns the identifier tagging this run's publications.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// StageCount returns the number of distinct stages configured so far.
func (o *Orchestrator) StageCount() int {
	return len(o.stages)
}

// Targets returns the configured target names in sorted order.
func (o *Orchestrator) Targets() []string {
	names := make([]string, 0, len(o.pipelines))
	for name := range o.pipelines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Configure builds the pipeline for every discovered target, in
// sorted name order. The first failing target aborts the pass;
// already-configured targets keep their pipelines.
func (o *Orchestrator) Configure(targets map[string]target.Target) error {
	for _, name := range target.Names(targets) {
		if err := o.ConfigureTarget(targets[name]); err != nil {
			return err
		}
	}
	return nil
}

// ConfigureTarget builds (or reuses) the pipeline for one target:
//
//  1. Validate the target name.
//  2. Render stage, only for targets carrying a context.
//  3. Collect stage for the shared resources.
//  4. Archive stage packing the collected tree, with the artifact
//     handle memoized per target name.
//  5. Publication registration, at most once per target name.
//
// Calling this again for the same target is a no-op apart from the
// name-keyed lookups, so re-evaluating configuration is safe.
func (o *Orchestrator) ConfigureTarget(t target.Target) error {
	if t.Name == "" {
		return fmt.Errorf("configure target: %w", ErrUnnamedTarget)
	}

	stagingDir := filepath.Join(o.config.StagingDir, t.Name)
	pipeline := make([]Stage, 0, 3)

	if len(t.Context) > 0 {
		pipeline = append(pipeline, o.findOrCreate("render-"+t.Name, func() Stage {
			return &RenderStage{
				name:     "render-" + t.Name,
				renderer: o.renderer,
				srcDir:   o.config.GeneratedDir,
				dstDir:   filepath.Join(stagingDir, "config"),
				context:  t.Context,
			}
		}))
	}

	collectDir := filepath.Join(stagingDir, "resources")
	pipeline = append(pipeline, o.findOrCreate("collect-"+t.Name, func() Stage {
		return &CollectStage{
			name:       "collect-" + t.Name,
			srcDir:     o.config.ResourcesDir,
			dstDir:     collectDir,
			target:     t.Name,
			includeAll: o.config.IncludeAllResources,
		}
	}))

	handle, err := o.cache.GetOrCreate(t.Name, func() (*artifact.Handle, error) {
		name := archive.Filename(o.config.ArtifactID, o.config.Version, t.Name, o.config.ArchiveExt)
		return &artifact.Handle{
			Target: t.Name,
			Path:   filepath.Join(o.config.LibDir, name),
		}, nil
	})
	if err != nil {
		return &PipelineError{Target: t.Name, Stage: "archive-" + t.Name, Err: err}
	}

	pipeline = append(pipeline, o.findOrCreate("archive-"+t.Name, func() Stage {
		return &ArchiveStage{
			name:     "archive-" + t.Name,
			archiver: o.archiver,
			srcDir:   collectDir,
			dstPath:  handle.Path,
		}
	}))

	if err := o.cache.RegisterPublicationOnce(t.Name, func() error {
		o.publisher.Register(handle, t.Name)
		return nil
	}); err != nil {
		return &PipelineError{Target: t.Name, Stage: "publish-" + t.Name, Err: err}
	}

	o.pipelines[t.Name] = pipeline
	return nil
}

// RunTarget executes one target's pipeline in stage order.
func (o *Orchestrator) RunTarget(ctx context.Context, name string) error {
	pipeline, ok := o.pipelines[name]
	if !ok {
		return fmt.Errorf("target %s is not configured", name)
	}
	for _, s := range pipeline {
		if err := s.Run(ctx); err != nil {
			return &PipelineError{Target: name, Stage: s.Name(), Err: err}
		}
	}
	return nil
}

// Publish flushes the queued publications to the repository.
func (o *Orchestrator) Publish(ctx context.Context) error {
	if err := o.publisher.Publish(ctx); err != nil {
		return fmt.Errorf("publish artifacts: %w", err)
	}
	return nil
}

// Run executes every configured pipeline in sorted target order and
// publishes the resulting archives as one batch.
func (o *Orchestrator) Run(ctx context.Context) error {
	targets := o.Targets()
	ui.Header("=== Staging %d target(s) ===", len(targets))
	for i, name := range targets {
		ui.Step(i+1, "staging %s", name)
		if err := o.RunTarget(ctx, name); err != nil {
			return err
		}
	}
	if err := o.Publish(ctx); err != nil {
		return err
	}
	ui.Success("run %s staged %d target(s)", o.runID, len(targets))
	return nil
}

// findOrCreate returns the stage registered under name, building and
// registering it on first request.
func (o *Orchestrator) findOrCreate(name string, build func() Stage) Stage {
	if s, ok := o.stages[name]; ok {
		return s
	}
	s := build()
	o.stages[name] = s
	return s
}
