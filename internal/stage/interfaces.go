package stage

import (
	"context"

	"github.com/cameronsjo/stevedore/internal/archive"
	"github.com/cameronsjo/stevedore/internal/artifact"
	"github.com/cameronsjo/stevedore/internal/publish"
	"github.com/cameronsjo/stevedore/internal/render"
)

// Renderer instantiates every template under srcDir into dstDir using
// the given target context.
type Renderer interface {
	RenderDirectory(ctx context.Context, srcDir, dstDir string, context map[string]string) error
}

// Archiver packs a staged directory tree into a single archive file.
type Archiver interface {
	Pack(srcDir, dstPath string) error
}

// Publisher collects archive registrations and delivers them as one
// batch at the end of a run.
type Publisher interface {
	Register(h *artifact.Handle, classifier string)
	Publish(ctx context.Context) error
}

// zipArchiver adapts the archive package to the Archiver interface.
type zipArchiver struct{}

func (zipArchiver) Pack(srcDir, dstPath string) error {
	return archive.Pack(srcDir, dstPath)
}

// Compile-time checks for the production collaborators.
var (
	_ Renderer  = (*render.Engine)(nil)
	_ Archiver  = zipArchiver{}
	_ Publisher = (*publish.Repository)(nil)
)
