// Package publish delivers built archives into a directory-backed
// repository and records a publication manifest describing the batch.
package publish

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/stevedore/internal/artifact"
	"github.com/cameronsjo/stevedore/internal/fileutil"
)

// ManifestName is the file written next to published archives.
const ManifestName = "publication.yaml"

// Manifest records one publication batch.
type Manifest struct {
	ArtifactID string         `yaml:"artifactId"`
	Version    string         `yaml:"version"`
	BuildID    string         `yaml:"buildId"`
	Created    time.Time      `yaml:"created"`
	Revision   string         `yaml:"revision,omitempty"`
	Dirty      bool           `yaml:"dirty,omitempty"`
	Files      []ManifestFile `yaml:"files"`
}

// ManifestFile describes one published archive.
type ManifestFile struct {
	Name       string `yaml:"name"`
	Classifier string `yaml:"classifier"`
	SHA256     string `yaml:"sha256"`
	Size       int64  `yaml:"size"`
}

// publication is one queued (archive, classifier) pair.
type publication struct {
	handle     *artifact.Handle
	classifier string
}

// Repository is a publication sink with the layout
// <dir>/<artifactID>/<version>/<file>.
type Repository struct {
	dir        string
	artifactID string
	version    string
	buildID    string

	queue []publication
	seen  map[string]bool
}

// NewRepository returns a sink rooted at dir for one artifact coordinate.
func NewRepository(dir, artifactID, version, buildID string) *Repository {
	return &Repository{
		dir:        dir,
		artifactID: artifactID,
		version:    version,
		buildID:    buildID,
		seen:       make(map[string]bool),
	}
}

// Register queues an archive for publication under classifier. A pair
// already queued is kept once.
func (r *Repository) Register(h *artifact.Handle, classifier string) {
	key := h.Target + "/" + classifier
	if r.seen[key] {
		return
	}
	r.seen[key] = true
	r.queue = append(r.queue, publication{handle: h, classifier: classifier})
}

// Pending returns how many publications are queued.
func (r *Repository) Pending() int {
	return len(r.queue)
}

// Publish copies every queued archive into the repository and writes the
// publication manifest alongside. With nothing queued it does nothing.
func (r *Repository) Publish(ctx context.Context) error {
	if len(r.queue) == 0 {
		return nil
	}

	destDir := filepath.Join(r.dir, r.artifactID, r.version)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create repository dir: %w", err)
	}

	revision, dirty := headRevision(r.dir)
	manifest := Manifest{
		ArtifactID: r.artifactID,
		Version:    r.version,
		BuildID:    r.buildID,
		Created:    time.Now().UTC(),
		Revision:   revision,
		Dirty:      dirty,
	}

	for _, pub := range r.queue {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := filepath.Base(pub.handle.Path)
		if err := fileutil.CopyFile(pub.handle.Path, filepath.Join(destDir, name)); err != nil {
			return fmt.Errorf("publish %s: %w", name, err)
		}

		sum, size, err := checksum(pub.handle.Path)
		if err != nil {
			return fmt.Errorf("checksum %s: %w", name, err)
		}

		manifest.Files = append(manifest.Files, ManifestFile{
			Name:       name,
			Classifier: pub.classifier,
			SHA256:     sum,
			Size:       size,
		})
	}

	sort.Slice(manifest.Files, func(i, j int) bool {
		return manifest.Files[i].Name < manifest.Files[j].Name
	})

	data, err := yaml.Marshal(&manifest)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(destDir, ManifestName), data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// checksum returns the hex sha256 and size of the file at path.
func checksum(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), size, nil
}
