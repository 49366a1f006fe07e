// Package archive packs staged target directories into zip files.
//
// Packing is deterministic: entries are written in sorted order with a
// fixed modification time, so identical input trees produce identical
// archive bytes run after run.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// epoch is the fixed modification time stamped on every entry.
var epoch = time.Unix(0, 0).UTC()

// Filename derives the archive name for one target:
// <artifactID>-<version>-<classifier>.<ext>.
func Filename(artifactID, version, classifier, ext string) string {
	return fmt.Sprintf("%s-%s-%s.%s", artifactID, version, classifier, ext)
}

// Pack zips every regular file under srcDir into dstPath. The archive
// appears atomically: content is written to a temp file and renamed into
// place, so a failed pack leaves no partial archive behind.
func Pack(srcDir, dstPath string) error {
	entries, err := collectEntries(srcDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	tmpPath := dstPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}

	success := false
	defer func() {
		if !success {
			f.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := writeEntries(f, srcDir, entries); err != nil {
		return err
	}

	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}

	success = true
	return nil
}

// collectEntries returns the sorted relative paths of every regular file
// under root.
func collectEntries(root string) ([]string, error) {
	var entries []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}
		entries = append(entries, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect archive entries: %w", err)
	}
	sort.Strings(entries)
	return entries, nil
}

func writeEntries(f *os.File, srcDir string, entries []string) error {
	zw := zip.NewWriter(f)
	for _, rel := range entries {
		hdr := &zip.FileHeader{
			Name:     filepath.ToSlash(rel),
			Method:   zip.Deflate,
			Modified: epoch,
		}
		hdr.SetMode(0644)

		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("add entry %s: %w", rel, err)
		}

		src, err := os.Open(filepath.Join(srcDir, rel))
		if err != nil {
			return fmt.Errorf("open %s: %w", rel, err)
		}
		_, err = io.Copy(w, src)
		src.Close()
		if err != nil {
			return fmt.Errorf("write entry %s: %w", rel, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip writer: %w", err)
	}
	return nil
}
