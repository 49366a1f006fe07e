// Package render instantiates generated configuration templates against a
// target's context.
package render

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Engine renders template trees with the sprig function set and strict
// missing-key handling: a variable absent from the context fails the file
// instead of rendering "<no value>".
type Engine struct {
	funcs template.FuncMap
}

// NewEngine returns a ready engine.
func NewEngine() *Engine {
	return &Engine{funcs: sprig.TxtFuncMap()}
}

// RenderDirectory renders every regular file under srcDir to the same
// relative path under dstDir, binding context as the template data.
func (e *Engine) RenderDirectory(ctx context.Context, srcDir, dstDir string, context map[string]string) error {
	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}
		return e.RenderFile(path, filepath.Join(dstDir, relPath), context)
	})
}

// RenderFile renders one template file to dstPath, creating parent
// directories as needed.
func (e *Engine) RenderFile(srcPath, dstPath string, context map[string]string) error {
	content, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read template %s: %w", srcPath, err)
	}

	tmpl, err := template.New(filepath.Base(srcPath)).
		Funcs(e.funcs).
		Option("missingkey=error").
		Parse(string(content))
	if err != nil {
		return fmt.Errorf("parse template %s: %w", srcPath, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, context); err != nil {
		return fmt.Errorf("render %s: %w", srcPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(dstPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write rendered file: %w", err)
	}
	return nil
}
