// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package raster

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const binPdftoppm = "pdftoppm"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) error
}

type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (osExecutor) Run(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// Poppler renders pages with the pdftoppm command line tool.
type Poppler struct {
	exec executor
}

// NewPoppler returns a pdftoppm-backed renderer.
func NewPoppler() *Poppler { return &Poppler{exec: osExecutor{}} }

// Name implements Renderer.
func (p *Poppler) Name() string { return binPdftoppm }

// Available reports whether pdftoppm is on PATH.
func (p *Poppler) Available() bool {
	_, err := p.exec.LookPath(binPdftoppm)
	return err == nil
}

// Render implements Renderer. Pages are written to a temporary directory
// as PNG and decoded one at a time.
func (p *Poppler) Render(ctx context.Context, pdfPath string, dpi int, fn PageFunc) error {
	bin, err := p.exec.LookPath(binPdftoppm)
	if err != nil {
		return fmt.Errorf("%s not found: %w", binPdftoppm, err)
	}
	tmp, err := os.MkdirTemp("", "file-converter-pages-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	prefix := filepath.Join(tmp, "page")
	if err := p.exec.Run(ctx, bin, "-png", "-r", strconv.Itoa(dpi), pdfPath, prefix); err != nil {
		return fmt.Errorf("running %s: %w", binPdftoppm, err)
	}

	pages, err := pageFiles(tmp)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("%s produced no pages for %s", binPdftoppm, pdfPath)
	}
	for i, path := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := decodeFile(path)
		if err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
		if err := fn(i+1, img); err != nil {
			return err
		}
	}
	return nil
}

// pageFiles lists page-N.png files sorted by N. pdftoppm zero-pads N to the
// width of the page count, so lexical order is not enough.
func pageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type numbered struct {
		n    int
		path string
	}
	var files []numbered
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "page-") || !strings.HasSuffix(name, ".png") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "page-"), ".png"))
		if err != nil {
			continue
		}
		files = append(files, numbered{n, filepath.Join(dir, name)})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].n < files[j].n })
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.path
	}
	return out, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return img, nil
}
