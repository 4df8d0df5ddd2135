// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	return img
}

// fakePoppler writes numbered PNG pages like pdftoppm does.
type fakePoppler struct {
	pages   int
	missing bool
	fail    bool
	args    []string
}

func (f *fakePoppler) LookPath(file string) (string, error) {
	if f.missing {
		return "", errors.New("not found")
	}
	return "/usr/bin/" + file, nil
}

func (f *fakePoppler) Run(_ context.Context, _ string, args ...string) error {
	f.args = args
	if f.fail {
		return errors.New("Syntax Error: Couldn't read xref table")
	}
	prefix := args[len(args)-1]
	for i := 1; i <= f.pages; i++ {
		var buf bytes.Buffer
		if err := png.Encode(&buf, solid(i, 1)); err != nil {
			return err
		}
		// zero-padded like pdftoppm for documents with 10+ pages
		name := fmt.Sprintf("%s-%0*d.png", prefix, len(strconv.Itoa(f.pages)), i)
		if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func TestPopplerRender(t *testing.T) {
	ex := &fakePoppler{pages: 12}
	p := &Poppler{exec: ex}
	assert.True(t, p.Available())

	var widths []int
	err := p.Render(context.Background(), "doc.pdf", 150, func(page int, img image.Image) error {
		assert.Equal(t, len(widths)+1, page)
		widths = append(widths, img.Bounds().Dx())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, widths)
	assert.Equal(t, []string{"-png", "-r", "150", "doc.pdf"}, ex.args[:4])
}

func TestPopplerErrors(t *testing.T) {
	noop := func(int, image.Image) error { return nil }

	p := &Poppler{exec: &fakePoppler{missing: true}}
	assert.False(t, p.Available())
	assert.ErrorContains(t, p.Render(context.Background(), "a.pdf", 200, noop), "pdftoppm not found")

	p = &Poppler{exec: &fakePoppler{fail: true}}
	assert.ErrorContains(t, p.Render(context.Background(), "a.pdf", 200, noop), "xref")

	p = &Poppler{exec: &fakePoppler{pages: 0}}
	assert.ErrorContains(t, p.Render(context.Background(), "a.pdf", 200, noop), "no pages")

	stop := errors.New("stop")
	p = &Poppler{exec: &fakePoppler{pages: 3}}
	calls := 0
	err := p.Render(context.Background(), "a.pdf", 200, func(int, image.Image) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestPageFilesOrdering(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"page-10.png", "page-2.png", "page-1.png", "other.txt", "page-x.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	files, err := pageFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "page-1.png"),
		filepath.Join(dir, "page-2.png"),
		filepath.Join(dir, "page-10.png"),
	}, files)
}

type stubRenderer struct {
	name  string
	pages int
	err   error
	calls int
}

func (s *stubRenderer) Name() string { return s.name }

func (s *stubRenderer) Render(_ context.Context, _ string, _ int, fn PageFunc) error {
	s.calls++
	for i := 1; i <= s.pages; i++ {
		if err := fn(i, solid(1, 1)); err != nil {
			return err
		}
	}
	return s.err
}

func TestChain(t *testing.T) {
	broken := &stubRenderer{name: "mupdf", err: errors.New("cgo missing")}
	good := &stubRenderer{name: "pdftoppm", pages: 2}
	c := &Chain{Renderers: []Renderer{broken, good}, Log: quietLogger()}
	assert.Equal(t, "mupdf→pdftoppm", c.Name())

	n := 0
	require.NoError(t, c.Render(context.Background(), "a.pdf", 200, func(int, image.Image) error {
		n++
		return nil
	}))
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, broken.calls)

	// a renderer that fails midway is not retried with the next one
	partial := &stubRenderer{name: "mupdf", pages: 1, err: errors.New("page 2 corrupt")}
	next := &stubRenderer{name: "pdftoppm", pages: 2}
	c = &Chain{Renderers: []Renderer{partial, next}, Log: quietLogger()}
	err := c.Render(context.Background(), "a.pdf", 200, func(int, image.Image) error { return nil })
	assert.ErrorContains(t, err, "page 2 corrupt")
	assert.Equal(t, 0, next.calls)

	assert.Error(t, (&Chain{}).Render(context.Background(), "a.pdf", 200, nil))
}

func TestEncode(t *testing.T) {
	img := solid(4, 3)

	data, err := Encode(img, "PNG")
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)

	data, err = Encode(img, "jpg")
	require.NoError(t, err)
	_, err = jpeg.Decode(bytes.NewReader(data))
	assert.NoError(t, err)

	_, err = Encode(img, "gif")
	assert.ErrorContains(t, err, "unsupported")
}
