// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package office converts documents with LibreOffice in headless mode. A
// local soffice is preferred; when none is installed and a container
// runtime is available, conversions run inside a LibreOffice image.
package office

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/file-converter/internal/container"
	"github.com/pdiddy/file-converter/pkg/types"
)

// DefaultTimeout bounds a single conversion.
const DefaultTimeout = 120 * time.Second

// DefaultImage is the LibreOffice image used in container mode.
const DefaultImage = "docker.io/linuxserver/libreoffice:latest"

// PDFImportFilter makes Writer open a PDF as an editable document.
const PDFImportFilter = "writer_pdf_import"

var (
	// ErrNotFound is returned when neither a local LibreOffice nor a
	// container runtime can be used.
	ErrNotFound = errors.New("LibreOffice not found. Please install LibreOffice:\n" +
		"  Windows: https://www.libreoffice.org/download/download/\n" +
		"  Linux: sudo apt install libreoffice\n" +
		"  macOS: brew install --cask libreoffice")

	// ErrTimeout is returned when a conversion exceeds its timeout.
	ErrTimeout = errors.New("LibreOffice conversion timed out")
)

// searchPaths lists well-known install locations per GOOS.
var searchPaths = map[string][]string{
	"windows": {
		`C:\Program Files\LibreOffice\program\soffice.exe`,
		`C:\Program Files (x86)\LibreOffice\program\soffice.exe`,
		`C:\Program Files\LibreOffice 7\program\soffice.exe`,
		`C:\Program Files\LibreOffice 24\program\soffice.exe`,
	},
	"linux": {
		"/usr/bin/soffice",
		"/usr/bin/libreoffice",
		"/snap/bin/libreoffice",
		"/usr/local/bin/soffice",
	},
	"darwin": {
		"/Applications/LibreOffice.app/Contents/MacOS/soffice",
		"/usr/local/bin/soffice",
	},
}

// executor abstracts command execution and file probing for testing.
type executor interface {
	LookPath(file string) (string, error)
	IsFile(path string) bool
	Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
}

type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (osExecutor) IsFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

func (osExecutor) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// Converter runs LibreOffice conversions.
type Converter struct {
	binary  string
	runtime container.Runtime
	image   string
	timeout time.Duration
	exec    executor
	log     logrus.FieldLogger
}

// New locates LibreOffice according to cfg. It returns ErrNotFound when no
// local binary exists and container mode is disabled or unavailable.
func New(ctx context.Context, cfg types.OfficeConfig, log logrus.FieldLogger) (*Converter, error) {
	var rt container.Runtime
	if cfg.UseContainer {
		if r, err := container.DetectRuntime(ctx); err == nil {
			rt = r
		}
	}
	return newConverter(cfg, osExecutor{}, goruntime.GOOS, rt, log)
}

func newConverter(cfg types.OfficeConfig, ex executor, goos string, rt container.Runtime, log logrus.FieldLogger) (*Converter, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Converter{
		binary:  discover(cfg.Binary, ex, goos),
		image:   cfg.ContainerImage,
		timeout: cfg.Timeout,
		exec:    ex,
		log:     log.WithField("component", "office"),
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.image == "" {
		c.image = DefaultImage
	}
	if c.binary == "" {
		if rt == nil {
			return nil, ErrNotFound
		}
		c.runtime = rt
		c.log.WithFields(logrus.Fields{"runtime": rt.Name(), "image": c.image}).
			Info("LibreOffice not installed, using container")
	}
	return c, nil
}

// discover returns the soffice path: the configured binary, then soffice
// and libreoffice on PATH, then well-known install locations.
func discover(configured string, ex executor, goos string) string {
	if configured != "" {
		if ex.IsFile(configured) {
			return configured
		}
		if p, err := ex.LookPath(configured); err == nil {
			return p
		}
	}
	for _, name := range []string{"soffice", "libreoffice"} {
		if p, err := ex.LookPath(name); err == nil {
			return p
		}
	}
	for _, p := range searchPaths[goos] {
		if ex.IsFile(p) {
			return p
		}
	}
	return ""
}

// Binary returns the local soffice path, or "" in container mode.
func (c *Converter) Binary() string { return c.binary }

// Describe names the backend for status output.
func (c *Converter) Describe() string {
	if c.binary != "" {
		return c.binary
	}
	return fmt.Sprintf("%s (%s)", c.image, c.runtime.Name())
}

// Convert converts input with LibreOffice. When output is an existing
// directory, format is required and the result keeps the input's stem.
// Otherwise format defaults to output's extension and the result is moved
// to output. It returns the path of the written file.
func (c *Converter) Convert(ctx context.Context, input, output, format string) (string, error) {
	return c.convert(ctx, input, output, format, "")
}

// ImportPDF opens a PDF with Writer's PDF import filter and saves it as a
// DOCX at output.
func (c *Converter) ImportPDF(ctx context.Context, input, output string) (string, error) {
	return c.convert(ctx, input, output, "docx", PDFImportFilter)
}

func (c *Converter) convert(ctx context.Context, input, output, format, infilter string) (string, error) {
	absIn, err := filepath.Abs(input)
	if err != nil {
		return "", err
	}
	if !c.exec.IsFile(absIn) {
		return "", fmt.Errorf("input file not found: %s", absIn)
	}

	outIsDir := isDir(output)
	outDir := output
	if outIsDir {
		if format == "" {
			return "", errors.New("output format required when output is a directory")
		}
	} else {
		outDir = filepath.Dir(output)
		if format == "" {
			format = strings.TrimPrefix(filepath.Ext(output), ".")
		}
	}
	if format == "" {
		return "", fmt.Errorf("cannot determine output format for %s", output)
	}
	format = strings.ToLower(format)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	absOutDir, err := filepath.Abs(outDir)
	if err != nil {
		return "", err
	}

	log := c.log.WithFields(logrus.Fields{"input": filepath.Base(absIn), "format": format})
	log.Debug("running LibreOffice")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	if err := c.run(ctx, absIn, absOutDir, format, infilter, &stdout, &stderr); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("LibreOffice conversion failed: %s", msg)
	}

	stem := strings.TrimSuffix(filepath.Base(absIn), filepath.Ext(absIn))
	produced := filepath.Join(absOutDir, stem+"."+format)
	if !c.exec.IsFile(produced) {
		return "", fmt.Errorf("output file not created: %s", produced)
	}
	if outIsDir {
		return produced, nil
	}

	final, err := filepath.Abs(output)
	if err != nil {
		return "", err
	}
	if final != produced {
		if err := os.Remove(final); err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("replacing %s: %w", final, err)
		}
		if err := os.Rename(produced, final); err != nil {
			return "", fmt.Errorf("moving output: %w", err)
		}
	}
	log.WithField("output", final).Info("LibreOffice conversion complete")
	return final, nil
}

func (c *Converter) run(ctx context.Context, absIn, absOutDir, format, infilter string, stdout, stderr io.Writer) error {
	if c.binary != "" {
		return c.exec.Run(ctx, c.binary, sofficeArgs(absIn, absOutDir, format, infilter), stdout, stderr)
	}
	const inDir, outDir = "/in", "/out"
	return c.runtime.Run(ctx, container.RunOptions{
		Image: c.image,
		Mounts: []container.Mount{
			{Host: filepath.Dir(absIn), Container: inDir},
			{Host: absOutDir, Container: outDir},
		},
		Args:   append([]string{"soffice"}, sofficeArgs(inDir+"/"+filepath.Base(absIn), outDir, format, infilter)...),
		Stdout: stdout,
		Stderr: stderr,
	})
}

func sofficeArgs(input, outDir, format, infilter string) []string {
	args := []string{"--headless"}
	if infilter != "" {
		args = append(args, "--infilter="+infilter)
	}
	return append(args, "--convert-to", format, "--outdir", outDir, input)
}

// BatchConvert converts each input into outDir. Failures are logged and
// skipped; the successfully written paths are returned.
func (c *Converter) BatchConvert(ctx context.Context, inputs []string, outDir, format string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	var out []string
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		p, err := c.Convert(ctx, in, outDir, format)
		if err != nil {
			c.log.WithError(err).WithField("input", in).Error("conversion failed")
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
