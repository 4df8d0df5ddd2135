// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container implements container runtime detection and execution.
// The office converter uses it to run LibreOffice from an image when no
// local installation exists.
package container

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Mount binds a host directory into the container.
type Mount struct {
	Host      string
	Container string
}

// RunOptions describes a single container invocation.
type RunOptions struct {
	Image   string
	Mounts  []Mount
	Workdir string
	Args    []string // command and arguments run inside the container

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Runtime provides container operations: checking availability, verifying
// images, and running containers.
type Runtime interface {
	// Name returns the runtime name ("docker" or "podman").
	Name() string

	// Available reports whether the runtime binary exists on PATH and
	// responds to an info command.
	Available(ctx context.Context) bool

	// ImageExists checks whether the named image exists locally.
	// Returns nil when the image is found, or an error describing the failure.
	ImageExists(ctx context.Context, image string) error

	// Run executes a container with the given options and removes it
	// afterwards.
	Run(ctx context.Context, opts RunOptions) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(ctx context.Context, name string, args ...string) error
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func (o *osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// runtime implements Runtime for a specific container binary. Both Docker
// and Podman share the same logic; they differ only in binary name and the
// subcommand used to check image existence.
type runtime struct {
	bin           string
	imageCheckCmd []string // e.g. ["image", "inspect"] for docker
	exec          executor
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) Available(ctx context.Context) bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(ctx, r.bin, "info") == nil
}

func (r *runtime) ImageExists(ctx context.Context, image string) error {
	args := make([]string, 0, len(r.imageCheckCmd)+1)
	args = append(args, r.imageCheckCmd...)
	args = append(args, image)

	if err := r.exec.RunSilent(ctx, r.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *runtime) Run(ctx context.Context, opts RunOptions) error {
	if err := r.exec.RunPiped(ctx, r.bin, runArgs(opts), opts.Stdin, opts.Stdout, opts.Stderr); err != nil {
		return fmt.Errorf("running %s container %s: %w", r.bin, opts.Image, err)
	}
	return nil
}

// runArgs builds the "run" argument list shared by docker and podman.
func runArgs(opts RunOptions) []string {
	args := []string{"run", "--rm"}
	if opts.Stdin != nil {
		args = append(args, "-i")
	}
	for _, m := range opts.Mounts {
		args = append(args, "-v", m.Host+":"+m.Container)
	}
	if opts.Workdir != "" {
		args = append(args, "-w", opts.Workdir)
	}
	args = append(args, opts.Image)
	return append(args, opts.Args...)
}

func newDockerRuntime(exec executor) *runtime {
	return &runtime{
		bin:           binDocker,
		imageCheckCmd: []string{"image", "inspect"},
		exec:          exec,
	}
}

func newPodmanRuntime(exec executor) *runtime {
	return &runtime{
		bin:           binPodman,
		imageCheckCmd: []string{"image", "exists"},
		exec:          exec,
	}
}

var defaultExec = &osExecutor{}

// DetectRuntime tries docker first, falls back to podman. Returns an error
// if neither runtime is available.
func DetectRuntime(ctx context.Context) (Runtime, error) {
	return detectRuntime(ctx, defaultExec)
}

func detectRuntime(ctx context.Context, exec executor) (Runtime, error) {
	docker := newDockerRuntime(exec)
	if docker.Available(ctx) {
		return docker, nil
	}

	podman := newPodmanRuntime(exec)
	if podman.Available(ctx) {
		return podman, nil
	}

	return nil, fmt.Errorf(
		"no container runtime available: neither %s nor %s found or operational",
		binDocker, binPodman,
	)
}
