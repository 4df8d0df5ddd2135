// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool // "bin arg1 arg2" -> whether RunSilent succeeds
	runPipedFunc  func(name string, args []string, stdin io.Reader, stdout io.Writer) error
	lastArgs      []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(_ context.Context, name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) RunPiped(_ context.Context, name string, args []string, stdin io.Reader, stdout, _ io.Writer) error {
	m.lastArgs = args
	if m.runPipedFunc != nil {
		return m.runPipedFunc(name, args, stdin, stdout)
	}
	return nil
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  bool
	}{
		{
			name: "docker available",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true},
				runnableCmds:  map[string]bool{"docker info": true},
			},
			wantName: "docker",
		},
		{
			name: "podman fallback when docker missing",
			exec: &mockExecutor{
				availableBins: map[string]bool{"podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "neither available",
			exec: &mockExecutor{
				availableBins: map[string]bool{},
				runnableCmds:  map[string]bool{},
			},
			wantErr: true,
		},
		{
			name: "docker on PATH but info fails, podman works",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detectRuntime(context.Background(), tt.exec)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), "no container runtime available") {
					t.Errorf("error should mention no runtime available, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rt.Name() != tt.wantName {
				t.Errorf("got runtime %q, want %q", rt.Name(), tt.wantName)
			}
		})
	}
}

func TestImageExists(t *testing.T) {
	tests := []struct {
		name    string
		mkRT    func(*mockExecutor) Runtime
		image   string
		cmds    map[string]bool
		wantErr bool
	}{
		{
			name:  "docker image exists",
			mkRT:  func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			image: "linuxserver/libreoffice:latest",
			cmds:  map[string]bool{"docker image inspect linuxserver/libreoffice:latest": true},
		},
		{
			name:    "docker image not found",
			mkRT:    func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			image:   "linuxserver/libreoffice:latest",
			cmds:    map[string]bool{},
			wantErr: true,
		},
		{
			name:  "podman image exists",
			mkRT:  func(e *mockExecutor) Runtime { return newPodmanRuntime(e) },
			image: "linuxserver/libreoffice:latest",
			cmds:  map[string]bool{"podman image exists linuxserver/libreoffice:latest": true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{runnableCmds: tt.cmds}
			rt := tt.mkRT(exec)
			err := rt.ImageExists(context.Background(), tt.image)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.image) {
					t.Errorf("error should mention image name, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRunArgs(t *testing.T) {
	exec := &mockExecutor{}
	rt := newDockerRuntime(exec)
	err := rt.Run(context.Background(), RunOptions{
		Image:   "office:latest",
		Mounts:  []Mount{{Host: "/tmp/in", Container: "/work"}},
		Workdir: "/work",
		Args:    []string{"soffice", "--headless"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "run --rm -v /tmp/in:/work -w /work office:latest soffice --headless"
	if got := strings.Join(exec.lastArgs, " "); got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func TestRunPipesStdin(t *testing.T) {
	exec := &mockExecutor{
		runPipedFunc: func(name string, args []string, stdin io.Reader, stdout io.Writer) error {
			if name != "podman" {
				return errors.New("expected podman binary")
			}
			data, _ := io.ReadAll(stdin)
			_, _ = stdout.Write([]byte("converted: " + string(data)))
			return nil
		},
	}
	rt := newPodmanRuntime(exec)
	var out bytes.Buffer
	err := rt.Run(context.Background(), RunOptions{
		Image:  "tool:1",
		Stdin:  strings.NewReader("payload"),
		Stdout: &out,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := out.String(); got != "converted: payload" {
		t.Errorf("got output %q", got)
	}
	if exec.lastArgs[2] != "-i" {
		t.Errorf("expected -i flag when stdin is set, got %v", exec.lastArgs)
	}
}

func TestRunFailure(t *testing.T) {
	exec := &mockExecutor{
		runPipedFunc: func(string, []string, io.Reader, io.Writer) error {
			return errors.New("container exited with code 1")
		},
	}
	err := newDockerRuntime(exec).Run(context.Background(), RunOptions{Image: "office:latest"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "office:latest") {
		t.Errorf("error should mention image, got: %v", err)
	}
}
