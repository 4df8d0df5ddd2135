// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main contains Mage build targets for file-converter developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories used during development.
var projectDirs = []string{
	".secrets",
	"samples/in",
	"samples/out",
}

const (
	binDir  = "bin"
	binName = "file-converter"
	cmdPkg  = "./cmd/file-converter"
)

// Init creates the development directory structure.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized. Put the Groq key in .secrets/groq-api-key.")
	return nil
}

// Build compiles the CLI binary into bin/, stamping the version from git.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	out := filepath.Join(binDir, binName)
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", out, version)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Stats prints project metrics: Go production and test line counts.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	return nil
}

// Smoke builds the binary and converts every file in samples/in to the
// targets listed in samples/targets.txt ("ext target" per line).
func Smoke() error {
	mg.Deps(Build, Init)
	data, err := os.ReadFile(filepath.Join("samples", "targets.txt"))
	if err != nil {
		return fmt.Errorf("reading samples/targets.txt: %w", err)
	}
	bin := filepath.Join(binDir, binName)
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 || strings.HasPrefix(line, "#") {
			continue
		}
		inputs, err := filepath.Glob(filepath.Join("samples", "in", "*."+fields[0]))
		if err != nil || len(inputs) == 0 {
			continue
		}
		args := append([]string{"convert", "--to", fields[1], "--out-dir", filepath.Join("samples", "out"), "--overwrite"}, inputs...)
		if err := sh.RunV(bin, args...); err != nil {
			return fmt.Errorf("%s→%s: %w", fields[0], fields[1], err)
		}
	}
	return nil
}

// countGoLines counts non-blank lines in Go files under root, skipping the
// _examples tree. If testOnly is true it counts only _test.go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), "_") || info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				total++
			}
		}
		return nil
	})
	return total, err
}
