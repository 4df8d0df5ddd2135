// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package browser

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/pdiddy/file-converter/pkg/types"
)

// ErrNoBrowser is returned when no Chromium binary is installed and
// downloading one is not allowed.
var ErrNoBrowser = errors.New("no Chrome or Chromium browser found (set render.browser_path or enable render.download_browser)")

// Seams for tests.
var (
	lookPath = launcher.LookPath
	download = func() (string, error) { return launcher.NewBrowser().Get() }
)

// Resolve returns the browser executable: the configured path, then an
// installed Chrome/Chromium, then a downloaded build when cfg allows it.
// Downloads are cached in ~/.cache/rod/browser.
func Resolve(cfg types.RenderConfig) (string, error) {
	if cfg.BrowserPath != "" {
		if _, err := os.Stat(cfg.BrowserPath); err != nil {
			return "", fmt.Errorf("configured browser %s: %w", cfg.BrowserPath, err)
		}
		return cfg.BrowserPath, nil
	}
	if p, ok := lookPath(); ok {
		return p, nil
	}
	if !cfg.DownloadBrowser {
		return "", ErrNoBrowser
	}
	p, err := download()
	if err != nil {
		return "", fmt.Errorf("downloading browser: %w", err)
	}
	return p, nil
}
