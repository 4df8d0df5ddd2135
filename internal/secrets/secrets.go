// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// The filename is the key and the trimmed contents are the value.
//
// Recognised keys: groq-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// GroqAPIKey names the file holding the Groq API key.
const GroqAPIKey = "groq-api-key"

// Secrets maps key names to values.
type Secrets map[string]string

// Load reads every regular, non-dot file in dir. A missing directory yields
// an empty set. Unreadable files are logged and skipped.
func Load(dir string, log logrus.FieldLogger) (Secrets, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Secrets)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.WithError(err).WithField("secret", name).Warn("could not read secret")
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// Get returns the value for key, or "".
func (s Secrets) Get(key string) string {
	return s[key]
}

// Keys returns the loaded key names, sorted. Values are never listed.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
