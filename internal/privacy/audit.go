// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package privacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/file-converter/pkg/types"
)

const defaultAuditFile = "groq_audit_log.json"

var errCorruptLog = errors.New("audit log is not valid JSON")

// AuditRecorder persists audit entries outside the JSON log, typically the
// history database.
type AuditRecorder interface {
	RecordAudit(ctx context.Context, entry types.AuditEntry) error
}

// Auditor records every payload sent to the AI service when audit mode is on.
type Auditor struct {
	enabled bool
	path    string
	store   AuditRecorder
	log     logrus.FieldLogger
	now     func() time.Time
}

// NewAuditor returns an Auditor configured from cfg. store may be nil.
func NewAuditor(cfg types.PrivacyConfig, store AuditRecorder, log logrus.FieldLogger) *Auditor {
	path := cfg.AuditFile
	if path == "" {
		path = defaultAuditFile
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Auditor{
		enabled: cfg.AuditMode,
		path:    path,
		store:   store,
		log:     log.WithField("component", "audit"),
		now:     time.Now,
	}
}

// Enabled reports whether audit mode is on.
func (a *Auditor) Enabled() bool { return a != nil && a.enabled }

// Record appends an entry for l to the JSON audit log and, when a store is
// attached, to the store. It does nothing when audit mode is off.
func (a *Auditor) Record(ctx context.Context, l *types.Layout) error {
	if !a.Enabled() {
		return nil
	}

	entry := types.AuditEntry{
		Timestamp:   a.now().UTC(),
		TotalPages:  l.TotalPages,
		TotalBlocks: l.TotalBlocks(),
		Data:        l,
	}

	entries, err := a.load()
	if errors.Is(err, errCorruptLog) {
		entries, err = nil, a.quarantine(err)
	}
	if err != nil {
		return fmt.Errorf("loading audit log: %w", err)
	}
	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling audit log: %w", err)
	}
	if err := writeAtomic(a.path, data); err != nil {
		return fmt.Errorf("writing audit log %s: %w", a.path, err)
	}

	if a.store != nil {
		if err := a.store.RecordAudit(ctx, entry); err != nil {
			return fmt.Errorf("recording audit entry: %w", err)
		}
	}

	a.log.WithFields(logrus.Fields{
		"pages":  entry.TotalPages,
		"blocks": entry.TotalBlocks,
		"file":   a.path,
	}).Info("recorded AI request")
	return nil
}

func (a *Auditor) load() ([]types.AuditEntry, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []types.AuditEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errCorruptLog, a.path, err)
	}
	return entries, nil
}

// quarantine moves an unparsable log aside so its history survives and a
// new log can be started.
func (a *Auditor) quarantine(cause error) error {
	dst := fmt.Sprintf("%s.corrupt-%s", a.path, a.now().UTC().Format("20060102T150405Z"))
	if err := os.Rename(a.path, dst); err != nil {
		return fmt.Errorf("moving aside corrupt audit log: %w", err)
	}
	a.log.WithError(cause).WithField("moved_to", dst).Warn("audit log unreadable, starting a new one")
	return nil
}

// writeAtomic replaces path with data through a temporary file in the same
// directory.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
