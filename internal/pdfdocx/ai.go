// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdocx

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/file-converter/internal/ai"
	"github.com/pdiddy/file-converter/internal/docx"
	"github.com/pdiddy/file-converter/internal/privacy"
	"github.com/pdiddy/file-converter/pkg/types"
)

// groq sends the layout through the hybrid pass and builds a styled DOCX
// with a conversion report. Refused privacy checks, invalid answers and AI
// errors all fall back to the local text mode.
func (c *Converter) groq(ctx context.Context, input, output string, log logrus.FieldLogger) error {
	log.Info("extracting PDF layout")
	l, err := c.b.Layout.Extract(ctx, input)
	if err != nil {
		return fmt.Errorf("layout extraction: %w", err)
	}

	log.Info("running privacy check")
	report := privacy.CheckLayout(l)
	if c.forceLocal(l, report, log) {
		return c.text(ctx, input, output, log)
	}
	d, err := c.gate(report)
	if err != nil {
		return err
	}
	if d != privacy.Proceed {
		log.WithField("decision", d).Warn("AI processing not permitted, using local text mode")
		return c.text(ctx, input, output, log)
	}

	sent := c.outbound(l, report, log)
	if c.b.Auditor != nil {
		if err := c.b.Auditor.Record(ctx, sent); err != nil {
			log.WithError(err).Warn("audit logging failed")
		}
	}

	if c.b.AI == nil {
		log.Warn("AI service not configured, falling back to text-based conversion")
		return c.text(ctx, input, output, log)
	}
	log.Info("requesting AI reconstruction")
	rec, err := c.b.AI.Reconstruct(ctx, sent, ai.PassHybrid)
	if err != nil {
		log.WithError(err).Error("AI reconstruction failed, falling back to text-based conversion")
		return c.text(ctx, input, output, log)
	}
	if err := ai.Validate(rec); err != nil {
		log.WithError(err).Warn("AI reconstruction invalid, falling back to text-based conversion")
		return c.text(ctx, input, output, log)
	}

	log.Info("building styled DOCX")
	reportPath, err := docx.NewReconstructor(log).Reconstruct(&rec, output, docx.BuildOptions{
		Layout:     l,
		Properties: properties(l.Metadata, input),
		Report:     true,
	})
	if err != nil {
		return fmt.Errorf("document reconstruction: %w", err)
	}
	log.WithField("report", reportPath).Info("AI-powered conversion complete")
	return nil
}

// hybrid sends the layout through the hybrid pass and builds the DOCX
// from whatever comes back. When the answer cannot be used, or sensitive
// content may not leave the machine, the layout blocks are written
// directly. A user who declines at the prompt cancels the conversion.
func (c *Converter) hybrid(ctx context.Context, input, output string, log logrus.FieldLogger) error {
	log.Info("extracting PDF layout")
	l, err := c.b.Layout.Extract(ctx, input)
	if err != nil {
		return fmt.Errorf("layout extraction: %w", err)
	}
	log.WithFields(logrus.Fields{"pages": len(l.Pages), "blocks": l.TotalBlocks()}).Info("layout extraction complete")

	report := privacy.CheckLayout(l)
	if c.forceLocal(l, report, log) {
		return c.text(ctx, input, output, log)
	}
	d, err := c.gate(report)
	if err != nil {
		return err
	}

	var rec types.Reconstruction
	switch {
	case d == privacy.Declined:
		return privacy.ErrSensitiveContent
	case d == privacy.Blocked:
		log.Warn("sensitive content cannot be sent, using layout data")
		rec = LayoutReconstruction(l)
	case c.b.AI == nil:
		return errors.New("hybrid mode requires the AI service")
	default:
		sent := c.outbound(l, report, log)
		if c.b.Auditor != nil {
			if err := c.b.Auditor.Record(ctx, sent); err != nil {
				log.WithError(err).Warn("audit logging failed")
			}
		}
		log.Info("sending layout to AI for semantic cleanup")
		rec, err = c.b.AI.Reconstruct(ctx, sent, ai.PassHybrid)
		if err != nil {
			return err
		}
		if rec.Status == types.ReconstructionSuccess {
			log.WithField("blocks", len(rec.Blocks)).Info("AI reconstruction complete")
		} else {
			log.Warn("AI reconstruction returned empty or invalid result, using layout data")
			rec = LayoutReconstruction(l)
		}
	}

	if _, err := docx.NewReconstructor(log).Reconstruct(&rec, output, docx.BuildOptions{}); err != nil {
		return fmt.Errorf("document reconstruction: %w", err)
	}
	log.Info("hybrid conversion complete")
	return nil
}

// forceLocal reports whether sensitive content must stay on this machine
// because AI is disabled or strict mode is on.
func (c *Converter) forceLocal(l *types.Layout, report privacy.Report, log logrus.FieldLogger) bool {
	if !privacy.ShouldUseLocal(l, c.privacy.Strict, c.privacy.DisableAI) {
		return false
	}
	log.WithField("findings", report.Findings).Warn("sensitive content with AI disabled, using local text mode")
	return true
}

// outbound returns the layout that may leave the machine: l itself, or an
// anonymized copy when anonymization is on and l holds sensitive content.
func (c *Converter) outbound(l *types.Layout, report privacy.Report, log logrus.FieldLogger) *types.Layout {
	if !c.privacy.Anonymize || !report.Sensitive() {
		return l
	}
	log.WithField("findings", report.Findings).Info("anonymizing layout before sending")
	return privacy.AnonymizeLayout(l)
}

func (c *Converter) gate(report privacy.Report) (privacy.Decision, error) {
	if c.b.Gate == nil {
		if report.Sensitive() && !c.privacy.AllowSensitive {
			return privacy.Blocked, nil
		}
		return privacy.Proceed, nil
	}
	return c.b.Gate.Check(report)
}

// LayoutReconstruction turns layout blocks into a reconstruction without
// AI. Detected list items keep their list style and indent level.
func LayoutReconstruction(l *types.Layout) types.Reconstruction {
	rec := types.Reconstruction{Status: types.ReconstructionLayout}
	for _, b := range l.Blocks() {
		sb := types.StyledBlock{Text: b.Text, Style: types.StyleNormal}
		switch b.ListType {
		case types.ListBullet:
			sb = types.StyledBlock{Text: b.CleanText, Style: types.StyleListBullet, Level: b.IndentLevel}
		case types.ListNumbered:
			sb = types.StyledBlock{Text: b.CleanText, Style: types.StyleListNumber, Level: b.IndentLevel}
		}
		rec.Blocks = append(rec.Blocks, sb)
	}
	return rec
}

func properties(m types.DocumentMetadata, input string) *docx.CoreProperties {
	title := m.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	return &docx.CoreProperties{Title: title, Author: m.Author}
}
