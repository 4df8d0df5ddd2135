// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package privacy

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// ErrSensitiveContent is returned when a conversion is cancelled because
// the document contains sensitive content.
var ErrSensitiveContent = errors.New("conversion cancelled due to privacy concerns")

// Decision is the outcome of a privacy gate check.
type Decision int

const (
	// Proceed means the payload may be sent.
	Proceed Decision = iota
	// Declined means the user answered no at the prompt.
	Declined
	// Blocked means no one could be asked and sensitive sends are not allowed.
	Blocked
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case Declined:
		return "declined"
	case Blocked:
		return "blocked"
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// Prompter asks the user a yes/no question.
type Prompter interface {
	// Interactive reports whether a user is available to answer.
	Interactive() bool
	// Confirm asks question and reports whether the answer was yes.
	Confirm(question string) (bool, error)
}

// TerminalPrompter reads answers from a terminal.
type TerminalPrompter struct {
	in  io.Reader
	out io.Writer
	fd  uintptr
}

// NewTerminalPrompter returns a prompter bound to stdin and stderr.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{in: os.Stdin, out: os.Stderr, fd: os.Stdin.Fd()}
}

func (p *TerminalPrompter) Interactive() bool {
	return isatty.IsTerminal(p.fd) || isatty.IsCygwinTerminal(p.fd)
}

func (p *TerminalPrompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s (y/N): ", question)
	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// Gate decides whether sensitive content may be sent to the AI service.
type Gate struct {
	prompter       Prompter
	allowSensitive bool
	log            logrus.FieldLogger
}

// NewGate returns a Gate. A nil prompter is treated as non-interactive.
func NewGate(p Prompter, allowSensitive bool, log logrus.FieldLogger) *Gate {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Gate{prompter: p, allowSensitive: allowSensitive, log: log.WithField("component", "privacy")}
}

// Check returns Proceed for clean reports. For sensitive reports it asks
// the user when a terminal is available and otherwise applies the
// allow-sensitive setting.
func (g *Gate) Check(r Report) (Decision, error) {
	if !r.Sensitive() {
		return Proceed, nil
	}

	g.log.WithField("findings", r.Findings).Warn("sensitive content detected")

	if g.prompter != nil && g.prompter.Interactive() {
		ok, err := g.prompter.Confirm("Sensitive content detected: " + r.String() + ". Continue with AI processing?")
		if err != nil {
			return Declined, err
		}
		if ok {
			return Proceed, nil
		}
		return Declined, nil
	}

	if g.allowSensitive {
		g.log.Info("sending sensitive content (allow_sensitive is set)")
		return Proceed, nil
	}
	return Blocked, nil
}
