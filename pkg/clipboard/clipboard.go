package clipboard

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	sysclip "github.com/atotto/clipboard"
)

// Target is a clipboard destination
type Target interface {
	Name() string
	Write(text string) error
}

// Option configures a Copier
type Option func(*Copier)

// Copier writes copied cell values to every enabled target
type Copier struct {
	tmux   bool
	system bool
	osc52  bool
	output io.Writer
	extra  []Target
}

// New creates a Copier with every target enabled
func New(opts ...Option) *Copier {
	c := &Copier{
		tmux:   true,
		system: true,
		osc52:  true,
		output: os.Stderr,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTmux enables/disables the tmux paste buffer
func WithTmux(enabled bool) Option {
	return func(c *Copier) {
		c.tmux = enabled
	}
}

// WithSystem enables/disables the system clipboard
func WithSystem(enabled bool) Option {
	return func(c *Copier) {
		c.system = enabled
	}
}

// WithOSC52 enables/disables OSC52 terminal copying
func WithOSC52(enabled bool) Option {
	return func(c *Copier) {
		c.osc52 = enabled
	}
}

// WithOutput sets where OSC52 sequences are written
func WithOutput(w io.Writer) Option {
	return func(c *Copier) {
		c.output = w
	}
}

// WithTarget adds a custom target
func WithTarget(t Target) Option {
	return func(c *Copier) {
		c.extra = append(c.extra, t)
	}
}

// Targets returns the targets a copy would write to, in order
func (c *Copier) Targets() []Target {
	var targets []Target
	if c.tmux && IsTmuxSession() {
		targets = append(targets, TmuxTarget{})
	}
	if c.system && !sysclip.Unsupported {
		targets = append(targets, SystemTarget{})
	}
	if c.osc52 {
		targets = append(targets, OSC52Target{Output: c.output, Tmux: IsTmuxSession()})
	}
	return append(targets, c.extra...)
}

// Copy writes text to every target. It succeeds if any target succeeds.
func (c *Copier) Copy(text string) error {
	targets := c.Targets()
	if len(targets) == 0 {
		return errors.New("no clipboard target available")
	}

	var errs []error
	for _, t := range targets {
		if err := t.Write(text); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
		}
	}
	if len(errs) == len(targets) {
		return errors.Join(errs...)
	}
	return nil
}

// TmuxTarget loads text into the tmux paste buffer
type TmuxTarget struct{}

func (TmuxTarget) Name() string { return "tmux" }

func (TmuxTarget) Write(text string) error {
	if !IsTmuxSession() {
		return errors.New("not in tmux session")
	}
	if text == "" {
		return exec.Command("tmux", "delete-buffer").Run()
	}
	cmd := exec.Command("tmux", "load-buffer", "-")
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// SystemTarget writes to the desktop clipboard
type SystemTarget struct{}

func (SystemTarget) Name() string { return "system" }

func (SystemTarget) Write(text string) error {
	return sysclip.WriteAll(text)
}

// OSC52Target asks the terminal to set the clipboard. Inside tmux the
// sequence is wrapped in a DCS passthrough.
type OSC52Target struct {
	Output io.Writer
	Tmux   bool
}

func (OSC52Target) Name() string { return "osc52" }

func (o OSC52Target) Write(text string) error {
	_, err := io.WriteString(o.Output, OSC52Sequence(text, o.Tmux))
	return err
}

// OSC52Sequence returns the escape sequence that copies text
func OSC52Sequence(text string, tmux bool) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	if tmux {
		return fmt.Sprintf("\033Ptmux;\033\033]52;c;%s\007\033\\", encoded)
	}
	return fmt.Sprintf("\033]52;c;%s\007", encoded)
}

// IsTmuxSession returns true if running inside tmux
func IsTmuxSession() bool {
	return os.Getenv("TMUX") != ""
}

// Copy copies text with the default targets
func Copy(text string) error {
	return New().Copy(text)
}
