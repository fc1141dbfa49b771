package main

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/viyanta/viyanta-web-sub000/pkg/clipboard"
)

// captureArgs builds the tmux capture-pane command line. Wrapped lines are
// joined so table rows stay on one line.
func captureArgs(target string, history int) []string {
	args := []string{"capture-pane", "-p", "-J"}
	if target != "" {
		args = append(args, "-t", target)
	}
	if history > 0 {
		args = append(args, "-S", fmt.Sprintf("-%d", history))
	}
	return args
}

// capturePane returns the visible text of a tmux pane
func capturePane(target string, history int) (string, error) {
	if target == "" && !clipboard.IsTmuxSession() {
		return "", errors.New("not inside tmux; pass --target to pick a pane")
	}

	out, err := exec.Command("tmux", captureArgs(target, history)...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("tmux capture-pane failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("tmux capture-pane failed: %w", err)
	}
	return string(out), nil
}
