package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// EnvLevel overrides the configured log level
const EnvLevel = "TABLELENS_LOG"

// ParseLevel maps a level name to a slog level; unknown names fall back to info
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return slog.LevelDebug, true
	case "info", "inf", "":
		return slog.LevelInfo, true
	case "warn", "wrn", "warning":
		return slog.LevelWarn, true
	case "error", "err":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// DefaultPath returns the log file under the XDG state directory
func DefaultPath() string {
	return filepath.Join(xdg.StateHome, "tablelens", "tablelens.log")
}

// InitLogger installs a text handler writing to path as the default logger.
// The returned closer releases the log file.
func InitLogger(path, level string) (io.Closer, error) {
	if env := os.Getenv(EnvLevel); env != "" {
		level = env
	}
	lvl, ok := ParseLevel(level)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	Install(logFile, lvl)
	if !ok {
		slog.Warn("Unknown log level, using info", "level", level)
	}
	return logFile, nil
}

// Install makes a text handler on w the default logger
func Install(w io.Writer, level slog.Level) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
