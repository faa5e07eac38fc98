// Package logging opens the bridge's per-endpoint log sink (spec.md §6:
// "One text stream per endpoint at a path containing the endpoint
// process identifier; format is free-form diagnostic") and hands back a
// structured *slog.Logger, the way flowpbx-flowpbx wires slog.New over an
// explicit writer at each of its cmd/ entry points.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Open creates (or truncates) the log file "<dir>/<component>-<pid>.log"
// and returns a slog.Logger writing to it, along with the file so the
// caller can close it during teardown.
func Open(dir, component string) (*slog.Logger, *os.File, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	name := fmt.Sprintf("%s-%d.log", component, os.Getpid())
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: open %s: %w", path, err)
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(handler).With("component", component, "pid", os.Getpid())
	return logger, f, nil
}
