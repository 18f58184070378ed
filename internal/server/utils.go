package server

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/tliron/glsp"
)

// requestContext unwraps the cancellation context glsp attaches to a
// request, falling back to Background for callers built without one.
func requestContext(glspCtx *glsp.Context) context.Context {
	if glspCtx != nil && glspCtx.Context != nil {
		return glspCtx.Context
	}
	return context.Background()
}

// stateDir returns a per-workspace state directory under XDG_STATE_HOME,
// creating it if needed.
func stateDir(root string) (string, error) {
	xdgStateHome := os.Getenv("XDG_STATE_HOME")
	if xdgStateHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		xdgStateHome = filepath.Join(homeDir, ".local", "state")
	}

	dir := filepath.Join(xdgStateHome, serverName, url.PathEscape(root))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	return dir, nil
}
