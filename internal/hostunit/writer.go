// Package hostunit is the host-artifact driver (C6): the thin, stateless
// layer that actually touches the filesystem, systemd, networkd, and the
// kernel's link table. The reconciler computes *what* the host should look
// like; hostunit is the only place that performs the side effects.
//
// Grounded on original_source/.../systemd/{networkd,service}.rs (file
// write, dbus Reload/LoadUnit/StartUnit, rtnetlink delete).
package hostunit

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// NetworkdDir is where bridge/tap .netdev and .network unit bodies are
	// written.
	NetworkdDir = "/run/systemd/network"

	// SystemdDir is where VM service unit bodies are written.
	SystemdDir = "/run/systemd/system"
)

// WriteUnit ensures path's parent directory exists and writes body to it,
// truncating any existing content. Truncate/write is acceptable per
// spec.md; no atomic rename is required.
func WriteUnit(path, body string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating unit directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		return fmt.Errorf("writing unit file %s: %w", path, err)
	}
	return nil
}

// ReadUnit returns the current on-disk contents of path, or ("", nil) if
// the file does not exist.
func ReadUnit(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading unit file %s: %w", path, err)
	}
	return string(data), nil
}

// Differs reports whether want differs from what is currently on disk at
// path — the byte-exact comparison that drives the reconciler's
// write-only-on-difference idempotence.
func Differs(path, want string) (bool, error) {
	got, err := ReadUnit(path)
	if err != nil {
		return true, err
	}
	return got != want, nil
}
