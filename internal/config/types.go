// Package config collects the filesystem locations tinyvmm's subsystems
// agree on: the entity store, the networkd/systemd unit directories, the
// shared guest kernel image, and the per-VM runtime directory convention.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/jbweber/tinyvmm/internal/hostunit"
)

// DefaultStorePath is where the entity store's bbolt database lives absent
// a --store-path flag.
const DefaultStorePath = "/var/lib/tinyvmm/tinyvmm.db"

// DefaultKernelPath is the guest kernel image every VM boots from, absent
// a --kernel-path flag. Every VM on a single host shares one kernel; spec.md's
// VirtualMachineSpec carries no per-VM kernel field.
const DefaultKernelPath = "/var/lib/tinyvmm/vmlinux"

// Paths collects the locations tinyvmm's subsystems read from or write
// to, every one overridable by a CLI flag so tests and non-standard
// deployments don't need the real /var/lib and /run paths.
type Paths struct {
	StorePath  string // bbolt database file backing the entity store
	NetworkDir string // networkd .netdev/.network unit directory
	SystemdDir string // systemd service unit directory
	KernelPath string // guest kernel image shared by every VM
}

// Default returns the standard /var/lib and /run locations.
func Default() Paths {
	return Paths{
		StorePath:  DefaultStorePath,
		NetworkDir: hostunit.NetworkdDir,
		SystemdDir: hostunit.SystemdDir,
		KernelPath: DefaultKernelPath,
	}
}

// RunDir returns a VM's runtime directory, the same path systemd creates
// via RuntimeDirectory=tinyvmi-<name> in its generated service unit.
func RunDir(name string) string {
	return fmt.Sprintf("/run/tinyvmi-%s", name)
}

// SocketPath returns the Unix socket a VM's hypervisor process listens on.
func SocketPath(name string) string {
	return filepath.Join(RunDir(name), "api.sock")
}

// SerialPath returns the file a VM's serial console is redirected to.
func SerialPath(name string) string {
	return filepath.Join(RunDir(name), "serial")
}

// ConsolePath returns the file a VM's console is redirected to.
func ConsolePath(name string) string {
	return filepath.Join(RunDir(name), "console")
}
