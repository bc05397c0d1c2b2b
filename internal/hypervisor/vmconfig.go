package hypervisor

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// VMConfig is the JSON payload PUT to /api/v1/vm.create, matching
// cloud-hypervisor's vm_config shape closely enough for this control
// plane's needs: CPUs, memory in bytes, a kernel payload, disks, and a
// single tap-backed NIC, with serial/console both redirected to files.
type VMConfig struct {
	CPUs    CPUsConfig    `json:"cpus"`
	Memory  MemoryConfig  `json:"memory"`
	Payload PayloadConfig `json:"payload"`
	Disks   []DiskConfig  `json:"disks"`
	Net     []NetConfig   `json:"net"`
	Serial  ConsoleConfig `json:"serial"`
	Console ConsoleConfig `json:"console"`
}

// CPUsConfig sets the VM's fixed CPU topology — boot and max vcpus are
// always equal since this control plane has no hot-add.
type CPUsConfig struct {
	BootVCPUs int `json:"boot_vcpus"`
	MaxVCPUs  int `json:"max_vcpus"`
}

// MemoryConfig carries the VM's memory size in bytes.
type MemoryConfig struct {
	Size int64 `json:"size"`
}

// PayloadConfig points at the kernel image the hypervisor boots.
type PayloadConfig struct {
	Kernel string `json:"kernel"`
}

// DiskConfig is one attached disk: its host path and a content-derived id.
type DiskConfig struct {
	Path string `json:"path"`
	ID   string `json:"id"`
}

// NetConfig is the VM's single NIC: a tap device name and its MAC.
type NetConfig struct {
	Tap string `json:"tap"`
	MAC string `json:"mac"`
}

// ConsoleOutputModeFile is the only console/serial mode this control plane
// uses: both streams are redirected to files under the VM's runtime
// directory.
const ConsoleOutputModeFile = "File"

// ConsoleConfig redirects a console stream (serial or console) to a file.
type ConsoleConfig struct {
	File string `json:"file"`
	Mode string `json:"mode"`
}

// ParseMemory converts a spec.md memory string ("512M", "2G") to bytes,
// as decimal (not binary) megabytes/gigabytes: "2G" is 2,000,000,000
// bytes.
func ParseMemory(s string) (int64, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid memory value %q", s)
	}
	unit := s[len(s)-1]
	n, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid memory value %q: %w", s, err)
	}
	switch unit {
	case 'M':
		return n * 1_000_000, nil
	case 'G':
		return n * 1_000_000_000, nil
	default:
		return 0, fmt.Errorf("invalid memory unit in %q: want M or G", s)
	}
}

// DiskID derives a disk's id as the uppercase hex SHA-256 of its path,
// matching spec.md's "id = SHA256(path).hex_upper".
func DiskID(path string) string {
	sum := sha256.Sum256([]byte(path))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// MinMemoryBytes is the 1 GiB floor bootstrap enforces before calling
// vm.create, matching spec.md's NotEnoughRam edge case.
const MinMemoryBytes = 1 << 30

// ErrNotEnoughRAM is returned by CheckMemoryFloor when a VM's memory is
// below MinMemoryBytes.
var ErrNotEnoughRAM = errors.New("hypervisor: VM memory below the 1 GiB floor")

// CheckMemoryFloor rejects a memory size below MinMemoryBytes.
func CheckMemoryFloor(bytes int64) error {
	if bytes < MinMemoryBytes {
		return ErrNotEnoughRAM
	}
	return nil
}
