package v1alpha1

import (
	"crypto/rand"
	"fmt"

	"github.com/jbweber/tinyvmm/internal/validate"
)

// VirtualMachineKind is the literal kind name for a VirtualMachine entity.
const VirtualMachineKind = "VirtualMachine"

// VirtualMachine schema versions. v1alpha1 and v1alpha2 exist only as
// stored-data inputs for migration; v1alpha3 is the current, terminal
// version.
const (
	VirtualMachineV1alpha1 = "v1alpha1"
	VirtualMachineV1alpha2 = "v1alpha2"
	VirtualMachineV1alpha3 = "v1alpha3"

	// VirtualMachineAPIVersion is the current version new entities are
	// created at.
	VirtualMachineAPIVersion = VirtualMachineV1alpha3

	// LegacyDefaultBridge is the bridge name the v1alpha1→v1alpha2
	// migration assigns to pre-bridge entities.
	LegacyDefaultBridge = "tvbr0"
)

// VirtualMachineSpec is the current (v1alpha3) shape of a VM's desired
// state.
type VirtualMachineSpec struct {
	CPUs   int      `json:"cpus" yaml:"cpus"`
	Memory string   `json:"memory" yaml:"memory"`
	Disks  []string `json:"disks" yaml:"disks"`
	IP     string   `json:"ip" yaml:"ip"`
	MAC    string   `json:"mac" yaml:"mac"`
	Bridge string   `json:"bridge" yaml:"bridge"`
}

// VirtualMachine is the full envelope persisted for a VirtualMachine
// entity, always at the current schema version once loaded through the
// migration chain.
type VirtualMachine struct {
	TypeMeta   `json:",inline" yaml:",inline"`
	ObjectMeta ObjectMeta         `json:"metadata" yaml:"metadata"`
	Spec       VirtualMachineSpec `json:"spec" yaml:"spec"`
}

// Validate checks vm's metadata and spec against the kind's field schema.
func (vm *VirtualMachine) Validate() error {
	if !ValidName(vm.ObjectMeta.Name) {
		return fmt.Errorf("metadata.name %q does not match the name pattern", vm.ObjectMeta.Name)
	}
	if vm.Spec.CPUs < 1 {
		return fmt.Errorf("spec.cpus must be >= 1, got %d", vm.Spec.CPUs)
	}
	if !validate.Memory(vm.Spec.Memory) {
		return fmt.Errorf("spec.memory %q does not match the memory pattern", vm.Spec.Memory)
	}
	if len(vm.Spec.Disks) == 0 {
		return fmt.Errorf("spec.disks must not be empty")
	}
	if err := validate.DiskPaths(vm.Spec.Disks); err != nil {
		return err
	}
	if !validate.IPv4(vm.Spec.IP) {
		return fmt.Errorf("spec.ip %q is not an IPv4 address", vm.Spec.IP)
	}
	if !validate.MAC(vm.Spec.MAC) {
		return fmt.Errorf("spec.mac %q is not a lowercase colon-separated MAC", vm.Spec.MAC)
	}
	return nil
}

// DeepCopy returns a deep copy of vm.
func (vm *VirtualMachine) DeepCopy() *VirtualMachine {
	if vm == nil {
		return nil
	}
	cp := *vm
	cp.TypeMeta = vm.TypeMeta.DeepCopy()
	cp.ObjectMeta = vm.ObjectMeta.DeepCopy()
	cp.Spec.Disks = append([]string(nil), vm.Spec.Disks...)
	return &cp
}

// DefaultMAC generates a VM MAC address in the "66:" locally-administered
// range, with the last five bytes random, matching spec.md's default-MAC
// rule for VMs created without one.
func DefaultMAC() (string, error) {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generating default MAC: %w", err)
	}
	return fmt.Sprintf("66:%02x:%02x:%02x:%02x:%02x", b[0], b[1], b[2], b[3], b[4]), nil
}

// VirtualMachineMigrator implements entity.Migrator for the VirtualMachine
// kind: v1alpha1 gains a default bridge, v1alpha2's scalar disk becomes a
// one-element disks sequence, and v1alpha3 is terminal (no step, ok=false),
// matching original_source's FailedMigration/NoMigrationAvailable split.
func VirtualMachineMigrator(version string) (func(map[string]any) (map[string]any, error), bool) {
	switch version {
	case VirtualMachineV1alpha1:
		return func(obj map[string]any) (map[string]any, error) {
			spec, _ := obj["spec"].(map[string]any)
			if spec == nil {
				spec = map[string]any{}
			}
			spec["bridge"] = LegacyDefaultBridge
			obj["spec"] = spec
			obj["apiVersion"] = VirtualMachineV1alpha2
			return obj, nil
		}, true
	case VirtualMachineV1alpha2:
		return func(obj map[string]any) (map[string]any, error) {
			spec, _ := obj["spec"].(map[string]any)
			if spec == nil {
				spec = map[string]any{}
			}
			if disk, ok := spec["disk"].(string); ok {
				spec["disks"] = []any{disk}
				delete(spec, "disk")
			}
			obj["spec"] = spec
			obj["apiVersion"] = VirtualMachineV1alpha3
			return obj, nil
		}, true
	default:
		return nil, false
	}
}
