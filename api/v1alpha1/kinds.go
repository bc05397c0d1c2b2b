package v1alpha1

import "github.com/jbweber/tinyvmm/internal/entity"

// BridgeMigrator always reports no migration available: Bridge has only
// ever had one schema version.
func BridgeMigrator(version string) (func(map[string]any) (map[string]any, error), bool) {
	return nil, false
}

// NewBridgeKind builds the entity.Kind descriptor for Bridge.
func NewBridgeKind() entity.Kind[Bridge] {
	return entity.Kind[Bridge]{
		Name:       BridgeKind,
		APIVersion: BridgeAPIVersion,
		Migrator:   BridgeMigrator,
		Validate:   func(b *Bridge) error { return b.Validate() },
		NameOf:     func(b *Bridge) string { return b.ObjectMeta.Name },
	}
}

// NewVirtualMachineKind builds the entity.Kind descriptor for
// VirtualMachine.
func NewVirtualMachineKind() entity.Kind[VirtualMachine] {
	return entity.Kind[VirtualMachine]{
		Name:       VirtualMachineKind,
		APIVersion: VirtualMachineAPIVersion,
		Migrator:   VirtualMachineMigrator,
		Validate:   func(vm *VirtualMachine) error { return vm.Validate() },
		NameOf:     func(vm *VirtualMachine) string { return vm.ObjectMeta.Name },
	}
}
