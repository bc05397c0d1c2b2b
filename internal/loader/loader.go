// Package loader loads Bridge and VirtualMachine entities from YAML
// files, backing the CLI's "apply -f" convenience command.
package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/tinyvmm/api/v1alpha1"
)

// envelope peeks at an entity document's kind before it is unmarshaled
// into a concrete type, the same two-step "decode enough to dispatch,
// then decode fully" idiom the entity registry uses for apiVersion.
type envelope struct {
	Kind string `yaml:"kind"`
}

// PeekKind returns the "kind" field of a YAML document without fully
// decoding it, so callers can pick which loader to call next.
func PeekKind(data []byte) (string, error) {
	var e envelope
	if err := yaml.Unmarshal(data, &e); err != nil {
		return "", fmt.Errorf("parsing YAML: %w", err)
	}
	if e.Kind == "" {
		return "", fmt.Errorf("missing required field: kind")
	}
	return e.Kind, nil
}

// LoadBridgeFile reads and decodes a Bridge resource from a YAML file.
func LoadBridgeFile(path string) (*v1alpha1.Bridge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return LoadBridgeYAML(data)
}

// LoadBridgeYAML decodes a Bridge resource from YAML bytes, defaulting
// apiVersion when the document omits it and validating the result.
func LoadBridgeYAML(data []byte) (*v1alpha1.Bridge, error) {
	kind, err := PeekKind(data)
	if err != nil {
		return nil, err
	}
	if kind != v1alpha1.BridgeKind {
		return nil, fmt.Errorf("unsupported kind: %s (expected: %s)", kind, v1alpha1.BridgeKind)
	}

	var b v1alpha1.Bridge
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing Bridge YAML: %w", err)
	}
	if b.TypeMeta.APIVersion == "" {
		b.TypeMeta.APIVersion = v1alpha1.BridgeAPIVersion
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &b, nil
}

// LoadVirtualMachineFile reads and decodes a VirtualMachine resource from
// a YAML file.
func LoadVirtualMachineFile(path string) (*v1alpha1.VirtualMachine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return LoadVirtualMachineYAML(data)
}

// LoadVirtualMachineYAML decodes a VirtualMachine resource from YAML
// bytes. apiVersion is defaulted only when entirely absent, and the result
// is validated only when it is at the current version. A document at an
// older version (v1alpha1/v1alpha2) is returned as decoded, neither
// validated nor migrated; fields the current spec lacks (such as the
// scalar disk) are dropped by the decode.
func LoadVirtualMachineYAML(data []byte) (*v1alpha1.VirtualMachine, error) {
	kind, err := PeekKind(data)
	if err != nil {
		return nil, err
	}
	if kind != v1alpha1.VirtualMachineKind {
		return nil, fmt.Errorf("unsupported kind: %s (expected: %s)", kind, v1alpha1.VirtualMachineKind)
	}

	var vm v1alpha1.VirtualMachine
	if err := yaml.Unmarshal(data, &vm); err != nil {
		return nil, fmt.Errorf("parsing VirtualMachine YAML: %w", err)
	}
	if vm.TypeMeta.APIVersion == "" {
		vm.TypeMeta.APIVersion = v1alpha1.VirtualMachineAPIVersion
	}
	if vm.TypeMeta.APIVersion == v1alpha1.VirtualMachineAPIVersion {
		if err := vm.Validate(); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
	}
	return &vm, nil
}
