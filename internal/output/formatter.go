// Package output formats tinyvmm entities (Bridge, VirtualMachine) for
// display, in the teacher's table/YAML/JSON triad.
package output

import (
	"fmt"

	"github.com/jbweber/tinyvmm/api/v1alpha1"
)

// Format represents an output format type.
type Format string

const (
	// FormatTable is a human-readable table format.
	FormatTable Format = "table"
	// FormatYAML is a YAML format for declarative configs.
	FormatYAML Format = "yaml"
	// FormatJSON is a JSON format for machine consumption.
	FormatJSON Format = "json"
)

// Formatter formats tinyvmm entities for output.
type Formatter interface {
	// FormatBridges formats zero or more Bridge resources.
	FormatBridges(bridges []*v1alpha1.Bridge) (string, error)

	// FormatVirtualMachines formats zero or more VirtualMachine resources.
	FormatVirtualMachines(vms []*v1alpha1.VirtualMachine) (string, error)
}

// Options contains options for formatting output.
type Options struct {
	// Format specifies the output format.
	Format Format
	// NoHeaders omits headers in table format.
	NoHeaders bool
}

// NewFormatter creates a new Formatter based on the specified format.
func NewFormatter(opts Options) (Formatter, error) {
	switch opts.Format {
	case FormatTable:
		return &TableFormatter{NoHeaders: opts.NoHeaders}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, yaml, json)", opts.Format)
	}
}

// ValidateFormat checks if a format string is valid.
func ValidateFormat(format string) error {
	f := Format(format)
	switch f {
	case FormatTable, FormatYAML, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid formats: table, yaml, json)", format)
	}
}

// ensureBridgeType fills in TypeMeta on a Bridge decoded without it (e.g.
// straight off the store), the same role the teacher's
// SetDefaultAPIVersion played for its single kind.
func ensureBridgeType(b *v1alpha1.Bridge) {
	if b.TypeMeta.Kind == "" {
		b.TypeMeta.Kind = v1alpha1.BridgeKind
	}
	if b.TypeMeta.APIVersion == "" {
		b.TypeMeta.APIVersion = v1alpha1.BridgeAPIVersion
	}
}

// ensureVirtualMachineType fills in TypeMeta on a VirtualMachine decoded
// without it.
func ensureVirtualMachineType(vm *v1alpha1.VirtualMachine) {
	if vm.TypeMeta.Kind == "" {
		vm.TypeMeta.Kind = v1alpha1.VirtualMachineKind
	}
	if vm.TypeMeta.APIVersion == "" {
		vm.TypeMeta.APIVersion = v1alpha1.VirtualMachineAPIVersion
	}
}
