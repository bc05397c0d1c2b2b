package output

import (
	"encoding/json"
	"fmt"

	"github.com/jbweber/tinyvmm/api/v1alpha1"
)

// JSONFormatter formats resources as JSON.
type JSONFormatter struct{}

// FormatBridges formats Bridge resources as a JSON array.
func (f *JSONFormatter) FormatBridges(bridges []*v1alpha1.Bridge) (string, error) {
	if len(bridges) == 0 {
		return "[]\n", nil
	}
	for _, b := range bridges {
		ensureBridgeType(b)
	}

	data, err := json.MarshalIndent(bridges, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal bridges to JSON: %w", err)
	}
	return string(data) + "\n", nil
}

// FormatVirtualMachines formats VirtualMachine resources as a JSON array.
func (f *JSONFormatter) FormatVirtualMachines(vms []*v1alpha1.VirtualMachine) (string, error) {
	if len(vms) == 0 {
		return "[]\n", nil
	}
	for _, vm := range vms {
		ensureVirtualMachineType(vm)
	}

	data, err := json.MarshalIndent(vms, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal VMs to JSON: %w", err)
	}
	return string(data) + "\n", nil
}
