package output

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/tinyvmm/api/v1alpha1"
)

// YAMLFormatter formats resources as YAML.
type YAMLFormatter struct{}

// FormatBridges formats Bridge resources as a YAML document stream.
func (f *YAMLFormatter) FormatBridges(bridges []*v1alpha1.Bridge) (string, error) {
	if len(bridges) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	for i, b := range bridges {
		ensureBridgeType(b)

		data, err := yaml.Marshal(b)
		if err != nil {
			return "", fmt.Errorf("failed to marshal bridge %s to YAML: %w", b.ObjectMeta.Name, err)
		}
		if i > 0 {
			buf.WriteString("---\n")
		}
		buf.Write(data)
	}
	return buf.String(), nil
}

// FormatVirtualMachines formats VirtualMachine resources as a YAML
// document stream.
func (f *YAMLFormatter) FormatVirtualMachines(vms []*v1alpha1.VirtualMachine) (string, error) {
	if len(vms) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	for i, vm := range vms {
		ensureVirtualMachineType(vm)

		data, err := yaml.Marshal(vm)
		if err != nil {
			return "", fmt.Errorf("failed to marshal VM %s to YAML: %w", vm.ObjectMeta.Name, err)
		}
		if i > 0 {
			buf.WriteString("---\n")
		}
		buf.Write(data)
	}
	return buf.String(), nil
}
