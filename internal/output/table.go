package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/jbweber/tinyvmm/api/v1alpha1"
)

// TableFormatter formats resources as human-readable tables.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool
}

// FormatBridges formats Bridge resources as a table.
func (f *TableFormatter) FormatBridges(bridges []*v1alpha1.Bridge) (string, error) {
	if len(bridges) == 0 {
		return "No bridges found\n", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "NAME\tADDRESS\tDNS_ZONE\tDNS_SERVER")
	}
	for _, b := range bridges {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			b.ObjectMeta.Name, b.Spec.Address, b.Spec.DNSZone, b.Spec.DNSServer)
	}

	_ = w.Flush()
	return buf.String(), nil
}

// FormatVirtualMachines formats VirtualMachine resources as a table.
func (f *TableFormatter) FormatVirtualMachines(vms []*v1alpha1.VirtualMachine) (string, error) {
	if len(vms) == 0 {
		return "No VMs found\n", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "NAME\tCPUS\tMEMORY\tIP\tMAC\tBRIDGE")
	}
	for _, vm := range vms {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
			vm.ObjectMeta.Name, vm.Spec.CPUs, vm.Spec.Memory, vm.Spec.IP, vm.Spec.MAC, vm.Spec.Bridge)
	}

	_ = w.Flush()
	return buf.String(), nil
}
