package output

import (
	"strings"
	"testing"

	"github.com/jbweber/tinyvmm/api/v1alpha1"
)

func testBridge(name string) *v1alpha1.Bridge {
	return &v1alpha1.Bridge{
		ObjectMeta: v1alpha1.ObjectMeta{Name: name},
		Spec:       v1alpha1.BridgeSpec{Address: "10.0.0.1/24", DNSZone: "vm.local", DNSServer: "10.0.0.1"},
	}
}

func testVM(name, ip string) *v1alpha1.VirtualMachine {
	return &v1alpha1.VirtualMachine{
		ObjectMeta: v1alpha1.ObjectMeta{Name: name},
		Spec: v1alpha1.VirtualMachineSpec{
			CPUs:   2,
			Memory: "2G",
			Disks:  []string{"/var/lib/tinyvmm/disk.img"},
			IP:     ip,
			MAC:    "66:00:00:00:00:01",
			Bridge: "tvbr0",
		},
	}
}

func TestTableFormatterFormatBridges(t *testing.T) {
	f := &TableFormatter{}
	out, err := f.FormatBridges([]*v1alpha1.Bridge{testBridge("tvbr0")})
	if err != nil {
		t.Fatalf("FormatBridges() error = %v", err)
	}
	for _, want := range []string{"NAME", "ADDRESS", "tvbr0", "10.0.0.1/24", "vm.local"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestTableFormatterFormatBridgesEmpty(t *testing.T) {
	f := &TableFormatter{}
	out, err := f.FormatBridges(nil)
	if err != nil {
		t.Fatalf("FormatBridges() error = %v", err)
	}
	if !strings.Contains(out, "No bridges found") {
		t.Errorf("expected 'No bridges found', got: %s", out)
	}
}

func TestTableFormatterFormatVirtualMachines(t *testing.T) {
	tests := []struct {
		name      string
		vms       []*v1alpha1.VirtualMachine
		noHeaders bool
		wantLines int
	}{
		{name: "single", vms: []*v1alpha1.VirtualMachine{testVM("alpha", "10.0.0.10")}, wantLines: 2},
		{name: "multiple", vms: []*v1alpha1.VirtualMachine{testVM("alpha", "10.0.0.10"), testVM("beta", "10.0.0.11")}, wantLines: 3},
		{name: "no headers", vms: []*v1alpha1.VirtualMachine{testVM("alpha", "10.0.0.10")}, noHeaders: true, wantLines: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &TableFormatter{NoHeaders: tt.noHeaders}
			out, err := f.FormatVirtualMachines(tt.vms)
			if err != nil {
				t.Fatalf("FormatVirtualMachines() error = %v", err)
			}
			lines := strings.Split(strings.TrimSpace(out), "\n")
			if len(lines) != tt.wantLines {
				t.Errorf("expected %d lines, got %d: %s", tt.wantLines, len(lines), out)
			}
			for _, vm := range tt.vms {
				if !strings.Contains(out, vm.ObjectMeta.Name) {
					t.Errorf("output missing VM name %q", vm.ObjectMeta.Name)
				}
			}
		})
	}
}

func TestYAMLFormatterFormatVirtualMachines(t *testing.T) {
	f := &YAMLFormatter{}

	out, err := f.FormatVirtualMachines(nil)
	if err != nil {
		t.Fatalf("FormatVirtualMachines() error = %v", err)
	}
	if out != "" {
		t.Errorf("expected empty output for empty list, got: %s", out)
	}

	vms := []*v1alpha1.VirtualMachine{testVM("alpha", "10.0.0.10"), testVM("beta", "10.0.0.11")}
	out, err = f.FormatVirtualMachines(vms)
	if err != nil {
		t.Fatalf("FormatVirtualMachines() error = %v", err)
	}
	if !strings.Contains(out, "---") {
		t.Errorf("expected document separator between VMs")
	}
	for _, field := range []string{"apiVersion:", "kind:", "name: alpha", "cpus: 2", "bridge: tvbr0"} {
		if !strings.Contains(out, field) {
			t.Errorf("output missing field %q: %s", field, out)
		}
	}
}

func TestJSONFormatterFormatBridges(t *testing.T) {
	f := &JSONFormatter{}

	out, err := f.FormatBridges(nil)
	if err != nil {
		t.Fatalf("FormatBridges() error = %v", err)
	}
	if out != "[]\n" {
		t.Errorf("expected [] for empty list, got: %q", out)
	}

	out, err = f.FormatBridges([]*v1alpha1.Bridge{testBridge("tvbr0")})
	if err != nil {
		t.Fatalf("FormatBridges() error = %v", err)
	}
	for _, field := range []string{`"kind"`, `"name": "tvbr0"`, `"address": "10.0.0.1/24"`} {
		if !strings.Contains(out, field) {
			t.Errorf("output missing field %q: %s", field, out)
		}
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "table format", opts: Options{Format: FormatTable}},
		{name: "yaml format", opts: Options{Format: FormatYAML}},
		{name: "json format", opts: Options{Format: FormatJSON}},
		{name: "invalid format", opts: Options{Format: "invalid"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter, err := NewFormatter(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewFormatter() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && formatter == nil {
				t.Error("NewFormatter() returned nil formatter")
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{name: "valid table", format: "table"},
		{name: "valid yaml", format: "yaml"},
		{name: "valid json", format: "json"},
		{name: "invalid format", format: "xml", wantErr: true},
		{name: "empty format", format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFormat(tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
