// Package unitrender renders the INI-style unit bodies the reconciler
// writes under /run/systemd/network and /run/systemd/system: bridge and
// tap netdev/network files, and the VM service pair.
//
// Grounded on original_source/.../systemd/{networkd/bridge,networkd/tap,
// service}.rs, which render the same bodies with handlebars; text/template
// is the idiomatic Go stand-in (see DESIGN.md — no ecosystem INI-templating
// library appears anywhere in the retrieved pack).
package unitrender

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

var (
	bridgeNetdevTmpl  = template.Must(template.New("bridge-netdev").Parse(bridgeNetdevText))
	bridgeNetworkTmpl = template.Must(template.New("bridge-network").Parse(bridgeNetworkText))
	tapNetdevTmpl     = template.Must(template.New("tap-netdev").Parse(tapNetdevText))
	tapNetworkTmpl    = template.Must(template.New("tap-network").Parse(tapNetworkText))
	vmServiceTmpl     = template.Must(template.New("vm-service").Parse(vmServiceText))
	tapServiceTmpl    = template.Must(template.New("tap-service").Parse(tapServiceText))
)

const bridgeNetdevText = `[NetDev]
Name={{.Name}}
Kind=bridge
`

const bridgeNetworkText = `[Match]
Name={{.Name}}

[Network]
Address={{.Address}}
DNS={{.DNSServer}}
Domains=~{{.DNSZone}}
ConfigureWithoutCarrier=yes
IgnoreCarrierLoss=yes
DHCPServer=yes

[DHCPServer]
EmitDNS=yes
DNS=100.100.100.100
EmitRouter=yes
Router={{.Router}}
{{range .Leases}}
[DHCPServerStaticLease]
MACAddress={{.MAC}}
Address={{.IP}}
{{end}}`

const tapNetdevText = `[NetDev]
Name={{.Name}}
Kind=tap
`

const tapNetworkText = `[Match]
Name={{.Name}}

[Network]
Bridge={{.Bridge}}

[Link]
MACAddress={{.MAC}}
`

const vmServiceText = `[Unit]
Requires=sys-subsystem-net-devices-{{.BridgeName}}.device
Requires={{.TapUnit}}.service
After=sys-subsystem-net-devices-{{.BridgeName}}.device
After={{.TapUnit}}.service

[Service]
Type=simple
ExecStart=/run/wrappers/bin/cloud-hypervisor --api-socket=${RUNTIME_DIRECTORY}/api.sock -v

ExecStartPost={{.SelfExe}} systemd bootstrap-post {{.Name}}
ExecStartPost={{.SelfExe}} start {{.Name}}

ExecStop={{.SelfExe}} stop {{.Name}}

RuntimeDirectory=tinyvmi-{{.Name}}
`

const tapServiceText = `[Unit]
PartOf={{.VMUnit}}.service

[Service]
Type=oneshot
RemainAfterExit=yes
ExecStart={{.SelfExe}} systemd bootstrap-pre {{.Name}}
ExecStop={{.SelfExe}} systemd teardown {{.Name}}
`

// Lease is one DHCPServerStaticLease stanza in a bridge's .network file.
type Lease struct {
	MAC string
	IP  string
}

// BridgeNetdev renders the .netdev body for a bridge interface.
func BridgeNetdev(name string) (string, error) {
	return render(bridgeNetdevTmpl, struct{ Name string }{name})
}

// BridgeNetwork renders the .network body for a bridge, including one
// DHCPServerStaticLease stanza per lease.
func BridgeNetwork(name, address, dnsServer, dnsZone, router string, leases []Lease) (string, error) {
	return render(bridgeNetworkTmpl, struct {
		Name      string
		Address   string
		DNSServer string
		DNSZone   string
		Router    string
		Leases    []Lease
	}{name, address, dnsServer, dnsZone, router, leases})
}

// TapNetdev renders the .netdev body for a VM's tap interface.
func TapNetdev(name string) (string, error) {
	return render(tapNetdevTmpl, struct{ Name string }{name})
}

// TapNetwork renders the .network body attaching a tap interface to its
// bridge with its derived MAC.
func TapNetwork(name, bridge, mac string) (string, error) {
	return render(tapNetworkTmpl, struct{ Name, Bridge, MAC string }{name, bridge, mac})
}

// VMService renders the systemd service unit that launches the VM's
// hypervisor process.
func VMService(name, bridgeName, tapUnit, selfExe string) (string, error) {
	return render(vmServiceTmpl, struct{ Name, BridgeName, TapUnit, SelfExe string }{name, bridgeName, tapUnit, selfExe})
}

// TapService renders the oneshot unit that brings the tap device up before
// the VM service starts and tears it down after.
func TapService(name, vmUnit, selfExe string) (string, error) {
	return render(tapServiceTmpl, struct{ Name, VMUnit, SelfExe string }{name, vmUnit, selfExe})
}

// VMUnitName returns the systemd unit name (without the .service suffix)
// for a VM's hypervisor service.
func VMUnitName(name string) string { return fmt.Sprintf("tinyvmi-%s", name) }

// TapUnitName returns the systemd unit name (without the .service suffix)
// for a VM's tap bring-up/teardown service.
func TapUnitName(name string) string { return fmt.Sprintf("tinyvmi-tap-%s", name) }

// VMMacToTapMac applies the stable-suffix swap from spec.md's Open
// Question (c): the tap gets a "76:" prefix over the VM MAC's last five
// bytes. Callers that choose not to apply the transform use the VM MAC
// directly instead.
func VMMacToTapMac(vmMAC string) string {
	idx := strings.IndexByte(vmMAC, ':')
	if idx < 0 || idx+1 > len(vmMAC) {
		return vmMAC
	}
	return "76:" + vmMAC[idx+1:]
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
