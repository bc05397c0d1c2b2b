package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbweber/tinyvmm/internal/config"
	"github.com/jbweber/tinyvmm/internal/hostunit"
	"github.com/jbweber/tinyvmm/internal/hypervisor"
	"github.com/jbweber/tinyvmm/internal/naming"
	"github.com/jbweber/tinyvmm/internal/unitrender"
)

var systemdCmd = &cobra.Command{
	Use:   "systemd",
	Short: "Subcommands invoked by systemd ExecStart/ExecStartPost/ExecStop lines",
}

func init() {
	systemdCmd.AddCommand(bootstrapPreCmd)
	systemdCmd.AddCommand(bootstrapPostCmd)
	systemdCmd.AddCommand(teardownCmd)
}

var bootstrapPreCmd = &cobra.Command{
	Use:   "bootstrap-pre <name>",
	Short: "Create a VM's tap device and attach it to its bridge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return bootstrapPre(args[0])
	},
}

var bootstrapPostCmd = &cobra.Command{
	Use:   "bootstrap-post <name>",
	Short: "Call vm.create over the VM's per-VM hypervisor socket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()
		return bootstrapPost(ctx, args[0])
	},
}

var teardownCmd = &cobra.Command{
	Use:   "teardown <name>",
	Short: "Remove a VM's tap device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return teardown(args[0])
	},
}

// bootstrapPre renders and writes the tap's .netdev/.network units,
// attaching it to the VM's bridge with the tap-derived MAC, then reloads
// networkd so the kernel link appears before cloud-hypervisor starts.
func bootstrapPre(name string) error {
	regs, err := openRegistries()
	if err != nil {
		return err
	}
	defer regs.Close()

	vm, err := regs.vms.Get(name)
	if err != nil {
		return fmt.Errorf("loading VM %q: %w", name, err)
	}

	tapName := naming.TapName(name)
	tapMAC := unitrender.VMMacToTapMac(vm.Spec.MAC)

	netdevBody, err := unitrender.TapNetdev(tapName)
	if err != nil {
		return err
	}
	networkBody, err := unitrender.TapNetwork(tapName, vm.Spec.Bridge, tapMAC)
	if err != nil {
		return err
	}

	if err := hostunit.WriteUnit(paths.NetworkDir+"/"+tapName+".netdev", netdevBody); err != nil {
		return err
	}
	if err := hostunit.WriteUnit(paths.NetworkDir+"/"+tapName+".network", networkBody); err != nil {
		return err
	}

	nd, err := hostunit.DialNetworkd()
	if err != nil {
		return fmt.Errorf("dialing networkd: %w", err)
	}
	defer nd.Close()

	return nd.Reload()
}

// bootstrapPost assembles the VM's cloud-hypervisor vm.create payload and
// sends it over the per-VM socket, rejecting VMs below the 1 GiB memory
// floor before ever dialing the hypervisor.
func bootstrapPost(ctx context.Context, name string) error {
	regs, err := openRegistries()
	if err != nil {
		return err
	}
	defer regs.Close()

	vm, err := regs.vms.Get(name)
	if err != nil {
		return fmt.Errorf("loading VM %q: %w", name, err)
	}

	memBytes, err := hypervisor.ParseMemory(vm.Spec.Memory)
	if err != nil {
		return fmt.Errorf("parsing memory for VM %q: %w", name, err)
	}
	if err := hypervisor.CheckMemoryFloor(memBytes); err != nil {
		return fmt.Errorf("VM %q: %w", name, err)
	}

	disks := make([]hypervisor.DiskConfig, len(vm.Spec.Disks))
	for i, path := range vm.Spec.Disks {
		disks[i] = hypervisor.DiskConfig{Path: path, ID: hypervisor.DiskID(path)}
	}

	tapName := naming.TapName(name)
	cfg := &hypervisor.VMConfig{
		CPUs:   hypervisor.CPUsConfig{BootVCPUs: vm.Spec.CPUs, MaxVCPUs: vm.Spec.CPUs},
		Memory: hypervisor.MemoryConfig{Size: memBytes},
		Payload: hypervisor.PayloadConfig{
			Kernel: paths.KernelPath,
		},
		Disks: disks,
		Net:   []hypervisor.NetConfig{{Tap: tapName, MAC: vm.Spec.MAC}},
		Serial: hypervisor.ConsoleConfig{
			File: config.SerialPath(name),
			Mode: hypervisor.ConsoleOutputModeFile,
		},
		Console: hypervisor.ConsoleConfig{
			File: config.ConsolePath(name),
			Mode: hypervisor.ConsoleOutputModeFile,
		},
	}

	client := hypervisor.New(config.SocketPath(name))
	if err := client.Create(ctx, cfg); err != nil {
		return fmt.Errorf("creating VM %q: %w", name, err)
	}
	return nil
}

// teardown removes the VM's tap device, tolerating an already-gone link
// per spec.md's error taxonomy.
func teardown(name string) error {
	nd, err := hostunit.DialNetworkd()
	if err != nil {
		return fmt.Errorf("dialing networkd: %w", err)
	}
	defer nd.Close()

	tapName := naming.TapName(name)
	if err := hostunit.RemoveNetdev(nd, tapName); err != nil {
		if errors.Is(err, hostunit.ErrLinkNotFound) {
			return nil
		}
		return fmt.Errorf("removing tap for VM %q: %w", name, err)
	}
	return nil
}
