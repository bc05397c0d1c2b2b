package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbweber/tinyvmm/internal/config"
	"github.com/jbweber/tinyvmm/internal/hypervisor"
)

var startCmd = &cobra.Command{
	Use:   "start <name>",
	Short: "Boot a VM whose hypervisor process is already running",
	Long: `Issues vm.boot over the VM's per-VM hypervisor socket. This is the
command systemd's ExecStartPost runs right after vm.create succeeds.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()
		return bootVM(ctx, args[0])
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop <name>",
	Short: "Power off a running VM",
	Long: `Issues vm.power-button over the VM's per-VM hypervisor socket, then
waits for the hypervisor process to exit (its socket to disappear). This
is the command systemd's ExecStop runs when the unit is stopped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()
		return powerOffVM(ctx, args[0])
	},
}

func bootVM(ctx context.Context, name string) error {
	client := hypervisor.New(config.SocketPath(name))
	if err := client.Boot(ctx); err != nil {
		return fmt.Errorf("booting VM %q: %w", name, err)
	}
	return nil
}

func powerOffVM(ctx context.Context, name string) error {
	client := hypervisor.New(config.SocketPath(name))
	if err := client.PowerButton(ctx); err != nil {
		return fmt.Errorf("powering off VM %q: %w", name, err)
	}
	return nil
}
