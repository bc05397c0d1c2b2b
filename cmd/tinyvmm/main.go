// Command tinyvmm is the single binary that plays every role in the
// control plane: it serves the REST API, runs the reconciler, answers DNS
// queries, drives the per-VM hypervisor socket, and — invoked by systemd
// itself — bootstraps and tears down one VM's host artifacts.
//
// Grounded on the teacher's cmd/foundry/main.go nested cobra command tree.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jbweber/tinyvmm/api/v1alpha1"
	"github.com/jbweber/tinyvmm/internal/config"
	"github.com/jbweber/tinyvmm/internal/entity"
	"github.com/jbweber/tinyvmm/internal/store"
)

var (
	version = "dev"
	commit  = "unknown"
)

// paths is the process-wide set of filesystem locations, defaulted by
// config.Default and overridable per-invocation by persistent flags.
var paths config.Paths

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tinyvmm",
	Short: "tinyvmm - single-host cloud-hypervisor control plane",
	Long: `tinyvmm runs cloud-hypervisor VMs on a single host: a versioned entity
store, a REST API over a Unix socket, a level-triggered reconciler that
renders systemd/networkd units, and an authoritative DNS zone for VM names.`,
	Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	paths = config.Default()
	rootCmd.PersistentFlags().StringVar(&paths.StorePath, "store-path", paths.StorePath, "entity store database path")
	rootCmd.PersistentFlags().StringVar(&paths.NetworkDir, "network-dir", paths.NetworkDir, "networkd unit directory")
	rootCmd.PersistentFlags().StringVar(&paths.SystemdDir, "systemd-dir", paths.SystemdDir, "systemd unit directory")
	rootCmd.PersistentFlags().StringVar(&paths.KernelPath, "kernel-path", paths.KernelPath, "guest kernel image path")

	rootCmd.AddCommand(apiServerCmd)
	rootCmd.AddCommand(unitServerCmd)
	rootCmd.AddCommand(dnsServerCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(systemdCmd)
	rootCmd.AddCommand(internalCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(applyCmd)
}

// signalContext returns a context canceled on SIGINT/SIGTERM, the shared
// shutdown signal for every long-running subcommand.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// registries is the open store plus both entity registries that nearly
// every subcommand needs; closing it releases the underlying database.
type registries struct {
	store   *store.Store
	bridges *entity.Registry[v1alpha1.Bridge]
	vms     *entity.Registry[v1alpha1.VirtualMachine]
}

func (r *registries) Close() error {
	return r.store.Close()
}

func openRegistries() (*registries, error) {
	s, err := store.Open(paths.StorePath)
	if err != nil {
		return nil, err
	}
	return &registries{
		store:   s,
		bridges: entity.NewRegistry(s, v1alpha1.NewBridgeKind()),
		vms:     entity.NewRegistry(s, v1alpha1.NewVirtualMachineKind()),
	}, nil
}
