package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbweber/tinyvmm/internal/apiserver"
	"github.com/jbweber/tinyvmm/internal/dnsserver"
	"github.com/jbweber/tinyvmm/internal/hostunit"
	"github.com/jbweber/tinyvmm/internal/reconciler"
)

var apiServerListen string

var apiServerCmd = &cobra.Command{
	Use:   "api-server",
	Short: "Serve the REST API on a Unix socket",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()
		regs, err := openRegistries()
		if err != nil {
			return err
		}
		defer regs.Close()
		return runAPIServer(ctx, regs, apiServerListen)
	},
}

func init() {
	apiServerCmd.Flags().StringVar(&apiServerListen, "listen", "/run/tinyvmm/api.sock", "unix socket path to listen on")
}

func runAPIServer(ctx context.Context, regs *registries, listen string) error {
	srv := apiserver.New(regs.bridges, regs.vms)
	log.Printf("api-server: listening on %s", listen)
	return srv.ListenAndServe(ctx, listen)
}

var unitServerCmd = &cobra.Command{
	Use:   "unit-server",
	Short: "Run the reconciler, rendering systemd/networkd units from the entity store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()
		regs, err := openRegistries()
		if err != nil {
			return err
		}
		defer regs.Close()
		return runReconciler(ctx, regs)
	},
}

func runReconciler(ctx context.Context, regs *registries) error {
	nd, err := hostunit.DialNetworkd()
	if err != nil {
		return fmt.Errorf("dialing networkd: %w", err)
	}
	defer nd.Close()

	sd, err := hostunit.DialSystemd()
	if err != nil {
		return fmt.Errorf("dialing systemd: %w", err)
	}
	defer sd.Close()

	selfExe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving self executable: %w", err)
	}

	rec := reconciler.New(regs.bridges, regs.vms, nd, sd, selfExe,
		reconciler.WithUnitDirs(paths.NetworkDir, paths.SystemdDir))

	events, cancelWatch := regs.store.Watch("/", 16)
	defer cancelWatch()

	log.Printf("unit-server: watching the entity store")
	return rec.Run(ctx, events)
}

var dnsServerListen string

var dnsServerCmd = &cobra.Command{
	Use:   "dns-server",
	Short: "Serve the authoritative DNS zone for VM names",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()
		regs, err := openRegistries()
		if err != nil {
			return err
		}
		defer regs.Close()
		return runDNSServer(ctx, regs, dnsServerListen)
	},
}

func init() {
	dnsServerCmd.Flags().StringVar(&dnsServerListen, "listen", "127.0.0.1:53", "address:port to listen on for DNS")
}

func runDNSServer(ctx context.Context, regs *registries, listen string) error {
	dns := dnsserver.New()
	events, cancelWatch := regs.store.Watch("/", 16)
	defer cancelWatch()

	reconcileDNS := func() {
		bridges := regs.bridges.ListTolerant(func(name string, err error) {
			log.Printf("dns-server: bridge %q: %v", name, err)
		})
		vms := regs.vms.ListTolerant(func(name string, err error) {
			log.Printf("dns-server: vm %q: %v", name, err)
		})
		dns.Reconcile(bridges, vms)
	}
	reconcileDNS()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				reconcileDNS()
			}
		}
	}()

	log.Printf("dns-server: listening on %s", listen)
	return dns.ListenAndServe(ctx, listen)
}

var (
	serveAPIListen string
	serveDNSListen string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server, reconciler, and DNS server together",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		regs, err := openRegistries()
		if err != nil {
			return err
		}
		defer regs.Close()

		errCh := make(chan error, 3)
		go func() { errCh <- runAPIServer(ctx, regs, serveAPIListen) }()
		go func() { errCh <- runReconciler(ctx, regs) }()
		go func() { errCh <- runDNSServer(ctx, regs, serveDNSListen) }()

		// The first failure stops the whole process; ctx cancellation
		// propagates to the other two goroutines, whose errors are
		// ignored once ctx is done.
		for i := 0; i < 3; i++ {
			if err := <-errCh; err != nil && ctx.Err() == nil {
				cancel()
				return err
			}
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAPIListen, "listen", "/run/tinyvmm/api.sock", "unix socket path for the REST API")
	serveCmd.Flags().StringVar(&serveDNSListen, "listen-dns", "127.0.0.1:53", "address:port for DNS")
}
