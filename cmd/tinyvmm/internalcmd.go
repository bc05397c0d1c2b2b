package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/jbweber/tinyvmm/internal/hostunit"
	"github.com/jbweber/tinyvmm/internal/unitrender"
)

// internalCmd groups the low-level host-artifact commands spec.md lists
// under "internal …": direct bridge/tap/networkd management bypassing the
// entity store and reconciler entirely, for manual operator use.
var internalCmd = &cobra.Command{
	Use:   "internal",
	Short: "Manage host network artifacts directly, bypassing the entity store",
}

func init() {
	bridgeCmd := &cobra.Command{Use: "bridge", Short: "Manage host bridges directly"}
	bridgeCmd.AddCommand(bridgeCreateCmd, bridgeDestroyCmd)

	tapCmd := &cobra.Command{Use: "tap", Short: "Manage tap devices directly"}
	tapCmd.AddCommand(tapCreateCmd, tapDestroyCmd)

	networkdCmd := &cobra.Command{Use: "networkd", Short: "Proxy calls to org.freedesktop.network1"}
	networkdCmd.AddCommand(networkdReloadCmd, networkdDescribeCmd)

	internalCmd.AddCommand(bridgeCmd, tapCmd, networkdCmd)
}

var bridgeCreateCmd = &cobra.Command{
	Use:   "create <name> <address> <dns-zone> <dns-server>",
	Short: "Write and load a bridge's netdev/network units",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, address, zone, server := args[0], args[1], args[2], args[3]
		router := address
		if ip, _, err := net.ParseCIDR(address); err == nil {
			router = ip.String()
		}

		netdevBody, err := unitrender.BridgeNetdev(name)
		if err != nil {
			return err
		}
		networkBody, err := unitrender.BridgeNetwork(name, address, server, zone, router, nil)
		if err != nil {
			return err
		}

		if err := hostunit.WriteUnit(paths.NetworkDir+"/"+name+".netdev", netdevBody); err != nil {
			return err
		}
		if err := hostunit.WriteUnit(paths.NetworkDir+"/"+name+".network", networkBody); err != nil {
			return err
		}

		nd, err := hostunit.DialNetworkd()
		if err != nil {
			return fmt.Errorf("dialing networkd: %w", err)
		}
		defer nd.Close()
		return nd.Reload()
	},
}

var bridgeDestroyCmd = &cobra.Command{
	Use:   "destroy <name>",
	Short: "Remove a bridge's netdev/network units and kernel link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return removeLink(args[0])
	},
}

var tapCreateCmd = &cobra.Command{
	Use:   "create <name> <bridge> <mac>",
	Short: "Write and load a tap's netdev/network units",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, bridge, mac := args[0], args[1], args[2]

		netdevBody, err := unitrender.TapNetdev(name)
		if err != nil {
			return err
		}
		networkBody, err := unitrender.TapNetwork(name, bridge, mac)
		if err != nil {
			return err
		}

		if err := hostunit.WriteUnit(paths.NetworkDir+"/"+name+".netdev", netdevBody); err != nil {
			return err
		}
		if err := hostunit.WriteUnit(paths.NetworkDir+"/"+name+".network", networkBody); err != nil {
			return err
		}

		nd, err := hostunit.DialNetworkd()
		if err != nil {
			return fmt.Errorf("dialing networkd: %w", err)
		}
		defer nd.Close()
		return nd.Reload()
	},
}

var tapDestroyCmd = &cobra.Command{
	Use:   "destroy <name>",
	Short: "Remove a tap's netdev/network units and kernel link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return removeLink(args[0])
	},
}

var networkdReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Ask networkd to reload its unit files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		nd, err := hostunit.DialNetworkd()
		if err != nil {
			return fmt.Errorf("dialing networkd: %w", err)
		}
		defer nd.Close()
		return nd.Reload()
	},
}

var networkdDescribeCmd = &cobra.Command{
	Use:   "describe <link>",
	Short: "Print networkd's JSON description of a link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nd, err := hostunit.DialNetworkd()
		if err != nil {
			return fmt.Errorf("dialing networkd: %w", err)
		}
		defer nd.Close()

		description, err := nd.DescribeLink(args[0])
		if err != nil {
			return err
		}
		fmt.Println(description)
		return nil
	},
}

func removeLink(name string) error {
	nd, err := hostunit.DialNetworkd()
	if err != nil {
		return fmt.Errorf("dialing networkd: %w", err)
	}
	defer nd.Close()

	if err := hostunit.RemoveNetdev(nd, name); err != nil {
		return fmt.Errorf("removing %q: %w", name, err)
	}
	return nil
}
