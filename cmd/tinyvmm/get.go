package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbweber/tinyvmm/api/v1alpha1"
	"github.com/jbweber/tinyvmm/internal/output"
)

var (
	outputFormat string
	noHeaders    bool
)

var getCmd = &cobra.Command{
	Use:   "get <bridges|virtualmachines> [name]",
	Short: "List or get entities straight from the entity store",
	Long: `Reads bridges or virtual machines directly out of the entity store
(honoring --store-path) and renders them with the table/yaml/json
formatter, without going through the REST API.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := output.ValidateFormat(outputFormat); err != nil {
			return err
		}
		formatter, err := output.NewFormatter(output.Options{
			Format:    output.Format(outputFormat),
			NoHeaders: noHeaders,
		})
		if err != nil {
			return err
		}

		regs, err := openRegistries()
		if err != nil {
			return err
		}
		defer regs.Close()

		var name string
		if len(args) == 2 {
			name = args[1]
		}

		var result string
		switch args[0] {
		case "bridge", "bridges":
			result, err = getBridges(regs, formatter, name)
		case "virtualmachine", "virtualmachines", "vm", "vms":
			result, err = getVirtualMachines(regs, formatter, name)
		default:
			return fmt.Errorf("unknown kind %q (want: bridges, virtualmachines)", args[0])
		}
		if err != nil {
			return err
		}

		fmt.Print(result)
		return nil
	},
}

func init() {
	getCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, yaml, json")
	getCmd.Flags().BoolVar(&noHeaders, "no-headers", false, "omit table headers")
}

func getBridges(regs *registries, formatter output.Formatter, name string) (string, error) {
	if name != "" {
		b, err := regs.bridges.Get(name)
		if err != nil {
			return "", fmt.Errorf("getting bridge %q: %w", name, err)
		}
		return formatter.FormatBridges([]*v1alpha1.Bridge{b})
	}

	all, err := regs.bridges.List()
	if err != nil {
		return "", fmt.Errorf("listing bridges: %w", err)
	}
	list := make([]*v1alpha1.Bridge, 0, len(all))
	for _, b := range all {
		list = append(list, b)
	}
	return formatter.FormatBridges(list)
}

func getVirtualMachines(regs *registries, formatter output.Formatter, name string) (string, error) {
	if name != "" {
		vm, err := regs.vms.Get(name)
		if err != nil {
			return "", fmt.Errorf("getting VM %q: %w", name, err)
		}
		return formatter.FormatVirtualMachines([]*v1alpha1.VirtualMachine{vm})
	}

	all, err := regs.vms.List()
	if err != nil {
		return "", fmt.Errorf("listing VMs: %w", err)
	}
	list := make([]*v1alpha1.VirtualMachine, 0, len(all))
	for _, vm := range all {
		list = append(list, vm)
	}
	return formatter.FormatVirtualMachines(list)
}
