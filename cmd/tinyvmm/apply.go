package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbweber/tinyvmm/api/v1alpha1"
	"github.com/jbweber/tinyvmm/internal/loader"
)

var applyFile string

var applyCmd = &cobra.Command{
	Use:   "apply -f <file>",
	Short: "Create a Bridge or VirtualMachine from a YAML file",
	Long: `Reads a single YAML document, dispatches on its "kind" field, and
creates the resulting entity in the store. Like the REST API's POST,
apply only creates: applying a name that already exists fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if applyFile == "" {
			return fmt.Errorf("-f/--filename is required")
		}
		return applyFrom(applyFile)
	},
}

func init() {
	applyCmd.Flags().StringVarP(&applyFile, "filename", "f", "", "path to a Bridge or VirtualMachine YAML file")
}

func applyFrom(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file %s: %w", path, err)
	}

	kind, err := loader.PeekKind(data)
	if err != nil {
		return err
	}

	regs, err := openRegistries()
	if err != nil {
		return err
	}
	defer regs.Close()

	switch kind {
	case v1alpha1.BridgeKind:
		b, err := loader.LoadBridgeYAML(data)
		if err != nil {
			return err
		}
		if err := regs.bridges.Create(b); err != nil {
			return fmt.Errorf("creating bridge %q: %w", b.ObjectMeta.Name, err)
		}
		fmt.Printf("bridge %q created\n", b.ObjectMeta.Name)
		return nil
	case v1alpha1.VirtualMachineKind:
		vm, err := loader.LoadVirtualMachineYAML(data)
		if err != nil {
			return err
		}
		if err := regs.vms.Create(vm); err != nil {
			return fmt.Errorf("creating VM %q: %w", vm.ObjectMeta.Name, err)
		}
		fmt.Printf("virtualmachine %q created\n", vm.ObjectMeta.Name)
		return nil
	default:
		return fmt.Errorf("unsupported kind: %s", kind)
	}
}
