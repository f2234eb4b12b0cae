package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [name]",
	Short: "List packages",
	Long:  "List the latest version of every package, or all versions of one package.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	reg := newRegistry()
	if err := reg.Sync(context.Background()); err != nil {
		return err
	}

	if len(args) == 1 {
		versions, err := reg.VersionsOf(args[0])
		if err != nil {
			return err
		}
		for _, v := range versions {
			fmt.Printf("%s.%s\n", args[0], v)
		}
		return nil
	}

	pkgs := reg.AllLatest()
	if len(pkgs) == 0 {
		fmt.Println("(no packages)")
		return nil
	}
	for _, pkg := range pkgs {
		fmt.Printf("%s\t%s\n", pkg.Name, pkg.Version)
	}
	return nil
}
