package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <pattern>",
	Short: "Search the package index",
	Long:  "Rank packages against a free-text pattern and print them best first.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	reg := newRegistry()
	if err := reg.Sync(context.Background()); err != nil {
		return err
	}

	results := reg.Search(args[0])
	if len(results) == 0 {
		fmt.Println("(no matches)")
		return nil
	}

	for _, pkg := range results {
		synopsis := ""
		if meta, err := pkg.Meta.Force(); err == nil {
			synopsis = meta.Synopsis
		}
		fmt.Printf("%s.%s\t%s\n", pkg.Name, pkg.Version, synopsis)
	}
	return nil
}
