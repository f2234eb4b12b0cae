package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brycenichols/ocaml.org/opam"
)

var showCmd = &cobra.Command{
	Use:   "show <name>[.<version>]",
	Short: "Show one package",
	Long:  "Print the full metadata of one package version, latest when no version is given.",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	name, rawVersion, _ := strings.Cut(args[0], ".")

	reg := newRegistry()
	if err := reg.Sync(context.Background()); err != nil {
		return err
	}

	var version opam.Version
	if rawVersion == "" {
		pkg, err := reg.LatestOf(name)
		if err != nil {
			return err
		}
		version = pkg.Version
	} else {
		var err error
		version, err = opam.ParseVersion(rawVersion)
		if err != nil {
			return err
		}
	}

	meta, err := reg.GetMetadata(name, version)
	if err != nil {
		return err
	}

	fmt.Printf("%s.%s\n", name, version)
	fmt.Printf("  synopsis: %s\n", meta.Synopsis)
	if meta.License != "" {
		fmt.Printf("  license:  %s\n", meta.License)
	}
	if len(meta.Homepage) > 0 {
		fmt.Printf("  homepage: %s\n", strings.Join(meta.Homepage, ", "))
	}
	if len(meta.Tags) > 0 {
		fmt.Printf("  tags:     %s\n", strings.Join(meta.Tags, ", "))
	}
	for _, u := range meta.Maintainers {
		fmt.Printf("  maintainer: %s\n", formatUser(u.Name, u.Email))
	}
	if len(meta.Dependencies) > 0 {
		fmt.Println("  depends:")
		for _, dep := range meta.Dependencies {
			if dep.Constraint != "" {
				fmt.Printf("    %s %s\n", dep.Name, dep.Constraint)
			} else {
				fmt.Printf("    %s\n", dep.Name)
			}
		}
	}
	return nil
}

func formatUser(name, email string) string {
	if email != "" && email != name {
		return fmt.Sprintf("%s <%s>", name, email)
	}
	return name
}
