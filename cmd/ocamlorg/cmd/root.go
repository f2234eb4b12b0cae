package cmd

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/brycenichols/ocaml.org/docs"
	"github.com/brycenichols/ocaml.org/opam"
	"github.com/brycenichols/ocaml.org/registry"
	"github.com/brycenichols/ocaml.org/repo"
	"github.com/brycenichols/ocaml.org/search"
)

var rootCmd = &cobra.Command{
	Use:   "ocamlorg",
	Short: "opam package index",
	Long:  "In-memory index of opam package metadata with ranked search, served over HTTP and MCP.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ~/.config/ocamlorg/config.yaml)")
	rootCmd.PersistentFlags().String("repo-url", "", "opam repository git URL")
	rootCmd.PersistentFlags().String("clone-dir", "", "local clone directory (default: ~/.local/share/ocamlorg/opam-repository)")
	rootCmd.PersistentFlags().Duration("poll-interval", 5*time.Minute, "repository poll interval")
	rootCmd.PersistentFlags().String("docs-url", "", "documentation artifact base URL")

	viper.BindPFlag("repo_url", rootCmd.PersistentFlags().Lookup("repo-url"))
	viper.BindPFlag("clone_dir", rootCmd.PersistentFlags().Lookup("clone-dir"))
	viper.BindPFlag("poll_interval", rootCmd.PersistentFlags().Lookup("poll-interval"))
	viper.BindPFlag("docs_url", rootCmd.PersistentFlags().Lookup("docs-url"))
}

func initConfig() {
	if cfg := rootCmd.PersistentFlags().Lookup("config").Value.String(); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(configDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("OCAMLORG")
	viper.AutomaticEnv()
	viper.SetDefault("repo_url", "https://github.com/ocaml/opam-repository.git")
	viper.SetDefault("clone_dir", defaultCloneDir())
	viper.SetDefault("poll_interval", 5*time.Minute)
	viper.SetDefault("docs_url", "https://docs-data.ocaml.org")

	// A missing config file is fine, a broken one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Printf("config: %v", err)
		}
	}
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ocamlorg")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "ocamlorg")
	}
	return ".ocamlorg"
}

func defaultCloneDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "ocamlorg", "opam-repository")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "ocamlorg", "opam-repository")
	}
	return filepath.Join(".ocamlorg", "opam-repository")
}

// newRegistry builds a registry over the configured repository clone. The
// tiered ranker answers first; free-form queries it cannot match fall
// through to the full-text index.
func newRegistry() *registry.Registry {
	source := repo.New(viper.GetString("repo_url"), viper.GetString("clone_dir"))
	return registry.New(registry.Config{
		PollInterval: viper.GetDuration("poll_interval"),
		Searcher: search.NewProgressive(
			search.NewRanker(),
			search.NewBleveSearcher(search.BleveConfig{}),
		),
		Docs: docs.NewProxy(viper.GetString("docs_url"), opam.DefaultNamespace(), nil),
		ServerInfo: registry.ServerInfo{
			Name:    "ocamlorg",
			Version: "1.0.0",
		},
	}, source)
}
