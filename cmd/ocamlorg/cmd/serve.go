package cmd

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/brycenichols/ocaml.org/registry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the package index",
	Long:  "Start the refresh loop and serve the index over HTTP JSON and MCP.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().Bool("stdio", false, "serve MCP over stdio instead of HTTP")
	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("stdio", serveCmd.Flags().Lookup("stdio"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := newRegistry()
	if err := reg.Start(ctx); err != nil {
		return err
	}
	defer reg.Stop()

	if viper.GetBool("stdio") {
		return registry.ServeStdio(ctx, reg)
	}

	mux := http.NewServeMux()
	mux.Handle("/mcp", registry.MCPHandler(reg))
	mux.Handle("/", registry.HTTPHandler(reg))

	srv := &http.Server{
		Addr:    viper.GetString("listen"),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	log.Printf("serving on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
