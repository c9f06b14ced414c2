// Package serve runs the HTTP API.
package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/fatura-extractor/cmd/root"
	"fjacquet/fatura-extractor/internal/config"
	"fjacquet/fatura-extractor/internal/server"

	"github.com/spf13/cobra"
)

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extraction API over HTTP",
	Long: `Serve the extraction API. Uploads are stored in the configured upload
directory and removed after processing; stale files are cleaned up periodically.

The listen address comes from --addr, then PORT, then server.addr.

Example:
  fatura-extractor serve --addr :8000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		cfg := c.GetConfig()
		cfg.Server.Addr = ListenAddr(addr, cfg.Server.Addr)

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.New(c, root.Version).Run(ctx)
	},
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "Listen address, e.g. :8000")
}

// ListenAddr resolves the address from the flag, the PORT variable and the
// configured default, in that order.
func ListenAddr(flag, configured string) string {
	if flag != "" {
		return flag
	}
	if port := config.GetEnv("PORT", ""); port != "" {
		return ":" + port
	}
	return configured
}
