// Package main provides the penned binary: the contest HTTP server plus
// one-shot sync, stats and smoke commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/penumbrapenned/penned/internal/config"
)

const appName = "penned"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Penumbra Penned weekly contest service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if configPath != "" {
				return os.Setenv(config.EnvConfigFile, configPath)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (overrides "+config.EnvConfigFile+")")

	cmd.AddCommand(serveCmd(), syncCmd(), statsCmd(), smokeCmd())
	return cmd
}
