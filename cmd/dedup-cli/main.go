// cmd/dedup-cli/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var args struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dedup-cli",
		Short:         "Operate provider deduplication outside the workflow engine",
		Long:          "Run deduplication passes and merges, check or import providers and manage the activity registry against the configured provider store.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&args.configPath, "config", "", "config file (default: configs/config.yaml lookup)")
	root.PersistentFlags().StringVar(&args.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(
		newPassCmd(),
		newMergeCmd(),
		newCheckCmd(),
		newImportCmd(),
		newReindexCmd(),
		newRegistryCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
