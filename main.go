package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"tasnim.dev/deploy-reaper/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "deploy-reaper",
		Short: "Retention for deployment artifacts stored in S3",
	}

	rootCmd.AddCommand(cmd.NewPruneCmd())
	rootCmd.AddCommand(cmd.NewBucketsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
