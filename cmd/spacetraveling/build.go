package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var buildClean bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate every page into the page store",
	Long: `The build command fetches the listing and every post from the content
service, renders them and stores them in the SQLite page store, so that the
next serve starts with a warm cache.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if buildClean {
			if err := app.Cache.Purge(); err != nil {
				return fmt.Errorf("purge: %w", err)
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		report, err := app.Build(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "built", report)
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolVar(&buildClean, "clean", false, "drop every stored page before building")
}
