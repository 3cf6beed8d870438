package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var purgeCmd = &cobra.Command{
	Use:   "purge [route...]",
	Short: "Drop stored pages",
	Long: `The purge command removes pages from the page store so they are generated
again on their next request. Without arguments every page is removed.

A server running on the same database notices the purge within a few
seconds and drops the pages from memory as well.`,
	Example: `  spacetraveling purge
  spacetraveling purge / /post/my-post/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if len(args) == 0 {
			if err := app.Cache.Purge(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "purged every page")
			return nil
		}
		for _, route := range args {
			if err := app.Cache.Invalidate(route); err != nil {
				return fmt.Errorf("purge %s: %w", route, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "purged", route)
		}
		return nil
	},
}
