package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var serveBuild bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site",
	Long: `The serve command starts the web server. Pages already in the page store are
served right away; with --build every page is generated first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveBuild {
			siteCfg.BuildOnStart = true
		}
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() { errc <- app.Start() }()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		app.Echo.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return app.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveBuild, "build", false, "generate every page before serving")
}
