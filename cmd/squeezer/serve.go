package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	httpAdapter "github.com/gucorpling/squeezer/internal/adapters/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Exposes the engine over HTTP: POST /transform, /validate and /graph, the configured store under /documents, plus /healthz and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		eng, err := app.Engine()
		if err != nil {
			return err
		}
		store, err := app.Store()
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr: app.Config.HTTP.Addr,
			Handler: httpAdapter.NewHandler(&httpAdapter.Server{
				Engine:   eng,
				Sessions: app.Sessions(store),
				Gatherer: app.Registry,
				Logger:   app.Logger,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			app.Logger.Info("starting server", "addr", srv.Addr, "store", app.Config.Store.Kind)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err

		case <-cmd.Context().Done():
			app.Logger.Info("shutting down")

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				app.Logger.Warn("graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
}
