// Command gqlmock serves canned GraphQL responses from a fixtures file.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mycelian/gqltest"
	"github.com/mycelian/gqltest/internal/mockserver"
)

var debug bool

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Stack().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "gqlmock",
		Short:        "Serve mocked GraphQL responses over HTTP",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(debug)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCheckCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	var fixtures, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mock GraphQL server",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadFixtures(fixtures)
			if err != nil {
				return err
			}
			log.Info().Str("fixtures", fixtures).Msg("fixtures loaded")
			gql, err := gqltest.New(m, gqltest.WithLogger(log.Logger))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := &http.Server{
				Addr:              addr,
				Handler:           mockserver.NewHandler(gql, log.Logger).Router(),
				ReadTimeout:       15 * time.Second,
				ReadHeaderTimeout: 10 * time.Second,
				WriteTimeout:      15 * time.Second,
				IdleTimeout:       60 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return ctx },
			}
			return serve(ctx, server)
		},
	}
	cmd.Flags().StringVarP(&fixtures, "fixtures", "f", os.Getenv("GQLMOCK_FIXTURES"), "JSON file mapping operation names to response data")
	cmd.Flags().StringVar(&addr, "addr", getEnv("GQLMOCK_ADDR", ":4000"), "Listen address")
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <fixtures.json>",
		Short: "Validate a fixtures file and list the operations it mocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := fixtureNames(args[0])
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func serve(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("gqlmock listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
