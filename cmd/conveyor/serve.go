package main

import (
	"context"
	"errors"

	"github.com/indigo-web/conveyor"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errStoppedListening = errors.New("server stopped listening unexpectedly")

func newServeCmd() *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the echo handler until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, v.GetString("config"))
			if err != nil {
				return err
			}

			log, err := newLogger(v.GetString("log_level"))
			if err != nil {
				return err
			}
			defer func() {
				_ = log.Sync()
			}()

			server, err := conveyor.New(v.GetString("addr"), echo, conveyor.WithConfig(cfg), conveyor.WithLogger(log))
			if err != nil {
				return err
			}

			log.Info("serving", zap.Stringer("addr", server.Addr()), zap.String("version", conveyor.Version))

			return run(cmd.Context(), server, log)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", ":8080", "address to listen on")
	flags.String("config", "", "path to a config file (yaml, json or toml)")
	flags.String("log-level", "info", "minimal level of log entries")

	_ = v.BindPFlag("addr", flags.Lookup("addr"))
	_ = v.BindPFlag("config", flags.Lookup("config"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))

	return cmd
}

// run serves until ctx is done or the server stops by itself, shutting it down in
// both cases.
func run(ctx context.Context, server *conveyor.Server, log *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		return server.Close()
	})
	g.Go(func() error {
		<-server.Done()
		if gctx.Err() != nil {
			return nil
		}

		return errStoppedListening
	})

	return g.Wait()
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	return cfg.Build()
}
