package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cooldogedev/prism"
	"github.com/cooldogedev/prism/api"
	"github.com/cooldogedev/prism/util"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var (
		config string
		debug  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept client connections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			opts := util.DefaultOpts()
			if config != "" {
				var err error
				if opts, err = util.LoadOpts(config); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, logger, opts)
		},
	}
	cmd.Flags().StringVarP(&config, "config", "c", "", "path of the YAML configuration file")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}

func serve(ctx context.Context, logger *slog.Logger, opts *util.Opts) error {
	p, err := prism.NewPrism(logger, opts, nil)
	if err != nil {
		return err
	}
	defer p.Close()
	if err := p.Listen(); err != nil {
		return err
	}

	var auth api.Authentication
	if opts.Token != "" {
		auth = api.NewSecretBasedAuthentication(opts.Token)
	}

	if opts.APIAddr != "" {
		a := api.NewAPI(p.Registry(), p.Packets(), logger, auth)
		if err := a.Listen(opts.APIAddr); err != nil {
			return err
		}
		defer a.Close()
		go func() {
			for {
				if err := a.Accept(); err != nil {
					return
				}
			}
		}()
		logger.Info("started admin api", "addr", a.Addr())
	}

	if opts.HTTPAddr != "" {
		var violations api.ViolationSource
		if ledger := p.Ledger(); ledger != nil {
			violations = ledger
		}
		srv := &http.Server{
			Addr:              opts.HTTPAddr,
			Handler:           api.NewHTTPHandler(p.Registry(), violations, p.Gatherer(), auth, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http api stopped", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("started http api", "addr", opts.HTTPAddr)
	}

	go func() {
		for {
			if _, err := p.Accept(); err != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}
