// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/electiond/lifecycle"
	"github.com/danielhkuo/electiond/router"
	"github.com/danielhkuo/electiond/store"
	"github.com/danielhkuo/electiond/voting"
)

const shutdownTimeout = 10 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the API and run the election scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		dbConn, err := openDatabase()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		st := store.New(dbConn)
		svc := voting.NewService(st, voting.Options{IPHashSalt: cfg.IPHashSalt})
		sched := lifecycle.NewScheduler(st, lifecycle.Options{Interval: cfg.TickInterval})

		server := &http.Server{
			Handler:           router.NewRouter(st, svc, cfg),
			Addr:              ":" + strconv.Itoa(cfg.Port),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			return sched.Run(ctx)
		})

		g.Go(func() error {
			slog.Info("Listening", "port", cfg.Port)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})

		err = g.Wait()
		slog.Info("Server closed", "error", err)
		return err
	},
}
