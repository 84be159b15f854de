package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/espalier-dev/espalier"
	httpAdapter "github.com/espalier-dev/espalier/internal/adapters/http"
	"github.com/espalier-dev/espalier/internal/logging"
	redisAdapter "github.com/espalier-dev/espalier/pkg/adapters/redis"
)

var serveCmd = &cobra.Command{
	Use:   "serve [flow-document]",
	Short: "Start the HTTP server",
	Long: `Starts the engine in server mode, exposing the session API as JSON over HTTP.

With --redis, sessions are stored in Redis and guarded by a distributed lock,
so several replicas can serve the same flow. SIGHUP re-reads the flow document
and swaps the graph without dropping sessions.`,
	Run: func(cmd *cobra.Command, args []string) {
		path := flowPath(cmd, args)
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		redisTTL, _ := cmd.Flags().GetDuration("redis-ttl")
		levelStr, _ := cmd.Flags().GetString("log-level")

		logger := logging.New(logging.ParseLevel(levelStr))

		opts := []espalier.Option{espalier.WithLogger(logger)}
		var store *redisAdapter.Store
		if redisAddr != "" {
			store = redisAdapter.New(redisAddr, "", 0, redisAdapter.WithTTL(redisTTL))
			locker := redisAdapter.NewLocker(store.Client(), "espalier:session:")
			opts = append(opts, espalier.WithSessionStore(store), espalier.WithLocker(locker))
		}

		engine, err := espalier.New(path, opts...)
		if err != nil {
			fmt.Printf("Error loading flow: %v\n", err)
			os.Exit(1)
		}
		if store != nil {
			defer store.Close()
		}

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: httpAdapter.NewHandler(engine, logger),
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("server starting", "addr", srv.Addr, "flow", engine.Flow().ID())
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		reload := make(chan os.Signal, 1)
		signal.Notify(reload, syscall.SIGHUP)

		for {
			select {
			case err := <-serverErrors:
				fmt.Printf("Server error: %v\n", err)
				os.Exit(1)

			case <-reload:
				src, err := os.ReadFile(path)
				if err != nil {
					logger.Error("reload read failed", "path", path, "err", err)
					continue
				}
				if err := engine.Reload(src); err != nil {
					// Old graph stays published.
					logger.Error("reload rejected", "path", path, "err", err)
					continue
				}
				logger.Info("flow reloaded", "path", path)

			case sig := <-shutdown:
				logger.Info("shutdown started", "signal", sig.String())

				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					logger.Error("graceful shutdown did not complete", "err", err)
					if err := srv.Close(); err != nil {
						logger.Error("server close failed", "err", err)
					}
				}
				logger.Info("server stopped")
				return
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address (host:port); empty uses the in-memory store")
	serveCmd.Flags().Duration("redis-ttl", 24*time.Hour, "Idle session expiry in Redis (0 disables expiry)")
}
