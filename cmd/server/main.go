package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/serroba/shortn/internal/container"
	"github.com/serroba/shortn/internal/shortener"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const commandTimeout = 30 * time.Second

func registerPackages(injector *do.Injector, options *container.Options) {
	do.ProvideValue(injector, options)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.StorePackage(injector)
	container.EventsPackage(injector)
	container.ServicePackage(injector)
	container.HTTPPackage(injector)
}

func main() {
	// A missing .env is fine; flags and the environment still apply.
	_ = godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		injector := do.New()
		registerPackages(injector, options)

		logger := do.MustInvoke[*zap.Logger](injector)

		var server *http.Server

		hooks.OnStart(func() {
			router := do.MustInvoke[*chi.Mux](injector)

			// Invoke API to trigger route registration; this also provisions the store.
			if _, err := do.Invoke[huma.API](injector); err != nil {
				logger.Fatal("startup failed", zap.Error(err))
			}

			server = &http.Server{
				Addr:              fmt.Sprintf(":%d", options.Port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			logger.Info("server starting",
				zap.Int("port", options.Port),
				zap.String("store", options.Store),
				zap.String("base_url", options.ResolvedBaseURL()),
			)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			logger.Info("shutting down")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if server != nil {
				if err := server.Shutdown(ctx); err != nil {
					logger.Error("server shutdown error", zap.Error(err))
				}
			}

			if err := injector.Shutdown(); err != nil {
				logger.Error("service shutdown error", zap.Error(err))
			}

			logger.Info("shutdown complete")
		})
	})

	cli.Root().AddCommand(migrateCommand(), shortenCommand(), resolveCommand())

	cli.Run()
}

// withService runs fn against the configured store, then releases it.
func withService(options *container.Options, fn func(ctx context.Context, svc *shortener.Service, logger *zap.Logger)) {
	injector := do.New()
	registerPackages(injector, options)

	logger := do.MustInvoke[*zap.Logger](injector)

	defer func() {
		if err := injector.Shutdown(); err != nil {
			logger.Error("service shutdown error", zap.Error(err))
		}
	}()

	svc, err := do.Invoke[*shortener.Service](injector)
	if err != nil {
		logger.Fatal("store unavailable", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	fn(ctx, svc, logger)
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Provision the link store schema and exit",
		Args:  cobra.NoArgs,
		Run: humacli.WithOptions(func(_ *cobra.Command, _ []string, options *container.Options) {
			withService(options, func(_ context.Context, _ *shortener.Service, logger *zap.Logger) {
				logger.Info("schema ready", zap.String("store", options.Store))
			})
		}),
	}
}

func shortenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shorten <url>",
		Short: "Shorten a URL and print its short link",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *container.Options) {
			withService(options, func(ctx context.Context, svc *shortener.Service, logger *zap.Logger) {
				link, err := svc.Shorten(ctx, args[0])
				if err != nil {
					logger.Fatal("shorten failed", zap.Error(err))
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), link.ShortURL)
			})
		}),
	}
}

func resolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id>",
		Short: "Print the URL a short identifier points to",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *container.Options) {
			withService(options, func(ctx context.Context, svc *shortener.Service, logger *zap.Logger) {
				url, err := svc.Resolve(ctx, shortener.ID(args[0]))
				if err != nil {
					logger.Fatal("resolve failed", zap.String("id", args[0]), zap.Error(err))
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), url)
			})
		}),
	}
}
