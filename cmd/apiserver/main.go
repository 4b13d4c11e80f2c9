package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.18.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc/credentials"
	"gorm.io/gorm"

	"github.com/agrihub-io/agrihub/internal/auth"
	"github.com/agrihub-io/agrihub/internal/database"
	"github.com/agrihub-io/agrihub/internal/fflags"
	"github.com/agrihub-io/agrihub/internal/handlers"
	"github.com/agrihub-io/agrihub/internal/routers"
	"github.com/agrihub-io/agrihub/internal/util"
)

var tracer trace.Tracer

func init() {
	tracer = otel.Tracer("apiserver")
}

func main() {
	app := &cli.Command{
		Name:  "apiserver",
		Usage: "The agrihub API server",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Value:   false,
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("AGRIHUB_DEBUG"),
			},
			&cli.StringFlag{
				Name:    "listen",
				Value:   "0.0.0.0:8080",
				Usage:   "The address and port to listen for HTTP requests on",
				Sources: cli.EnvVars("AGRIHUB_LISTEN"),
			},
			&cli.StringFlag{
				Name:    "db-host",
				Value:   "apiserver-db",
				Usage:   "Database host name",
				Sources: cli.EnvVars("AGRIHUB_DB_HOST"),
			},
			&cli.StringFlag{
				Name:    "db-port",
				Value:   "5432",
				Usage:   "Database port",
				Sources: cli.EnvVars("AGRIHUB_DB_PORT"),
			},
			&cli.StringFlag{
				Name:    "db-user",
				Value:   "apiserver",
				Usage:   "Database user",
				Sources: cli.EnvVars("AGRIHUB_DB_USER"),
			},
			&cli.StringFlag{
				Name:    "db-password",
				Value:   "secret",
				Usage:   "Database password",
				Sources: cli.EnvVars("AGRIHUB_DB_PASSWORD"),
			},
			&cli.StringFlag{
				Name:    "db-name",
				Value:   "apiserver",
				Usage:   "Database name",
				Sources: cli.EnvVars("AGRIHUB_DB_NAME"),
			},
			&cli.StringFlag{
				Name:    "db-sslmode",
				Value:   "disable",
				Usage:   "Database ssl mode",
				Sources: cli.EnvVars("AGRIHUB_DB_SSLMODE"),
			},
			&cli.BoolFlag{
				Name:    "db-lazy",
				Value:   true,
				Usage:   "Start serving before the database is reachable",
				Sources: cli.EnvVars("AGRIHUB_DB_LAZY"),
			},
			&cli.StringFlag{
				Name:    "auth",
				Value:   "noauth",
				Usage:   "Identity mode: noauth or oidc",
				Sources: cli.EnvVars("AGRIHUB_AUTH"),
			},
			&cli.StringFlag{
				Name:    "oidc-url",
				Value:   "",
				Usage:   "Address of the oidc provider",
				Sources: cli.EnvVars("AGRIHUB_OIDC_URL"),
			},
			&cli.StringSliceFlag{
				Name:    "oidc-client-ids",
				Usage:   "Accepted oidc token audiences",
				Sources: cli.EnvVars("AGRIHUB_OIDC_CLIENT_IDS"),
			},
			&cli.BoolFlag{
				Name:    "insecure-tls",
				Value:   false,
				Usage:   "Trust any TLS certificate",
				Sources: cli.EnvVars("AGRIHUB_INSECURE_TLS"),
			},
			&cli.StringFlag{
				Name:    "owner-identity",
				Value:   "",
				Usage:   "Identity id that is bootstrapped as admin on first sign in",
				Sources: cli.EnvVars("AGRIHUB_OWNER_IDENTITY"),
			},
			&cli.StringFlag{
				Name:    "dev-user-id",
				Value:   "dev-user",
				Usage:   "Identity id used by the noauth mode",
				Sources: cli.EnvVars("AGRIHUB_DEV_USER_ID"),
			},
			&cli.BoolFlag{
				Name:    "trace-insecure",
				Value:   false,
				Usage:   "Set OTLP endpoint to insecure mode",
				Sources: cli.EnvVars("AGRIHUB_TRACE_INSECURE"),
			},
			&cli.StringFlag{
				Name:    "trace-endpoint",
				Value:   "",
				Usage:   "OTLP endpoint for trace data",
				Sources: cli.EnvVars("AGRIHUB_TRACE_ENDPOINT_OTLP"),
			},
		},

		Action: func(ctx context.Context, command *cli.Command) error {
			ctx, _ = signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT)
			ctx, span := tracer.Start(ctx, "Run")
			defer span.End()
			withLoggerAndDB(ctx, command, func(logger *zap.Logger, db *gorm.DB, dsn string) {
				if err := database.Migrations().Migrate(ctx, db); err != nil {
					log.Fatal(err)
				}

				flags := fflags.NewFFlags(logger.Sugar())
				flags.RegisterEnvFlag(fflags.CascadeDelete, "AGRIHUB_FFLAG_CASCADE_DELETE", false)
				flags.RegisterEnvFlag(fflags.DegradedReads, "AGRIHUB_FFLAG_DEGRADED_READS", true)

				api, err := handlers.NewAPI(ctx, logger.Sugar(), db, flags, command.String("owner-identity"))
				if err != nil {
					log.Fatal(err)
				}

				var resolver auth.Resolver
				switch command.String("auth") {
				case "oidc":
					resolver, err = auth.NewOIDCResolver(
						ctx,
						logger.Sugar(),
						command.String("oidc-url"),
						command.StringSlice("oidc-client-ids"),
						command.Bool("insecure-tls"),
					)
					if err != nil {
						log.Fatal(err)
					}
				default:
					resolver = auth.NewStaticResolver(command.String("dev-user-id"), "", "")
				}

				router, err := routers.NewAPIRouter(ctx, routers.APIRouterOptions{
					Logger:   logger.Sugar(),
					Api:      api,
					Resolver: resolver,
				})
				if err != nil {
					log.Fatal(err)
				}

				httpServer := &http.Server{
					Addr:              command.String("listen"),
					Handler:           router,
					ReadTimeout:       5 * time.Second,
					ReadHeaderTimeout: 5 * time.Second,
					WriteTimeout:      10 * time.Second,
				}
				defer util.IgnoreError(httpServer.Close)

				wg := &sync.WaitGroup{}
				serveErrors := make(chan error, 1)
				util.GoWithWaitGroup(wg, func() {
					if err := httpServer.ListenAndServe(); err != nil {
						serveErrors <- err
					}
				})

				// Wait for a shutdown signal or the server failing.
				beginShutdown := &sync.WaitGroup{}
				util.GoWithWaitGroup(beginShutdown, func() {
					select {
					case err := <-serveErrors:
						serveErrors <- err // put it back
					case <-ctx.Done():
					}
				})
				beginShutdown.Wait()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				go func() {
					_ = httpServer.Shutdown(shutdownCtx)
				}()

				serversDone := make(chan struct{})
				go func() {
					wg.Wait()
					close(serversDone)
				}()

				var serveErr error
			forLoop:
				for {
					select {
					case serveErr = <-serveErrors:
					case <-shutdownCtx.Done():
						break forLoop
					case <-serversDone:
						break forLoop
					}
				}

				if serveErr != nil && serveErr != http.ErrServerClosed {
					log.Fatal(serveErr)
				}
			})
			return nil
		},
	}
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "rollback",
		Usage: "Rollback the last database migration",
		Action: func(ctx context.Context, command *cli.Command) error {
			withLoggerAndDB(ctx, command, func(logger *zap.Logger, db *gorm.DB, dsn string) {
				if err := database.Migrations().RollbackLast(ctx, db); err != nil {
					log.Fatal(err)
				}
			})
			return nil
		},
	})

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func getLogger(command *cli.Command) *zap.Logger {
	var logger *zap.Logger
	var err error
	if command.Bool("debug") {
		logConfig := zap.NewProductionConfig()
		logConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		logger, err = logConfig.Build()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatal(err)
	}
	return logger
}

func withLoggerAndDB(ctx context.Context, command *cli.Command, f func(logger *zap.Logger, db *gorm.DB, dsn string)) {
	logger := getLogger(command)
	cleanup := initTracer(logger.Sugar(), command.Bool("trace-insecure"), command.String("trace-endpoint"))
	defer func() {
		if cleanup == nil {
			return
		}
		if err := cleanup(ctx); err != nil {
			logger.Error(err.Error())
		}
	}()

	db, dsn, err := database.NewDatabase(
		ctx,
		logger.Sugar(),
		command.String("db-host"),
		command.String("db-user"),
		command.String("db-password"),
		command.String("db-name"),
		command.String("db-port"),
		command.String("db-sslmode"),
		command.Bool("db-lazy"),
	)
	if err != nil {
		log.Fatal(err)
	}

	f(logger, db, dsn)
}

func initTracer(logger *zap.SugaredLogger, insecure bool, collector string) func(context.Context) error {
	if collector == "" {
		logger.Info("No collector endpoint configured")
		otel.SetTracerProvider(
			sdktrace.NewTracerProvider(
				sdktrace.WithSampler(sdktrace.AlwaysSample()),
			),
		)
		return nil
	}
	secureOption := otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, ""))
	if insecure {
		secureOption = otlptracegrpc.WithInsecure()
	}
	exporter, err := otlptrace.New(
		context.Background(),
		otlptracegrpc.NewClient(
			secureOption,
			otlptracegrpc.WithEndpoint(collector),
		),
	)
	if err != nil {
		logger.Errorf("Unable to create open telemetry exporter: %s", err.Error())
		return nil
	}
	resources, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", "apiserver"),
			attribute.String("library.language", "go"),
		),
	)
	if err != nil {
		logger.Errorf("Unable to create resources: %s", err.Error())
		return nil
	}

	deployEnvironment := os.Getenv("AGRIHUB_ENVIRONMENT")
	if deployEnvironment == "" {
		deployEnvironment = "development"
	}

	otel.SetTracerProvider(
		sdktrace.NewTracerProvider(
			sdktrace.WithResource(resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceName("apiserver"),
				semconv.DeploymentEnvironment(deployEnvironment),
			)),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(resources),
		),
	)
	return exporter.Shutdown
}
