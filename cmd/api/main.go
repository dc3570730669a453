package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/solux-cash/solux-backend/internal/adapters/repos/memory"
	"github.com/solux-cash/solux-backend/internal/adapters/services/devmail"
	"github.com/solux-cash/solux-backend/internal/adapters/services/lithic"
	"github.com/solux-cash/solux-backend/internal/adapters/services/resend"
	enrollmentapp "github.com/solux-cash/solux-backend/internal/application/enrollment"
	"github.com/solux-cash/solux-backend/internal/application/mail"
	mailevent "github.com/solux-cash/solux-backend/internal/application/mail/event"
	verificationapp "github.com/solux-cash/solux-backend/internal/application/verification"
	verificationcmd "github.com/solux-cash/solux-backend/internal/application/verification/cmd"
	httpport "github.com/solux-cash/solux-backend/internal/ports/http"
	"github.com/solux-cash/solux-backend/internal/ports/http/middlewares"
	watermillport "github.com/solux-cash/solux-backend/internal/ports/watermill"
	"github.com/solux-cash/solux-backend/pkg/env"
	"github.com/solux-cash/solux-backend/pkg/httpx"
	"github.com/solux-cash/solux-backend/pkg/logging"
	"github.com/solux-cash/solux-backend/pkg/watermillx"
)

// Application holds all the application dependencies
type Application struct {
	Verification *verificationapp.App
	Enrollment   *enrollmentapp.App
	Mail         *mail.App
}

// Config holds all configuration for the application
type Config struct {
	Mode          env.Mode
	Port          string
	LogPath       string
	LithicAPIKey  string
	LithicBaseURL string
	ResendAPIKey  string
	ResendBaseURL string
	MailFrom      string
}

func main() {
	ctx := context.Background()

	// .env is optional; real deployments use the process environment
	_ = godotenv.Load()

	config := loadConfig()

	env.SetMode(config.Mode)
	logger, logCleanup := logging.Setup(config.Mode, config.LogPath)
	slog.SetDefault(logger)
	defer func() {
		if err := logCleanup(); err != nil {
			fmt.Fprintln(os.Stderr, "failed to close log file:", err)
		}
	}()

	shutdownOTel, err := setupOTelSDK(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to set up OpenTelemetry SDK", "error", err)
		os.Exit(1)
	}
	defer func() {
		if shutdownOTel != nil {
			if err := shutdownOTel(ctx); err != nil {
				slog.ErrorContext(ctx, "Failed to shutdown OpenTelemetry SDK", "error", err)
			}
		}
	}()

	slog.InfoContext(ctx, "Starting Solux API server",
		"mode", config.Mode,
		"port", config.Port,
	)

	wlogger := watermill.NewSlogLogger(slog.Default())

	// GoChannel carries domain events in-process; sessions and codes live in
	// memory, so there is nothing durable to replay them from anyway.
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, wlogger)

	eventRouter, err := message.NewRouter(message.RouterConfig{}, wlogger)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create event router", "error", err)
		os.Exit(1)
	}

	eventBus, err := watermillx.NewEventBus(pubsub, wlogger)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create event bus", "error", err)
		os.Exit(1)
	}

	verificationRepo := memory.NewVerificationRepo(eventBus)
	wizardRepo := memory.NewWizardRepo(eventBus)

	apps := setupApplications(config, verificationRepo, wizardRepo)

	wmport, err := watermillport.NewPort(eventRouter, pubsub, wlogger)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create Watermill port", "error", err)
		os.Exit(1)
	}
	if err := wmport.Run(watermillport.AppEventHandlers{
		Mail: apps.Mail.Event,
	}); err != nil {
		slog.ErrorContext(ctx, "Failed to run Watermill port", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := eventRouter.Run(ctx); err != nil {
			slog.ErrorContext(ctx, "Failed to start event router", "error", err)
			os.Exit(1)
		}
	}()

	httpServer := setupHTTPServer(config, apps)

	go func() {
		slog.InfoContext(ctx, "Starting HTTP server", "port", config.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Drain wizard background work before the event router goes away.
	apps.Enrollment.Wizard.Close()

	if err := eventRouter.Close(); err != nil {
		slog.ErrorContext(shutdownCtx, "Failed to close event router", "error", err)
	}

	slog.InfoContext(ctx, "Server exited")
}

func loadConfig() *Config {
	return &Config{
		Mode:          env.Mode(getEnvOrDefault("MODE", string(env.Dev))),
		Port:          getEnvOrDefault("PORT", "8080"),
		LogPath:       getEnvOrDefault("LOG_PATH", ""),
		LithicAPIKey:  os.Getenv("LITHIC_API_KEY"),
		LithicBaseURL: getEnvOrDefault("LITHIC_BASE_URL", lithic.DefaultBaseURL),
		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		ResendBaseURL: getEnvOrDefault("RESEND_BASE_URL", resend.DefaultBaseURL),
		MailFrom:      getEnvOrDefault("MAIL_FROM", "Solux <onboarding@resend.dev>"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setupApplications(config *Config, verificationRepo *memory.VerificationRepo, wizardRepo *memory.WizardRepo) *Application {
	// Without a Resend key, mail lands in the logs; the sandbox code endpoint
	// keeps the flow usable.
	var codeMailer verificationcmd.MailSender
	var mailSender mailevent.MailSender
	if config.ResendAPIKey != "" {
		client := resend.NewClient(resend.ClientArgs{
			BaseURL: config.ResendBaseURL,
			APIKey:  config.ResendAPIKey,
			From:    config.MailFrom,
		})
		codeMailer, mailSender = client, client
	} else {
		sender := devmail.NewSender(nil)
		codeMailer, mailSender = sender, sender
	}

	verApp := verificationapp.NewApp(verificationapp.Args{
		Repo:   verificationRepo,
		Mailer: codeMailer,
	})

	enrApp := enrollmentapp.NewApp(enrollmentapp.Args{
		Issuing: lithic.NewClient(lithic.ClientArgs{
			BaseURL: config.LithicBaseURL,
			APIKey:  config.LithicAPIKey,
		}),
		WizardRepo:   wizardRepo,
		CodeIssuer:   verApp.CMD.IssueCode,
		CodeVerifier: verApp.CMD.VerifyCode,
	})

	mailApp := mail.NewApp(mail.Args{
		Mailsender: mailSender,
	})

	return &Application{
		Verification: verApp,
		Enrollment:   enrApp,
		Mail:         mailApp,
	}
}

func setupHTTPServer(config *Config, apps *Application) *http.Server {
	router := chi.NewRouter()

	router.Use(middlewares.OTel)
	router.Use(middlewares.Logger)

	if config.Mode.IsSandbox() {
		router.Use(corsMiddleware)
	}

	httpPort := httpport.NewPort(httpport.Args{
		VerificationApp:   apps.Verification,
		EnrollmentApp:     apps.Enrollment,
		Errhandler:        httpx.NewErrorHandler(),
		IssuingConfigured: config.LithicAPIKey != "",
	})

	httpPort.Route(router)

	return &http.Server{
		Addr:         ":" + config.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// corsMiddleware lets the Vite dev client talk to the API from another origin.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// setupOTelSDK bootstraps the OpenTelemetry pipeline.
// If it does not return an error, make sure to call shutdown for proper cleanup.
func setupOTelSDK(ctx context.Context) (shutdown func(context.Context) error, err error) {
	var shutdownFuncs []func(context.Context) error

	shutdown = func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}

	handleErr := func(inErr error) {
		err = errors.Join(inErr, shutdown(ctx))
	}

	otel.SetTextMapPropagator(newPropagator())

	tracerProvider, err := newTracerProvider()
	if err != nil {
		handleErr(err)
		return
	}
	shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)

	meterProvider, err := newMeterProvider()
	if err != nil {
		handleErr(err)
		return
	}
	shutdownFuncs = append(shutdownFuncs, meterProvider.Shutdown)
	otel.SetMeterProvider(meterProvider)

	loggerProvider, err := newLoggerProvider()
	if err != nil {
		handleErr(err)
		return
	}
	shutdownFuncs = append(shutdownFuncs, loggerProvider.Shutdown)
	global.SetLoggerProvider(loggerProvider)

	return
}

func newPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

func newTracerProvider() (*trace.TracerProvider, error) {
	traceExporter, err := stdouttrace.New(
		stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	tracerProvider := trace.NewTracerProvider(
		trace.WithBatcher(traceExporter,
			trace.WithBatchTimeout(5*time.Second)),
	)
	return tracerProvider, nil
}

func newMeterProvider() (*metric.MeterProvider, error) {
	metricExporter, err := stdoutmetric.New()
	if err != nil {
		return nil, err
	}

	meterProvider := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(metricExporter,
			metric.WithInterval(1*time.Minute),
		)),
	)
	return meterProvider, nil
}

func newLoggerProvider() (*log.LoggerProvider, error) {
	logExporter, err := stdoutlog.New()
	if err != nil {
		return nil, err
	}

	loggerProvider := log.NewLoggerProvider(
		log.WithProcessor(log.NewBatchProcessor(logExporter)),
	)
	return loggerProvider, nil
}
