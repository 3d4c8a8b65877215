package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/book-rental-go/library/actions"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell/checkout"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell/config"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell/notify"
	"github.com/AntonStoeckl/book-rental-go/rentalstore"
	"github.com/AntonStoeckl/book-rental-go/rentalstore/memengine"
	"github.com/AntonStoeckl/book-rental-go/rentalstore/oteladapters"
	"github.com/AntonStoeckl/book-rental-go/rentalstore/postgresengine"
)

const (
	instrumentationName = "book-rental"
	version             = "dev"
)

// catalogStore is what the binary needs from a store: the actions plus catalog maintenance.
type catalogStore interface {
	actions.Store
	InsertBook(ctx context.Context, book rentalstore.Book) error
	DeleteBook(ctx context.Context, bookID uuid.UUID) error
}

// observability holds the collectors handed to every component; all of them are nil when disabled.
type observability struct {
	contextualLogger shell.ContextualLogger
	metrics          shell.MetricsCollector
	tracing          shell.TracingCollector
	providers        *config.ObservabilityProviders
}

// app is the fully wired service.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	obs      observability
	store    catalogStore
	pgStore  *postgresengine.Store
	notifier *notify.Notifier
	table    *actions.Table
	closers  []func() error
}

// bindConfigFlags lets the command line override the environment.
func bindConfigFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.DBAdapter, "db-adapter", cfg.DBAdapter, "Store adapter: memory, pgx, sql or sqlx")
	fs.StringVar(&cfg.DBDSN, "db-dsn", cfg.DBDSN, "Postgres DSN of the primary")
	fs.StringVar(&cfg.DBReplicaDSN, "db-replica-dsn", cfg.DBReplicaDSN, "Postgres DSN of the read replica")
	fs.BoolVar(&cfg.ObservabilityEnabled, "observability-enabled", cfg.ObservabilityEnabled, "Enable OpenTelemetry observability")
	fs.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", cfg.OTLPEndpoint, "OTLP gRPC endpoint")
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Join(errUsage, err)
	}

	return nil
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}

	if err := a.wire(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	if err := a.setupObservability(ctx); err != nil {
		return fmt.Errorf("setting up observability: %w", err)
	}

	if err := a.openStore(ctx); err != nil {
		return fmt.Errorf("opening the store: %w", err)
	}

	gateway, err := a.newGateway()
	if err != nil {
		return fmt.Errorf("creating the checkout gateway: %w", err)
	}

	if err := a.newNotifier(); err != nil {
		return fmt.Errorf("creating the notifier: %w", err)
	}

	tableOptions := []actions.Option{
		actions.WithLogger(a.logger),
		actions.WithBusinessRuleStatus(a.cfg.BusinessRuleStatus),
	}
	if a.obs.contextualLogger != nil {
		tableOptions = append(tableOptions, actions.WithContextualLogger(a.obs.contextualLogger))
	}
	if a.obs.metrics != nil {
		tableOptions = append(tableOptions, actions.WithMetrics(a.obs.metrics))
	}
	if a.obs.tracing != nil {
		tableOptions = append(tableOptions, actions.WithTracing(a.obs.tracing))
	}

	a.table, err = actions.NewTable(a.store, gateway, a.notifier, tableOptions...)

	return err
}

func (a *app) setupObservability(ctx context.Context) error {
	if !a.cfg.ObservabilityEnabled {
		return nil
	}

	providers, err := config.NewObservabilityProviders(ctx, a.cfg.OTLPEndpoint, version)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, providers.Shutdown)

	a.obs = observability{
		contextualLogger: oteladapters.NewSlogBridgeLogger(instrumentationName),
		metrics:          oteladapters.NewMetricsCollector(otel.Meter(instrumentationName)),
		tracing:          oteladapters.NewTracingCollector(otel.Tracer(instrumentationName)),
		providers:        providers,
	}

	a.logger.Info("observability enabled", "endpoint", a.cfg.OTLPEndpoint)

	return nil
}

func (a *app) openStore(ctx context.Context) error {
	if a.cfg.DBAdapter == config.AdapterMemory {
		store, err := memengine.NewStore(memengine.WithLogger(a.logger))
		if err != nil {
			return err
		}
		a.store = store

		a.logger.Warn("using the in-memory store, nothing survives a restart")

		return nil
	}

	options := []postgresengine.Option{postgresengine.WithLogger(a.logger)}
	if a.obs.contextualLogger != nil {
		options = append(options, postgresengine.WithContextualLogger(a.obs.contextualLogger))
	}
	if a.obs.metrics != nil {
		options = append(options, postgresengine.WithMetrics(a.obs.metrics))
	}
	if a.obs.tracing != nil {
		options = append(options, postgresengine.WithTracing(a.obs.tracing))
	}

	store, err := a.openPostgresStore(ctx, options)
	if err != nil {
		return err
	}

	a.store = store
	a.pgStore = store

	return nil
}

func (a *app) openPostgresStore(ctx context.Context, options []postgresengine.Option) (*postgresengine.Store, error) {
	hasReplica := a.cfg.DBReplicaDSN != ""

	switch a.cfg.DBAdapter {
	case config.AdapterPGX:
		db, err := config.OpenPGXPool(ctx, a.cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { db.Close(); return nil })

		if !hasReplica {
			return postgresengine.NewStoreFromPGXPool(db, options...)
		}

		replica, err := config.OpenPGXPool(ctx, a.cfg.DBReplicaDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { replica.Close(); return nil })

		return postgresengine.NewStoreFromPGXPoolAndReplica(db, replica, options...)

	case config.AdapterSQL:
		db, err := config.OpenSQLDB(ctx, a.cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)

		if !hasReplica {
			return postgresengine.NewStoreFromSQLDB(db, options...)
		}

		replica, err := config.OpenSQLDB(ctx, a.cfg.DBReplicaDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, replica.Close)

		return postgresengine.NewStoreFromSQLDBAndReplica(db, replica, options...)

	case config.AdapterSQLX:
		db, err := config.OpenSQLX(ctx, a.cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)

		if !hasReplica {
			return postgresengine.NewStoreFromSQLX(db, options...)
		}

		replica, err := config.OpenSQLX(ctx, a.cfg.DBReplicaDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, replica.Close)

		return postgresengine.NewStoreFromSQLXAndReplica(db, replica, options...)

	default:
		return nil, fmt.Errorf("%w: unknown adapter %q", config.ErrInvalidConfig, a.cfg.DBAdapter)
	}
}

func (a *app) newGateway() (actions.CheckoutGateway, error) {
	if a.cfg.StripeSecretKey == "" {
		a.logger.Warn("no stripe key configured, using the in-memory checkout gateway")
		return checkout.NewMemoryGateway(), nil
	}

	gateway, err := checkout.NewStripeGateway(checkout.Config{
		SecretKey:  a.cfg.StripeSecretKey,
		Currency:   a.cfg.Currency,
		SuccessURL: a.cfg.CheckoutSuccessURL,
		CancelURL:  a.cfg.CheckoutCancelURL,
	})
	if err != nil {
		return nil, err
	}

	return gateway, nil
}

func (a *app) newNotifier() error {
	sinks, err := newSinks(a.cfg, a.logger)
	if err != nil {
		return err
	}

	options := []notify.Option{
		notify.WithTimeout(a.cfg.NotifyTimeout),
		notify.WithRetryOptions(
			shell.WithMaxAttempts(a.cfg.NotifyMaxAttempts),
			shell.WithBaseDelay(a.cfg.NotifyRetryBaseDelay),
		),
		notify.WithLogger(a.logger),
	}
	if a.obs.contextualLogger != nil {
		options = append(options, notify.WithContextualLogger(a.obs.contextualLogger))
	}
	if a.obs.metrics != nil {
		options = append(options, notify.WithMetrics(a.obs.metrics))
	}

	notifier, err := notify.NewNotifier(sinks, options...)
	if err != nil {
		_ = closeSinks(sinks)
		return err
	}

	a.notifier = notifier
	a.closers = append(a.closers, notifier.Close)

	return nil
}

// newSinks creates the configured sinks in order; on failure the already opened ones are closed.
func newSinks(cfg config.Config, logger shell.Logger) ([]notify.Sink, error) {
	sinks := make([]notify.Sink, 0, len(cfg.NotifySinks))

	for _, name := range cfg.NotifySinks {
		switch name {
		case config.SinkLog:
			sinks = append(sinks, notify.NewLogSink(logger))

		case config.SinkTelegram:
			client := &http.Client{Timeout: cfg.NotifyTimeout}
			sinks = append(sinks, notify.NewTelegramSink(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.TelegramChatID, client))

		case config.SinkRabbitMQ:
			sink, err := notify.NewRabbitMQSink(cfg.RabbitMQURL, cfg.RabbitMQQueue)
			if err != nil {
				return nil, errors.Join(err, closeSinks(sinks))
			}
			sinks = append(sinks, sink)

		case config.SinkKafka:
			sinks = append(sinks, notify.NewKafkaSink(cfg.KafkaBroker, cfg.KafkaTopic))

		default:
			return nil, errors.Join(
				fmt.Errorf("%w: unknown notification sink %q", config.ErrInvalidConfig, name),
				closeSinks(sinks),
			)
		}
	}

	return sinks, nil
}

func closeSinks(sinks []notify.Sink) error {
	var errs []error

	for _, sink := range sinks {
		if closer, ok := sink.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}

	return errors.Join(errs...)
}

// Close releases everything in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil

	return errors.Join(errs...)
}
