package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Supported values of DBAdapter.
const (
	AdapterPGX    = "pgx"
	AdapterSQL    = "sql"
	AdapterSQLX   = "sqlx"
	AdapterMemory = "memory"
)

// Supported values in NotifySinks.
const (
	SinkLog      = "log"
	SinkTelegram = "telegram"
	SinkRabbitMQ = "rabbitmq"
	SinkKafka    = "kafka"
)

const (
	envDBAdapter             = "RENTAL_DB_ADAPTER"
	envDBDSN                 = "RENTAL_DB_DSN"
	envDBReplicaDSN          = "RENTAL_DB_REPLICA_DSN"
	envStripeSecretKey       = "RENTAL_STRIPE_SECRET_KEY"
	envCheckoutSuccessURL    = "RENTAL_CHECKOUT_SUCCESS_URL"
	envCheckoutCancelURL     = "RENTAL_CHECKOUT_CANCEL_URL"
	envCurrency              = "RENTAL_CURRENCY"
	envNotifySinks           = "RENTAL_NOTIFY_SINKS"
	envTelegramBotToken      = "RENTAL_TELEGRAM_BOT_TOKEN"
	envTelegramChatID        = "RENTAL_TELEGRAM_CHAT_ID"
	envTelegramAPIURL        = "RENTAL_TELEGRAM_API_URL"
	envRabbitMQURL           = "RENTAL_RABBITMQ_URL"
	envRabbitMQQueue         = "RENTAL_RABBITMQ_QUEUE"
	envKafkaBroker           = "RENTAL_KAFKA_BROKER"
	envKafkaTopic            = "RENTAL_KAFKA_TOPIC"
	envNotifyTimeout         = "RENTAL_NOTIFY_TIMEOUT"
	envNotifyMaxAttempts     = "RENTAL_NOTIFY_MAX_ATTEMPTS"
	envNotifyRetryBaseDelay  = "RENTAL_NOTIFY_RETRY_BASE_DELAY"
	envOverdueScanSchedule   = "RENTAL_OVERDUE_SCAN_SCHEDULE"
	envSessionExpirySchedule = "RENTAL_SESSION_EXPIRY_SCHEDULE"
	envObservabilityEnabled  = "RENTAL_OBSERVABILITY_ENABLED"
	envOTLPEndpoint          = "RENTAL_OTLP_ENDPOINT"
	envBusinessRuleStatus    = "RENTAL_BUSINESS_RULE_STATUS"
)

const (
	defaultCurrency              = "usd"
	defaultTelegramAPIURL        = "https://api.telegram.org"
	defaultRabbitMQQueue         = "rental.notifications"
	defaultKafkaTopic            = "rental.notifications"
	defaultNotifyTimeout         = 5 * time.Second
	defaultNotifyMaxAttempts     = 3
	defaultNotifyRetryBaseDelay  = 100 * time.Millisecond
	defaultOverdueScanSchedule   = "0 0 9 * * *"
	defaultSessionExpirySchedule = "0 */10 * * * *"
	defaultOTLPEndpoint          = "localhost:4317"
	defaultBusinessRuleStatus    = 403
)

var (
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrParsingEnvVariable = errors.New("parsing environment variable failed")
)

// Config is the complete configuration of the service.
type Config struct {
	DBAdapter    string
	DBDSN        string
	DBReplicaDSN string

	StripeSecretKey    string
	CheckoutSuccessURL string
	CheckoutCancelURL  string
	Currency           string

	NotifySinks   []string
	NotifyTimeout time.Duration
	// NotifyMaxAttempts and NotifyRetryBaseDelay tune the retries of one delivery to one sink.
	NotifyMaxAttempts    int
	NotifyRetryBaseDelay time.Duration
	TelegramBotToken     string
	TelegramChatID       string
	TelegramAPIURL       string
	RabbitMQURL          string
	RabbitMQQueue        string
	KafkaBroker          string
	KafkaTopic           string

	OverdueScanSchedule   string
	SessionExpirySchedule string

	ObservabilityEnabled bool
	OTLPEndpoint         string

	// BusinessRuleStatus is the status code reported for business rule violations: 403 or 400.
	BusinessRuleStatus int
}

// Default returns a Config with all defaults set: an in-memory store and log notifications.
func Default() Config {
	return Config{
		DBAdapter:             AdapterMemory,
		Currency:              defaultCurrency,
		NotifySinks:           []string{SinkLog},
		NotifyTimeout:         defaultNotifyTimeout,
		NotifyMaxAttempts:     defaultNotifyMaxAttempts,
		NotifyRetryBaseDelay:  defaultNotifyRetryBaseDelay,
		TelegramAPIURL:        defaultTelegramAPIURL,
		RabbitMQQueue:         defaultRabbitMQQueue,
		KafkaTopic:            defaultKafkaTopic,
		OverdueScanSchedule:   defaultOverdueScanSchedule,
		SessionExpirySchedule: defaultSessionExpirySchedule,
		OTLPEndpoint:          defaultOTLPEndpoint,
		BusinessRuleStatus:    defaultBusinessRuleStatus,
	}
}

// FromEnv loads the Config from the environment, falling back to the defaults for unset variables.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	setString := func(key string, target *string) {
		if value, ok := lookup(key); ok && value != "" {
			*target = value
		}
	}

	setString(envDBAdapter, &cfg.DBAdapter)
	setString(envDBDSN, &cfg.DBDSN)
	setString(envDBReplicaDSN, &cfg.DBReplicaDSN)
	setString(envStripeSecretKey, &cfg.StripeSecretKey)
	setString(envCheckoutSuccessURL, &cfg.CheckoutSuccessURL)
	setString(envCheckoutCancelURL, &cfg.CheckoutCancelURL)
	setString(envCurrency, &cfg.Currency)
	setString(envTelegramBotToken, &cfg.TelegramBotToken)
	setString(envTelegramChatID, &cfg.TelegramChatID)
	setString(envTelegramAPIURL, &cfg.TelegramAPIURL)
	setString(envRabbitMQURL, &cfg.RabbitMQURL)
	setString(envRabbitMQQueue, &cfg.RabbitMQQueue)
	setString(envKafkaBroker, &cfg.KafkaBroker)
	setString(envKafkaTopic, &cfg.KafkaTopic)
	setString(envOverdueScanSchedule, &cfg.OverdueScanSchedule)
	setString(envSessionExpirySchedule, &cfg.SessionExpirySchedule)
	setString(envOTLPEndpoint, &cfg.OTLPEndpoint)

	if value, ok := lookup(envNotifySinks); ok && value != "" {
		cfg.NotifySinks = SplitList(value)
	}

	var errs []error

	if value, ok := lookup(envNotifyTimeout); ok && value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrParsingEnvVariable, envNotifyTimeout, err))
		}
		cfg.NotifyTimeout = timeout
	}

	if value, ok := lookup(envNotifyMaxAttempts); ok && value != "" {
		attempts, err := strconv.Atoi(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrParsingEnvVariable, envNotifyMaxAttempts, err))
		}
		cfg.NotifyMaxAttempts = attempts
	}

	if value, ok := lookup(envNotifyRetryBaseDelay); ok && value != "" {
		delay, err := time.ParseDuration(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrParsingEnvVariable, envNotifyRetryBaseDelay, err))
		}
		cfg.NotifyRetryBaseDelay = delay
	}

	if value, ok := lookup(envObservabilityEnabled); ok && value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrParsingEnvVariable, envObservabilityEnabled, err))
		}
		cfg.ObservabilityEnabled = enabled
	}

	if value, ok := lookup(envBusinessRuleStatus); ok && value != "" {
		status, err := strconv.Atoi(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrParsingEnvVariable, envBusinessRuleStatus, err))
		}
		cfg.BusinessRuleStatus = status
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	return cfg, nil
}

// Validate checks that every enabled component has what it needs.
func (c Config) Validate() error {
	var errs []error

	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	switch c.DBAdapter {
	case AdapterPGX, AdapterSQL, AdapterSQLX:
		if c.DBDSN == "" {
			invalid("%s is required for the %s adapter", envDBDSN, c.DBAdapter)
		}
	case AdapterMemory:
	default:
		invalid("unknown %s %q", envDBAdapter, c.DBAdapter)
	}

	if c.StripeSecretKey != "" && (c.CheckoutSuccessURL == "" || c.CheckoutCancelURL == "") {
		invalid("%s and %s are required with a stripe key", envCheckoutSuccessURL, envCheckoutCancelURL)
	}

	for _, sink := range c.NotifySinks {
		switch sink {
		case SinkLog:
		case SinkTelegram:
			if c.TelegramBotToken == "" || c.TelegramChatID == "" {
				invalid("%s and %s are required for the telegram sink", envTelegramBotToken, envTelegramChatID)
			}
		case SinkRabbitMQ:
			if c.RabbitMQURL == "" {
				invalid("%s is required for the rabbitmq sink", envRabbitMQURL)
			}
		case SinkKafka:
			if c.KafkaBroker == "" {
				invalid("%s is required for the kafka sink", envKafkaBroker)
			}
		default:
			invalid("unknown notification sink %q", sink)
		}
	}

	if c.NotifyTimeout <= 0 {
		invalid("%s must be positive", envNotifyTimeout)
	}

	if c.NotifyMaxAttempts <= 0 {
		invalid("%s must be positive", envNotifyMaxAttempts)
	}

	if c.NotifyRetryBaseDelay < 0 {
		invalid("%s must not be negative", envNotifyRetryBaseDelay)
	}

	if c.BusinessRuleStatus != 400 && c.BusinessRuleStatus != 403 {
		invalid("%s must be 400 or 403", envBusinessRuleStatus)
	}

	return errors.Join(errs...)
}

// HasSink reports whether the named notification sink is enabled.
func (c Config) HasSink(sink string) bool {
	return slices.Contains(c.NotifySinks, sink)
}

// SplitList splits a comma separated list, trimming blanks and dropping empty items.
func SplitList(value string) []string {
	items := make([]string, 0)

	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}
