// Package config holds the explicit configuration object of the book rental service
// and the factories built from it: PostgreSQL connections for the pgx, database/sql
// and sqlx adapters, and the OpenTelemetry providers.
//
// A Config is loaded once at startup with FromEnv, optionally overridden by flags,
// validated, and then passed to the components that need it. Nothing reads
// global settings afterwards.
package config
