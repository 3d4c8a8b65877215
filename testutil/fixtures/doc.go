// Package fixtures builds catalog records and calendar days for tests of the rental store
// and the feature handlers.
//
// This is testing infrastructure, not production code.
package fixtures
