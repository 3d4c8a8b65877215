// Package memengine provides an in-memory implementation of the rental store.
//
// It serves local runs without a database and tests. Transactions are serialized by
// a single writer lock and every change is rolled back when the unit of work fails,
// so it offers the same all-or-nothing behavior as the PostgreSQL engine.
//
// Store reads acquire the same lock, so they must not be called from inside a TxFunc.
// Use the Tx passed to the TxFunc instead.
package memengine
