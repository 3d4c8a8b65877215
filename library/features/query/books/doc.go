// Package books implements the catalog read use cases: list all books and retrieve one book.
//
// Both queries are public and read-only. They tolerate slightly stale data and run with
// eventual consistency, so a configured read replica serves them.
package books
