// Package core contains the pure domain of the book rental service:
// books, borrowings, payments, checkout sessions, money and date arithmetic,
// the error taxonomy and the texts of the notifications.
//
// Nothing in this package performs I/O. The Decide functions of the features
// take the current state plus a command and return a DecisionResult,
// the imperative shell applies it to the store and to external collaborators.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
