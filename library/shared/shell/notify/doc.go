// Package notify delivers side-channel messages about borrowings and payments.
//
// A Notifier fans one message out to its sinks (Telegram, RabbitMQ, Kafka, log).
// Delivery is fire-and-forget: Notify only queues the message, and one background goroutine
// delivers it to each sink, retried with exponential backoff inside a timeout.
// A failure is logged at warn level but never returned to the caller, so it can not
// roll back the operation that triggered it. A full queue drops the message.
// Close drains the queue before closing the sinks.
package notify
