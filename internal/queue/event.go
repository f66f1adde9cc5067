// Package queue defines message payloads exchanged over the message broker.
package queue

// EmailQueueName is the durable queue carrying outbound email
// notifications. The auth service publishes to it; the bundled
// consumer (or an external delivery worker) drains it.
const EmailQueueName = "notification.email"

// EmailNotification is published whenever the service needs to reach a
// user by email, carrying everything a delivery worker needs without
// querying the primary database.
type EmailNotification struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	QueuedAt string `json:"queued_at"`
}
