// Package pg provides PostgreSQL connectivity helpers for the notification
// service: pool creation with retry, goose migration wiring, and error
// classification used to map SQLSTATE codes to domain error semantics.
package pg
