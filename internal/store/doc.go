// Package store provides the durable record store behind the notification
// pipeline: tags, notifications, subscriptions and per-user delivery
// records, with the uniqueness invariants the fan-out engine relies on.
//
// Postgres is the production implementation; Memory backs tests and local
// development with the same semantics.
package store
