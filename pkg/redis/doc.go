// Package redis wraps the go-redis client with connect-with-retry and
// healthcheck helpers. The notification service uses Redis Pub/Sub as the
// cluster-wide broadcast bus backend; see pkg/broadcast.
package redis
