// Package broadcast implements the group-keyed publish/subscribe bus that
// routes delivery events to the live sessions of one user.
//
// A group key addresses all sessions of a single user; joining returns a
// Subscriber whose channel receives every message published to that group
// while it is joined. There is no buffering for absent groups and no
// replay: durable state is always recovered through the record store, not
// the bus.
//
// Two implementations are provided: MemoryBus for single-process
// deployments and tests, and RedisBus on Redis Pub/Sub for clustered
// deployments where publisher and session may live in different processes.
package broadcast
