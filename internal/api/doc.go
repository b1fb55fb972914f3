// Package api exposes the service over HTTP: REST endpoints for tag
// creation, subscriptions and publishing, plus the websocket endpoint the
// session protocol runs on.
package api
