// Package session implements the per-connection protocol state machine:
// Connecting -> Authenticated -> Active -> Closed.
//
// A connecting client presents a bearer token as the "token" query
// parameter. Once verified, the session joins the user's broadcast group
// and serves the inbound message types (notifications_list, read,
// deleted) while pushing delivery events and read/delete propagations
// from the group. Unrecognized types are ignored. Closing the transport
// deterministically leaves the group before the session goroutine exits.
package session
