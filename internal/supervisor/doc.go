// Package supervisor implements the Connection Supervisor component.
//
// The Connection Supervisor:
//   - Drives one transport connection at a time to a single address
//   - Sends the auth payload once per open, fire-and-forget
//   - Sends a heartbeat payload on a fixed interval while the connection is live
//   - Reconnects after every close with geometric backoff, for a bounded number of attempts
//   - Hands inbound payloads to the consumer callback
//
// All state transitions run on one event-loop goroutine. Transport callbacks and
// timer expirations are queued to it, so no state is shared between goroutines.
package supervisor
