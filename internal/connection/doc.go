// Package connection implements the transport collaborator used by the supervisor.
//
// A Transport:
//   - Opens one connection per Connect call without blocking the caller
//   - Reports open, every inbound message and the final close through a Handler
//   - Fires OnClose exactly once per connection, including when the dial fails
//   - Sends outbound payloads as WebSocket text frames
package connection
