// Package remote defines the boundary between cardwatch and the GraphQL
// endpoint it talks to.
//
// # Overview
//
// The cache and lifecycle packages never speak the wire protocol. They hand an
// Operation (name plus document) and a Variables map to a Client and get back
// either a Payload (the response "data" object) or an *Error.
//
//   - remote.go: Operation, Variables, Payload, Client and Error
//   - client.go: HTTPClient, the GraphQL-over-HTTP implementation
//
// # Wire Format
//
// Every operation is a POST to the configured endpoint:
//
//	{"query": "...", "operationName": "CardsListQuery", "variables": {...}}
//
// and the response is decoded as:
//
//	{"data": {"cards": [...]}, "errors": [{"message": "..."}]}
//
// # Error Handling
//
// All failures come back as *Error so callers can errors.As once:
//
//   - Network errors (connection refused, timeout): Err holds the cause
//   - HTTP status >= 400: Message carries the status code
//   - Undecodable body: Message starts with "decode response"
//   - Non-empty "errors" array: messages joined with "; "
//
// The client never retries. Retrying is left to callers (for example a
// manual refetch).
package remote
