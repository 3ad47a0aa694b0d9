// Package memserver is an in-memory card backend. It implements
// remote.Client for in-process use (the -demo mode and tests) and
// http.Handler so cmd/cardserver can serve it to a real HTTP client.
// Card ids come from uuid.NewString unless Options.NewID is set.
package memserver
