// Package clientip resolves the address of the client behind a request and
// carries it in the request context.
//
// Forwarding headers are only meaningful when a trusted proxy sets them; run
// the service behind one or strip them at the edge.
package clientip
