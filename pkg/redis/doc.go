// Package redis opens go-redis clients with startup retries and exposes a
// healthcheck probe.
package redis
