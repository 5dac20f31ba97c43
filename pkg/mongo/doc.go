// Package mongo opens MongoDB clients (mongo-driver v2) with startup retries
// and exposes a healthcheck probe.
package mongo
