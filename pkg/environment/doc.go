// Package environment names the deployment environment and carries it through
// request contexts so log records can be tagged with it.
package environment
