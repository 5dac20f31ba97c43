// Package binder decodes request bodies into typed values for handler.Wrap.
package binder
