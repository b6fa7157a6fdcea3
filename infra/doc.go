// Package infra holds the adapters behind the core interfaces: the
// constraint engine, document loading, logging, metrics sinks and schedule
// publishing. Adapters import core packages, never the reverse.
package infra
