// Package factory instantiates pluggable components, such as metrics sinks,
// from configuration entries of the form {type, conf}. Each component kind
// owns a Registry; factories decode their raw conf map with Decode.
package factory
