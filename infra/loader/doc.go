// Package loader reads the projects, resources and holidays documents into
// the core model. Documents may be JSON or YAML; the format is chosen from
// the file extension.
package loader
