// Package longtermmemory provides the foundational data layer for cross-session long-term memory.
// It defines the file format, directory layout, Go types, and storage interface that the
// capture pipeline and retrieval engine depend on.
package longtermmemory
