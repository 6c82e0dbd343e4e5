// Package target derives the per-source artifact chains of a build.
package target

// Kind distinguishes the two derived artifact types.
type Kind int

const (
	// Intermediate is the object file produced by the compiler.
	Intermediate Kind = iota
	// Binary is the executable produced by the linker.
	Binary
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case Intermediate:
		return "object"
	case Binary:
		return "binary"
	default:
		return "unknown"
	}
}

// Artifact is a build product derived from exactly one source file by
// suffix substitution. Its existence and modification time on disk are
// the only persisted build state.
type Artifact struct {
	Kind Kind
	Path string
}
