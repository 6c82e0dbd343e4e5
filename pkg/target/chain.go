package target

import (
	"fmt"
	"strings"

	"forge/pkg/source"
)

// Chain is the dependency chain derived from one source unit:
// source → object → binary. The object depends on the source and the
// binary depends on the object; chains never share artifacts.
type Chain struct {
	Source source.Unit
	Object Artifact
	Binary Artifact
}

// Naming holds the suffix substitution rules used to derive artifact
// paths from source paths.
type Naming struct {
	// SourceExt is the extension stripped from the source file name.
	SourceExt string
	// ObjectExt is the suffix appended to the stem for the object file.
	ObjectExt string
}

// Derive maps one source unit to its artifact chain. The binary path
// is the bare stem; the object path is the stem plus ObjectExt.
func (n Naming) Derive(u source.Unit) Chain {
	stem := strings.TrimSuffix(u.Path, n.SourceExt)
	return Chain{
		Source: u,
		Object: Artifact{Kind: Intermediate, Path: stem + n.ObjectExt},
		Binary: Artifact{Kind: Binary, Path: stem},
	}
}

// NamingConflictError reports two distinct sources mapping to the same
// artifact path. Building either would silently overwrite the other's
// output, so the conflict is fatal before any build work starts.
type NamingConflictError struct {
	ArtifactPath string
	FirstSource  string
	SecondSource string
}

func (e *NamingConflictError) Error() string {
	return fmt.Sprintf("artifact path %s derived from both %s and %s",
		e.ArtifactPath, e.FirstSource, e.SecondSource)
}

// DeriveChains maps every source unit to its chain, preserving the
// input order. Artifact paths must be injective over the source set
// and must not collide with any source path; either collision returns
// a NamingConflictError. Building a chain whose artifact lands on a
// source would overwrite the source and cleanup would delete it.
func DeriveChains(units []source.Unit, naming Naming) ([]Chain, error) {
	chains := make([]Chain, 0, len(units))
	owner := make(map[string]string)
	for _, u := range units {
		owner[u.Path] = u.Path
	}

	for _, u := range units {
		c := naming.Derive(u)
		for _, a := range []Artifact{c.Object, c.Binary} {
			if prev, taken := owner[a.Path]; taken {
				return nil, &NamingConflictError{
					ArtifactPath: a.Path,
					FirstSource:  prev,
					SecondSource: u.Path,
				}
			}
			owner[a.Path] = u.Path
		}
		chains = append(chains, c)
	}

	return chains, nil
}

// Artifacts returns every derived artifact across the chains, objects
// before binaries within each chain, in chain order.
func Artifacts(chains []Chain) []Artifact {
	artifacts := make([]Artifact, 0, 2*len(chains))
	for _, c := range chains {
		artifacts = append(artifacts, c.Object, c.Binary)
	}
	return artifacts
}
