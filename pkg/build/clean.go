package build

import (
	"fmt"
	"os"

	"forge/pkg/target"
)

// CleanupError reports an artifact that could not be deleted for a
// reason other than being absent.
type CleanupError struct {
	Path string
	Err  error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("cannot delete artifact %s: %v", e.Path, e.Err)
}

func (e *CleanupError) Unwrap() error {
	return e.Err
}

// Clean deletes every derived artifact of the session's chains,
// independent of staleness. Absent artifacts are skipped, so cleaning
// twice succeeds both times. Source files are never touched.
func (s *Session) Clean() error {
	for _, artifact := range target.Artifacts(s.Chains) {
		if err := os.Remove(artifact.Path); err != nil && !os.IsNotExist(err) {
			return &CleanupError{Path: artifact.Path, Err: err}
		}
	}
	return nil
}
