package build

import (
	"fmt"

	"forge/pkg/target"
)

// ChainStatus is the staleness of one chain as Plan computed it.
type ChainStatus struct {
	Chain  target.Chain
	Object Status
	Binary Status
}

// Plan evaluates every chain's staleness without executing anything.
// A binary whose object needs rebuilding is reported stale even if its
// own timestamp looks current, since the rebuilt object will outdate it.
func (s *Session) Plan() ([]ChainStatus, error) {
	statuses := make([]ChainStatus, 0, len(s.Chains))

	for _, chain := range s.Chains {
		srcTime, err := modTime(chain.Source.Path)
		if err != nil {
			return nil, fmt.Errorf("cannot stat source %s: %w", chain.Source.Path, err)
		}

		cs := ChainStatus{Chain: chain}
		cs.Object = Evaluate(chain.Object.Path, srcTime)

		if cs.Object != UpToDate {
			cs.Binary = Stale
		} else {
			objTime, err := modTime(chain.Object.Path)
			if err != nil {
				return nil, fmt.Errorf("cannot stat object %s: %w", chain.Object.Path, err)
			}
			cs.Binary = Evaluate(chain.Binary.Path, objTime)
		}

		statuses = append(statuses, cs)
	}

	return statuses, nil
}
