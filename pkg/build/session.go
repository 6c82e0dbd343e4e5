// Package build walks the artifact chains of one session, rebuilding
// whatever is stale and cleaning up derived artifacts.
package build

import (
	"context"
	"fmt"
	"os"
	"time"

	"forge/pkg/ctxlog"
	"forge/pkg/target"
	"forge/pkg/toolchain"
)

// Status describes an artifact relative to its single dependency.
type Status int

const (
	// UpToDate means the artifact exists and is not older than its dependency.
	UpToDate Status = iota
	// Missing means the artifact does not exist on disk.
	Missing
	// Stale means the artifact is older than its dependency.
	Stale
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case UpToDate:
		return "up-to-date"
	case Missing:
		return "missing"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Result describes what the session did to one chain. It is the
// outcome surfaced per source file, including the first failure.
type Result struct {
	Chain target.Chain
	// Compiled is true when the object file was rebuilt.
	Compiled bool
	// Linked is true when the binary was rebuilt.
	Linked bool
	// Ran is true when the binary was executed after linking.
	Ran bool
	// RunExit is the binary's exit status when Ran is true.
	RunExit int
	// Err is the failure that aborted the session, if any.
	Err error
}

// Progress receives the result of each chain as the session executes.
type Progress func(Result)

// Session owns one invocation of the tool over one directory. It is
// the sole mutator of the artifact namespace for its lifetime;
// concurrent sessions over the same directory are undefined.
type Session struct {
	Chains   []target.Chain
	Compiler toolchain.Tool
	Linker   toolchain.Tool
	Invoker  toolchain.Invoker
	// RunAfter executes each binary after it is first linked this session.
	RunAfter bool
	// Runner executes a linked binary. Defaults to toolchain.Run.
	Runner func(ctx context.Context, path string) (int, error)
	// Progress, when set, is called once per processed chain.
	Progress Progress
}

// Build walks the chains strictly sequentially in discovery order,
// dependency before dependent, rebuilding stale artifacts. The first
// failure aborts the whole session: no later chain is attempted.
func (s *Session) Build(ctx context.Context) ([]Result, error) {
	var results []Result
	for _, chain := range s.Chains {
		res := s.buildChain(ctx, chain)
		results = append(results, res)
		if s.Progress != nil {
			s.Progress(res)
		}
		if res.Err != nil {
			return results, res.Err
		}
	}
	return results, nil
}

func (s *Session) buildChain(ctx context.Context, chain target.Chain) Result {
	res := Result{Chain: chain}
	log := ctxlog.FromContext(ctx)

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	srcTime, err := modTime(chain.Source.Path)
	if err != nil {
		res.Err = fmt.Errorf("cannot stat source %s: %w", chain.Source.Path, err)
		return res
	}

	objStatus := Evaluate(chain.Object.Path, srcTime)
	log.Debug("evaluated object", "path", chain.Object.Path, "status", objStatus.String())
	if objStatus != UpToDate {
		if err := s.Invoker.Invoke(ctx, toolchain.RoleCompile, s.Compiler, chain.Source.Path, chain.Object.Path); err != nil {
			res.Err = err
			return res
		}
		res.Compiled = true
	}

	// A freshly rebuilt object makes the binary stale regardless of
	// recorded timestamps.
	binStale := res.Compiled
	if !binStale {
		objTime, err := modTime(chain.Object.Path)
		if err != nil {
			res.Err = fmt.Errorf("cannot stat object %s: %w", chain.Object.Path, err)
			return res
		}
		binStale = Evaluate(chain.Binary.Path, objTime) != UpToDate
	}
	log.Debug("evaluated binary", "path", chain.Binary.Path, "stale", binStale)

	if !binStale {
		return res
	}

	if err := s.Invoker.Invoke(ctx, toolchain.RoleLink, s.Linker, chain.Object.Path, chain.Binary.Path); err != nil {
		res.Err = err
		return res
	}
	res.Linked = true

	if s.RunAfter {
		runner := s.Runner
		if runner == nil {
			runner = toolchain.Run
		}
		exit, err := runner(ctx, chain.Binary.Path)
		if err != nil {
			// Running the program is a convenience action, not part of
			// the build contract.
			log.Warn("could not run binary", "path", chain.Binary.Path, "error", err)
		} else {
			res.Ran = true
			res.RunExit = exit
		}
	}

	return res
}

// Evaluate reports the status of an artifact against its dependency's
// modification time. Any stat failure counts as missing, which forces
// a rebuild.
func Evaluate(path string, depTime time.Time) Status {
	info, err := os.Stat(path)
	if err != nil {
		return Missing
	}
	if info.ModTime().Before(depTime) {
		return Stale
	}
	return UpToDate
}

func modTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
