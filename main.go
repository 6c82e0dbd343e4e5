package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"

	"forge/pkg/build"
	"forge/pkg/config"
	"forge/pkg/ctxlog"
	"forge/pkg/source"
	"forge/pkg/target"
	"forge/pkg/toolchain"
	"forge/pkg/watch"
)

type CLI struct {
	Version bool   `short:"v" help:"Show version information"`
	Ext     string `help:"Override the configured source extension"`
	Verbose bool   `help:"Enable debug logging"`

	Build BuildCmd `cmd:"" default:"withargs" help:"Build stale artifacts in the specified directory"`
	Clean CleanCmd `cmd:"" help:"Delete all derived artifacts in the specified directory"`
	Plan  PlanCmd  `cmd:"" help:"Print the artifact chains and their staleness"`
	Watch WatchCmd `cmd:"" help:"Rebuild whenever a source file changes"`
}

type BuildCmd struct {
	Directory string `arg:"" optional:"" help:"Directory to build (defaults to current directory)"`
	Run       bool   `help:"Run each binary after it is linked"`
}

type CleanCmd struct {
	Directory string `arg:"" optional:"" help:"Directory to clean (defaults to current directory)"`
}

type PlanCmd struct {
	Directory string `arg:"" optional:"" help:"Directory to plan (defaults to current directory)"`
}

type WatchCmd struct {
	Directory string `arg:"" optional:"" help:"Directory to watch (defaults to current directory)"`
	Run       bool   `help:"Run each binary after it is linked"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli)

	if cli.Version {
		fmt.Println("forge version 1.0.0")
		return
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	runCtx := ctxlog.WithLogger(context.Background(), logger)

	var err error
	switch ctx.Command() {
	case "build <directory>", "build":
		err = runBuild(runCtx, cli, cli.Build.Directory, cli.Build.Run)
	case "clean <directory>", "clean":
		err = runClean(cli, cli.Clean.Directory)
	case "plan <directory>", "plan":
		err = runPlan(cli, cli.Plan.Directory)
	case "watch <directory>", "watch":
		err = runWatch(runCtx, cli, cli.Watch.Directory, cli.Watch.Run)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode propagates the failing tool's exit status where available.
func exitCode(err error) int {
	var failure *toolchain.BuildFailure
	if errors.As(err, &failure) && failure.ExitCode > 0 {
		return failure.ExitCode
	}
	return 1
}

// newSession discovers sources, derives chains and assembles a session
// for the given directory.
func newSession(cli CLI, directory string) (*build.Session, config.Config, string, error) {
	workDir := directory
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, config.Config{}, "", fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, config.Config{}, "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	cfg, err := config.Load(absDir)
	if err != nil {
		return nil, config.Config{}, "", err
	}
	if cli.Ext != "" {
		cfg.SourceExt = cli.Ext
	}

	units, err := source.Discover(absDir, cfg.SourceExt)
	if err != nil {
		return nil, config.Config{}, "", err
	}

	naming := target.Naming{SourceExt: cfg.SourceExt, ObjectExt: cfg.ObjectExt}
	chains, err := target.DeriveChains(units, naming)
	if err != nil {
		return nil, config.Config{}, "", err
	}

	session := &build.Session{
		Chains:   chains,
		Compiler: cfg.Compiler,
		Linker:   cfg.Linker,
		Invoker:  toolchain.Exec{},
		RunAfter: cfg.Run,
	}
	return session, cfg, absDir, nil
}

// Color constants
const (
	green = "\033[32m"
	red   = "\033[31m"
	cyan  = "\033[36m"
	gray  = "\033[90m"
	reset = "\033[0m"
)

func runBuild(ctx context.Context, cli CLI, directory string, runAfter bool) error {
	session, cfg, absDir, err := newSession(cli, directory)
	if err != nil {
		return err
	}
	if runAfter {
		session.RunAfter = true
	}

	if len(session.Chains) == 0 {
		fmt.Printf("No %s sources found in %s\n", cfg.SourceExt, absDir)
		return nil
	}

	session.Progress = func(res build.Result) {
		name := displayName(absDir, res.Chain.Source.Path)
		switch {
		case res.Err != nil:
			fmt.Printf("  %s✗%s %s\n", red, reset, name)
		case res.Compiled || res.Linked:
			detail := "linked"
			if res.Compiled {
				detail = "compiled, linked"
			}
			if res.Ran {
				detail = fmt.Sprintf("%s, ran (exit %d)", detail, res.RunExit)
			}
			fmt.Printf("  %s✓%s %s %s(%s)%s\n", green, reset, name, gray, detail, reset)
		default:
			fmt.Printf("  %s↻%s %s %s(up-to-date)%s\n", cyan, reset, name, gray, reset)
		}
	}

	_, err = session.Build(ctx)
	return err
}

func runClean(cli CLI, directory string) error {
	session, _, absDir, err := newSession(cli, directory)
	if err != nil {
		return err
	}

	if err := session.Clean(); err != nil {
		return err
	}

	fmt.Printf("Cleaned artifacts for %d sources in %s\n", len(session.Chains), absDir)
	return nil
}

func runPlan(cli CLI, directory string) error {
	session, cfg, absDir, err := newSession(cli, directory)
	if err != nil {
		return err
	}

	if len(session.Chains) == 0 {
		fmt.Printf("No %s sources found in %s\n", cfg.SourceExt, absDir)
		return nil
	}

	statuses, err := session.Plan()
	if err != nil {
		return err
	}

	fmt.Printf("Planning Directory: %s\n", absDir)
	for _, cs := range statuses {
		fmt.Printf("- %s%s%s\n", green, displayName(absDir, cs.Chain.Source.Path), reset)
		fmt.Printf("    -> %s %s\n", displayName(absDir, cs.Chain.Object.Path), statusLabel(cs.Object))
		fmt.Printf("    -> %s %s\n", displayName(absDir, cs.Chain.Binary.Path), statusLabel(cs.Binary))
	}
	return nil
}

func runWatch(ctx context.Context, cli CLI, directory string, runAfter bool) error {
	// Resolve configuration and fail early on discovery errors; the
	// watch loop itself rediscovers sources on every rebuild.
	_, cfg, absDir, err := newSession(cli, directory)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Printf("Watching %s for %s changes\n", absDir, cfg.SourceExt)

	watcher := &watch.Watcher{
		Dir: absDir,
		Ext: cfg.SourceExt,
		Rebuild: func(ctx context.Context) error {
			return runBuild(ctx, cli, directory, runAfter)
		},
	}

	err = watcher.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func statusLabel(s build.Status) string {
	switch s {
	case build.UpToDate:
		return fmt.Sprintf("%s[up-to-date]%s", green, reset)
	case build.Stale:
		return fmt.Sprintf("%s[stale]%s", cyan, reset)
	default:
		return fmt.Sprintf("%s[missing]%s", red, reset)
	}
}

func displayName(baseDir, path string) string {
	relPath, err := filepath.Rel(baseDir, path)
	if err != nil {
		return path
	}
	return relPath
}
