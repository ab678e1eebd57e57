// Package main is the entry point for the inkwell workspace tool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/inkwelldev/inkwell/internal/app"
	"github.com/inkwelldev/inkwell/internal/integration/git"
	"github.com/inkwelldev/inkwell/internal/project"
	"github.com/inkwelldev/inkwell/internal/project/watcher"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

type options struct {
	configPath string
	statePath  string
	watch      bool
	roots      []string
}

func run() int {
	opts := parseFlags()

	application, err := app.New(app.Options{
		ConfigPath: opts.configPath,
		Watch:      opts.watch,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	ctx := context.Background()
	defer application.Close(ctx)

	if err := application.Open(ctx, opts.roots...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open project: %v\n", err)
		return 1
	}

	proj := application.Project()

	if opts.statePath != "" {
		if err := restoreState(ctx, proj, opts.statePath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to restore state: %v\n", err)
			return 1
		}
	}

	printRoots(proj)

	if opts.watch {
		waitForChanges(application)
	}

	if opts.statePath != "" {
		if err := saveState(proj, opts.statePath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to save state: %v\n", err)
			return 1
		}
	}

	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.statePath, "state", "", "Path to session state, restored on start and saved on exit")
	flag.BoolVar(&opts.watch, "watch", false, "Keep running and log file changes until interrupted")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Inkwell - workspace and repository inspector\n\n")
		fmt.Fprintf(os.Stderr, "Usage: inkwell [options] [roots...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  inkwell .                        Open the current directory\n")
		fmt.Fprintf(os.Stderr, "  inkwell -watch ./src ./docs      Watch two roots for changes\n")
		fmt.Fprintf(os.Stderr, "  inkwell -state session.json .    Restore and save session state\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("Inkwell %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	opts.roots = flag.Args()
	return opts
}

// restoreState loads a previous session. A missing state file is a
// first run, not an error.
func restoreState(ctx context.Context, proj *project.Project, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return proj.Restore(ctx, data)
}

// saveState writes the session so the next run can pick it up.
func saveState(proj *project.Project, path string) error {
	data, err := proj.Serialize()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// printRoots lists each root with its resolved repository.
func printRoots(proj *project.Project) {
	paths := proj.Paths()
	if len(paths) == 0 {
		fmt.Println("no roots open")
		return
	}

	repos := proj.Repositories()
	for i, path := range paths {
		if i < len(repos) {
			if repo, ok := repos[i].(*git.Repository); ok {
				fmt.Printf("%s (%s)\n", path, describeRepository(repo))
				continue
			}
		}
		fmt.Println(path)
	}
}

// describeRepository renders branch and head for a root's repository.
func describeRepository(repo *git.Repository) string {
	head, err := repo.Head()
	if err != nil {
		return "git"
	}
	switch {
	case head.Detached:
		return "git detached @ " + head.ShortName
	case head.Hash == "":
		return "git " + head.ShortName + ", no commits"
	default:
		hash := head.Hash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		return fmt.Sprintf("git %s @ %s", head.ShortName, hash)
	}
}

// waitForChanges logs file events until the process is interrupted.
func waitForChanges(application *app.Application) {
	logger := application.Logger()
	application.Project().OnFileChange(func(event watcher.Event) {
		logger.Info("%s %s", event.Op, event.Path)
	})

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	fmt.Println("watching for changes (interrupt to stop)")
	<-signals
}
