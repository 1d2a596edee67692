// LazyBeagle manages the configuration of a self-hosted start-page
// dashboard: it merges the declarative dashboard documents over built-in
// defaults, keeps the user's overrides in a local SQLite store, and talks
// to the media services and image provider the dashboard shows.
//
// Process settings are loaded from a single YAML file discovered
// automatically (see [config.DefaultSearchPaths]); without one the
// built-in defaults are used.
//
// Usage:
//
//	lazybeagle show [path]              Print the merged configuration
//	lazybeagle set <path> <value>       Change a value (persisted as an override)
//	lazybeagle export [-f file]         Write the configuration as YAML
//	lazybeagle import <file>            Replace the configuration from YAML
//	lazybeagle reset                    Restore defaults and drop overrides
//	lazybeagle validate                 Check the configuration
//	lazybeagle services                 List enabled services
//	lazybeagle ping <type> [endpoint]   Call a configured service's API
//	lazybeagle background [theme]       Pick a background image
//	lazybeagle init [dir]               Write example settings and documents
//	lazybeagle -o json version          Output version information as JSON
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// main builds the OS-level environment (context, stdio, argv) and hands
// off to [run], keeping os.Exit and the process globals out of the
// command logic so tests can drive it directly.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "%s\n", err)
		}
		os.Exit(1)
	}
}

// run is the real entry point. Command output goes to stdout; logs go to
// stderr. A fresh command tree is built per call so concurrent tests do
// not share flag state.
func run(ctx context.Context, stdout io.Writer, stderr io.Writer, args []string) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
