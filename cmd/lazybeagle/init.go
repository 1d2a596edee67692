package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nugget/lazybeagle/examples"
	"github.com/nugget/lazybeagle/internal/config"
)

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Initialize a directory with example settings and dashboard documents (default: .)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd.OutOrStdout(), dir)
		},
	}
}

// runInit writes the example settings file and dashboard documents into
// dir. The documents go to public/, which is where the example settings
// point. Existing files are never overwritten.
func runInit(w io.Writer, dir string) error {
	fmt.Fprintf(w, "Initializing LazyBeagle in %s\n", dir)

	for _, sub := range []string{"data", "public"} {
		path := filepath.Join(dir, sub)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
	}

	// The settings file may hold credentials.
	settingsPath := filepath.Join(dir, config.FileName)
	if err := writeIfMissing(w, settingsPath, examples.SettingsYAML, 0o600); err != nil {
		return err
	}

	err := fs.WalkDir(examples.Dashboard, "dashboard", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}

		content, err := examples.Dashboard.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read embedded %s: %w", path, err)
		}
		return writeIfMissing(w, filepath.Join(dir, "public", d.Name()), content, 0o644)
	})
	if err != nil {
		return fmt.Errorf("install dashboard documents: %w", err)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Edit %s and the documents in public/ to customize your dashboard.\n", config.FileName)
	fmt.Fprintln(w, "Run 'lazybeagle validate' to check the result.")
	return nil
}

// writeIfMissing creates path with content and mode unless it already
// exists. O_EXCL makes the existence check and the create one step.
func writeIfMissing(w io.Writer, path string, content []byte, mode os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if errors.Is(err, fs.ErrExist) {
		fmt.Fprintf(w, "  - %s (exists, skipping)\n", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if _, err := f.Write(content); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	fmt.Fprintf(w, "  ✓ %s\n", path)
	return nil
}
