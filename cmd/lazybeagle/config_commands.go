package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nugget/lazybeagle/internal/dashboard"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show [path]",
		Short: "Print the merged dashboard configuration, or one value",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				out := cmd.OutOrStdout()
				if len(args) == 0 {
					if ctx.jsonOutput() {
						return writeJSON(out, a.store.Tree())
					}
					text, err := a.store.Export()
					if err != nil {
						return err
					}
					_, err = io.WriteString(out, text)
					return err
				}

				p, err := dashboard.ParsePath(args[0])
				if err != nil {
					return err
				}
				v, ok := a.store.GetPath(p)
				if !ok {
					return fmt.Errorf("no value at %s", p)
				}
				return printValue(out, v, ctx.jsonOutput())
			})
		},
	}
}

// printValue writes scalars bare and collections as YAML.
func printValue(w io.Writer, v any, asJSON bool) error {
	if asJSON {
		return writeJSON(w, v)
	}
	switch v.(type) {
	case map[string]any, []any:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	case nil:
		_, err := fmt.Fprintln(w, "null")
		return err
	default:
		_, err := fmt.Fprintln(w, v)
		return err
	}
}

// parseValue reads a command-line value as YAML so that numbers,
// booleans, and flow collections keep their types.
func parseValue(raw string, asString bool) (any, error) {
	if asString || strings.TrimSpace(raw) == "" {
		return raw, nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("parse value %q: %w", raw, err)
	}
	return v, nil
}

func newSetCommand(ctx *commandContext) *cobra.Command {
	var asString bool

	cmd := &cobra.Command{
		Use:   "set <path> <value>",
		Short: "Change a configuration value",
		Long: `Change a configuration value. The value is read as YAML, so
"8" is a number, "true" a boolean and "[a, b]" a list. Use --string to
store the text as-is. Changes to api_keys and dashboard are kept as
overrides across reloads.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseValue(args[1], asString)
			if err != nil {
				return err
			}
			return ctx.withApp(cmd.Context(), func(a *app) error {
				if err := a.store.Set(args[0], value); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asString, "string", false, "Store the value as a string without YAML parsing")
	return cmd
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				text, err := a.store.Export()
				if err != nil {
					return err
				}
				if file == "" {
					_, err := io.WriteString(cmd.OutOrStdout(), text)
					return err
				}
				if err := os.WriteFile(file, []byte(text), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", file, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported configuration to %s\n", file)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Write to this file instead of stdout")
	return cmd
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the configuration with a YAML document (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			return ctx.withApp(cmd.Context(), func(a *app) error {
				if err := a.store.Import(string(data)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported configuration from %s\n", args[0])
				return nil
			})
		},
	}
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the built-in defaults and remove saved overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				if err := a.store.Reset(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults")
				return nil
			})
		},
	}
}

func newReloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Load the dashboard documents, ignoring saved overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				if err := a.store.Reload(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Loaded dashboard documents from %s\n", a.cfg.Dashboard.Source)
				return nil
			})
		},
	}
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove saved overrides and reload the dashboard documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				if err := a.store.ClearOverridesAndReload(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Overrides cleared")
				return nil
			})
		},
	}
}

type statusReport struct {
	ConfigFile     string     `json:"config_file,omitempty"`
	Source         string     `json:"source"`
	Database       string     `json:"database"`
	Loaded         bool       `json:"loaded"`
	LoadError      string     `json:"load_error,omitempty"`
	OverridesSaved *time.Time `json:"overrides_saved,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the configuration comes from and whether it loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				report := statusReport{
					ConfigFile: ctx.configPath,
					Source:     a.cfg.Dashboard.Source,
					Database:   a.cfg.DBPath(),
					Loaded:     a.store.Loaded(),
				}
				if err := a.store.Err(); err != nil {
					report.LoadError = err.Error()
				}
				saved, err := a.state.UpdatedAt(dashboard.OverrideNamespace, dashboard.OverrideKey)
				if err != nil {
					return err
				}
				if !saved.IsZero() {
					report.OverridesSaved = &saved
				}

				out := cmd.OutOrStdout()
				if ctx.jsonOutput() {
					return writeJSON(out, report)
				}

				configFile := report.ConfigFile
				if configFile == "" {
					configFile = "(built-in defaults)"
				}
				loadError := report.LoadError
				if loadError == "" {
					loadError = "-"
				}
				overrides := "none"
				if report.OverridesSaved != nil {
					overrides = report.OverridesSaved.Local().Format(time.DateTime)
				}
				rows := [][]string{
					{"Config file", configFile},
					{"Source", report.Source},
					{"Database", report.Database},
					{"Loaded", yesNo(report.Loaded)},
					{"Load error", loadError},
					{"Overrides saved", overrides},
				}
				fmt.Fprintln(out, renderTable(out, []string{"Setting", "Value"}, rows))
				return nil
			})
		},
	}
}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration for settings the dashboard cannot use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				report := a.store.Validate()
				out := cmd.OutOrStdout()

				if ctx.jsonOutput() {
					if err := writeJSON(out, report); err != nil {
						return err
					}
				} else if len(report.Problems) == 0 && len(report.Warnings) == 0 {
					fmt.Fprintln(out, "Configuration is valid")
				} else {
					rows := make([][]string, 0, len(report.Problems)+len(report.Warnings))
					for _, p := range report.Problems {
						rows = append(rows, []string{"error", p})
					}
					for _, w := range report.Warnings {
						rows = append(rows, []string{"warning", w})
					}
					fmt.Fprintln(out, renderTable(out, []string{"Level", "Message"}, rows))
				}

				if !report.Valid() {
					return fmt.Errorf("configuration has %d problem(s)", len(report.Problems))
				}
				return nil
			})
		},
	}
}

func newKeyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Read or store service credentials",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <service> [field]",
		Short: "Print the credential used for a service (field defaults to api_key)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			field := "api_key"
			if len(args) == 2 {
				field = args[1]
			}
			return ctx.withApp(cmd.Context(), func(a *app) error {
				key := a.store.APIKey(args[0], field)
				if key == "" {
					return fmt.Errorf("no %s configured for %s", field, args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <service> <field> <value>",
		Short: "Store a credential under api_keys",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				if err := a.store.SetAPIKey(args[0], args[1], args[2]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored %s for %s\n", args[1], args[0])
				return nil
			})
		},
	})

	return cmd
}
