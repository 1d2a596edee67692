package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nugget/lazybeagle/internal/dashboard"
)

type serviceRow struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	URL     string `json:"url"`
	HasKey  bool   `json:"has_key"`
	Enabled bool   `json:"enabled"`
}

func newServicesCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "services",
		Short: "List configured services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				services := a.store.EnabledServices()
				if all {
					services = a.store.Services()
				}

				list := make([]serviceRow, 0, len(services))
				for _, s := range services {
					list = append(list, serviceRow{
						Name:    s.Name,
						Type:    s.Kind(),
						URL:     s.URL,
						HasKey:  a.store.APIKey(s.Kind(), "api_key") != "",
						Enabled: s.Enabled,
					})
				}

				out := cmd.OutOrStdout()
				if ctx.jsonOutput() {
					return writeJSON(out, list)
				}
				if len(list) == 0 {
					fmt.Fprintln(out, "No services configured")
					return nil
				}
				rows := make([][]string, 0, len(list))
				for _, s := range list {
					rows = append(rows, []string{s.Name, s.Type, s.URL, yesNo(s.HasKey), yesNo(s.Enabled)})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Name", "Type", "URL", "Key", "Enabled"}, rows))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include disabled services")
	return cmd
}

type linkRow struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
}

func newLinksCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "links",
		Short: "List configured links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				links := a.store.EnabledLinks()
				if all {
					links = a.store.Links()
				}

				list := make([]linkRow, 0, len(links))
				for _, l := range links {
					list = append(list, linkRow{Name: l.Name, URL: l.URL, Description: l.Description, Enabled: l.Enabled})
				}

				out := cmd.OutOrStdout()
				if ctx.jsonOutput() {
					return writeJSON(out, list)
				}
				if len(list) == 0 {
					fmt.Fprintln(out, "No links configured")
					return nil
				}
				rows := make([][]string, 0, len(list))
				for _, l := range list {
					rows = append(rows, []string{l.Name, l.URL, l.Description, yesNo(l.Enabled)})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Name", "URL", "Description", "Enabled"}, rows))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include disabled links")
	return cmd
}

type searchRow struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Default bool   `json:"default"`
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search",
		Short: "List search engines and the one used by default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				def, _ := a.store.DefaultSearchEngine()

				engines := a.store.SearchEngines()
				list := make([]searchRow, 0, len(engines))
				for _, e := range engines {
					list = append(list, searchRow{ID: e.ID, Name: e.Name, URL: e.URL, Default: e.ID == def.ID})
				}

				out := cmd.OutOrStdout()
				if ctx.jsonOutput() {
					return writeJSON(out, list)
				}
				rows := make([][]string, 0, len(list))
				for _, e := range list {
					marker := ""
					if e.Default {
						marker = "*"
					}
					rows = append(rows, []string{marker, e.ID, e.Name, e.URL})
				}
				fmt.Fprintln(out, renderTable(out, []string{"", "ID", "Name", "URL"}, rows))
				return nil
			})
		},
	}
}

func newToggleCommand(ctx *commandContext) *cobra.Command {
	var link bool

	cmd := &cobra.Command{
		Use:   "toggle <name> <on|off>",
		Short: "Enable or disable a service (or a link with --link)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := parseSwitch(args[1])
			if err != nil {
				return err
			}
			return ctx.withApp(cmd.Context(), func(a *app) error {
				kind := "service"
				toggle := a.store.ToggleService
				if link {
					kind = "link"
					toggle = a.store.ToggleLink
				}
				if !toggle(args[0], enabled) {
					return fmt.Errorf("no %s named %q: %w", kind, args[0], dashboard.ErrNotFound)
				}
				state := "disabled"
				if enabled {
					state = "enabled"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %q %s\n", kind, args[0], state)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&link, "link", false, "Toggle a link instead of a service")
	return cmd
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "enable", "enabled":
		return true, nil
	case "off", "false", "no", "disable", "disabled":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}
