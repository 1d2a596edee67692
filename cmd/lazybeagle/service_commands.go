package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nugget/lazybeagle/internal/apiclient"
	"github.com/nugget/lazybeagle/internal/background"
	"github.com/nugget/lazybeagle/internal/dashboard"
)

// defaultPingEndpoint is the status route shared by the arr services.
const defaultPingEndpoint = "/system/status"

const maxPingText = 2048

func newPingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ping <service-type> [endpoint]",
		Short: "Call a configured service's API and print the reply",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			serviceType := args[0]
			return ctx.withApp(cmd.Context(), func(a *app) error {
				svc, ok := a.store.ServiceByType(serviceType)
				if !ok {
					return fmt.Errorf("no service of type %q: %w", serviceType, dashboard.ErrNotFound)
				}
				if svc.URL == "" {
					return fmt.Errorf("service %q has no url", svc.Name)
				}

				// An entry matched by display name may carry no type.
				kind := svc.Kind()
				if kind == "" {
					kind = strings.ToLower(serviceType)
				}

				endpoint := "/"
				if apiclient.KnownService(kind) {
					endpoint = defaultPingEndpoint
				}
				if len(args) == 2 {
					endpoint = args[1]
				}

				client := apiclient.ForService(kind, svc.URL, a.store.APIKey(serviceType, "api_key"),
					apiclient.WithHTTPClient(a.http),
					apiclient.WithLogger(a.logger),
				)
				resp, err := client.Get(cmd.Context(), endpoint, nil, nil)
				if err != nil {
					return fmt.Errorf("%s: %w", svc.Name, err)
				}

				out := cmd.OutOrStdout()
				if ctx.jsonOutput() {
					if resp.IsJSON() {
						return writeJSON(out, resp.Data)
					}
					return writeJSON(out, map[string]any{"status": resp.StatusCode, "text": resp.Text})
				}

				fmt.Fprintf(out, "%s (%s) %d %s\n", svc.Name, kind, resp.StatusCode, client.BaseURL()+endpoint)
				if resp.IsJSON() {
					return printValue(out, resp.Data, false)
				}
				text := strings.TrimSpace(resp.Text)
				if len(text) > maxPingText {
					text = text[:maxPingText] + "..."
				}
				if text != "" {
					fmt.Fprintln(out, text)
				}
				return nil
			})
		},
	}
}

func newBackgroundCommand(ctx *commandContext) *cobra.Command {
	var (
		width         int
		height        int
		quality       int
		noCollections bool
	)

	cmd := &cobra.Command{
		Use:   "background [theme]",
		Short: "Pick a background image for a theme (default: the configured theme)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				theme := ""
				if len(args) == 1 {
					theme = args[0]
				} else if v, ok := a.store.Get("dashboard.background.theme"); ok {
					theme, _ = v.(string)
				}
				if theme == "" {
					return fmt.Errorf("no background theme configured")
				}

				if quality <= 0 {
					if v, ok := a.store.Get("dashboard.background.quality"); ok {
						quality, _ = v.(int)
					}
				}

				img, err := a.resolver().Resolve(cmd.Context(), theme, background.Options{
					Width:           width,
					Height:          height,
					Quality:         quality,
					SkipCollections: noCollections,
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if ctx.jsonOutput() {
					return writeJSON(out, img)
				}
				fmt.Fprintln(out, img.URL)
				if img.Photographer.Name != "" {
					fmt.Fprintf(out, "Photo by %s (%s)\n", img.Photographer.Name, img.Photographer.Profile)
				}
				if img.Description != "" {
					fmt.Fprintln(out, img.Description)
				}
				fmt.Fprintf(out, "Source: %s\n", img.Source)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&width, "width", background.DefaultWidth, "Image width in pixels")
	cmd.Flags().IntVar(&height, "height", background.DefaultHeight, "Image height in pixels")
	cmd.Flags().IntVar(&quality, "quality", 0, "JPEG quality (default: dashboard.background.quality)")
	cmd.Flags().BoolVar(&noCollections, "no-collections", false, "Search by keyword only")
	return cmd
}
