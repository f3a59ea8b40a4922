package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"impractical.co/frame"
	"impractical.co/frame/internal/config"
	"impractical.co/frame/internal/content"
	"impractical.co/frame/internal/server"
)

var errUnknownRoute = errors.New("no page is configured at that route")

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "framed",
		Short:        "framed serves a small static site with shared page chrome",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "site.yaml", "path to the site config file")

	root.AddCommand(
		serveCmd(),
		renderCmd(),
	)
	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			b, err := load(configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			addr := b.cfg.Addr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(b.site, b.pages, b.logger).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().String("addr", "", "HTTP listen address, overriding the config file")
	return cmd
}

func renderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render <route>",
		Short: "Render the page at route to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			b, err := load(configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx := frame.LoggingContext(cmd.Context(), b.logger)
			return renderRoute(ctx, cmd.OutOrStdout(), b, args[0])
		},
	}
}

// bundle is everything a command needs, built once from the config file.
type bundle struct {
	cfg    *config.Config
	site   *frame.Site
	pages  []content.Page
	logger *slog.Logger
}

func load(configPath string, logs io.Writer) (bundle, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return bundle{}, err
	}
	logger := cfg.Log.Logger(logs)

	fsys := cfg.FS()
	site, err := cfg.Site(fsys)
	if err != nil {
		return bundle{}, fmt.Errorf("error building site: %w", err)
	}
	pages, err := content.NewLoader(fsys).LoadAll(cfg.Sources())
	if err != nil {
		return bundle{}, fmt.Errorf("error loading pages: %w", err)
	}
	logger.Debug("site loaded",
		"fragments", site.Fragments().Names(),
		"nav_entries", len(site.Entries()),
		"pages", len(pages))

	return bundle{
		cfg:    cfg,
		site:   site,
		pages:  pages,
		logger: logger,
	}, nil
}

func renderRoute(ctx context.Context, out io.Writer, b bundle, route string) error {
	for _, page := range b.pages {
		if page.Route != route {
			continue
		}
		return b.site.RenderTo(ctx, out, page.Request)
	}
	return fmt.Errorf("%w: %q", errUnknownRoute, route)
}
