// Main entry point for the story viewer
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"storyview/internal/config"
	"storyview/internal/controller"
	"storyview/internal/library"
	"storyview/internal/remote"
	"storyview/internal/scan"
	"storyview/internal/ui"
)

const appID = "io.storyview.viewer"

type viewerFlags struct {
	configPath string
	dbPath     string
	repeat     bool
	serve      bool
	addr       string
	recursive  bool
}

func newRootCmd() *cobra.Command {
	f := &viewerFlags{}
	cmd := &cobra.Command{
		Use:   "storyview [story.yaml|directory|id|title]",
		Short: "Show a story in a window",
		Long: "Show a story from a file, an image directory or the library.\n" +
			"Tap the right of the window to advance, the left to go back, hold to pause.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f, args[0])
		},
	}
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to settings file (storyview.yaml)")
	cmd.Flags().StringVar(&f.dbPath, "db", "", "Path to the story library, overrides library.path")
	cmd.Flags().BoolVar(&f.repeat, "repeat", false, "Start over after the last page")
	cmd.Flags().BoolVar(&f.serve, "serve", false, "Allow remote control over HTTP")
	cmd.Flags().StringVar(&f.addr, "addr", "", "Listen address, overrides server.addr")
	cmd.Flags().BoolVarP(&f.recursive, "recursive", "r", false, "Include subdirectories when showing a directory")
	return cmd
}

func run(ctx context.Context, f *viewerFlags, ref string) error {
	settings, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if f.dbPath != "" {
		settings.Library.Path = f.dbPath
	}
	logger := config.NewLogger(settings.Logging, os.Stderr)

	doc, store, err := openStory(ref, settings, f, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}
	if f.repeat {
		doc.Repeat = true
	}

	opts := ui.Options{Settings: settings, Logger: logger}
	if f.serve {
		ctrl := controller.New()
		defer ctrl.Close()
		opts.Controller = ctrl
	}

	viewer, err := ui.NewApp(app.NewWithID(appID), doc, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if f.serve {
		addr := settings.Server.Addr
		if f.addr != "" {
			addr = f.addr
		}
		var catalog remote.Catalog
		if store != nil {
			catalog = store
		}
		srv := remote.New(remote.Config{
			Addr:        addr,
			ReadTimeout: settings.Server.ReadTimeout,
			Title:       doc.Title,
		}, logger, viewer.Player(), catalog)
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error().Err(err).Msg("remote control stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	return viewer.Run(ctx)
}

// openStory loads ref from a story file, an image directory or the library.
// The library is returned open when the story came from it.
func openStory(ref string, settings *config.Settings, f *viewerFlags, logger zerolog.Logger) (*config.Document, *library.Store, error) {
	if info, err := os.Stat(ref); err == nil {
		if info.IsDir() {
			doc, err := scan.BuildDocument(ref, scan.Options{Recursive: f.recursive, Logger: logger})
			return doc, nil, err
		}
		switch strings.ToLower(filepath.Ext(ref)) {
		case ".yaml", ".yml", ".json":
			doc, err := config.LoadDocument(ref)
			return doc, nil, err
		}
	}

	store, err := library.Open(settings.Library.Path, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open library: %w", err)
	}
	rec, err := store.Resolve(ref)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return &rec.Document, store, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
