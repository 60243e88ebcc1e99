package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"storyview/internal/config"
	"storyview/internal/controller"
	"storyview/internal/playback"
	"storyview/internal/remote"
	"storyview/internal/story"
)

type playOptions struct {
	repeat bool
	serve  bool
	addr   string
}

func (c *cli) playCmd() *cobra.Command {
	opts := playOptions{}
	cmd := &cobra.Command{
		Use:   "play [id|title|story.yaml]",
		Short: "Play a story in the terminal",
		Long: "Play a story without a window, printing each page as it becomes active.\n" +
			"With --serve the playback can be controlled over HTTP.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.loadStory(args[0])
			if err != nil {
				return err
			}
			return c.play(cmd.Context(), cmd.OutOrStdout(), doc, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.repeat, "repeat", false, "Start over after the last page")
	cmd.Flags().BoolVar(&opts.serve, "serve", false, "Expose the playback over HTTP")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address, overrides server.addr")
	return cmd
}

func (c *cli) serveCmd() *cobra.Command {
	opts := playOptions{serve: true}
	cmd := &cobra.Command{
		Use:   "serve [id|title|story.yaml]",
		Short: "Play a story on repeat and control it over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.loadStory(args[0])
			if err != nil {
				return err
			}
			opts.repeat = true
			return c.play(cmd.Context(), cmd.OutOrStdout(), doc, opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address, overrides server.addr")
	return cmd
}

// loadStory reads ref as a story file when it names one, otherwise looks it
// up in the library.
func (c *cli) loadStory(ref string) (*config.Document, error) {
	if ext := strings.ToLower(filepath.Ext(ref)); ext == ".yaml" || ext == ".yml" || ext == ".json" {
		if _, err := os.Stat(ref); err == nil {
			return config.LoadDocument(ref)
		}
	}
	rec, err := c.store.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return &rec.Document, nil
}

func (c *cli) play(ctx context.Context, out io.Writer, doc *config.Document, opts playOptions) error {
	items, err := doc.Items()
	if err != nil {
		return err
	}

	engineOpts := doc.PlaybackOptions()
	engineOpts.Repeat = engineOpts.Repeat || opts.repeat
	engineOpts.FastForward = c.settings.Playback.FastForward
	engineOpts.Logger = c.logger

	// OnStoryShow and OnComplete run on the player goroutine; nothing else
	// writes to out until the player is closed.
	completed := make(chan struct{}, 1)
	engineOpts.OnStoryShow = func(index int, item story.Item) {
		fmt.Fprintf(out, "[%d/%d] %s\n", index+1, len(items), describe(item))
	}
	engineOpts.OnComplete = func() {
		fmt.Fprintln(out, "Story complete.")
		select {
		case completed <- struct{}{}:
		default:
		}
	}

	var ctrl *controller.Controller
	if opts.serve {
		ctrl = controller.New()
		defer ctrl.Close()
		engineOpts.Controller = ctrl
	}

	engine, err := playback.NewEngine(items, engineOpts)
	if err != nil {
		return err
	}
	player := playback.NewPlayer(engine, playback.PlayerConfig{
		FrameInterval: c.settings.Playback.FrameInterval(),
		HoldDelay:     c.settings.Playback.HoldDelay,
		Logger:        c.logger,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := player.Start(ctx); err != nil {
		return err
	}
	defer player.Close()

	serverErr := make(chan error, 1)
	if opts.serve {
		addr := c.settings.Server.Addr
		if opts.addr != "" {
			addr = opts.addr
		}
		srv := remote.New(remote.Config{
			Addr:        addr,
			ReadTimeout: c.settings.Server.ReadTimeout,
			Title:       doc.Title,
		}, c.logger, player, c.store)
		go func() {
			if err := srv.Start(); err != nil {
				serverErr <- err
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				c.logger.Warn().Err(err).Msg("remote server shutdown")
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-player.Done():
			return nil
		case err := <-serverErr:
			return fmt.Errorf("remote server: %w", err)
		case <-completed:
			// a served story keeps its final state until interrupted
			if !engineOpts.Repeat && !opts.serve {
				return nil
			}
		}
	}
}

func describe(item story.Item) string {
	page, ok := item.Page()
	if !ok {
		return fmt.Sprintf("%v (%s)", item.Payload, item.Duration)
	}
	label := page.Caption
	if page.Kind == story.KindText {
		label, _, _ = strings.Cut(page.Text, "\n")
	} else if label == "" {
		label = filepath.Base(page.Source)
	}
	return fmt.Sprintf("%s: %s (%s)", page.Kind, label, item.Duration)
}
