package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"storyview/internal/config"
	"storyview/internal/library"
	"storyview/internal/scan"
)

// skipLibrary marks commands that work without opening the library.
const skipLibrary = "skip-library"

// LibraryOpener opens the story library. Tests swap in their own.
type LibraryOpener func(path string, logger zerolog.Logger) (*library.Store, error)

// cli holds what the persistent pre-run prepared for the subcommands.
type cli struct {
	configPath string
	dbPath     string
	logLevel   string

	settings *config.Settings
	logger   zerolog.Logger
	store    *library.Store
}

// NewRootCmd creates the root command. openLibrary is called once per run
// for the commands that need the library.
func NewRootCmd(openLibrary LibraryOpener) *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "storyctl",
		Short:         "storyctl - manage and play stories",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			// flags override the settings file
			if c.dbPath != "" {
				settings.Library.Path = c.dbPath
			}
			if c.logLevel != "" {
				settings.Logging.Level = c.logLevel
			}
			c.settings = settings
			c.logger = config.NewLogger(settings.Logging, cmd.ErrOrStderr())

			if cmd.Annotations[skipLibrary] != "" {
				return nil
			}
			c.store, err = openLibrary(settings.Library.Path, c.logger)
			if err != nil {
				return fmt.Errorf("failed to open library: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.store != nil {
				c.store.Close()
				c.store = nil
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to settings file (storyview.yaml)")
	rootCmd.PersistentFlags().StringVar(&c.dbPath, "db", "", "Path to the story library, overrides library.path")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level, overrides logging.level")

	rootCmd.AddCommand(
		c.importCmd(),
		c.importDirCmd(),
		c.listCmd(),
		c.showCmd(),
		c.removeCmd(),
		c.validateCmd(),
		c.tagCmd(),
		c.playCmd(),
		c.serveCmd(),
	)
	return rootCmd
}

func (c *cli) importCmd() *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "import [story.yaml...]",
		Short: "Import story documents into the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if title != "" && len(args) > 1 {
				return fmt.Errorf("--title needs exactly one file")
			}
			var errs error
			for _, path := range args {
				doc, err := config.LoadDocument(path)
				if err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				if title != "" {
					doc.Title = title
				}
				rec, err := c.store.Put(doc)
				if err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				cmd.Printf("Imported %q (%s)\n", rec.Document.Title, rec.ID)
			}
			return errs
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Store the story under this title")
	return cmd
}

func (c *cli) importDirCmd() *cobra.Command {
	opts := scan.Options{}
	cmd := &cobra.Command{
		Use:   "import-dir [directory]",
		Short: "Build a story from the images and videos in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			opts.Logger = c.logger
			doc, err := scan.BuildDocument(dir, opts)
			if err != nil {
				return err
			}
			rec, err := c.store.Put(doc)
			if err != nil {
				return err
			}
			cmd.Printf("Imported %q with %d pages (%s)\n", rec.Document.Title, len(rec.Document.Items), rec.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Title, "title", "", "Story title, defaults to the directory name")
	cmd.Flags().DurationVarP(&opts.Duration, "duration", "d", scan.DefaultDuration, "How long each page is shown")
	cmd.Flags().BoolVarP(&opts.Recursive, "recursive", "r", false, "Include subdirectories")
	cmd.Flags().BoolVar(&opts.Shuffle, "shuffle", false, "Shuffle the pages")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "Shuffle seed, 0 for a random order")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the stories in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var records []library.Record
			var err error
			if tag != "" {
				records, err = c.store.StoriesWithTag(tag)
			} else {
				records, err = c.store.List()
			}
			if err != nil {
				return err
			}
			if len(records) == 0 {
				cmd.Println("No stories in the library.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TITLE\tPAGES\tLENGTH\tID")
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", rec.Document.Title, len(rec.Document.Items),
					rec.Document.TotalDuration().Round(time.Millisecond), rec.ID)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Only list stories with this tag")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id|title]",
		Short: "Print a stored story as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := c.store.Resolve(args[0])
			if err != nil {
				return err
			}
			data, err := rec.Document.Marshal()
			if err != nil {
				return err
			}
			tags, err := c.store.Tags(rec.ID)
			if err != nil {
				return err
			}
			cmd.Printf("# id: %s\n", rec.ID)
			if len(tags) > 0 {
				cmd.Printf("# tags: %s\n", strings.Join(tags, ", "))
			}
			cmd.Print(string(data))
			return nil
		},
	}
}

func (c *cli) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [id|title]",
		Short: "Remove a story from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.store.Delete(args[0]); err != nil {
				return err
			}
			cmd.Printf("Removed %s\n", args[0])
			return nil
		},
	}
}

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "validate [story.yaml...]",
		Short:       "Check story documents without importing them",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{skipLibrary: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs error
			for _, path := range args {
				doc, err := config.LoadDocument(path)
				if err != nil {
					cmd.Printf("FAIL %s\n", path)
					errs = multierr.Append(errs, err)
					continue
				}
				cmd.Printf("ok   %s (%d pages, %s)\n", path, len(doc.Items), doc.TotalDuration())
			}
			return errs
		},
	}
}

func (c *cli) tagCmd() *cobra.Command {
	tagCmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage story tags",
	}

	tagCmd.AddCommand(&cobra.Command{
		Use:   "add [id|title] [tag...]",
		Short: "Add tags to a story",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs error
			for _, tag := range args[1:] {
				errs = multierr.Append(errs, c.store.AddTag(args[0], tag))
			}
			return errs
		},
	})

	tagCmd.AddCommand(&cobra.Command{
		Use:   "remove [id|title] [tag...]",
		Short: "Remove tags from a story",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs error
			for _, tag := range args[1:] {
				errs = multierr.Append(errs, c.store.RemoveTag(args[0], tag))
			}
			return errs
		},
	})

	tagCmd.AddCommand(&cobra.Command{
		Use:   "list [id|title]",
		Short: "List the tags of a story, or every tag with its story count",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				tags, err := c.store.Tags(args[0])
				if err != nil {
					return err
				}
				cmd.Println(strings.Join(tags, ", "))
				return nil
			}
			tags, err := c.store.AllTags()
			if err != nil {
				return err
			}
			if len(tags) == 0 {
				cmd.Println("No tags found in the library.")
				return nil
			}
			for _, tag := range tags {
				cmd.Printf("%s (%d)\n", tag.Name, tag.Count)
			}
			return nil
		},
	})
	return tagCmd
}

func main() {
	rootCmd := NewRootCmd(library.Open)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
