package main

import (
	"fmt"
	"io"
	"log"

	"region-explorer/internal/app"
	"region-explorer/internal/config"
	"region-explorer/internal/project"

	"github.com/spf13/cobra"
)

// rootOptions carries the persistent flags and the loaded configuration.
type rootOptions struct {
	configPath string
	verbose    bool
	cfg        *config.Config
	logger     *log.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "regiontool",
		Short:         "Inspect and edit region map files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			opts.cfg = cfg

			out := io.Discard
			if opts.verbose {
				out = cmd.ErrOrStderr()
			}
			opts.logger = log.New(out, "", log.LstdFlags)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.toml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(
		newShowCmd(opts),
		newAddPointCmd(opts),
		newDescribeCmd(opts),
		newRemovePointCmd(opts),
		newConvertCmd(opts),
		newCheckCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func (o *rootOptions) logVerbose(format string, args ...any) {
	o.logger.Printf(format, args...)
}

// documentPath returns the positional path argument or the configured default.
func (o *rootOptions) documentPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return o.cfg.Document.Path
}

// openSession loads a region into a session without decoding its image.
func (o *rootOptions) openSession(path string) (*app.Session, error) {
	doc, err := project.Load(path)
	if err != nil {
		return nil, err
	}
	s := app.NewSession(app.Options{
		Viewport:            o.cfg.ViewportConfig(),
		DescriptionCapacity: o.cfg.Editor.DescriptionCapacity,
	})
	s.SetDocument(doc, path, nil)
	o.logVerbose("Loaded %s: %d points", path, doc.Len())
	return s, nil
}

// save writes the session's document and reports the backup location.
func (o *rootOptions) save(s *app.Session) error {
	if err := s.Apply(app.Save{}); err != nil {
		return err
	}
	o.logVerbose("Saved %s (backup %s)", s.Path(), project.BackupPath(s.Path()))
	return nil
}
