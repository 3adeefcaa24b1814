package main

import (
	"fmt"

	"region-explorer/internal/image"
	"region-explorer/internal/project"
	"region-explorer/internal/version"

	"github.com/spf13/cobra"
)

func newConvertCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <src> <dst>",
		Short: "Rewrite a region file in the format implied by the destination extension",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := project.Convert(args[0], args[1]); err != nil {
				return err
			}
			opts.logVerbose("Converted %s -> %s", args[0], args[1])
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[1])
			return nil
		},
	}
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [path]",
		Short: "Load a region and decode its map image",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.documentPath(args)
			doc, err := project.Load(path)
			if err != nil {
				return err
			}

			imagePath := opts.cfg.ImagePath(doc.Image)
			layer, err := image.FileDecoder{}.Decode(imagePath)
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", imagePath, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %q, %d points\n", path, doc.Name, doc.Len())
			fmt.Fprintf(out, "%s: %s %dx%d\n", imagePath, layer.Format, layer.Width(), layer.Height())
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "regiontool %s (built %s, commit %s)\n",
				version.Version, version.BuildTime, version.GitCommit)
		},
	}
}
