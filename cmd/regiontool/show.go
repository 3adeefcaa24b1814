package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [path]",
		Short: "Print a region and its points",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(opts.documentPath(args))
			if err != nil {
				return err
			}
			doc := s.Document()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Region: %s\n", doc.Name)
			fmt.Fprintf(out, "Image:  %s\n", doc.Image)
			if doc.Description != "" {
				fmt.Fprintf(out, "\n%s\n", doc.Description)
			}
			fmt.Fprintf(out, "\nPoints (%d)\n", doc.Len())
			fmt.Fprintf(out, "----------\n")
			for i, p := range doc.Points {
				fmt.Fprintf(out, "  %3d  (%8.1f, %8.1f)  %s\n", i, p.X, p.Y, firstLine(p.Description))
			}
			return nil
		},
	}
}

// firstLine trims a description to its first line for tabular output.
func firstLine(text string) string {
	for i, r := range text {
		if r == '\n' {
			return text[:i] + " ..."
		}
	}
	return text
}
