package main

import (
	"fmt"

	"region-explorer/internal/app"
	"region-explorer/pkg/geometry"

	"github.com/spf13/cobra"
)

func newAddPointCmd(opts *rootOptions) *cobra.Command {
	var x, y float64
	var description string

	cmd := &cobra.Command{
		Use:   "add-point [path]",
		Short: "Append a point in content coordinates and write the file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(opts.documentPath(args))
			if err != nil {
				return err
			}

			idx, err := s.AddPoint(geometry.NewPoint2D(x, y))
			if err != nil {
				return err
			}
			if description != "" {
				if err := s.Apply(app.SelectPoint{Index: idx}); err != nil {
					return err
				}
				if err := s.Apply(app.EditDescription{Text: description}); err != nil {
					return err
				}
			}
			if err := opts.save(s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added point %d at (%g, %g)\n", idx, x, y)
			return nil
		},
	}

	cmd.Flags().Float64Var(&x, "x", 0, "Content-space X coordinate")
	cmd.Flags().Float64Var(&y, "y", 0, "Content-space Y coordinate")
	cmd.Flags().StringVar(&description, "description", "", "Description of the new point")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	return cmd
}

func newDescribeCmd(opts *rootOptions) *cobra.Command {
	var index int
	var text string

	cmd := &cobra.Command{
		Use:   "describe [path]",
		Short: "Replace the description of a point, or of the region with --index -1",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(opts.documentPath(args))
			if err != nil {
				return err
			}

			var sel app.Command = app.ClearSelection{}
			if index != app.NoSelection {
				sel = app.SelectPoint{Index: index}
			}
			if err := s.Apply(sel); err != nil {
				return err
			}
			if err := s.Apply(app.EditDescription{Text: text}); err != nil {
				return err
			}
			if err := opts.save(s); err != nil {
				return err
			}

			if index == app.NoSelection {
				fmt.Fprintln(cmd.OutOrStdout(), "Updated region description")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Updated point %d\n", index)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&index, "index", app.NoSelection, "Point index; -1 selects the region")
	cmd.Flags().StringVar(&text, "text", "", "New description")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newRemovePointCmd(opts *rootOptions) *cobra.Command {
	var index int

	cmd := &cobra.Command{
		Use:   "remove-point [path]",
		Short: "Delete a point and write the file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(opts.documentPath(args))
			if err != nil {
				return err
			}
			if err := s.Apply(app.RemovePoint{Index: index}); err != nil {
				return err
			}
			if err := opts.save(s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed point %d, %d remain\n", index, s.Document().Len())
			return nil
		},
	}

	cmd.Flags().IntVar(&index, "index", 0, "Point index")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}
