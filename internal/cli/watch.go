package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	nodeio "github.com/matzehuels/scalelist/pkg/io"
	"github.com/matzehuels/scalelist/pkg/node"
	"github.com/matzehuels/scalelist/pkg/pipeline"
)

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "watch [node-file]",
		Short: "Re-evaluate a node file whenever it changes",
		Long: `Evaluate a node file, then re-evaluate it every time it is saved.

Invalid edits are logged and skipped; the last good result stays in place.
Press Ctrl+C to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), cmd.OutOrStdout(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "also write each result to this file")
	return cmd
}

func (c *CLI) runWatch(ctx context.Context, w io.Writer, path, output string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	show := func(in node.Inputs) {
		res, err := runner.Execute(ctx, pipeline.Options{Inputs: in})
		if err != nil {
			c.Logger.Error("evaluate failed", "path", path, "error", err)
			return
		}
		writeOutputs(w, res.Outputs.Scale, res.Outputs.Matrix, res.Outputs.InverseMatrix)
		if output != "" {
			if err := nodeio.ExportResult(output, res.Outputs); err != nil {
				c.Logger.Error("write result failed", "path", output, "error", err)
				return
			}
			c.Logger.Debug("wrote result", "path", output)
		}
	}

	in, err := nodeio.ImportNode(path)
	if err != nil {
		return err
	}
	show(in)

	return nodeio.Watch(ctx, path, c.Logger, show)
}
