package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scalelist/pkg/client"
	errs "github.com/matzehuels/scalelist/pkg/errors"
	nodeio "github.com/matzehuels/scalelist/pkg/io"
	"github.com/matzehuels/scalelist/pkg/node"
	"github.com/matzehuels/scalelist/pkg/pipeline"
)

// formatTable prints outputs as styled tables instead of a node-file format.
const formatTable = "table"

var resultFormats = append([]string{formatTable}, nodeio.Formats...)

// evalOpts holds the flags shared by eval and nodes eval.
type evalOpts struct {
	output  string // write the result to this file, format by extension
	format  string // stdout format: table | json | toml | yaml
	refresh bool   // skip the cache lookup
	remote  string // evaluate on a scalelist server instead of locally
}

// evaluation is a result from either the local runner or a server.
type evaluation struct {
	outputs  node.Outputs
	items    int
	cacheHit bool
}

func (o *evalOpts) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write the result to a file (.json, .toml, .yaml)")
	cmd.Flags().StringVar(&o.format, "format", formatTable, "stdout format: table, json, toml, yaml")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "recompute even if a cached result exists")
	cmd.Flags().StringVar(&o.remote, "remote", "", "evaluate on a scalelist server (e.g. http://localhost:8080)")
}

// evalCommand creates the eval command.
func (c *CLI) evalCommand() *cobra.Command {
	var opts evalOpts

	cmd := &cobra.Command{
		Use:   "eval [node-file]",
		Short: "Evaluate a node file",
		Long: `Evaluate a node file and print the blended scale, the scale matrix and its inverse.

The node file may be JSON, TOML or YAML. Results are cached by input hash;
use --refresh to recompute or --no-cache to bypass the cache entirely.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errs.ValidateFormat(opts.format, resultFormats...); err != nil {
				return err
			}
			in, err := nodeio.ImportNode(args[0])
			if err != nil {
				return err
			}
			ev, err := c.evaluate(cmd.Context(), in, opts)
			if err != nil {
				return err
			}
			return writeEvaluation(cmd.OutOrStdout(), args[0], ev, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

// evaluate runs in through the local pipeline or the remote server.
func (c *CLI) evaluate(ctx context.Context, in node.Inputs, opts evalOpts) (*evaluation, error) {
	if opts.remote != "" {
		spinner := newSpinner(ctx, "Evaluating on "+opts.remote+"...")
		spinner.Start()
		resp, err := client.New(opts.remote).Evaluate(ctx, in, opts.refresh)
		spinner.Stop()
		if err != nil {
			return nil, fmt.Errorf("remote evaluate: %w", err)
		}
		return &evaluation{outputs: resp.Outputs, items: resp.Items, cacheHit: resp.CacheHit}, nil
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, pipeline.Options{Inputs: in, Refresh: opts.refresh})
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("result", "hash", res.InputHash, "cached", res.CacheHit)
	prog.done(fmt.Sprintf("Evaluated %d items", res.Stats.Items))
	return &evaluation{outputs: res.Outputs, items: res.Stats.Items, cacheHit: res.CacheHit}, nil
}

func writeEvaluation(w io.Writer, input string, ev *evaluation, opts evalOpts) error {
	if opts.output != "" {
		if err := nodeio.ExportResult(opts.output, ev.outputs); err != nil {
			return err
		}
		printSuccess("Evaluated %s", input)
		printStats(ev.items, ev.outputs.Degenerate, ev.cacheHit)
		printFile(opts.output)
		return nil
	}

	if opts.format != formatTable {
		return nodeio.WriteResult(w, nodeio.Format(opts.format), ev.outputs)
	}
	writeOutputs(w, ev.outputs.Scale, ev.outputs.Matrix, ev.outputs.InverseMatrix)
	if ev.outputs.Degenerate {
		printWarning("scale has a zero axis; inverseMatrix is the zero matrix")
	}
	printStats(ev.items, ev.outputs.Degenerate, ev.cacheHit)
	return nil
}

// computeCommand creates the compute command.
func (c *CLI) computeCommand() *cobra.Command {
	var remote string

	cmd := &cobra.Command{
		Use:   "compute [node-file] [attribute]",
		Short: "Compute a single output attribute",
		Long: `Compute one attribute of a node by long or short name (e.g. outputX, ox, matrix).

Any output attribute recomputes all outputs. Attributes the node does not
produce are reported as not handled.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := nodeio.ImportNode(args[0])
			if err != nil {
				return err
			}
			out, err := c.compute(cmd.Context(), in, args[1], remote)
			if errors.Is(err, node.ErrUnknownAttribute) {
				return errs.Wrap(errs.ErrCodeUnknownAttribute, err, "scaleList does not compute %q", args[1])
			}
			if err != nil {
				return err
			}
			return writeAttribute(cmd.OutOrStdout(), args[1], out)
		},
	}

	cmd.Flags().StringVar(&remote, "remote", "", "compute on a scalelist server")
	return cmd
}

func (c *CLI) compute(ctx context.Context, in node.Inputs, attr, remote string) (node.Outputs, error) {
	if remote != "" {
		resp, err := client.New(remote).Compute(ctx, in, attr)
		if err != nil {
			return node.Outputs{}, err
		}
		return resp.Outputs, nil
	}
	n := node.NewFromInputs(in)
	if err := n.Compute(attr); err != nil {
		return node.Outputs{}, err
	}
	c.Logger.Debug("computed", "attribute", attr, "evaluations", n.Evaluations())
	return n.Outputs(), nil
}

// writeAttribute prints the value of one output attribute.
func writeAttribute(w io.Writer, attr string, out node.Outputs) error {
	a, ok := node.DefaultSchema().Attribute(attr)
	if !ok {
		return fmt.Errorf("%w: %q", node.ErrUnknownAttribute, attr)
	}
	switch a.Name {
	case node.AttrOutput:
		fmt.Fprintln(w, fmtVec(out.Scale))
	case node.AttrMatrix:
		fmt.Fprintln(w, matrixTable(out.Matrix))
	case node.AttrInverseMatrix:
		fmt.Fprintln(w, matrixTable(out.InverseMatrix))
	default:
		v, err := out.Value(a.Name)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, fmtFloat(v))
	}
	return nil
}
