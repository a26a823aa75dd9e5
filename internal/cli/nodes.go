package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scalelist/pkg/api"
	"github.com/matzehuels/scalelist/pkg/client"
	errs "github.com/matzehuels/scalelist/pkg/errors"
	nodeio "github.com/matzehuels/scalelist/pkg/io"
	"github.com/matzehuels/scalelist/pkg/node"
	"github.com/matzehuels/scalelist/pkg/store"
)

// nodeBackend is where `nodes` subcommands keep snapshots: the configured
// local store or a scalelist server.
type nodeBackend interface {
	Put(ctx context.Context, name string, in node.Inputs) (*store.Snapshot, error)
	Get(ctx context.Context, name string) (*store.Snapshot, error)
	List(ctx context.Context) ([]api.NodeSummary, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

type localNodes struct{ store.Store }

func (l localNodes) List(ctx context.Context) ([]api.NodeSummary, error) {
	snaps, err := l.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]api.NodeSummary, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, api.Summarize(s))
	}
	return out, nil
}

type remoteNodes struct{ *client.Client }

func (r remoteNodes) Put(ctx context.Context, name string, in node.Inputs) (*store.Snapshot, error) {
	return r.PutNode(ctx, name, in)
}

func (r remoteNodes) Get(ctx context.Context, name string) (*store.Snapshot, error) {
	return r.GetNode(ctx, name)
}

func (r remoteNodes) List(ctx context.Context) ([]api.NodeSummary, error) {
	return r.ListNodes(ctx)
}

func (r remoteNodes) Delete(ctx context.Context, name string) error {
	return r.DeleteNode(ctx, name)
}

func (r remoteNodes) Close() error { return nil }

func (c *CLI) nodeBackend(ctx context.Context, remote string) (nodeBackend, error) {
	if remote != "" {
		return remoteNodes{client.New(remote)}, nil
	}
	st, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	return localNodes{st}, nil
}

// nodesCommand creates the nodes command for managing stored snapshots.
func (c *CLI) nodesCommand() *cobra.Command {
	var remote string

	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "Manage stored node snapshots",
		Long: `Store, inspect and evaluate named node snapshots.

Snapshots live in the store configured under store.driver (file, sqlite,
postgres or mongo), or on a scalelist server with --remote.`,
	}
	cmd.PersistentFlags().StringVar(&remote, "remote", "", "use a scalelist server instead of the local store")

	cmd.AddCommand(c.nodesPutCommand(&remote))
	cmd.AddCommand(c.nodesGetCommand(&remote))
	cmd.AddCommand(c.nodesListCommand(&remote))
	cmd.AddCommand(c.nodesDeleteCommand(&remote))
	cmd.AddCommand(c.nodesEvalCommand(&remote))
	return cmd
}

func (c *CLI) withNodes(ctx context.Context, remote string, fn func(nodeBackend) error) error {
	b, err := c.nodeBackend(ctx, remote)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(b)
}

func (c *CLI) nodesPutCommand(remote *string) *cobra.Command {
	return &cobra.Command{
		Use:   "put [name] [node-file]",
		Short: "Store a node file under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := errs.ValidateNodeName(name); err != nil {
				return err
			}
			in, err := nodeio.ImportNode(args[1])
			if err != nil {
				return err
			}
			if err := in.Validate(); err != nil {
				return err
			}
			return c.withNodes(cmd.Context(), *remote, func(b nodeBackend) error {
				snap, err := b.Put(cmd.Context(), name, in)
				if err != nil {
					return err
				}
				printSuccess("Stored %s", snap.Name)
				printDetail("%s · %d items", snap.ID, len(snap.Inputs.List))
				return nil
			})
		},
	}
}

func (c *CLI) nodesGetCommand(remote *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "get [name]",
		Short: "Print a stored node file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := nodeio.ParseFormat(format)
			if err != nil {
				return err
			}
			return c.withNodes(cmd.Context(), *remote, func(b nodeBackend) error {
				snap, err := b.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return nodeio.WriteNode(cmd.OutOrStdout(), f, snap.Inputs)
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", string(nodeio.FormatYAML), "output format: json, toml, yaml")
	return cmd
}

func (c *CLI) nodesListCommand(remote *string) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored nodes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withNodes(cmd.Context(), *remote, func(b nodeBackend) error {
				nodes, err := b.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(nodes) == 0 {
					printInfo("No stored nodes")
					return nil
				}
				writeNodeList(cmd.OutOrStdout(), nodes)
				return nil
			})
		},
	}
}

func writeNodeList(w io.Writer, nodes []api.NodeSummary) {
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{n.Name, fmt.Sprint(n.Items), n.UpdatedAt.Local().Format(time.DateTime), n.ID.String()})
	}
	fmt.Fprintln(w, schemaTable([]string{"Name", "Items", "Updated", "ID"}, rows))
}

func (c *CLI) nodesDeleteCommand(remote *string) *cobra.Command {
	return &cobra.Command{
		Use:     "delete [name]",
		Aliases: []string{"rm"},
		Short:   "Delete a stored node",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withNodes(cmd.Context(), *remote, func(b nodeBackend) error {
				if err := b.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted %s", args[0])
				return nil
			})
		},
	}
}

func (c *CLI) nodesEvalCommand(remote *string) *cobra.Command {
	var opts evalOpts

	cmd := &cobra.Command{
		Use:   "eval [name]",
		Short: "Evaluate a stored node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errs.ValidateFormat(opts.format, resultFormats...); err != nil {
				return err
			}
			ctx := cmd.Context()
			if *remote != "" {
				resp, err := client.New(*remote).EvaluateNode(ctx, args[0])
				if err != nil {
					return err
				}
				ev := &evaluation{outputs: resp.Outputs, items: resp.Items, cacheHit: resp.CacheHit}
				return writeEvaluation(cmd.OutOrStdout(), args[0], ev, opts)
			}
			return c.withNodes(ctx, "", func(b nodeBackend) error {
				snap, err := b.Get(ctx, args[0])
				if err != nil {
					return err
				}
				ev, err := c.evaluate(ctx, snap.Inputs, opts)
				if err != nil {
					return err
				}
				return writeEvaluation(cmd.OutOrStdout(), args[0], ev, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the result to a file (.json, .toml, .yaml)")
	cmd.Flags().StringVar(&opts.format, "format", formatTable, "stdout format: table, json, toml, yaml")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached result exists")
	return cmd
}
