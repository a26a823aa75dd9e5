package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scalelist/pkg/api"
	"github.com/matzehuels/scalelist/pkg/node"
	"github.com/matzehuels/scalelist/pkg/pipeline"
)

// defaultGraphBase is the output base path when graph is given no -o.
const defaultGraphBase = "scalelist-graph"

// schemaCommand creates the schema command.
func (c *CLI) schemaCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "List the attributes of the scaleList node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := node.DefaultSchema()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(api.DescribeSchema(s))
			}
			writeSchema(cmd.OutOrStdout(), s)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the schema as JSON")
	return cmd
}

func writeSchema(w io.Writer, s *node.Schema) {
	fmt.Fprintf(w, "%s %s\n", StyleTitle.Render(s.TypeName), StyleDim.Render(fmt.Sprintf("%#08x", s.TypeID)))

	rows := make([][]string, 0, len(s.Attributes()))
	for _, a := range s.Attributes() {
		name := a.Name
		if a.Parent != "" {
			name = "  " + name
		}
		rows = append(rows, []string{
			name,
			a.Short,
			a.Kind.String(),
			fmtDefault(a),
			fmtRange(a),
			fmtFlags(a),
			strings.Join(a.Categories, ","),
			strings.Join(s.Affects(a.Name), ","),
		})
	}
	fmt.Fprintln(w, schemaTable([]string{"Attribute", "Short", "Kind", "Default", "Range", "Flags", "Categories", "Affects"}, rows))
}

func fmtDefault(a *node.Attribute) string {
	switch v := a.Default.(type) {
	case nil:
		return "-"
	case float64:
		return fmtFloat(v)
	default:
		return fmt.Sprint(v)
	}
}

func fmtRange(a *node.Attribute) string {
	if a.Min == nil && a.Max == nil {
		return "-"
	}
	lo, hi := "-inf", "inf"
	if a.Min != nil {
		lo = fmtFloat(*a.Min)
	}
	if a.Max != nil {
		hi = fmtFloat(*a.Max)
	}
	return "[" + lo + ", " + hi + "]"
}

func fmtFlags(a *node.Attribute) string {
	var flags []string
	if a.Writable {
		flags = append(flags, "w")
	}
	if a.Storable {
		flags = append(flags, "s")
	}
	if a.Array {
		flags = append(flags, "array")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

// graphCommand creates the graph command for rendering the attribute
// dependency graph.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		opts       pipeline.GraphOptions
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the attribute dependency graph",
		Long: `Render which input attributes affect which outputs.

A single dot or json artifact is printed to stdout unless -o is given.
Other formats are written to files; with several formats -o is a base path.
PNG and PDF need rsvg-convert on the PATH.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			opts.Logger = c.Logger

			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			spinner := newSpinner(cmd.Context(), "Rendering graph...")
			spinner.Start()
			artifacts, cacheHit, err := runner.RenderGraph(cmd.Context(), opts)
			if err != nil {
				spinner.StopWithError("Rendering failed")
				return fmt.Errorf("render graph: %w", err)
			}
			spinner.Stop()

			return writeArtifacts(cmd.OutOrStdout(), artifacts, opts.Formats, output, cacheHit)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png, pdf, json (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include rows and metadata in node labels")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "re-render even if cached")
	return cmd
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func isTextFormat(f string) bool {
	return f == pipeline.FormatDOT || f == pipeline.FormatJSON
}

// basePath strips a known graph format extension from output.
func basePath(output string) string {
	if output == "" {
		return defaultGraphBase
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.GraphFormats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeArtifacts writes rendered graph artifacts to stdout or files.
func writeArtifacts(w io.Writer, artifacts map[string][]byte, formats []string, output string, cacheHit bool) error {
	if len(formats) == 1 {
		f := formats[0]
		if output == "" && isTextFormat(f) {
			_, err := w.Write(artifacts[f])
			return err
		}
		path := output
		if path == "" {
			path = defaultGraphBase + "." + f
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printSuccess("Rendered %s", f)
		printFile(path)
		return nil
	}

	base := basePath(output)
	written := make([]string, 0, len(artifacts))
	for f, data := range artifacts {
		path := base + "." + f
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	sort.Strings(written)

	status := iconFresh
	if cacheHit {
		status = iconCached
	}
	printSuccess("Rendered %d formats (%s)", len(written), status)
	for _, p := range written {
		printFile(p)
	}
	return nil
}
