package cli

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scalelist/pkg/core/blend"
	"github.com/matzehuels/scalelist/pkg/core/xform"
	errs "github.com/matzehuels/scalelist/pkg/errors"
	nodeio "github.com/matzehuels/scalelist/pkg/io"
	"github.com/matzehuels/scalelist/pkg/node"
)

// List styles
var (
	listDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	listWarnStyle = lipgloss.NewStyle().Foreground(colorYellow)
)

// tuneSteps are the weight increments cycled with +/-.
var tuneSteps = []float64{0.01, 0.05, 0.1, 0.25}

// =============================================================================
// TuneModel - Interactive weight tuning
// =============================================================================

// TuneModel is the bubbletea model for tuning the weights of a node file.
// Every edit goes through the node's setters, so only affected outputs are
// marked dirty and recomputed on the next pull.
type TuneModel struct {
	Path   string
	Node   *node.ScaleList
	Cursor int
	Step   int // index into tuneSteps
	Saved  bool
	Err    error
}

// NewTuneModel creates a tuning model for the inputs loaded from path.
func NewTuneModel(path string, in node.Inputs) TuneModel {
	return TuneModel{Path: path, Node: node.NewFromInputs(in), Step: 1}
}

func (m TuneModel) Init() tea.Cmd {
	return nil
}

func (m TuneModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	items := m.Node.Inputs().List
	m.Err = nil

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(items)-1 {
			m.Cursor++
		}
	case "left", "h":
		m.nudge(items, -tuneSteps[m.Step])
	case "right", "l":
		m.nudge(items, tuneSteps[m.Step])
	case "0":
		if len(items) > 0 {
			m.edited(m.Node.SetWeight(m.Cursor, 0))
		}
	case "+", "=":
		if m.Step < len(tuneSteps)-1 {
			m.Step++
		}
	case "-", "_":
		if m.Step > 0 {
			m.Step--
		}
	case "a":
		if len(items) > 0 {
			m.edited(m.Node.SetAbsolute(m.Cursor, !items[m.Cursor].Absolute))
		}
	case "n":
		m.Node.SetNormalizeWeights(!m.Node.Inputs().NormalizeWeights)
		m.Saved = false
	case "s":
		if err := nodeio.ExportNode(m.Path, m.Node.Inputs()); err != nil {
			m.Err = err
		} else {
			m.Saved = true
		}
	}
	return m, nil
}

func (m *TuneModel) nudge(items blend.List, delta float64) {
	if len(items) == 0 {
		return
	}
	// Snap to 1e-9 so repeated nudges do not drift.
	w := math.Round((items[m.Cursor].Weight+delta)*1e9) / 1e9
	m.edited(m.Node.SetWeight(m.Cursor, w))
}

func (m *TuneModel) edited(err error) {
	if err != nil {
		m.Err = err
		return
	}
	m.Saved = false
}

// Outputs pulls fresh outputs from the node, recomputing if dirty.
func (m TuneModel) Outputs() node.Outputs {
	out, _ := m.Node.Pull(node.AttrOutput)
	return out
}

func (m TuneModel) View() string {
	var b strings.Builder
	in := m.Node.Inputs()
	out := m.Outputs()

	b.WriteString(StyleTitle.Render("Tune " + m.Path))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  ←/→ weight  +/- step  a absolute  n normalize  0 zero  s save  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(in.List))
	for i, c := range in.List {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mode := "rel"
		if c.Absolute {
			mode = "abs"
		}
		rows = append(rows, []string{cursor, c.Name, fmtFloat(c.Weight), mode, fmtVec(c.Scale)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("", "Name", "Weight", "Mode", "Scale").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			base := lipgloss.NewStyle()
			if row >= len(in.List) {
				return base
			}
			if col == 2 && !errs.WeightInSuggestedRange(in.List[row].Weight) {
				base = base.Foreground(colorYellow)
			}
			if row == m.Cursor {
				if col != 2 {
					base = base.Foreground(colorGreen)
				}
				return base.Bold(true)
			}
			return base
		})
	b.WriteString(t.Render())
	b.WriteString("\n\n")

	normalize := "off"
	if in.NormalizeWeights {
		normalize = "on"
	}
	fmt.Fprintf(&b, "  normalize %s  step %s  evaluations %d\n\n",
		StyleValue.Render(normalize), StyleValue.Render(fmtFloat(tuneSteps[m.Step])), m.Node.Evaluations())

	b.WriteString("  " + StyleTitle.Render("output") + " " + StyleNumber.Render(fmtVec(out.Scale)) + "\n")
	b.WriteString("  " + listDimStyle.Render("inverse diag "+fmtVec(xform.ScaleOf(out.InverseMatrix))) + "\n")
	if out.Degenerate {
		b.WriteString("  " + listWarnStyle.Render("degenerate: inverseMatrix is zero") + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.Err != nil:
		b.WriteString("  " + styleIconError.Render(iconError) + " " + m.Err.Error())
	case m.Saved:
		b.WriteString("  " + styleIconSuccess.Render(iconSuccess) + " saved")
	default:
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(in.List)), len(in.List))))
	}
	return b.String()
}

// tuneCommand creates the tune command.
func (c *CLI) tuneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tune [node-file]",
		Short: "Interactively tune contribution weights",
		Long: `Open an interactive view of a node file. Adjust weights and blend modes
and watch the blended scale update live. Press s to write the file back.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := nodeio.ImportNode(args[0])
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewTuneModel(args[0], in), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("tune: %w", err)
			}
			if m, ok := final.(TuneModel); ok && !m.Saved {
				c.Logger.Debug("exited without saving", "path", args[0])
			}
			return nil
		},
	}
}
