package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/graph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle       = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// inspectCommand creates the inspect command, a terminal stepper over a
// replayed gesture script.
func (c *CLI) inspectCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "inspect [document] [script]",
		Short: "Step through a gesture script in the terminal",
		Long: `Step through a gesture script in the terminal.

The script is replayed up front; the viewer then shows node positions, active
edges and any edge being drawn after each event. Use ←/→ to step.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			script := ""
			if len(args) == 2 {
				script = args[1]
			}
			steps, err := c.recordSteps(cmd.Context(), args[0], script, noCache)
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewReplayModel(steps), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// =============================================================================
// Steps
// =============================================================================

// Step is the diagram after one event of a replay.
type Step struct {
	Title      string
	Frame      graph.Frame
	Generation uint64
	Rebuilt    bool
	Err        error // set on the final step when the script stopped early
}

// recordSteps replays the script and captures a frame before the first
// event and after each one.
func (c *CLI) recordSteps(ctx context.Context, input, script string, noCache bool) ([]Step, error) {
	ctx = withLogger(ctx, c.Logger)
	d, err := c.loadDiagram(ctx, input, noCache)
	if err != nil {
		return nil, err
	}
	events, err := readEvents(script, d.source)
	if err != nil {
		return nil, err
	}

	steps := []Step{{Title: "loaded", Frame: d.frame(), Generation: d.engine.Generation(), Rebuilt: true}}
	_, err = d.apply(ctx, events, func(i int, ev flow.Event, rebuilt bool) {
		steps = append(steps, Step{
			Title:      describeEvent(ev),
			Frame:      d.frame(),
			Generation: d.engine.Generation(),
			Rebuilt:    rebuilt,
		})
	})
	if err != nil {
		steps[len(steps)-1].Err = err
	}
	return steps, nil
}

// describeEvent renders ev as a short one-line summary.
func describeEvent(ev flow.Event) string {
	target := ev.Node
	if target == "" {
		target = "#" + strconv.Itoa(ev.Ordinal)
	}
	switch ev.Type {
	case flow.EventPressNode:
		return fmt.Sprintf("%s (%g, %g)", ev.Type, ev.X, ev.Y)
	case flow.EventMoveNode:
		return fmt.Sprintf("%s %s → (%g, %g)", ev.Type, target, ev.X, ev.Y)
	case flow.EventMouseMove:
		return fmt.Sprintf("%s (%g, %g)", ev.Type, ev.X, ev.Y)
	case flow.EventMouseUp:
		return string(ev.Type)
	case flow.EventPressOutput, flow.EventReleaseInput:
		return fmt.Sprintf("%s %s:%d", ev.Type, target, ev.Port)
	case flow.EventDeleteEdge:
		return fmt.Sprintf("%s %s", ev.Type, ev.Edge)
	default:
		return fmt.Sprintf("%s %s", ev.Type, target)
	}
}

// =============================================================================
// ReplayModel - Interactive step viewer
// =============================================================================

// ReplayModel is the bubbletea model for stepping through replay frames.
type ReplayModel struct {
	Steps  []Step
	Cursor int
}

// NewReplayModel creates a model positioned on the first step.
func NewReplayModel(steps []Step) ReplayModel {
	return ReplayModel{Steps: steps}
}

func (m ReplayModel) Init() tea.Cmd {
	return nil
}

func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h", "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "right", "l", "down", "j", " ":
			if m.Cursor < len(m.Steps)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = len(m.Steps) - 1
		}
	}
	return m, nil
}

func (m ReplayModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Replay"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ step  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Steps) == 0 {
		b.WriteString(listDimStyle.Render("  nothing to show"))
		return b.String()
	}

	s := m.Steps[m.Cursor]
	status := fmt.Sprintf("[%d/%d] ", m.Cursor+1, len(m.Steps))
	b.WriteString(listDimStyle.Render(status))
	b.WriteString(listSelectedStyle.Render(s.Title))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  gen %d", s.Generation)))
	if s.Rebuilt {
		b.WriteString(" " + StyleWarning.Render("rebuilt"))
	}
	b.WriteString("\n\n")

	b.WriteString(nodeTable(s.Frame))
	b.WriteString("\n")
	b.WriteString(edgeTable(s.Frame))
	b.WriteString("\n")

	if s.Frame.Pending != nil {
		p := s.Frame.Pending
		b.WriteString(StyleHighlight.Render(fmt.Sprintf("  drawing (%g, %g) → (%g, %g)", p.X0, p.Y0, p.X1, p.Y1)))
		b.WriteString("\n")
	}
	if s.Err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + s.Err.Error())
		b.WriteString("\n")
	}

	return b.String()
}

func nodeTable(f graph.Frame) string {
	rows := make([][]string, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		mounted := ""
		if n.Mounted {
			mounted = iconSuccess
		}
		rows = append(rows, []string{
			n.ID,
			n.Label,
			fmt.Sprintf("%g", n.Position.X),
			fmt.Sprintf("%g", n.Position.Y),
			strconv.Itoa(len(n.Inputs)),
			strconv.Itoa(len(n.Outputs)),
			mounted,
		})
	}
	return newTable("Node", "Label", "X", "Y", "In", "Out", "Mounted").Rows(rows...).Render()
}

func edgeTable(f graph.Frame) string {
	rows := make([][]string, 0, len(f.Edges))
	for _, e := range f.Edges {
		rows = append(rows, []string{
			e.ID,
			fmt.Sprintf("(%g, %g)", e.Position.X0, e.Position.Y0),
			fmt.Sprintf("(%g, %g)", e.Position.X1, e.Position.Y1),
		})
	}
	return newTable("Edge", "From", "To").Rows(rows...).Render()
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}
