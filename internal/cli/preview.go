package cli

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/terrain/pkg/errors"
	"github.com/matzehuels/terrain/pkg/pipeline"
	"github.com/matzehuels/terrain/pkg/terrain"
)

const (
	// maxPreviewIterations keeps regeneration interactive.
	maxPreviewIterations = 9

	roughnessStep = 0.05

	// Rows reserved for title, status and help lines.
	previewChrome = 4
)

// elevation palette from deep water to snow, indexed by normalized height.
var palette = []lipgloss.Color{
	"#1b3a6b", "#24528f", "#3d7ab8", "#d8c38a", "#7fae5a",
	"#4f8a3c", "#356b2d", "#7a6a4f", "#9c8f7d", "#f2f2f2",
}

var (
	previewStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	previewErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// previewCommand creates the interactive preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var flags genFlags

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Explore heightfields interactively in the terminal",
		Long: `Render heightfields as shaded half-blocks and tweak them live.

Keys: r reseed · +/- roughness · [/] iterations · a toggle algorithm · q quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveOptions(cmd, &flags)
			if err != nil {
				return err
			}
			if cfg.Options.Iterations > maxPreviewIterations {
				return errors.New(errors.ErrCodeInvalidInput,
					"preview supports at most %d iterations, got %d", maxPreviewIterations, cfg.Options.Iterations)
			}
			runner, err := c.newRunner(cmd.Context(), "")
			if err != nil {
				return err
			}
			defer runner.Close()

			m := newPreviewModel(cmd.Context(), runner, cfg.Options)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	flags.register(cmd)
	return cmd
}

// =============================================================================
// previewModel - bubbletea model
// =============================================================================

// gridMsg delivers a finished generation to the model.
type gridMsg struct {
	grid *terrain.Grid
	err  error
}

// previewModel holds the options being explored and the last generated grid.
type previewModel struct {
	ctx    context.Context
	runner *pipeline.Runner
	opts   pipeline.Options

	grid    *terrain.Grid
	err     error
	loading bool

	width, height int
}

func newPreviewModel(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) previewModel {
	return previewModel{
		ctx:     ctx,
		runner:  runner,
		opts:    opts,
		loading: true,
		width:   80,
		height:  24,
	}
}

// generate returns a command that runs the pipeline for the current options.
func (m previewModel) generate() tea.Cmd {
	opts := m.opts
	return func() tea.Msg {
		g, err := m.runner.Generate(m.ctx, opts)
		return gridMsg{grid: g, err: err}
	}
}

func (m previewModel) Init() tea.Cmd {
	return m.generate()
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.opts.Seed = rand.Uint64()
		case "+", "=":
			m.opts.Roughness = math.Round((m.opts.Roughness+roughnessStep)*100) / 100
		case "-", "_":
			r := math.Round((m.opts.Roughness-roughnessStep)*100) / 100
			if r < 1 {
				return m, nil
			}
			m.opts.Roughness = r
		case "]":
			if m.opts.Iterations >= maxPreviewIterations {
				return m, nil
			}
			m.opts.Iterations++
		case "[":
			if m.opts.Iterations == 0 {
				return m, nil
			}
			m.opts.Iterations--
		case "a":
			if m.opts.IsMidpoint() {
				m.opts.Algorithm = pipeline.AlgorithmDiamondSquare
			} else {
				m.opts.Algorithm = pipeline.AlgorithmMidpoint
			}
		default:
			return m, nil
		}
		m.loading = true
		return m, m.generate()
	case gridMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.grid = msg.grid
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	return m, nil
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("terrain preview"))
	b.WriteString("  ")
	b.WriteString(previewStatusStyle.Render(m.status()))
	b.WriteString("\n\n")

	rows := max(m.height-previewChrome, 1)
	switch {
	case m.err != nil:
		b.WriteString(previewErrorStyle.Render(errors.UserMessage(m.err)))
		b.WriteString("\n")
	case m.grid == nil:
		b.WriteString(StyleDim.Render("generating..."))
		b.WriteString("\n")
	case m.grid.Height() == 1:
		b.WriteString(renderProfile(m.grid, m.width, rows))
	default:
		b.WriteString(renderShaded(m.grid, m.width, rows*2))
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render("r reseed · +/- roughness · [/] iterations · a algorithm · q quit"))
	return b.String()
}

// status summarizes the current options on one line.
func (m previewModel) status() string {
	s := fmt.Sprintf("%s · %d iterations · roughness %.2f · seed %d",
		m.opts.Algorithm, m.opts.Iterations, m.opts.Roughness, m.opts.Seed)
	if m.grid != nil {
		w, h := m.grid.Size()
		s += fmt.Sprintf(" · %d×%d", w, h)
	}
	if m.loading {
		s += " · …"
	}
	return s
}

// =============================================================================
// Rendering
// =============================================================================

// shade maps a height to a palette color.
func shade(g *terrain.Grid, v float64) lipgloss.Color {
	n := g.Normalize(v)
	if math.IsNaN(n) {
		return palette[0]
	}
	i := int(n * float64(len(palette)))
	return palette[min(max(i, 0), len(palette)-1)]
}

// sample returns the cell nearest to (x, y) in a cols×rows view of g.
func sample(g *terrain.Grid, x, y, cols, rows int) float64 {
	gx := x * g.Width() / cols
	gy := y * g.Height() / rows
	v, _ := g.At(gx, gy)
	return v
}

// renderShaded draws g with upper half-blocks, two grid rows per text line.
// The view is at most maxCols wide and maxRows grid rows tall.
func renderShaded(g *terrain.Grid, maxCols, maxRows int) string {
	cols := min(g.Width(), max(maxCols, 1))
	rows := min(g.Height(), max(maxRows, 2))

	var b strings.Builder
	for y := 0; y < rows; y += 2 {
		for x := 0; x < cols; x++ {
			top := shade(g, sample(g, x, y, cols, rows))
			style := lipgloss.NewStyle().Foreground(top)
			if y+1 < rows {
				style = style.Background(shade(g, sample(g, x, y+1, cols, rows)))
			}
			b.WriteString(style.Render("▀"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderProfile draws a one-row grid as a filled silhouette.
func renderProfile(g *terrain.Grid, maxCols, rows int) string {
	cols := min(g.Width(), max(maxCols, 1))
	levels := make([]int, cols)
	colors := make([]lipgloss.Color, cols)
	for x := range cols {
		v := sample(g, x, 0, cols, 1)
		n := g.Normalize(v)
		if math.IsNaN(n) {
			n = 0
		}
		levels[x] = int(math.Round(min(max(n, 0), 1) * float64(rows-1)))
		colors[x] = shade(g, v)
	}

	var b strings.Builder
	for r := rows - 1; r >= 0; r-- {
		for x := range cols {
			if levels[x] >= r {
				b.WriteString(lipgloss.NewStyle().Foreground(colors[x]).Render("█"))
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
