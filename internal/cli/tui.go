package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tmonheim/chainview/pkg/annot"
	"github.com/tmonheim/chainview/pkg/selection"
)

// Viewer styles
var (
	viewerSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	viewerNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	viewerDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// residuesPerRow is the wrap width of the sequence panel.
const residuesPerRow = 60

// chainRef is one chain of one sequence, flattened for tab navigation.
type chainRef struct {
	seqName string
	chain   annot.ChainModel
}

// ViewerModel is the bubbletea model for the interactive chain browser.
// Region and position toggling is delegated to the selection engine; the
// model only tracks cursors and redraws from engine state.
type ViewerModel struct {
	engine   *selection.Engine
	chains   []chainRef
	chainIdx int
	cursor   int // region cursor within the current chain
	pos      int // 1-based position cursor within the current chain
}

// NewViewerModel creates a viewer over the given display models.
func NewViewerModel(models []annot.SequenceModel) ViewerModel {
	var chains []chainRef
	for _, m := range models {
		for _, c := range m.Chains {
			chains = append(chains, chainRef{seqName: m.Name, chain: c})
		}
	}
	return ViewerModel{
		engine: selection.NewEngine(models),
		chains: chains,
		pos:    1,
	}
}

func (m ViewerModel) Init() tea.Cmd {
	return nil
}

func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if len(m.chains) == 0 {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
		return m, nil
	}
	current := m.chains[m.chainIdx].chain

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.chainIdx = (m.chainIdx + 1) % len(m.chains)
			m.cursor = 0
			m.pos = 1
		case "shift+tab":
			m.chainIdx = (m.chainIdx - 1 + len(m.chains)) % len(m.chains)
			m.cursor = 0
			m.pos = 1
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(current.Annotations)-1 {
				m.cursor++
			}
		case "enter", " ":
			if m.cursor < len(current.Annotations) {
				m.engine.SelectRegion(current.Annotations[m.cursor].ID)
			}
		case "left", "h":
			if m.pos > 1 {
				m.pos--
			}
		case "right", "l":
			if m.pos < len(current.Sequence) {
				m.pos++
			}
		case "x":
			m.engine.SelectPosition(m.pos)
		case "c":
			m.engine.ClearSelection()
		}
	}
	return m, nil
}

func (m ViewerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Chainview"))
	b.WriteString("\n")
	b.WriteString(viewerDimStyle.Render("tab chain  ↑/↓ region  ⏎ toggle  ←/→ position  x toggle  c clear  q quit"))
	b.WriteString("\n\n")

	if len(m.chains) == 0 {
		b.WriteString(viewerDimStyle.Render("no chains to display"))
		return b.String()
	}

	ref := m.chains[m.chainIdx]
	c := ref.chain
	b.WriteString(StyleValue.Render(fmt.Sprintf("%s / %s", ref.seqName, c.Name)))
	b.WriteString(viewerDimStyle.Render(fmt.Sprintf("  %s · %d aa · chain %d/%d", c.Type, len(c.Sequence), m.chainIdx+1, len(m.chains))))
	b.WriteString("\n\n")

	b.WriteString(m.renderRegions(c))
	b.WriteString("\n")
	b.WriteString(m.renderSequence(c))
	b.WriteString("\n")

	state := m.engine.Snapshot()
	b.WriteString(viewerDimStyle.Render(fmt.Sprintf("  %d regions selected · %d positions selected", len(state.RegionIDs), len(state.Positions))))

	return b.String()
}

// renderRegions draws the region list with color swatches and selection marks.
func (m ViewerModel) renderRegions(c annot.ChainModel) string {
	var b strings.Builder
	for i, r := range c.Annotations {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		mark := " "
		if m.engine.IsRegionSelected(r.ID) {
			mark = iconSuccess
		}

		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(r.Color)).Render("■")
		line := fmt.Sprintf("%s%s %s %-12s %s [%d-%d]", cursor, mark, swatch, r.Name, r.Type, r.Start, r.Stop)

		if i == m.cursor {
			b.WriteString(viewerSelectedStyle.Render(line))
		} else {
			b.WriteString(viewerNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if len(c.Annotations) == 0 {
		b.WriteString(viewerDimStyle.Render("  no annotated regions"))
		b.WriteString("\n")
	}
	return b.String()
}

// renderSequence draws the residues wrapped to residuesPerRow, colored by
// region and highlighting selected positions and the position cursor.
func (m ViewerModel) renderSequence(c annot.ChainModel) string {
	colors := positionColors(c)

	var b strings.Builder
	for row := 0; row*residuesPerRow < len(c.Sequence); row++ {
		start := row * residuesPerRow
		end := start + residuesPerRow
		if end > len(c.Sequence) {
			end = len(c.Sequence)
		}

		b.WriteString(viewerDimStyle.Render(fmt.Sprintf("%5d ", start+1)))
		for i := start; i < end; i++ {
			pos := i + 1
			style := lipgloss.NewStyle()
			if colors[pos] != "" {
				style = style.Foreground(lipgloss.Color(colors[pos]))
			}
			if m.engine.IsPositionSelected(pos) {
				style = style.Bold(true).Underline(true)
			}
			if pos == m.pos {
				style = style.Reverse(true)
			}
			b.WriteString(style.Render(string(c.Sequence[i])))
		}
		b.WriteString(viewerDimStyle.Render(fmt.Sprintf(" %d", end)))
		b.WriteString("\n")
	}
	return b.String()
}

// positionColors maps each 1-based position to the color of the region
// covering it, empty for unannotated stretches.
func positionColors(c annot.ChainModel) []string {
	colors := make([]string, len(c.Sequence)+1)
	for _, r := range c.Annotations {
		for pos := r.Start; pos <= r.Stop && pos < len(colors); pos++ {
			colors[pos] = r.Color
		}
	}
	return colors
}
